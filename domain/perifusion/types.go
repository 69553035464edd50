package perifusion

import (
	"fmt"

	"perifuse/domain/core"
)

// TimeSeries is the ordered secretion trace of a single donor: a shared time
// axis plus one optional value per time point.
type TimeSeries struct {
	Times  []float64
	Values []Value
}

// Len returns the number of time points.
func (s TimeSeries) Len() int { return len(s.Times) }

// Window returns the sub-series covering the inclusive index range [lo, hi].
// The returned slices alias the original series.
func (s TimeSeries) Window(lo, hi int) TimeSeries {
	return TimeSeries{Times: s.Times[lo : hi+1], Values: s.Values[lo : hi+1]}
}

// InputTable is one loaded secretion dataset: a strictly increasing time axis
// and one value column per donor, all aligned to the axis. Donor order is the
// column order of the source file and determines output row order.
type InputTable struct {
	Times  []float64
	Donors []string
	values map[string][]Value
}

// NewInputTable builds an input table from a time axis and donor columns.
// Column order follows the donors slice.
func NewInputTable(times []float64, donors []string, values map[string][]Value) (*InputTable, error) {
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("%w: t[%d]=%v after t[%d]=%v",
				core.ErrTimeNotIncreasing, i, times[i], i-1, times[i-1])
		}
	}
	for _, donor := range donors {
		col, ok := values[donor]
		if !ok {
			return nil, core.NewSchemaError("input", fmt.Sprintf("donor %q has no value column", donor))
		}
		if len(col) != len(times) {
			return nil, core.NewSchemaError("input", fmt.Sprintf(
				"donor %q has %d values for %d time points", donor, len(col), len(times)))
		}
	}
	return &InputTable{Times: times, Donors: donors, values: values}, nil
}

// Series returns the time series for one donor.
func (t *InputTable) Series(donor string) (TimeSeries, bool) {
	col, ok := t.values[donor]
	if !ok {
		return TimeSeries{}, false
	}
	return TimeSeries{Times: t.Times, Values: col}, true
}

// PhaseKind tags a parameter-table row as a baseline phase or a peak phase.
type PhaseKind int

const (
	KindBaseline PhaseKind = iota
	KindPeak
)

func (k PhaseKind) String() string {
	switch k {
	case KindBaseline:
		return "Baseline"
	case KindPeak:
		return "Peak"
	default:
		return fmt.Sprintf("PhaseKind(%d)", int(k))
	}
}

// ParsePhaseKind maps the parameter table's BaselineOrPeak cell to a kind.
func ParsePhaseKind(s string) (PhaseKind, error) {
	switch s {
	case "Baseline", "baseline":
		return KindBaseline, nil
	case "Peak", "peak":
		return KindPeak, nil
	default:
		return 0, core.NewSchemaError("parameter", fmt.Sprintf("BaselineOrPeak must be Baseline or Peak, got %q", s))
	}
}

// PhaseDefinition is one parsed parameter-table row. Definitions are parsed
// once per run and read-only thereafter.
type PhaseDefinition struct {
	Name           string
	Kind           PhaseKind
	PeakRange      TimeSpec
	BaselineTime   TimeSpec
	MinHeightRatio float64
	MinPeakLength  int
	Negative       bool
	ComputeIndex   bool
}

// PeakRegion is the detected contiguous run of active points for one
// (phase, donor) pair. Indices refer to the peak-range window, times to the
// shared axis.
type PeakRegion struct {
	StartIdx int // inclusive, window-relative
	EndIdx   int // inclusive, window-relative

	StartTime float64
	EndTime   float64

	// Extremum is the raw value at the point of greatest deviation from
	// baseline: the maximum for a positive peak, the minimum for a valley.
	Extremum     float64
	ExtremumTime float64
	// Deviation is |Extremum - baseline|.
	Deviation float64
}

// Len returns the number of points in the run.
func (r PeakRegion) Len() int { return r.EndIdx - r.StartIdx + 1 }
