package traits

import (
	"github.com/montanaflynn/stats"

	"perifuse/domain/perifusion"
)

// Baseline computes a donor's scalar baseline: the arithmetic mean of the
// series values at the time points the spec selects. Missing values are
// skipped; if nothing valid remains the baseline itself is missing. A spec
// that selects no time points at all is a resolution error and the caller
// skips the phase for this series.
func Baseline(series perifusion.TimeSeries, spec perifusion.TimeSpec) (perifusion.Value, error) {
	idx, err := spec.Resolve(series.Times)
	if err != nil {
		return perifusion.Missing, err
	}

	gathered := make([]float64, 0, len(idx))
	for _, i := range idx {
		if f, ok := series.Values[i].Float(); ok {
			gathered = append(gathered, f)
		}
	}
	if len(gathered) == 0 {
		return perifusion.Missing, nil
	}

	mean, err := stats.Mean(gathered)
	if err != nil {
		return perifusion.Missing, nil
	}
	return perifusion.Some(mean), nil
}
