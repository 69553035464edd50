package testkit

import (
	"math/rand"

	"perifuse/domain/perifusion"
	"perifuse/internal/traits"
)

// Kit builds synthetic perifusion fixtures. All generation is seeded so
// fixtures are reproducible across runs.
type Kit struct {
	rng *rand.Rand
}

// New creates a kit with a fixed seed.
func New(seed int64) *Kit {
	return &Kit{rng: rand.New(rand.NewSource(seed))}
}

// TimeAxis returns n strictly increasing time points from start with the
// given step.
func (k *Kit) TimeAxis(start, step float64, n int) []float64 {
	times := make([]float64, n)
	for i := range times {
		times[i] = start + float64(i)*step
	}
	return times
}

// FlatSeries returns a series pinned at level for every time point.
func (k *Kit) FlatSeries(n int, level float64) []perifusion.Value {
	values := make([]perifusion.Value, n)
	for i := range values {
		values[i] = perifusion.Some(level)
	}
	return values
}

// PulseSeries returns a series at base everywhere except the inclusive index
// range [from, to], which sits at base+height. Negative heights carve a
// valley.
func (k *Kit) PulseSeries(n int, base, height float64, from, to int) []perifusion.Value {
	values := k.FlatSeries(n, base)
	for i := from; i <= to && i < n; i++ {
		values[i] = perifusion.Some(base + height)
	}
	return values
}

// NoisySeries jitters each point of the input by at most amp.
func (k *Kit) NoisySeries(values []perifusion.Value, amp float64) []perifusion.Value {
	out := make([]perifusion.Value, len(values))
	for i, v := range values {
		if f, ok := v.Float(); ok {
			out[i] = perifusion.Some(f + (k.rng.Float64()*2-1)*amp)
		} else {
			out[i] = perifusion.Missing
		}
	}
	return out
}

// Series pairs a time axis with values.
func Series(times []float64, values []perifusion.Value) perifusion.TimeSeries {
	return perifusion.TimeSeries{Times: times, Values: values}
}

// Column wraps raw floats as an input column.
func Column(name string, values ...float64) traits.Column {
	col := traits.Column{Name: name}
	for _, f := range values {
		col.Values = append(col.Values, perifusion.Some(f))
	}
	return col
}

// MustSpec parses a time spec, panicking on error; for fixture literals only.
func MustSpec(text string) perifusion.TimeSpec {
	spec, err := perifusion.ParseTimeSpec(text)
	if err != nil {
		panic(err)
	}
	return spec
}
