package traits

import (
	"math"

	"perifuse/domain/perifusion"
)

// Index computes the fold-change index for a detected peak: the Stimulation
// Index peak-max / baseline for positive peaks, or the Inhibition Index
// baseline / valley-min for negative ones. Any zero or missing operand makes
// the result missing rather than an infinity or a panic.
func Index(baseline, extremum perifusion.Value, negative bool) perifusion.Value {
	b, ok := baseline.Float()
	if !ok || math.Abs(b) <= floatTol {
		return perifusion.Missing
	}
	x, ok := extremum.Float()
	if !ok {
		return perifusion.Missing
	}

	if negative {
		if math.Abs(x) <= floatTol {
			return perifusion.Missing
		}
		return perifusion.Some(b / x)
	}
	return perifusion.Some(x / b)
}
