package traits

import (
	"math"

	"gonum.org/v1/gonum/integrate"

	"perifuse/domain/perifusion"
)

// AUC computes the trapezoidal area between the detected run and the
// baseline, reported as a magnitude: above-baseline area for peaks,
// below-baseline area for valleys. A single-point run integrates to exactly
// zero. The result is missing when any value inside the run is missing.
func AUC(window perifusion.TimeSeries, region perifusion.PeakRegion, baseline float64, negative bool) perifusion.Value {
	if region.Len() < 2 {
		return perifusion.Some(0)
	}

	xs := make([]float64, 0, region.Len())
	ys := make([]float64, 0, region.Len())
	for i := region.StartIdx; i <= region.EndIdx; i++ {
		v, ok := window.Values[i].Float()
		if !ok {
			return perifusion.Missing
		}
		xs = append(xs, window.Times[i])
		if negative {
			ys = append(ys, baseline-v)
		} else {
			ys = append(ys, v-baseline)
		}
	}

	return perifusion.Some(math.Abs(integrate.Trapezoidal(xs, ys)))
}
