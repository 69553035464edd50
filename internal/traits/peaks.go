package traits

import (
	"perifuse/domain/perifusion"
)

// floatTol guards float comparisons near zero: a point whose deviation from
// baseline is within this band counts as sitting on the baseline.
const floatTol = 1e-5

// DetectPeak scans a peak-range window for the best contiguous run of points
// whose deviation from baseline clears the height threshold, in the direction
// the phase expects: above baseline for stimulation peaks, below it for
// inhibition valleys.
//
// A point is active when its direction-corrected deviation is positive and at
// least MinHeightRatio times the window's maximum deviation. Candidate runs
// are maximal contiguous stretches of active points; the winner is the
// longest run of at least MinPeakLength points, ties going to the run holding
// the greatest deviation and then to the earliest run. Missing values are
// never active, so they split runs.
//
// The boolean result is false when no run qualifies, including the flat case
// where no point deviates from baseline at all.
func DetectPeak(window perifusion.TimeSeries, baseline float64, def perifusion.PhaseDefinition) (perifusion.PeakRegion, bool) {
	n := window.Len()
	if n == 0 {
		return perifusion.PeakRegion{}, false
	}

	// Direction-corrected deviation per point; missing points stay inactive.
	dev := make([]float64, n)
	present := make([]bool, n)
	maxMag := 0.0
	for i := 0; i < n; i++ {
		v, ok := window.Values[i].Float()
		if !ok {
			continue
		}
		present[i] = true
		if def.Negative {
			dev[i] = baseline - v
		} else {
			dev[i] = v - baseline
		}
		if dev[i] > maxMag {
			maxMag = dev[i]
		}
	}
	if maxMag <= floatTol {
		// Nothing rises above baseline in the expected direction.
		return perifusion.PeakRegion{}, false
	}

	threshold := def.MinHeightRatio * maxMag
	active := func(i int) bool {
		return present[i] && dev[i] > floatTol && dev[i] >= threshold-floatTol
	}

	type run struct {
		start, end int
		maxDev     float64
	}
	var runs []run
	start := -1
	for i := 0; i <= n; i++ {
		if i < n && active(i) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			r := run{start: start, end: i - 1}
			for j := r.start; j <= r.end; j++ {
				if dev[j] > r.maxDev {
					r.maxDev = dev[j]
				}
			}
			runs = append(runs, r)
			start = -1
		}
	}

	best := -1
	for i, r := range runs {
		if r.end-r.start+1 < def.MinPeakLength {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		b := runs[best]
		switch {
		case r.end-r.start > b.end-b.start:
			best = i
		case r.end-r.start == b.end-b.start && r.maxDev > b.maxDev:
			best = i
		}
	}
	if best < 0 {
		return perifusion.PeakRegion{}, false
	}

	chosen := runs[best]
	extIdx := chosen.start
	for j := chosen.start; j <= chosen.end; j++ {
		if dev[j] > dev[extIdx] {
			extIdx = j
		}
	}

	return perifusion.PeakRegion{
		StartIdx:     chosen.start,
		EndIdx:       chosen.end,
		StartTime:    window.Times[chosen.start],
		EndTime:      window.Times[chosen.end],
		Extremum:     window.Values[extIdx].MustFloat(),
		ExtremumTime: window.Times[extIdx],
		Deviation:    dev[extIdx],
	}, true
}
