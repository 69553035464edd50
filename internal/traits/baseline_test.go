package traits

import (
	"math"
	"testing"

	"perifuse/domain/core"
	"perifuse/domain/perifusion"
)

func mustSpec(t *testing.T, text string) perifusion.TimeSpec {
	t.Helper()
	spec, err := perifusion.ParseTimeSpec(text)
	if err != nil {
		t.Fatalf("ParseTimeSpec(%q): %v", text, err)
	}
	return spec
}

func TestBaseline_MeanOverRange(t *testing.T) {
	series := perifusion.TimeSeries{
		Times:  []float64{3, 6, 9, 12},
		Values: []perifusion.Value{perifusion.Some(0.5), perifusion.Some(0.6), perifusion.Some(0.7), perifusion.Some(9.9)},
	}

	baseline, err := Baseline(series, mustSpec(t, "3-9"))
	if err != nil {
		t.Fatalf("Baseline: %v", err)
	}
	got, ok := baseline.Float()
	if !ok {
		t.Fatal("baseline unexpectedly missing")
	}
	if math.Abs(got-0.6) > 1e-12 {
		t.Errorf("baseline = %v, want 0.6", got)
	}
}

func TestBaseline_SkipsMissingValues(t *testing.T) {
	series := perifusion.TimeSeries{
		Times:  []float64{3, 6, 9},
		Values: []perifusion.Value{perifusion.Some(0.5), perifusion.Missing, perifusion.Some(0.7)},
	}

	baseline, err := Baseline(series, mustSpec(t, "3-9"))
	if err != nil {
		t.Fatalf("Baseline: %v", err)
	}
	got, _ := baseline.Float()
	if math.Abs(got-0.6) > 1e-12 {
		t.Errorf("baseline = %v, want 0.6 (mean of the two present values)", got)
	}
}

func TestBaseline_AllMissingIsMissing(t *testing.T) {
	series := perifusion.TimeSeries{
		Times:  []float64{3, 6, 9},
		Values: []perifusion.Value{perifusion.Missing, perifusion.Missing, perifusion.Missing},
	}

	baseline, err := Baseline(series, mustSpec(t, "3-9"))
	if err != nil {
		t.Fatalf("Baseline: %v", err)
	}
	if !baseline.IsMissing() {
		t.Errorf("baseline = %v, want missing", baseline)
	}
}

func TestBaseline_UnresolvableSpecIsResolutionError(t *testing.T) {
	series := perifusion.TimeSeries{
		Times:  []float64{3, 6, 9},
		Values: []perifusion.Value{perifusion.Some(1), perifusion.Some(2), perifusion.Some(3)},
	}

	_, err := Baseline(series, mustSpec(t, "100-200"))
	if !core.IsResolutionError(err) {
		t.Errorf("expected resolution error, got %v", err)
	}
}
