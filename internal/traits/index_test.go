package traits

import (
	"math"
	"testing"

	"perifuse/domain/perifusion"
)

func TestIndex_StimulationIndex(t *testing.T) {
	si := Index(perifusion.Some(0.6), perifusion.Some(1.8), false)
	got, ok := si.Float()
	if !ok {
		t.Fatal("SI unexpectedly missing")
	}
	if math.Abs(got-3.0) > 1e-12 {
		t.Errorf("SI = %v, want 3.0", got)
	}
}

func TestIndex_InhibitionIndex(t *testing.T) {
	ii := Index(perifusion.Some(0.6), perifusion.Some(0.2), true)
	got, ok := ii.Float()
	if !ok {
		t.Fatal("II unexpectedly missing")
	}
	if math.Abs(got-3.0) > 1e-12 {
		t.Errorf("II = %v, want 3.0", got)
	}
}

func TestIndex_MissingOnBadOperands(t *testing.T) {
	cases := []struct {
		name     string
		baseline perifusion.Value
		extremum perifusion.Value
		negative bool
	}{
		{"zero baseline SI", perifusion.Some(0), perifusion.Some(1.8), false},
		{"zero baseline II", perifusion.Some(0), perifusion.Some(0.2), true},
		{"missing baseline", perifusion.Missing, perifusion.Some(1.8), false},
		{"missing extremum", perifusion.Some(0.6), perifusion.Missing, false},
		{"zero valley minimum", perifusion.Some(0.6), perifusion.Some(0), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Index(tc.baseline, tc.extremum, tc.negative); !got.IsMissing() {
				t.Errorf("Index = %v, want missing", got)
			}
		})
	}
}
