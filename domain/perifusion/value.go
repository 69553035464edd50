package perifusion

import (
	"math"
	"strconv"
)

// Value is an optional real number. Every measured secretion value and every
// computed trait is one of these: either present with a float, or missing.
// Missing is a first-class state, never a NaN sentinel, so that means and
// ratios downstream can't silently absorb placeholder zeros.
type Value struct {
	f     float64
	valid bool
}

// Missing is the absent value.
var Missing = Value{}

// Some wraps a measured float. NaN and Inf inputs collapse to Missing so the
// invalid states can't leak in through file parsing.
func Some(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing
	}
	return Value{f: f, valid: true}
}

// IsMissing reports whether the value is absent.
func (v Value) IsMissing() bool { return !v.valid }

// Float returns the wrapped float and whether it is present.
func (v Value) Float() (float64, bool) { return v.f, v.valid }

// MustFloat returns the wrapped float; callers must have checked presence.
func (v Value) MustFloat() float64 { return v.f }

// String renders the value for delimited output, with the empty string as
// the missing marker.
func (v Value) String() string {
	if !v.valid {
		return ""
	}
	return strconv.FormatFloat(v.f, 'g', -1, 64)
}

// MarshalJSON renders missing values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v.f, 'g', -1, 64)), nil
}
