package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Structural errors - these abort an entire extraction run
	ErrSchema            = errors.New("table schema invalid")
	ErrNoTimeColumn      = fmt.Errorf("%w: no column containing 'time'", ErrSchema)
	ErrAmbiguousTime     = fmt.Errorf("%w: multiple columns containing 'time'", ErrSchema)
	ErrTimeNotIncreasing = fmt.Errorf("%w: time axis not strictly increasing", ErrSchema)
	ErrParse             = errors.New("time spec parse failed")

	// Resolution errors - localized to one (phase, series) pair, never fatal
	ErrNoTimePoints = errors.New("time spec resolved to no time points")
)

// Error constructors with context
func NewParseError(token string, reason string) error {
	return fmt.Errorf("%w: token %q: %s", ErrParse, token, reason)
}

func NewSchemaError(table string, reason string) error {
	return fmt.Errorf("%w: %s table: %s", ErrSchema, table, reason)
}

func NewResolutionError(spec string) error {
	return fmt.Errorf("%w: %q", ErrNoTimePoints, spec)
}

// Error checking helpers
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchema)
}

func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

func IsResolutionError(err error) bool {
	return errors.Is(err, ErrNoTimePoints)
}

// IsFatal reports whether an error must abort the whole run rather than
// surface as a missing output cell.
func IsFatal(err error) bool {
	return IsSchemaError(err) || IsParseError(err)
}
