package perifusion

import (
	"strconv"
	"strings"

	"perifuse/domain/core"
)

// TimeSpec is a parsed time-selection expression: a union of selection rules,
// each either a single time point or an inclusive range. The textual grammar
// is rule ('|' rule)*, rule = number | number '-' number, e.g. "3-9" or
// "3-9|30".
type TimeSpec struct {
	Source string
	rules  []timeRule
}

// timeRule is one selection rule; a single time point is a degenerate range
// with lo == hi, which makes point matching exact.
type timeRule struct {
	lo, hi float64
}

// ParseTimeSpec parses a time-selection expression. Malformed tokens and
// inverted ranges fail with a parse error; resolution against a concrete
// time axis happens later via Resolve.
func ParseTimeSpec(text string) (TimeSpec, error) {
	spec := TimeSpec{Source: text}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return TimeSpec{}, core.NewParseError(text, "empty specification")
	}
	for _, token := range strings.Split(trimmed, "|") {
		token = strings.TrimSpace(token)
		rule, err := parseRule(token)
		if err != nil {
			return TimeSpec{}, err
		}
		spec.rules = append(spec.rules, rule)
	}
	return spec, nil
}

func parseRule(token string) (timeRule, error) {
	if token == "" {
		return timeRule{}, core.NewParseError(token, "empty rule")
	}
	// A '-' splits a range, but only past the first character so negative
	// singletons like "-5" still parse.
	if sep := strings.Index(token[1:], "-"); sep >= 0 {
		sep++
		lo, err := strconv.ParseFloat(strings.TrimSpace(token[:sep]), 64)
		if err != nil {
			return timeRule{}, core.NewParseError(token, "range start is not a number")
		}
		hi, err := strconv.ParseFloat(strings.TrimSpace(token[sep+1:]), 64)
		if err != nil {
			return timeRule{}, core.NewParseError(token, "range end is not a number")
		}
		if lo > hi {
			return timeRule{}, core.NewParseError(token, "range start exceeds range end")
		}
		return timeRule{lo: lo, hi: hi}, nil
	}
	point, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return timeRule{}, core.NewParseError(token, "not a number")
	}
	return timeRule{lo: point, hi: point}, nil
}

// Resolve maps the spec onto a concrete time axis, returning the sorted,
// deduplicated indices of every matching time point. A single-point rule
// requires an exact match on the axis; a range selects every point inside it,
// inclusive on both ends. An empty result is a resolution error: the caller
// skips the affected phase for that series rather than aborting the run.
func (ts TimeSpec) Resolve(times []float64) ([]int, error) {
	selected := make([]bool, len(times))
	for _, rule := range ts.rules {
		for i, t := range times {
			if t >= rule.lo && t <= rule.hi {
				selected[i] = true
			}
		}
	}
	var idx []int
	for i, ok := range selected {
		if ok {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return nil, core.NewResolutionError(ts.Source)
	}
	return idx, nil
}

// Bounds returns the inclusive index range [lo, hi] covered by the spec on
// the given axis. Peak ranges must be contiguous windows; a spec that
// resolves to a gapped set still yields its outer bounds here, matching the
// window semantics of peak detection.
func (ts TimeSpec) Bounds(times []float64) (int, int, error) {
	idx, err := ts.Resolve(times)
	if err != nil {
		return 0, 0, err
	}
	return idx[0], idx[len(idx)-1], nil
}
