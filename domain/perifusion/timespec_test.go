package perifusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perifuse/domain/core"
)

func TestParseTimeSpec_SingleRange(t *testing.T) {
	spec, err := ParseTimeSpec("3-9")
	require.NoError(t, err)

	idx, err := spec.Resolve([]float64{0, 3, 6, 9, 12})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, idx)
}

func TestParseTimeSpec_UnionOfRules(t *testing.T) {
	spec, err := ParseTimeSpec("3-9|30")
	require.NoError(t, err)

	idx, err := spec.Resolve([]float64{3, 6, 9, 21, 30})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 4}, idx)
}

func TestParseTimeSpec_OverlappingRulesDeduplicate(t *testing.T) {
	spec, err := ParseTimeSpec("3-9|6-12|9")
	require.NoError(t, err)

	idx, err := spec.Resolve([]float64{3, 6, 9, 12})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, idx)
}

func TestParseTimeSpec_SinglePointNeedsExactMatch(t *testing.T) {
	spec, err := ParseTimeSpec("7")
	require.NoError(t, err)

	_, err = spec.Resolve([]float64{3, 6, 9})
	assert.True(t, core.IsResolutionError(err), "nearest-neighbor matching is not allowed")
}

func TestParseTimeSpec_FractionalTimes(t *testing.T) {
	spec, err := ParseTimeSpec("1.5-4.5")
	require.NoError(t, err)

	idx, err := spec.Resolve([]float64{0.5, 1.5, 2.5, 4.5, 5.5})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, idx)
}

func TestParseTimeSpec_Errors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"not a number", "abc"},
		{"inverted range", "9-3"},
		{"bad range end", "3-x"},
		{"dangling separator", "3-9|"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTimeSpec(tc.text)
			assert.True(t, core.IsParseError(err), "expected parse error, got %v", err)
		})
	}
}

func TestTimeSpec_EmptyResolutionIsNotFatal(t *testing.T) {
	spec, err := ParseTimeSpec("100-200")
	require.NoError(t, err)

	_, err = spec.Resolve([]float64{3, 6, 9})
	require.Error(t, err)
	assert.True(t, core.IsResolutionError(err))
	assert.False(t, core.IsFatal(err))
}

func TestTimeSpec_Bounds(t *testing.T) {
	spec, err := ParseTimeSpec("9-63")
	require.NoError(t, err)

	lo, hi, err := spec.Bounds([]float64{3, 6, 9, 12, 63, 66})
	require.NoError(t, err)
	assert.Equal(t, 2, lo)
	assert.Equal(t, 4, hi)
}
