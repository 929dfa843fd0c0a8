package filters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeFlag(t *testing.T) {
	vals := []float64{-20, -15, 0, 45, 46, math.NaN()}
	flags := RangeFlag(vals, -15, 45)
	expected := []bool{true, false, false, false, true, false}
	assert.Equal(t, expected, flags)
}

func TestUnresponsiveFlag(t *testing.T) {
	type subTest struct {
		name      string
		vals      []float64
		threshold int
		expected  []bool
	}

	subTests := []subTest{
		{
			name:      "run at threshold",
			vals:      []float64{1, 2, 2, 2, 3},
			threshold: 3,
			expected:  []bool{false, true, true, true, false},
		},
		{
			name:      "run below threshold",
			vals:      []float64{1, 2, 2, 3},
			threshold: 3,
			expected:  []bool{false, false, false, false},
		},
		{
			name:      "run at end",
			vals:      []float64{1, 2, 3, 3, 3},
			threshold: 3,
			expected:  []bool{false, false, true, true, true},
		},
		{
			name:      "whole series stuck",
			vals:      []float64{7, 7, 7},
			threshold: 2,
			expected:  []bool{true, true, true},
		},
		{
			name:      "threshold too small to be meaningful",
			vals:      []float64{7, 7, 7},
			threshold: 1,
			expected:  []bool{false, false, false},
		},
	}

	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			flags := UnresponsiveFlag(subTest.vals, subTest.threshold)
			assert.Equal(t, subTest.expected, flags)
		})
	}
}

func TestStdRangeFlag(t *testing.T) {
	// One wild outlier among clustered values.
	vals := []float64{10, 10.1, 9.9, 10.2, 9.8, 50}
	flags := StdRangeFlag(vals, 2)
	assert.True(t, flags[len(flags)-1])
	for i := 0; i < len(flags)-1; i++ {
		assert.False(t, flags[i], "value %d should not be flagged", i)
	}
}

func TestBinFilter(t *testing.T) {
	// Two bins of power values; wind speed tracks the bin except for one
	// outlier in each direction.
	power := []float64{100, 100, 100, 100, 900, 900, 900, 900}
	windSpeed := []float64{5, 5.1, 4.9, 12, 10, 10.1, 9.9, 3}

	flags, err := BinFilter(power, windSpeed, 500, 2, BinCenterMedian, DirectionAll)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false, true, false, false, false, true}, flags)

	flags, err = BinFilter(power, windSpeed, 500, 2, BinCenterMean, DirectionBelow)
	require.NoError(t, err)
	assert.False(t, flags[3], "above-centre outlier should not be flagged in below mode")
	assert.True(t, flags[7])

	_, err = BinFilter(power, windSpeed, 0, 2, BinCenterMean, DirectionAll)
	assert.Error(t, err)

	_, err = BinFilter(power, windSpeed[:3], 500, 2, BinCenterMean, DirectionAll)
	assert.Error(t, err)
}
