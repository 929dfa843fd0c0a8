// Package filters provides quality-control flagging for operational data.
// Each filter returns a boolean slice aligned with the input, where true
// marks a flagged (suspect) value.
package filters

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// RangeFlag flags values outside the inclusive range [lower, upper]. NaNs are
// not flagged.
func RangeFlag(vals []float64, lower, upper float64) []bool {
	flags := make([]bool, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		flags[i] = v < lower || v > upper
	}
	return flags
}

// UnresponsiveFlag flags runs of identical consecutive values of length
// `threshold` or more, the signature of a stuck sensor.
func UnresponsiveFlag(vals []float64, threshold int) []bool {
	flags := make([]bool, len(vals))
	if threshold < 2 || len(vals) == 0 {
		return flags
	}

	runStart := 0
	for i := 1; i <= len(vals); i++ {
		if i < len(vals) && vals[i] == vals[runStart] {
			continue
		}
		if i-runStart >= threshold {
			for j := runStart; j < i; j++ {
				flags[j] = true
			}
		}
		runStart = i
	}
	return flags
}

// StdRangeFlag flags values more than `threshold` standard deviations from
// the mean. NaNs are excluded from the statistics and not flagged.
func StdRangeFlag(vals []float64, threshold float64) []bool {
	var clean []float64
	for _, v := range vals {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	flags := make([]bool, len(vals))
	if len(clean) < 2 {
		return flags
	}

	mean := stat.Mean(clean, nil)
	std := stat.StdDev(clean, nil)
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		flags[i] = math.Abs(v-mean) > threshold*std
	}
	return flags
}

// BinCenter selects the statistic used as the centre of each bin by
// BinFilter.
type BinCenter string

const (
	BinCenterMean   BinCenter = "mean"
	BinCenterMedian BinCenter = "median"
)

// BinDirection selects which side of the bin centre BinFilter flags.
type BinDirection string

const (
	DirectionAll   BinDirection = "all"
	DirectionAbove BinDirection = "above"
	DirectionBelow BinDirection = "below"
)

// BinFilter bins `binCol` into bins of width `binWidth` and flags entries of
// `valueCol` that deviate from the bin centre by more than `threshold`.
// Typical use is flagging power-curve outliers with power as the bin column
// and wind speed as the value column.
func BinFilter(binCol, valueCol []float64, binWidth, threshold float64, center BinCenter, direction BinDirection) ([]bool, error) {
	if len(binCol) != len(valueCol) {
		return nil, fmt.Errorf("length mismatch: %d bin values, %d data values", len(binCol), len(valueCol))
	}
	if binWidth <= 0 {
		return nil, errors.New("bin width must be positive")
	}

	bins := make(map[int][]float64)
	for i, b := range binCol {
		if math.IsNaN(b) || math.IsNaN(valueCol[i]) {
			continue
		}
		idx := int(math.Floor(b / binWidth))
		bins[idx] = append(bins[idx], valueCol[i])
	}

	centers := make(map[int]float64, len(bins))
	for idx, members := range bins {
		switch center {
		case BinCenterMedian:
			sorted := append([]float64(nil), members...)
			sort.Float64s(sorted)
			centers[idx] = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		case BinCenterMean:
			centers[idx] = stat.Mean(members, nil)
		default:
			return nil, fmt.Errorf("unknown bin center %q", center)
		}
	}

	flags := make([]bool, len(binCol))
	for i, b := range binCol {
		if math.IsNaN(b) || math.IsNaN(valueCol[i]) {
			continue
		}
		deviation := valueCol[i] - centers[int(math.Floor(b/binWidth))]
		switch direction {
		case DirectionAbove:
			flags[i] = deviation > threshold
		case DirectionBelow:
			flags[i] = deviation < -threshold
		case DirectionAll:
			flags[i] = math.Abs(deviation) > threshold
		default:
			return nil, fmt.Errorf("unknown direction %q", direction)
		}
	}
	return flags, nil
}
