// Package analysis implements the operational assessment methods: Monte
// Carlo AEP estimation, turbine ideal energy, electrical losses, wake
// losses, static yaw misalignment and EYA gap analysis.
package analysis

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// hoursPerYear is the mean length of a calendar year in hours.
const hoursPerYear = 8766.0

// monthKey identifies one calendar month of one year.
type monthKey struct {
	Year  int
	Month time.Month
}

func monthOf(t time.Time) monthKey {
	u := t.UTC()
	return monthKey{Year: u.Year(), Month: u.Month()}
}

// monthlySum accumulates per-month totals and record counts for a value
// series.
func monthlySum(times []time.Time, vals []float64) (map[monthKey]float64, map[monthKey]int) {
	sums := make(map[monthKey]float64)
	counts := make(map[monthKey]int)
	for i, t := range times {
		if math.IsNaN(vals[i]) {
			continue
		}
		k := monthOf(t)
		sums[k] += vals[i]
		counts[k]++
	}
	return sums, counts
}

// monthlyMean accumulates per-month means for a value series.
func monthlyMean(times []time.Time, vals []float64) map[monthKey]float64 {
	sums, counts := monthlySum(times, vals)
	means := make(map[monthKey]float64, len(sums))
	for k, s := range sums {
		means[k] = s / float64(counts[k])
	}
	return means
}

// circularMeanDeg returns the circular mean of angles in degrees, in
// [0, 360). NaN inputs are skipped; NaN is returned when nothing remains.
func circularMeanDeg(angles []float64) float64 {
	var sinSum, cosSum float64
	n := 0
	for _, a := range angles {
		if math.IsNaN(a) {
			continue
		}
		rad := a * math.Pi / 180
		sinSum += math.Sin(rad)
		cosSum += math.Cos(rad)
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	mean := math.Atan2(sinSum, cosSum) * 180 / math.Pi
	if mean < 0 {
		mean += 360
	}
	return mean
}

// wrapDeg180 wraps an angle difference into (-180, 180].
func wrapDeg180(delta float64) float64 {
	for delta > 180 {
		delta -= 360
	}
	for delta <= -180 {
		delta += 360
	}
	return delta
}

// quantile returns the pth empirical quantile of vals without mutating the
// input.
func quantile(vals []float64, p float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}
