// Package timeseries provides helpers for working with regularly sampled
// operational data: finding gaps and duplicates, filling gaps, and basic
// coverage statistics.
package timeseries

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// LocalToUTC interprets the wall-clock components of `t` in the named
// timezone and returns the equivalent UTC instant. Ambiguous times at the end
// of DST resolve to the earlier offset, matching Go's time.Date behaviour.
func LocalToUTC(t time.Time, tz string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("load location %q: %w", tz, err)
	}
	local := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
	return local.UTC(), nil
}

// FindGaps returns the timestamps that are missing from `times` given the
// expected sampling frequency. Successive differences of exactly `freq` or
// zero (duplicates) are not gaps. The expected range spans the minimum to the
// maximum observed timestamp.
func FindGaps(times []time.Time, freq time.Duration) []time.Time {
	if len(times) < 2 {
		return nil
	}

	sorted := make([]time.Time, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	clean := true
	for i := 1; i < len(sorted); i++ {
		d := sorted[i].Sub(sorted[i-1])
		if d != freq && d != 0 {
			clean = false
			break
		}
	}
	if clean {
		return nil
	}

	observed := make(map[time.Time]struct{}, len(sorted))
	for _, t := range sorted {
		observed[t] = struct{}{}
	}

	var gaps []time.Time
	for t := sorted[0]; !t.After(sorted[len(sorted)-1]); t = t.Add(freq) {
		if _, ok := observed[t]; !ok {
			gaps = append(gaps, t)
		}
	}
	return gaps
}

// FindDuplicates returns the second and subsequent occurrences of any
// repeated timestamp. The first occurrence is not reported.
func FindDuplicates(times []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(times))
	var dups []time.Time
	for _, t := range times {
		if _, ok := seen[t]; ok {
			dups = append(dups, t)
			continue
		}
		seen[t] = struct{}{}
	}
	return dups
}

// GapFill returns `times` with any missing timestamps inserted, sorted
// ascending. Callers are expected to insert NaN data rows for the returned
// extra timestamps.
func GapFill(times []time.Time, freq time.Duration) []time.Time {
	gaps := FindGaps(times, freq)
	if len(gaps) == 0 {
		sorted := make([]time.Time, len(times))
		copy(sorted, times)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
		return sorted
	}
	filled := make([]time.Time, 0, len(times)+len(gaps))
	filled = append(filled, times...)
	filled = append(filled, gaps...)
	sort.Slice(filled, func(i, j int) bool { return filled[i].Before(filled[j]) })
	return filled
}

// FractionNaN returns the fraction of values that are NaN, or 1 for an empty
// slice.
func FractionNaN(vals []float64) float64 {
	if len(vals) == 0 {
		return 1
	}
	n := 0
	for _, v := range vals {
		if math.IsNaN(v) {
			n++
		}
	}
	return float64(n) / float64(len(vals))
}

// NumDays counts the UTC calendar days spanned by `times`, from the earliest
// to the latest day inclusive. Days with no observations still count.
func NumDays(times []time.Time) int {
	if len(times) == 0 {
		return 0
	}
	earliest, latest := span(times)
	first := time.Date(earliest.Year(), earliest.Month(), earliest.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(latest.Year(), latest.Month(), latest.Day(), 0, 0, 0, 0, time.UTC)
	return int(last.Sub(first)/(24*time.Hour)) + 1
}

// NumHours counts the UTC hours spanned by `times`, from the earliest to the
// latest hour inclusive. Hours with no observations still count.
func NumHours(times []time.Time) int {
	if len(times) == 0 {
		return 0
	}
	earliest, latest := span(times)
	return int(latest.Truncate(time.Hour).Sub(earliest.Truncate(time.Hour))/time.Hour) + 1
}

// span returns the earliest and latest instants, in UTC.
func span(times []time.Time) (time.Time, time.Time) {
	earliest, latest := times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(earliest) {
			earliest = t
		}
		if t.After(latest) {
			latest = t
		}
	}
	return earliest.UTC(), latest.UTC()
}
