package timeseries

import (
	"math"
	"testing"
	"time"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("Could not parse time %q: %v", s, err)
	}
	return parsed
}

func TestFindGaps(t *testing.T) {
	base := mustParse(t, "2015-06-01T00:00:00Z")
	freq := 10 * time.Minute

	type subTest struct {
		name         string
		times        []time.Time
		expectedGaps []time.Time
	}

	subTests := []subTest{
		{
			name:         "contiguous",
			times:        []time.Time{base, base.Add(freq), base.Add(2 * freq)},
			expectedGaps: nil,
		},
		{
			name:         "contiguous with duplicate",
			times:        []time.Time{base, base.Add(freq), base.Add(freq), base.Add(2 * freq)},
			expectedGaps: nil,
		},
		{
			name:         "single gap",
			times:        []time.Time{base, base.Add(2 * freq)},
			expectedGaps: []time.Time{base.Add(freq)},
		},
		{
			name:         "two gaps unsorted input",
			times:        []time.Time{base.Add(3 * freq), base, base.Add(5 * freq)},
			expectedGaps: []time.Time{base.Add(freq), base.Add(2 * freq), base.Add(4 * freq)},
		},
		{
			name:         "too short",
			times:        []time.Time{base},
			expectedGaps: nil,
		},
	}

	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			gaps := FindGaps(subTest.times, freq)
			if len(gaps) != len(subTest.expectedGaps) {
				t.Fatalf("Got %d gaps, expected %d", len(gaps), len(subTest.expectedGaps))
			}
			for i := range gaps {
				if !gaps[i].Equal(subTest.expectedGaps[i]) {
					t.Errorf("Gap %d: got %v, expected %v", i, gaps[i], subTest.expectedGaps[i])
				}
			}
		})
	}
}

func TestFindDuplicates(t *testing.T) {
	base := mustParse(t, "2015-06-01T00:00:00Z")

	dups := FindDuplicates([]time.Time{base, base, base.Add(time.Hour), base})
	if len(dups) != 2 {
		t.Fatalf("Got %d duplicates, expected 2", len(dups))
	}
	for _, d := range dups {
		if !d.Equal(base) {
			t.Errorf("Got duplicate %v, expected %v", d, base)
		}
	}

	if dups := FindDuplicates([]time.Time{base, base.Add(time.Hour)}); len(dups) != 0 {
		t.Errorf("Got %d duplicates, expected none", len(dups))
	}
}

func TestGapFill(t *testing.T) {
	base := mustParse(t, "2015-06-01T00:00:00Z")
	freq := time.Hour

	filled := GapFill([]time.Time{base.Add(2 * freq), base}, freq)
	if len(filled) != 3 {
		t.Fatalf("Got %d timestamps, expected 3", len(filled))
	}
	for i := range filled {
		if expected := base.Add(time.Duration(i) * freq); !filled[i].Equal(expected) {
			t.Errorf("Timestamp %d: got %v, expected %v", i, filled[i], expected)
		}
	}
}

func TestFractionNaN(t *testing.T) {
	type subTest struct {
		name     string
		vals     []float64
		expected float64
	}

	subTests := []subTest{
		{"empty", nil, 1},
		{"no NaNs", []float64{1, 2, 3}, 0},
		{"half NaNs", []float64{1, math.NaN(), 2, math.NaN()}, 0.5},
		{"all NaNs", []float64{math.NaN()}, 1},
	}

	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			got := FractionNaN(subTest.vals)
			if got != subTest.expected {
				t.Errorf("Got %f, expected %f", got, subTest.expected)
			}
		})
	}
}

func TestNumDaysAndHours(t *testing.T) {
	base := mustParse(t, "2015-06-01T22:30:00Z")
	times := []time.Time{
		base,
		base.Add(30 * time.Minute), // 23:00, same day
		base.Add(2 * time.Hour),    // 00:30 next day
		base.Add(2 * time.Hour),    // duplicate
	}

	if got := NumDays(times); got != 2 {
		t.Errorf("NumDays got %d, expected 2", got)
	}
	if got := NumHours(times); got != 3 {
		t.Errorf("NumHours got %d, expected 3", got)
	}

	// The count spans the record, so days and hours with no observations
	// still count.
	gappy := []time.Time{base, base.Add(48 * time.Hour)}
	if got := NumDays(gappy); got != 3 {
		t.Errorf("NumDays got %d, expected 3", got)
	}
	if got := NumHours(gappy); got != 49 {
		t.Errorf("NumHours got %d, expected 49", got)
	}

	if got, want := NumDays(nil), 0; got != want {
		t.Errorf("NumDays of empty got %d, expected %d", got, want)
	}
}

func TestLocalToUTC(t *testing.T) {
	naive := time.Date(2015, 6, 1, 12, 0, 0, 0, time.UTC)
	got, err := LocalToUTC(naive, "Europe/Paris")
	if err != nil {
		t.Fatalf("LocalToUTC failed: %v", err)
	}
	expected := time.Date(2015, 6, 1, 10, 0, 0, 0, time.UTC)
	if !got.Equal(expected) {
		t.Errorf("Got %v, expected %v", got, expected)
	}

	if _, err := LocalToUTC(naive, "Not/AZone"); err == nil {
		t.Errorf("Expected error for unknown timezone")
	}
}
