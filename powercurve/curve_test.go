package powercurve

import (
	"math"
	"testing"
)

func TestLinearInterpolation(t *testing.T) {

	type subTest struct {
		name      string
		p1        Point
		p2        Point
		x         float64
		expectedY float64
	}

	subTests := []subTest{
		{"positive gradient, positive value", Point{0, 0}, Point{1, 1}, 0.5, 0.5},
		{"positive gradient, negative value", Point{0, 0}, Point{-1, -1}, -0.5, -0.5},
		{"negative gradient, positive value", Point{6, 6}, Point{12, 0}, 9, 3},
		{"negative gradient, negative value", Point{3, 6}, Point{-3, -6}, -1.5, -3},
		{"negative gradient, zero value", Point{6, 6}, Point{-6, -6}, 0, 0},
	}
	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			y := linearInterpolation(subTest.p1, subTest.p2, subTest.x)
			if y != subTest.expectedY {
				t.Errorf("Got %f, expected %f", y, subTest.expectedY)
			}
		})
	}
}

func TestCurveAt(t *testing.T) {
	curve := Curve{
		Points: []Point{
			{0, 0},
			{10, 1000},
			{20, 2000},
		},
	}

	type subTest struct {
		name      string
		x         float64
		expectedY float64
	}

	subTests := []subTest{
		{"on point", 10, 1000},
		{"between points", 5, 500},
		{"second segment", 15, 1500},
		{"below span", -1, math.NaN()},
		{"above span", 21, math.NaN()},
	}

	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			y := curve.At(subTest.x)
			if math.IsNaN(subTest.expectedY) {
				if !math.IsNaN(y) {
					t.Errorf("Got %f, expected NaN", y)
				}
				return
			}
			if y != subTest.expectedY {
				t.Errorf("Got %f, expected %f", y, subTest.expectedY)
			}
		})
	}
}

func TestVerticalDistance(t *testing.T) {

	type subTest struct {
		name             string
		curve            Curve
		point            Point
		expectedDistance float64
	}

	subTests := []subTest{
		{
			name: "below",
			curve: Curve{
				Points: []Point{
					{0, 0},
					{1, 1},
					{5, 3},
				},
			},
			point:            Point{3, 0},
			expectedDistance: 2,
		},
		{
			name: "above",
			curve: Curve{
				Points: []Point{
					{0, 0},
					{1, 1},
					{5, 3},
				},
			},
			point:            Point{0.5, 1},
			expectedDistance: -0.5,
		},
		{
			name: "outside span",
			curve: Curve{
				Points: []Point{
					{0, 0},
					{1, 1},
				},
			},
			point:            Point{2, 0},
			expectedDistance: math.NaN(),
		},
	}

	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			distance := subTest.curve.VerticalDistance(subTest.point)
			if math.IsNaN(subTest.expectedDistance) {
				if !math.IsNaN(distance) {
					t.Errorf("Got %f, expected NaN", distance)
				}
				return
			}
			if distance != subTest.expectedDistance {
				t.Errorf("Got %f, expected %f", distance, subTest.expectedDistance)
			}
		})
	}
}
