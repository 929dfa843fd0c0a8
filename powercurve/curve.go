package powercurve

import "math"

// Point represents a cartesian X,Y point on a power curve, with X the wind
// speed in m/s and Y the power in kW.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Curve is a piecewise-linear curve through a set of points ordered by X.
type Curve struct {
	Points []Point `json:"points"`
}

// At returns the linearly interpolated y-value of the curve at `x`.
// NaN is returned if `x` is outside the horizontal span of the curve.
func (c *Curve) At(x float64) float64 {
	for i := 0; i < len(c.Points)-1; i++ {
		p1 := c.Points[i]
		p2 := c.Points[i+1]
		if p1.X <= x && x <= p2.X {
			return linearInterpolation(p1, p2, x)
		}
	}
	return math.NaN()
}

// VerticalDistance returns the vertical (y-axis) distance from the given point to the Curve, a positive number indicating that the
// point is below the curve, and vice-versa.
// NaN is returned if the distance could not be calculated, this can happen if the given point is not within the horizontal span of the curve.
func (c *Curve) VerticalDistance(p Point) float64 {
	curveY := c.At(p.X)
	if math.IsNaN(curveY) {
		return math.NaN()
	}
	return curveY - p.Y
}

// linearInterpolation returns the y-value at `x` given two points.
func linearInterpolation(p1, p2 Point, x float64) float64 {
	return p1.Y + (x-p1.X)*((p2.Y-p1.Y)/(p2.X-p1.X))
}
