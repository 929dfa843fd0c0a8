// Package powercurve builds wind turbine power curves from observed wind
// speed and power data. Two fitting methods are provided: the IEC
// 61400-12-1-2 binning method and a 5-parameter logistic least-squares fit.
package powercurve

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// Func evaluates a fitted power curve at the given wind speed, in m/s,
// returning power in the units of the training data.
type Func func(windSpeed float64) float64

// IEC fits a binned power curve per IEC 61400-12-1-2. Wind speeds are binned
// into bins of `binWidth` (0.5 m/s per the standard) spanning
// [windspeedStart, windspeedEnd]; the curve value in each bin is the mean
// observed power. Empty interior bins are linearly interpolated and leading
// empty bins are back-filled. The returned function evaluates to zero
// outside the cutoff range.
func IEC(windSpeed, power []float64, binWidth, windspeedStart, windspeedEnd float64) (Func, error) {
	if len(windSpeed) != len(power) {
		return nil, fmt.Errorf("length mismatch: %d wind speeds, %d powers", len(windSpeed), len(power))
	}
	if len(windSpeed) == 0 {
		return nil, errors.New("no data to fit")
	}
	if binWidth <= 0 || windspeedEnd <= windspeedStart {
		return nil, errors.New("invalid bin specification")
	}

	// Evenly spaced bin edges over the cutoff range, with anything above the
	// last edge landing in a final unbounded bin.
	nEdges := int(math.Ceil((windspeedEnd-windspeedStart)/binWidth)) + 1
	edges := make([]float64, nEdges+1)
	for i := 0; i < nEdges; i++ {
		edges[i] = windspeedStart + (windspeedEnd-windspeedStart)*float64(i)/float64(nEdges-1)
	}
	edges[nEdges] = math.Inf(1)

	nBins := len(edges) - 1
	sums := make([]float64, nBins)
	counts := make([]int, nBins)
	for i, ws := range windSpeed {
		if math.IsNaN(ws) || math.IsNaN(power[i]) {
			continue
		}
		for b := 0; b < nBins; b++ {
			if ws >= edges[b] && ws < edges[b+1] {
				sums[b] += power[i]
				counts[b]++
				break
			}
		}
	}

	binMeans := make([]float64, nBins)
	for b := range binMeans {
		if counts[b] == 0 {
			binMeans[b] = math.NaN()
		} else {
			binMeans[b] = sums[b] / float64(counts[b])
		}
	}
	interpolateMissingBins(binMeans)

	pc := func(x float64) float64 {
		if x < windspeedStart || x > windspeedEnd {
			return 0
		}
		for b := 0; b < nBins; b++ {
			if x >= edges[b] && x < edges[b+1] {
				return binMeans[b]
			}
		}
		return 0
	}
	return pc, nil
}

// interpolateMissingBins fills NaN bins by linear interpolation between the
// neighbouring populated bins, then back-fills any leading NaNs with the
// first populated value and forward-fills trailing NaNs.
func interpolateMissingBins(binMeans []float64) {
	n := len(binMeans)

	prev := -1
	for i := 0; i < n; i++ {
		if math.IsNaN(binMeans[i]) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			for j := prev + 1; j < i; j++ {
				frac := float64(j-prev) / float64(i-prev)
				binMeans[j] = binMeans[prev] + frac*(binMeans[i]-binMeans[prev])
			}
		}
		prev = i
	}
	if prev == -1 {
		return
	}

	// Leading NaNs take the first populated value, trailing NaNs the last.
	first := 0
	for first < n && math.IsNaN(binMeans[first]) {
		first++
	}
	for i := 0; i < first; i++ {
		binMeans[i] = binMeans[first]
	}
	for i := prev + 1; i < n; i++ {
		binMeans[i] = binMeans[prev]
	}
}

// Logistic5 evaluates the 5-parameter logistic function at wind speed x:
// d + (a-d) / (1 + (x/c)^b)^g. With b negative the curve rises from d at low
// wind speed towards a at high wind speed.
func Logistic5(a, b, c, d, g, x float64) float64 {
	return d + (a-d)/math.Pow(1+math.Pow(x/c, b), g)
}

// logistic5Bounds are the parameter bounds used when fitting, expressed as
// {lower, upper} pairs for a, b, c, d, g.
var logistic5Bounds = [5][2]float64{
	{1200, 1800},
	{-10, -1e-3},
	{1e-3, 30},
	{1e-3, 1},
	{1e-3, 10},
}

// FitLogistic5 fits the 5-parameter logistic curve to the observed data by
// least squares, using Nelder-Mead from the centre of the parameter bounds
// with a quadratic penalty outside them.
func FitLogistic5(windSpeed, power []float64) (Func, [5]float64, error) {
	var params [5]float64
	if len(windSpeed) != len(power) {
		return nil, params, fmt.Errorf("length mismatch: %d wind speeds, %d powers", len(windSpeed), len(power))
	}
	if len(windSpeed) < 5 {
		return nil, params, errors.New("at least five observations are required")
	}

	scale := stat.Mean(power, nil)
	if scale == 0 {
		scale = 1
	}

	cost := func(x []float64) float64 {
		penalty := 0.0
		for i, b := range logistic5Bounds {
			if x[i] < b[0] {
				penalty += (b[0] - x[i]) * (b[0] - x[i])
			}
			if x[i] > b[1] {
				penalty += (x[i] - b[1]) * (x[i] - b[1])
			}
		}

		var sse float64
		for i := range windSpeed {
			if math.IsNaN(windSpeed[i]) || math.IsNaN(power[i]) {
				continue
			}
			r := (power[i] - Logistic5(x[0], x[1], x[2], x[3], x[4], windSpeed[i])) / scale
			sse += r * r
		}
		return sse + penalty
	}

	x0 := make([]float64, 5)
	for i, b := range logistic5Bounds {
		x0[i] = (b[0] + b[1]) / 2
	}

	problem := optimize.Problem{Func: cost}
	result, err := optimize.Minimize(problem, x0, &optimize.Settings{}, &optimize.NelderMead{})
	if err != nil {
		return nil, params, fmt.Errorf("logistic fit: %w", err)
	}

	copy(params[:], result.X)
	a, b, c, d, g := params[0], params[1], params[2], params[3], params[4]
	pc := func(x float64) float64 {
		return Logistic5(a, b, c, d, g, x)
	}
	return pc, params, nil
}

// FromSamples builds a piecewise-linear Curve by sampling a fitted power
// curve function at `step` intervals over [start, end]. Useful for outlier
// screening with Curve.VerticalDistance.
func FromSamples(pc Func, start, end, step float64) *Curve {
	var points []Point
	for x := start; x <= end+1e-9; x += step {
		points = append(points, Point{X: x, Y: pc(x)})
	}
	return &Curve{Points: points}
}
