// Package met provides methods for processing meteorological data: wind
// vector conversions, air density per IEC 61400-12, vertical extrapolation of
// pressure and wind speed, turbulence intensity, shear and veer.
package met

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Gas constants, in J/kg/K.
const (
	RDryAir      = 287.058
	RWaterVapour = 461.5
)

// standardGravity is the standard acceleration due to gravity, in m/s2.
const standardGravity = 9.80665

// WindDirection computes wind direction in degrees from the zonal (u) and
// meridional (v) wind components, in m/s. The output is in [0, 360), with 360
// mapped to 0.
func WindDirection(u, v []float64) ([]float64, error) {
	if len(u) != len(v) {
		return nil, fmt.Errorf("length mismatch: %d u values, %d v values", len(u), len(v))
	}
	wd := make([]float64, len(u))
	for i := range u {
		d := 180 + math.Atan2(u[i], v[i])*180/math.Pi
		if d == 360 {
			d = 0
		}
		wd[i] = d
	}
	return wd, nil
}

// UVComponents computes the zonal (u) and meridional (v) components of the
// horizontal wind, in m/s, from wind speed in m/s and direction in degrees.
// Negative speeds or directions are an error.
func UVComponents(windSpeed, windDir []float64) (u, v []float64, err error) {
	if len(windSpeed) != len(windDir) {
		return nil, nil, fmt.Errorf("length mismatch: %d speeds, %d directions", len(windSpeed), len(windDir))
	}
	for _, ws := range windSpeed {
		if ws < 0 {
			return nil, nil, errors.New("negative values exist in the wind speed data")
		}
	}
	for _, wd := range windDir {
		if wd < 0 {
			return nil, nil, errors.New("negative values exist in the wind direction data")
		}
	}

	u = make([]float64, len(windSpeed))
	v = make([]float64, len(windSpeed))
	for i := range windSpeed {
		rad := windDir[i] * math.Pi / 180
		u[i] = round10(-windSpeed[i] * math.Sin(rad))
		v[i] = round10(-windSpeed[i] * math.Cos(rad))
	}
	return u, v, nil
}

// round10 rounds to 10 decimal places to stabilise values that should be
// exactly zero.
func round10(x float64) float64 {
	return math.Round(x*1e10) / 1e10
}

// AirDensity calculates air density, in kg/m3, from the ideal gas law per the
// IEC 61400-12 definition. Temperature is in Kelvin, pressure in Pascals and
// relative humidity a fraction in (0, 1). A nil humidity slice applies the
// IEC default of 0.5. Negative inputs are an error.
func AirDensity(tempK, presPa, humidity []float64) ([]float64, error) {
	if len(tempK) != len(presPa) {
		return nil, fmt.Errorf("length mismatch: %d temperatures, %d pressures", len(tempK), len(presPa))
	}
	if humidity == nil {
		humidity = make([]float64, len(tempK))
		for i := range humidity {
			humidity[i] = 0.5
		}
	}
	if len(humidity) != len(tempK) {
		return nil, fmt.Errorf("length mismatch: %d temperatures, %d humidities", len(tempK), len(humidity))
	}
	for i := range tempK {
		if tempK[i] < 0 {
			return nil, errors.New("negative values exist in the temperature data")
		}
		if presPa[i] < 0 {
			return nil, errors.New("negative values exist in the pressure data")
		}
		if humidity[i] < 0 {
			return nil, errors.New("negative values exist in the humidity data")
		}
	}

	rho := make([]float64, len(tempK))
	for i := range tempK {
		rho[i] = (1 / tempK[i]) * (presPa[i]/RDryAir -
			humidity[i]*(0.0000205*math.Exp(0.0631846*tempK[i]))*(1/RDryAir-1/RWaterVapour))
	}
	return rho, nil
}

// PressureExtrapolation extrapolates pressure from height z0 to z1 using the
// hydrostatic equation, given the average temperature in the layer, in
// Kelvin. Pressures are in Pascals and heights in meters.
func PressureExtrapolation(p0, tempAvg, z0, z1 []float64) ([]float64, error) {
	if len(p0) != len(tempAvg) || len(p0) != len(z0) || len(p0) != len(z1) {
		return nil, errors.New("pressure, temperature and height slices must have equal length")
	}
	for i := range p0 {
		if p0[i] < 0 {
			return nil, errors.New("negative values exist in the pressure data")
		}
		if tempAvg[i] < 0 {
			return nil, errors.New("negative values exist in the temperature data")
		}
	}

	p1 := make([]float64, len(p0))
	for i := range p0 {
		p1[i] = p0[i] * math.Exp(-standardGravity*(z1[i]-z0[i])/RDryAir/tempAvg[i])
	}
	return p1, nil
}

// DensityAdjustedWindSpeed applies the IEC 61400-12-1 air density correction
// to wind speed measurements, normalising against the mean density of the
// record.
func DensityAdjustedWindSpeed(windSpeed, density []float64) ([]float64, error) {
	if len(windSpeed) != len(density) {
		return nil, fmt.Errorf("length mismatch: %d speeds, %d densities", len(windSpeed), len(density))
	}
	// The reference density skips NaN entries, so a hole in the density
	// record only blanks its own row.
	var sum float64
	n := 0
	for _, d := range density {
		if !math.IsNaN(d) {
			sum += d
			n++
		}
	}
	mean := math.NaN()
	if n > 0 {
		mean = sum / float64(n)
	}

	adjusted := make([]float64, len(windSpeed))
	for i := range windSpeed {
		adjusted[i] = windSpeed[i] * math.Cbrt(density[i]/mean)
	}
	return adjusted, nil
}

// TurbulenceIntensity computes the ratio of the wind speed standard deviation
// to the mean wind speed.
func TurbulenceIntensity(mean, std []float64) ([]float64, error) {
	if len(mean) != len(std) {
		return nil, fmt.Errorf("length mismatch: %d means, %d stds", len(mean), len(std))
	}
	ti := make([]float64, len(mean))
	for i := range mean {
		ti[i] = std[i] / mean[i]
	}
	return ti, nil
}

// ShearResult holds the output of ComputeShear when reference values are
// requested.
type ShearResult struct {
	Alpha           []float64 // per-timestep shear exponent
	ReferenceHeight float64   // geometric mean of the sensor heights, in meters
	ReferenceSpeed  []float64 // geometric mean wind speed across sensors, in m/s
}

// ComputeShear fits the power-law shear exponent at each timestep from wind
// speed measurements at two or more sensor heights. `speeds` holds one slice
// per sensor, aligned with `heights`; all sensors must cover the same
// timesteps. Zero or NaN speeds are excluded from the per-timestep fit.
func ComputeShear(speeds [][]float64, heights []float64) (*ShearResult, error) {
	if len(speeds) != len(heights) {
		return nil, fmt.Errorf("length mismatch: %d sensors, %d heights", len(speeds), len(heights))
	}
	if len(speeds) < 2 {
		return nil, errors.New("at least two sensor heights are required")
	}
	n := len(speeds[0])
	for _, s := range speeds {
		if len(s) != n {
			return nil, errors.New("all sensors must have the same number of timesteps")
		}
	}

	nSensors := len(heights)
	logZ := make([]float64, nSensors)
	for j, z := range heights {
		logZ[j] = math.Log(z)
	}

	alpha := make([]float64, n)
	refSpeed := make([]float64, n)
	for i := 0; i < n; i++ {
		// Collect log(u) and log(z) for the valid sensors at this timestep.
		var u, z []float64
		for j := 0; j < nSensors; j++ {
			lu := math.Log(speeds[j][i])
			if math.IsNaN(lu) || math.IsInf(lu, -1) {
				continue
			}
			u = append(u, lu)
			z = append(z, logZ[j])
		}
		if len(u) < 2 {
			alpha[i] = math.NaN()
			refSpeed[i] = math.NaN()
			continue
		}

		// Centre the heights so the regression slope reduces to
		// sum(z*u)/sum(z*z).
		zMean := stat.Mean(z, nil)
		var num, den, uSum float64
		for k := range u {
			zc := z[k] - zMean
			num += zc * u[k]
			den += zc * zc
			uSum += u[k]
		}
		alpha[i] = num / den
		refSpeed[i] = math.Exp(uSum / float64(len(u)))
	}

	logZSum := 0.0
	for _, lz := range logZ {
		logZSum += lz
	}

	return &ShearResult{
		Alpha:           alpha,
		ReferenceHeight: math.Exp(logZSum / float64(nSensors)),
		ReferenceSpeed:  refSpeed,
	}, nil
}

// ExtrapolateWindSpeed extrapolates wind speeds from height z1 to z2 using
// the power law with the given per-timestep shear exponents.
func ExtrapolateWindSpeed(v1 []float64, z1, z2 float64, shear []float64) ([]float64, error) {
	if len(v1) != len(shear) {
		return nil, fmt.Errorf("length mismatch: %d speeds, %d shear values", len(v1), len(shear))
	}
	v2 := make([]float64, len(v1))
	for i := range v1 {
		v2[i] = v1[i] * math.Pow(z2/z1, shear[i])
	}
	return v2, nil
}

// Veer computes the wind direction veer, in degrees per meter, between
// direction measurements at two heights. Direction changes are wrapped into
// (-180, 180] before dividing by the height difference.
func Veer(windA []float64, heightA float64, windB []float64, heightB float64) ([]float64, error) {
	if len(windA) != len(windB) {
		return nil, fmt.Errorf("length mismatch: %d and %d directions", len(windA), len(windB))
	}
	veer := make([]float64, len(windA))
	for i := range windA {
		delta := windB[i] - windA[i]
		if delta > 180 {
			delta -= 360
		} else if delta <= -180 {
			delta += 360
		}
		veer[i] = delta / (heightB - heightA)
	}
	return veer, nil
}
