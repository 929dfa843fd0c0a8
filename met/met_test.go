package met

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindDirection(t *testing.T) {
	type subTest struct {
		name     string
		u        float64
		v        float64
		expected float64
	}

	// A wind blowing towards positive v (northward) comes from the south.
	subTests := []subTest{
		{"northerly", 0, -1, 0}, // 360 wraps to 0
		{"southerly", 0, 1, 180},
		{"easterly", -1, 0, 90},
		{"westerly", 1, 0, 270},
	}

	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			wd, err := WindDirection([]float64{subTest.u}, []float64{subTest.v})
			require.NoError(t, err)
			assert.InDelta(t, subTest.expected, wd[0], 1e-9)
		})
	}

	_, err := WindDirection([]float64{1}, []float64{1, 2})
	assert.Error(t, err)
}

func TestUVComponentsRoundTrip(t *testing.T) {
	speeds := []float64{3.5, 7.2, 12.0, 0.5}
	dirs := []float64{10, 95, 210, 340}

	u, v, err := UVComponents(speeds, dirs)
	require.NoError(t, err)

	wd, err := WindDirection(u, v)
	require.NoError(t, err)
	for i := range dirs {
		assert.InDelta(t, dirs[i], wd[i], 1e-6)
		assert.InDelta(t, speeds[i], math.Hypot(u[i], v[i]), 1e-6)
	}
}

func TestUVComponentsRejectsNegatives(t *testing.T) {
	_, _, err := UVComponents([]float64{-1}, []float64{90})
	assert.Error(t, err)

	_, _, err = UVComponents([]float64{1}, []float64{-90})
	assert.Error(t, err)
}

func TestAirDensity(t *testing.T) {
	// Standard atmosphere at sea level should come out near 1.225 kg/m3.
	rho, err := AirDensity([]float64{288.15}, []float64{101325}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.225, rho[0], 0.01)

	// Dry air is denser than humid air at the same temperature and pressure.
	dry, err := AirDensity([]float64{288.15}, []float64{101325}, []float64{0.0})
	require.NoError(t, err)
	humid, err := AirDensity([]float64{288.15}, []float64{101325}, []float64{1.0})
	require.NoError(t, err)
	assert.Greater(t, dry[0], humid[0])

	_, err = AirDensity([]float64{-1}, []float64{101325}, nil)
	assert.Error(t, err)
}

func TestPressureExtrapolation(t *testing.T) {
	p1, err := PressureExtrapolation(
		[]float64{101325},
		[]float64{288.15},
		[]float64{0},
		[]float64{100},
	)
	require.NoError(t, err)

	// Roughly 12 Pa per meter near the surface.
	assert.InDelta(t, 100130, p1[0], 50)

	// Extrapolating downwards increases pressure.
	p0, err := PressureExtrapolation([]float64{101325}, []float64{288.15}, []float64{100}, []float64{0})
	require.NoError(t, err)
	assert.Greater(t, p0[0], 101325.0)
}

func TestDensityAdjustedWindSpeed(t *testing.T) {
	// Uniform density leaves the speeds untouched.
	ws, err := DensityAdjustedWindSpeed([]float64{5, 10}, []float64{1.2, 1.2})
	require.NoError(t, err)
	assert.InDelta(t, 5, ws[0], 1e-12)
	assert.InDelta(t, 10, ws[1], 1e-12)

	// Denser-than-average air scales the speed up.
	ws, err = DensityAdjustedWindSpeed([]float64{5, 5}, []float64{1.3, 1.1})
	require.NoError(t, err)
	assert.Greater(t, ws[0], 5.0)
	assert.Less(t, ws[1], 5.0)

	// A hole in the density record only blanks its own row.
	ws, err = DensityAdjustedWindSpeed([]float64{5, 10, 15}, []float64{1.2, math.NaN(), 1.2})
	require.NoError(t, err)
	assert.InDelta(t, 5, ws[0], 1e-12)
	assert.True(t, math.IsNaN(ws[1]))
	assert.InDelta(t, 15, ws[2], 1e-12)
}

func TestTurbulenceIntensity(t *testing.T) {
	ti, err := TurbulenceIntensity([]float64{10, 5}, []float64{1, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.1, ti[0], 1e-12)
	assert.InDelta(t, 0.1, ti[1], 1e-12)
}

func TestComputeShear(t *testing.T) {
	// Construct a perfect power-law profile with alpha = 0.2.
	heights := []float64{40, 60, 80}
	alpha := 0.2
	ref := 8.0
	speeds := make([][]float64, len(heights))
	for j, z := range heights {
		speeds[j] = []float64{
			ref * math.Pow(z/80, alpha),
			1.5 * ref * math.Pow(z/80, alpha),
		}
	}

	result, err := ComputeShear(speeds, heights)
	require.NoError(t, err)
	require.Len(t, result.Alpha, 2)
	assert.InDelta(t, alpha, result.Alpha[0], 1e-9)
	assert.InDelta(t, alpha, result.Alpha[1], 1e-9)

	// Reference height is the geometric mean of the sensor heights.
	assert.InDelta(t, math.Cbrt(40*60*80), result.ReferenceHeight, 1e-9)

	_, err = ComputeShear(speeds[:1], heights[:1])
	assert.Error(t, err)
}

func TestExtrapolateWindSpeed(t *testing.T) {
	v2, err := ExtrapolateWindSpeed([]float64{8}, 80, 120, []float64{0.2})
	require.NoError(t, err)
	assert.InDelta(t, 8*math.Pow(1.5, 0.2), v2[0], 1e-12)
}

func TestVeer(t *testing.T) {
	type subTest struct {
		name     string
		dirA     float64
		dirB     float64
		expected float64
	}

	// 20m height difference in every case.
	subTests := []subTest{
		{"simple", 180, 200, 1},
		{"wrap high", 350, 10, 1},
		{"wrap low", 10, 350, -1},
	}

	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			veer, err := Veer([]float64{subTest.dirA}, 80, []float64{subTest.dirB}, 100)
			require.NoError(t, err)
			assert.InDelta(t, subTest.expected, veer[0], 1e-9)
		})
	}
}
