package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cepro/plantperf/plant"
)

func TestYawMisalignment(t *testing.T) {
	base := time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)
	offsetDeg := 8.0

	// Power follows a clean cosine of the vane angle, peaking at the static
	// offset.
	p := &plant.Plant{Metadata: plant.Metadata{ScadaFrequency: plant.Duration(10 * time.Minute)}}
	i := 0
	for vane := -30.0; vane <= 30.0; vane += 0.5 {
		p.Scada = append(p.Scada, plant.ScadaRow{
			Time:         base.Add(time.Duration(i) * 10 * time.Minute),
			TurbineID:    "T1",
			WindSpeedMS:  5.5,
			VaneAngleDeg: vane,
			PowerKW:      1000 * math.Cos((vane-offsetDeg)*math.Pi/180),
		})
		i++
	}

	result, err := YawMisalignment(p, YawMisalignmentConfig{})
	require.NoError(t, err)

	yaw, ok := result.PerTurbine["T1"]
	require.True(t, ok)
	assert.InDelta(t, offsetDeg, yaw.OffsetDeg, 1e-6)

	// Only the [5, 6) m/s bin was populated.
	fitted := 0
	for _, binOffset := range yaw.PerBinOffset {
		if !math.IsNaN(binOffset) {
			fitted++
		}
	}
	assert.Equal(t, 1, fitted)
}

func TestYawMisalignmentTooLittleData(t *testing.T) {
	p := &plant.Plant{
		Metadata: plant.Metadata{ScadaFrequency: plant.Duration(10 * time.Minute)},
		Scada: []plant.ScadaRow{
			{Time: time.Now(), TurbineID: "T1", WindSpeedMS: 5.5, VaneAngleDeg: 1, PowerKW: 100},
		},
	}
	_, err := YawMisalignment(p, YawMisalignmentConfig{})
	assert.Error(t, err)
}

func TestFitCosinePhase(t *testing.T) {
	var vane, power []float64
	for v := -20.0; v <= 20.0; v += 1 {
		vane = append(vane, v)
		power = append(power, 500*math.Cos((v+5)*math.Pi/180))
	}
	offset, ok := fitCosinePhase(vane, power)
	require.True(t, ok)
	assert.InDelta(t, -5, offset, 1e-9)

	// A stuck vane gives a degenerate system.
	_, ok = fitCosinePhase([]float64{3, 3, 3}, []float64{1, 2, 3})
	assert.False(t, ok)
}
