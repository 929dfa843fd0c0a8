package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cepro/plantperf/plant"
)

func TestWakeLosses(t *testing.T) {
	base := time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)

	// T2 sits 400m due north of T1. With a northerly wind T2 is freestream
	// and T1 operates in its wake.
	latStep := 400.0 / earthRadiusM * 180 / 3.14159265358979
	p := &plant.Plant{
		Metadata: plant.Metadata{ScadaFrequency: plant.Duration(10 * time.Minute)},
		Asset: []plant.AssetRow{
			{ID: "T1", Type: "turbine", Latitude: 48.0, Longitude: 5.0},
			{ID: "T2", Type: "turbine", Latitude: 48.0 + latStep, Longitude: 5.0},
		},
	}

	for i := 0; i < 10; i++ {
		ts := base.Add(time.Duration(i) * 10 * time.Minute)
		p.Scada = append(p.Scada,
			plant.ScadaRow{Time: ts, TurbineID: "T1", PowerKW: 800, NacelleDirectionDeg: 0},
			plant.ScadaRow{Time: ts, TurbineID: "T2", PowerKW: 1000, NacelleDirectionDeg: 0},
		)
	}

	result, err := WakeLosses(p, WakeLossesConfig{})
	require.NoError(t, err)

	assert.InDelta(t, 0.2, result.PerTurbinePct["T1"], 1e-9)
	assert.InDelta(t, 0.0, result.PerTurbinePct["T2"], 1e-9)
	assert.InDelta(t, 0.1, result.PlantLossPct, 1e-9)
	assert.Equal(t, 10, result.Timestamps)
}

func TestWakeLossesRequiresLayout(t *testing.T) {
	p := &plant.Plant{
		Scada: []plant.ScadaRow{{Time: time.Now(), TurbineID: "T1", PowerKW: 1}},
		Asset: []plant.AssetRow{{ID: "T1", Type: "turbine"}},
	}
	_, err := WakeLosses(p, WakeLossesConfig{})
	assert.Error(t, err)
}
