package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cepro/plantperf/plant"
)

func TestTurbineIdealEnergy(t *testing.T) {
	base := time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)

	p := &plant.Plant{
		Metadata: plant.Metadata{ScadaFrequency: plant.Duration(time.Hour)},
		Asset:    []plant.AssetRow{{ID: "T1", Type: "turbine", RatedPowerKW: 1000}},
	}

	addRows := func(n int, ws, power float64) {
		for i := 0; i < n; i++ {
			p.Scada = append(p.Scada, plant.ScadaRow{
				Time:        base.Add(time.Duration(len(p.Scada)) * time.Hour),
				TurbineID:   "T1",
				WindSpeedMS: ws,
				PowerKW:     power,
			})
		}
	}

	// Normal operation at two wind speeds, plus a block of zero-power rows at
	// 8 m/s. The zero-power rows drag the first-pass 8 m/s bin down to 900 kW,
	// then sit 900 kW below that curve and are screened out of the re-fit, so
	// the ideal curve recovers the full 1000 kW.
	addRows(50, 5, 500)
	addRows(90, 8, 1000)
	addRows(10, 8, 0)

	result, err := TurbineIdealEnergy(p, TurbineIdealConfig{})
	require.NoError(t, err)

	// Ideal: 50h at 500 kW plus 100h at 1000 kW, annualised from 150 hours.
	assert.InDelta(t, 0.125*hoursPerYear/150, result.TotalIdealGWh, 1e-9)
	assert.InDelta(t, 0.115*hoursPerYear/150, result.TotalActGWh, 1e-9)
	assert.InDelta(t, 0.08, result.LossPct, 1e-9)

	perTurbine, ok := result.PerTurbine["T1"]
	require.True(t, ok)
	assert.InDelta(t, 0.08, perTurbine.LossPct, 1e-9)
}

func TestTurbineIdealEnergyEmptyPlant(t *testing.T) {
	_, err := TurbineIdealEnergy(&plant.Plant{}, TurbineIdealConfig{})
	assert.Error(t, err)
}
