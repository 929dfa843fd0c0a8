package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cepro/plantperf/plant"
)

func TestElectricalLosses(t *testing.T) {
	base := time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)

	p := &plant.Plant{
		Metadata: plant.Metadata{
			ScadaFrequency: plant.Duration(time.Hour),
			MeterFrequency: plant.Duration(time.Hour),
		},
		Asset: []plant.AssetRow{{ID: "T1", Type: "turbine"}},
	}

	// Two complete days: turbine side produces 100 kWh per hour, the meter
	// sees 98 kWh per hour, a 2% electrical loss.
	for day := 0; day < 2; day++ {
		for hour := 0; hour < 24; hour++ {
			ts := base.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
			p.Scada = append(p.Scada, plant.ScadaRow{Time: ts, TurbineID: "T1", EnergyKWh: 100})
			p.Meter = append(p.Meter, plant.MeterRow{Time: ts, EnergyKWh: 98})
		}
	}

	// A third day with a SCADA outage must be discarded, not counted as a
	// loss.
	for hour := 0; hour < 12; hour++ {
		ts := base.AddDate(0, 0, 2).Add(time.Duration(hour) * time.Hour)
		p.Scada = append(p.Scada, plant.ScadaRow{Time: ts, TurbineID: "T1", EnergyKWh: 100})
	}
	for hour := 0; hour < 24; hour++ {
		ts := base.AddDate(0, 0, 2).Add(time.Duration(hour) * time.Hour)
		p.Meter = append(p.Meter, plant.MeterRow{Time: ts, EnergyKWh: 98})
	}

	result, err := ElectricalLosses(p)
	require.NoError(t, err)

	assert.InDelta(t, 0.02, result.LossPct, 1e-9)
	assert.Equal(t, 2, result.DaysUsed)
	assert.Equal(t, 1, result.DaysDiscarded)
	assert.InDelta(t, 4800.0/1e6, result.TurbineGWh, 1e-12)
}

func TestElectricalLossesRequiresData(t *testing.T) {
	_, err := ElectricalLosses(&plant.Plant{})
	assert.Error(t, err)
}
