package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/cepro/plantperf/plant"
	"github.com/cepro/plantperf/results"
)

// ElectricalLossesResult holds the estimated electrical losses between the
// turbine terminals and the revenue meter.
type ElectricalLossesResult struct {
	RunID         uuid.UUID
	LossPct       float64 // 1 - metered energy / turbine energy
	TurbineGWh    float64 // turbine-side energy over the matched days
	MeterGWh      float64 // meter-side energy over the matched days
	DaysUsed      int
	DaysDiscarded int
}

// Record flattens the result into a data platform row.
func (r *ElectricalLossesResult) Record(plantID uuid.UUID) results.AnalysisResult {
	return results.AnalysisResult{
		ID:      uuid.New(),
		RunID:   r.RunID,
		PlantID: plantID,
		Method:  results.MethodElectricalLosses,
		Time:    time.Now().UTC(),
		LossPct: r.LossPct,
	}
}

// ElectricalLosses compares the summed turbine-level SCADA energy with the
// revenue meter energy. Only days with complete coverage on both sides are
// compared, so downtime in either data source does not masquerade as an
// electrical loss.
func ElectricalLosses(p *plant.Plant) (*ElectricalLossesResult, error) {
	if err := p.Validate(plant.AnalysisElectricalLosses); err != nil {
		return nil, fmt.Errorf("validate plant: %w", err)
	}

	scadaFreq := p.Metadata.ScadaFrequency.Std()
	meterFreq := p.Metadata.MeterFrequency.Std()
	if scadaFreq <= 0 || meterFreq <= 0 {
		return nil, errors.New("plant metadata has no scada or meter frequency")
	}

	turbines := p.TurbineIDs()
	expectedScada := int(24*time.Hour/scadaFreq) * len(turbines)
	expectedMeter := int(24 * time.Hour / meterFreq)

	type day struct{ y, m, d int }
	dayOf := func(t time.Time) day {
		u := t.UTC()
		return day{u.Year(), int(u.Month()), u.Day()}
	}

	scadaSum := make(map[day]float64)
	scadaCount := make(map[day]int)
	for _, row := range p.Scada {
		if math.IsNaN(row.EnergyKWh) {
			continue
		}
		k := dayOf(row.Time)
		scadaSum[k] += row.EnergyKWh
		scadaCount[k]++
	}

	meterSum := make(map[day]float64)
	meterCount := make(map[day]int)
	for _, row := range p.Meter {
		if math.IsNaN(row.EnergyKWh) {
			continue
		}
		k := dayOf(row.Time)
		meterSum[k] += row.EnergyKWh
		meterCount[k]++
	}

	result := &ElectricalLossesResult{RunID: uuid.New()}
	var turbineKWh, meterKWh float64
	for k, count := range scadaCount {
		if count != expectedScada || meterCount[k] != expectedMeter {
			result.DaysDiscarded++
			continue
		}
		turbineKWh += scadaSum[k]
		meterKWh += meterSum[k]
		result.DaysUsed++
	}
	if result.DaysUsed == 0 {
		return nil, errors.New("no days with complete scada and meter coverage")
	}
	if turbineKWh <= 0 {
		return nil, errors.New("turbine energy over the matched days is not positive")
	}

	result.TurbineGWh = turbineKWh / 1e6
	result.MeterGWh = meterKWh / 1e6
	result.LossPct = 1 - meterKWh/turbineKWh

	slog.Default().With("analysis", results.MethodElectricalLosses).Info(
		"Electrical losses complete",
		"loss_pct", result.LossPct,
		"days_used", result.DaysUsed,
		"days_discarded", result.DaysDiscarded,
	)
	return result, nil
}
