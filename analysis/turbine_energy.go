package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/cepro/plantperf/plant"
	"github.com/cepro/plantperf/powercurve"
	"github.com/cepro/plantperf/results"
)

// TurbineIdealConfig parameterises the turbine ideal energy (TIE)
// estimation.
type TurbineIdealConfig struct {
	BinWidthMS     float64 // power curve bin width, 0.5 m/s per IEC by default
	WindSpeedEndMS float64 // power curve cutoff, 30 m/s by default
	// OutlierDistancePct is the fraction of rated power below the fitted
	// curve beyond which a point is treated as underperformance and excluded
	// from the re-fit. Defaults to 0.25.
	OutlierDistancePct float64
}

func (c *TurbineIdealConfig) applyDefaults() {
	if c.BinWidthMS == 0 {
		c.BinWidthMS = 0.5
	}
	if c.WindSpeedEndMS == 0 {
		c.WindSpeedEndMS = 30
	}
	if c.OutlierDistancePct == 0 {
		c.OutlierDistancePct = 0.25
	}
}

// TurbineIdeal holds the per-turbine ideal and actual energy over the period
// of record, annualised to GWh/yr.
type TurbineIdeal struct {
	IdealGWh  float64
	ActualGWh float64
	LossPct   float64 // 1 - actual/ideal
}

// TurbineIdealResult holds the plant-level TIE breakdown.
type TurbineIdealResult struct {
	RunID         uuid.UUID
	PerTurbine    map[string]TurbineIdeal
	TotalIdealGWh float64
	TotalActGWh   float64
	LossPct       float64
}

// Record flattens the result into a data platform row.
func (r *TurbineIdealResult) Record(plantID uuid.UUID) results.AnalysisResult {
	return results.AnalysisResult{
		ID:       uuid.New(),
		RunID:    r.RunID,
		PlantID:  plantID,
		Method:   results.MethodTurbineIdeal,
		Time:     time.Now().UTC(),
		ValueGWh: r.TotalIdealGWh,
		LossPct:  r.LossPct,
	}
}

// TurbineIdealEnergy estimates, per turbine, the energy that would have been
// produced under normal operation: a power curve is fitted to the filtered
// SCADA data, underperforming observations are screened out against the
// fitted curve, the curve is re-fitted, and the ideal energy is the re-fitted
// curve evaluated over every valid wind speed observation.
func TurbineIdealEnergy(p *plant.Plant, config TurbineIdealConfig) (*TurbineIdealResult, error) {
	config.applyDefaults()
	if len(p.Scada) == 0 {
		return nil, errors.New("the scada table is empty")
	}

	logger := slog.Default().With("analysis", results.MethodTurbineIdeal)
	freqHours := p.Metadata.ScadaFrequency.Std().Hours()
	if freqHours <= 0 {
		return nil, errors.New("plant metadata has no SCADA frequency")
	}

	result := &TurbineIdealResult{
		RunID:      uuid.New(),
		PerTurbine: make(map[string]TurbineIdeal),
	}

	for turbineID, rows := range p.ScadaByTurbine() {
		ratedKW := ratedPower(p, turbineID, rows)

		perTurbine, err := idealEnergyForTurbine(rows, ratedKW, freqHours, config)
		if err != nil {
			return nil, fmt.Errorf("turbine %s: %w", turbineID, err)
		}
		result.PerTurbine[turbineID] = perTurbine
		result.TotalIdealGWh += perTurbine.IdealGWh
		result.TotalActGWh += perTurbine.ActualGWh

		logger.Debug("Fitted turbine",
			"turbine", turbineID,
			"ideal_gwh", perTurbine.IdealGWh,
			"actual_gwh", perTurbine.ActualGWh,
		)
	}

	if result.TotalIdealGWh > 0 {
		result.LossPct = 1 - result.TotalActGWh/result.TotalIdealGWh
	}
	logger.Info("Turbine ideal energy complete",
		"turbines", len(result.PerTurbine),
		"tie_gwh", result.TotalIdealGWh,
		"loss_pct", result.LossPct,
	)
	return result, nil
}

func idealEnergyForTurbine(rows []plant.ScadaRow, ratedKW, freqHours float64, config TurbineIdealConfig) (TurbineIdeal, error) {
	var ws, power []float64
	for _, row := range rows {
		if math.IsNaN(row.WindSpeedMS) || math.IsNaN(row.PowerKW) {
			continue
		}
		if row.PowerKW < 0 || row.PowerKW > 2*ratedKW {
			continue
		}
		ws = append(ws, row.WindSpeedMS)
		power = append(power, row.PowerKW)
	}
	if len(ws) == 0 {
		return TurbineIdeal{}, errors.New("no valid scada data")
	}

	pc, err := powercurve.IEC(ws, power, config.BinWidthMS, 0, config.WindSpeedEndMS)
	if err != nil {
		return TurbineIdeal{}, fmt.Errorf("fit power curve: %w", err)
	}

	// Screen out observations far below the first-pass curve, which reflect
	// derating or downtime rather than the turbine's normal response, then
	// fit again on what remains.
	curve := powercurve.FromSamples(pc, 0, config.WindSpeedEndMS, config.BinWidthMS)
	maxBelow := config.OutlierDistancePct * ratedKW
	var cleanWS, cleanPower []float64
	for i := range ws {
		distance := curve.VerticalDistance(powercurve.Point{X: ws[i], Y: power[i]})
		if !math.IsNaN(distance) && distance > maxBelow {
			continue
		}
		cleanWS = append(cleanWS, ws[i])
		cleanPower = append(cleanPower, power[i])
	}
	if len(cleanWS) > 0 {
		pc, err = powercurve.IEC(cleanWS, cleanPower, config.BinWidthMS, 0, config.WindSpeedEndMS)
		if err != nil {
			return TurbineIdeal{}, fmt.Errorf("re-fit power curve: %w", err)
		}
	}

	var idealKWh, actualKWh float64
	for i := range ws {
		idealKWh += pc(ws[i]) * freqHours
		actualKWh += power[i] * freqHours
	}

	// Annualise from the observed hours to a mean year.
	observedHours := float64(len(ws)) * freqHours
	scale := hoursPerYear / observedHours

	ideal := TurbineIdeal{
		IdealGWh:  idealKWh * scale / 1e6,
		ActualGWh: actualKWh * scale / 1e6,
	}
	if ideal.IdealGWh > 0 {
		ideal.LossPct = 1 - ideal.ActualGWh/ideal.IdealGWh
	}
	return ideal, nil
}

// ratedPower resolves the turbine's rated power from the asset table,
// falling back to the maximum observed power.
func ratedPower(p *plant.Plant, turbineID string, rows []plant.ScadaRow) float64 {
	if asset, ok := p.AssetByID(turbineID); ok && asset.RatedPowerKW > 0 {
		return asset.RatedPowerKW
	}
	maxPower := 0.0
	for _, row := range rows {
		if row.PowerKW > maxPower {
			maxPower = row.PowerKW
		}
	}
	return maxPower
}
