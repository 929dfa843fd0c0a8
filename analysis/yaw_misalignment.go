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

// YawMisalignmentConfig parameterises the static yaw misalignment detection.
type YawMisalignmentConfig struct {
	// Wind speed bins over which the cosine response is fitted. Defaults to
	// [4, 10) m/s in 1 m/s bins.
	MinWindSpeedMS float64
	MaxWindSpeedMS float64
	BinWidthMS     float64
	// MinBinCount is the minimum number of observations a bin needs to
	// contribute a fit. Defaults to 50.
	MinBinCount int
}

func (c *YawMisalignmentConfig) applyDefaults() {
	if c.MaxWindSpeedMS == 0 {
		c.MaxWindSpeedMS = 10
	}
	if c.MinWindSpeedMS == 0 {
		c.MinWindSpeedMS = 4
	}
	if c.BinWidthMS == 0 {
		c.BinWidthMS = 1
	}
	if c.MinBinCount == 0 {
		c.MinBinCount = 50
	}
}

// TurbineYaw holds the per-turbine misalignment estimate.
type TurbineYaw struct {
	OffsetDeg    float64   // mean offset across wind speed bins; positive means the vane reads high
	PerBinOffset []float64 // offset per wind speed bin, NaN where a bin had too little data
	BinCenters   []float64
}

// YawMisalignmentResult holds the plant-wide static yaw misalignment
// estimates.
type YawMisalignmentResult struct {
	RunID      uuid.UUID
	PerTurbine map[string]TurbineYaw
}

// Record flattens the result into a data platform row. The headline loss is
// the mean power loss implied by the cosine-cubed response to the mean
// absolute offset.
func (r *YawMisalignmentResult) Record(plantID uuid.UUID) results.AnalysisResult {
	var offsetSum float64
	n := 0
	for _, yaw := range r.PerTurbine {
		offsetSum += math.Abs(yaw.OffsetDeg)
		n++
	}
	lossPct := 0.0
	if n > 0 {
		meanOffsetRad := offsetSum / float64(n) * math.Pi / 180
		lossPct = 1 - math.Pow(math.Cos(meanOffsetRad), 3)
	}
	return results.AnalysisResult{
		ID:      uuid.New(),
		RunID:   r.RunID,
		PlantID: plantID,
		Method:  results.MethodYawMisalignment,
		Time:    time.Now().UTC(),
		LossPct: lossPct,
	}
}

// YawMisalignment estimates the static yaw misalignment of each turbine from
// the wind vane angle and power. Within each wind speed bin, power is
// modelled as A*cos(vane - offset); the phase of the harmonic least-squares
// fit is the vane angle at which power peaks, which for an aligned turbine
// is zero.
func YawMisalignment(p *plant.Plant, config YawMisalignmentConfig) (*YawMisalignmentResult, error) {
	config.applyDefaults()
	if err := p.Validate(plant.AnalysisYawMisalignment); err != nil {
		return nil, fmt.Errorf("validate plant: %w", err)
	}

	nBins := int(math.Ceil((config.MaxWindSpeedMS - config.MinWindSpeedMS) / config.BinWidthMS))
	if nBins <= 0 {
		return nil, errors.New("invalid wind speed bin specification")
	}

	result := &YawMisalignmentResult{
		RunID:      uuid.New(),
		PerTurbine: make(map[string]TurbineYaw),
	}
	logger := slog.Default().With("analysis", results.MethodYawMisalignment)

	for turbineID, rows := range p.ScadaByTurbine() {
		binVane := make([][]float64, nBins)
		binPower := make([][]float64, nBins)
		for _, row := range rows {
			if math.IsNaN(row.VaneAngleDeg) || math.IsNaN(row.PowerKW) || row.PowerKW <= 0 {
				continue
			}
			if row.WindSpeedMS < config.MinWindSpeedMS || row.WindSpeedMS >= config.MaxWindSpeedMS {
				continue
			}
			b := int((row.WindSpeedMS - config.MinWindSpeedMS) / config.BinWidthMS)
			binVane[b] = append(binVane[b], row.VaneAngleDeg)
			binPower[b] = append(binPower[b], row.PowerKW)
		}

		yaw := TurbineYaw{
			PerBinOffset: make([]float64, nBins),
			BinCenters:   make([]float64, nBins),
		}
		var offsetSum float64
		fitted := 0
		for b := 0; b < nBins; b++ {
			yaw.BinCenters[b] = config.MinWindSpeedMS + (float64(b)+0.5)*config.BinWidthMS
			if len(binVane[b]) < config.MinBinCount {
				yaw.PerBinOffset[b] = math.NaN()
				continue
			}
			offset, ok := fitCosinePhase(binVane[b], binPower[b])
			if !ok {
				yaw.PerBinOffset[b] = math.NaN()
				continue
			}
			yaw.PerBinOffset[b] = offset
			offsetSum += offset
			fitted++
		}
		if fitted == 0 {
			logger.Debug("No wind speed bin had enough data", "turbine", turbineID)
			continue
		}
		yaw.OffsetDeg = offsetSum / float64(fitted)
		result.PerTurbine[turbineID] = yaw

		logger.Debug("Estimated yaw offset", "turbine", turbineID, "offset_deg", yaw.OffsetDeg)
	}
	if len(result.PerTurbine) == 0 {
		return nil, errors.New("no turbine had enough data in the fit bins")
	}

	logger.Info("Yaw misalignment complete", "turbines", len(result.PerTurbine))
	return result, nil
}

// fitCosinePhase fits power ~ A*cos(vane - offset) by expanding into
// alpha*cos(vane) + beta*sin(vane) and solving the 2x2 normal equations.
// The returned offset is in degrees. ok is false when the system is
// degenerate, e.g. a stuck vane.
func fitCosinePhase(vaneDeg, power []float64) (float64, bool) {
	var scc, scs, sss, bc, bs float64
	for i := range vaneDeg {
		rad := vaneDeg[i] * math.Pi / 180
		c := math.Cos(rad)
		s := math.Sin(rad)
		scc += c * c
		scs += c * s
		sss += s * s
		bc += power[i] * c
		bs += power[i] * s
	}
	det := scc*sss - scs*scs
	if math.Abs(det) < 1e-12 {
		return 0, false
	}
	alpha := (bc*sss - bs*scs) / det
	beta := (bs*scc - bc*scs) / det
	if alpha == 0 && beta == 0 {
		return 0, false
	}
	return math.Atan2(beta, alpha) * 180 / math.Pi, true
}
