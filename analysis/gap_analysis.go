package analysis

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cepro/plantperf/results"
)

// EYAEstimate holds the consultant-produced Energy Yield Assessment figures.
// Energies are in GWh/yr and losses are fractions in [0, 1).
type EYAEstimate struct {
	AEPGWh                float64 `json:"aep"`
	GrossEnergyGWh        float64 `json:"grossEnergy"`
	AvailabilityLosses    float64 `json:"availabilityLosses"`
	ElectricalLosses      float64 `json:"electricalLosses"`
	TurbineLosses         float64 `json:"turbineLosses"`
	BladeDegradationLoss  float64 `json:"bladeDegradationLosses"`
	WakeLosses            float64 `json:"wakeLosses"`
}

// Validate checks that every loss fraction is in [0, 1).
func (e EYAEstimate) Validate() error {
	losses := map[string]float64{
		"availabilityLosses":     e.AvailabilityLosses,
		"electricalLosses":       e.ElectricalLosses,
		"turbineLosses":          e.TurbineLosses,
		"bladeDegradationLosses": e.BladeDegradationLoss,
		"wakeLosses":             e.WakeLosses,
	}
	for name, v := range losses {
		if v < 0 || v >= 1 {
			return fmt.Errorf("the input to %q must be in the range [0, 1)", name)
		}
	}
	return nil
}

// OAResults holds the operational assessment figures produced by the other
// analysis methods. Energies are in GWh/yr and losses are fractions in
// [0, 1).
type OAResults struct {
	AEPGWh             float64 `json:"aep"`
	AvailabilityLosses float64 `json:"availabilityLosses"`
	ElectricalLosses   float64 `json:"electricalLosses"`
	TurbineIdealGWh    float64 `json:"turbineIdealEnergy"`
}

// Validate checks that every loss fraction is in [0, 1).
func (o OAResults) Validate() error {
	losses := map[string]float64{
		"availabilityLosses": o.AvailabilityLosses,
		"electricalLosses":   o.ElectricalLosses,
	}
	for name, v := range losses {
		if v < 0 || v >= 1 {
			return fmt.Errorf("the input to %q must be in the range [0, 1)", name)
		}
	}
	return nil
}

// WaterfallLabels are the x-axis labels of the gap analysis waterfall, in
// the order of GapAnalysisResult.Data.
var WaterfallLabels = []string{
	"eya_aep",
	"ideal_energy",
	"avail_loss",
	"elec_loss",
	"unexplained/uncertain",
}

// GapAnalysisResult holds the waterfall decomposition of the difference
// between the EYA and OA AEP estimates.
type GapAnalysisResult struct {
	RunID uuid.UUID
	// Data holds, in order: the EYA AEP, the turbine gross energy
	// difference, the availability loss difference, the electrical loss
	// difference and the unaccounted residual, all in GWh/yr. The terms sum
	// to the OA AEP.
	Data   [5]float64
	OAAEP  float64
	EYAAEP float64
}

// Record flattens the result into a data platform row.
func (r *GapAnalysisResult) Record(plantID uuid.UUID) results.AnalysisResult {
	return results.AnalysisResult{
		ID:       uuid.New(),
		RunID:    r.RunID,
		PlantID:  plantID,
		Method:   results.MethodEYAGapAnalysis,
		Time:     time.Now().UTC(),
		ValueGWh: r.OAAEP,
	}
}

// GapAnalysis compares an EYA-estimated AEP with the operationally assessed
// AEP, attributing the gap to differences in turbine ideal energy,
// availability losses and electrical losses, with the remainder reported as
// unexplained.
type GapAnalysis struct {
	eya    EYAEstimate
	oa     OAResults
	logger *slog.Logger
}

// NewGapAnalysis validates the inputs and prepares a gap analysis.
func NewGapAnalysis(eya EYAEstimate, oa OAResults) (*GapAnalysis, error) {
	if err := eya.Validate(); err != nil {
		return nil, fmt.Errorf("eya estimate: %w", err)
	}
	if err := oa.Validate(); err != nil {
		return nil, fmt.Errorf("oa results: %w", err)
	}
	return &GapAnalysis{
		eya:    eya,
		oa:     oa,
		logger: slog.Default().With("analysis", results.MethodEYAGapAnalysis),
	}, nil
}

// Run compiles the EYA and OA metrics into the waterfall decomposition.
func (g *GapAnalysis) Run() *GapAnalysisResult {
	// The EYA's implied turbine ideal energy compounds the turbine, wake and
	// blade degradation losses onto the gross energy estimate.
	eyaTurbineIdeal := g.eya.GrossEnergyGWh *
		(1 - g.eya.TurbineLosses) *
		(1 - g.eya.WakeLosses) *
		(1 - g.eya.BladeDegradationLoss)

	turbGrossDiff := g.oa.TurbineIdealGWh - eyaTurbineIdeal
	availDiff := (g.eya.AvailabilityLosses - g.oa.AvailabilityLosses) * eyaTurbineIdeal
	elecDiff := (g.eya.ElectricalLosses - g.oa.ElectricalLosses) * eyaTurbineIdeal
	unaccounted := -(g.eya.AEPGWh + turbGrossDiff + availDiff + elecDiff) + g.oa.AEPGWh

	result := &GapAnalysisResult{
		RunID:  uuid.New(),
		Data:   [5]float64{g.eya.AEPGWh, turbGrossDiff, availDiff, elecDiff, unaccounted},
		OAAEP:  g.oa.AEPGWh,
		EYAAEP: g.eya.AEPGWh,
	}
	g.logger.Info("Gap analysis complete",
		"eya_aep_gwh", result.EYAAEP,
		"oa_aep_gwh", result.OAAEP,
		"unaccounted_gwh", unaccounted,
	)
	return result
}
