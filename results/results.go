package results

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisResult holds the headline numbers from one analysis run. One row is
// produced per run and method, and uploaded to the data platform.
type AnalysisResult struct {
	ID          uuid.UUID
	RunID       uuid.UUID
	PlantID     uuid.UUID
	Method      string
	Time        time.Time
	ValueGWh    float64 // headline energy value, e.g. AEP or TIE, in GWh/yr
	StdGWh      float64 // one-sigma uncertainty of ValueGWh, where the method produces one
	LossPct     float64 // headline loss fraction, where the method produces one
	Simulations int     // number of Monte Carlo simulations, zero for deterministic methods
}

// Method names stored against AnalysisResult rows.
const (
	MethodMonteCarloAEP    = "monte_carlo_aep"
	MethodTurbineIdeal     = "turbine_ideal_energy"
	MethodElectricalLosses = "electrical_losses"
	MethodWakeLosses       = "wake_losses"
	MethodYawMisalignment  = "yaw_misalignment"
	MethodEYAGapAnalysis   = "eya_gap_analysis"
)
