package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGapAnalysisCompile(t *testing.T) {
	eya := EYAEstimate{
		AEPGWh:               30,
		GrossEnergyGWh:       33,
		AvailabilityLosses:   0.03,
		ElectricalLosses:     0.02,
		TurbineLosses:        0.05,
		BladeDegradationLoss: 0.01,
		WakeLosses:           0.04,
	}
	oa := OAResults{
		AEPGWh:             29,
		AvailabilityLosses: 0.04,
		ElectricalLosses:   0.025,
		TurbineIdealGWh:    29.5,
	}

	ga, err := NewGapAnalysis(eya, oa)
	require.NoError(t, err)
	result := ga.Run()

	// The EYA implied ideal energy compounds turbine, wake and blade
	// degradation losses onto the gross estimate.
	eyaIdeal := 33 * (1 - 0.05) * (1 - 0.04) * (1 - 0.01)

	assert.InDelta(t, 30, result.Data[0], 1e-12)
	assert.InDelta(t, 29.5-eyaIdeal, result.Data[1], 1e-12)
	assert.InDelta(t, (0.03-0.04)*eyaIdeal, result.Data[2], 1e-12)
	assert.InDelta(t, (0.02-0.025)*eyaIdeal, result.Data[3], 1e-12)

	// The waterfall terms always sum to the OA AEP.
	sum := 0.0
	for _, v := range result.Data {
		sum += v
	}
	assert.InDelta(t, oa.AEPGWh, sum, 1e-9)
}

func TestGapAnalysisValidation(t *testing.T) {
	valid := EYAEstimate{AEPGWh: 30, GrossEnergyGWh: 33}

	type subTest struct {
		name string
		eya  EYAEstimate
		oa   OAResults
	}

	subTests := []subTest{
		{
			name: "eya loss above range",
			eya:  EYAEstimate{AEPGWh: 30, GrossEnergyGWh: 33, WakeLosses: 1.0},
		},
		{
			name: "eya loss negative",
			eya:  EYAEstimate{AEPGWh: 30, GrossEnergyGWh: 33, TurbineLosses: -0.1},
		},
		{
			name: "oa loss above range",
			eya:  valid,
			oa:   OAResults{AvailabilityLosses: 1.5},
		},
	}

	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			_, err := NewGapAnalysis(subTest.eya, subTest.oa)
			assert.Error(t, err)
		})
	}

	_, err := NewGapAnalysis(valid, OAResults{})
	assert.NoError(t, err)
}
