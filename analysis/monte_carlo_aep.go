package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/cepro/plantperf/plant"
	"github.com/cepro/plantperf/results"
)

// MonteCarloAEPConfig parameterises the long-term AEP estimation.
type MonteCarloAEPConfig struct {
	NumSim             int      // number of Monte Carlo simulations
	Seed               int64    // RNG seed, fixed for reproducibility
	UncertaintyMeter   float64  // fractional one-sigma uncertainty on metered energy
	UncertaintyLosses  float64  // fractional one-sigma uncertainty on availability/curtailment
	ReanalysisProducts []string // products to sample from; empty means all loaded products
}

// MonteCarloAEPResult holds the sampled AEP distribution and its summary
// statistics. P-values follow the wind industry convention: P90 is the AEP
// exceeded in 90% of simulated outcomes.
type MonteCarloAEPResult struct {
	RunID           uuid.UUID
	Samples         []float64 // AEP samples, in GWh/yr
	AEPGWh          float64   // mean of the samples
	StdGWh          float64
	P50GWh          float64
	P75GWh          float64
	P90GWh          float64
	P95GWh          float64
	AvailabilityPct float64 // period-of-record availability loss fraction
	CurtailmentPct  float64 // period-of-record curtailment loss fraction
	MonthsUsed      int
}

// Record flattens the result into a data platform row.
func (r *MonteCarloAEPResult) Record(plantID uuid.UUID) results.AnalysisResult {
	return results.AnalysisResult{
		ID:          uuid.New(),
		RunID:       r.RunID,
		PlantID:     plantID,
		Method:      results.MethodMonteCarloAEP,
		Time:        time.Now().UTC(),
		ValueGWh:    r.AEPGWh,
		StdGWh:      r.StdGWh,
		LossPct:     r.AvailabilityPct + r.CurtailmentPct,
		Simulations: len(r.Samples),
	}
}

// MonteCarloAEP estimates the long-term annual energy production of a plant
// by regressing monthly gross energy against monthly reanalysis wind speed
// and resampling the inputs: the choice of reanalysis product, multiplicative
// noise on metered energy and losses, and a bootstrap over the regression
// months.
type MonteCarloAEP struct {
	plant  *plant.Plant
	config MonteCarloAEPConfig
	rng    *rand.Rand
	logger *slog.Logger
}

// NewMonteCarloAEP validates the plant for AEP analysis and prepares a
// seeded estimator.
func NewMonteCarloAEP(p *plant.Plant, config MonteCarloAEPConfig) (*MonteCarloAEP, error) {
	if err := p.Validate(plant.AnalysisMonteCarloAEP); err != nil {
		return nil, fmt.Errorf("validate plant: %w", err)
	}
	if config.NumSim <= 0 {
		return nil, errors.New("the number of simulations must be positive")
	}
	if len(config.ReanalysisProducts) == 0 {
		for product := range p.Reanalysis {
			config.ReanalysisProducts = append(config.ReanalysisProducts, product)
		}
		// Map iteration order varies between runs, and the product drawn per
		// simulation indexes this slice. Sort it so a seed always produces the
		// same sample sequence.
		sort.Strings(config.ReanalysisProducts)
	}
	for _, product := range config.ReanalysisProducts {
		if _, ok := p.Reanalysis[product]; !ok {
			return nil, fmt.Errorf("reanalysis product %q is not loaded", product)
		}
	}

	return &MonteCarloAEP{
		plant:  p,
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
		logger: slog.Default().With("analysis", results.MethodMonteCarloAEP),
	}, nil
}

// porMonth holds the period-of-record monthly aggregates used by the
// regression.
type porMonth struct {
	key      monthKey
	grossGWh float64
	// windSpeed holds the monthly mean reanalysis wind speed per product.
	windSpeed map[string]float64
}

// Run executes the Monte Carlo simulations and summarises the AEP
// distribution.
func (a *MonteCarloAEP) Run() (*MonteCarloAEPResult, error) {
	months, availPct, curtailPct, err := a.aggregateMonthly()
	if err != nil {
		return nil, err
	}
	a.logger.Info("Aggregated period of record", "months", len(months))

	longTerm := a.longTermWindSpeeds()

	samples := make([]float64, 0, a.config.NumSim)
	for sim := 0; sim < a.config.NumSim; sim++ {
		product := a.config.ReanalysisProducts[a.rng.Intn(len(a.config.ReanalysisProducts))]

		// Bootstrap the months of record, with multiplicative noise on the
		// metered gross energy.
		meterNoise := 1 + a.config.UncertaintyMeter*a.rng.NormFloat64()
		x := make([]float64, 0, len(months))
		y := make([]float64, 0, len(months))
		for i := 0; i < len(months); i++ {
			m := months[a.rng.Intn(len(months))]
			ws, ok := m.windSpeed[product]
			if !ok {
				continue
			}
			x = append(x, ws)
			y = append(y, m.grossGWh*meterNoise)
		}
		if len(x) < 2 {
			continue
		}

		alpha, beta := stat.LinearRegression(x, y, nil, false)

		// Project the regression onto the long-term monthly wind resource.
		annualGross := 0.0
		for m := time.January; m <= time.December; m++ {
			annualGross += alpha + beta*longTerm[product][m]
		}

		lossNoise := 1 + a.config.UncertaintyLosses*a.rng.NormFloat64()
		aep := annualGross * (1 - (availPct+curtailPct)*lossNoise)
		samples = append(samples, aep)
	}
	if len(samples) == 0 {
		return nil, errors.New("no simulations produced a valid regression")
	}

	result := &MonteCarloAEPResult{
		RunID:           uuid.New(),
		Samples:         samples,
		AEPGWh:          stat.Mean(samples, nil),
		StdGWh:          stat.StdDev(samples, nil),
		P50GWh:          quantile(samples, 0.50),
		P75GWh:          quantile(samples, 0.25),
		P90GWh:          quantile(samples, 0.10),
		P95GWh:          quantile(samples, 0.05),
		AvailabilityPct: availPct,
		CurtailmentPct:  curtailPct,
		MonthsUsed:      len(months),
	}
	a.logger.Info("Monte Carlo AEP complete",
		"simulations", len(samples),
		"aep_gwh", result.AEPGWh,
		"std_gwh", result.StdGWh,
	)
	return result, nil
}

// aggregateMonthly builds the period-of-record months: gross energy (metered
// plus availability and curtailment losses) and the monthly mean wind speed
// of each reanalysis product. Only months covered by the meter, curtailment
// and every requested product are kept.
func (a *MonteCarloAEP) aggregateMonthly() ([]porMonth, float64, float64, error) {
	meterTimes := make([]time.Time, len(a.plant.Meter))
	meterVals := make([]float64, len(a.plant.Meter))
	for i, row := range a.plant.Meter {
		meterTimes[i] = row.Time
		meterVals[i] = row.EnergyKWh
	}
	meterMonthly, _ := monthlySum(meterTimes, meterVals)

	curtailTimes := make([]time.Time, len(a.plant.Curtail))
	availVals := make([]float64, len(a.plant.Curtail))
	curtailVals := make([]float64, len(a.plant.Curtail))
	for i, row := range a.plant.Curtail {
		curtailTimes[i] = row.Time
		availVals[i] = row.AvailabilityKWh
		curtailVals[i] = row.CurtailmentKWh
	}
	availMonthly, _ := monthlySum(curtailTimes, availVals)
	curtailMonthly, _ := monthlySum(curtailTimes, curtailVals)

	productMonthly := make(map[string]map[monthKey]float64, len(a.config.ReanalysisProducts))
	for _, product := range a.config.ReanalysisProducts {
		rows := a.plant.Reanalysis[product]
		times := make([]time.Time, len(rows))
		speeds := make([]float64, len(rows))
		for i, row := range rows {
			times[i] = row.Time
			speeds[i] = row.WindSpeedMS
		}
		productMonthly[product] = monthlyMean(times, speeds)
	}

	var months []porMonth
	var grossTotal, availTotal, curtailTotal float64
	for key, meterKWh := range meterMonthly {
		windSpeed := make(map[string]float64, len(productMonthly))
		covered := true
		for product, monthly := range productMonthly {
			ws, ok := monthly[key]
			if !ok {
				covered = false
				break
			}
			windSpeed[product] = ws
		}
		if !covered {
			continue
		}

		grossKWh := meterKWh + availMonthly[key] + curtailMonthly[key]
		months = append(months, porMonth{
			key:       key,
			grossGWh:  grossKWh / 1e6,
			windSpeed: windSpeed,
		})
		grossTotal += grossKWh
		availTotal += availMonthly[key]
		curtailTotal += curtailMonthly[key]
	}
	if len(months) < 12 {
		return nil, 0, 0, fmt.Errorf("only %d months of overlapping data, at least 12 are required", len(months))
	}
	if grossTotal <= 0 {
		return nil, 0, 0, errors.New("period of record has no gross energy")
	}

	return months, availTotal / grossTotal, curtailTotal / grossTotal, nil
}

// longTermWindSpeeds averages each product's monthly mean wind speed per
// calendar month over the product's full record, giving the long-term
// resource the regression is projected onto.
func (a *MonteCarloAEP) longTermWindSpeeds() map[string]map[time.Month]float64 {
	longTerm := make(map[string]map[time.Month]float64, len(a.config.ReanalysisProducts))
	for _, product := range a.config.ReanalysisProducts {
		rows := a.plant.Reanalysis[product]
		sums := make(map[time.Month]float64)
		counts := make(map[time.Month]int)
		for _, row := range rows {
			if math.IsNaN(row.WindSpeedMS) {
				continue
			}
			m := row.Time.UTC().Month()
			sums[m] += row.WindSpeedMS
			counts[m]++
		}
		means := make(map[time.Month]float64, len(sums))
		for m, s := range sums {
			means[m] = s / float64(counts[m])
		}
		longTerm[product] = means
	}
	return longTerm
}
