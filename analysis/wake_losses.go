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

// earthRadiusM is the mean Earth radius used for the local layout
// projection.
const earthRadiusM = 6371000.0

// WakeLossesConfig parameterises the wake loss estimation.
type WakeLossesConfig struct {
	// SectorWidthDeg is the angular width of the upstream sector within
	// which a neighbouring turbine is considered to wake this one. Defaults
	// to 90 degrees.
	SectorWidthDeg float64
	// MaxDistanceD is the maximum neighbour distance, in rotor diameters,
	// for wake interaction. Defaults to 20.
	MaxDistanceD float64
}

func (c *WakeLossesConfig) applyDefaults() {
	if c.SectorWidthDeg == 0 {
		c.SectorWidthDeg = 90
	}
	if c.MaxDistanceD == 0 {
		c.MaxDistanceD = 20
	}
}

// WakeLossesResult holds the plant and per-turbine wake loss estimates.
type WakeLossesResult struct {
	RunID         uuid.UUID
	PlantLossPct  float64
	PerTurbinePct map[string]float64
	Timestamps    int // timestamps with full coverage that entered the estimate
}

// Record flattens the result into a data platform row.
func (r *WakeLossesResult) Record(plantID uuid.UUID) results.AnalysisResult {
	return results.AnalysisResult{
		ID:      uuid.New(),
		RunID:   r.RunID,
		PlantID: plantID,
		Method:  results.MethodWakeLosses,
		Time:    time.Now().UTC(),
		LossPct: r.PlantLossPct,
	}
}

// WakeLosses estimates internal wake losses from SCADA data and the plant
// layout. For each timestamp the plant wind direction is taken as the
// circular mean of the nacelle directions; turbines with no neighbour in
// their upstream sector are freestream, and their mean power stands in for
// the unwaked production of every turbine.
func WakeLosses(p *plant.Plant, config WakeLossesConfig) (*WakeLossesResult, error) {
	config.applyDefaults()
	if err := p.Validate(plant.AnalysisWakeLosses); err != nil {
		return nil, fmt.Errorf("validate plant: %w", err)
	}

	turbines := p.TurbineIDs()
	if len(turbines) < 2 {
		return nil, errors.New("wake analysis requires at least two turbines")
	}

	bearings, distances, err := layoutGeometry(p, turbines)
	if err != nil {
		return nil, err
	}
	diameters := rotorDiameters(p, turbines)

	// Group SCADA rows by timestamp, keeping only fully covered timestamps.
	type snapshot struct {
		power   map[string]float64
		nacelle map[string]float64
	}
	snapshots := make(map[time.Time]*snapshot)
	for _, row := range p.Scada {
		if math.IsNaN(row.PowerKW) || math.IsNaN(row.NacelleDirectionDeg) {
			continue
		}
		s, ok := snapshots[row.Time]
		if !ok {
			s = &snapshot{power: map[string]float64{}, nacelle: map[string]float64{}}
			snapshots[row.Time] = s
		}
		s.power[row.TurbineID] = row.PowerKW
		s.nacelle[row.TurbineID] = row.NacelleDirectionDeg
	}

	actualKWh := make(map[string]float64, len(turbines))
	potentialKWh := make(map[string]float64, len(turbines))
	used := 0
	for _, s := range snapshots {
		if len(s.power) != len(turbines) {
			continue
		}

		nacelles := make([]float64, 0, len(turbines))
		for _, id := range turbines {
			nacelles = append(nacelles, s.nacelle[id])
		}
		windDir := circularMeanDeg(nacelles)

		var freestreamSum float64
		freestreamCount := 0
		for _, id := range turbines {
			if isFreestream(id, turbines, windDir, bearings, distances, diameters, config) {
				freestreamSum += s.power[id]
				freestreamCount++
			}
		}
		if freestreamCount == 0 {
			continue
		}
		freestreamMean := freestreamSum / float64(freestreamCount)
		if freestreamMean <= 0 {
			continue
		}

		for _, id := range turbines {
			actualKWh[id] += s.power[id]
			potentialKWh[id] += freestreamMean
		}
		used++
	}
	if used == 0 {
		return nil, errors.New("no timestamps with full turbine coverage and a freestream reference")
	}

	result := &WakeLossesResult{
		RunID:         uuid.New(),
		PerTurbinePct: make(map[string]float64, len(turbines)),
		Timestamps:    used,
	}
	var actualTotal, potentialTotal float64
	for _, id := range turbines {
		result.PerTurbinePct[id] = 1 - actualKWh[id]/potentialKWh[id]
		actualTotal += actualKWh[id]
		potentialTotal += potentialKWh[id]
	}
	result.PlantLossPct = 1 - actualTotal/potentialTotal

	slog.Default().With("analysis", results.MethodWakeLosses).Info(
		"Wake losses complete",
		"plant_loss_pct", result.PlantLossPct,
		"timestamps", used,
	)
	return result, nil
}

// layoutGeometry computes pairwise bearings (degrees, direction from the
// first turbine towards the second) and distances (meters) from the asset
// table, using a local equirectangular projection around the plant.
func layoutGeometry(p *plant.Plant, turbines []string) (map[[2]string]float64, map[[2]string]float64, error) {
	bearings := make(map[[2]string]float64)
	distances := make(map[[2]string]float64)
	for _, a := range turbines {
		assetA, ok := p.AssetByID(a)
		if !ok {
			return nil, nil, fmt.Errorf("turbine %s is missing from the asset table", a)
		}
		for _, b := range turbines {
			if a == b {
				continue
			}
			assetB, _ := p.AssetByID(b)

			latRad := assetA.Latitude * math.Pi / 180
			dx := (assetB.Longitude - assetA.Longitude) * math.Pi / 180 * math.Cos(latRad) * earthRadiusM
			dy := (assetB.Latitude - assetA.Latitude) * math.Pi / 180 * earthRadiusM

			bearing := math.Atan2(dx, dy) * 180 / math.Pi
			if bearing < 0 {
				bearing += 360
			}
			bearings[[2]string{a, b}] = bearing
			distances[[2]string{a, b}] = math.Hypot(dx, dy)
		}
	}
	return bearings, distances, nil
}

// isFreestream reports whether no other turbine sits in this turbine's
// upstream sector for the given wind direction.
func isFreestream(id string, turbines []string, windDir float64, bearings, distances map[[2]string]float64, diameters map[string]float64, config WakeLossesConfig) bool {
	for _, other := range turbines {
		if other == id {
			continue
		}
		pair := [2]string{id, other}
		if distances[pair] > config.MaxDistanceD*diameters[other] {
			continue
		}
		if math.Abs(wrapDeg180(bearings[pair]-windDir)) <= config.SectorWidthDeg/2 {
			return false
		}
	}
	return true
}

// rotorDiameters resolves each turbine's rotor diameter from the asset
// table, defaulting to 100m, typical of the multi-MW onshore fleet.
func rotorDiameters(p *plant.Plant, turbines []string) map[string]float64 {
	diameters := make(map[string]float64, len(turbines))
	for _, id := range turbines {
		diameters[id] = 100
		if asset, ok := p.AssetByID(id); ok && asset.RotorDiameterM > 0 {
			diameters[id] = asset.RotorDiameterM
		}
	}
	return diameters
}
