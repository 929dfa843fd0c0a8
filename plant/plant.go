// Package plant holds the standardised operational dataset for a wind power
// plant: SCADA, revenue meter, availability/curtailment, asset and reanalysis
// tables, together with the plant metadata and per-analysis validation.
package plant

import (
	"sort"
	"time"
)

// ScadaRow is one SCADA record for one turbine.
type ScadaRow struct {
	Time                time.Time
	TurbineID           string
	PowerKW             float64
	WindSpeedMS         float64
	WindDirectionDeg    float64
	NacelleDirectionDeg float64
	VaneAngleDeg        float64
	PitchAngleDeg       float64
	AmbientTempC        float64
	EnergyKWh           float64
}

// MeterRow is one revenue meter record for the plant.
type MeterRow struct {
	Time      time.Time
	EnergyKWh float64
}

// CurtailRow is one availability and curtailment record for the plant, both
// expressed as lost energy in kWh.
type CurtailRow struct {
	Time            time.Time
	AvailabilityKWh float64
	CurtailmentKWh  float64
}

// AssetRow describes one asset (turbine or met tower) in the plant.
type AssetRow struct {
	ID             string
	Type           string // "turbine" or "tower"
	Latitude       float64
	Longitude      float64
	HubHeightM     float64
	RotorDiameterM float64
	RatedPowerKW   float64
}

// ReanalysisRow is one record of a gridded reanalysis product interpolated to
// the plant location.
type ReanalysisRow struct {
	Time             time.Time
	WindSpeedMS      float64
	WindDirectionDeg float64
	TemperatureK     float64
	DensityKGM3      float64
}

// Plant bundles the metadata and all operational tables for one plant.
type Plant struct {
	Metadata Metadata

	Scada      []ScadaRow
	Meter      []MeterRow
	Curtail    []CurtailRow
	Asset      []AssetRow
	Reanalysis map[string][]ReanalysisRow
}

// TurbineIDs returns the sorted set of turbine IDs present in the asset
// table, falling back to the SCADA table when no assets are loaded.
func (p *Plant) TurbineIDs() []string {
	set := make(map[string]struct{})
	for _, a := range p.Asset {
		if a.Type == "turbine" {
			set[a.ID] = struct{}{}
		}
	}
	if len(set) == 0 {
		for _, s := range p.Scada {
			set[s.TurbineID] = struct{}{}
		}
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ScadaByTurbine splits the SCADA table per turbine, each slice sorted by
// time.
func (p *Plant) ScadaByTurbine() map[string][]ScadaRow {
	byTurbine := make(map[string][]ScadaRow)
	for _, row := range p.Scada {
		byTurbine[row.TurbineID] = append(byTurbine[row.TurbineID], row)
	}
	for id := range byTurbine {
		rows := byTurbine[id]
		sort.Slice(rows, func(i, j int) bool { return rows[i].Time.Before(rows[j].Time) })
	}
	return byTurbine
}

// AssetByID returns the asset row with the given ID, if present.
func (p *Plant) AssetByID(id string) (AssetRow, bool) {
	for _, a := range p.Asset {
		if a.ID == id {
			return a, true
		}
	}
	return AssetRow{}, false
}
