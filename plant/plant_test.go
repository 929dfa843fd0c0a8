package plant

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestReadMetadata(t *testing.T) {
	content := `
name: La Haute Borne
id: 3f10d402-1a1f-4ef3-b8c0-aa1d1a3e03f7
latitude: 48.452
longitude: 5.588
capacityMW: 8.2
numTurbines: 4
scadaFrequency: 10m
meterFrequency: 10m
curtailFrequency: 10m
timezone: Europe/Paris
reanalysis:
  era5:
    frequency: 1h
    windHeightM: 100
    longTermYears: 20
  merra2:
    frequency: 1h
    windHeightM: 50
    longTermYears: 20
`
	path := filepath.Join(t.TempDir(), "plant_meta.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Could not write metadata file: %v", err)
	}

	meta, err := ReadMetadata(path)
	if err != nil {
		t.Fatalf("ReadMetadata failed: %v", err)
	}

	if meta.Name != "La Haute Borne" {
		t.Errorf("Got name %q", meta.Name)
	}
	if meta.CapacityMW != 8.2 {
		t.Errorf("Got capacity %f", meta.CapacityMW)
	}
	if meta.ScadaFrequency.Std() != 10*time.Minute {
		t.Errorf("Got SCADA frequency %v", meta.ScadaFrequency)
	}
	if len(meta.Reanalysis) != 2 {
		t.Fatalf("Got %d reanalysis products, expected 2", len(meta.Reanalysis))
	}
	if meta.Reanalysis["era5"].WindHeightM != 100 {
		t.Errorf("Got era5 wind height %f", meta.Reanalysis["era5"].WindHeightM)
	}
}

func TestReadMetadataRejectsIncomplete(t *testing.T) {
	type subTest struct {
		name    string
		content string
	}

	subTests := []subTest{
		{"missing name", "capacityMW: 8.2\nscadaFrequency: 10m\n"},
		{"missing capacity", "name: x\nscadaFrequency: 10m\n"},
		{"missing frequency", "name: x\ncapacityMW: 8.2\n"},
	}

	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "plant_meta.yml")
			if err := os.WriteFile(path, []byte(subTest.content), 0o644); err != nil {
				t.Fatalf("Could not write metadata file: %v", err)
			}
			if _, err := ReadMetadata(path); err == nil {
				t.Errorf("Expected an error")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	base := time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)

	full := &Plant{
		Scada:   []ScadaRow{{Time: base, TurbineID: "R80711"}},
		Meter:   []MeterRow{{Time: base}, {Time: base.Add(10 * time.Minute)}},
		Curtail: []CurtailRow{{Time: base}},
		Asset:   []AssetRow{{ID: "R80711", Type: "turbine"}},
		Reanalysis: map[string][]ReanalysisRow{
			"era5": {{Time: base}, {Time: base.Add(time.Hour)}},
		},
	}

	if err := full.Validate(AnalysisMonteCarloAEP, AnalysisElectricalLosses, AnalysisWakeLosses); err != nil {
		t.Errorf("Expected a fully loaded plant to validate, got: %v", err)
	}

	empty := &Plant{}
	err := empty.Validate(AnalysisMonteCarloAEP)
	if err == nil {
		t.Fatalf("Expected validation to fail for an empty plant")
	}
	if !strings.Contains(err.Error(), "meter") || !strings.Contains(err.Error(), "reanalysis") {
		t.Errorf("Error should name the missing tables, got: %v", err)
	}

	unsorted := &Plant{
		Meter:   []MeterRow{{Time: base.Add(time.Hour)}, {Time: base}},
		Curtail: []CurtailRow{{Time: base}},
		Reanalysis: map[string][]ReanalysisRow{
			"era5": {{Time: base}},
		},
	}
	if err := unsorted.Validate(AnalysisMonteCarloAEP); err == nil {
		t.Errorf("Expected validation to fail for unsorted meter data")
	}

	negative := &Plant{
		Curtail: []CurtailRow{{Time: base, AvailabilityKWh: -1}},
	}
	if err := negative.Validate(); err == nil {
		t.Errorf("Expected validation to fail for negative curtailment energy")
	}
}

func TestTurbineIDs(t *testing.T) {
	p := &Plant{
		Asset: []AssetRow{
			{ID: "T2", Type: "turbine"},
			{ID: "T1", Type: "turbine"},
			{ID: "M1", Type: "tower"},
		},
	}
	ids := p.TurbineIDs()
	if len(ids) != 2 || ids[0] != "T1" || ids[1] != "T2" {
		t.Errorf("Got %v", ids)
	}

	// Falls back to SCADA when there is no asset table.
	p = &Plant{Scada: []ScadaRow{{TurbineID: "T9"}, {TurbineID: "T9"}}}
	ids = p.TurbineIDs()
	if len(ids) != 1 || ids[0] != "T9" {
		t.Errorf("Got %v", ids)
	}
}
