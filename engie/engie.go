// Package engie loads the ENGIE La Haute Borne open data set into a Plant.
// The raw CSV exports need a number of quality corrections before they are fit
// for analysis, which are applied here on load.
package engie

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"

	"github.com/cepro/plantperf/filters"
	"github.com/cepro/plantperf/met"
	"github.com/cepro/plantperf/plant"
	"github.com/cepro/plantperf/timeseries"
)

const (
	scadaFile  = "la-haute-borne-data-2014-2015.csv"
	plantFile  = "plant_data.csv"
	merra2File = "merra2_la_haute_borne.csv"
	era5File   = "era5_wind_la_haute_borne.csv"
	assetFile  = "la-haute-borne_asset_table.csv"
)

// Out of range temperature readings are dropped entirely.
const (
	tempMinC = -15.0
	tempMaxC = 45.0
)

// Stuck sensor thresholds: the wind vane discretisation repeats legitimately,
// so it gets a tight threshold, while temperature varies slowly and gets a
// loose one.
const (
	vaneStuckThreshold = 3
	tempStuckThreshold = 20
)

// reanalysisSpec describes one reanalysis product CSV: the u/v component
// columns at the product's wind height and the optional extra fields.
type reanalysisSpec struct {
	file        string
	uCol        string
	vCol        string
	tempCol     string
	densityCol  string
	gapFillFreq time.Duration // fill missing rows with NaN when non-zero
}

var reanalysisSpecs = map[string]reanalysisSpec{
	"merra2": {
		file:       merra2File,
		uCol:       "u_50",
		vCol:       "v_50",
		tempCol:    "temperature_k",
		densityCol: "density",
	},
	"era5": {
		file:        era5File,
		uCol:        "u_100",
		vCol:        "v_100",
		tempCol:     "temperature_k",
		densityCol:  "density",
		gapFillFreq: time.Hour,
	},
}

// Loader reads the La Haute Borne CSV exports from a directory.
type Loader struct {
	dir    string
	meta   plant.Metadata
	logger *slog.Logger
}

func NewLoader(dir, metadataPath string) (*Loader, error) {
	meta, err := plant.ReadMetadata(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("read plant metadata: %w", err)
	}
	return &Loader{
		dir:    dir,
		meta:   meta,
		logger: slog.Default().With("plant", meta.Name),
	}, nil
}

// Load reads, cleans and assembles all of the plant tables.
func (l *Loader) Load() (*plant.Plant, error) {
	p := &plant.Plant{
		Metadata:   l.meta,
		Reanalysis: make(map[string][]plant.ReanalysisRow),
	}

	var err error
	l.logger.Info("Loading SCADA data")
	p.Scada, err = l.loadScada()
	if err != nil {
		return nil, fmt.Errorf("load scada: %w", err)
	}

	l.logger.Info("Loading meter and curtailment data")
	p.Meter, p.Curtail, err = l.loadMeterAndCurtail()
	if err != nil {
		return nil, fmt.Errorf("load meter: %w", err)
	}

	l.logger.Info("Loading reanalysis data")
	for product, spec := range reanalysisSpecs {
		rows, err := l.loadReanalysis(spec)
		if err != nil {
			return nil, fmt.Errorf("load reanalysis %s: %w", product, err)
		}
		p.Reanalysis[product] = rows
	}

	l.logger.Info("Loading asset data")
	p.Asset, err = l.loadAsset()
	if err != nil {
		return nil, fmt.Errorf("load asset: %w", err)
	}

	l.logger.Info("Plant loaded",
		"scada_rows", len(p.Scada),
		"meter_rows", len(p.Meter),
		"turbines", len(p.TurbineIDs()),
	)
	return p, nil
}

func (l *Loader) loadScada() ([]plant.ScadaRow, error) {
	df, err := readCSV(filepath.Join(l.dir, scadaFile))
	if err != nil {
		return nil, err
	}

	times, err := parseTimes(df, "Date_time", l.meta.Timezone)
	if err != nil {
		return nil, err
	}
	turbines := df.Col("Wind_turbine_name").Records()
	power := floatCol(df, "P_avg")
	windSpeed := floatCol(df, "Ws_avg")
	windDir := floatCol(df, "Wa_avg")
	nacelle := floatCol(df, "Ya_avg")
	vane := floatCol(df, "Va_avg")
	pitch := floatCol(df, "Ba_avg")
	temp := floatCol(df, "Ot_avg")

	rows := make([]plant.ScadaRow, 0, len(times))
	seen := make(map[string]struct{}, len(times))
	for i := range times {
		// Drop duplicated (time, turbine) rows, keeping the first.
		key := times[i].Format(time.RFC3339) + "|" + turbines[i]
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		// Out of range or missing temperatures indicate a faulty record.
		if math.IsNaN(temp[i]) || temp[i] < tempMinC || temp[i] > tempMaxC {
			continue
		}

		rows = append(rows, plant.ScadaRow{
			Time:                times[i],
			TurbineID:           turbines[i],
			PowerKW:             power[i],
			WindSpeedMS:         windSpeed[i],
			WindDirectionDeg:    windDir[i],
			NacelleDirectionDeg: nacelle[i],
			VaneAngleDeg:        vane[i],
			PitchAngleDeg:       wrapPitch(pitch[i]),
			AmbientTempC:        temp[i],
		})
	}

	l.cleanStuckSensors(rows)

	// Energy per interval, from the mean power over the interval.
	freqHours := l.meta.ScadaFrequency.Std().Hours()
	for i := range rows {
		rows[i].EnergyKWh = rows[i].PowerKW * freqHours
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Time.Before(rows[j].Time) })
	return rows, nil
}

// cleanStuckSensors blanks, per turbine, vane angles and temperatures that
// repeat for longer than a working sensor plausibly would.
func (l *Loader) cleanStuckSensors(rows []plant.ScadaRow) {
	byTurbine := make(map[string][]int)
	for i, row := range rows {
		byTurbine[row.TurbineID] = append(byTurbine[row.TurbineID], i)
	}

	for turbineID, indices := range byTurbine {
		vane := make([]float64, len(indices))
		temp := make([]float64, len(indices))
		for j, i := range indices {
			vane[j] = rows[i].VaneAngleDeg
			temp[j] = rows[i].AmbientTempC
		}

		stuckVane := filters.UnresponsiveFlag(vane, vaneStuckThreshold)
		stuckTemp := filters.UnresponsiveFlag(temp, tempStuckThreshold)
		flagged := 0
		for j, i := range indices {
			if stuckVane[j] {
				rows[i].VaneAngleDeg = math.NaN()
				flagged++
			}
			if stuckTemp[j] {
				rows[i].AmbientTempC = math.NaN()
				flagged++
			}
		}
		if flagged > 0 {
			l.logger.Debug("Blanked stuck sensor readings", "turbine", turbineID, "values", flagged)
		}
	}
}

// wrapPitch maps a blade pitch angle into the range (-180, 180].
func wrapPitch(deg float64) float64 {
	wrapped := math.Mod(deg, 360)
	if wrapped < 0 {
		wrapped += 360
	}
	if wrapped > 180 {
		wrapped -= 360
	}
	return wrapped
}

// loadMeterAndCurtail reads the plant performance CSV, which carries both the
// metered energy and the estimated availability and curtailment losses.
func (l *Loader) loadMeterAndCurtail() ([]plant.MeterRow, []plant.CurtailRow, error) {
	df, err := readCSV(filepath.Join(l.dir, plantFile))
	if err != nil {
		return nil, nil, err
	}

	times, err := parseTimes(df, "time_utc", "UTC")
	if err != nil {
		return nil, nil, err
	}
	energy := floatCol(df, "net_energy_kwh")
	avail := floatCol(df, "availability_kwh")
	curtail := floatCol(df, "curtailment_kwh")

	meterRows := make([]plant.MeterRow, len(times))
	curtailRows := make([]plant.CurtailRow, len(times))
	for i := range times {
		meterRows[i] = plant.MeterRow{Time: times[i], EnergyKWh: energy[i]}
		curtailRows[i] = plant.CurtailRow{
			Time:            times[i],
			AvailabilityKWh: avail[i],
			CurtailmentKWh:  curtail[i],
		}
	}

	sort.Slice(meterRows, func(i, j int) bool { return meterRows[i].Time.Before(meterRows[j].Time) })
	sort.Slice(curtailRows, func(i, j int) bool { return curtailRows[i].Time.Before(curtailRows[j].Time) })
	return meterRows, curtailRows, nil
}

func (l *Loader) loadReanalysis(spec reanalysisSpec) ([]plant.ReanalysisRow, error) {
	df, err := readCSV(filepath.Join(l.dir, spec.file))
	if err != nil {
		return nil, err
	}

	times, err := parseTimes(df, "datetime", "UTC")
	if err != nil {
		return nil, err
	}
	u := floatCol(df, spec.uCol)
	v := floatCol(df, spec.vCol)
	temp := optionalFloatCol(df, spec.tempCol, len(times))
	density := optionalFloatCol(df, spec.densityCol, len(times))

	directions, err := met.WindDirection(u, v)
	if err != nil {
		return nil, fmt.Errorf("compute wind direction: %w", err)
	}

	byTime := make(map[time.Time]plant.ReanalysisRow, len(times))
	for i := range times {
		byTime[times[i]] = plant.ReanalysisRow{
			Time:             times[i],
			WindSpeedMS:      math.Hypot(u[i], v[i]),
			WindDirectionDeg: directions[i],
			TemperatureK:     temp[i],
			DensityKGM3:      density[i],
		}
	}

	// Some products have missing hours, fill them with NaN rows so downstream
	// coverage checks see the holes.
	if spec.gapFillFreq > 0 {
		for _, t := range timeseries.GapFill(times, spec.gapFillFreq) {
			if _, ok := byTime[t]; !ok {
				byTime[t] = plant.ReanalysisRow{
					Time:             t,
					WindSpeedMS:      math.NaN(),
					WindDirectionDeg: math.NaN(),
					TemperatureK:     math.NaN(),
					DensityKGM3:      math.NaN(),
				}
			}
		}
	}

	rows := make([]plant.ReanalysisRow, 0, len(byTime))
	for _, row := range byTime {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Time.Before(rows[j].Time) })
	return rows, nil
}

func (l *Loader) loadAsset() ([]plant.AssetRow, error) {
	df, err := readCSV(filepath.Join(l.dir, assetFile))
	if err != nil {
		return nil, err
	}

	ids := df.Col("asset_id").Records()
	lat := floatCol(df, "latitude")
	lon := floatCol(df, "longitude")
	hubHeight := floatCol(df, "hub_height_m")
	rotorDiameter := floatCol(df, "rotor_diameter_m")
	ratedPower := floatCol(df, "rated_power_kw")

	rows := make([]plant.AssetRow, len(ids))
	for i := range ids {
		rows[i] = plant.AssetRow{
			ID:             ids[i],
			Type:           "turbine",
			Latitude:       lat[i],
			Longitude:      lon[i],
			HubHeightM:     hubHeight[i],
			RotorDiameterM: rotorDiameter[i],
			RatedPowerKW:   ratedPower[i],
		}
	}
	return rows, nil
}

func readCSV(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer f.Close()

	df := dataframe.ReadCSV(f)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read %s: %w", filepath.Base(path), df.Err)
	}
	return df, nil
}

// floatCol returns the named column as floats, NaN where unparseable.
func floatCol(df dataframe.DataFrame, name string) []float64 {
	return df.Col(name).Float()
}

// optionalFloatCol returns the named column as floats, or all NaN when the
// column is absent.
func optionalFloatCol(df dataframe.DataFrame, name string, n int) []float64 {
	for _, colName := range df.Names() {
		if colName == name {
			return df.Col(name).Float()
		}
	}
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = math.NaN()
	}
	return vals
}

// parseTimes parses the named timestamp column. Offset-qualified timestamps
// are taken as-is, naive timestamps are interpreted in the given timezone.
// All returned instants are UTC.
func parseTimes(df dataframe.DataFrame, name, tz string) ([]time.Time, error) {
	records := df.Col(name).Records()
	times := make([]time.Time, len(records))
	for i, record := range records {
		if t, err := time.Parse(time.RFC3339, record); err == nil {
			times[i] = t.UTC()
			continue
		}
		t, err := time.Parse("2006-01-02 15:04:05", record)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", record, err)
		}
		utc, err := timeseries.LocalToUTC(t, tz)
		if err != nil {
			return nil, err
		}
		times[i] = utc
	}
	return times, nil
}
