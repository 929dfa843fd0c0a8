package supabase

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cepro/plantperf/repository"
)

const (
	SUPABASE_SCADA_READING_TABLE_NAME   = "wp_scada_readings"
	SUPABASE_METER_READING_TABLE_NAME   = "wp_meter_readings"
	SUPABASE_ANALYSIS_RESULT_TABLE_NAME = "wp_analysis_results"
)

// supabaseScadaReading holds the json encoding schema for a SCADA reading in supabase.
type supabaseScadaReading struct {
	ID                  uuid.UUID `json:"id"`
	Time                time.Time `json:"time"`
	TurbineID           uuid.UUID `json:"turbine_id"`
	PowerKW             float64   `json:"power_kw"`
	WindSpeedMS         float64   `json:"wind_speed_ms"`
	WindDirectionDeg    float64   `json:"wind_direction_deg"`
	NacelleDirectionDeg float64   `json:"nacelle_direction_deg"`
	VaneAngleDeg        float64   `json:"vane_angle_deg"`
	PitchAngleDeg       float64   `json:"pitch_angle_deg"`
	AmbientTempC        float64   `json:"ambient_temp_c"`
}

// supabaseMeterReading holds the json encoding schema for a revenue meter reading in supabase.
type supabaseMeterReading struct {
	ID        uuid.UUID `json:"id"`
	Time      time.Time `json:"time"`
	MeterID   uuid.UUID `json:"meter_id"`
	EnergyKWh float64   `json:"energy_kwh"`
}

// supabaseAnalysisResult holds the json encoding schema for an analysis result in supabase.
type supabaseAnalysisResult struct {
	ID          uuid.UUID `json:"id"`
	RunID       uuid.UUID `json:"run_id"`
	PlantID     uuid.UUID `json:"plant_id"`
	Method      string    `json:"method"`
	Time        time.Time `json:"time"`
	ValueGWh    float64   `json:"value_gwh"`
	StdGWh      float64   `json:"std_gwh"`
	LossPct     float64   `json:"loss_pct"`
	Simulations int       `json:"simulations"`
}

// convertRecordsForSupabase returns the equivilent "supbase type" for the given records (which include supabase json tags) and the
// associated supabase table name.
func convertRecordsForSupabase(records interface{}) (interface{}, string) {
	switch recordsTyped := records.(type) {

	case []repository.StoredScadaReading:
		supabaseReadings := make([]supabaseScadaReading, 0, len(recordsTyped))
		for _, record := range recordsTyped {
			supabaseReadings = append(supabaseReadings, supabaseScadaReading(record.ScadaReading))
		}
		return supabaseReadings, SUPABASE_SCADA_READING_TABLE_NAME

	case []repository.StoredMeterReading:
		supabaseReadings := make([]supabaseMeterReading, 0, len(recordsTyped))
		for _, record := range recordsTyped {
			supabaseReadings = append(supabaseReadings, supabaseMeterReading(record.MeterReading))
		}
		return supabaseReadings, SUPABASE_METER_READING_TABLE_NAME

	case []repository.StoredAnalysisResult:
		supabaseResults := make([]supabaseAnalysisResult, 0, len(recordsTyped))
		for _, record := range recordsTyped {
			supabaseResults = append(supabaseResults, supabaseAnalysisResult(record.AnalysisResult))
		}
		return supabaseResults, SUPABASE_ANALYSIS_RESULT_TABLE_NAME

	default:
		panic(fmt.Sprintf("Unknown records type: '%T'", records))
	}
}
