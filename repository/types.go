package repository

import (
	"github.com/cepro/plantperf/results"
	"github.com/cepro/plantperf/telemetry"
)

// StoredScadaReading represents a SCADA reading that is persisted to the SQLite database, and includes a count of upload attempts.
type StoredScadaReading struct {
	telemetry.ScadaReading
	UploadAttemptCount uint
}

// StoredMeterReading represents a revenue meter reading that is persisted to the SQLite database, and includes a count of upload attempts.
type StoredMeterReading struct {
	telemetry.MeterReading
	UploadAttemptCount uint
}

// StoredAnalysisResult represents an analysis result that is persisted to the SQLite database, and includes a count of upload attempts.
type StoredAnalysisResult struct {
	results.AnalysisResult
	UploadAttemptCount uint
}

func newStoredScadaReading(reading telemetry.ScadaReading) StoredScadaReading {
	return StoredScadaReading{
		ScadaReading:       reading,
		UploadAttemptCount: 0,
	}
}

func newStoredMeterReading(reading telemetry.MeterReading) StoredMeterReading {
	return StoredMeterReading{
		MeterReading:       reading,
		UploadAttemptCount: 0,
	}
}

func newStoredAnalysisResult(result results.AnalysisResult) StoredAnalysisResult {
	return StoredAnalysisResult{
		AnalysisResult:     result,
		UploadAttemptCount: 0,
	}
}
