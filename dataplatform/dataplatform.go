package dataplatform

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/cepro/plantperf/repository"
	"github.com/cepro/plantperf/results"
	"github.com/cepro/plantperf/supabase"
	"github.com/cepro/plantperf/telemetry"
)

// DataPlatform handles the streaming of telemetry and analysis results to
// Supabase. Put new records onto the appropriate channels, they will be
// buffered on disk in a SQLite database before being uploaded to Supabase.
type DataPlatform struct {
	ScadaReadings   chan telemetry.ScadaReading
	MeterReadings   chan telemetry.MeterReading
	AnalysisResults chan results.AnalysisResult

	repository     *repository.Repository
	supaClient     *supabase.Client
	uploadInterval time.Duration
}

func New(supaClient *supabase.Client, bufferRepositoryFilename string, uploadInterval time.Duration) (*DataPlatform, error) {

	repository, err := repository.New(bufferRepositoryFilename)
	if err != nil {
		return nil, fmt.Errorf("create repository: %w", err)
	}

	return &DataPlatform{
		ScadaReadings:   make(chan telemetry.ScadaReading, 25), // a small buffer to allow SQLite to catch up in case the disk is slow
		MeterReadings:   make(chan telemetry.MeterReading, 25),
		AnalysisResults: make(chan results.AnalysisResult, 25),
		repository:      repository,
		supaClient:      supaClient,
		uploadInterval:  uploadInterval,
	}, nil
}

// Run loops forever waiting for new records, persisting them as they arrive
// and periodically attempting an upload.
func (d *DataPlatform) Run(ctx context.Context) {

	uploadTicker := time.NewTicker(d.uploadInterval)
	defer uploadTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case reading := <-d.ScadaReadings:
			err := d.repository.AddScadaReading(reading)
			if err != nil {
				slog.Error("failed to persist scada reading", "error", err)
			}
			slog.Debug("Stored scada reading")

		case reading := <-d.MeterReadings:
			err := d.repository.AddMeterReading(reading)
			if err != nil {
				slog.Error("failed to persist meter reading", "error", err)
			}
			slog.Debug("Stored meter reading")

		case result := <-d.AnalysisResults:
			err := d.repository.AddAnalysisResult(result)
			if err != nil {
				slog.Error("failed to persist analysis result", "error", err)
			}
			slog.Debug("Stored analysis result", "method", result.Method)

		case <-uploadTicker.C:
			d.attemptUpload()
		}
	}
}

// attemptUpload attempts to upload the buffered records from the repository into Supabase.
func (d *DataPlatform) attemptUpload() {

	// uploadChunkLimit defines how many data points we can upload in one supabase HTTP request
	uploadChunkLimit := 100

	// first attempt to upload any new records that have not been seen before,
	// then any old records that have already failed an upload at least once
	for _, fresh := range []bool{true, false} {
		scadaReadings, err := d.repository.GetScadaReadings(uploadChunkLimit, fresh)
		if err != nil {
			slog.Error("failed to query scada readings", "error", err, "fresh", fresh)
		} else if len(scadaReadings) > 0 {
			err = d.handleRecords(scadaReadings)
			if err != nil {
				slog.Error("failed to handle scada readings", "error", err, "fresh", fresh)
			}
		}

		meterReadings, err := d.repository.GetMeterReadings(uploadChunkLimit, fresh)
		if err != nil {
			slog.Error("failed to query meter readings", "error", err, "fresh", fresh)
		} else if len(meterReadings) > 0 {
			err = d.handleRecords(meterReadings)
			if err != nil {
				slog.Error("failed to handle meter readings", "error", err, "fresh", fresh)
			}
		}

		analysisResults, err := d.repository.GetAnalysisResults(uploadChunkLimit, fresh)
		if err != nil {
			slog.Error("failed to query analysis results", "error", err, "fresh", fresh)
		} else if len(analysisResults) > 0 {
			err = d.handleRecords(analysisResults)
			if err != nil {
				slog.Error("failed to handle analysis results", "error", err, "fresh", fresh)
			}
		}
	}
}

// handleRecords attempts to upload the given records. If successful, it deletes the records from the database, if
// unsuccessful, it increments the 'upload attempt count' column and leaves the record in the database for another time.
func (d *DataPlatform) handleRecords(records interface{}) error {

	uploadErr := d.supaClient.UploadRecords(records)
	if uploadErr != nil {
		uploadErr := fmt.Errorf("upload failed: %w", uploadErr)
		errInc := d.repository.IncrementUploadAttemptCount(records)
		if errInc != nil {
			return fmt.Errorf("%w: increment upload attempt count: %w", uploadErr, errInc)
		}
		return uploadErr
	}

	deleteErr := d.repository.DeleteRecords(records)
	if deleteErr != nil {
		return fmt.Errorf("delete records: %w", deleteErr)
	}

	slog.Info("Uploaded records", "db_records", reflect.ValueOf(records).Len())

	// TODO: really think through this logic to handle edge cases, e.g. where the upload succeeds but the delete doesn't

	return nil
}
