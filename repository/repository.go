package repository

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/cepro/plantperf/results"
	"github.com/cepro/plantperf/telemetry"
)

// Repository stores telemetry and analysis results to the local file system (sqlite) before they are uploaded to Supabase.
type Repository struct {
	db *gorm.DB
}

func New(path string) (*Repository, error) {

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Migrate the schema
	err = db.AutoMigrate(&StoredScadaReading{}, &StoredMeterReading{}, &StoredAnalysisResult{})
	if err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &Repository{
		db: db,
	}, nil
}

func (r *Repository) AddScadaReading(reading telemetry.ScadaReading) error {
	result := r.db.Create(newStoredScadaReading(reading))
	return result.Error
}

func (r *Repository) AddMeterReading(reading telemetry.MeterReading) error {
	result := r.db.Create(newStoredMeterReading(reading))
	return result.Error
}

func (r *Repository) AddAnalysisResult(analysisResult results.AnalysisResult) error {
	result := r.db.Create(newStoredAnalysisResult(analysisResult))
	return result.Error
}

func (r *Repository) DeleteRecords(records interface{}) error {
	result := r.db.Delete(&records)
	return result.Error
}

// GetScadaReadings returns up to `limit` buffered SCADA readings. When `fresh`
// is true only readings that have never failed an upload are returned,
// otherwise only readings with at least one failed attempt are returned.
func (r *Repository) GetScadaReadings(limit int, fresh bool) ([]StoredScadaReading, error) {
	var readings []StoredScadaReading

	result := r.freshnessQuery(limit, fresh).Find(&readings)
	if result.Error != nil {
		return nil, result.Error
	}
	return readings, nil
}

func (r *Repository) GetMeterReadings(limit int, fresh bool) ([]StoredMeterReading, error) {
	var readings []StoredMeterReading

	result := r.freshnessQuery(limit, fresh).Find(&readings)
	if result.Error != nil {
		return nil, result.Error
	}
	return readings, nil
}

func (r *Repository) GetAnalysisResults(limit int, fresh bool) ([]StoredAnalysisResult, error) {
	var analysisResults []StoredAnalysisResult

	result := r.freshnessQuery(limit, fresh).Find(&analysisResults)
	if result.Error != nil {
		return nil, result.Error
	}
	return analysisResults, nil
}

func (r *Repository) IncrementUploadAttemptCount(records interface{}) error {
	result := r.db.Model(records).UpdateColumn("upload_attempt_count", gorm.Expr("upload_attempt_count + ?", 1))
	return result.Error
}

func (r *Repository) freshnessQuery(limit int, fresh bool) *gorm.DB {
	query := r.db.Limit(limit).Order("upload_attempt_count asc, time desc")
	if fresh {
		query = query.Where("upload_attempt_count = ?", 0)
	} else {
		query = query.Where("upload_attempt_count > ?", 0)
		// TODO: do we want to give up after a certain amount of attempts?
	}
	return query
}
