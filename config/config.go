package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type PlantConfig struct {
	MetadataPath string `json:"metadataPath"`
	DataDir      string `json:"dataDir"`
}

type MonteCarloAEPConfig struct {
	NumSim             int      `json:"numSim"`
	Seed               int64    `json:"seed"`
	UncertaintyMeter   float64  `json:"uncertaintyMeter"`
	UncertaintyLosses  float64  `json:"uncertaintyLosses"`
	ReanalysisProducts []string `json:"reanalysisProducts"`
}

type GapAnalysisConfig struct {
	// The pre-construction energy yield assessment figures, entered from the
	// EYA report.
	EyaAEPGWh           float64 `json:"eyaAEPGWh"`
	EyaGrossGWh         float64 `json:"eyaGrossGWh"`
	EyaAvailabilityLoss float64 `json:"eyaAvailabilityLoss"`
	EyaElectricalLoss   float64 `json:"eyaElectricalLoss"`
	EyaTurbineLoss      float64 `json:"eyaTurbineLoss"`
	EyaBladeDegradation float64 `json:"eyaBladeDegradation"`
	EyaWakeLoss         float64 `json:"eyaWakeLoss"`
	WaterfallPlotPath   string  `json:"waterfallPlotPath"`
}

type AnalysisConfig struct {
	MonteCarloAEP MonteCarloAEPConfig `json:"monteCarloAEP"`
	GapAnalysis   *GapAnalysisConfig  `json:"gapAnalysis"`
}

type SupabaseConfig struct {
	Url string `json:"url"`
	// key is specified via env var
	Schema string `json:"schema"`
}

type DataPlatformConfig struct {
	UploadIntervalSecs       int            `json:"uploadIntervalSecs"`
	BufferRepositoryFilename string         `json:"bufferRepositoryFilename"`
	Supabase                 SupabaseConfig `json:"supabase"`
}

type IngestConfig struct {
	Brokers     []string `json:"brokers"`
	Topic       string   `json:"topic"`
	GroupID     string   `json:"groupId"`
	MetricsAddr string   `json:"metricsAddr"`
}

type Config struct {
	Plant        PlantConfig        `json:"plant"`
	Analysis     AnalysisConfig     `json:"analysis"`
	DataPlatform DataPlatformConfig `json:"dataPlatform"`
	Ingest       IngestConfig       `json:"ingest"`
}

func Read(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	err = json.Unmarshal(content, &config)
	if err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return config, nil
}
