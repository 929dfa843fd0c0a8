package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/cepro/plantperf/analysis"
	"github.com/cepro/plantperf/config"
	"github.com/cepro/plantperf/dataplatform"
	"github.com/cepro/plantperf/engie"
	"github.com/cepro/plantperf/ingest"
	"github.com/cepro/plantperf/metrics"
	"github.com/cepro/plantperf/plant"
	"github.com/cepro/plantperf/results"
	"github.com/cepro/plantperf/supabase"
)

func main() {

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	configPath := flag.String("config", "config.json", "path to the configuration file")
	mode := flag.String("mode", "analyse", "operating mode: 'analyse' runs the analyses over the loaded plant data, 'ingest' streams historian data into the data platform")
	flag.Parse()

	cfg, err := config.Read(*configPath)
	if err != nil {
		slog.Error("Failed to read config", "error", err)
		return
	}

	supaClient, err := supabase.New(cfg.DataPlatform.Supabase.Url, os.Getenv("SUPABASE_ANON_KEY"), os.Getenv("SUPABASE_USER_KEY"), cfg.DataPlatform.Supabase.Schema)
	if err != nil {
		slog.Error("Failed to create supabase client", "error", err)
		return
	}

	uploadInterval := time.Duration(cfg.DataPlatform.UploadIntervalSecs) * time.Second
	dataPlatform, err := dataplatform.New(supaClient, cfg.DataPlatform.BufferRepositoryFilename, uploadInterval)
	if err != nil {
		slog.Error("Failed to create data platform", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	go dataPlatform.Run(ctx)

	switch *mode {
	case "analyse":
		err = runAnalyses(cfg, dataPlatform)
		if err != nil {
			slog.Error("Analysis run failed", "error", err)
		}
		// give the data platform a moment to flush the results
		time.Sleep(uploadInterval + time.Second)

	case "ingest":
		go func() {
			err := metrics.InitAndServe(cfg.Ingest.MetricsAddr)
			if err != nil {
				slog.Error("Metrics server stopped", "error", err)
			}
		}()

		ingester := ingest.New(cfg.Ingest.Brokers, cfg.Ingest.Topic, cfg.Ingest.GroupID, dataPlatform.ScadaReadings, dataPlatform.MeterReadings)
		go func() {
			err := ingester.Run(ctx)
			if err != nil {
				slog.Error("Ingester stopped", "error", err)
			}
		}()

		// wait for a ctrl-c interrupt before exiting
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, os.Interrupt)
		<-signalChan

	default:
		slog.Error("Unknown mode", "mode", *mode)
	}

	// cancel any open go-routines and give them up to 100ms to gracefully shutdown
	cancel()
	time.Sleep(time.Millisecond * 100)

	slog.Info("Exiting")
	os.Exit(0)
}

// runAnalyses loads the plant, runs every analysis the loaded data supports
// and streams the headline results to the data platform.
func runAnalyses(cfg config.Config, dataPlatform *dataplatform.DataPlatform) error {

	loader, err := engie.NewLoader(cfg.Plant.DataDir, cfg.Plant.MetadataPath)
	if err != nil {
		return err
	}
	p, err := loader.Load()
	if err != nil {
		return err
	}
	plantID := p.Metadata.ID.UUID()

	slog.Info("Plant data loaded",
		"scada_rows", humanize.Comma(int64(len(p.Scada))),
		"meter_rows", humanize.Comma(int64(len(p.Meter))),
	)

	record := func(result results.AnalysisResult) {
		dataPlatform.AnalysisResults <- result
		metrics.AnalysisRuns.WithLabelValues(result.Method).Inc()
	}

	aepEstimator, err := analysis.NewMonteCarloAEP(p, analysis.MonteCarloAEPConfig{
		NumSim:             cfg.Analysis.MonteCarloAEP.NumSim,
		Seed:               cfg.Analysis.MonteCarloAEP.Seed,
		UncertaintyMeter:   cfg.Analysis.MonteCarloAEP.UncertaintyMeter,
		UncertaintyLosses:  cfg.Analysis.MonteCarloAEP.UncertaintyLosses,
		ReanalysisProducts: cfg.Analysis.MonteCarloAEP.ReanalysisProducts,
	})
	if err != nil {
		return err
	}
	aep, err := aepEstimator.Run()
	if err != nil {
		return err
	}
	record(aep.Record(plantID))
	slog.Info("AEP estimated", "aep_gwh", aep.AEPGWh, "p90_gwh", aep.P90GWh)

	tie, err := analysis.TurbineIdealEnergy(p, analysis.TurbineIdealConfig{})
	if err != nil {
		return err
	}
	record(tie.Record(plantID))

	electrical, err := analysis.ElectricalLosses(p)
	if err != nil {
		return err
	}
	record(electrical.Record(plantID))

	wake, err := analysis.WakeLosses(p, analysis.WakeLossesConfig{})
	if err != nil {
		return err
	}
	record(wake.Record(plantID))

	yaw, err := analysis.YawMisalignment(p, analysis.YawMisalignmentConfig{})
	if err != nil {
		return err
	}
	record(yaw.Record(plantID))

	if cfg.Analysis.GapAnalysis != nil {
		err = runGapAnalysis(*cfg.Analysis.GapAnalysis, p, aep, electrical, tie, plantID, record)
		if err != nil {
			return err
		}
	}

	return nil
}

// runGapAnalysis reconciles the pre-construction energy estimate against the
// operational results and renders the waterfall plot.
func runGapAnalysis(
	cfg config.GapAnalysisConfig,
	p *plant.Plant,
	aep *analysis.MonteCarloAEPResult,
	electrical *analysis.ElectricalLossesResult,
	tie *analysis.TurbineIdealResult,
	plantID uuid.UUID,
	record func(results.AnalysisResult),
) error {
	eya := analysis.EYAEstimate{
		AEPGWh:               cfg.EyaAEPGWh,
		GrossEnergyGWh:       cfg.EyaGrossGWh,
		AvailabilityLosses:   cfg.EyaAvailabilityLoss,
		ElectricalLosses:     cfg.EyaElectricalLoss,
		TurbineLosses:        cfg.EyaTurbineLoss,
		BladeDegradationLoss: cfg.EyaBladeDegradation,
		WakeLosses:           cfg.EyaWakeLoss,
	}
	oa := analysis.OAResults{
		AEPGWh:             aep.AEPGWh,
		AvailabilityLosses: aep.AvailabilityPct,
		ElectricalLosses:   electrical.LossPct,
		TurbineIdealGWh:    tie.TotalIdealGWh,
	}

	ga, err := analysis.NewGapAnalysis(eya, oa)
	if err != nil {
		return err
	}
	result := ga.Run()
	record(result.Record(plantID))

	if cfg.WaterfallPlotPath != "" {
		err = result.PlotWaterfall(p.Metadata.Name, cfg.WaterfallPlotPath)
		if err != nil {
			return err
		}
		slog.Info("Waterfall plot written", "path", cfg.WaterfallPlotPath)
	}
	return nil
}
