package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScadaReadingsIngested = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "scada_readings_ingested_total", Help: "Total SCADA readings decoded from the historian stream"},
	)
	MeterReadingsIngested = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "meter_readings_ingested_total", Help: "Total revenue meter readings decoded from the historian stream"},
	)
	IngestErrors = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "ingest_errors_total", Help: "Total messages that failed to decode"},
	)
	// 1 per completed analysis, labelled by method
	AnalysisRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "analysis_runs_total", Help: "Total completed analysis runs per method"},
		[]string{"method"},
	)
)

func InitAndServe(addr string) error {
	prometheus.MustRegister(ScadaReadingsIngested, MeterReadingsIngested, IngestErrors, AnalysisRuns)
	http.Handle("/metrics", promhttp.Handler())
	// serve in a goroutine from the caller, this blocks
	return http.ListenAndServe(addr, nil)
}
