package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retail_lens_analysis_duration_seconds",
			Help:    "Analysis processing duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	AnalysisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retail_lens_analysis_total",
			Help: "Total number of analysis requests processed",
		},
		[]string{"endpoint", "status"},
	)

	UploadsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "retail_lens_uploads_processed_total",
			Help: "Total uploaded files cleaned",
		},
	)

	RowsKept = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "retail_lens_rows_kept",
			Help:    "Rows surviving cleaning per upload",
			Buckets: []float64{10, 100, 1000, 10000, 100000, 1000000},
		},
	)

	RowsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retail_lens_rows_dropped_total",
			Help: "Rows dropped during cleaning, by reason",
		},
		[]string{"reason"},
	)
)

func Init() {
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(AnalysisTotal)
	prometheus.MustRegister(UploadsProcessed)
	prometheus.MustRegister(RowsKept)
	prometheus.MustRegister(RowsDropped)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
