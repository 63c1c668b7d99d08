package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder records HTTP and forecasting metrics using Prometheus
type Recorder struct {
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	forecastRuns  *prometheus.CounterVec
	sweepRuns     *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	keywordsInRun prometheus.Histogram
}

// New registers the recorder's collectors on reg
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seoforecast_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "seoforecast_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"route", "method"},
		),
		forecastRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seoforecast_forecast_runs_total",
				Help: "Forecast runs by outcome",
			},
			[]string{"outcome"},
		),
		sweepRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seoforecast_sweep_runs_total",
				Help: "What-if sweeps by swept variable and outcome",
			},
			[]string{"variable", "outcome"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seoforecast_cache_lookups_total",
				Help: "Result cache lookups by result",
			},
			[]string{"result"},
		),
		keywordsInRun: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "seoforecast_keywords_per_run",
				Help:    "Number of keywords in each forecast run",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
			},
		),
	}
}

// RecordRequest records a completed HTTP request
func (r *Recorder) RecordRequest(route, method, status string, seconds float64) {
	r.httpRequests.WithLabelValues(route, method, status).Inc()
	r.httpDuration.WithLabelValues(route, method).Observe(seconds)
}

// RecordForecast records a forecast run and its keyword count
func (r *Recorder) RecordForecast(outcome string, keywords int) {
	r.forecastRuns.WithLabelValues(outcome).Inc()
	r.keywordsInRun.Observe(float64(keywords))
}

// RecordSweep records a what-if sweep
func (r *Recorder) RecordSweep(variable, outcome string) {
	r.sweepRuns.WithLabelValues(variable, outcome).Inc()
}

// RecordCache records a result cache lookup
func (r *Recorder) RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}
