// Package metrics provides Prometheus metrics for ingestion and the read path.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SourceFetchTotal counts GetPrices calls per source and outcome.
	SourceFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_fetch_total",
			Help: "Total number of price fetches per source",
		},
		[]string{"source", "status"},
	)

	// SourceFetchDuration is a histogram of GetPrices latency per source.
	SourceFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_fetch_duration_seconds",
			Help:    "Duration of price fetches per source",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// IngestionRunsTotal counts ingestion runs by outcome.
	IngestionRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_runs_total",
			Help: "Total number of ingestion runs",
		},
		[]string{"status"},
	)

	// IngestedQuotesTotal counts rows written by ingestion.
	IngestedQuotesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ingested_quotes_total",
			Help: "Total number of price rows upserted",
		},
	)

	// CacheRequestsTotal counts read-through cache lookups by result.
	CacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_cache_requests_total",
			Help: "Read-through cache lookups (hit, miss, error, bypass)",
		},
		[]string{"result"},
	)

	// HTTPRequestsTotal is a counter of total HTTP requests.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)

	// HTTPRequestDuration is a histogram of HTTP request latencies.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(
		SourceFetchTotal,
		SourceFetchDuration,
		IngestionRunsTotal,
		IngestedQuotesTotal,
		CacheRequestsTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordSourceFetch records one GetPrices call.
func RecordSourceFetch(source string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	SourceFetchTotal.WithLabelValues(source, status).Inc()
	SourceFetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

// RecordIngestion records the outcome of an ingestion run.
func RecordIngestion(quotes int, err error) {
	if err != nil {
		IngestionRunsTotal.WithLabelValues("error").Inc()
		return
	}
	IngestionRunsTotal.WithLabelValues("success").Inc()
	IngestedQuotesTotal.Add(float64(quotes))
}

// RecordCache records a cache lookup result.
func RecordCache(result string) {
	CacheRequestsTotal.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(route, status string, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}
