// Package metrics exposes Prometheus collectors for the product discovery
// crawler.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	crawlerPagesTotal       *prometheus.CounterVec
	crawlerProductsTotal    *prometheus.CounterVec
	crawlerFetchErrorsTotal *prometheus.CounterVec
	crawlerActiveWorkers    prometheus.Gauge
	crawlerFetchDuration    prometheus.Histogram
	crawlerRunsTotal        *prometheus.CounterVec
	httpRequestsTotal       *prometheus.CounterVec
	httpRequestDuration     *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call multiple
// times; Observe helpers are no-ops until it runs.
func Init() {
	once.Do(func() {
		crawlerPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_pages_total",
				Help: "Total number of pages fetched, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		crawlerProductsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_products_total",
				Help: "Total number of canonical products emitted, labeled by extraction strategy.",
			},
			[]string{"strategy"},
		)

		crawlerFetchErrorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_fetch_errors_total",
				Help: "Total number of fetch failures, labeled by reason.",
			},
			[]string{"reason"},
		)

		crawlerActiveWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "crawler_active_workers",
				Help: "Number of workers currently fetching a page.",
			},
		)

		crawlerFetchDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crawler_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
			},
		)

		crawlerRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_runs_total",
				Help: "Total number of crawl runs, labeled by status.",
			},
			[]string{"status"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite extracts a lowercase hostname for labeling. It returns
// "unknown" for invalid input.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler exposing the Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage records a page fetch outcome ("fetched" or "failed").
func ObservePage(site string, outcome string) {
	if crawlerPagesTotal == nil {
		return
	}
	crawlerPagesTotal.WithLabelValues(SanitizeSite(site), outcome).Inc()
}

// ObserveProduct records one emitted canonical product.
func ObserveProduct(strategy string) {
	if crawlerProductsTotal == nil {
		return
	}
	crawlerProductsTotal.WithLabelValues(strategy).Inc()
}

// ObserveFetchError records a fetch failure by reason.
func ObserveFetchError(reason string) {
	if crawlerFetchErrorsTotal == nil {
		return
	}
	crawlerFetchErrorsTotal.WithLabelValues(reason).Inc()
}

// ObserveFetchDuration records how long one page fetch took.
func ObserveFetchDuration(d time.Duration) {
	if crawlerFetchDuration == nil {
		return
	}
	crawlerFetchDuration.Observe(d.Seconds())
}

// ObserveRun records a finished crawl run by status.
func ObserveRun(status string) {
	if crawlerRunsTotal == nil {
		return
	}
	crawlerRunsTotal.WithLabelValues(status).Inc()
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	if crawlerActiveWorkers != nil {
		crawlerActiveWorkers.Inc()
	}
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	if crawlerActiveWorkers != nil {
		crawlerActiveWorkers.Dec()
	}
}

// ObserveHTTPRequest records an API request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
