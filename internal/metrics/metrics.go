package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promobot_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "code"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "promobot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)

	// Pipeline
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promobot_runs_total",
			Help: "Pipeline runs by outcome (ok, error, skipped).",
		},
		[]string{"outcome"},
	)
	runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "promobot_run_duration_seconds",
			Help:    "Duration of a full pipeline run.",
			Buckets: []float64{1, 5, 10, 20, 30, 60, 120, 300},
		},
	)
	productsFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promobot_products_fetched_total",
			Help: "Products returned by each source.",
		},
		[]string{"source"},
	)
	candidatesSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promobot_candidates_already_posted_total",
			Help: "Candidates dropped because they were already posted.",
		},
	)

	// Copy generation
	generationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promobot_generation_failures_total",
			Help: "Copy generation requests that fell back to the template.",
		},
	)

	// Publishing
	publishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promobot_publish_total",
			Help: "Publish attempts by channel and outcome.",
		},
		[]string{"channel", "outcome"},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,

			runsTotal,
			runDuration,
			productsFetched,
			candidatesSkipped,

			generationFailures,

			publishTotal,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// --- HTTP ---
func ObserveHTTPRequest(method, route, code string, d time.Duration) {
	httpRequests.WithLabelValues(method, route, code).Inc()
	httpDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
}

// --- Pipeline ---
func IncRun(outcome string)              { runsTotal.WithLabelValues(outcome).Inc() }
func ObserveRunDuration(d time.Duration) { runDuration.Observe(d.Seconds()) }
func AddFetched(source string, n int)    { productsFetched.WithLabelValues(source).Add(float64(max0(n))) }
func AddAlreadyPosted(n int)             { candidatesSkipped.Add(float64(max0(n))) }
func IncGenerationFailure()              { generationFailures.Inc() }
func IncPublish(channel, outcome string) { publishTotal.WithLabelValues(channel, outcome).Inc() }

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
