package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/ErlanBelekov/portfolio/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portfolio"

var (
	// Auth metrics

	SignupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Admin sign-up attempts, by outcome.",
	}, []string{"outcome"})

	InviteRedemptionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invite_redemptions_total",
		Help:      "Invite code redemption attempts, by outcome.",
	}, []string{"outcome"})

	SignInsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signins_total",
		Help:      "Password sign-in attempts, by outcome.",
	}, []string{"outcome"})

	// Outbound

	EmailsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_sent_total",
		Help:      "Emails handed to the sender, by template and outcome.",
	}, []string{"template", "outcome"})

	ThumbnailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "thumbnails_generated_total",
		Help:      "AI thumbnail generations, by outcome.",
	}, []string{"outcome"})

	// Janitor

	JanitorRowsAffected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "janitor_rows_affected_total",
		Help:      "Rows updated or deleted by janitor jobs.",
	}, []string{"job"})

	JanitorRunDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "janitor_run_duration_seconds",
		Help:      "Time taken by one janitor job run.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	RateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the per-client rate limiter.",
	}, []string{"path"})
)

func Register() {
	prometheus.MustRegister(
		SignupsTotal,
		InviteRedemptionsTotal,
		SignInsTotal,
		EmailsSentTotal,
		ThumbnailsTotal,
		JanitorRowsAffected,
		JanitorRunDuration,
		HTTPRequestDuration,
		HTTPRequestsTotal,
		RateLimitedTotal,
	)
}

// NewServer serves /metrics plus liveness and readiness probes.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, res health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if res.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(res)
}
