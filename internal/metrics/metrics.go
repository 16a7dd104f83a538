package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/matkarim/taskdesk/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Notification scheduler metrics

	SchedulerTicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "taskdesk",
		Name:      "notify_ticks_total",
		Help:      "Total evaluation passes of the notification scheduler.",
	})

	SchedulerRunning = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "taskdesk",
		Name:      "notify_scheduler_running",
		Help:      "Whether the notification scheduler loop is running. 1 = running.",
	})

	ClaimsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskdesk",
		Name:      "notify_claims_total",
		Help:      "Day-claim attempts on matched schedules, by result.",
	}, []string{"result"})

	ReportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskdesk",
		Name:      "notify_reports_total",
		Help:      "Report executions after a won claim, by outcome.",
	}, []string{"outcome"})

	ReportDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "taskdesk",
		Name:      "notify_report_duration_seconds",
		Help:      "Time to generate and deliver one report.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "taskdesk",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskdesk",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		SchedulerTicksTotal,
		SchedulerRunning,
		ClaimsTotal,
		ReportsTotal,
		ReportDuration,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics plus the liveness and readiness probes.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()), http.StatusOK)
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		result := checker.Readiness(r.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		writeHealth(w, result, status)
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result)
}
