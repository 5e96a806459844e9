// Package metrics exposes the gateway's Prometheus instrumentation: HTTP
// request counts and latency plus interview-domain counters.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the gateway. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	SessionsStarted   *prometheus.CounterVec
	SessionsCompleted *prometheus.CounterVec
	AnswersScored     *prometheus.CounterVec
	ResumesAnalyzed   *prometheus.CounterVec
}

// New creates a Metrics instance with all collectors registered.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "interviewd"
	}

	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"path", "method", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"path", "method"},
	)

	sessionsStarted := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Interview sessions created",
		},
		[]string{"interview_type"},
	)

	sessionsCompleted := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_completed_total",
			Help:      "Interview sessions completed",
		},
		[]string{"rating"},
	)

	answersScored := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_scored_total",
			Help:      "Answers run through the analyzer",
		},
		[]string{"rating"},
	)

	resumesAnalyzed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resumes_analyzed_total",
			Help:      "Resumes run through the ATS analyzer",
		},
		[]string{"rating"},
	)

	registry.MustRegister(
		requestsTotal,
		requestDuration,
		sessionsStarted,
		sessionsCompleted,
		answersScored,
		resumesAnalyzed,
	)

	return &Metrics{
		registry:          registry,
		RequestsTotal:     requestsTotal,
		RequestDuration:   requestDuration,
		SessionsStarted:   sessionsStarted,
		SessionsCompleted: sessionsCompleted,
		AnswersScored:     answersScored,
		ResumesAnalyzed:   resumesAnalyzed,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSessionStarted records one created session.
func (m *Metrics) ObserveSessionStarted(interviewType string) {
	if m == nil {
		return
	}
	m.SessionsStarted.WithLabelValues(interviewType).Inc()
}

// ObserveSessionCompleted records one completed session.
func (m *Metrics) ObserveSessionCompleted(rating string) {
	if m == nil {
		return
	}
	m.SessionsCompleted.WithLabelValues(rating).Inc()
}

// ObserveAnswerScored records one analyzed answer.
func (m *Metrics) ObserveAnswerScored(rating string) {
	if m == nil {
		return
	}
	m.AnswersScored.WithLabelValues(rating).Inc()
}

// ObserveResumeAnalyzed records one analyzed resume.
func (m *Metrics) ObserveResumeAnalyzed(rating string) {
	if m == nil {
		return
	}
	m.ResumesAnalyzed.WithLabelValues(rating).Inc()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware instruments every request with count and duration. Label
// cardinality stays bounded because routes are fixed patterns.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := normalizePath(r.URL.Path)
		m.RequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(sw.status)).Inc()
		m.RequestDuration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses path parameters so label values stay bounded.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/session/"):
		return "/api/session/{sessionID}"
	case strings.HasPrefix(path, "/api/questions/"):
		return "/api/questions/{interviewType}"
	}
	return path
}
