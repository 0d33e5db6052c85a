package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xavierca1/taskflow/internal/entity"
	"github.com/xavierca1/taskflow/internal/leadscore"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	activitiesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activities_recorded_total",
			Help: "Total number of lead activities recorded",
		},
		[]string{"type"},
	)

	leadScorePoints = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_score_points_total",
			Help: "Sum of score points added to leads",
		},
	)

	leadsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Total number of leads created",
		},
	)

	xpAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "xp_awarded_total",
			Help: "Sum of XP awarded to users",
		},
	)

	levelUps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "level_ups_total",
			Help: "Total number of user level ups",
		},
	)

	eventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_publish_errors_total",
			Help: "Total number of domain events that failed to publish",
		},
		[]string{"event"},
	)

	rateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern usa o padrão do chi (/leads/{id}) para não explodir a cardinalidade
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// RecordActivity agrupa tipos desconhecidos em "other": o tipo vem do body público.
func RecordActivity(activityType string, scoreDelta int, leadCreated bool) {
	activitiesRecorded.WithLabelValues(activityLabel(activityType)).Inc()
	if scoreDelta > 0 {
		leadScorePoints.Add(float64(scoreDelta))
	}
	if leadCreated {
		leadsCreated.Inc()
	}
}

func activityLabel(activityType string) string {
	if leadscore.Known(entity.ActivityType(activityType)) {
		return activityType
	}
	return "other"
}

func RecordXPAward(amount int, leveledUp bool) {
	xpAwarded.Add(float64(amount))
	if leveledUp {
		levelUps.Inc()
	}
}

func RecordEventPublishError(event string) {
	eventPublishErrors.WithLabelValues(event).Inc()
}

func RecordRateLimited() {
	rateLimited.Inc()
}
