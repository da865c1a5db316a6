package monitoring

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	HabitToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitsync_habit_toggles_total",
			Help: "Habit completion toggles by resulting state",
		},
		[]string{"completed"},
	)

	ResetSweeps = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "habitsync_reset_sweeps_total",
		Help: "Day-rollover sweeps performed",
	})

	StreaksDecayed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "habitsync_streaks_decayed_total",
		Help: "Streaks reset to zero by a sweep",
	})

	BestEffortFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitsync_best_effort_failures_total",
			Help: "Writes that failed and were logged instead of returned",
		},
		[]string{"operation"},
	)
)

var registerOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter, RequestDuration, HabitToggles, ResetSweeps, StreaksDecayed, BestEffortFailures)
	})
}

// MetricsMiddleware records request counts and latency labelled by the matched route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				endpoint = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RequestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
