package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	Init()
	Init()

	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Get("/habits/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/habits/{id}", "418"))
	req := httptest.NewRequest(http.MethodGet, "/habits/abc", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	after := testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/habits/{id}", "418"))

	if after-before != 1 {
		t.Errorf("expected counter to increase by 1, got %v", after-before)
	}
}
