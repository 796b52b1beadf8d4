package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/reinsim/internal/domain"
)

// counterValue returns the value of the counter with the given labels, or -1
func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if matchLabels(metric.GetLabel(), labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return -1
}

func matchLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	if len(pairs) != len(want) {
		return false
	}
	for _, p := range pairs {
		if want[p.GetName()] != p.GetValue() {
			return false
		}
	}
	return true
}

func TestObserveRun_StatusClasses(t *testing.T) {
	m := New(nil)

	m.ObserveRun("Life", 10*time.Millisecond, 5, nil)
	m.ObserveRun("Life", 0, 0, fmt.Errorf("wrap: %w", domain.ErrInvalidConfiguration))
	m.ObserveRun("unknown", 0, 0, domain.ErrUnknownPortfolioKind)
	m.ObserveRun("Health", 0, 0, errors.New("disk on fire"))

	tests := []struct {
		portfolio, status string
	}{
		{"Life", StatusOK},
		{"Life", StatusInvalid},
		{"unknown", StatusUnknownKind},
		{"Health", StatusError},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			v := counterValue(t, m, "reinsim_simulation_runs_total", map[string]string{
				"portfolio": tt.portfolio, "status": tt.status,
			})
			assert.Equal(t, 1.0, v)
		})
	}
}

func TestObserveExportAndJob(t *testing.T) {
	m := New(nil)

	m.ObserveExport("csv", "download", nil)
	m.ObserveExport("csv", "download", nil)
	m.ObserveExport("json", "upload", errors.New("denied"))
	m.ObserveJob("run_cleanup", time.Millisecond, nil)

	assert.Equal(t, 2.0, counterValue(t, m, "reinsim_export_exports_total",
		map[string]string{"format": "csv", "destination": "download", "status": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, m, "reinsim_export_exports_total",
		map[string]string{"format": "json", "destination": "upload", "status": "error"}))
	assert.Equal(t, 1.0, counterValue(t, m, "reinsim_scheduler_job_runs_total",
		map[string]string{"job": "run_cleanup", "status": "ok"}))
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := New(func() float64 { return 3 })

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/simulations/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/simulations/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 1.0, counterValue(t, m, "reinsim_http_requests_total",
		map[string]string{"method": "GET", "route": "/api/simulations/{id}", "status": "404"}))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "reinsim_runs_stored 3")
}
