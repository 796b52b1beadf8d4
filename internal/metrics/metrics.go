// Package metrics exposes Prometheus collectors for simulations, exports,
// background jobs and HTTP traffic.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aristath/reinsim/internal/domain"
)

const namespace = "reinsim"

// Status label values
const (
	StatusOK          = "ok"
	StatusInvalid     = "invalid"
	StatusUnknownKind = "unknown_kind"
	StatusError       = "error"
)

// Metrics holds every collector registered by the service
type Metrics struct {
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	simulatedYears prometheus.Histogram
	exportsTotal   *prometheus.CounterVec
	jobRunsTotal   *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry. storedRuns, when not
// nil, backs the runs_stored gauge.
func New(storedRuns func() float64) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,

		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "simulation",
				Name:      "runs_total",
				Help:      "Total simulation runs by portfolio and outcome",
			},
			[]string{"portfolio", "status"},
		),

		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "simulation",
				Name:      "run_duration_seconds",
				Help:      "Duration of successful simulation runs",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"portfolio"},
		),

		simulatedYears: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "simulation",
				Name:      "simulated_years",
				Help:      "Number of simulated years per successful run",
				Buckets:   []float64{1, 5, 10, 20, 30, 40, 50},
			},
		),

		exportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "export",
				Name:      "exports_total",
				Help:      "Total exports by format, destination and outcome",
			},
			[]string{"format", "destination", "status"},
		),

		jobRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "job_runs_total",
				Help:      "Total background job executions",
			},
			[]string{"job", "status"},
		),

		jobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "job_duration_seconds",
				Help:      "Duration of background job executions",
			},
			[]string{"job"},
		),

		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),

		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests",
			},
			[]string{"method", "route"},
		),
	}

	if storedRuns != nil {
		factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "runs",
				Name:      "stored",
				Help:      "Unexpired runs currently held in memory",
			},
			storedRuns,
		)
	}

	return m
}

// Registry returns the registry backing the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRun records one simulation attempt
func (m *Metrics) ObserveRun(portfolio string, duration time.Duration, years int, err error) {
	status := runStatus(err)
	m.runsTotal.WithLabelValues(portfolio, status).Inc()
	if err == nil {
		m.runDuration.WithLabelValues(portfolio).Observe(duration.Seconds())
		m.simulatedYears.Observe(float64(years))
	}
}

// ObserveExport records one export or upload
func (m *Metrics) ObserveExport(format string, destination string, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.exportsTotal.WithLabelValues(format, destination, status).Inc()
}

// ObserveJob records one background job execution
func (m *Metrics) ObserveJob(name string, duration time.Duration, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.jobRunsTotal.WithLabelValues(name, status).Inc()
	m.jobDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// Middleware counts requests by chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func runStatus(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, domain.ErrUnknownPortfolioKind):
		return StatusUnknownKind
	case errors.Is(err, domain.ErrInvalidConfiguration):
		return StatusInvalid
	default:
		return StatusError
	}
}
