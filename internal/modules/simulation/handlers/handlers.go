// Package handlers provides HTTP handlers for running and inspecting simulations.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/reinsim/internal/domain"
	"github.com/aristath/reinsim/internal/modules/charts"
	"github.com/aristath/reinsim/internal/modules/export"
	"github.com/aristath/reinsim/internal/modules/risk"
	"github.com/aristath/reinsim/internal/modules/runs"
	"github.com/aristath/reinsim/internal/modules/simulation"
	"github.com/aristath/reinsim/pkg/money"
)

var errBadRequest = errors.New("bad request")

// Handler handles simulation HTTP requests
type Handler struct {
	service       *simulation.Service
	exporter      *export.Exporter
	validator     *requestValidator
	ranges        simulation.InputRanges
	histogramBins int
	listLimit     int
	log           zerolog.Logger
}

// NewHandler creates a new simulation handler
func NewHandler(
	service *simulation.Service,
	exporter *export.Exporter,
	histogramBins int,
	listLimit int,
	log zerolog.Logger,
) *Handler {
	if histogramBins < 1 {
		histogramBins = charts.DefaultBins
	}
	if listLimit < 1 {
		listLimit = runs.DefaultListLimit
	}
	return &Handler{
		service:       service,
		exporter:      exporter,
		validator:     newRequestValidator(),
		ranges:        simulation.DefaultInputRanges(),
		histogramBins: histogramBins,
		listLimit:     listLimit,
		log:           log.With().Str("handler", "simulation").Logger(),
	}
}

// MetricTile is a labeled, display-formatted summary figure
type MetricTile struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// RunResponse is the full representation of a run
type RunResponse struct {
	ID         string                 `json:"id"`
	CreatedAt  time.Time              `json:"created_at"`
	Seed       *uint64                `json:"seed,omitempty"`
	Config     domain.PortfolioConfig `json:"config"`
	AnnualLoss []float64              `json:"annual_loss"`
	Summary    domain.RiskSummary     `json:"summary"`
	Tail       risk.TailMetrics       `json:"tail"`
	Metrics    []MetricTile           `json:"metrics"`
}

// RunListItem is the list representation of a run (no series)
type RunListItem struct {
	ID        string                 `json:"id"`
	CreatedAt time.Time              `json:"created_at"`
	Seed      *uint64                `json:"seed,omitempty"`
	Config    domain.PortfolioConfig `json:"config"`
	Summary   domain.RiskSummary     `json:"summary"`
}

// HandleGetKinds handles GET /api/portfolio/kinds
func (h *Handler) HandleGetKinds(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"kinds":  simulation.Kinds(),
		"ranges": h.ranges,
	})
}

// HandleCreateSimulation handles POST /api/simulations
func (h *Handler) HandleCreateSimulation(w http.ResponseWriter, r *http.Request) {
	var req SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("%w: invalid request body: %v", errBadRequest, err))
		return
	}

	if err := h.validator.Validate(req); err != nil {
		h.writeError(w, err)
		return
	}

	cfg, err := req.ToConfig()
	if err != nil {
		h.writeError(w, err)
		return
	}

	run, err := h.service.Run(r.Context(), cfg, req.Seed)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp, err := h.toResponse(run)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

// HandleListSimulations handles GET /api/simulations
func (h *Handler) HandleListSimulations(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", h.listLimit, runs.MaxListLimit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	list, err := h.service.List(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	items := make([]RunListItem, 0, len(list))
	for _, run := range list {
		items = append(items, RunListItem{
			ID:        run.ID,
			CreatedAt: run.CreatedAt,
			Seed:      run.Seed,
			Config:    run.Config,
			Summary:   run.Summary,
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  items,
		"count": len(items),
	})
}

// HandleGetSimulation handles GET /api/simulations/{id}
func (h *Handler) HandleGetSimulation(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp, err := h.toResponse(run)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// HandleGetDistribution handles GET /api/simulations/{id}/distribution
func (h *Handler) HandleGetDistribution(w http.ResponseWriter, r *http.Request) {
	var opts charts.Options
	var err error
	if opts.Bins, err = intQuery(r, "bins", h.histogramBins, charts.MaxBins); err != nil {
		h.writeError(w, err)
		return
	}
	if opts.Points, err = intQuery(r, "points", charts.DefaultPoints, charts.MaxPoints); err != nil {
		h.writeError(w, err)
		return
	}

	run, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	// The trend window cannot span more years than were simulated
	if opts.Window, err = intQuery(r, "window", charts.DefaultWindow, run.Config.SimulatedYears); err != nil {
		h.writeError(w, err)
		return
	}

	dist, err := charts.BuildDistribution(run.Series, opts)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":       run.ID,
		"portfolio":    run.Config.Kind.String(),
		"title":        run.Config.Kind.String() + " Loss Distribution",
		"distribution": dist,
	})
}

// HandleExport handles GET /api/simulations/{id}/export
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	run, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	payload, err := h.exporter.Encode(run, format)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", payload.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", payload.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(payload.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload.Data); err != nil {
		h.log.Error().Err(err).Str("run_id", run.ID).Msg("Failed to write export")
	}
}

// HandleUpload handles POST /api/simulations/{id}/upload
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	run, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	key, err := h.exporter.Upload(r.Context(), run, format)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"run_id": run.ID,
		"format": format,
		"key":    key,
	})
}

// HandleListUploads handles GET /api/simulations/{id}/uploads
func (h *Handler) HandleListUploads(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	objects, err := h.exporter.ListUploads(r.Context(), run.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if objects == nil {
		objects = []export.ObjectInfo{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  run.ID,
		"objects": objects,
	})
}

func (h *Handler) toResponse(run *domain.Run) (RunResponse, error) {
	tail, err := risk.Tail(run.Series)
	if err != nil {
		return RunResponse{}, err
	}

	return RunResponse{
		ID:         run.ID,
		CreatedAt:  run.CreatedAt,
		Seed:       run.Seed,
		Config:     run.Config,
		AnnualLoss: run.Series.Values(),
		Summary:    run.Summary,
		Tail:       tail,
		Metrics:    MetricTiles(run.Summary),
	}, nil
}

// MetricTiles returns the headline figures of a summary formatted in whole dollars
func MetricTiles(s domain.RiskSummary) []MetricTile {
	tile := func(label string, v float64) MetricTile {
		return MetricTile{Label: label, Value: v, Display: money.FormatWhole(v, "$")}
	}
	return []MetricTile{
		tile("Mean annual loss", s.Mean),
		tile("Max annual loss", s.Max),
		tile("Median annual loss", s.Median),
		tile("99.5% VaR", s.VaR995),
		tile("Std deviation", s.StdDev),
	}
}

// intQuery reads a positive integer query parameter no larger than max.
// An absent parameter yields fallback.
func intQuery(r *http.Request, name string, fallback, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errBadRequest, name)
	}
	if v > max {
		return 0, fmt.Errorf("%w: %s must be at most %d", errBadRequest, name, max)
	}
	return v, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError

	switch {
	case errors.As(err, &validationErr):
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrInvalidConfiguration),
		errors.Is(err, domain.ErrUnknownPortfolioKind),
		errors.Is(err, export.ErrUnknownFormat):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, runs.ErrRunNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, export.ErrUploadDisabled):
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("Request failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
