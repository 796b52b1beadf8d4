package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/reinsim/internal/database"
	"github.com/aristath/reinsim/internal/events"
	"github.com/aristath/reinsim/internal/modules/runs"
	"github.com/aristath/reinsim/internal/scheduler"
)

// SystemHandlers handles system-wide monitoring endpoints
type SystemHandlers struct {
	log            zerolog.Logger
	runsDB         *database.DB
	runRepo        *runs.Repository
	scheduler      *scheduler.Scheduler
	bus            *events.Bus
	uploadsEnabled bool
	startedAt      time.Time
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(
	runsDB *database.DB,
	runRepo *runs.Repository,
	sched *scheduler.Scheduler,
	bus *events.Bus,
	uploadsEnabled bool,
	startedAt time.Time,
	log zerolog.Logger,
) *SystemHandlers {
	return &SystemHandlers{
		log:            log.With().Str("service", "system").Logger(),
		runsDB:         runsDB,
		runRepo:        runRepo,
		scheduler:      sched,
		bus:            bus,
		uploadsEnabled: uploadsEnabled,
		startedAt:      startedAt,
	}
}

// SystemStatusResponse represents the system status response
type SystemStatusResponse struct {
	Status           string  `json:"status"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	StoredRuns       int     `json:"stored_runs"`
	EventSubscribers int     `json:"event_subscribers"`
	Goroutines       int     `json:"goroutines"`
	UploadsEnabled   bool    `json:"uploads_enabled"`
	CPUPercent       float64 `json:"cpu_percent"`
	MemoryPercent    float64 `json:"memory_percent"`
	MemoryUsedMB     float64 `json:"memory_used_mb"`
	LastUpdated      string  `json:"last_updated"`
}

// JobsStatusResponse lists the registered background jobs
type JobsStatusResponse struct {
	Jobs []scheduler.JobInfo `json:"jobs"`
}

// DatabaseStatsResponse reports the run store page statistics
type DatabaseStatsResponse struct {
	Name          string `json:"name"`
	Profile       string `json:"profile"`
	PageCount     int64  `json:"page_count"`
	PageSize      int64  `json:"page_size"`
	FreelistCount int64  `json:"freelist_count"`
	SizeBytes     int64  `json:"size_bytes"`
	StoredRuns    int    `json:"stored_runs"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	storedRuns, err := h.runRepo.Count()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to count stored runs")
		status = "degraded"
	}

	cpuPercent, memPercent, memUsedMB := h.hostMetrics()

	response := SystemStatusResponse{
		Status:           status,
		UptimeSeconds:    time.Since(h.startedAt).Seconds(),
		StoredRuns:       storedRuns,
		EventSubscribers: h.bus.SubscriberCount(),
		Goroutines:       runtime.NumGoroutine(),
		UploadsEnabled:   h.uploadsEnabled,
		CPUPercent:       cpuPercent,
		MemoryPercent:    memPercent,
		MemoryUsedMB:     memUsedMB,
		LastUpdated:      time.Now().Format(time.RFC3339),
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleJobsStatus handles GET /api/system/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	jobs := h.scheduler.Jobs()
	if jobs == nil {
		jobs = []scheduler.JobInfo{}
	}
	h.writeJSON(w, http.StatusOK, JobsStatusResponse{Jobs: jobs})
}

// HandleDatabaseStats handles GET /api/system/database/stats
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.runsDB.GetStats()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read database stats")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read database stats"})
		return
	}

	storedRuns, err := h.runRepo.Count()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to count stored runs")
	}

	h.writeJSON(w, http.StatusOK, DatabaseStatsResponse{
		Name:          h.runsDB.Name(),
		Profile:       string(h.runsDB.Profile()),
		PageCount:     stats.PageCount,
		PageSize:      stats.PageSize,
		FreelistCount: stats.FreelistCount,
		SizeBytes:     stats.SizeBytes(),
		StoredRuns:    storedRuns,
	})
}

// hostMetrics samples CPU and memory usage. Failures are logged and reported as zero.
func (h *SystemHandlers) hostMetrics() (cpuPercent, memPercent, memUsedMB float64) {
	percents, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read CPU usage")
	} else if len(percents) > 0 {
		cpuPercent = percents[0]
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read memory usage")
	} else {
		memPercent = vm.UsedPercent
		memUsedMB = float64(vm.Used) / 1024 / 1024
	}

	return cpuPercent, memPercent, memUsedMB
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
