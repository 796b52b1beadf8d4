// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/reinsim/internal/config"
	"github.com/aristath/reinsim/internal/database"
	"github.com/aristath/reinsim/internal/events"
	"github.com/aristath/reinsim/internal/metrics"
	"github.com/aristath/reinsim/internal/modules/export"
	"github.com/aristath/reinsim/internal/modules/runs"
	"github.com/aristath/reinsim/internal/modules/simulation"
	"github.com/aristath/reinsim/internal/scheduler"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config

	// Databases
	RunsDB *database.DB // In-memory run store, lives as long as the process

	// Repositories
	RunRepo *runs.Repository

	// Events
	EventBus     *events.Bus     // Event bus for pub/sub
	EventManager *events.Manager // Event manager (wraps bus)

	// Metrics
	Metrics *metrics.Metrics

	// Services
	SimulationService *simulation.Service
	ObjectStore       export.ObjectStore // R2/S3 client (nil when uploads are disabled)
	Exporter          *export.Exporter

	// Jobs
	Scheduler  *scheduler.Scheduler
	CleanupJob *runs.CleanupJob
}

// Close releases the container resources. The scheduler must be stopped first.
func (c *Container) Close() error {
	if c.EventBus != nil {
		c.EventBus.Close()
	}
	if c.RunsDB != nil {
		return c.RunsDB.Close()
	}
	return nil
}
