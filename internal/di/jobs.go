package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/reinsim/internal/modules/runs"
	"github.com/aristath/reinsim/internal/scheduler"
)

// RegisterJobs creates the scheduler and registers background jobs.
// The scheduler is not started.
func RegisterJobs(container *Container, log zerolog.Logger) error {
	sched := scheduler.New(log)
	sched.SetObserver(container.Metrics)

	cleanup := runs.NewCleanupJob(container.RunRepo, container.EventManager, log)
	if container.Exporter.UploadsEnabled() {
		cleanup.SetUploadPurger(container.Exporter)
	}
	if err := sched.AddJob(container.Config.RunCleanupSchedule, cleanup); err != nil {
		return fmt.Errorf("failed to register run cleanup job: %w", err)
	}

	container.Scheduler = sched
	container.CleanupJob = cleanup
	return nil
}
