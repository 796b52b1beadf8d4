package runs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/reinsim/internal/events"
)

// purgeTimeout bounds the object store calls of one cleanup pass
const purgeTimeout = time.Minute

// EventEmitter publishes housekeeping events
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
	EmitError(module string, err error, context map[string]interface{})
}

// UploadPurger removes the uploaded exports of a run
type UploadPurger interface {
	DeleteUploads(ctx context.Context, runID string) (int, error)
}

// CleanupJob removes expired runs from the store along with their
// uploaded exports. It is scheduled every few minutes.
type CleanupJob struct {
	repo   *Repository
	purger UploadPurger
	events EventEmitter
	log    zerolog.Logger
}

// NewCleanupJob creates a new run cleanup job. emitter may be nil.
func NewCleanupJob(repo *Repository, emitter EventEmitter, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo:   repo,
		events: emitter,
		log:    log.With().Str("job", "run_cleanup").Logger(),
	}
}

// SetUploadPurger makes the job delete the uploads of expired runs
func (j *CleanupJob) SetUploadPurger(purger UploadPurger) {
	j.purger = purger
}

// Run deletes every expired run.
// A failed upload purge is logged and reported but does not fail the job;
// the run itself is already gone.
func (j *CleanupJob) Run() error {
	expired, err := j.repo.DeleteExpired()
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired runs")
		return err
	}
	if len(expired) == 0 {
		return nil
	}

	j.log.Info().Int("deleted", len(expired)).Msg("Cleaned up expired runs")
	if j.events != nil {
		j.events.EmitTyped("runs", &events.RunsExpiredData{Deleted: int64(len(expired))})
	}

	if j.purger != nil {
		j.purgeUploads(expired)
	}
	return nil
}

func (j *CleanupJob) purgeUploads(runIDs []string) {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	for _, id := range runIDs {
		removed, err := j.purger.DeleteUploads(ctx, id)
		if err != nil {
			j.log.Warn().Err(err).Str("run_id", id).Msg("Failed to delete uploads of expired run")
			if j.events != nil {
				j.events.EmitError("runs", err, map[string]interface{}{"run_id": id})
			}
			continue
		}
		if removed > 0 {
			j.log.Debug().Str("run_id", id).Int("objects", removed).Msg("Deleted uploads of expired run")
		}
	}
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "run_cleanup"
}
