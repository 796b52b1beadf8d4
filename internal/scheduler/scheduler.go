// Package scheduler runs background housekeeping jobs on cron schedules.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// Observer is notified after every job execution
type Observer interface {
	ObserveJob(name string, duration time.Duration, err error)
}

// JobInfo describes a registered job
type JobInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	Next     time.Time `json:"next"`
	Prev     time.Time `json:"prev,omitempty"`
}

type registration struct {
	id       cron.EntryID
	name     string
	schedule string
}

// Scheduler manages background jobs
type Scheduler struct {
	cron     *cron.Cron
	observer Observer
	log      zerolog.Logger

	mu   sync.Mutex
	jobs []registration
}

// New creates a new scheduler. Schedules accept an optional seconds field
// and descriptors such as "@every 10m".
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithParser(cron.NewParser(
			cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		))),
		log: log.With().Str("component", "scheduler").Logger(),
	}
}

// SetObserver wires job metrics
func (s *Scheduler) SetObserver(observer Observer) {
	s.observer = observer
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a new job with cron schedule
// Schedule examples:
//   - "0 */5 * * * *"      - Every 5 minutes
//   - "*/10 * * * *"       - Every 10 minutes
//   - "@hourly"            - Every hour
//   - "@every 10m"         - Every 10 minutes
func (s *Scheduler) AddJob(schedule string, job Job) error {
	id, err := s.cron.AddFunc(schedule, func() {
		_ = s.execute(job)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", schedule, job.Name(), err)
	}

	s.mu.Lock()
	s.jobs = append(s.jobs, registration{id: id, name: job.Name(), schedule: schedule})
	s.mu.Unlock()

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return s.execute(job)
}

// Jobs lists registered jobs with their next and previous run times
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, reg := range s.jobs {
		entry := s.cron.Entry(reg.id)
		infos = append(infos, JobInfo{
			Name:     reg.name,
			Schedule: reg.schedule,
			Next:     entry.Next,
			Prev:     entry.Prev,
		})
	}
	return infos
}

func (s *Scheduler) execute(job Job) error {
	s.log.Debug().Str("job", job.Name()).Msg("Running job")

	start := time.Now()
	err := job.Run()
	duration := time.Since(start)

	if err != nil {
		s.log.Error().
			Err(err).
			Str("job", job.Name()).
			Dur("duration_ms", duration).
			Msg("Job failed")
	} else {
		s.log.Debug().Str("job", job.Name()).Dur("duration_ms", duration).Msg("Job completed")
	}

	if s.observer != nil {
		s.observer.ObserveJob(job.Name(), duration, err)
	}
	return err
}
