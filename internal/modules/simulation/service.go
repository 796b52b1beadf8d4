package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/reinsim/internal/domain"
	"github.com/aristath/reinsim/internal/events"
	"github.com/aristath/reinsim/internal/modules/risk"
)

// RunStore keeps completed runs
type RunStore interface {
	Save(run *domain.Run, ttl time.Duration) error
	Get(id string) (*domain.Run, error)
	List(limit int) ([]*domain.Run, error)
	Count() (int, error)
}

// EventEmitter publishes simulation events
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
}

// Recorder records simulation metrics
type Recorder interface {
	ObserveRun(portfolio string, duration time.Duration, years int, err error)
}

// Service runs simulations and keeps their results
type Service struct {
	store       RunStore
	ttl         time.Duration
	defaultSeed *uint64
	events      EventEmitter
	recorder    Recorder
	now         func() time.Time
	log         zerolog.Logger
}

// NewService creates a new simulation service
func NewService(store RunStore, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		ttl:   ttl,
		now:   time.Now,
		log:   log.With().Str("service", "simulation").Logger(),
	}
}

// SetDefaultSeed fixes the seed used when a request carries none
func (s *Service) SetDefaultSeed(seed *uint64) {
	s.defaultSeed = seed
}

// SetEventEmitter wires the event manager
func (s *Service) SetEventEmitter(emitter EventEmitter) {
	s.events = emitter
}

// SetRecorder wires the metrics recorder
func (s *Service) SetRecorder(recorder Recorder) {
	s.recorder = recorder
}

// Run simulates cfg, summarizes the result and stores the run.
// Without an explicit or default seed a random one is drawn and recorded on
// the run so the result can be reproduced.
func (s *Service) Run(ctx context.Context, cfg domain.PortfolioConfig, seed *uint64) (*domain.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	effective := s.resolveSeed(seed)

	series, err := Simulate(cfg, &effective)
	if err != nil {
		return nil, s.fail(cfg, "simulate", err)
	}

	summary, err := risk.Summarize(series)
	if err != nil {
		return nil, s.fail(cfg, "summarize", err)
	}

	run := &domain.Run{
		ID:        uuid.NewString(),
		CreatedAt: s.now(),
		Seed:      &effective,
		Config:    cfg,
		Series:    series,
		Summary:   summary,
	}

	if err := s.store.Save(run, s.ttl); err != nil {
		return nil, s.fail(cfg, "store", fmt.Errorf("failed to store run: %w", err))
	}

	duration := time.Since(start)

	s.log.Info().
		Str("run_id", run.ID).
		Str("portfolio", cfg.Kind.String()).
		Int("policy_count", cfg.PolicyCount).
		Int("simulated_years", cfg.SimulatedYears).
		Float64("mean", summary.Mean).
		Float64("var_995", summary.VaR995).
		Dur("duration_ms", duration).
		Msg("Simulation completed")

	if s.events != nil {
		s.events.EmitTyped("simulation", &events.SimulationCompletedData{
			RunID:          run.ID,
			Portfolio:      cfg.Kind.String(),
			PolicyCount:    cfg.PolicyCount,
			SimulatedYears: cfg.SimulatedYears,
			Mean:           summary.Mean,
			VaR995:         summary.VaR995,
			DurationMs:     duration.Milliseconds(),
		})
	}
	if s.recorder != nil {
		s.recorder.ObserveRun(cfg.Kind.String(), duration, cfg.SimulatedYears, nil)
	}

	return run, nil
}

// Get returns a stored run
func (s *Service) Get(ctx context.Context, id string) (*domain.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Get(id)
}

// List returns the most recent runs, newest first
func (s *Service) List(ctx context.Context, limit int) ([]*domain.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.List(limit)
}

// Count returns the number of stored runs
func (s *Service) Count() (int, error) {
	return s.store.Count()
}

func (s *Service) resolveSeed(seed *uint64) uint64 {
	switch {
	case seed != nil:
		return *seed
	case s.defaultSeed != nil:
		return *s.defaultSeed
	default:
		return rand.Uint64()
	}
}

func (s *Service) fail(cfg domain.PortfolioConfig, stage string, err error) error {
	portfolio := "unknown"
	if cfg.Kind.Valid() {
		portfolio = cfg.Kind.String()
	}

	s.log.Warn().
		Err(err).
		Str("portfolio", portfolio).
		Str("stage", stage).
		Msg("Simulation failed")

	if s.events != nil {
		s.events.EmitTyped("simulation", &events.SimulationFailedData{
			Portfolio: portfolio,
			Reason:    stage,
			Error:     err.Error(),
		})
	}
	if s.recorder != nil {
		s.recorder.ObserveRun(portfolio, 0, cfg.SimulatedYears, err)
	}
	return err
}
