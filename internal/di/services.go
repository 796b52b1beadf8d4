package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/reinsim/internal/events"
	"github.com/aristath/reinsim/internal/metrics"
	"github.com/aristath/reinsim/internal/modules/export"
	"github.com/aristath/reinsim/internal/modules/simulation"
)

// InitializeServices creates events, metrics and the domain services
func InitializeServices(ctx context.Context, container *Container, log zerolog.Logger) error {
	cfg := container.Config

	container.EventBus = events.NewBus()
	container.EventManager = events.NewManager(container.EventBus, log)

	repo := container.RunRepo
	container.Metrics = metrics.New(func() float64 {
		count, err := repo.Count()
		if err != nil {
			return 0
		}
		return float64(count)
	})

	container.SimulationService = simulation.NewService(container.RunRepo, cfg.RunTTL, log)
	container.SimulationService.SetDefaultSeed(cfg.DefaultSeed)
	container.SimulationService.SetEventEmitter(container.EventManager)
	container.SimulationService.SetRecorder(container.Metrics)

	var prefix string
	if cfg.Export != nil {
		prefix = cfg.Export.Prefix
	}
	if cfg.Export.UploadsEnabled() {
		client, err := export.NewR2Client(ctx, export.R2Config{
			Endpoint:        cfg.Export.Endpoint,
			Region:          cfg.Export.Region,
			Bucket:          cfg.Export.Bucket,
			AccessKeyID:     cfg.Export.AccessKeyID,
			SecretAccessKey: cfg.Export.SecretAccessKey,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create object store client: %w", err)
		}
		container.ObjectStore = client
		log.Info().Str("bucket", cfg.Export.Bucket).Msg("Export uploads enabled")
	} else {
		log.Info().Msg("Export uploads disabled (no bucket configured)")
	}

	container.Exporter = export.NewExporter(container.ObjectStore, prefix, log)
	container.Exporter.SetEventEmitter(container.EventManager)
	container.Exporter.SetRecorder(container.Metrics)

	return nil
}
