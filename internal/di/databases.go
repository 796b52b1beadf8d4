package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/reinsim/internal/database"
	"github.com/aristath/reinsim/internal/modules/runs"
)

// InitializeDatabases opens the in-memory run store and applies its schema
func InitializeDatabases(container *Container, log zerolog.Logger) error {
	runsDB, err := database.New(database.Config{
		Profile: database.ProfileMemory,
		Name:    "runs",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize runs database: %w", err)
	}

	if err := runsDB.Migrate(); err != nil {
		runsDB.Close()
		return fmt.Errorf("failed to apply runs schema: %w", err)
	}

	container.RunsDB = runsDB
	log.Info().Str("database", runsDB.Name()).Str("profile", string(runsDB.Profile())).Msg("Database initialized")
	return nil
}

// InitializeRepositories creates the repositories over the open databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container.RunsDB == nil {
		return fmt.Errorf("runs database is not initialized")
	}
	container.RunRepo = runs.NewRepository(container.RunsDB.Conn())
	log.Debug().Msg("Repositories initialized")
	return nil
}
