// Package runs keeps completed simulation runs for the lifetime of the
// process. Runs are stored as msgpack blobs with an expiration timestamp.
package runs

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/reinsim/internal/domain"
)

// ErrRunNotFound is returned when a run does not exist or has expired
var ErrRunNotFound = errors.New("run not found")

// Repository stores simulation runs in the simulation_runs table
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a new run repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Save stores run, replacing any run with the same ID. The run becomes
// invisible once ttl has elapsed.
func (r *Repository) Save(run *domain.Run, ttl time.Duration) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("run id is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	series, err := msgpack.Marshal([]float64(run.Series))
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}
	summary, err := msgpack.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}

	var seed sql.NullString
	if run.Seed != nil {
		seed = sql.NullString{String: strconv.FormatUint(*run.Seed, 10), Valid: true}
	}

	_, err = r.db.Exec(`
		INSERT OR REPLACE INTO simulation_runs (
			id, kind, policy_count, mean_loss, std_dev, simulated_years,
			seed, series, summary, created_at, expires_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Config.Kind.String(),
		run.Config.PolicyCount,
		run.Config.MeanLoss,
		run.Config.StdDev,
		run.Config.SimulatedYears,
		seed,
		series,
		summary,
		createdAt.UnixMilli(),
		createdAt.Add(ttl).UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to store run %s: %w", run.ID, err)
	}
	return nil
}

// Get returns the run with the given ID, or ErrRunNotFound when it is
// missing or expired
func (r *Repository) Get(id string) (*domain.Run, error) {
	row := r.db.QueryRow(`
		SELECT id, kind, policy_count, mean_loss, std_dev, simulated_years,
		       seed, series, summary, created_at
		FROM simulation_runs
		WHERE id = ? AND expires_at > ?`,
		id, r.now().UnixMilli(),
	)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return run, nil
}

// List returns up to limit unexpired runs, newest first
func (r *Repository) List(limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := r.db.Query(`
		SELECT id, kind, policy_count, mean_loss, std_dev, simulated_years,
		       seed, series, summary, created_at
		FROM simulation_runs
		WHERE expires_at > ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`,
		r.now().UnixMilli(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var result []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		result = append(result, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return result, nil
}

// DeleteExpired removes runs whose expiration has passed and returns their IDs
func (r *Repository) DeleteExpired() ([]string, error) {
	rows, err := r.db.Query(
		"DELETE FROM simulation_runs WHERE expires_at <= ? RETURNING id", r.now().UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to delete expired runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan expired run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to delete expired runs: %w", err)
	}
	return ids, nil
}

// Count returns the number of unexpired runs
func (r *Repository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM simulation_runs WHERE expires_at > ?", r.now().UnixMilli(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*domain.Run, error) {
	var (
		run       domain.Run
		kind      string
		seed      sql.NullString
		series    []byte
		summary   []byte
		createdAt int64
	)

	err := s.Scan(
		&run.ID,
		&kind,
		&run.Config.PolicyCount,
		&run.Config.MeanLoss,
		&run.Config.StdDev,
		&run.Config.SimulatedYears,
		&seed,
		&series,
		&summary,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	run.Config.Kind, err = domain.ParsePortfolioKind(kind)
	if err != nil {
		return nil, err
	}

	if seed.Valid {
		v, err := strconv.ParseUint(seed.String, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q: %w", seed.String, err)
		}
		run.Seed = &v
	}

	var values []float64
	if err := msgpack.Unmarshal(series, &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal series: %w", err)
	}
	run.Series = values

	if err := msgpack.Unmarshal(summary, &run.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}

	run.CreatedAt = time.UnixMilli(createdAt)
	return &run, nil
}
