package simulation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/reinsim/internal/domain"
	"github.com/aristath/reinsim/internal/events"
	testingpkg "github.com/aristath/reinsim/internal/testing"
)

var errNotFound = errors.New("not found")

type memoryRunStore struct {
	mu      sync.Mutex
	runs    map[string]*domain.Run
	ttls    map[string]time.Duration
	saveErr error
}

func newMemoryRunStore() *memoryRunStore {
	return &memoryRunStore{runs: map[string]*domain.Run{}, ttls: map[string]time.Duration{}}
}

func (m *memoryRunStore) Save(run *domain.Run, ttl time.Duration) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
	m.ttls[run.ID] = ttl
	return nil
}

func (m *memoryRunStore) Get(id string) (*domain.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errNotFound, id)
	}
	return run, nil
}

func (m *memoryRunStore) List(limit int) ([]*domain.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Run, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryRunStore) Count() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs), nil
}

type observedRun struct {
	portfolio string
	years     int
	err       error
}

type fakeRecorder struct {
	runs []observedRun
}

func (f *fakeRecorder) ObserveRun(portfolio string, duration time.Duration, years int, err error) {
	f.runs = append(f.runs, observedRun{portfolio, years, err})
}

func baseConfig(kind domain.PortfolioKind) domain.PortfolioConfig {
	return domain.PortfolioConfig{
		Kind: kind,
		LossParams: domain.LossParams{
			PolicyCount: 1000, MeanLoss: 5000, StdDev: 2000, SimulatedYears: 10,
		},
	}
}

func newTestService() (*Service, *memoryRunStore, *testingpkg.MockEventEmitter, *fakeRecorder) {
	store := newMemoryRunStore()
	emitter := &testingpkg.MockEventEmitter{}
	recorder := &fakeRecorder{}

	svc := NewService(store, 30*time.Minute, zerolog.Nop())
	svc.SetEventEmitter(emitter)
	svc.SetRecorder(recorder)
	return svc, store, emitter, recorder
}

func TestService_Run(t *testing.T) {
	svc, store, emitter, recorder := newTestService()
	seed := uint64(7)

	run, err := svc.Run(context.Background(), baseConfig(domain.PortfolioCombined), &seed)
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Len(t, run.Series, 10)
	require.NotNil(t, run.Seed)
	assert.Equal(t, uint64(7), *run.Seed)
	assert.False(t, run.CreatedAt.IsZero())
	assert.Equal(t, 30*time.Minute, store.ttls[run.ID])

	expected, err := Simulate(baseConfig(domain.PortfolioCombined), &seed)
	require.NoError(t, err)
	assert.Equal(t, expected, run.Series)
	assert.GreaterOrEqual(t, run.Summary.VaR995, run.Summary.Median)

	require.Len(t, emitter.Events(), 1)
	completed, ok := emitter.Events()[0].(*events.SimulationCompletedData)
	require.True(t, ok)
	assert.Equal(t, run.ID, completed.RunID)
	assert.Equal(t, "Combined", completed.Portfolio)
	assert.Equal(t, run.Summary.VaR995, completed.VaR995)

	require.Len(t, recorder.runs, 1)
	assert.Equal(t, observedRun{"Combined", 10, nil}, recorder.runs[0])
}

func TestService_SeedResolution(t *testing.T) {
	t.Run("random seed is recorded and reproducible", func(t *testing.T) {
		svc, _, _, _ := newTestService()

		first, err := svc.Run(context.Background(), baseConfig(domain.PortfolioLife), nil)
		require.NoError(t, err)
		require.NotNil(t, first.Seed)

		replay, err := svc.Run(context.Background(), baseConfig(domain.PortfolioLife), first.Seed)
		require.NoError(t, err)
		assert.Equal(t, first.Series, replay.Series)
		assert.NotEqual(t, first.ID, replay.ID)
	})

	t.Run("default seed applies when none given", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		def := uint64(42)
		svc.SetDefaultSeed(&def)

		a, err := svc.Run(context.Background(), baseConfig(domain.PortfolioHealth), nil)
		require.NoError(t, err)
		b, err := svc.Run(context.Background(), baseConfig(domain.PortfolioHealth), nil)
		require.NoError(t, err)

		assert.Equal(t, uint64(42), *a.Seed)
		assert.Equal(t, a.Series, b.Series)

		explicit := uint64(43)
		c, err := svc.Run(context.Background(), baseConfig(domain.PortfolioHealth), &explicit)
		require.NoError(t, err)
		assert.NotEqual(t, a.Series, c.Series)
	})
}

func TestService_RunFailures(t *testing.T) {
	tests := []struct {
		name      string
		cfg       domain.PortfolioConfig
		wantErr   error
		portfolio string
	}{
		{
			name:      "zero policies",
			cfg:       func() domain.PortfolioConfig { c := baseConfig(domain.PortfolioLife); c.PolicyCount = 0; return c }(),
			wantErr:   domain.ErrInvalidConfiguration,
			portfolio: "Life",
		},
		{
			name:      "negative std dev",
			cfg:       func() domain.PortfolioConfig { c := baseConfig(domain.PortfolioHealth); c.StdDev = -1; return c }(),
			wantErr:   domain.ErrInvalidConfiguration,
			portfolio: "Health",
		},
		{
			name:      "unknown kind",
			cfg:       baseConfig(domain.PortfolioKind(99)),
			wantErr:   domain.ErrUnknownPortfolioKind,
			portfolio: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, emitter, recorder := newTestService()

			_, err := svc.Run(context.Background(), tt.cfg, nil)
			assert.ErrorIs(t, err, tt.wantErr)

			count, _ := store.Count()
			assert.Zero(t, count)

			require.Len(t, emitter.Events(), 1)
			failed, ok := emitter.Events()[0].(*events.SimulationFailedData)
			require.True(t, ok)
			assert.Equal(t, tt.portfolio, failed.Portfolio)
			assert.Equal(t, "simulate", failed.Reason)

			require.Len(t, recorder.runs, 1)
			assert.ErrorIs(t, recorder.runs[0].err, tt.wantErr)
		})
	}
}

func TestService_StoreFailure(t *testing.T) {
	svc, store, emitter, _ := newTestService()
	store.saveErr = errors.New("database is locked")

	_, err := svc.Run(context.Background(), baseConfig(domain.PortfolioLife), nil)
	assert.ErrorIs(t, err, store.saveErr)

	require.Len(t, emitter.Events(), 1)
	assert.Equal(t, "store", emitter.Events()[0].(*events.SimulationFailedData).Reason)
}

func TestService_GetAndList(t *testing.T) {
	svc, _, _, _ := newTestService()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := svc.Run(context.Background(), baseConfig(domain.PortfolioLife), nil)
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	got, err := svc.Get(context.Background(), ids[1])
	require.NoError(t, err)
	assert.Equal(t, ids[1], got.ID)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, errNotFound)

	list, err := svc.List(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)

	count, err := svc.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestService_CancelledContext(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, baseConfig(domain.PortfolioLife), nil)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = svc.List(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)

	count, _ := store.Count()
	assert.Zero(t, count)
}

func TestKinds(t *testing.T) {
	kinds := Kinds()
	require.Len(t, kinds, 3)

	assert.Equal(t, "Life", kinds[0].Name)
	assert.Equal(t, 1.2, kinds[1].MeanFactor)
	assert.Equal(t, 0.8, kinds[1].StdDevFactor)
	assert.InDelta(t, 2.2, kinds[2].MeanFactor, 1e-12)
	assert.InDelta(t, 1.2806, kinds[2].StdDevFactor, 1e-4)
	assert.True(t, kinds[2].CombinesLife && kinds[2].CombinesHealth)
}

func TestDefaultInputRanges(t *testing.T) {
	ranges := DefaultInputRanges()

	assert.True(t, ranges.PolicyCount.Contains(100))
	assert.True(t, ranges.PolicyCount.Contains(10000))
	assert.False(t, ranges.PolicyCount.Contains(10001))
	assert.False(t, ranges.SimulatedYears.Contains(0))

	cfg := ranges.DefaultConfig(domain.PortfolioHealth)
	assert.Equal(t, domain.PortfolioHealth, cfg.Kind)
	assert.Equal(t, domain.LossParams{PolicyCount: 1000, MeanLoss: 5000, StdDev: 2000, SimulatedYears: 1}, cfg.LossParams)
	assert.NoError(t, cfg.Validate())
}
