package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
)

type fakeSource struct {
	mu          sync.Mutex
	statsCalls  map[models.Category]int
	brandsCalls map[models.Category]int
	statsErr    error
	brandsErr   error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		statsCalls:  make(map[models.Category]int),
		brandsCalls: make(map[models.Category]int),
	}
}

func (f *fakeSource) Stats(_ context.Context, category models.Category) (models.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls[category]++
	if f.statsErr != nil {
		return models.Stats{}, f.statsErr
	}
	return models.Stats{Total: 10 * f.statsCalls[category], Direct: 5}, nil
}

func (f *fakeSource) Brands(_ context.Context, category models.Category) ([]models.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.brandsCalls[category]++
	if f.brandsErr != nil {
		return nil, f.brandsErr
	}
	return []models.Brand{{ID: "recRB", Name: "Ray-Ban", Code: "RB"}, {ID: "recNoCode", Name: "Yerel"}}, nil
}

func (f *fakeSource) statsCount(category models.Category) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statsCalls[category]
}

func TestNewWorkerDefaults(t *testing.T) {
	w := NewWorker(newFakeSource(), Config{})
	assert.Equal(t, defaultStatsInterval, w.Config.StatsInterval)
	assert.Equal(t, defaultBrandsInterval, w.Config.BrandsInterval)
	assert.Equal(t, []models.Category{models.DefaultCategory}, w.Config.Categories)
}

func TestRunOnceCachesPerCategory(t *testing.T) {
	source := newFakeSource()
	w := NewWorker(source, Config{Categories: []models.Category{models.CategoryFrame, models.CategoryLens}})
	fetchedAt := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	w.Now = func() time.Time { return fetchedAt }

	require.NoError(t, w.RunOnce(context.Background()))

	entry, ok := w.Stats(models.CategoryLens)
	require.True(t, ok)
	assert.Equal(t, 10, entry.Stats.Total)
	assert.Equal(t, fetchedAt, entry.FetchedAt)

	_, ok = w.Stats(models.CategorySunglasses)
	assert.False(t, ok)

	assert.Len(t, w.Brands(models.CategoryFrame), 2)
	code, ok := w.BrandCode(models.CategoryFrame, "recRB")
	require.True(t, ok)
	assert.Equal(t, "RB", code)
	_, ok = w.BrandCode(models.CategoryFrame, "recNoCode")
	assert.False(t, ok)
	_, ok = w.BrandCode(models.CategorySunglasses, "recRB")
	assert.False(t, ok)
}

func TestRefreshFailureKeepsPreviousCache(t *testing.T) {
	source := newFakeSource()
	w := NewWorker(source, Config{})
	require.NoError(t, w.RunOnce(context.Background()))

	source.mu.Lock()
	source.statsErr = errors.New("upstream down")
	source.brandsErr = errors.New("upstream down")
	source.mu.Unlock()

	err := w.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stats OF")
	assert.Contains(t, err.Error(), "brands OF")

	entry, ok := w.Stats(models.CategoryFrame)
	require.True(t, ok)
	assert.Equal(t, 10, entry.Stats.Total)
	assert.Len(t, w.Brands(models.CategoryFrame), 2)
}

func TestTriggerCoalesces(t *testing.T) {
	w := NewWorker(newFakeSource(), Config{})
	w.Trigger()
	w.Trigger()
	w.Trigger()
	assert.Len(t, w.trigger, 1)
}

func TestStartRefreshesOnTriggerAndLogsFailures(t *testing.T) {
	source := newFakeSource()
	source.brandsErr = errors.New("brands unavailable")
	w := NewWorker(source, Config{StatsInterval: time.Hour, BrandsInterval: time.Hour})

	var (
		logMu sync.Mutex
		logs  []string
	)
	w.Logf = func(format string, args ...any) {
		logMu.Lock()
		defer logMu.Unlock()
		logs = append(logs, fmt.Sprintf(format, args...))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return source.statsCount(models.CategoryFrame) == 1 }, time.Second, 5*time.Millisecond)
	w.Trigger()
	require.Eventually(t, func() bool { return source.statsCount(models.CategoryFrame) == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}

	logMu.Lock()
	defer logMu.Unlock()
	require.NotEmpty(t, logs)
	assert.Contains(t, logs[0], "brands unavailable")
}

func TestNilSourceIsNotConfigured(t *testing.T) {
	w := &Worker{}
	require.Error(t, w.RefreshStats(context.Background()))
	require.Error(t, w.RefreshBrands(context.Background()))
}
