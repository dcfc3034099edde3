// Package refresh keeps daily stats and the brand vocabulary warm in the
// background. Failures are logged and the previous values stay cached.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
)

const (
	defaultStatsInterval  = 30 * time.Second
	defaultBrandsInterval = 10 * time.Minute
	defaultCallTimeout    = 10 * time.Second
)

// Source is the upstream the worker polls.
type Source interface {
	Stats(ctx context.Context, category models.Category) (models.Stats, error)
	Brands(ctx context.Context, category models.Category) ([]models.Brand, error)
}

type Config struct {
	StatsInterval  time.Duration
	BrandsInterval time.Duration
	CallTimeout    time.Duration
	// Categories lists the workspaces to keep warm.
	Categories []models.Category
}

type StatsEntry struct {
	Stats     models.Stats `json:"stats"`
	FetchedAt time.Time    `json:"fetched_at"`
}

type Worker struct {
	Source Source
	Config Config
	Now    func() time.Time
	Logf   func(string, ...any)

	mu      sync.RWMutex
	stats   map[models.Category]StatsEntry
	brands  map[models.Category][]models.Brand
	trigger chan struct{}
}

func NewWorker(source Source, cfg Config) *Worker {
	if cfg.StatsInterval <= 0 {
		cfg.StatsInterval = defaultStatsInterval
	}
	if cfg.BrandsInterval <= 0 {
		cfg.BrandsInterval = defaultBrandsInterval
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = []models.Category{models.DefaultCategory}
	}

	return &Worker{
		Source: source,
		Config: cfg,
		Now: func() time.Time {
			return time.Now().UTC()
		},
		stats:   make(map[models.Category]StatsEntry),
		brands:  make(map[models.Category][]models.Brand),
		trigger: make(chan struct{}, 1),
	}
}

// Start refreshes everything once, then stats on every stats tick or
// Trigger and brands on every brands tick, until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	if err := w.RunOnce(ctx); err != nil {
		w.logf("refresh run failed: %v", err)
	}

	statsTicker := time.NewTicker(w.Config.StatsInterval)
	defer statsTicker.Stop()
	brandsTicker := time.NewTicker(w.Config.BrandsInterval)
	defer brandsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-statsTicker.C:
			if err := w.RefreshStats(ctx); err != nil {
				w.logf("stats refresh failed: %v", err)
			}
		case <-w.trigger:
			if err := w.RefreshStats(ctx); err != nil {
				w.logf("stats refresh failed: %v", err)
			}
		case <-brandsTicker.C:
			if err := w.RefreshBrands(ctx); err != nil {
				w.logf("brand refresh failed: %v", err)
			}
		}
	}
}

// Trigger asks for a stats refresh without waiting for it. Triggers that
// arrive before the pending one runs are coalesced.
func (w *Worker) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

func (w *Worker) RunOnce(ctx context.Context) error {
	return errors.Join(w.RefreshStats(ctx), w.RefreshBrands(ctx))
}

func (w *Worker) RefreshStats(ctx context.Context) error {
	if w == nil || w.Source == nil {
		return fmt.Errorf("refresh worker is not configured")
	}
	var errs []error
	for _, category := range w.Config.Categories {
		callCtx, cancel := context.WithTimeout(ctx, w.Config.CallTimeout)
		stats, err := w.Source.Stats(callCtx, category)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("stats %s: %w", category, err))
			continue
		}
		w.mu.Lock()
		w.stats[category] = StatsEntry{Stats: stats, FetchedAt: w.now()}
		w.mu.Unlock()
	}
	return errors.Join(errs...)
}

func (w *Worker) RefreshBrands(ctx context.Context) error {
	if w == nil || w.Source == nil {
		return fmt.Errorf("refresh worker is not configured")
	}
	var errs []error
	for _, category := range w.Config.Categories {
		callCtx, cancel := context.WithTimeout(ctx, w.Config.CallTimeout)
		brands, err := w.Source.Brands(callCtx, category)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("brands %s: %w", category, err))
			continue
		}
		w.mu.Lock()
		w.brands[category] = append([]models.Brand(nil), brands...)
		w.mu.Unlock()
	}
	return errors.Join(errs...)
}

// Stats returns the cached stats for category.
func (w *Worker) Stats(category models.Category) (StatsEntry, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	entry, ok := w.stats[category]
	return entry, ok
}

// Brands returns the cached brand vocabulary for category.
func (w *Worker) Brands(category models.Category) []models.Brand {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]models.Brand(nil), w.brands[category]...)
}

// BrandCode looks up the short code of brandID for SKU previews.
func (w *Worker) BrandCode(category models.Category, brandID string) (string, bool) {
	brandID = strings.TrimSpace(brandID)
	if brandID == "" {
		return "", false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, brand := range w.brands[category] {
		if brand.ID == brandID {
			return brand.Code, brand.Code != ""
		}
	}
	return "", false
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now().UTC()
}

func (w *Worker) logf(format string, args ...any) {
	if w.Logf != nil {
		w.Logf(format, args...)
	}
}
