package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/api"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/config"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/journal"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/observability"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/refresh"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/sayimcli"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/workflow"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("station")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := newStation(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise station", zap.Error(err))
	}
	defer st.close()

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	var workerWG sync.WaitGroup
	st.startWorkers(workerCtx, &workerWG)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           st.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("station listening",
			zap.String("port", cfg.Port),
			zap.String("category", string(cfg.Category)),
			zap.Bool("category_selectable", cfg.CategorySelectable),
			zap.Bool("journal", cfg.JournalEnabled()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown error", zap.Error(err))
	}
	cancelWorkers()
	workerWG.Wait()
	logger.Info("station stopped")
}

type station struct {
	handler   http.Handler
	hub       *ws.Hub
	refresher *refresh.Worker
	sessions  *workflow.Registry
	sweeper   *workflow.Sweeper
	db        *sql.DB
	logger    *zap.Logger
}

func newStation(ctx context.Context, cfg config.Config, logger *zap.Logger) (*station, error) {
	policy, err := workflow.ParseNotFoundPolicy(cfg.NotFoundAfterSave)
	if err != nil {
		return nil, err
	}

	client := sayimcli.NewClient(sayimcli.Config{APIBaseURL: cfg.SayimAPIURL, Category: cfg.Category})
	client.HTTP.Timeout = cfg.UpstreamTimeout

	refresher := refresh.NewWorker(client, refresh.Config{
		StatsInterval:  cfg.StatsRefreshInterval,
		BrandsInterval: cfg.BrandsRefreshInterval,
		Categories:     cfg.RefreshCategories(),
	})
	refresher.Logf = observability.NewPrintfAdapter(logger.Named("refresh")).Warnf

	st := &station{hub: ws.NewHub(), refresher: refresher, logger: logger}

	var (
		store         *journal.Store
		journalReader api.JournalReader
	)
	if cfg.JournalEnabled() {
		if err := journal.Migrate(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("migrate journal: %w", err)
		}
		db, err := journal.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		st.db = db
		store = journal.NewStore(db)
		journalReader = store
	}

	notifier := ws.NewNotifier(st.hub, logger.Named("ws"))
	st.sessions = workflow.NewRegistry(func(id string) *workflow.Coordinator {
		opts := workflow.Options{
			SessionID:          id,
			Category:           cfg.Category,
			CategorySelectable: cfg.CategorySelectable,
			NotFoundAfterSave:  policy,
			Refresher:          refresher,
			Notifier:           notifier,
			Logger:             logger.Named("workflow"),
		}
		if store != nil {
			opts.Journal = store
		}
		return workflow.NewCoordinator(client, opts)
	})

	st.sweeper = workflow.NewSweeper(st.sessions, cfg.SessionSweepInterval, cfg.SessionIdleTimeout)
	st.sweeper.Logf = observability.NewPrintfAdapter(logger.Named("sessions")).Printf

	st.handler = api.NewRouter(api.Options{
		Sessions:       st.sessions,
		Catalog:        refresher,
		Journal:        journalReader,
		Hub:            st.hub,
		Category:       cfg.Category,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger.Named("http"),
	})
	return st, nil
}

func (s *station) startWorkers(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(3)
	go func() {
		defer wg.Done()
		s.hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		s.refresher.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		s.sweeper.Start(ctx)
	}()
	s.logger.Info("background workers started")
}

func (s *station) close() {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		s.logger.Warn("journal close error", zap.Error(err))
	}
}
