// Package api serves the count station to its browser presentation layer.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/journal"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/observability"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/refresh"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/workflow"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/ws"
)

var startTime = time.Now()

// Catalog is the refresher cache read by the stats, brands and SKU preview
// endpoints.
type Catalog interface {
	Stats(category models.Category) (refresh.StatsEntry, bool)
	Brands(category models.Category) []models.Brand
	BrandCode(category models.Category, brandID string) (string, bool)
}

// JournalReader lists locally journaled counts and failed photo uploads.
type JournalReader interface {
	ListRecent(ctx context.Context, sessionID string, limit int) ([]journal.CountRecord, error)
	ListPhotoFailures(ctx context.Context, limit int) ([]journal.PhotoFailure, error)
}

type Options struct {
	Sessions       *workflow.Registry
	Catalog        Catalog
	Journal        JournalReader
	Hub            *ws.Hub
	Category       models.Category
	AllowedOrigins []string
	Logger         *zap.Logger
}

type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Version   string `json:"version"`
	Sessions  int    `json:"sessions"`
	Journal   bool   `json:"journal"`
	Timestamp string `json:"timestamp"`
}

func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if !opts.Category.Valid() {
		opts.Category = models.DefaultCategory
	}
	allowed := opts.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observability.RequestLogger(opts.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	sessions := &SessionHandler{Sessions: opts.Sessions, Catalog: opts.Catalog}
	catalog := &CatalogHandler{Catalog: opts.Catalog, Journal: opts.Journal, Category: opts.Category, Logger: opts.Logger}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:    "ok",
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			Version:   getVersion(),
			Journal:   opts.Journal != nil,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		if opts.Sessions != nil {
			resp.Sessions = opts.Sessions.Len()
		}
		sendJSON(w, http.StatusOK, resp)
	})

	if opts.Hub != nil {
		handler := &ws.Handler{Hub: opts.Hub, AllowedOrigins: allowed, Logger: opts.Logger}
		if opts.Sessions != nil {
			handler.Sessions = opts.Sessions
		}
		r.Handle("/ws", handler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", catalog.Stats)
		r.Get("/brands", catalog.Brands)
		r.Get("/photo-failures", catalog.PhotoFailures)

		r.Post("/sessions", sessions.Create)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", sessions.Get)
			r.Delete("/", sessions.Close)
			r.Get("/journal", catalog.ListJournal)
			r.Post("/barcode", sessions.Barcode)
			r.Post("/term", sessions.Term)
			r.Post("/select", sessions.Select)
			r.Post("/attachments", sessions.Attachments)
			r.Post("/confirm", sessions.Confirm)
			r.Post("/skip", sessions.Skip)
			r.Post("/not-found", sessions.NotFound)
			r.Post("/unlisted/open", sessions.OpenUnlisted)
			r.Post("/unlisted/cancel", sessions.CancelUnlisted)
			r.Post("/unlisted/preview", sessions.PreviewUnlisted)
			r.Post("/unlisted", sessions.SubmitUnlisted)
			r.Post("/repeat", sessions.Repeat)
			r.Post("/reset", sessions.Reset)
			r.Post("/context", sessions.Context)
			r.Post("/operator", sessions.Operator)
			r.Post("/category", sessions.Category)
		})
	})

	return r
}

func getVersion() string {
	if v := os.Getenv("VERSION"); v != "" {
		return v
	}
	return "dev"
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
