package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/journal"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/refresh"
)

// CatalogHandler serves read-only data kept warm by the refresher and the
// local journal.
type CatalogHandler struct {
	Catalog  Catalog
	Journal  JournalReader
	Category models.Category
	Logger   *zap.Logger
}

type statsResponse struct {
	Category     models.Category `json:"category"`
	CategoryName string          `json:"category_name"`
	refresh.StatsEntry
}

type brandsResponse struct {
	Category models.Category `json:"category"`
	Brands   []models.Brand  `json:"brands"`
}

type journalResponse struct {
	Enabled bool                  `json:"enabled"`
	Records []journal.CountRecord `json:"records"`
}

type photoFailuresResponse struct {
	Enabled  bool                   `json:"enabled"`
	Failures []journal.PhotoFailure `json:"failures"`
}

func (h *CatalogHandler) Stats(w http.ResponseWriter, r *http.Request) {
	category, ok := h.category(w, r)
	if !ok {
		return
	}
	if h.Catalog == nil {
		sendJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "stats unavailable"})
		return
	}
	entry, ok := h.Catalog.Stats(category)
	if !ok {
		sendJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "stats not loaded yet"})
		return
	}
	sendJSON(w, http.StatusOK, statsResponse{
		Category:     category,
		CategoryName: category.DisplayName(),
		StatsEntry:   entry,
	})
}

func (h *CatalogHandler) Brands(w http.ResponseWriter, r *http.Request) {
	category, ok := h.category(w, r)
	if !ok {
		return
	}
	brands := []models.Brand{}
	if h.Catalog != nil {
		if cached := h.Catalog.Brands(category); len(cached) > 0 {
			brands = cached
		}
	}
	sendJSON(w, http.StatusOK, brandsResponse{Category: category, Brands: brands})
}

func (h *CatalogHandler) ListJournal(w http.ResponseWriter, r *http.Request) {
	if h.Journal == nil {
		sendJSON(w, http.StatusOK, journalResponse{Enabled: false, Records: []journal.CountRecord{}})
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	records, err := h.Journal.ListRecent(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		h.logger().Error("list journal", zap.String("session_id", chi.URLParam(r, "id")), zap.Error(err))
		sendJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read journal"})
		return
	}
	if records == nil {
		records = []journal.CountRecord{}
	}
	sendJSON(w, http.StatusOK, journalResponse{Enabled: true, Records: records})
}

// PhotoFailures lists counts whose photo never reached the upstream, newest
// first.
func (h *CatalogHandler) PhotoFailures(w http.ResponseWriter, r *http.Request) {
	if h.Journal == nil {
		sendJSON(w, http.StatusOK, photoFailuresResponse{Enabled: false, Failures: []journal.PhotoFailure{}})
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	failures, err := h.Journal.ListPhotoFailures(r.Context(), limit)
	if err != nil {
		h.logger().Error("list photo failures", zap.Error(err))
		sendJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read journal"})
		return
	}
	if failures == nil {
		failures = []journal.PhotoFailure{}
	}
	sendJSON(w, http.StatusOK, photoFailuresResponse{Enabled: true, Failures: failures})
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
		return 0, false
	}
	return limit, true
}

func (h *CatalogHandler) category(w http.ResponseWriter, r *http.Request) (models.Category, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("category"))
	if raw == "" {
		if h.Category.Valid() {
			return h.Category, true
		}
		return models.DefaultCategory, true
	}
	category, err := models.ParseCategory(raw)
	if err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return "", false
	}
	return category, true
}

func (h *CatalogHandler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}
