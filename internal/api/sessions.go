package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/session"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/workflow"
)

const maxJSONBody = 64 << 10

// SessionHandler exposes one count session per station tab.
type SessionHandler struct {
	Sessions *workflow.Registry
	Catalog  Catalog
}

type createSessionRequest struct {
	Operator string `json:"operator"`
	Category string `json:"category"`
}

type barcodeRequest struct {
	Barcode string `json:"barcode"`
}

type termRequest struct {
	Term string `json:"term"`
}

type selectRequest struct {
	Index *int `json:"index"`
}

type contextRequest struct {
	BrandID  *string          `json:"brand_id"`
	Category *models.Category `json:"category"`
	Clear    bool             `json:"clear"`
}

type operatorRequest struct {
	Operator string `json:"operator"`
}

type categoryRequest struct {
	Category string `json:"category"`
}

type previewResponse struct {
	SKU      string `json:"sku,omitempty"`
	Complete bool   `json:"complete"`
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Sessions == nil {
		sendJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "sessions unavailable"})
		return
	}
	var req createSessionRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}

	coordinator := h.Sessions.Create()
	if req.Operator != "" {
		coordinator.SetOperator(req.Operator)
	}
	if strings.TrimSpace(req.Category) != "" {
		if snap, err := coordinator.SetCategory(req.Category); err != nil {
			h.Sessions.Remove(coordinator.ID())
			sendError(w, err, &snap)
			return
		}
	}
	sendJSON(w, http.StatusCreated, coordinator.Snapshot())
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	coordinator, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	sendJSON(w, http.StatusOK, coordinator.Snapshot())
}

// Close releases the session and everything attached to it.
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	if h.Sessions == nil {
		sendJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "sessions unavailable"})
		return
	}
	if err := h.Sessions.Close(chi.URLParam(r, "id")); err != nil {
		sendError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Barcode(w http.ResponseWriter, r *http.Request) {
	var req barcodeRequest
	h.withBody(w, r, &req, func(ctx context.Context, c *workflow.Coordinator) (workflow.Snapshot, error) {
		return c.LookupBarcode(ctx, req.Barcode)
	})
}

func (h *SessionHandler) Term(w http.ResponseWriter, r *http.Request) {
	var req termRequest
	h.withBody(w, r, &req, func(ctx context.Context, c *workflow.Coordinator) (workflow.Snapshot, error) {
		return c.LookupTerm(ctx, req.Term)
	})
}

func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	h.withBody(w, r, &req, func(_ context.Context, c *workflow.Coordinator) (workflow.Snapshot, error) {
		if req.Index == nil {
			return c.Snapshot(), &workflow.ValidationError{Fields: []string{"index"}, Message: "candidate index is required"}
		}
		return c.Select(*req.Index)
	})
}

func (h *SessionHandler) Attachments(w http.ResponseWriter, r *http.Request) {
	coordinator, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	update, err := readAttachmentUpdate(w, r)
	if err != nil {
		if errors.Is(err, errPhotoTooLarge) {
			sendJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
			return
		}
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	snap, err := coordinator.SetAttachments(update)
	respond(w, snap, err)
}

func (h *SessionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(ctx context.Context, c *workflow.Coordinator) (workflow.Snapshot, error) {
		return c.Confirm(ctx)
	})
}

func (h *SessionHandler) Skip(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(ctx context.Context, c *workflow.Coordinator) (workflow.Snapshot, error) {
		return c.Skip(ctx)
	})
}

func (h *SessionHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(ctx context.Context, c *workflow.Coordinator) (workflow.Snapshot, error) {
		return c.RecordNotFound(ctx)
	})
}

func (h *SessionHandler) OpenUnlisted(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(_ context.Context, c *workflow.Coordinator) (workflow.Snapshot, error) {
		return c.OpenUnlisted()
	})
}

func (h *SessionHandler) CancelUnlisted(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(_ context.Context, c *workflow.Coordinator) (workflow.Snapshot, error) {
		return c.CancelUnlisted()
	})
}

func (h *SessionHandler) SubmitUnlisted(w http.ResponseWriter, r *http.Request) {
	var draft session.UnlistedDraft
	h.withBody(w, r, &draft, func(ctx context.Context, c *workflow.Coordinator) (workflow.Snapshot, error) {
		return c.SubmitUnlisted(ctx, draft)
	})
}

// PreviewUnlisted renders the SKU the upstream will assign once every part
// is known. It does not touch the session.
func (h *SessionHandler) PreviewUnlisted(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.coordinator(w, r); !ok {
		return
	}
	var draft session.UnlistedDraft
	if err := decodeJSON(r, &draft); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}
	category, err := models.ParseCategory(string(draft.Category))
	if err != nil {
		sendJSON(w, http.StatusOK, previewResponse{})
		return
	}
	var brandCode string
	if h.Catalog != nil {
		brandCode, _ = h.Catalog.BrandCode(category, draft.BrandID)
	}
	sku, complete := workflow.PreviewSKU(draft, brandCode)
	sendJSON(w, http.StatusOK, previewResponse{SKU: sku, Complete: complete})
}

func (h *SessionHandler) Repeat(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(_ context.Context, c *workflow.Coordinator) (workflow.Snapshot, error) {
		return c.Repeat()
	})
}

func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(_ context.Context, c *workflow.Coordinator) (workflow.Snapshot, error) {
		return c.Reset()
	})
}

func (h *SessionHandler) Context(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	h.withBody(w, r, &req, func(_ context.Context, c *workflow.Coordinator) (workflow.Snapshot, error) {
		if req.Clear {
			return c.ClearContext(), nil
		}
		return c.SetContext(req.BrandID, req.Category)
	})
}

func (h *SessionHandler) Operator(w http.ResponseWriter, r *http.Request) {
	var req operatorRequest
	h.withBody(w, r, &req, func(_ context.Context, c *workflow.Coordinator) (workflow.Snapshot, error) {
		return c.SetOperator(req.Operator), nil
	})
}

func (h *SessionHandler) Category(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	h.withBody(w, r, &req, func(_ context.Context, c *workflow.Coordinator) (workflow.Snapshot, error) {
		return c.SetCategory(req.Category)
	})
}

type sessionAction func(ctx context.Context, c *workflow.Coordinator) (workflow.Snapshot, error)

func (h *SessionHandler) run(w http.ResponseWriter, r *http.Request, action sessionAction) {
	coordinator, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	snap, err := action(r.Context(), coordinator)
	respond(w, snap, err)
}

func (h *SessionHandler) withBody(w http.ResponseWriter, r *http.Request, body any, action sessionAction) {
	coordinator, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	if err := decodeJSON(r, body); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}
	snap, err := action(r.Context(), coordinator)
	respond(w, snap, err)
}

func (h *SessionHandler) coordinator(w http.ResponseWriter, r *http.Request) (*workflow.Coordinator, bool) {
	if h.Sessions == nil {
		sendJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "sessions unavailable"})
		return nil, false
	}
	coordinator, err := h.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, err, nil)
		return nil, false
	}
	return coordinator, true
}

func respond(w http.ResponseWriter, snap workflow.Snapshot, err error) {
	if err != nil {
		sendError(w, err, &snap)
		return
	}
	sendJSON(w, http.StatusOK, snap)
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	return decoder.Decode(dst)
}

// decodeOptionalJSON accepts an empty body.
func decodeOptionalJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	if err := decodeJSON(r, dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
