package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/sayimcli"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/workflow"
)

type errorResponse struct {
	Error    string             `json:"error"`
	Fields   []string           `json:"fields,omitempty"`
	Snapshot *workflow.Snapshot `json:"snapshot,omitempty"`
}

func statusForError(err error) int {
	var (
		validationErr *workflow.ValidationError
		stageErr      *workflow.StageError
		serverErr     *sayimcli.ServerError
		decodeErr     *sayimcli.ResponseDecodeError
	)
	switch {
	case errors.Is(err, workflow.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, workflow.ErrBusy), errors.Is(err, workflow.ErrStale), errors.As(err, &stageErr):
		return http.StatusConflict
	case sayimcli.IsTransport(err), errors.As(err, &serverErr), errors.As(err, &decodeErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// sendError writes err with the snapshot the coordinator returned alongside
// it, so the client can redraw without a second request.
func sendError(w http.ResponseWriter, err error, snap *workflow.Snapshot) {
	resp := errorResponse{Error: err.Error(), Snapshot: snap}
	var validationErr *workflow.ValidationError
	if errors.As(err, &validationErr) {
		resp.Fields = validationErr.Fields
	}
	var serverErr *sayimcli.ServerError
	if errors.As(err, &serverErr) && serverErr.Message != "" {
		resp.Error = serverErr.Message
	}
	sendJSON(w, statusForError(err), resp)
}
