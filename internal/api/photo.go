package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/sayimcli"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/workflow"
)

const maxPhotoSize = 10 << 20 // 10 MB

var errPhotoTooLarge = errors.New("photo too large (max 10MB)")

type attachmentsRequest struct {
	Notes      *string `json:"notes"`
	UTSQR      *string `json:"uts_qr"`
	ClearPhoto bool    `json:"clear_photo"`
}

// readAttachmentUpdate accepts either a JSON body or a multipart form with an
// optional "photo" file part.
func readAttachmentUpdate(w http.ResponseWriter, r *http.Request) (workflow.AttachmentUpdate, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req attachmentsRequest
		if err := decodeJSON(r, &req); err != nil {
			return workflow.AttachmentUpdate{}, errors.New("invalid JSON")
		}
		return workflow.AttachmentUpdate{Notes: req.Notes, UTSQR: req.UTSQR, ClearPhoto: req.ClearPhoto}, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize+1024)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		if isTooLarge(err) {
			return workflow.AttachmentUpdate{}, errPhotoTooLarge
		}
		return workflow.AttachmentUpdate{}, errors.New("invalid multipart form")
	}

	var update workflow.AttachmentUpdate
	if values, ok := r.MultipartForm.Value["notes"]; ok && len(values) > 0 {
		update.Notes = &values[0]
	}
	if values, ok := r.MultipartForm.Value["uts_qr"]; ok && len(values) > 0 {
		update.UTSQR = &values[0]
	}
	if raw := strings.TrimSpace(r.FormValue("clear_photo")); raw != "" {
		clearPhoto, err := strconv.ParseBool(raw)
		if err != nil {
			return workflow.AttachmentUpdate{}, errors.New("clear_photo must be a boolean")
		}
		update.ClearPhoto = clearPhoto
	}

	file, header, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return update, nil
	}
	if err != nil {
		return workflow.AttachmentUpdate{}, errors.New("invalid photo part")
	}
	defer file.Close()
	if header.Size > maxPhotoSize {
		return workflow.AttachmentUpdate{}, errPhotoTooLarge
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return workflow.AttachmentUpdate{}, fmt.Errorf("read photo: %w", err)
	}
	contentType := detectImageType(data, header.Filename, header.Header.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "image/") {
		return workflow.AttachmentUpdate{}, errors.New("photo must be an image")
	}
	update.Photo = &sayimcli.Photo{
		Filename:    filepath.Base(header.Filename),
		ContentType: contentType,
		Data:        data,
	}
	return update, nil
}

func detectImageType(data []byte, filename, declared string) string {
	sniffLen := len(data)
	if sniffLen > 512 {
		sniffLen = 512
	}
	if sniffLen > 0 {
		if detected := http.DetectContentType(data[:sniffLen]); detected != "application/octet-stream" {
			return detected
		}
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	if declared = strings.TrimSpace(declared); declared != "" {
		return declared
	}
	return "application/octet-stream"
}

func isTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "too large")
}
