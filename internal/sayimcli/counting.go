package sayimcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
)

type BarcodeSearchRequest struct {
	Barcode         string           `json:"barkod"`
	ContextBrand    *string          `json:"context_brand,omitempty"`
	ContextCategory *models.Category `json:"context_category,omitempty"`
	Category        models.Category  `json:"category"`
}

type BarcodeSearchResponse struct {
	Found            bool               `json:"found"`
	Status           string             `json:"status"`
	Confidence       float64            `json:"confidence"`
	Product          *models.Product    `json:"product,omitempty"`
	Candidates       []models.Candidate `json:"candidates,omitempty"`
	SupplierRecordID *string            `json:"tedarikci_kaydi_id,omitempty"`
}

type ManualSearchRequest struct {
	Term            string           `json:"term"`
	ContextBrand    *string          `json:"context_brand,omitempty"`
	ContextCategory *models.Category `json:"context_category,omitempty"`
	Category        models.Category  `json:"category"`
}

type ManualSearchResponse struct {
	Found    bool             `json:"found"`
	Count    int              `json:"count"`
	Products []models.Product `json:"products"`
}

type SaveCountRequest struct {
	Barcode          string             `json:"barkod"`
	MatchStatus      models.MatchStatus `json:"eslesme_durumu"`
	SKUID            *string            `json:"sku_id,omitempty"`
	SupplierRecordID *string            `json:"tedarikci_kaydi_id,omitempty"`
	ContextBrand     *string            `json:"context_brand,omitempty"`
	ContextCategory  *models.Category   `json:"context_category,omitempty"`
	ManualTerm       *string            `json:"manuel_arama_terimi,omitempty"`
	UTSQRCode        *string            `json:"uts_qr,omitempty"`
	Operator         *string            `json:"sayim_yapan,omitempty"`
	Notes            *string            `json:"notlar,omitempty"`
	Category         models.Category    `json:"category"`
}

type SaveCountResponse struct {
	Success  bool   `json:"success"`
	RecordID string `json:"record_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

type SaveUnlistedProductRequest struct {
	Barcode     string          `json:"barkod"`
	Kind        models.Category `json:"kategori"`
	BrandID     string          `json:"marka_id"`
	ModelCode   string          `json:"model_kodu"`
	ColorCode   string          `json:"renk_kodu"`
	BridgeWidth int             `json:"ekartman"`
	ModelName   *string         `json:"model_adi,omitempty"`
	ColorName   *string         `json:"renk_adi,omitempty"`
	UTSQRCode   *string         `json:"uts_qr,omitempty"`
	Notes       *string         `json:"notlar,omitempty"`
	Operator    *string         `json:"sayim_yapan,omitempty"`
	Category    models.Category `json:"category"`
}

type SaveUnlistedProductResponse struct {
	Success       bool   `json:"success"`
	SKU           string `json:"sku,omitempty"`
	SKURecordID   string `json:"sku_record_id,omitempty"`
	CountRecordID string `json:"sayim_record_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Photo is an image attached to a count record. Category selects the
// workspace; empty means the client default.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
	Category    models.Category
}

type uploadPhotoResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type statsResponse struct {
	Success bool         `json:"success"`
	Stats   models.Stats `json:"stats"`
	Error   string       `json:"error,omitempty"`
}

type brandsResponse struct {
	Success bool           `json:"success"`
	Brands  []models.Brand `json:"brands"`
	Error   string         `json:"error,omitempty"`
}

type HealthResponse struct {
	Status     string                   `json:"status"`
	Version    string                   `json:"version"`
	Categories map[models.Category]bool `json:"categories"`
	Timestamp  string                   `json:"timestamp"`
}

func (c *Client) SearchBarcode(ctx context.Context, input BarcodeSearchRequest) (BarcodeSearchResponse, error) {
	input.Barcode = strings.TrimSpace(input.Barcode)
	if input.Barcode == "" {
		return BarcodeSearchResponse{}, errors.New("barcode is required")
	}
	input.Category = c.categoryFor(input.Category)
	req, err := c.newJSONRequest(ctx, "/api/search-barcode", input)
	if err != nil {
		return BarcodeSearchResponse{}, err
	}
	var resp BarcodeSearchResponse
	if err := c.do(req, &resp); err != nil {
		return BarcodeSearchResponse{}, err
	}
	return resp, nil
}

func (c *Client) SearchManual(ctx context.Context, input ManualSearchRequest) (ManualSearchResponse, error) {
	input.Term = strings.TrimSpace(input.Term)
	if input.Term == "" {
		return ManualSearchResponse{}, errors.New("search term is required")
	}
	input.Category = c.categoryFor(input.Category)
	req, err := c.newJSONRequest(ctx, "/api/search-manual", input)
	if err != nil {
		return ManualSearchResponse{}, err
	}
	var resp ManualSearchResponse
	if err := c.do(req, &resp); err != nil {
		return ManualSearchResponse{}, err
	}
	return resp, nil
}

// SaveCount persists one count record and returns its record id.
func (c *Client) SaveCount(ctx context.Context, input SaveCountRequest) (SaveCountResponse, error) {
	if strings.TrimSpace(input.Barcode) == "" || input.MatchStatus == "" {
		return SaveCountResponse{}, errors.New("barcode and match status are required")
	}
	input.Category = c.categoryFor(input.Category)
	req, err := c.newJSONRequest(ctx, "/api/save-count", input)
	if err != nil {
		return SaveCountResponse{}, err
	}
	var resp SaveCountResponse
	if err := c.do(req, &resp); err != nil {
		return SaveCountResponse{}, err
	}
	if !resp.Success {
		return SaveCountResponse{}, &ServerError{StatusCode: http.StatusOK, Message: firstNonEmpty(resp.Error, "unknown error")}
	}
	return resp, nil
}

// SaveUnlistedProduct creates the catalog entry and its count record in one call.
func (c *Client) SaveUnlistedProduct(ctx context.Context, input SaveUnlistedProductRequest) (SaveUnlistedProductResponse, error) {
	if strings.TrimSpace(input.Barcode) == "" {
		return SaveUnlistedProductResponse{}, errors.New("barcode is required")
	}
	input.Category = c.categoryFor(input.Category)
	req, err := c.newJSONRequest(ctx, "/api/save-unlisted-product", input)
	if err != nil {
		return SaveUnlistedProductResponse{}, err
	}
	var resp SaveUnlistedProductResponse
	if err := c.do(req, &resp); err != nil {
		return SaveUnlistedProductResponse{}, err
	}
	if !resp.Success {
		return SaveUnlistedProductResponse{}, &ServerError{StatusCode: http.StatusOK, Message: firstNonEmpty(resp.Error, "unknown error")}
	}
	return resp, nil
}

// UploadPhoto attaches an image to an existing count record.
func (c *Client) UploadPhoto(ctx context.Context, recordID string, photo Photo) error {
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return errors.New("record id is required")
	}
	if len(photo.Data) == 0 {
		return errors.New("photo is empty")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	filename := filepath.Base(strings.TrimSpace(photo.Filename))
	if filename == "" || filename == "." || filename == "/" {
		filename = "photo.jpg"
	}
	contentType := strings.TrimSpace(photo.ContentType)
	if contentType == "" {
		contentType = http.DetectContentType(photo.Data)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := part.Write(photo.Data); err != nil {
		return err
	}
	if err := writer.WriteField("record_id", recordID); err != nil {
		return err
	}
	if err := writer.WriteField("category", string(c.categoryFor(photo.Category))); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload-photo", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	var resp uploadPhotoResponse
	if err := c.do(req, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &ServerError{StatusCode: http.StatusOK, Message: firstNonEmpty(resp.Error, "photo upload failed")}
	}
	return nil
}

func (c *Client) Stats(ctx context.Context, category models.Category) (models.Stats, error) {
	category = c.categoryFor(category)
	q := url.Values{}
	q.Set("category", string(category))
	req, err := c.newRequest(ctx, http.MethodGet, "/api/stats?"+q.Encode(), nil)
	if err != nil {
		return models.Stats{}, err
	}
	var resp statsResponse
	if err := c.do(req, &resp); err != nil {
		return models.Stats{}, err
	}
	if !resp.Success {
		return models.Stats{}, &ServerError{StatusCode: http.StatusOK, Message: firstNonEmpty(resp.Error, "stats unavailable")}
	}
	return resp.Stats, nil
}

func (c *Client) Brands(ctx context.Context, category models.Category) ([]models.Brand, error) {
	category = c.categoryFor(category)
	q := url.Values{}
	q.Set("category", string(category))
	req, err := c.newRequest(ctx, http.MethodGet, "/api/brands?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var resp brandsResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &ServerError{StatusCode: http.StatusOK, Message: firstNonEmpty(resp.Error, "brands unavailable")}
	}
	return resp.Brands, nil
}

func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return HealthResponse{}, err
	}
	var resp HealthResponse
	if err := c.do(req, &resp); err != nil {
		return HealthResponse{}, err
	}
	return resp, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(s)
}
