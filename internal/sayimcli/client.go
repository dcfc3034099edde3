package sayimcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
)

type Client struct {
	BaseURL  string
	Category models.Category
	HTTP     *http.Client
}

const (
	maxClientResponseBodyBytes = 1 << 20
	defaultClientTimeout       = 30 * time.Second
)

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "transport error"
	}
	if e.Op == "" {
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ServerError means the upstream answered but reported failure, either with an
// HTTP error status or with success=false in the body.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e == nil {
		return "request failed"
	}
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed (%d)", e.StatusCode)
	}
	return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Message)
}

func (e *ServerError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type ResponseDecodeError struct {
	StatusCode int
	Detail     string
}

func (e *ResponseDecodeError) Error() string {
	if e == nil {
		return "invalid response"
	}
	if strings.TrimSpace(e.Detail) == "" {
		return fmt.Sprintf("invalid response (%d)", e.StatusCode)
	}
	return fmt.Sprintf("invalid response (%d): %s", e.StatusCode, e.Detail)
}

func (e *ResponseDecodeError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// HTTPStatusCode returns the HTTP status carried by typed client errors.
func HTTPStatusCode(err error) (int, bool) {
	var statusErr interface {
		HTTPStatusCode() int
	}
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	status := statusErr.HTTPStatusCode()
	if status <= 0 {
		return 0, false
	}
	return status, true
}

// IsTransport reports whether err means the upstream could not be reached.
func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

func NewClient(cfg Config) *Client {
	category := cfg.Category
	if !category.Valid() {
		category = models.DefaultCategory
	}
	return &Client{
		BaseURL:  normalizeAPIBaseURL(cfg.APIBaseURL),
		Category: category,
		HTTP: &http.Client{
			Timeout: defaultClientTimeout,
		},
	}
}

// categoryFor returns requested when it names a workspace, otherwise the
// client default.
func (c *Client) categoryFor(requested models.Category) models.Category {
	if requested.Valid() {
		return requested
	}
	return c.category()
}

func (c *Client) category() models.Category {
	if c.Category.Valid() {
		return c.Category
	}
	return models.DefaultCategory
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	baseURL := normalizeAPIBaseURL(c.BaseURL)
	if baseURL == "" {
		return nil, errors.New("missing API base URL")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) newJSONRequest(ctx context.Context, path string, input any) (*http.Request, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) do(req *http.Request, out interface{}) error {
	op := req.Method + " " + req.URL.Path
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	payload, readErr := io.ReadAll(io.LimitReader(resp.Body, maxClientResponseBodyBytes))
	if readErr != nil {
		return &TransportError{Op: op, Err: readErr}
	}

	if resp.StatusCode >= 400 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    summarizeResponseBody(resp.Header.Get("Content-Type"), payload),
		}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return &ResponseDecodeError{StatusCode: resp.StatusCode, Detail: "empty response body"}
	}
	if err := json.Unmarshal(payload, out); err != nil {
		detail := classifyDecodeErrorDetail(resp.Header.Get("Content-Type"), payload)
		if detail == "" {
			detail = fmt.Sprintf("invalid JSON response: %v", err)
		}
		return &ResponseDecodeError{
			StatusCode: resp.StatusCode,
			Detail:     detail,
		}
	}
	return nil
}

func summarizeResponseBody(contentType string, payload []byte) string {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return ""
	}
	if isLikelyHTMLResponse(contentType, trimmed) {
		return "html response body omitted"
	}
	if msg, ok := extractJSONErrorSummary(payload, contentType); ok {
		return msg
	}
	return truncateResponseText(trimmed, 200)
}

func classifyDecodeErrorDetail(contentType string, payload []byte) string {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return "empty response body"
	}
	if isLikelyHTMLResponse(contentType, trimmed) {
		return "expected JSON response but received HTML"
	}
	if !looksLikeJSONContent(contentType, trimmed) {
		return "expected JSON response but received non-JSON body"
	}
	return ""
}

func extractJSONErrorSummary(payload []byte, contentType string) (string, bool) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" || !looksLikeJSONContent(contentType, trimmed) {
		return "", false
	}

	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", false
	}

	for _, key := range []string{"error", "message", "detail"} {
		value, ok := body[key].(string)
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value != "" {
			return truncateResponseText(value, 200), true
		}
	}
	return "", false
}

func looksLikeJSONContent(contentType, body string) bool {
	if isJSONContentType(contentType) {
		return true
	}
	if body == "" {
		return false
	}
	return strings.HasPrefix(body, "{") || strings.HasPrefix(body, "[")
}

func isJSONContentType(contentType string) bool {
	value := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if value == "" {
		return false
	}
	return value == "application/json" || value == "text/json" || strings.HasSuffix(value, "+json")
}

func isLikelyHTMLResponse(contentType, body string) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml") {
		return true
	}
	lowerBody := strings.ToLower(strings.TrimSpace(body))
	return strings.HasPrefix(lowerBody, "<!doctype html") || strings.HasPrefix(lowerBody, "<html")
}

func truncateResponseText(value string, max int) string {
	collapsed := strings.Join(strings.Fields(value), " ")
	if len(collapsed) <= max {
		return collapsed
	}
	if max <= 3 {
		return collapsed[:runeBoundary(collapsed, max)]
	}
	return collapsed[:runeBoundary(collapsed, max-3)] + "..."
}

// runeBoundary steps n back to the start of the rune it falls in.
func runeBoundary(s string, n int) int {
	for n > 0 && n < len(s) && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}

func normalizeAPIBaseURL(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}

	parsed, err := url.Parse(value)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		trimmed := strings.TrimRight(value, "/")
		return strings.TrimSuffix(trimmed, "/api")
	}

	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.Path = strings.TrimSuffix(parsed.Path, "/api")
	parsed.RawPath = ""
	parsed.RawQuery = ""
	parsed.Fragment = ""

	return strings.TrimRight(parsed.String(), "/")
}
