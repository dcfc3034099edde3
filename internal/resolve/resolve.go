// Package resolve turns barcode and free-text lookups into a single outcome
// shape: one direct match, a ranked candidate list, or nothing.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/sayimcli"
)

// ManualConfidence is reported for a single free-text hit. Free-text search
// has no graded score.
const ManualConfidence = 90

// MinTermLength is the shortest free-text term worth sending upstream.
const MinTermLength = 2

// ErrTermTooShort is returned by ValidateTerm.
var ErrTermTooShort = fmt.Errorf("search term must be at least %d characters", MinTermLength)

// ErrEmptyBarcode is returned for blank barcode input.
var ErrEmptyBarcode = errors.New("barcode is required")

// Kind tags the active Outcome variant.
type Kind string

const (
	KindDirect    Kind = "direct"
	KindAmbiguous Kind = "ambiguous"
	KindNotFound  Kind = "not_found"
)

// Outcome is the result of one lookup. Exactly one of Direct, Ambiguous and
// NotFound is set, matching Kind.
type Outcome struct {
	Kind      Kind       `json:"kind"`
	Direct    *Direct    `json:"direct,omitempty"`
	Ambiguous *Ambiguous `json:"ambiguous,omitempty"`
	NotFound  *NotFound  `json:"not_found,omitempty"`
}

type Direct struct {
	Product          models.Product `json:"product"`
	Confidence       float64        `json:"confidence"`
	SupplierRecordID *string        `json:"supplier_record_id,omitempty"`
}

// Ambiguous always holds at least one candidate, in oracle rank order.
type Ambiguous struct {
	Candidates []models.Candidate `json:"candidates"`
}

type NotFound struct {
	Query string `json:"query"`
}

func DirectOutcome(d Direct) Outcome {
	return Outcome{Kind: KindDirect, Direct: &d}
}

// AmbiguousOutcome builds an ambiguous outcome. It panics on an empty list;
// callers degrade empty lists before reaching here.
func AmbiguousOutcome(candidates []models.Candidate) Outcome {
	if len(candidates) == 0 {
		panic("resolve: ambiguous outcome without candidates")
	}
	copied := append([]models.Candidate(nil), candidates...)
	return Outcome{Kind: KindAmbiguous, Ambiguous: &Ambiguous{Candidates: copied}}
}

func NotFoundOutcome(query string) Outcome {
	return Outcome{Kind: KindNotFound, NotFound: &NotFound{Query: query}}
}

// Oracle is the upstream matching service.
type Oracle interface {
	SearchBarcode(ctx context.Context, input sayimcli.BarcodeSearchRequest) (sayimcli.BarcodeSearchResponse, error)
	SearchManual(ctx context.Context, input sayimcli.ManualSearchRequest) (sayimcli.ManualSearchResponse, error)
}

// Resolver issues lookups and normalizes the responses. It holds no session
// state.
type Resolver struct {
	Oracle Oracle
}

func New(oracle Oracle) *Resolver {
	return &Resolver{Oracle: oracle}
}

// ValidateTerm trims term and checks its length in characters.
func ValidateTerm(term string) (string, error) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < MinTermLength {
		return "", ErrTermTooShort
	}
	return term, nil
}

// ValidateBarcode trims code and rejects blank input.
func ValidateBarcode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", ErrEmptyBarcode
	}
	return code, nil
}

// ByBarcode looks code up in the workspace catalog. An empty workspace uses
// the oracle default.
func (r *Resolver) ByBarcode(ctx context.Context, workspace models.Category, code string, filter models.SearchContext) (Outcome, error) {
	code, err := ValidateBarcode(code)
	if err != nil {
		return Outcome{}, err
	}
	if r == nil || r.Oracle == nil {
		return Outcome{}, errors.New("resolver is not configured")
	}
	resp, err := r.Oracle.SearchBarcode(ctx, sayimcli.BarcodeSearchRequest{
		Barcode:         code,
		ContextBrand:    filter.Brand,
		ContextCategory: filter.Category,
		Category:        workspace,
	})
	if err != nil {
		return Outcome{}, err
	}
	return normalizeBarcode(code, resp)
}

func (r *Resolver) ByTerm(ctx context.Context, workspace models.Category, term string, filter models.SearchContext) (Outcome, error) {
	term, err := ValidateTerm(term)
	if err != nil {
		return Outcome{}, err
	}
	if r == nil || r.Oracle == nil {
		return Outcome{}, errors.New("resolver is not configured")
	}
	resp, err := r.Oracle.SearchManual(ctx, sayimcli.ManualSearchRequest{
		Term:            term,
		ContextBrand:    filter.Brand,
		ContextCategory: filter.Category,
		Category:        workspace,
	})
	if err != nil {
		return Outcome{}, err
	}
	return normalizeManual(term, resp), nil
}

func normalizeBarcode(code string, resp sayimcli.BarcodeSearchResponse) (Outcome, error) {
	if !resp.Found {
		return NotFoundOutcome(code), nil
	}
	switch strings.ToLower(strings.TrimSpace(resp.Status)) {
	case "direkt":
		if resp.Product == nil {
			return Outcome{}, &sayimcli.ResponseDecodeError{StatusCode: 200, Detail: "direct match without product"}
		}
		return DirectOutcome(Direct{
			Product:          *resp.Product,
			Confidence:       resp.Confidence,
			SupplierRecordID: cleanID(resp.SupplierRecordID),
		}), nil
	case "belirsiz":
		candidates := make([]models.Candidate, 0, len(resp.Candidates))
		for _, candidate := range resp.Candidates {
			if strings.TrimSpace(candidate.SKUID) == "" {
				candidate.SKUID = candidate.Product.ID
			}
			if strings.TrimSpace(candidate.SKUID) == "" {
				continue
			}
			candidate.SupplierRecordID = cleanID(candidate.SupplierRecordID)
			candidates = append(candidates, candidate)
		}
		if len(candidates) > 0 {
			return AmbiguousOutcome(candidates), nil
		}
		if resp.Product != nil {
			return DirectOutcome(Direct{
				Product:          *resp.Product,
				Confidence:       resp.Confidence,
				SupplierRecordID: cleanID(resp.SupplierRecordID),
			}), nil
		}
		return NotFoundOutcome(code), nil
	case "bulunamadi", "bulunamadı":
		return NotFoundOutcome(code), nil
	default:
		return Outcome{}, &sayimcli.ResponseDecodeError{StatusCode: 200, Detail: fmt.Sprintf("unknown match status %q", resp.Status)}
	}
}

func normalizeManual(term string, resp sayimcli.ManualSearchResponse) Outcome {
	products := resp.Products
	if !resp.Found || len(products) == 0 {
		return NotFoundOutcome(term)
	}
	if len(products) == 1 {
		return DirectOutcome(Direct{Product: products[0], Confidence: ManualConfidence})
	}
	candidates := make([]models.Candidate, 0, len(products))
	for _, product := range products {
		candidates = append(candidates, models.Candidate{SKUID: product.ID, Product: product})
	}
	return AmbiguousOutcome(candidates)
}

func cleanID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
