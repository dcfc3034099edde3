// Package session holds the per-station counting state. A State is owned by
// exactly one workflow coordinator; the only other writer is the context
// editing action, which the coordinator also routes.
package session

import (
	"strings"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/resolve"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/sayimcli"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/selector"
)

type QueryKind string

const (
	QueryBarcode QueryKind = "barcode"
	QueryTerm    QueryKind = "term"
)

// Query is the input of the lookup currently on screen. Filter is the
// context the lookup ran with; later context edits do not change it.
type Query struct {
	Kind   QueryKind            `json:"kind"`
	Text   string               `json:"text"`
	Filter models.SearchContext `json:"context"`
}

// DirectView is the resolution confirmed by a Direct confirm or re-submitted
// by repeat. Status is fixed when the view is entered.
type DirectView struct {
	Product          models.Product     `json:"product"`
	Confidence       float64            `json:"confidence"`
	SupplierRecordID *string            `json:"supplier_record_id,omitempty"`
	Status           models.MatchStatus `json:"match_status"`
}

// Saved is the last committed resolution, kept for the repeat shortcut.
type Saved struct {
	Query Query      `json:"query"`
	View  DirectView `json:"view"`
}

// Attachments are the optional extras sent with a submission.
type Attachments struct {
	Notes string          `json:"notes,omitempty"`
	UTSQR string          `json:"uts_qr,omitempty"`
	Photo *sayimcli.Photo `json:"-"`
}

// HasEvidence reports whether a not-found skip must be saved instead of
// discarded.
func (a Attachments) HasEvidence() bool {
	return strings.TrimSpace(a.Notes) != "" || (a.Photo != nil && len(a.Photo.Data) > 0)
}

// UnlistedDraft is the not-in-catalog form. BridgeWidth stays text until
// submission so the form can report it as invalid.
type UnlistedDraft struct {
	Category    models.Category `json:"category" validate:"required,oneof=OF GN LN"`
	BrandID     string          `json:"brand_id" validate:"required"`
	ModelCode   string          `json:"model_code" validate:"required"`
	ColorCode   string          `json:"color_code" validate:"required"`
	BridgeWidth string          `json:"bridge_width" validate:"required,integer"`
	ModelName   string          `json:"model_name,omitempty"`
	ColorName   string          `json:"color_name,omitempty"`
}

type State struct {
	Operator string
	Category models.Category
	Context  models.SearchContext

	Query       *Query
	Outcome     *resolve.Outcome
	Direct      *DirectView
	Selector    selector.Selector
	Attachments Attachments
	Unlisted    *UnlistedDraft

	// LastSaved survives resets so repeat can re-submit it.
	LastSaved *Saved

	generation uint64
}

func New(category models.Category) *State {
	if !category.Valid() {
		category = models.DefaultCategory
	}
	return &State{Category: category}
}

// ResetTransient clears everything tied to the item on screen. Operator,
// category, context and LastSaved are kept. Calling it twice is the same as
// calling it once.
func (s *State) ResetTransient() {
	s.Query = nil
	s.Outcome = nil
	s.Direct = nil
	s.Selector.Clear()
	s.Attachments = Attachments{}
	s.Unlisted = nil
}

// NextGeneration invalidates every outstanding lookup and returns the token
// for the next one.
func (s *State) NextGeneration() uint64 {
	s.generation++
	return s.generation
}

// Current reports whether token still belongs to the latest lookup.
func (s *State) Current(token uint64) bool {
	return s.generation == token
}

// ApplyOutcome records a lookup result for q. Direct outcomes get their
// match status fixed here: term queries confirm as Manuel.
func (s *State) ApplyOutcome(q Query, outcome resolve.Outcome) {
	s.ResetTransient()
	s.Query = &q
	s.Outcome = &outcome
	switch outcome.Kind {
	case resolve.KindDirect:
		status := models.MatchDirect
		if q.Kind == QueryTerm {
			status = models.MatchManual
		}
		s.Direct = &DirectView{
			Product:          outcome.Direct.Product,
			Confidence:       outcome.Direct.Confidence,
			SupplierRecordID: outcome.Direct.SupplierRecordID,
			Status:           status,
		}
	case resolve.KindAmbiguous:
		s.Selector.Load(outcome.Ambiguous.Candidates)
	}
}

// SearchContext returns a copy of the active filter.
func (s *State) SearchContext() models.SearchContext {
	out := models.SearchContext{}
	if s.Context.Brand != nil {
		brand := *s.Context.Brand
		out.Brand = &brand
	}
	if s.Context.Category != nil {
		category := *s.Context.Category
		out.Category = &category
	}
	return out
}

// Barcode returns the query text when the query was a barcode.
func (s *State) Barcode() (string, bool) {
	if s.Query == nil || s.Query.Kind != QueryBarcode {
		return "", false
	}
	return s.Query.Text, true
}
