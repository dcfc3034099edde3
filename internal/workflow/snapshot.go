package workflow

import (
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/resolve"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/session"
)

// Snapshot is a read-only copy of a session for presentation.
type Snapshot struct {
	SessionID    string                 `json:"session_id"`
	Stage        Stage                  `json:"stage"`
	Busy         bool                   `json:"busy"`
	Operator     string                 `json:"operator,omitempty"`
	Category     models.Category        `json:"category"`
	CategoryName string                 `json:"category_name"`
	Context      models.SearchContext   `json:"context"`
	Query        *session.Query         `json:"query,omitempty"`
	Outcome      *resolve.Outcome       `json:"outcome,omitempty"`
	Direct       *session.DirectView    `json:"direct,omitempty"`
	Candidates   []models.Candidate     `json:"candidates,omitempty"`
	Selected     int                    `json:"selected"`
	Attachments  AttachmentsView        `json:"attachments"`
	Unlisted     *session.UnlistedDraft `json:"unlisted,omitempty"`
	CanRepeat    bool                   `json:"can_repeat"`
	LastResult   *Result                `json:"last_result,omitempty"`
}

// AttachmentsView omits photo bytes.
type AttachmentsView struct {
	Notes     string `json:"notes,omitempty"`
	UTSQR     string `json:"uts_qr,omitempty"`
	HasPhoto  bool   `json:"has_photo"`
	PhotoName string `json:"photo_name,omitempty"`
}

// Selection returns the selected candidate on an ambiguous screen.
func (s Snapshot) Selection() (models.Candidate, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Candidates) {
		return models.Candidate{}, false
	}
	return s.Candidates[s.Selected], true
}

func (c *Coordinator) snapshotLocked() Snapshot {
	st := c.state
	snap := Snapshot{
		SessionID:    c.id,
		Stage:        c.stage,
		Busy:         c.inflight != 0,
		Operator:     st.Operator,
		Category:     st.Category,
		CategoryName: st.Category.DisplayName(),
		Context:      st.SearchContext(),
		Candidates:   st.Selector.Candidates(),
		Selected:     st.Selector.Index(),
		Attachments: AttachmentsView{
			Notes: st.Attachments.Notes,
			UTSQR: st.Attachments.UTSQR,
		},
		CanRepeat: st.LastSaved != nil,
	}
	if len(snap.Candidates) == 0 {
		snap.Candidates = nil
	}
	if st.Query != nil {
		query := *st.Query
		snap.Query = &query
	}
	if st.Outcome != nil {
		outcome := *st.Outcome
		snap.Outcome = &outcome
	}
	if st.Direct != nil {
		direct := *st.Direct
		snap.Direct = &direct
	}
	if st.Attachments.Photo != nil {
		snap.Attachments.HasPhoto = true
		snap.Attachments.PhotoName = st.Attachments.Photo.Filename
	}
	if st.Unlisted != nil {
		draft := *st.Unlisted
		snap.Unlisted = &draft
	}
	if c.lastResult != nil {
		result := *c.lastResult
		snap.LastResult = &result
	}
	return snap
}
