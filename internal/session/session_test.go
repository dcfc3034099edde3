package session

import (
	"testing"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/resolve"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/sayimcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsCategory(t *testing.T) {
	assert.Equal(t, models.CategoryFrame, New("").Category)
	assert.Equal(t, models.CategoryLens, New(models.CategoryLens).Category)
}

func TestApplyOutcomeDirectStatusFollowsQueryKind(t *testing.T) {
	direct := resolve.DirectOutcome(resolve.Direct{Product: models.Product{ID: "recX"}, Confidence: 90})

	s := New(models.CategoryFrame)
	s.ApplyOutcome(Query{Kind: QueryBarcode, Text: "123"}, direct)
	require.NotNil(t, s.Direct)
	assert.Equal(t, models.MatchDirect, s.Direct.Status)

	s.ApplyOutcome(Query{Kind: QueryTerm, Text: "ra"}, direct)
	require.NotNil(t, s.Direct)
	assert.Equal(t, models.MatchManual, s.Direct.Status)
	assert.Equal(t, float64(90), s.Direct.Confidence)
	_, isBarcode := s.Barcode()
	assert.False(t, isBarcode)
}

func TestApplyOutcomeAmbiguousLoadsSelector(t *testing.T) {
	s := New(models.CategoryFrame)
	s.ApplyOutcome(Query{Kind: QueryBarcode, Text: "123"}, resolve.AmbiguousOutcome([]models.Candidate{
		{SKUID: "recA"}, {SKUID: "recB"},
	}))
	assert.Nil(t, s.Direct)
	current, ok := s.Selector.Current()
	require.True(t, ok)
	assert.Equal(t, "recA", current.SKUID)
}

func TestResetTransientIsIdempotent(t *testing.T) {
	brand := "recRB"
	s := New(models.CategorySunglasses)
	s.Operator = "Ekip 1"
	s.Context.Brand = &brand
	s.LastSaved = &Saved{
		Query: Query{Kind: QueryBarcode, Text: "999"},
		View:  DirectView{Product: models.Product{ID: "recLast"}, Status: models.MatchDirect},
	}
	s.ApplyOutcome(Query{Kind: QueryBarcode, Text: "123"}, resolve.AmbiguousOutcome([]models.Candidate{{SKUID: "recA"}}))
	s.Attachments = Attachments{Notes: "raf 3", Photo: &sayimcli.Photo{Data: []byte{1}}}
	s.Unlisted = &UnlistedDraft{ModelCode: "2140"}

	s.ResetTransient()
	once := *s
	s.ResetTransient()

	assert.Equal(t, once, *s)
	assert.Nil(t, s.Query)
	assert.Nil(t, s.Outcome)
	assert.Nil(t, s.Unlisted)
	assert.Equal(t, 0, s.Selector.Len())
	assert.False(t, s.Attachments.HasEvidence())
	assert.Equal(t, "Ekip 1", s.Operator)
	assert.Equal(t, models.CategorySunglasses, s.Category)
	require.NotNil(t, s.Context.Brand)
	require.NotNil(t, s.LastSaved)
	assert.Equal(t, "recLast", s.LastSaved.View.Product.ID)
}

func TestGenerationInvalidatesOlderTokens(t *testing.T) {
	s := New(models.CategoryFrame)
	first := s.NextGeneration()
	assert.True(t, s.Current(first))
	second := s.NextGeneration()
	assert.False(t, s.Current(first))
	assert.True(t, s.Current(second))
}

func TestAttachmentsHasEvidence(t *testing.T) {
	assert.False(t, Attachments{}.HasEvidence())
	assert.False(t, Attachments{Notes: "  ", UTSQR: "UTS"}.HasEvidence())
	assert.True(t, Attachments{Notes: "kutu hasarlı"}.HasEvidence())
	assert.True(t, Attachments{Photo: &sayimcli.Photo{Data: []byte{1}}}.HasEvidence())
}

func TestSearchContextReturnsCopy(t *testing.T) {
	brand := "recRB"
	s := New(models.CategoryFrame)
	s.Context.Brand = &brand

	filter := s.SearchContext()
	*filter.Brand = "changed"
	assert.Equal(t, "recRB", *s.Context.Brand)
}
