package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/sayimcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOracle struct {
	barcodeCalls []sayimcli.BarcodeSearchRequest
	manualCalls  []sayimcli.ManualSearchRequest
	barcodeResp  sayimcli.BarcodeSearchResponse
	manualResp   sayimcli.ManualSearchResponse
	err          error
}

func (f *fakeOracle) SearchBarcode(_ context.Context, input sayimcli.BarcodeSearchRequest) (sayimcli.BarcodeSearchResponse, error) {
	f.barcodeCalls = append(f.barcodeCalls, input)
	return f.barcodeResp, f.err
}

func (f *fakeOracle) SearchManual(_ context.Context, input sayimcli.ManualSearchRequest) (sayimcli.ManualSearchResponse, error) {
	f.manualCalls = append(f.manualCalls, input)
	return f.manualResp, f.err
}

func strPtr(s string) *string { return &s }

func TestByBarcodeDirect(t *testing.T) {
	oracle := &fakeOracle{barcodeResp: sayimcli.BarcodeSearchResponse{
		Found:            true,
		Status:           "direkt",
		Confidence:       100,
		Product:          &models.Product{ID: "recX", SKU: "OF-RB-2140"},
		SupplierRecordID: strPtr("recSUP"),
	}}
	out, err := New(oracle).ByBarcode(context.Background(), "", " 8056597412261 ", models.SearchContext{})
	require.NoError(t, err)
	require.Equal(t, KindDirect, out.Kind)
	require.NotNil(t, out.Direct)
	assert.Equal(t, "recX", out.Direct.Product.ID)
	assert.Equal(t, float64(100), out.Direct.Confidence)
	require.NotNil(t, out.Direct.SupplierRecordID)
	assert.Equal(t, "recSUP", *out.Direct.SupplierRecordID)
	require.Len(t, oracle.barcodeCalls, 1)
	assert.Equal(t, "8056597412261", oracle.barcodeCalls[0].Barcode)
}

func TestByBarcodePassesContext(t *testing.T) {
	oracle := &fakeOracle{barcodeResp: sayimcli.BarcodeSearchResponse{Found: false}}
	category := models.CategorySunglasses
	filter := models.SearchContext{Brand: strPtr("recRB"), Category: &category}

	out, err := New(oracle).ByBarcode(context.Background(), models.CategoryLens, "123", filter)
	require.NoError(t, err)
	assert.Equal(t, KindNotFound, out.Kind)
	assert.Equal(t, "123", out.NotFound.Query)

	require.Len(t, oracle.barcodeCalls, 1)
	call := oracle.barcodeCalls[0]
	require.NotNil(t, call.ContextBrand)
	assert.Equal(t, "recRB", *call.ContextBrand)
	require.NotNil(t, call.ContextCategory)
	assert.Equal(t, models.CategorySunglasses, *call.ContextCategory)
	assert.Equal(t, models.CategoryLens, call.Category)
}

func TestByBarcodeAmbiguousKeepsOrderAndOwnSupplierIDs(t *testing.T) {
	oracle := &fakeOracle{barcodeResp: sayimcli.BarcodeSearchResponse{
		Found:            true,
		Status:           "belirsiz",
		SupplierRecordID: strPtr("recRESPONSE"),
		Candidates: []models.Candidate{
			{SKUID: "recA", Product: models.Product{ID: "recA"}, SupplierRecordID: strPtr("t1")},
			{SKUID: "recB", Product: models.Product{ID: "recB"}},
		},
	}}
	out, err := New(oracle).ByBarcode(context.Background(), "", "8680000000001", models.SearchContext{})
	require.NoError(t, err)
	require.Equal(t, KindAmbiguous, out.Kind)
	require.Len(t, out.Ambiguous.Candidates, 2)
	assert.Equal(t, "recA", out.Ambiguous.Candidates[0].SKUID)
	assert.Equal(t, "t1", *out.Ambiguous.Candidates[0].SupplierRecordID)
	assert.Equal(t, "recB", out.Ambiguous.Candidates[1].SKUID)
	assert.Nil(t, out.Ambiguous.Candidates[1].SupplierRecordID)
}

func TestByBarcodeAmbiguousWithoutCandidatesDegrades(t *testing.T) {
	withProduct := &fakeOracle{barcodeResp: sayimcli.BarcodeSearchResponse{
		Found:      true,
		Status:     "belirsiz",
		Confidence: 60,
		Product:    &models.Product{ID: "recOnly"},
	}}
	out, err := New(withProduct).ByBarcode(context.Background(), "", "1", models.SearchContext{})
	require.NoError(t, err)
	require.Equal(t, KindDirect, out.Kind)
	assert.Equal(t, "recOnly", out.Direct.Product.ID)
	assert.Equal(t, float64(60), out.Direct.Confidence)

	bare := &fakeOracle{barcodeResp: sayimcli.BarcodeSearchResponse{Found: true, Status: "belirsiz"}}
	out, err = New(bare).ByBarcode(context.Background(), "", "2", models.SearchContext{})
	require.NoError(t, err)
	assert.Equal(t, KindNotFound, out.Kind)
	assert.Equal(t, "2", out.NotFound.Query)
}

func TestByBarcodeRejectsMalformedResponses(t *testing.T) {
	tests := []sayimcli.BarcodeSearchResponse{
		{Found: true, Status: "direkt"},
		{Found: true, Status: "yarim"},
	}
	for _, resp := range tests {
		_, err := New(&fakeOracle{barcodeResp: resp}).ByBarcode(context.Background(), "", "1", models.SearchContext{})
		var decodeErr *sayimcli.ResponseDecodeError
		require.True(t, errors.As(err, &decodeErr), resp.Status)
	}
}

func TestByBarcodeEmptyMakesNoCall(t *testing.T) {
	oracle := &fakeOracle{}
	_, err := New(oracle).ByBarcode(context.Background(), "", "   ", models.SearchContext{})
	require.ErrorIs(t, err, ErrEmptyBarcode)
	assert.Empty(t, oracle.barcodeCalls)
}

func TestByBarcodePropagatesTransportError(t *testing.T) {
	transportErr := &sayimcli.TransportError{Op: "POST /api/search-barcode", Err: errors.New("connection refused")}
	oracle := &fakeOracle{err: transportErr}
	_, err := New(oracle).ByBarcode(context.Background(), "", "1", models.SearchContext{})
	require.Error(t, err)
	assert.True(t, sayimcli.IsTransport(err))
}

func TestByTermShortTermMakesNoCall(t *testing.T) {
	oracle := &fakeOracle{}
	for _, term := range []string{"", "r", " r ", "ş"} {
		_, err := New(oracle).ByTerm(context.Background(), "", term, models.SearchContext{})
		require.ErrorIs(t, err, ErrTermTooShort, term)
	}
	assert.Empty(t, oracle.manualCalls)
}

func TestByTermSingleMatchIsDirectAtManualConfidence(t *testing.T) {
	oracle := &fakeOracle{manualResp: sayimcli.ManualSearchResponse{
		Found:    true,
		Count:    1,
		Products: []models.Product{{ID: "recRA", Brand: "Ray-Ban"}},
	}}
	out, err := New(oracle).ByTerm(context.Background(), "", "ra", models.SearchContext{})
	require.NoError(t, err)
	require.Equal(t, KindDirect, out.Kind)
	assert.Equal(t, float64(ManualConfidence), out.Direct.Confidence)
	assert.Nil(t, out.Direct.SupplierRecordID)
	require.Len(t, oracle.manualCalls, 1)
	assert.Equal(t, "ra", oracle.manualCalls[0].Term)
}

func TestByTermMultipleMatchesAreAmbiguous(t *testing.T) {
	oracle := &fakeOracle{manualResp: sayimcli.ManualSearchResponse{
		Found:    true,
		Count:    2,
		Products: []models.Product{{ID: "recA"}, {ID: "recB"}},
	}}
	out, err := New(oracle).ByTerm(context.Background(), "", "2140", models.SearchContext{})
	require.NoError(t, err)
	require.Equal(t, KindAmbiguous, out.Kind)
	require.Len(t, out.Ambiguous.Candidates, 2)
	for i, id := range []string{"recA", "recB"} {
		assert.Equal(t, id, out.Ambiguous.Candidates[i].SKUID)
		assert.Nil(t, out.Ambiguous.Candidates[i].SupplierRecordID)
	}
}

func TestByTermNoMatches(t *testing.T) {
	oracle := &fakeOracle{manualResp: sayimcli.ManualSearchResponse{Found: false}}
	out, err := New(oracle).ByTerm(context.Background(), "", "zz", models.SearchContext{})
	require.NoError(t, err)
	assert.Equal(t, KindNotFound, out.Kind)
	assert.Equal(t, "zz", out.NotFound.Query)
}

func TestValidateTermCountsRunes(t *testing.T) {
	term, err := ValidateTerm(" şğ ")
	require.NoError(t, err)
	assert.Equal(t, "şğ", term)
}

func TestAmbiguousOutcomePanicsOnEmpty(t *testing.T) {
	assert.Panics(t, func() { AmbiguousOutcome(nil) })
}
