// Package workflow drives one counting session through lookup, review and
// submission.
//
// A Coordinator owns its session.State. The lock is released only while an
// upstream call is outstanding; an in-flight token rejects a second lookup or
// submission with ErrBusy and a generation check discards lookup responses
// that arrive after a reset.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/journal"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/resolve"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/sayimcli"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/session"
)

type Stage string

const (
	StageIdle                Stage = "idle"
	StageSearching           Stage = "searching"
	StageShowingDirect       Stage = "showing_direct"
	StageShowingAmbiguous    Stage = "showing_ambiguous"
	StageShowingNotFound     Stage = "showing_not_found"
	StageSubmitting          Stage = "submitting"
	StageShowingUnlistedForm Stage = "showing_unlisted_form"
)

// NotFoundPolicy picks what the screen does after a not-found record is
// saved. One deployment uses one policy.
type NotFoundPolicy string

const (
	NotFoundReset NotFoundPolicy = "reset"
	NotFoundKeep  NotFoundPolicy = "keep"
)

func ParseNotFoundPolicy(raw string) (NotFoundPolicy, error) {
	switch NotFoundPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", NotFoundReset:
		return NotFoundReset, nil
	case NotFoundKeep:
		return NotFoundKeep, nil
	default:
		return "", fmt.Errorf("unknown not-found policy %q", raw)
	}
}

// repeatConfidence is shown when a repeated item had no graded confidence.
const repeatConfidence = 100

// defaultPostCommitTimeout bounds the photo upload and journal write that
// follow a committed submission.
const defaultPostCommitTimeout = 30 * time.Second

// manualBarcodePrefix marks saves that never had a scanned barcode.
const manualBarcodePrefix = "MANUEL-"

// Upstream is the counting API the coordinator talks to.
type Upstream interface {
	resolve.Oracle
	SaveCount(ctx context.Context, input sayimcli.SaveCountRequest) (sayimcli.SaveCountResponse, error)
	SaveUnlistedProduct(ctx context.Context, input sayimcli.SaveUnlistedProductRequest) (sayimcli.SaveUnlistedProductResponse, error)
	UploadPhoto(ctx context.Context, recordID string, photo sayimcli.Photo) error
}

// Refresher is poked after every committed submission.
type Refresher interface {
	Trigger()
}

// Journal receives committed counts and post-commit photo failures.
type Journal interface {
	RecordCount(ctx context.Context, record journal.CountRecord) error
	RecordPhotoFailure(ctx context.Context, failure journal.PhotoFailure) error
}

type Options struct {
	SessionID          string
	Category           models.Category
	CategorySelectable bool
	Operator           string
	NotFoundAfterSave  NotFoundPolicy
	Refresher          Refresher
	Journal            Journal
	Notifier           Notifier
	Logger             *zap.Logger
	Now                func() time.Time
	// PostCommitTimeout bounds the work after a committed submission.
	PostCommitTimeout time.Duration
}

// Result describes the last committed submission.
type Result struct {
	RecordID    string             `json:"record_id"`
	MatchStatus models.MatchStatus `json:"match_status"`
	SKU         string             `json:"sku,omitempty"`
	Unlisted    bool               `json:"unlisted,omitempty"`
}

type Coordinator struct {
	mu sync.Mutex

	id                 string
	upstream           Upstream
	resolver           *resolve.Resolver
	refresher          Refresher
	journal            Journal
	notifier           Notifier
	logger             *zap.Logger
	now                func() time.Time
	notFoundPolicy     NotFoundPolicy
	categorySelectable bool
	postCommitTimeout  time.Duration

	state      *session.State
	stage      Stage
	resume     Stage
	inflight   uint64
	lastResult *Result
}

func NewCoordinator(upstream Upstream, opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	policy := opts.NotFoundAfterSave
	if policy != NotFoundKeep {
		policy = NotFoundReset
	}
	postCommitTimeout := opts.PostCommitTimeout
	if postCommitTimeout <= 0 {
		postCommitTimeout = defaultPostCommitTimeout
	}
	state := session.New(opts.Category)
	state.Operator = strings.TrimSpace(opts.Operator)

	return &Coordinator{
		id:                 opts.SessionID,
		upstream:           upstream,
		resolver:           resolve.New(upstream),
		refresher:          opts.Refresher,
		journal:            opts.Journal,
		notifier:           opts.Notifier,
		logger:             logger.With(zap.String("session_id", opts.SessionID)),
		now:                now,
		notFoundPolicy:     policy,
		categorySelectable: opts.CategorySelectable,
		postCommitTimeout:  postCommitTimeout,
		state:              state,
		stage:              StageIdle,
	}
}

func (c *Coordinator) ID() string {
	return c.id
}

// Busy reports whether a lookup or submission is outstanding.
func (c *Coordinator) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight != 0
}

// SetNotifier replaces the event sink.
func (c *Coordinator) SetNotifier(notifier Notifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifier = notifier
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// LookupBarcode resolves a scanned or typed barcode.
func (c *Coordinator) LookupBarcode(ctx context.Context, code string) (Snapshot, error) {
	code, err := resolve.ValidateBarcode(code)
	if err != nil {
		return c.reject(&ValidationError{Fields: []string{"barcode"}, Message: err.Error()})
	}
	return c.lookup(ctx, session.Query{Kind: session.QueryBarcode, Text: code})
}

// LookupTerm resolves a free-text search. Terms shorter than
// resolve.MinTermLength never reach the upstream.
func (c *Coordinator) LookupTerm(ctx context.Context, term string) (Snapshot, error) {
	term, err := resolve.ValidateTerm(term)
	if err != nil {
		return c.reject(&ValidationError{Fields: []string{"term"}, Message: err.Error()})
	}
	return c.lookup(ctx, session.Query{Kind: session.QueryTerm, Text: term})
}

func (c *Coordinator) lookup(ctx context.Context, query session.Query) (Snapshot, error) {
	c.mu.Lock()
	if c.inflight != 0 {
		defer c.mu.Unlock()
		return c.snapshotLocked(), ErrBusy
	}
	token := c.state.NextGeneration()
	c.inflight = token
	previous := c.stage
	workspace := c.state.Category
	query.Filter = c.state.SearchContext()
	c.stage = StageSearching
	c.lastResult = nil
	c.emitStateLocked()
	c.mu.Unlock()

	var (
		outcome resolve.Outcome
		err     error
	)
	if query.Kind == session.QueryBarcode {
		outcome, err = c.resolver.ByBarcode(ctx, workspace, query.Text, query.Filter)
	} else {
		outcome, err = c.resolver.ByTerm(ctx, workspace, query.Text, query.Filter)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Current(token) {
		c.logger.Debug("discarding stale lookup", zap.String("query", query.Text))
		return c.snapshotLocked(), ErrStale
	}
	c.inflight = 0

	if err != nil {
		c.logger.Info("lookup failed",
			zap.String("kind", string(query.Kind)),
			zap.String("query", query.Text),
			zap.Error(err),
		)
		if query.Kind == session.QueryBarcode {
			c.state.ApplyOutcome(query, resolve.NotFoundOutcome(query.Text))
			c.stage = StageShowingNotFound
		} else {
			c.stage = previous
		}
		c.emitLocked(Event{Type: EventError, Message: err.Error()})
		c.emitStateLocked()
		return c.snapshotLocked(), err
	}

	c.state.ApplyOutcome(query, outcome)
	c.stage = stageForOutcome(outcome.Kind)
	c.logger.Debug("lookup resolved",
		zap.String("kind", string(query.Kind)),
		zap.String("outcome", string(outcome.Kind)),
	)
	c.emitStateLocked()
	return c.snapshotLocked(), nil
}

func stageForOutcome(kind resolve.Kind) Stage {
	switch kind {
	case resolve.KindDirect:
		return StageShowingDirect
	case resolve.KindAmbiguous:
		return StageShowingAmbiguous
	default:
		return StageShowingNotFound
	}
}

// Select moves the candidate selection on an ambiguous screen.
func (c *Coordinator) Select(index int) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireLocked("select", StageShowingAmbiguous); err != nil {
		return c.failLocked(err)
	}
	if err := c.state.Selector.Select(index); err != nil {
		return c.failLocked(&ValidationError{Fields: []string{"candidate"}, Message: err.Error()})
	}
	c.emitStateLocked()
	return c.snapshotLocked(), nil
}

// AttachmentUpdate edits the optional submission extras. Nil fields are left
// alone.
type AttachmentUpdate struct {
	Notes      *string
	UTSQR      *string
	Photo      *sayimcli.Photo
	ClearPhoto bool
}

func (c *Coordinator) SetAttachments(update AttachmentUpdate) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireLocked("attachments", StageShowingDirect, StageShowingAmbiguous, StageShowingNotFound, StageShowingUnlistedForm); err != nil {
		return c.failLocked(err)
	}
	if update.Notes != nil {
		c.state.Attachments.Notes = strings.TrimSpace(*update.Notes)
	}
	if update.UTSQR != nil {
		c.state.Attachments.UTSQR = strings.TrimSpace(*update.UTSQR)
	}
	if update.ClearPhoto {
		c.state.Attachments.Photo = nil
	}
	if update.Photo != nil {
		if len(update.Photo.Data) == 0 {
			return c.failLocked(&ValidationError{Fields: []string{"photo"}, Message: "photo is empty"})
		}
		photo := *update.Photo
		c.state.Attachments.Photo = &photo
	}
	c.emitStateLocked()
	return c.snapshotLocked(), nil
}

// Confirm submits the resolution on a direct or ambiguous screen.
func (c *Coordinator) Confirm(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	if err := c.requireLocked("confirm", StageShowingDirect, StageShowingAmbiguous); err != nil {
		defer c.mu.Unlock()
		return c.failLocked(err)
	}

	var pending pendingSubmission
	switch c.stage {
	case StageShowingDirect:
		view := *c.state.Direct
		req := c.countRequestLocked(view.Status)
		skuID := view.Product.ID
		req.SKUID = &skuID
		req.SupplierRecordID = view.SupplierRecordID
		pending = pendingSubmission{
			count: &req,
			sku:   view.Product.SKU,
			saved: &session.Saved{Query: *c.state.Query, View: view},
		}
	case StageShowingAmbiguous:
		candidate, ok := c.state.Selector.Current()
		if !ok {
			defer c.mu.Unlock()
			return c.failLocked(&ValidationError{Fields: []string{"candidate"}, Message: "no candidate selected"})
		}
		req := c.countRequestLocked(models.MatchAmbiguous)
		skuID := candidate.SKUID
		req.SKUID = &skuID
		req.SupplierRecordID = candidate.SupplierRecordID
		pending = pendingSubmission{
			count: &req,
			sku:   candidate.Product.SKU,
			saved: &session.Saved{
				Query: *c.state.Query,
				View: session.DirectView{
					Product:          candidate.Product,
					Confidence:       repeatConfidence,
					SupplierRecordID: candidate.SupplierRecordID,
					Status:           models.MatchAmbiguous,
				},
			},
		}
	}
	return c.submit(ctx, pending)
}

// Skip leaves a not-found screen. With a note or photo attached the item is
// recorded as not found; otherwise nothing is sent.
func (c *Coordinator) Skip(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	if err := c.requireLocked("skip", StageShowingNotFound); err != nil {
		defer c.mu.Unlock()
		return c.failLocked(err)
	}
	if !c.state.Attachments.HasEvidence() {
		defer c.mu.Unlock()
		c.resetLocked()
		c.emitLocked(Event{Type: EventInfo, Message: "skipped"})
		c.emitStateLocked()
		return c.snapshotLocked(), nil
	}
	return c.submit(ctx, c.notFoundSubmissionLocked())
}

// RecordNotFound saves the not-found item with whatever is attached.
func (c *Coordinator) RecordNotFound(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	if err := c.requireLocked("record not found", StageShowingNotFound); err != nil {
		defer c.mu.Unlock()
		return c.failLocked(err)
	}
	return c.submit(ctx, c.notFoundSubmissionLocked())
}

func (c *Coordinator) notFoundSubmissionLocked() pendingSubmission {
	req := c.countRequestLocked(models.MatchNotFound)
	return pendingSubmission{count: &req, notFound: true}
}

// Repeat puts the last committed product back on a direct screen.
func (c *Coordinator) Repeat() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight != 0 {
		return c.snapshotLocked(), ErrBusy
	}
	if c.state.LastSaved == nil {
		return c.failLocked(&ValidationError{Message: "no previous count to repeat"})
	}
	saved := *c.state.LastSaved
	c.state.NextGeneration()
	c.state.ResetTransient()

	query := saved.Query
	view := saved.View
	if view.Confidence <= 0 {
		view.Confidence = repeatConfidence
	}
	outcome := resolve.DirectOutcome(resolve.Direct{
		Product:          view.Product,
		Confidence:       view.Confidence,
		SupplierRecordID: view.SupplierRecordID,
	})
	c.state.Query = &query
	c.state.Outcome = &outcome
	c.state.Direct = &view
	c.stage = StageShowingDirect
	c.lastResult = nil
	c.emitStateLocked()
	return c.snapshotLocked(), nil
}

// Reset clears the screen. A pending lookup is abandoned; a pending
// submission is not.
func (c *Coordinator) Reset() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stage == StageSubmitting {
		return c.snapshotLocked(), ErrBusy
	}
	c.resetLocked()
	c.emitStateLocked()
	return c.snapshotLocked(), nil
}

func (c *Coordinator) resetLocked() {
	c.state.NextGeneration()
	c.state.ResetTransient()
	c.inflight = 0
	c.stage = StageIdle
}

// SetContext replaces the search filter. It applies from the next lookup.
func (c *Coordinator) SetContext(brandID *string, category *models.Category) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := models.SearchContext{}
	if brandID != nil {
		if trimmed := strings.TrimSpace(*brandID); trimmed != "" {
			next.Brand = &trimmed
		}
	}
	if category != nil && *category != "" {
		parsed, err := models.ParseCategory(string(*category))
		if err != nil {
			return c.failLocked(&ValidationError{Fields: []string{"category"}, Message: err.Error()})
		}
		next.Category = &parsed
	}
	c.state.Context = next
	c.emitStateLocked()
	return c.snapshotLocked(), nil
}

func (c *Coordinator) ClearContext() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Context = models.SearchContext{}
	c.emitStateLocked()
	return c.snapshotLocked()
}

func (c *Coordinator) SetOperator(name string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Operator = strings.TrimSpace(name)
	c.emitStateLocked()
	return c.snapshotLocked()
}

// SetCategory switches the workspace. It clears the screen and is refused on
// stations with a fixed category.
func (c *Coordinator) SetCategory(raw string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.categorySelectable {
		return c.failLocked(&ValidationError{Fields: []string{"category"}, Message: "category is fixed for this station"})
	}
	category, err := models.ParseCategory(raw)
	if err != nil {
		return c.failLocked(&ValidationError{Fields: []string{"category"}, Message: err.Error()})
	}
	if c.inflight != 0 {
		return c.snapshotLocked(), ErrBusy
	}
	if category != c.state.Category {
		c.state.Category = category
		c.resetLocked()
		if c.refresher != nil {
			c.refresher.Trigger()
		}
	}
	c.emitStateLocked()
	return c.snapshotLocked(), nil
}

// countRequestLocked fills the fields every save-count shares.
func (c *Coordinator) countRequestLocked(status models.MatchStatus) sayimcli.SaveCountRequest {
	req := sayimcli.SaveCountRequest{
		MatchStatus: status,
		Category:    c.state.Category,
		UTSQRCode:   optional(c.state.Attachments.UTSQR),
		Notes:       optional(c.state.Attachments.Notes),
		Operator:    optional(c.state.Operator),
	}
	filter := c.state.SearchContext()
	if c.state.Query != nil {
		filter = c.state.Query.Filter
	}
	req.ContextBrand = filter.Brand
	req.ContextCategory = filter.Category
	req.Barcode, req.ManualTerm = c.barcodeLocked()
	return req
}

// barcodeLocked returns the barcode to record. Term queries have none, so a
// placeholder is generated and the term travels separately.
func (c *Coordinator) barcodeLocked() (string, *string) {
	if code, ok := c.state.Barcode(); ok {
		return code, nil
	}
	placeholder := fmt.Sprintf("%s%d", manualBarcodePrefix, c.now().UnixMilli())
	if c.state.Query != nil && c.state.Query.Kind == session.QueryTerm {
		term := c.state.Query.Text
		return placeholder, &term
	}
	return placeholder, nil
}

type pendingSubmission struct {
	count    *sayimcli.SaveCountRequest
	unlisted *sayimcli.SaveUnlistedProductRequest
	sku      string
	saved    *session.Saved
	notFound bool
}

func (p pendingSubmission) status() models.MatchStatus {
	if p.count != nil {
		return p.count.MatchStatus
	}
	return models.MatchManual
}

// submit runs one submission. c.mu must be held on entry; submit releases it.
func (c *Coordinator) submit(ctx context.Context, pending pendingSubmission) (Snapshot, error) {
	if c.inflight != 0 {
		defer c.mu.Unlock()
		return c.snapshotLocked(), ErrBusy
	}
	c.inflight = c.state.NextGeneration()
	c.resume = c.stage
	c.stage = StageSubmitting
	category := c.state.Category
	operator := optional(c.state.Operator)
	var photo *sayimcli.Photo
	if c.state.Attachments.Photo != nil {
		copied := *c.state.Attachments.Photo
		copied.Category = category
		photo = &copied
	}
	c.emitStateLocked()
	c.mu.Unlock()

	result, barcode, err := c.send(ctx, pending)
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.inflight = 0
		c.stage = c.resume
		c.logger.Info("submission failed", zap.String("match_status", string(pending.status())), zap.Error(err))
		c.emitLocked(Event{Type: EventError, Message: err.Error()})
		c.emitStateLocked()
		return c.snapshotLocked(), err
	}

	// The record is committed; nothing below may undo it or fail the call.
	postCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.postCommitTimeout)
	if photo != nil {
		c.uploadPhoto(postCtx, result.RecordID, *photo)
	}
	c.recordJournal(postCtx, result, barcode, category, operator, pending)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight = 0
	c.lastResult = &result
	if pending.saved != nil {
		saved := *pending.saved
		c.state.LastSaved = &saved
	}
	c.emitLocked(Event{Type: EventSuccess, Message: successMessage(result), Result: &result})
	if c.refresher != nil {
		c.refresher.Trigger()
	}
	if pending.notFound && c.notFoundPolicy == NotFoundKeep {
		c.state.Attachments = session.Attachments{}
		c.stage = StageShowingNotFound
	} else {
		c.resetLocked()
	}
	c.logger.Debug("submission committed",
		zap.String("record_id", result.RecordID),
		zap.String("match_status", string(result.MatchStatus)),
	)
	c.emitStateLocked()
	return c.snapshotLocked(), nil
}

func (c *Coordinator) send(ctx context.Context, pending pendingSubmission) (Result, string, error) {
	if pending.unlisted != nil {
		resp, err := c.upstream.SaveUnlistedProduct(ctx, *pending.unlisted)
		if err != nil {
			return Result{}, "", err
		}
		// The upstream records registered products as manual matches.
		return Result{
			RecordID:    resp.CountRecordID,
			MatchStatus: models.MatchManual,
			SKU:         resp.SKU,
			Unlisted:    true,
		}, pending.unlisted.Barcode, nil
	}
	resp, err := c.upstream.SaveCount(ctx, *pending.count)
	if err != nil {
		return Result{}, "", err
	}
	return Result{
		RecordID:    resp.RecordID,
		MatchStatus: pending.count.MatchStatus,
		SKU:         pending.sku,
	}, pending.count.Barcode, nil
}

func (c *Coordinator) uploadPhoto(ctx context.Context, recordID string, photo sayimcli.Photo) {
	if strings.TrimSpace(recordID) == "" {
		c.logger.Warn("photo not uploaded: upstream returned no record id")
		return
	}
	err := c.upstream.UploadPhoto(ctx, recordID, photo)
	if err == nil {
		return
	}
	c.logger.Warn("photo upload failed", zap.String("record_id", recordID), zap.Error(err))
	if c.journal == nil {
		return
	}
	if jerr := c.journal.RecordPhotoFailure(ctx, journal.PhotoFailure{
		SessionID: c.id,
		RecordID:  recordID,
		Category:  photo.Category,
		Filename:  photo.Filename,
		Error:     err.Error(),
		CreatedAt: c.now(),
	}); jerr != nil {
		c.logger.Warn("journal write failed", zap.String("record_id", recordID), zap.Error(jerr))
	}
}

func (c *Coordinator) recordJournal(
	ctx context.Context,
	result Result,
	barcode string,
	category models.Category,
	operator *string,
	pending pendingSubmission,
) {
	if c.journal == nil || strings.TrimSpace(result.RecordID) == "" {
		return
	}
	record := journal.CountRecord{
		SessionID:   c.id,
		RecordID:    result.RecordID,
		Barcode:     barcode,
		MatchStatus: result.MatchStatus,
		Category:    category,
		SKU:         optional(result.SKU),
		Operator:    operator,
		Unlisted:    result.Unlisted,
		CreatedAt:   c.now(),
	}
	if pending.count != nil {
		record.SKUID = pending.count.SKUID
	}
	if err := c.journal.RecordCount(ctx, record); err != nil {
		c.logger.Warn("journal write failed", zap.String("record_id", result.RecordID), zap.Error(err))
	}
}

func successMessage(result Result) string {
	if result.Unlisted && result.SKU != "" {
		return "product registered as " + result.SKU
	}
	return "count saved"
}

// requireLocked rejects busy sessions and actions outside the given stages.
func (c *Coordinator) requireLocked(action string, stages ...Stage) error {
	if c.inflight != 0 {
		return ErrBusy
	}
	for _, stage := range stages {
		if c.stage == stage {
			return nil
		}
	}
	return &StageError{Action: action, Stage: c.stage}
}

// reject surfaces an error detected before the lock was needed.
func (c *Coordinator) reject(err error) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failLocked(err)
}

func (c *Coordinator) failLocked(err error) (Snapshot, error) {
	c.emitLocked(Event{Type: EventError, Message: err.Error()})
	return c.snapshotLocked(), err
}

func (c *Coordinator) emitStateLocked() {
	snapshot := c.snapshotLocked()
	c.emitLocked(Event{Type: EventState, Snapshot: &snapshot})
}

func (c *Coordinator) emitLocked(event Event) {
	if c.notifier == nil {
		return
	}
	event.SessionID = c.id
	c.notifier.Notify(event)
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
