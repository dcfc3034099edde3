package workflow

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/sayimcli"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/session"
)

var (
	draftValidatorOnce sync.Once
	draftValidator     *validator.Validate
)

func draftValidate() *validator.Validate {
	draftValidatorOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("integer", func(fl validator.FieldLevel) bool {
			_, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
			return err == nil
		})
		draftValidator = v
	})
	return draftValidator
}

func normalizeDraft(draft session.UnlistedDraft) session.UnlistedDraft {
	draft.Category = models.Category(strings.ToUpper(strings.TrimSpace(string(draft.Category))))
	draft.BrandID = strings.TrimSpace(draft.BrandID)
	draft.ModelCode = strings.TrimSpace(draft.ModelCode)
	draft.ColorCode = strings.TrimSpace(draft.ColorCode)
	draft.BridgeWidth = strings.TrimSpace(draft.BridgeWidth)
	draft.ModelName = strings.TrimSpace(draft.ModelName)
	draft.ColorName = strings.TrimSpace(draft.ColorName)
	return draft
}

// ValidateDraft checks the five mandatory fields. The returned
// ValidationError lists every failing field by its json name.
func ValidateDraft(draft session.UnlistedDraft) error {
	draft = normalizeDraft(draft)
	err := draftValidate().Struct(draft)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		fields = append(fields, fieldErr.Field())
	}
	return &ValidationError{Fields: fields, Message: "missing or invalid fields"}
}

// PreviewSKU renders the SKU the catalog is expected to assign. It is shown
// to the operator only; the server-assigned SKU is authoritative.
func PreviewSKU(draft session.UnlistedDraft, brandCode string) (string, bool) {
	draft = normalizeDraft(draft)
	brandCode = strings.TrimSpace(brandCode)
	parts := []string{string(draft.Category), brandCode, draft.ModelCode, draft.ColorCode, draft.BridgeWidth}
	for _, part := range parts {
		if part == "" {
			return "", false
		}
	}
	return strings.Join(parts, "-"), true
}

// OpenUnlisted moves a not-found screen to the registration form, pre-filled
// from the session category and the active brand filter.
func (c *Coordinator) OpenUnlisted() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireLocked("unlisted form", StageShowingNotFound); err != nil {
		return c.failLocked(err)
	}
	draft := &session.UnlistedDraft{Category: c.state.Category}
	if c.state.Context.Brand != nil {
		draft.BrandID = *c.state.Context.Brand
	}
	c.state.Unlisted = draft
	c.stage = StageShowingUnlistedForm
	c.emitStateLocked()
	return c.snapshotLocked(), nil
}

// CancelUnlisted returns to the not-found screen and drops the draft.
func (c *Coordinator) CancelUnlisted() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireLocked("cancel unlisted form", StageShowingUnlistedForm); err != nil {
		return c.failLocked(err)
	}
	c.state.Unlisted = nil
	c.stage = StageShowingNotFound
	c.emitStateLocked()
	return c.snapshotLocked(), nil
}

// SubmitUnlisted registers a new catalog product and counts it. Invalid
// drafts are kept on the form and never reach the upstream.
func (c *Coordinator) SubmitUnlisted(ctx context.Context, draft session.UnlistedDraft) (Snapshot, error) {
	c.mu.Lock()
	if err := c.requireLocked("unlisted submission", StageShowingUnlistedForm); err != nil {
		defer c.mu.Unlock()
		return c.failLocked(err)
	}
	draft = normalizeDraft(draft)
	c.state.Unlisted = &draft
	if err := ValidateDraft(draft); err != nil {
		defer c.mu.Unlock()
		c.emitStateLocked()
		return c.failLocked(err)
	}
	width, _ := strconv.Atoi(draft.BridgeWidth)

	barcode, _ := c.barcodeLocked()
	req := sayimcli.SaveUnlistedProductRequest{
		Barcode:     barcode,
		Kind:        draft.Category,
		BrandID:     draft.BrandID,
		ModelCode:   draft.ModelCode,
		ColorCode:   draft.ColorCode,
		BridgeWidth: width,
		ModelName:   optional(draft.ModelName),
		ColorName:   optional(draft.ColorName),
		UTSQRCode:   optional(c.state.Attachments.UTSQR),
		Notes:       optional(c.state.Attachments.Notes),
		Operator:    optional(c.state.Operator),
		Category:    c.state.Category,
	}
	return c.submit(ctx, pendingSubmission{unlisted: &req})
}
