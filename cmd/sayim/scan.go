package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/sayimcli"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/session"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/workflow"
)

const scanHelp = `A bare line is looked up as a barcode.
  search <term>     look up by model, color or name
  select <n>        pick candidate n on an ambiguous screen
  uts <code>        attach a UTS QR code
  note <text>       attach a note ("note -" clears it)
  photo <path>      attach a photo ("photo -" clears it)
  confirm           save the shown product
  skip              leave a not-found screen
  record            save a not-found item
  unlisted          register a not-found product
  repeat            show the last saved product again
  reset             clear the screen
  brand <id>|-      set or clear the brand filter
  operator <name>   set the operator name
  category <code>   switch workspace (OF, GN, LN)
  quit              leave`

// scanREPL is the terminal presentation layer over one Coordinator.
type scanREPL struct {
	coordinator  *workflow.Coordinator
	in           *bufio.Scanner
	out          io.Writer
	readFile     func(string) ([]byte, error)
	saveOperator func(string) error

	mu sync.Mutex
}

type flusher interface {
	Flush() error
}

func newScanREPL(in io.Reader, out io.Writer) *scanREPL {
	return &scanREPL{
		in:       bufio.NewScanner(in),
		out:      out,
		readFile: os.ReadFile,
	}
}

// notify prints success and info messages. Errors are printed from the
// returned error instead.
func (r *scanREPL) notify(event workflow.Event) {
	switch event.Type {
	case workflow.EventSuccess, workflow.EventInfo:
		r.printf("* %s\n", event.Message)
	}
}

func (r *scanREPL) run(ctx context.Context) error {
	snap := r.coordinator.Snapshot()
	r.printf("Sayım: %s", snap.CategoryName)
	if snap.Operator != "" {
		r.printf(" / %s", snap.Operator)
	}
	r.printf("\nType help for commands.\n")
	r.prompt(snap)

	for r.in.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(r.in.Text())
		if line == "" {
			r.prompt(r.coordinator.Snapshot())
			continue
		}
		quit, err := r.execute(ctx, line)
		if err != nil {
			r.printf("! %s\n", formatCLIError(err))
		}
		if quit {
			r.flush()
			return nil
		}
		r.prompt(r.coordinator.Snapshot())
	}
	r.flush()
	return r.in.Err()
}

func (r *scanREPL) execute(ctx context.Context, line string) (bool, error) {
	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	c := r.coordinator

	var err error
	switch strings.ToLower(command) {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		r.printf("%s\n", scanHelp)
		return false, nil
	case "search", "s":
		_, err = c.LookupTerm(ctx, rest)
	case "select":
		n, convErr := strconv.Atoi(rest)
		if convErr != nil {
			return false, errors.New("usage: select <n>")
		}
		_, err = c.Select(n - 1)
	case "uts":
		_, err = c.SetAttachments(workflow.AttachmentUpdate{UTSQR: &rest})
	case "note":
		if rest == "-" {
			rest = ""
		}
		_, err = c.SetAttachments(workflow.AttachmentUpdate{Notes: &rest})
	case "photo":
		err = r.attachPhoto(rest)
	case "confirm", "ok":
		_, err = c.Confirm(ctx)
	case "skip":
		_, err = c.Skip(ctx)
	case "record":
		_, err = c.RecordNotFound(ctx)
	case "unlisted":
		err = r.registerUnlisted(ctx)
	case "repeat":
		_, err = c.Repeat()
	case "reset":
		_, err = c.Reset()
	case "brand":
		if rest == "" || rest == "-" {
			c.ClearContext()
			return false, nil
		}
		_, err = c.SetContext(&rest, nil)
	case "operator":
		c.SetOperator(rest)
		if r.saveOperator != nil {
			err = r.saveOperator(strings.TrimSpace(rest))
		}
	case "category":
		_, err = c.SetCategory(rest)
	default:
		_, err = c.LookupBarcode(ctx, line)
	}
	return false, err
}

func (r *scanREPL) attachPhoto(path string) error {
	if path == "" {
		return errors.New("usage: photo <path>")
	}
	if path == "-" {
		_, err := r.coordinator.SetAttachments(workflow.AttachmentUpdate{ClearPhoto: true})
		return err
	}
	data, err := r.readFile(path)
	if err != nil {
		return fmt.Errorf("read photo: %w", err)
	}
	photo := &sayimcli.Photo{
		Filename:    filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}
	_, err = r.coordinator.SetAttachments(workflow.AttachmentUpdate{Photo: photo})
	return err
}

// registerUnlisted walks the operator through the registration form. Empty
// answers keep the pre-filled value.
func (r *scanREPL) registerUnlisted(ctx context.Context) error {
	snap, err := r.coordinator.OpenUnlisted()
	if err != nil {
		return err
	}
	draft := session.UnlistedDraft{}
	if snap.Unlisted != nil {
		draft = *snap.Unlisted
	}

	fields := []struct {
		label string
		value *string
	}{
		{"Marka id", &draft.BrandID},
		{"Model kodu", &draft.ModelCode},
		{"Renk kodu", &draft.ColorCode},
		{"Ekartman", &draft.BridgeWidth},
		{"Model adı", &draft.ModelName},
		{"Renk adı", &draft.ColorName},
	}
	for _, field := range fields {
		answer, ok := r.ask(field.label, *field.value)
		if !ok {
			_, _ = r.coordinator.CancelUnlisted()
			return errors.New("registration cancelled")
		}
		if answer != "" {
			*field.value = answer
		}
	}

	if _, err := r.coordinator.SubmitUnlisted(ctx, draft); err != nil {
		if workflow.IsValidation(err) {
			_, _ = r.coordinator.CancelUnlisted()
		}
		return err
	}
	return nil
}

func (r *scanREPL) ask(label, current string) (string, bool) {
	if current != "" {
		r.printf("  %s [%s]: ", label, current)
	} else {
		r.printf("  %s: ", label)
	}
	r.flush()
	if !r.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(r.in.Text()), true
}

func (r *scanREPL) prompt(snap workflow.Snapshot) {
	r.render(snap)
	r.printf("%s> ", strings.ToLower(string(snap.Category)))
	r.flush()
}

func (r *scanREPL) render(snap workflow.Snapshot) {
	switch snap.Stage {
	case workflow.StageShowingDirect:
		if snap.Direct == nil {
			return
		}
		r.printf("%s (%.0f%%) %s\n", snap.Direct.Status, snap.Direct.Confidence, describeProduct(snap.Direct.Product))
		r.printAttachments(snap)
		r.printf("  confirm to save, reset to cancel\n")
	case workflow.StageShowingAmbiguous:
		r.printf("Belirsiz: %d candidates\n", len(snap.Candidates))
		for i, candidate := range snap.Candidates {
			marker := " "
			if i == snap.Selected {
				marker = ">"
			}
			r.printf(" %s %d. %s\n", marker, i+1, describeProduct(candidate.Product))
		}
		r.printAttachments(snap)
		r.printf("  select <n>, then confirm\n")
	case workflow.StageShowingNotFound:
		r.printf("Bulunamadı")
		if snap.Query != nil {
			r.printf(": %s", snap.Query.Text)
		}
		r.printf("\n")
		r.printAttachments(snap)
		r.printf("  record, skip or unlisted\n")
	}
}

func (r *scanREPL) printAttachments(snap workflow.Snapshot) {
	if snap.Attachments.UTSQR != "" {
		r.printf("  UTS: %s\n", snap.Attachments.UTSQR)
	}
	if snap.Attachments.Notes != "" {
		r.printf("  Not: %s\n", snap.Attachments.Notes)
	}
	if snap.Attachments.HasPhoto {
		r.printf("  Foto: %s\n", snap.Attachments.PhotoName)
	}
}

func describeProduct(p models.Product) string {
	parts := []string{}
	for _, part := range []string{p.SKU, p.Brand, p.ModelCode, p.ModelName, p.ColorCode} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	if p.BridgeWidth > 0 {
		parts = append(parts, p.BridgeWidth.String())
	}
	return strings.Join(parts, " · ")
}

func (r *scanREPL) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

func (r *scanREPL) flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.out.(flusher); ok {
		_ = f.Flush()
	}
}
