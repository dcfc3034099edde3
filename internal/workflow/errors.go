package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBusy is returned while a lookup or submission is outstanding.
	ErrBusy = errors.New("another lookup or submission is in progress")
	// ErrStale is returned to a lookup whose response arrived after the
	// session moved on. The response is not applied.
	ErrStale = errors.New("lookup result discarded after reset")
	// ErrSessionNotFound is returned by Registry lookups.
	ErrSessionNotFound = errors.New("session not found")
)

// ValidationError is detected locally; no network call was made and the
// screen did not change.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "validation failed"
	}
	message := strings.TrimSpace(e.Message)
	if message == "" {
		message = "validation failed"
	}
	if len(e.Fields) == 0 {
		return message
	}
	return fmt.Sprintf("%s: %s", message, strings.Join(e.Fields, ", "))
}

// StageError reports an action that does not apply to the current screen.
type StageError struct {
	Action string
	Stage  Stage
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s is not available while %s", e.Action, e.Stage)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
