// Package selector holds the single selection pointer over an ambiguous
// candidate list.
package selector

import (
	"errors"
	"fmt"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
)

var ErrNoCandidates = errors.New("no candidates loaded")

// OutOfRangeError reports a selection index outside the loaded list.
type OutOfRangeError struct {
	Index int
	Count int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("candidate %d out of range (have %d)", e.Index, e.Count)
}

// Selector is not safe for concurrent use; its owner serializes access.
type Selector struct {
	candidates []models.Candidate
	index      int
}

// Load replaces the list and pre-selects the first candidate.
func (s *Selector) Load(candidates []models.Candidate) {
	s.candidates = append([]models.Candidate(nil), candidates...)
	s.index = 0
}

// Select moves the selection pointer to i.
func (s *Selector) Select(i int) error {
	if len(s.candidates) == 0 {
		return ErrNoCandidates
	}
	if i < 0 || i >= len(s.candidates) {
		return &OutOfRangeError{Index: i, Count: len(s.candidates)}
	}
	s.index = i
	return nil
}

// Current returns the selected candidate, or false when nothing is loaded.
func (s *Selector) Current() (models.Candidate, bool) {
	if len(s.candidates) == 0 {
		return models.Candidate{}, false
	}
	return s.candidates[s.index], true
}

// Index is the selected position, or -1 when nothing is loaded.
func (s *Selector) Index() int {
	if len(s.candidates) == 0 {
		return -1
	}
	return s.index
}

func (s *Selector) Candidates() []models.Candidate {
	return append([]models.Candidate(nil), s.candidates...)
}

func (s *Selector) Len() int {
	return len(s.candidates)
}

func (s *Selector) Clear() {
	s.candidates = nil
	s.index = 0
}
