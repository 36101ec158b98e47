package model

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	// ErrInsufficientParticipation means too few members finished a category to consolidate.
	ErrInsufficientParticipation = eris.New("insufficient participation")
	// ErrGenerationFailed means the external candidate source failed.
	ErrGenerationFailed = eris.New("candidate generation failed")
	// ErrNotFound is returned by store lookups that match nothing.
	ErrNotFound = eris.New("not found")
	// ErrInvalidInput marks caller mistakes such as an unknown category or vote type.
	ErrInvalidInput = eris.New("invalid input")
)

// ParticipationError reports how many members have completed a category.
type ParticipationError struct {
	Category  Category
	Completed int
	Required  int
}

func (e *ParticipationError) Error() string {
	return fmt.Sprintf("%s: %d of %d required members completed %s",
		ErrInsufficientParticipation.Error(), e.Completed, e.Required, e.Category)
}

func (e *ParticipationError) Unwrap() error {
	return ErrInsufficientParticipation
}

// GenerationError wraps a candidate source failure. It matches both
// ErrGenerationFailed and the underlying cause with errors.Is.
type GenerationError struct {
	Key string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrGenerationFailed.Error(), e.Key, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	return []error{ErrGenerationFailed, e.Err}
}
