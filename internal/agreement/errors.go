package agreement

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is matched (errors.Is) by every InvalidInputError.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError indicates an annotation group too small to score.
// ID is empty when the group was scored outside a batch.
type InvalidInputError struct {
	ID   string
	Sets int
}

func (e *InvalidInputError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid input: need at least 2 label sets, got %d", e.Sets)
	}
	return fmt.Sprintf("invalid input for %q: need at least 2 label sets, got %d", e.ID, e.Sets)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// ParseError indicates a record whose label sets could not be decoded.
type ParseError struct {
	ID  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse label sets for %q: %v", e.ID, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
