package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthenticated  = errors.New("must be logged in")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrBookmarkNotFound = fmt.Errorf("bookmark %w", ErrNotFound)
	ErrTagNotFound      = fmt.Errorf("tag %w", ErrNotFound)
	ErrInvalidURL       = fmt.Errorf("%w: only http/https supported", ErrInvalidInput)
	ErrUnknownTag       = fmt.Errorf("%w: unknown tag", ErrInvalidInput)
	ErrUnknownFolder    = fmt.Errorf("%w: unknown folder", ErrInvalidInput)
)

// FieldError names one failed field and the rule it broke.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError collects field-level failures. errors.Is(err, ErrInvalidInput) holds.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Has reports whether the named field failed.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// FetchError is returned when a metadata target can't be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Failed to fetch: %d", e.StatusCode)
	}
	return fmt.Sprintf("Failed to fetch: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
