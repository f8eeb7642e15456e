package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the catalog domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates the requested item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrUnauthorized indicates the caller presented no valid credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller may not access the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates the caller exceeded the request ceiling.
	ErrRateLimited = errors.New("too many requests")
)

// FieldError describes one violated constraint: the wire-level field name,
// a human-readable message, and the offending value.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationError aggregates all field violations found in one pass.
// Validation never fails fast: every violated field is reported together.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation error"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation error: " + strings.Join(msgs, "; ")
}

// ConflictError indicates a uniqueness violation on the named field.
type ConflictError struct {
	Field string
	Value any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

// NotFoundError carries the method and path of an unmatched route.
// It unwraps to ErrItemNotFound's 404 semantics via the error formatter.
type NotFoundError struct {
	Method string
	Path   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Route not found: %s %s", e.Method, e.Path)
}
