// Package errs defines the typed failures returned by the stores and the
// connection manager, and maps them onto HTTP status codes for the route layer.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FieldError is a single violated field constraint.
//
//	{ "field": "email", "error": "must be a valid email address" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ConfigurationError reports missing or malformed required configuration.
// It is fatal and surfaced at startup.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s %s", e.Key, e.Reason)
}

// ConnectionError wraps a failed attempt to reach the database. The next
// connect call tries again.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "database connection failed: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ValidationError lists every field that failed validation or normalization.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Error)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the violations.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Error: msg}}}
}

// UniqueConstraintError reports that a unique field collides with a stored record.
type UniqueConstraintError struct {
	Field string
	Value string
}

func (e *UniqueConstraintError) Error() string {
	return fmt.Sprintf("%s %q is already taken", e.Field, e.Value)
}

// ReferentialIntegrityError reports a reference to a record that does not exist.
type ReferentialIntegrityError struct {
	Field string
	Ref   string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("%s %s references a record that does not exist", e.Field, e.Ref)
}

// NotFoundError reports that a read query matched nothing.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

// Status maps an error kind onto the HTTP status the route layer responds with.
// Connection and configuration failures are unexpected from a caller's point
// of view and fall through to 500.
func Status(err error) int {
	var (
		verr *ValidationError
		uerr *UniqueConstraintError
		rerr *ReferentialIntegrityError
		nerr *NotFoundError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &uerr):
		return http.StatusConflict
	case errors.As(err, &rerr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &nerr):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nerr *NotFoundError
	return errors.As(err, &nerr)
}
