package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound covers both a missing record and a malformed identifier.
	// The two causes are intentionally indistinguishable so storage id
	// formats never leak to callers.
	ErrNotFound = errors.New("todo not found")

	// ErrStorageUnavailable wraps connectivity, timeout and other storage
	// failures. No retry happens at this layer.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// FieldError is a single human-readable validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError rejects input that breaks a domain rule. It is always
// raised before any storage mutation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))

	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}

	return "validation failed: " + strings.Join(msgs, "; ")
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// AsValidationError unwraps err into a *ValidationError, or nil.
func AsValidationError(err error) *ValidationError {
	var ve *ValidationError

	if errors.As(err, &ve) {
		return ve
	}

	return nil
}
