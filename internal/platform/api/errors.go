// Package api defines the portal's JSON response envelope and the error
// taxonomy shared by all domain handlers. Every handler response is wrapped
// in {success, data, message} and every domain failure is classified as one
// of four kinds so clients can distinguish a dead view (FetchError) from a
// retryable dialog failure (MutationError).
package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a domain failure.
type ErrorKind int

const (
	// KindFetch means a whole resource could not be loaded; the caller
	// should abandon the current view.
	KindFetch ErrorKind = iota
	// KindInvalidRecord means the target of a single mutation does not
	// exist (stale id, double delete).
	KindInvalidRecord
	// KindValidation means a local precondition failed; nothing was sent
	// to storage.
	KindValidation
	// KindMutation means storage rejected a write; state is unchanged and
	// the operation may be retried.
	KindMutation
)

func (k ErrorKind) String() string {
	switch k {
	case KindFetch:
		return "fetch_error"
	case KindInvalidRecord:
		return "invalid_record"
	case KindValidation:
		return "validation_error"
	case KindMutation:
		return "mutation_error"
	}
	return "unknown"
}

// Error is a classified domain error. Fields carries per-field validation
// messages for KindValidation.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// FetchError wraps a resource-load failure.
func FetchError(msg string, cause error) *Error {
	return &Error{Kind: KindFetch, Message: msg, cause: cause}
}

// InvalidRecord marks a mutation whose target record is missing.
func InvalidRecord(msg string) *Error {
	return &Error{Kind: KindInvalidRecord, Message: msg}
}

// ValidationError carries per-field messages; the write was never attempted.
func ValidationError(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// MutationError wraps a rejected write.
func MutationError(msg string, cause error) *Error {
	return &Error{Kind: KindMutation, Message: msg, cause: cause}
}

// KindOf extracts the ErrorKind from err, defaulting to KindMutation for
// unclassified errors so callers always get a retryable failure mode.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindMutation
}

// HTTPStatus maps an error kind to the response status used by handlers.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindFetch:
		return http.StatusBadGateway
	case KindInvalidRecord:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
