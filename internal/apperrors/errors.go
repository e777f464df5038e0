// Package apperrors defines the structured outcomes returned by the catalog
// and cart components and their mapping onto HTTP statuses.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers that need to react to it
type Kind int

const (
	Internal Kind = iota
	InvalidInput
	NotFound
	InvalidState
	InsufficientStock
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "INVALID_INPUT"
	case NotFound:
		return "NOT_FOUND"
	case InvalidState:
		return "INVALID_STATE"
	case InsufficientStock:
		return "INSUFFICIENT_STOCK"
	default:
		return "INTERNAL"
	}
}

// Error carries a kind, a client-facing message and, for stock failures, the
// available and requested quantities.
type Error struct {
	Kind      Kind
	Message   string
	Available int
	Requested int
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/As
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Internal error around an infrastructure failure
func Wrap(err error, message string) *Error {
	return &Error{Kind: Internal, Message: message, Err: err}
}

// NewInsufficientStock reports that requested exceeds available
func NewInsufficientStock(available, requested int) *Error {
	return &Error{
		Kind:      InsufficientStock,
		Message:   "Insufficient stock available",
		Available: available,
		Requested: requested,
	}
}

// KindOf returns the kind of err, or Internal if err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// HTTPStatus maps an error onto the status code the API responds with
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case InvalidInput, InvalidState, InsufficientStock:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
