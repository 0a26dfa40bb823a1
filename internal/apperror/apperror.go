package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an application error so the HTTP layer can pick a status code.
type Kind int

const (
	Internal Kind = iota
	Validation
	BadRequest
	Auth
	NotFound
	Uniqueness
	StoreUnavailable
)

// Error is an error with a kind and a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string // per-field validation failures, if any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status associated with the error's kind.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case Validation, BadRequest:
		return http.StatusBadRequest
	case Auth:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Uniqueness:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NewValidation(message string, fields map[string]string) *Error {
	return &Error{Kind: Validation, Message: message, Fields: fields}
}

// KindOf reports the kind of err, or Internal if err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
