// Package apperr defines the failure kinds returned by the ledger and session
// services. Handlers translate kinds to HTTP statuses; services never guess.
package apperr

import "errors"

// Kind classifies a domain failure. Kinds are themselves errors so callers can
// write errors.Is(err, apperr.ErrConflict).
type Kind string

func (k Kind) Error() string { return string(k) }

const (
	ErrValidation          Kind = "validation error"
	ErrNotFound            Kind = "not found"
	ErrForbidden           Kind = "forbidden"
	ErrConflict            Kind = "conflict"
	ErrInsufficientBalance Kind = "insufficient balance"
)

// Error is a domain failure with a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is reports whether target is the kind of e. Two distinct *Error values never
// match each other, so package sentinels stay distinguishable.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string) *Error { return New(ErrValidation, message) }

func NotFound(message string) *Error { return New(ErrNotFound, message) }

func Forbidden(message string) *Error { return New(ErrForbidden, message) }

func Conflict(message string) *Error { return New(ErrConflict, message) }

func InsufficientBalance(message string) *Error { return New(ErrInsufficientBalance, message) }

// KindOf returns the kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	var k Kind
	if errors.As(err, &k) {
		return k, true
	}
	return "", false
}
