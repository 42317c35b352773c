package httpx

import (
	"fmt"
	"net/http"
)

// DomainError is a structured, self-describing domain error shared by all
// modules. It carries RFC 7807-friendly metadata so ToProblem can convert any
// domain error into a Problem response without enumerating error types.
type DomainError struct {
	// Code is a stable, machine-readable business code (e.g., "ErrInvalidResetToken").
	Code string

	// HTTPStatus is the HTTP status suggested for this error.
	HTTPStatus int

	// Title is a short human summary; if empty the formatter defaults to
	// StatusText(HTTPStatus).
	Title string

	// Message is a human-readable message primarily for logs. When Detail is
	// empty, this is used as the public detail.
	Message string

	// Detail is a user-friendly, safe explanation for clients.
	Detail string

	// TypeURI is an RFC 7807 type URI, e.g. "urn:problem:user/err-not-found".
	TypeURI string

	// Context is an optional extension payload for clients.
	Context any

	cause error
}

// Error satisfies the standard Go error interface.
func (e *DomainError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Message
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap provides compatibility with errors.Is and errors.As.
func (e *DomainError) Unwrap() error { return e.cause }

// Is compares by the stable Code rather than pointer identity, so copies
// created via WithCause match their sentinel counterpart.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error wrapping the provided cause.
func (e *DomainError) WithCause(err error) *DomainError {
	if err == nil {
		return e
	}
	cp := *e
	cp.cause = err
	return &cp
}

// WithDetail returns a copy with a public-friendly detail message.
func (e *DomainError) WithDetail(detail string) *DomainError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithContext returns a copy with an extension payload for clients.
func (e *DomainError) WithContext(ctx any) *DomainError {
	cp := *e
	cp.Context = ctx
	return &cp
}

// --- RFC 7807 mapping accessors (satisfy DomainProblem) ---

func (e *DomainError) ProblemCode() string { return e.Code }
func (e *DomainError) ProblemStatus() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}
func (e *DomainError) ProblemTitle() string { return e.Title }
func (e *DomainError) ProblemDetail() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}
func (e *DomainError) ProblemTypeURI() string { return e.TypeURI }
func (e *DomainError) ProblemContext() any    { return e.Context }
