package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"
)

// Problem is an RFC 9457/7807 problem+json payload with custom extensions:
// a stable business code, an optional context payload, and the request ID
// propagated from chi's RequestID middleware.
type Problem struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Errors []*huma.ErrorDetail `json:"errors,omitempty"`

	Code      string `json:"code,omitempty"`
	Context   any    `json:"context,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Error implements the error interface by returning the problem detail.
func (p *Problem) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	if p.Title != "" {
		return p.Title
	}
	return http.StatusText(p.GetStatus())
}

// GetStatus implements huma.StatusError to set the HTTP response status.
func (p *Problem) GetStatus() int {
	if p.Status == 0 {
		return http.StatusInternalServerError
	}
	return p.Status
}

// ContentType implements huma.ContentTypeFilter to ensure application/problem+json.
func (p *Problem) ContentType(ct string) string {
	if ct == "application/json" {
		return "application/problem+json"
	}
	if ct == "application/cbor" {
		return "application/problem+cbor"
	}
	return ct
}

// DomainProblem is the minimal method set a domain error must provide so the
// formatter can build a Problem without enumerating error types per module.
type DomainProblem interface {
	ProblemCode() string
	ProblemStatus() int
	ProblemTitle() string
	ProblemDetail() string
	ProblemTypeURI() string
	ProblemContext() any
}

// ToProblem converts any error into an RFC 7807 Problem.
//
// Huma status errors (including Problems) pass through unchanged; errors
// implementing DomainProblem are formatted from their metadata; anything else
// becomes a generic internal problem so unexpected details never leak.
func ToProblem(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	if _, ok := err.(huma.StatusError); ok {
		return err
	}

	var dp DomainProblem
	if errors.As(err, &dp) {
		status := dp.ProblemStatus()
		typeURI := dp.ProblemTypeURI()
		if typeURI == "" {
			typeURI = "urn:problem:" + toKebab(dp.ProblemCode())
		}
		title := dp.ProblemTitle()
		if title == "" {
			title = http.StatusText(status)
		}
		detail := dp.ProblemDetail()
		if detail == "" {
			detail = http.StatusText(status)
		}
		return &Problem{
			Type:      typeURI,
			Title:     title,
			Status:    status,
			Detail:    detail,
			Code:      dp.ProblemCode(),
			Context:   dp.ProblemContext(),
			RequestID: middleware.GetReqID(ctx),
		}
	}

	return InternalProblem(ctx, "")
}

// ValidationProblem builds a 400 validation error with a per-field context map.
func ValidationProblem(ctx context.Context, summary string, fields map[string][]string) *Problem {
	if summary == "" {
		summary = "Validation error"
	}
	return &Problem{
		Type:      "urn:problem:validation-error",
		Title:     "Validation error",
		Status:    http.StatusBadRequest,
		Detail:    summary,
		Code:      "ErrValidation",
		Context:   map[string]any{"fields": fields},
		RequestID: middleware.GetReqID(ctx),
	}
}

// InternalProblem builds a generic 500 problem with a safe client message.
func InternalProblem(ctx context.Context, detail string) *Problem {
	if detail == "" {
		detail = "Something went wrong. Please try again later."
	}
	return &Problem{
		Type:      "urn:problem:internal",
		Title:     http.StatusText(http.StatusInternalServerError),
		Status:    http.StatusInternalServerError,
		Detail:    detail,
		Code:      "ErrInternal",
		RequestID: middleware.GetReqID(ctx),
	}
}

// toKebab converts codes like ErrInvalidResetToken or USER_NOT_FOUND to
// kebab-case: err-invalid-reset-token, user-not-found.
func toKebab(s string) string {
	var b strings.Builder
	prevLowerOrDigit := false
	for _, r := range s {
		switch r {
		case '_', ' ', '-':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
			prevLowerOrDigit = false
			continue
		}
		if unicode.IsUpper(r) && prevLowerOrDigit {
			b.WriteByte('-')
		}
		b.WriteRune(unicode.ToLower(r))
		prevLowerOrDigit = unicode.IsLower(r) || unicode.IsDigit(r)
	}
	return b.String()
}
