package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps JSON field names to a list of validation error messages.
type FieldErrors map[string][]string

// ValidationError satisfies httpx.DomainProblem structurally (without importing
// the package, avoiding a cycle) so httpx.ToProblem can format it.
type ValidationError struct {
	summary string
	fields  FieldErrors
}

func (e *ValidationError) Error() string { return e.summary }

func (e *ValidationError) ProblemCode() string    { return "ErrValidation" }
func (e *ValidationError) ProblemStatus() int     { return 400 }
func (e *ValidationError) ProblemTitle() string   { return "Validation error" }
func (e *ValidationError) ProblemDetail() string  { return e.summary }
func (e *ValidationError) ProblemTypeURI() string { return "urn:problem:validation-error" }
func (e *ValidationError) ProblemContext() any    { return map[string]any{"fields": e.fields} }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON tag names instead of struct field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.Split(fld.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			return lowerFirst(fld.Name)
		}
		return name
	})
	return v
}

// ValidateStruct validates a struct instance according to `validate` tags.
// On failure it returns a *ValidationError with a human summary and a map of
// JSON field name to messages.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{summary: "validation failed", fields: FieldErrors{}}
	}

	fields := make(FieldErrors)
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], messageForTag(fe))
	}
	return &ValidationError{summary: summarize(verrs, fields), fields: fields}
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "eqfield":
		return fmt.Sprintf("must match %s", lowerFirst(fe.Param()))
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

func summarize(verrs validator.ValidationErrors, fields FieldErrors) string {
	first := verrs[0]
	summary := fmt.Sprintf("%s %s", first.Field(), messageForTag(first))
	others := len(verrs) - 1
	if others == 1 {
		summary += ", and 1 other error"
	} else if others > 1 {
		summary += fmt.Sprintf(", and %d other errors", others)
	}
	return summary
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
