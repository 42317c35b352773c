package plan

import (
	"net/http"

	"github.com/profacthq/profact-api/internal/httpx"
)

var (
	ErrPlanNotFound = &httpx.DomainError{
		Code:       "ErrPlanNotFound",
		HTTPStatus: http.StatusNotFound,
		Title:      "Plan Not Found",
		Message:    "plan not found",
		Detail:     "The requested plan does not exist.",
		TypeURI:    "urn:problem:plan/not-found",
	}

	ErrPlanNotEditable = &httpx.DomainError{
		Code:       "ErrPlanNotEditable",
		HTTPStatus: http.StatusForbidden,
		Title:      "Plan Not Editable",
		Message:    "only default plans can be modified",
		Detail:     "Only default plans can be modified.",
		TypeURI:    "urn:problem:plan/not-editable",
	}

	ErrImmutableFields = &httpx.DomainError{
		Code:       "ErrImmutableFields",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Immutable Fields",
		Message:    "plan title and billing period cannot be changed",
		Detail:     "Plan title and billing period cannot be changed.",
		TypeURI:    "urn:problem:plan/immutable-fields",
	}

	ErrInvalidFeatureIDs = &httpx.DomainError{
		Code:       "ErrInvalidFeatureIDs",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Invalid Feature IDs",
		Message:    "one or more feature ids do not exist",
		Detail:     "One or more feature IDs are invalid.",
		TypeURI:    "urn:problem:plan/invalid-feature-ids",
	}

	ErrFeatureNotFound = &httpx.DomainError{
		Code:       "ErrFeatureNotFound",
		HTTPStatus: http.StatusNotFound,
		Title:      "Feature Not Found",
		Message:    "feature not found",
		Detail:     "The requested feature does not exist.",
		TypeURI:    "urn:problem:plan/feature-not-found",
	}

	ErrFeatureInUse = &httpx.DomainError{
		Code:       "ErrFeatureInUse",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Feature In Use",
		Message:    "feature is referenced by one or more plans",
		Detail:     "Feature is in use by one or more plans.",
		TypeURI:    "urn:problem:plan/feature-in-use",
	}

	ErrInternal = &httpx.DomainError{
		Code:       "ErrInternal",
		HTTPStatus: http.StatusInternalServerError,
		Title:      "Internal Server Error",
		Message:    "internal error",
		Detail:     "Something went wrong. Please try again.",
		TypeURI:    "urn:problem:plan/internal",
	}
)
