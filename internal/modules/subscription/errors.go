package subscription

import (
	"net/http"

	"github.com/profacthq/profact-api/internal/httpx"
)

var (
	ErrInvalidPlan = &httpx.DomainError{
		Code:       "ErrInvalidPlan",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Invalid Plan",
		Message:    "invalid plan selected",
		Detail:     "The selected plan does not exist or is not available.",
		TypeURI:    "urn:problem:subscription/invalid-plan",
	}

	ErrNoSubscription = &httpx.DomainError{
		Code:       "ErrNoSubscription",
		HTTPStatus: http.StatusBadRequest,
		Title:      "No Active Subscription",
		Message:    "no active subscription to cancel",
		Detail:     "There is no active subscription on this account.",
		TypeURI:    "urn:problem:subscription/no-subscription",
	}

	ErrInvalidSignature = &httpx.DomainError{
		Code:       "ErrInvalidSignature",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Invalid Signature",
		Message:    "webhook signature verification failed",
		Detail:     "Invalid signature.",
		TypeURI:    "urn:problem:subscription/invalid-signature",
	}

	ErrMalformedEvent = &httpx.DomainError{
		Code:       "ErrMalformedEvent",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Malformed Event",
		Message:    "webhook payload could not be processed",
		Detail:     "The event payload is malformed.",
		TypeURI:    "urn:problem:subscription/malformed-event",
	}

	ErrInternal = &httpx.DomainError{
		Code:       "ErrInternal",
		HTTPStatus: http.StatusInternalServerError,
		Title:      "Internal Server Error",
		Message:    "internal error",
		Detail:     "Something went wrong. Please try again.",
		TypeURI:    "urn:problem:subscription/internal",
	}
)
