package user

import (
	"net/http"

	"github.com/profacthq/profact-api/internal/httpx"
)

// Sentinel domain errors for the user module. Services return these (possibly
// via WithCause) and the HTTP layer converts them to RFC 7807 problems.
var (
	ErrNotFound = &httpx.DomainError{
		Code:       "ErrUserNotFound",
		HTTPStatus: http.StatusNotFound,
		Title:      "User Not Found",
		Message:    "user not found",
		Detail:     "The requested user does not exist.",
		TypeURI:    "urn:problem:user/not-found",
	}

	// ErrInvalidCredentials deliberately carries the same message for a wrong
	// password, an unknown email and a social-only account, so responses do
	// not reveal which case occurred.
	ErrInvalidCredentials = &httpx.DomainError{
		Code:       "ErrInvalidCredentials",
		HTTPStatus: http.StatusUnauthorized,
		Title:      "Invalid Credentials",
		Message:    "invalid email or password",
		Detail:     "Incorrect email or password.",
		TypeURI:    "urn:problem:user/invalid-credentials",
	}

	ErrUnauthorized = &httpx.DomainError{
		Code:       "ErrUnauthorized",
		HTTPStatus: http.StatusUnauthorized,
		Title:      "Unauthorized",
		Message:    "authentication required",
		Detail:     "Could not validate credentials.",
		TypeURI:    "urn:problem:user/unauthorized",
	}

	ErrAccountDisabled = &httpx.DomainError{
		Code:       "ErrAccountDisabled",
		HTTPStatus: http.StatusUnauthorized,
		Title:      "Account Disabled",
		Message:    "account is deactivated",
		Detail:     "This account has been deactivated.",
		TypeURI:    "urn:problem:user/account-disabled",
	}

	ErrEmailNotVerified = &httpx.DomainError{
		Code:       "ErrEmailNotVerified",
		HTTPStatus: http.StatusForbidden,
		Title:      "Email Not Verified",
		Message:    "email address is not verified",
		Detail:     "Please verify your email address before continuing.",
		TypeURI:    "urn:problem:user/email-not-verified",
	}

	ErrEmailExists = &httpx.DomainError{
		Code:       "ErrEmailExists",
		HTTPStatus: http.StatusConflict,
		Title:      "Email Already Registered",
		Message:    "email already registered",
		Detail:     "An account with this email already exists.",
		TypeURI:    "urn:problem:user/email-exists",
	}

	ErrUsernameExists = &httpx.DomainError{
		Code:       "ErrUsernameExists",
		HTTPStatus: http.StatusConflict,
		Title:      "Username Taken",
		Message:    "username already taken",
		Detail:     "This username is already taken.",
		TypeURI:    "urn:problem:user/username-exists",
	}

	// ErrSocialOnlyAccount is internal. The forgot-password flow logs it and
	// still returns the generic success response to the caller.
	ErrSocialOnlyAccount = &httpx.DomainError{
		Code:       "ErrSocialOnlyAccount",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Social Account",
		Message:    "account has no password set",
		Detail:     "This account signs in through a social provider.",
		TypeURI:    "urn:problem:user/social-only-account",
	}

	ErrInvalidResetToken = &httpx.DomainError{
		Code:       "ErrInvalidResetToken",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Invalid Reset Token",
		Message:    "invalid or expired password reset token",
		Detail:     "The password reset link is invalid or has expired.",
		TypeURI:    "urn:problem:user/invalid-reset-token",
	}

	ErrInvalidVerificationToken = &httpx.DomainError{
		Code:       "ErrInvalidVerificationToken",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Invalid Verification Token",
		Message:    "invalid or expired verification token",
		Detail:     "The verification link is invalid or has expired.",
		TypeURI:    "urn:problem:user/invalid-verification-token",
	}

	ErrAlreadyVerified = &httpx.DomainError{
		Code:       "ErrAlreadyVerified",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Already Verified",
		Message:    "email is already verified",
		Detail:     "This email address has already been verified.",
		TypeURI:    "urn:problem:user/already-verified",
	}

	ErrWrongPassword = &httpx.DomainError{
		Code:       "ErrWrongPassword",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Wrong Password",
		Message:    "current password is incorrect",
		Detail:     "The current password you entered is incorrect.",
		TypeURI:    "urn:problem:user/wrong-password",
	}

	// ErrCodeAlreadyUsed is returned when a second request presents an OAuth
	// authorization code that a concurrent request already claimed.
	ErrCodeAlreadyUsed = &httpx.DomainError{
		Code:       "ErrCodeAlreadyUsed",
		HTTPStatus: http.StatusConflict,
		Title:      "Authorization Code In Use",
		Message:    "authorization code is already being processed",
		Detail:     "This sign-in request is already being processed.",
		TypeURI:    "urn:problem:user/code-already-used",
	}

	ErrOAuthExchangeFailed = &httpx.DomainError{
		Code:       "ErrOAuthExchangeFailed",
		HTTPStatus: http.StatusUnauthorized,
		Title:      "Social Sign-In Failed",
		Message:    "could not exchange authorization code",
		Detail:     "Could not complete sign-in with the provider.",
		TypeURI:    "urn:problem:user/oauth-exchange-failed",
	}

	ErrOAuthEmailMissing = &httpx.DomainError{
		Code:       "ErrOAuthEmailMissing",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Email Unavailable",
		Message:    "provider did not return an email address",
		Detail:     "The provider did not share an email address for this account.",
		TypeURI:    "urn:problem:user/oauth-email-missing",
	}

	ErrTooManyRequests = &httpx.DomainError{
		Code:       "ErrTooManyRequests",
		HTTPStatus: http.StatusTooManyRequests,
		Title:      "Too Many Requests",
		Message:    "rate limit exceeded",
		Detail:     "Too many attempts. Please try again later.",
		TypeURI:    "urn:problem:user/too-many-requests",
	}

	ErrEmailSendFailed = &httpx.DomainError{
		Code:       "ErrEmailSendFailed",
		HTTPStatus: http.StatusInternalServerError,
		Title:      "Email Delivery Failed",
		Message:    "could not send email",
		Detail:     "We could not send the email. Please try again.",
		TypeURI:    "urn:problem:user/email-send-failed",
	}

	ErrInternal = &httpx.DomainError{
		Code:       "ErrInternal",
		HTTPStatus: http.StatusInternalServerError,
		Title:      "Internal Server Error",
		Message:    "internal error",
		Detail:     "Something went wrong. Please try again.",
		TypeURI:    "urn:problem:user/internal",
	}
)
