package user

import (
	"context"

	"github.com/profacthq/profact-api/internal/httpx"
	"github.com/profacthq/profact-api/internal/validation"
)

// SocialLoginRequest carries a provider identity that a trusted frontend SDK
// has already verified.
type SocialLoginRequest struct {
	Body struct {
		Provider       string `json:"provider" validate:"required,oneof=google linkedin"`
		ProviderUserID string `json:"provider_user_id" validate:"required"`
		Email          string `json:"email" validate:"required,email"`
		Name           string `json:"name" validate:"omitempty,min=1"`
	}
}

// CodeExchangeRequest carries a single-use provider authorization code.
type CodeExchangeRequest struct {
	Body struct {
		Code string `json:"code" validate:"required"`
	}
}

// SocialLoginHandler signs in a pre-verified social profile.
func (h *Handler) SocialLoginHandler(ctx context.Context, input *SocialLoginRequest) (*TokenResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	tokens, user, err := h.service.SocialLogin(ctx, SocialProfile{
		Provider:       input.Body.Provider,
		ProviderUserID: input.Body.ProviderUserID,
		Email:          input.Body.Email,
		Name:           input.Body.Name,
	})
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return &TokenResponse{Body: toTokenPayload(tokens, user)}, nil
}

// GoogleLoginHandler completes the Google authorization code flow.
func (h *Handler) GoogleLoginHandler(ctx context.Context, input *CodeExchangeRequest) (*TokenResponse, error) {
	return h.exchangeCode(ctx, ProviderGoogle, input)
}

// LinkedInLoginHandler completes the LinkedIn authorization code flow.
func (h *Handler) LinkedInLoginHandler(ctx context.Context, input *CodeExchangeRequest) (*TokenResponse, error) {
	return h.exchangeCode(ctx, ProviderLinkedIn, input)
}

func (h *Handler) exchangeCode(ctx context.Context, provider string, input *CodeExchangeRequest) (*TokenResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	tokens, user, err := h.service.ExchangeCode(ctx, provider, input.Body.Code)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return &TokenResponse{Body: toTokenPayload(tokens, user)}, nil
}
