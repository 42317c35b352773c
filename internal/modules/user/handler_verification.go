package user

import (
	"context"

	"github.com/profacthq/profact-api/internal/contextx"
	"github.com/profacthq/profact-api/internal/httpx"
	"github.com/profacthq/profact-api/internal/validation"
)

// VerifyEmailRequest redeems a verification token.
type VerifyEmailRequest struct {
	Body struct {
		Token string `json:"token" validate:"required"`
	}
}

// VerifyEmailResponse reports the verification outcome.
type VerifyEmailResponse struct {
	Body struct {
		Status string      `json:"status"`
		User   userPayload `json:"user"`
	}
}

// VerificationStatusRequest checks a token without consuming it.
type VerificationStatusRequest struct {
	Token string `path:"token"`
}

// VerificationStatusResponse reports a token's current state.
type VerificationStatusResponse struct {
	Body struct {
		Status string `json:"status"`
	}
}

// VerifyEmailHandler redeems a verification token. A recently consumed token
// still reports success so double-clicked email links do not error.
func (h *Handler) VerifyEmailHandler(ctx context.Context, input *VerifyEmailRequest) (*VerifyEmailResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	result, err := h.service.VerifyEmail(ctx, input.Body.Token)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &VerifyEmailResponse{}
	resp.Body.Status = result.Status
	resp.Body.User = toUserPayload(result.User)
	return resp, nil
}

// VerificationStatusHandler reports the state of a token without consuming it.
func (h *Handler) VerificationStatusHandler(ctx context.Context, input *VerificationStatusRequest) (*VerificationStatusResponse, error) {
	status, err := h.service.VerificationStatus(ctx, input.Token)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &VerificationStatusResponse{}
	resp.Body.Status = status
	return resp, nil
}

// ResendVerificationHandler issues a fresh verification email for the
// authenticated account.
func (h *Handler) ResendVerificationHandler(ctx context.Context, _ *struct{}) (*MessageResponse, error) {
	userID, _ := ctx.Value(contextx.UserIDKey).(string)

	if err := h.service.ResendVerification(ctx, userID); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return messageResponse("Verification email sent."), nil
}
