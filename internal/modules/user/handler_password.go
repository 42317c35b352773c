package user

import (
	"context"

	"github.com/profacthq/profact-api/internal/contextx"
	"github.com/profacthq/profact-api/internal/httpx"
	"github.com/profacthq/profact-api/internal/validation"
)

// ForgotPasswordRequest starts the reset flow for an email address.
type ForgotPasswordRequest struct {
	Body struct {
		Email string `json:"email" validate:"required,email"`
	}
}

// ResetPasswordRequest redeems a reset token with a new password.
type ResetPasswordRequest struct {
	Body struct {
		Token       string `json:"token" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=8"`
	}
}

// ChangePasswordRequest replaces the password of the authenticated account.
type ChangePasswordRequest struct {
	Body struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8"`
	}
}

// ForgotPasswordHandler always acknowledges with the same message, whether or
// not the email belongs to an account.
func (h *Handler) ForgotPasswordHandler(ctx context.Context, input *ForgotPasswordRequest) (*MessageResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	if err := h.service.ForgotPassword(ctx, input.Body.Email); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return messageResponse("If an account exists for this email, a reset link has been sent."), nil
}

// ResetPasswordHandler redeems a reset token.
func (h *Handler) ResetPasswordHandler(ctx context.Context, input *ResetPasswordRequest) (*MessageResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	if err := h.service.ResetPassword(ctx, input.Body.Token, input.Body.NewPassword); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return messageResponse("Password has been reset. You can now log in."), nil
}

// ChangePasswordHandler changes the password of the authenticated account.
func (h *Handler) ChangePasswordHandler(ctx context.Context, input *ChangePasswordRequest) (*MessageResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	userID, _ := ctx.Value(contextx.UserIDKey).(string)

	if err := h.service.ChangePassword(ctx, userID, input.Body.CurrentPassword, input.Body.NewPassword); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return messageResponse("Password changed successfully."), nil
}
