package user

import (
	"context"

	"github.com/profacthq/profact-api/internal/contextx"
	"github.com/profacthq/profact-api/internal/httpx"
	"github.com/profacthq/profact-api/internal/validation"
)

// ProfileResponse returns the authenticated user's account. Linked providers
// are included on reads so clients can show which sign-in methods work.
type ProfileResponse struct {
	Body struct {
		userPayload
		LinkedAccounts []linkedAccountPayload `json:"linked_accounts,omitempty"`
	}
}

// linkedAccountPayload is the public view of a linked social identity.
type linkedAccountPayload struct {
	Provider string `json:"provider"`
	Email    string `json:"email,omitempty"`
}

// UpdateProfileRequest carries optional profile changes.
type UpdateProfileRequest struct {
	Body struct {
		Name         *string `json:"name,omitempty" validate:"omitempty,min=2"`
		Username     *string `json:"username,omitempty" validate:"omitempty,min=3,max=30"`
		Phone        *string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
		ProfileImage *string `json:"profile_image,omitempty" validate:"omitempty,url"`
	}
}

// GetProfileHandler returns the account loaded by the auth middleware.
func (h *Handler) GetProfileHandler(ctx context.Context, _ *struct{}) (*ProfileResponse, error) {
	u, ok := ctx.Value(contextx.UserKey).(*User)
	if !ok {
		userID, _ := ctx.Value(contextx.UserIDKey).(string)
		loaded, err := h.service.GetProfile(ctx, userID)
		if err != nil {
			return nil, httpx.ToProblem(ctx, err)
		}
		u = loaded
	}

	resp := &ProfileResponse{}
	resp.Body.userPayload = toUserPayload(u)

	// Linked providers are informational; a lookup failure should not break
	// the profile read.
	accounts, err := h.service.SocialAccounts(ctx, u.ID)
	if err != nil {
		h.logger.Warn("failed to load linked accounts", "user_id", u.ID, "error", err)
	}
	for _, a := range accounts {
		resp.Body.LinkedAccounts = append(resp.Body.LinkedAccounts, linkedAccountPayload{
			Provider: a.Provider,
			Email:    a.Email,
		})
	}

	return resp, nil
}

// UpdateProfileHandler applies partial profile changes.
func (h *Handler) UpdateProfileHandler(ctx context.Context, input *UpdateProfileRequest) (*ProfileResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	userID, _ := ctx.Value(contextx.UserIDKey).(string)

	u, err := h.service.UpdateProfile(ctx, userID, UpdateProfileInput{
		Name:         input.Body.Name,
		Username:     input.Body.Username,
		Phone:        input.Body.Phone,
		ProfileImage: input.Body.ProfileImage,
	})
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &ProfileResponse{}
	resp.Body.userPayload = toUserPayload(u)
	return resp, nil
}

// DeactivateHandler disables the authenticated account.
func (h *Handler) DeactivateHandler(ctx context.Context, _ *struct{}) (*MessageResponse, error) {
	userID, _ := ctx.Value(contextx.UserIDKey).(string)

	if err := h.service.Deactivate(ctx, userID); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return messageResponse("Account deactivated."), nil
}
