package user

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/profacthq/profact-api/internal/contextx"
	"github.com/profacthq/profact-api/internal/httpx"
	"github.com/profacthq/profact-api/internal/validation"
)

// --- DTOs ---

// SignupRequest defines the structure for the account creation request body.
type SignupRequest struct {
	Body struct {
		Name     string  `json:"name" validate:"required,min=2"`
		Email    string  `json:"email" validate:"required,email"`
		Password string  `json:"password" validate:"required,min=8"`
		Phone    *string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
	}
}

// SignupResponse returns the created account.
type SignupResponse struct {
	Body struct {
		Message string      `json:"message"`
		User    userPayload `json:"user"`
	}
}

// LoginRequest accepts the raw body so both form-encoded credentials, as sent
// by OAuth2 password flow clients, and plain JSON are supported.
type LoginRequest struct {
	ContentType string `header:"Content-Type"`
	RawBody     []byte `contentType:"application/x-www-form-urlencoded"`
}

// TokenResponse returns a credential pair plus the account it belongs to.
type TokenResponse struct {
	Body tokenPayload
}

// RefreshRequest carries the refresh token to exchange.
type RefreshRequest struct {
	Body struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
}

// MessageResponse is a plain acknowledgment body.
type MessageResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func messageResponse(msg string) *MessageResponse {
	resp := &MessageResponse{}
	resp.Body.Message = msg
	return resp
}

// --- Handlers ---

// SignupHandler handles the account creation endpoint.
func (h *Handler) SignupHandler(ctx context.Context, input *SignupRequest) (*SignupResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	user, err := h.service.Signup(ctx, SignupInput{
		Name:     input.Body.Name,
		Email:    input.Body.Email,
		Password: input.Body.Password,
		Phone:    input.Body.Phone,
	})
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &SignupResponse{}
	resp.Body.Message = "Account created. Please check your email to verify your address."
	resp.Body.User = toUserPayload(user)
	return resp, nil
}

// LoginHandler handles the login endpoint. The body is parsed as a form when
// the client sends application/x-www-form-urlencoded and as JSON otherwise;
// the form uses the OAuth2 password flow field names (username, password).
func (h *Handler) LoginHandler(ctx context.Context, input *LoginRequest) (*TokenResponse, error) {
	email, password, err := parseLoginBody(input.ContentType, input.RawBody)
	if err != nil {
		return nil, httpx.ValidationProblem(ctx, "malformed login request body", nil)
	}
	if email == "" || password == "" {
		return nil, httpx.ValidationProblem(ctx, "username and password are required", map[string][]string{
			"username": {"required"},
			"password": {"required"},
		})
	}

	tokens, err := h.service.Login(ctx, email, password)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	user, err := h.service.CurrentUser(ctx, tokens.AccessToken)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return &TokenResponse{Body: toTokenPayload(tokens, user)}, nil
}

// parseLoginBody extracts credentials from either a form or JSON payload.
// The form field is "username" but carries the email address.
func parseLoginBody(contentType string, raw []byte) (email, password string, err error) {
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return "", "", err
		}
		return values.Get("username"), values.Get("password"), nil
	}

	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", "", err
	}
	if body.Email != "" {
		return body.Email, body.Password, nil
	}
	return body.Username, body.Password, nil
}

// LogoutHandler revokes the token that authenticated this request.
func (h *Handler) LogoutHandler(ctx context.Context, _ *struct{}) (*MessageResponse, error) {
	rawToken, _ := ctx.Value(contextx.BearerTokenKey).(string)

	if err := h.service.Logout(ctx, rawToken); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return messageResponse("Logged out successfully."), nil
}

// RefreshHandler exchanges a refresh token for a fresh pair.
func (h *Handler) RefreshHandler(ctx context.Context, input *RefreshRequest) (*TokenResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	tokens, err := h.service.Refresh(ctx, input.Body.RefreshToken)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	user, err := h.service.CurrentUser(ctx, tokens.AccessToken)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return &TokenResponse{Body: toTokenPayload(tokens, user)}, nil
}
