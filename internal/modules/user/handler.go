package user

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// Handler holds the dependencies for the user module's HTTP handlers.
type Handler struct {
	service Service
	logger  *slog.Logger
	auth    func(huma.Context, func(huma.Context))
	limit   func(huma.Context, func(huma.Context))
}

// NewHandler creates a new handler for the user module. auth guards
// bearer-protected routes; limit throttles the credential endpoints.
func NewHandler(service Service, logger *slog.Logger, auth, limit func(huma.Context, func(huma.Context))) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		auth:    auth,
		limit:   limit,
	}
}

// userPayload is the public representation of a user across responses.
type userPayload struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone,omitempty"`
	ProfileImage *string   `json:"profile_image,omitempty"`
	NameAvatar   string    `json:"name_avatar"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
}

func toUserPayload(u *User) userPayload {
	return userPayload{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		Email:        u.Email,
		Phone:        u.Phone,
		ProfileImage: u.ProfileImage,
		NameAvatar:   u.NameAvatar,
		Role:         u.Role,
		IsActive:     u.IsActive,
		IsVerified:   u.IsVerified,
		CreatedAt:    u.CreatedAt,
	}
}

// tokenPayload is the credential pair returned by login-family endpoints.
type tokenPayload struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	User         userPayload `json:"user"`
}

func toTokenPayload(t *AuthTokens, u *User) tokenPayload {
	return tokenPayload{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		User:         toUserPayload(u),
	}
}

// RegisterRoutes sets up the routing for the user module.
// It defines all the API endpoints and connects them to their respective handler functions.
func (h *Handler) RegisterRoutes(api huma.API) {
	// --- Authentication ---
	huma.Register(api, huma.Operation{
		OperationID:   "auth-signup",
		Method:        http.MethodPost,
		Path:          "/auth/signup",
		Summary:       "Create a new account",
		Tags:          []string{"auth"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   huma.Middlewares{h.limit},
	}, h.SignupHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Log in with email and password",
		Tags:        []string{"auth"},
		Middlewares: huma.Middlewares{h.limit},
	}, h.LoginHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-logout",
		Method:      http.MethodPost,
		Path:        "/auth/logout",
		Summary:     "Revoke the current access token",
		Tags:        []string{"auth"},
		Middlewares: huma.Middlewares{h.auth},
	}, h.LogoutHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-refresh-token",
		Method:      http.MethodPost,
		Path:        "/auth/refresh-token",
		Summary:     "Exchange a refresh token for a new pair",
		Tags:        []string{"auth"},
	}, h.RefreshHandler)

	// --- Social login ---
	huma.Register(api, huma.Operation{
		OperationID: "auth-social-login",
		Method:      http.MethodPost,
		Path:        "/auth/social-login",
		Summary:     "Log in with a pre-verified social profile",
		Tags:        []string{"auth"},
	}, h.SocialLoginHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-social-google",
		Method:      http.MethodPost,
		Path:        "/auth/social/google",
		Summary:     "Log in with a Google authorization code",
		Tags:        []string{"auth"},
	}, h.GoogleLoginHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-social-linkedin",
		Method:      http.MethodPost,
		Path:        "/auth/social/linkedin",
		Summary:     "Log in with a LinkedIn authorization code",
		Tags:        []string{"auth"},
	}, h.LinkedInLoginHandler)

	// --- Password management ---
	huma.Register(api, huma.Operation{
		OperationID: "auth-forgot-password",
		Method:      http.MethodPost,
		Path:        "/auth/forgot-password",
		Summary:     "Request a password reset email",
		Tags:        []string{"auth"},
	}, h.ForgotPasswordHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-reset-password",
		Method:      http.MethodPost,
		Path:        "/auth/reset-password",
		Summary:     "Reset password with a token",
		Tags:        []string{"auth"},
	}, h.ResetPasswordHandler)

	// --- Email verification ---
	huma.Register(api, huma.Operation{
		OperationID: "auth-verify-email",
		Method:      http.MethodPost,
		Path:        "/auth/verify-email",
		Summary:     "Verify an email address",
		Tags:        []string{"auth"},
	}, h.VerifyEmailHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-verify-email-status",
		Method:      http.MethodGet,
		Path:        "/auth/verify-email/{token}/status",
		Summary:     "Check the state of a verification token",
		Tags:        []string{"auth"},
	}, h.VerificationStatusHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-verify-email-resend",
		Method:      http.MethodPost,
		Path:        "/auth/verify-email/resend",
		Summary:     "Resend the verification email",
		Tags:        []string{"auth"},
		Middlewares: huma.Middlewares{h.auth},
	}, h.ResendVerificationHandler)

	// --- Profile ---
	huma.Register(api, huma.Operation{
		OperationID: "profile-get",
		Method:      http.MethodGet,
		Path:        "/profile",
		Summary:     "Get the current user's profile",
		Tags:        []string{"profile"},
		Middlewares: huma.Middlewares{h.auth},
	}, h.GetProfileHandler)

	huma.Register(api, huma.Operation{
		OperationID: "profile-update",
		Method:      http.MethodPatch,
		Path:        "/profile",
		Summary:     "Update the current user's profile",
		Tags:        []string{"profile"},
		Middlewares: huma.Middlewares{h.auth},
	}, h.UpdateProfileHandler)

	huma.Register(api, huma.Operation{
		OperationID: "profile-change-password",
		Method:      http.MethodPost,
		Path:        "/profile/change-password",
		Summary:     "Change the account password",
		Tags:        []string{"profile"},
		Middlewares: huma.Middlewares{h.auth},
	}, h.ChangePasswordHandler)

	huma.Register(api, huma.Operation{
		OperationID: "profile-deactivate",
		Method:      http.MethodPost,
		Path:        "/profile/deactivate",
		Summary:     "Deactivate the account",
		Tags:        []string{"profile"},
		Middlewares: huma.Middlewares{h.auth},
	}, h.DeactivateHandler)
}
