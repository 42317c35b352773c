package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/profacthq/profact-api/internal/config"
	"github.com/profacthq/profact-api/internal/dedup"
	"github.com/profacthq/profact-api/internal/notification"
	"github.com/profacthq/profact-api/internal/token"
)

// Service defines the interface for the user module's business logic.
// It orchestrates the flow of data between the handlers and the repository,
// and contains the core business rules.
type Service interface {
	// Auth
	Signup(ctx context.Context, input SignupInput) (*User, error)
	Login(ctx context.Context, email, password string) (*AuthTokens, error)
	Logout(ctx context.Context, rawToken string) error
	Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error)
	CurrentUser(ctx context.Context, rawToken string) (*User, error)

	// Social login
	SocialLogin(ctx context.Context, profile SocialProfile) (*AuthTokens, *User, error)
	ExchangeCode(ctx context.Context, provider, code string) (*AuthTokens, *User, error)

	// Password management
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error

	// Email verification
	VerifyEmail(ctx context.Context, verificationToken string) (*VerifyResult, error)
	VerificationStatus(ctx context.Context, verificationToken string) (string, error)
	ResendVerification(ctx context.Context, userID string) error

	// Profile
	GetProfile(ctx context.Context, userID string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*User, error)
	SocialAccounts(ctx context.Context, userID string) ([]SocialAccount, error)
	Deactivate(ctx context.Context, userID string) error
}

// SignupInput carries the validated fields for account creation.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Phone    *string
}

// UpdateProfileInput carries optional profile changes; nil fields are left as is.
type UpdateProfileInput struct {
	Name         *string
	Username     *string
	Phone        *string
	ProfileImage *string
}

// VerifyResult is the outcome of redeeming a verification token.
type VerifyResult struct {
	Status string // "verified" or "already_verified"
	User   *User
}

const (
	VerifyStatusVerified        = "verified"
	VerifyStatusAlreadyVerified = "already_verified"
	VerifyStatusPending         = "pending"
	VerifyStatusInvalid         = "invalid"
)

// Verification tokens are valid for 24 hours after issuance; a consumed token
// keeps reporting success for a short replay window so double-clicked links do
// not show an error page.
const (
	verificationTTL          = 24 * time.Hour
	verificationReplayWindow = 2 * time.Hour
	passwordResetTTL         = time.Hour
)

// Exchanger turns a provider authorization code into a normalized profile.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (*SocialProfile, error)
}

// service implements the Service interface.
type service struct {
	repo        Repository
	logger      *slog.Logger
	config      *config.Config
	issuer      *token.Issuer
	validator   *token.Validator
	revocations token.RevocationStore
	codes       dedup.ClaimStore
	notifier    notification.Service
	exchangers  map[string]Exchanger
	now         func() time.Time
}

// Config holds the dependencies for the user service.
type Config struct {
	Repo        Repository
	Logger      *slog.Logger
	Config      *config.Config
	Issuer      *token.Issuer
	Validator   *token.Validator
	Revocations token.RevocationStore
	Codes       dedup.ClaimStore
	Notifier    notification.Service
	Exchangers  map[string]Exchanger
}

// NewService creates a new user service with the given dependencies.
func NewService(cfg *Config) Service {
	return &service{
		repo:        cfg.Repo,
		logger:      cfg.Logger,
		config:      cfg.Config,
		issuer:      cfg.Issuer,
		validator:   cfg.Validator,
		revocations: cfg.Revocations,
		codes:       cfg.Codes,
		notifier:    cfg.Notifier,
		exchangers:  cfg.Exchangers,
		now:         time.Now,
	}
}
