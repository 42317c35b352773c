package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/profacthq/profact-api/internal/notification"
	"github.com/profacthq/profact-api/internal/notification/templates"
	"github.com/profacthq/profact-api/internal/token"
)

// Signup handles the business logic for creating a new account. The
// verification email is sent before the user row is written, so a mail
// delivery failure leaves no half-created account behind.
func (s *service) Signup(ctx context.Context, input SignupInput) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	// Check if a user with the given email already exists.
	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, ErrNotFound) {
		s.logger.Error("failed to check email availability", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	verificationToken, err := generateSecureToken(32)
	if err != nil {
		s.logger.Error("failed to generate verification token", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	now := s.now()
	newUser := &User{
		ID:                 newID(),
		Name:               input.Name,
		Username:           usernameFromEmail(email),
		Email:              email,
		Phone:              input.Phone,
		PasswordHash:       &hashedPassword,
		NameAvatar:         nameAvatar(input.Name),
		Role:               RoleUser,
		IsActive:           true,
		IsVerified:         false,
		VerificationToken:  &verificationToken,
		VerificationSentAt: &now,
	}

	if err := s.sendVerificationEmail(ctx, newUser, verificationToken); err != nil {
		s.logger.Error("failed to send verification email", "email", email, "error", err)
		return nil, ErrEmailSendFailed.WithCause(err)
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		var de interface{ ProblemCode() string }
		if errors.As(err, &de) {
			return nil, err
		}
		s.logger.Error("failed to create user", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	rec := &VerificationRecord{
		ID:     newID(),
		Token:  verificationToken,
		UserID: newUser.ID,
	}
	if err := s.repo.InsertVerificationRecord(ctx, rec); err != nil {
		// The live token on the user row still works; the audit row only
		// affects replay reporting.
		s.logger.Warn("failed to record verification token", "user_id", newUser.ID, "error", err)
	}

	s.logger.Info("user registered", "user_id", newUser.ID)

	return newUser, nil
}

// Login authenticates with email and password and returns a token pair.
// Unknown emails, wrong passwords, social-only accounts and deactivated
// accounts all yield the same ErrInvalidCredentials.
func (s *service) Login(ctx context.Context, email, password string) (*AuthTokens, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to find user by email", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	if !checkPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user.ID)
	if err != nil {
		s.logger.Error("failed to issue tokens", "user_id", user.ID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return tokens, nil
}

// Logout revokes the presented access token. Revoking a token that is already
// revoked is a no-op, so repeated logouts with the same token succeed.
func (s *service) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return ErrUnauthorized
	}
	if err := s.revocations.Revoke(ctx, rawToken); err != nil {
		s.logger.Error("failed to revoke token", "error", err)
		return ErrInternal.WithCause(err)
	}
	return nil
}

// Refresh validates a refresh token through the full token pipeline, including
// the revocation check, and issues a fresh pair.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	user, err := s.CurrentUser(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(user.ID)
	if err != nil {
		s.logger.Error("failed to issue tokens", "user_id", user.ID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	return tokens, nil
}

// CurrentUser resolves a bearer token to its account. Checks run in a fixed
// order: presence, revocation, signature and expiry, subject, then the user
// lookup. Any failure maps to ErrUnauthorized except a deactivated account.
func (s *service) CurrentUser(ctx context.Context, rawToken string) (*User, error) {
	subject, err := s.validator.Validate(ctx, rawToken)
	if err != nil {
		if !errors.Is(err, token.ErrRevoked) && !errors.Is(err, token.ErrEmptyToken) {
			s.logger.Debug("token validation failed", "error", err)
		}
		return nil, ErrUnauthorized.WithCause(err)
	}

	user, err := s.repo.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized.WithCause(err)
		}
		s.logger.Error("failed to load user for token", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	return user, nil
}

func (s *service) issueTokens(userID string) (*AuthTokens, error) {
	access, err := s.issuer.IssueAccess(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issuer.IssueRefresh(userID)
	if err != nil {
		return nil, err
	}
	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

func (s *service) sendVerificationEmail(ctx context.Context, u *User, verificationToken string) error {
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", s.config.Frontend.URL, verificationToken)
	return notification.SendTemplate(ctx, s.notifier, templates.VerifyEmail, u.Email, templates.VerifyEmailData{
		Name:         u.Name,
		VerifyURL:    verifyURL,
		SupportEmail: s.config.SMTP.From,
	})
}
