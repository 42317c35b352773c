package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/profacthq/profact-api/internal/notification"
	"github.com/profacthq/profact-api/internal/notification/templates"
)

// ForgotPassword starts the reset flow. It never reports whether the email is
// registered; unknown and social-only accounts are logged and swallowed. The
// reset email is sent before the token is persisted, so a delivery failure
// leaves no dangling token.
func (s *service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		s.logger.Error("failed to find user for password reset", "error", err)
		return ErrInternal.WithCause(err)
	}

	if !user.HasPassword() {
		s.logger.Info("password reset requested for social-only account", "user_id", user.ID)
		return nil
	}

	resetToken, err := generateSecureToken(32)
	if err != nil {
		s.logger.Error("failed to generate reset token", "error", err)
		return ErrInternal.WithCause(err)
	}
	expires := s.now().Add(passwordResetTTL)

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.config.Frontend.URL, resetToken)
	err = notification.SendTemplate(ctx, s.notifier, templates.PasswordReset, user.Email, templates.PasswordResetData{
		Name:         user.Name,
		ResetURL:     resetURL,
		SupportEmail: s.config.SMTP.From,
	})
	if err != nil {
		s.logger.Error("failed to send password reset email", "user_id", user.ID, "error", err)
		return ErrEmailSendFailed.WithCause(err)
	}

	if err := s.repo.SetResetToken(ctx, user.ID, resetToken, expires); err != nil {
		s.logger.Error("failed to store reset token", "user_id", user.ID, "error", err)
		return ErrInternal.WithCause(err)
	}

	s.logger.Info("password reset email sent", "user_id", user.ID)

	return nil
}

// ResetPassword redeems a reset token and sets the new password. The token
// check and consumption happen in one statement, so a token can only ever be
// redeemed once regardless of concurrency.
func (s *service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	hashed, err := hashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return ErrInternal.WithCause(err)
	}

	user, err := s.repo.ConsumeResetToken(ctx, resetToken, hashed, s.now())
	if err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			return ErrInvalidResetToken
		}
		s.logger.Error("failed to consume reset token", "error", err)
		return ErrInternal.WithCause(err)
	}

	// The confirmation notice is best effort; the password is already changed.
	err = notification.SendTemplate(ctx, s.notifier, templates.PasswordResetDone, user.Email, templates.PasswordResetDoneData{
		Name: user.Name,
	})
	if err != nil {
		s.logger.Warn("failed to send reset confirmation email", "user_id", user.ID, "error", err)
	}

	s.logger.Info("password reset completed", "user_id", user.ID)

	return nil
}

// ChangePassword verifies the current password before storing a new one.
func (s *service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.logger.Error("failed to load user", "user_id", userID, "error", err)
		return ErrInternal.WithCause(err)
	}

	if !user.HasPassword() {
		return ErrSocialOnlyAccount
	}
	if !checkPasswordHash(currentPassword, user.PasswordHash) {
		return ErrWrongPassword
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return ErrInternal.WithCause(err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, hashed); err != nil {
		s.logger.Error("failed to update password", "user_id", userID, "error", err)
		return ErrInternal.WithCause(err)
	}

	s.logger.Info("password changed", "user_id", userID)

	return nil
}
