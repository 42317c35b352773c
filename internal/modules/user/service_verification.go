package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/profacthq/profact-api/internal/notification"
	"github.com/profacthq/profact-api/internal/notification/templates"
)

// VerifyEmail redeems a verification token. A token that was consumed within
// the last two hours still reports success as already_verified, so a user who
// clicks the email link twice lands on the success page both times.
func (s *service) VerifyEmail(ctx context.Context, verificationToken string) (*VerifyResult, error) {
	rec, err := s.repo.FindVerificationRecord(ctx, verificationToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidVerificationToken
		}
		s.logger.Error("failed to look up verification token", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	now := s.now()

	if rec.Verified {
		if rec.VerifiedAt != nil && now.Sub(*rec.VerifiedAt) <= verificationReplayWindow {
			user, err := s.repo.FindByID(ctx, rec.UserID)
			if err != nil {
				return nil, ErrInvalidVerificationToken.WithCause(err)
			}
			return &VerifyResult{Status: VerifyStatusAlreadyVerified, User: user}, nil
		}
		return nil, ErrInvalidVerificationToken
	}

	if now.Sub(rec.CreatedAt) > verificationTTL {
		return nil, ErrInvalidVerificationToken.WithDetail("The verification link has expired. Please request a new one.")
	}

	user, err := s.repo.MarkVerified(ctx, verificationToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// The conditional update matched nothing: either a concurrent
			// request consumed the token between the audit lookup and the
			// update, or a resend superseded it. Re-check the record so the
			// race loser reports already_verified rather than an error.
			fresh, lookupErr := s.repo.FindVerificationRecord(ctx, verificationToken)
			if lookupErr == nil && fresh.Verified {
				winner, userErr := s.repo.FindByID(ctx, fresh.UserID)
				if userErr == nil {
					return &VerifyResult{Status: VerifyStatusAlreadyVerified, User: winner}, nil
				}
			}
			return nil, ErrInvalidVerificationToken
		}
		s.logger.Error("failed to mark user verified", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	if err := s.repo.MarkVerificationRecordUsed(ctx, verificationToken, now); err != nil {
		s.logger.Warn("failed to flag verification record", "user_id", user.ID, "error", err)
	}

	// Success notice is best effort; verification has already happened.
	err = notification.SendTemplate(ctx, s.notifier, templates.VerifySuccess, user.Email, templates.VerifySuccessData{
		Name:     user.Name,
		LoginURL: fmt.Sprintf("%s/login", s.config.Frontend.URL),
	})
	if err != nil {
		s.logger.Warn("failed to send verification success email", "user_id", user.ID, "error", err)
	}

	s.logger.Info("email verified", "user_id", user.ID)

	return &VerifyResult{Status: VerifyStatusVerified, User: user}, nil
}

// VerificationStatus reports the state of a token without consuming it.
// Unknown and expired tokens are a normal answer here, not an error.
func (s *service) VerificationStatus(ctx context.Context, verificationToken string) (string, error) {
	rec, err := s.repo.FindVerificationRecord(ctx, verificationToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return VerifyStatusInvalid, nil
		}
		s.logger.Error("failed to look up verification token", "error", err)
		return "", ErrInternal.WithCause(err)
	}

	if rec.Verified {
		return VerifyStatusAlreadyVerified, nil
	}
	if s.now().Sub(rec.CreatedAt) > verificationTTL {
		return VerifyStatusInvalid, nil
	}
	return VerifyStatusPending, nil
}

// ResendVerification issues a fresh token for the authenticated user and
// emails it. Sending happens before the new token replaces the old one, so a
// delivery failure leaves the previous link working.
func (s *service) ResendVerification(ctx context.Context, userID string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.logger.Error("failed to load user", "user_id", userID, "error", err)
		return ErrInternal.WithCause(err)
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}

	verificationToken, err := generateSecureToken(32)
	if err != nil {
		s.logger.Error("failed to generate verification token", "error", err)
		return ErrInternal.WithCause(err)
	}

	if err := s.sendVerificationEmail(ctx, user, verificationToken); err != nil {
		s.logger.Error("failed to send verification email", "user_id", user.ID, "error", err)
		return ErrEmailSendFailed.WithCause(err)
	}

	now := s.now()
	if err := s.repo.SetVerificationToken(ctx, user.ID, verificationToken, now); err != nil {
		s.logger.Error("failed to store verification token", "user_id", user.ID, "error", err)
		return ErrInternal.WithCause(err)
	}

	rec := &VerificationRecord{
		ID:     newID(),
		Token:  verificationToken,
		UserID: user.ID,
	}
	if err := s.repo.InsertVerificationRecord(ctx, rec); err != nil {
		s.logger.Warn("failed to record verification token", "user_id", user.ID, "error", err)
	}

	s.logger.Info("verification email resent", "user_id", user.ID)

	return nil
}
