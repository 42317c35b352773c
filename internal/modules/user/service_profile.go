package user

import (
	"context"
	"errors"
)

// GetProfile returns the account for the given user ID.
func (s *service) GetProfile(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to load user", "user_id", userID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	return user, nil
}

// UpdateProfile applies the provided changes to the user's profile. Nil input
// fields are left untouched.
func (s *service) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to load user", "user_id", userID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	if input.Name != nil {
		user.Name = *input.Name
		user.NameAvatar = nameAvatar(user.Name)
	}
	if input.Username != nil && *input.Username != user.Username {
		taken, err := s.repo.FindByUsername(ctx, *input.Username)
		if err == nil && taken.ID != user.ID {
			return nil, ErrUsernameExists
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			s.logger.Error("failed to check username availability", "error", err)
			return nil, ErrInternal.WithCause(err)
		}
		user.Username = *input.Username
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.ProfileImage != nil {
		user.ProfileImage = input.ProfileImage
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameExists) {
			return nil, ErrUsernameExists
		}
		s.logger.Error("failed to update profile", "user_id", userID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	s.logger.Info("profile updated", "user_id", userID)

	return user, nil
}

// SocialAccounts lists the provider identities linked to the account.
func (s *service) SocialAccounts(ctx context.Context, userID string) ([]SocialAccount, error) {
	accounts, err := s.repo.ListSocialAccounts(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list social accounts", "user_id", userID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	return accounts, nil
}

// Deactivate disables the account. Tokens already issued keep working until
// they expire or are revoked, but every authenticated request re-checks the
// active flag, so access stops immediately.
func (s *service) Deactivate(ctx context.Context, userID string) error {
	if err := s.repo.SetActive(ctx, userID, false); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.logger.Error("failed to deactivate user", "user_id", userID, "error", err)
		return ErrInternal.WithCause(err)
	}

	s.logger.Info("account deactivated", "user_id", userID)

	return nil
}
