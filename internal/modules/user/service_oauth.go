package user

import (
	"context"
	"errors"
	"strings"
)

// SocialLogin signs a provider identity in, creating or linking the local
// account as needed. Accounts created this way have no password and are
// treated as email-verified, since the provider already owns the address.
func (s *service) SocialLogin(ctx context.Context, profile SocialProfile) (*AuthTokens, *User, error) {
	if profile.Email == "" {
		return nil, nil, ErrOAuthEmailMissing
	}
	email := strings.ToLower(strings.TrimSpace(profile.Email))

	user, err := s.repo.FindBySocialAccount(ctx, profile.Provider, profile.ProviderUserID)
	switch {
	case err == nil:
		// Known identity.
	case errors.Is(err, ErrNotFound):
		user, err = s.linkOrCreate(ctx, profile, email)
		if err != nil {
			return nil, nil, err
		}
	default:
		s.logger.Error("failed to look up social account", "error", err)
		return nil, nil, ErrInternal.WithCause(err)
	}

	if !user.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	tokens, err := s.issueTokens(user.ID)
	if err != nil {
		s.logger.Error("failed to issue tokens", "user_id", user.ID, "error", err)
		return nil, nil, ErrInternal.WithCause(err)
	}

	s.logger.Info("social login", "user_id", user.ID, "provider", profile.Provider)

	return tokens, user, nil
}

// linkOrCreate attaches the provider identity to an existing account with the
// same email, or provisions a fresh account.
func (s *service) linkOrCreate(ctx context.Context, profile SocialProfile, email string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Error("failed to find user by email", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	if errors.Is(err, ErrNotFound) {
		name := profile.Name
		if name == "" {
			name = email
		}
		user = &User{
			ID:         newID(),
			Name:       name,
			Username:   usernameFromEmail(email),
			Email:      email,
			NameAvatar: nameAvatar(name),
			Role:       RoleUser,
			IsActive:   true,
			IsVerified: true,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			s.logger.Error("failed to create social user", "error", err)
			return nil, ErrInternal.WithCause(err)
		}
		s.logger.Info("user created via social login", "user_id", user.ID, "provider", profile.Provider)
	} else if !user.IsVerified {
		// The provider vouches for the address.
		if err := s.repo.MarkVerifiedByID(ctx, user.ID); err != nil {
			s.logger.Warn("failed to mark user verified", "user_id", user.ID, "error", err)
		} else {
			user.IsVerified = true
		}
	}

	acct := &SocialAccount{
		ID:             newID(),
		UserID:         user.ID,
		Provider:       profile.Provider,
		ProviderUserID: profile.ProviderUserID,
		Email:          email,
		Name:           profile.Name,
	}
	if err := s.repo.AddSocialAccount(ctx, acct); err != nil {
		s.logger.Error("failed to link social account", "user_id", user.ID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	return user, nil
}

// ExchangeCode completes a provider code flow. The code is claimed in the
// dedup store before the provider is contacted, so a duplicate request racing
// on the same single-use code fails fast instead of burning it twice.
func (s *service) ExchangeCode(ctx context.Context, provider, code string) (*AuthTokens, *User, error) {
	exchanger, ok := s.exchangers[provider]
	if !ok {
		return nil, nil, ErrOAuthExchangeFailed.WithDetail("Unsupported sign-in provider.")
	}

	claimed, err := s.codes.TryClaim(ctx, code)
	if err != nil {
		s.logger.Error("failed to claim authorization code", "error", err)
		return nil, nil, ErrInternal.WithCause(err)
	}
	if !claimed {
		return nil, nil, ErrCodeAlreadyUsed
	}

	profile, err := exchanger.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("authorization code exchange failed", "provider", provider, "error", err)
		return nil, nil, ErrOAuthExchangeFailed.WithCause(err)
	}

	return s.SocialLogin(ctx, *profile)
}
