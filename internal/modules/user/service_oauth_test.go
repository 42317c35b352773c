package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/profacthq/profact-api/internal/testutil"
)

func googleProfile() SocialProfile {
	return SocialProfile{
		Provider:       ProviderGoogle,
		ProviderUserID: "g-123",
		Email:          "ada@example.com",
		Name:           "Ada Lovelace",
	}
}

func TestSocialLoginKnownIdentity(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)
	u := activeUser(t)

	repo.On("FindBySocialAccount", mock.Anything, ProviderGoogle, "g-123").Return(u, nil)

	tokens, got, err := svc.SocialLogin(context.Background(), googleProfile())
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSocialLoginCreatesAccount(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)

	repo.On("FindBySocialAccount", mock.Anything, ProviderGoogle, "g-123").Return(nil, ErrNotFound)
	repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, ErrNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).Return(nil)
	repo.On("AddSocialAccount", mock.Anything, mock.AnythingOfType("*user.SocialAccount")).Return(nil)

	_, got, err := svc.SocialLogin(context.Background(), googleProfile())
	require.NoError(t, err)

	assert.True(t, got.IsVerified, "provider-backed accounts are verified from the start")
	assert.False(t, got.HasPassword())
	assert.Equal(t, "ada@example.com", got.Email)
	repo.AssertExpectations(t)
}

// Signing in with a provider whose email matches an existing local account
// links the identity instead of creating a duplicate, and vouches for an
// unverified address.
func TestSocialLoginLinksExistingAccount(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)

	u := activeUser(t)
	u.IsVerified = false

	repo.On("FindBySocialAccount", mock.Anything, ProviderGoogle, "g-123").Return(nil, ErrNotFound)
	repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(u, nil)
	repo.On("MarkVerifiedByID", mock.Anything, u.ID).Return(nil)
	repo.On("AddSocialAccount", mock.Anything, mock.MatchedBy(func(a *SocialAccount) bool {
		return a.UserID == u.ID && a.Provider == ProviderGoogle
	})).Return(nil)

	_, got, err := svc.SocialLogin(context.Background(), googleProfile())
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.IsVerified)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestSocialLoginMissingEmail(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)

	p := googleProfile()
	p.Email = ""

	_, _, err := svc.SocialLogin(context.Background(), p)
	assert.ErrorIs(t, err, ErrOAuthEmailMissing)
}

func TestSocialLoginDeactivatedAccount(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)

	u := activeUser(t)
	u.IsActive = false
	repo.On("FindBySocialAccount", mock.Anything, ProviderGoogle, "g-123").Return(u, nil)

	_, _, err := svc.SocialLogin(context.Background(), googleProfile())
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestExchangeCodeSuccess(t *testing.T) {
	repo := new(mockRepository)
	ex := new(mockExchanger)
	svc := newTestService(t, repo, new(testutil.MockNotifier), map[string]Exchanger{ProviderGoogle: ex})
	u := activeUser(t)

	p := googleProfile()
	ex.On("Exchange", mock.Anything, "auth-code").Return(&p, nil)
	repo.On("FindBySocialAccount", mock.Anything, ProviderGoogle, "g-123").Return(u, nil)

	tokens, got, err := svc.ExchangeCode(context.Background(), ProviderGoogle, "auth-code")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NotEmpty(t, tokens.AccessToken)
}

// A second request with the same single-use code must be rejected before the
// provider is contacted.
func TestExchangeCodeDuplicate(t *testing.T) {
	repo := new(mockRepository)
	ex := new(mockExchanger)
	svc := newTestService(t, repo, new(testutil.MockNotifier), map[string]Exchanger{ProviderGoogle: ex})
	u := activeUser(t)

	p := googleProfile()
	ex.On("Exchange", mock.Anything, "auth-code").Return(&p, nil).Once()
	repo.On("FindBySocialAccount", mock.Anything, ProviderGoogle, "g-123").Return(u, nil)

	_, _, err := svc.ExchangeCode(context.Background(), ProviderGoogle, "auth-code")
	require.NoError(t, err)

	_, _, err = svc.ExchangeCode(context.Background(), ProviderGoogle, "auth-code")
	assert.ErrorIs(t, err, ErrCodeAlreadyUsed)
	ex.AssertNumberOfCalls(t, "Exchange", 1)
}

func TestExchangeCodeUnsupportedProvider(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)

	_, _, err := svc.ExchangeCode(context.Background(), "github", "auth-code")
	assert.ErrorIs(t, err, ErrOAuthExchangeFailed)
}

func TestExchangeCodeProviderFailure(t *testing.T) {
	repo := new(mockRepository)
	ex := new(mockExchanger)
	svc := newTestService(t, repo, new(testutil.MockNotifier), map[string]Exchanger{ProviderGoogle: ex})

	ex.On("Exchange", mock.Anything, "bad-code").Return(nil, errors.New("invalid_grant"))

	_, _, err := svc.ExchangeCode(context.Background(), ProviderGoogle, "bad-code")
	assert.ErrorIs(t, err, ErrOAuthExchangeFailed)
}
