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

func TestSignupSuccess(t *testing.T) {
	repo := new(mockRepository)
	notifier := new(testutil.MockNotifier)
	svc := newTestService(t, repo, notifier, nil)

	repo.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, ErrNotFound)
	notifier.On("SendScenario", mock.Anything, "new@example.com", "user.verify_email", mock.Anything).Return(nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).Return(nil)
	repo.On("InsertVerificationRecord", mock.Anything, mock.AnythingOfType("*user.VerificationRecord")).Return(nil)

	u, err := svc.Signup(context.Background(), SignupInput{
		Name:     "New User",
		Email:    "New@Example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", u.Email, "email must be normalized to lower case")
	assert.Equal(t, RoleUser, u.Role)
	assert.False(t, u.IsVerified)
	assert.True(t, u.IsActive)
	assert.True(t, u.HasPassword())
	assert.NotNil(t, u.VerificationToken)
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

// A mail delivery failure must abort signup before anything is persisted.
func TestSignupEmailFailureAbortsCreate(t *testing.T) {
	repo := new(mockRepository)
	notifier := new(testutil.MockNotifier)
	svc := newTestService(t, repo, notifier, nil)

	repo.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, ErrNotFound)
	notifier.On("SendScenario", mock.Anything, "new@example.com", "user.verify_email", mock.Anything).
		Return(errors.New("smtp unavailable"))

	_, err := svc.Signup(context.Background(), SignupInput{
		Name:     "New User",
		Email:    "new@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrEmailSendFailed)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignupDuplicateEmail(t *testing.T) {
	repo := new(mockRepository)
	notifier := new(testutil.MockNotifier)
	svc := newTestService(t, repo, notifier, nil)

	repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(activeUser(t), nil)

	_, err := svc.Signup(context.Background(), SignupInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
	notifier.AssertNotCalled(t, "SendScenario", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginSuccess(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)
	u := activeUser(t)

	repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(u, nil)

	tokens, err := svc.Login(context.Background(), "ada@example.com", "correct horse")
	require.NoError(t, err)

	assert.Equal(t, "bearer", tokens.TokenType)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	subject, err := svc.validator.Validate(context.Background(), tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, subject)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)

	repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(activeUser(t), nil)

	_, err := svc.Login(context.Background(), "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)

	repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, ErrNotFound)

	_, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// A social-only account has no password hash; a password attempt against it
// must fail exactly like a wrong password, revealing nothing.
func TestLoginSocialOnlyAccount(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)

	u := activeUser(t)
	u.PasswordHash = nil
	repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(u, nil)

	_, err := svc.Login(context.Background(), "ada@example.com", "anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)

	u := activeUser(t)
	u.IsActive = false
	repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(u, nil)

	_, err := svc.Login(context.Background(), "ada@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)
	u := activeUser(t)

	repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(u, nil)
	repo.On("FindByID", mock.Anything, u.ID).Return(u, nil)

	tokens, err := svc.Login(context.Background(), "ada@example.com", "correct horse")
	require.NoError(t, err)

	_, err = svc.CurrentUser(context.Background(), tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), tokens.AccessToken))

	_, err = svc.CurrentUser(context.Background(), tokens.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Logging out again with the same token is benign.
	assert.NoError(t, svc.Logout(context.Background(), tokens.AccessToken))
}

func TestRefreshIssuesNewPair(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)
	u := activeUser(t)

	repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(u, nil)
	repo.On("FindByID", mock.Anything, u.ID).Return(u, nil)

	tokens, err := svc.Login(context.Background(), "ada@example.com", "correct horse")
	require.NoError(t, err)

	fresh, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)
	assert.NotEmpty(t, fresh.RefreshToken)
}

func TestRefreshRevokedTokenFails(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)
	u := activeUser(t)

	repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(u, nil)

	tokens, err := svc.Login(context.Background(), "ada@example.com", "correct horse")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), tokens.RefreshToken))

	_, err = svc.Refresh(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCurrentUserDeletedAccount(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)

	tok, err := svc.issuer.IssueAccess("gone-user")
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, "gone-user").Return(nil, ErrNotFound)

	_, err = svc.CurrentUser(context.Background(), tok)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCurrentUserDeactivatedAccount(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)

	u := activeUser(t)
	u.IsActive = false

	tok, err := svc.issuer.IssueAccess(u.ID)
	require.NoError(t, err)
	repo.On("FindByID", mock.Anything, u.ID).Return(u, nil)

	_, err = svc.CurrentUser(context.Background(), tok)
	assert.ErrorIs(t, err, ErrAccountDisabled)
}
