package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/profacthq/profact-api/internal/testutil"
)

func pendingRecord(userID string, createdAt time.Time) *VerificationRecord {
	return &VerificationRecord{
		ID:        "rec-1",
		Token:     "verify-token",
		UserID:    userID,
		CreatedAt: createdAt,
	}
}

func TestVerifyEmailSuccess(t *testing.T) {
	repo := new(mockRepository)
	notifier := new(testutil.MockNotifier)
	svc := newTestService(t, repo, notifier, nil)

	base := time.Now()
	svc.now = func() time.Time { return base }

	u := activeUser(t)
	u.IsVerified = false

	repo.On("FindVerificationRecord", mock.Anything, "verify-token").
		Return(pendingRecord(u.ID, base.Add(-time.Hour)), nil)
	repo.On("MarkVerified", mock.Anything, "verify-token").Return(u, nil)
	repo.On("MarkVerificationRecordUsed", mock.Anything, "verify-token", base).Return(nil)
	notifier.On("SendScenario", mock.Anything, u.Email, "user.verify_success", mock.Anything).Return(nil)

	res, err := svc.VerifyEmail(context.Background(), "verify-token")
	require.NoError(t, err)
	assert.Equal(t, VerifyStatusVerified, res.Status)
	assert.Equal(t, u.ID, res.User.ID)
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

// Clicking the link a second time shortly after shows success, not an error.
func TestVerifyEmailRecentReplay(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)

	base := time.Now()
	svc.now = func() time.Time { return base }

	u := activeUser(t)
	verifiedAt := base.Add(-time.Hour)
	rec := pendingRecord(u.ID, base.Add(-3*time.Hour))
	rec.Verified = true
	rec.VerifiedAt = &verifiedAt

	repo.On("FindVerificationRecord", mock.Anything, "verify-token").Return(rec, nil)
	repo.On("FindByID", mock.Anything, u.ID).Return(u, nil)

	res, err := svc.VerifyEmail(context.Background(), "verify-token")
	require.NoError(t, err)
	assert.Equal(t, VerifyStatusAlreadyVerified, res.Status)
	repo.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything)
}

func TestVerifyEmailStaleReplay(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)

	base := time.Now()
	svc.now = func() time.Time { return base }

	u := activeUser(t)
	verifiedAt := base.Add(-3 * time.Hour)
	rec := pendingRecord(u.ID, base.Add(-5*time.Hour))
	rec.Verified = true
	rec.VerifiedAt = &verifiedAt

	repo.On("FindVerificationRecord", mock.Anything, "verify-token").Return(rec, nil)

	_, err := svc.VerifyEmail(context.Background(), "verify-token")
	assert.ErrorIs(t, err, ErrInvalidVerificationToken)
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)

	base := time.Now()
	svc.now = func() time.Time { return base }

	repo.On("FindVerificationRecord", mock.Anything, "verify-token").
		Return(pendingRecord("user-1", base.Add(-25*time.Hour)), nil)

	_, err := svc.VerifyEmail(context.Background(), "verify-token")
	assert.ErrorIs(t, err, ErrInvalidVerificationToken)
	repo.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything)
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)

	repo.On("FindVerificationRecord", mock.Anything, "bogus").Return(nil, ErrNotFound)

	_, err := svc.VerifyEmail(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrInvalidVerificationToken)
}

func TestVerificationStatus(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)

	base := time.Now()
	svc.now = func() time.Time { return base }

	fresh := pendingRecord("user-1", base.Add(-time.Hour))
	repo.On("FindVerificationRecord", mock.Anything, "fresh").Return(fresh, nil).Once()

	status, err := svc.VerificationStatus(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, VerifyStatusPending, status)

	consumed := pendingRecord("user-1", base.Add(-time.Hour))
	consumed.Verified = true
	repo.On("FindVerificationRecord", mock.Anything, "consumed").Return(consumed, nil).Once()

	status, err = svc.VerificationStatus(context.Background(), "consumed")
	require.NoError(t, err)
	assert.Equal(t, VerifyStatusAlreadyVerified, status)

	stale := pendingRecord("user-1", base.Add(-25*time.Hour))
	repo.On("FindVerificationRecord", mock.Anything, "stale").Return(stale, nil).Once()

	status, err = svc.VerificationStatus(context.Background(), "stale")
	require.NoError(t, err)
	assert.Equal(t, VerifyStatusInvalid, status)

	repo.On("FindVerificationRecord", mock.Anything, "bogus").Return(nil, ErrNotFound).Once()

	status, err = svc.VerificationStatus(context.Background(), "bogus")
	require.NoError(t, err)
	assert.Equal(t, VerifyStatusInvalid, status, "unknown tokens are a status, not an error")
}

// Two requests redeem the same token concurrently: the conditional update
// picks one winner, and the loser must still see already_verified rather than
// an error page.
func TestVerifyEmailConcurrentLoser(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)

	base := time.Now()
	svc.now = func() time.Time { return base }

	u := activeUser(t)

	// The loser's first lookup sees the record before the winner flags it.
	stale := pendingRecord(u.ID, base.Add(-time.Hour))
	verifiedAt := base
	flagged := pendingRecord(u.ID, base.Add(-time.Hour))
	flagged.Verified = true
	flagged.VerifiedAt = &verifiedAt

	repo.On("FindVerificationRecord", mock.Anything, "verify-token").Return(stale, nil).Once()
	repo.On("MarkVerified", mock.Anything, "verify-token").Return(nil, ErrNotFound)
	repo.On("FindVerificationRecord", mock.Anything, "verify-token").Return(flagged, nil).Once()
	repo.On("FindByID", mock.Anything, u.ID).Return(u, nil)

	res, err := svc.VerifyEmail(context.Background(), "verify-token")
	require.NoError(t, err)
	assert.Equal(t, VerifyStatusAlreadyVerified, res.Status)
	assert.Equal(t, u.ID, res.User.ID)
	repo.AssertExpectations(t)
}

// When the zero-row update was caused by a resend superseding the token, the
// re-check finds the record still unverified and the token stays invalid.
func TestVerifyEmailSupersededToken(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(t, repo, new(testutil.MockNotifier), nil)

	base := time.Now()
	svc.now = func() time.Time { return base }

	stale := pendingRecord("user-1", base.Add(-time.Hour))
	repo.On("FindVerificationRecord", mock.Anything, "verify-token").Return(stale, nil)
	repo.On("MarkVerified", mock.Anything, "verify-token").Return(nil, ErrNotFound)

	_, err := svc.VerifyEmail(context.Background(), "verify-token")
	assert.ErrorIs(t, err, ErrInvalidVerificationToken)
}

func TestResendVerification(t *testing.T) {
	repo := new(mockRepository)
	notifier := new(testutil.MockNotifier)
	svc := newTestService(t, repo, notifier, nil)

	u := activeUser(t)
	u.IsVerified = false

	sent := false
	repo.On("FindByID", mock.Anything, u.ID).Return(u, nil)
	notifier.On("SendScenario", mock.Anything, u.Email, "user.verify_email", mock.Anything).
		Run(func(mock.Arguments) { sent = true }).
		Return(nil)
	repo.On("SetVerificationToken", mock.Anything, u.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Run(func(mock.Arguments) {
			assert.True(t, sent, "token replaced before the email was sent")
		}).
		Return(nil)
	repo.On("InsertVerificationRecord", mock.Anything, mock.AnythingOfType("*user.VerificationRecord")).Return(nil)

	err := svc.ResendVerification(context.Background(), u.ID)
	require.NoError(t, err)
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestResendVerificationAlreadyVerified(t *testing.T) {
	repo := new(mockRepository)
	notifier := new(testutil.MockNotifier)
	svc := newTestService(t, repo, notifier, nil)

	u := activeUser(t)
	repo.On("FindByID", mock.Anything, u.ID).Return(u, nil)

	err := svc.ResendVerification(context.Background(), u.ID)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
	notifier.AssertNotCalled(t, "SendScenario", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
