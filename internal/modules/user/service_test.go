package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/profacthq/profact-api/internal/config"
	"github.com/profacthq/profact-api/internal/dedup"
	"github.com/profacthq/profact-api/internal/testutil"
	"github.com/profacthq/profact-api/internal/token"
)

// mockRepository implements Repository for service tests.
type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockRepository) FindByID(ctx context.Context, id string) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockRepository) Update(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockRepository) UpdatePassword(ctx context.Context, userID, newPasswordHash string) error {
	args := m.Called(ctx, userID, newPasswordHash)
	return args.Error(0)
}

func (m *mockRepository) SetActive(ctx context.Context, userID string, active bool) error {
	args := m.Called(ctx, userID, active)
	return args.Error(0)
}

func (m *mockRepository) SetResetToken(ctx context.Context, userID, token string, expires time.Time) error {
	args := m.Called(ctx, userID, token, expires)
	return args.Error(0)
}

func (m *mockRepository) ConsumeResetToken(ctx context.Context, token, newPasswordHash string, now time.Time) (*User, error) {
	args := m.Called(ctx, token, newPasswordHash, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockRepository) SetVerificationToken(ctx context.Context, userID, token string, sentAt time.Time) error {
	args := m.Called(ctx, userID, token, sentAt)
	return args.Error(0)
}

func (m *mockRepository) FindByVerificationToken(ctx context.Context, token string) (*User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockRepository) MarkVerified(ctx context.Context, token string) (*User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockRepository) MarkVerifiedByID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockRepository) InsertVerificationRecord(ctx context.Context, rec *VerificationRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockRepository) FindVerificationRecord(ctx context.Context, token string) (*VerificationRecord, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*VerificationRecord), args.Error(1)
}

func (m *mockRepository) MarkVerificationRecordUsed(ctx context.Context, token string, at time.Time) error {
	args := m.Called(ctx, token, at)
	return args.Error(0)
}

func (m *mockRepository) AddSocialAccount(ctx context.Context, acct *SocialAccount) error {
	args := m.Called(ctx, acct)
	return args.Error(0)
}

func (m *mockRepository) FindBySocialAccount(ctx context.Context, provider, providerUserID string) (*User, error) {
	args := m.Called(ctx, provider, providerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockRepository) ListSocialAccounts(ctx context.Context, userID string) ([]SocialAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SocialAccount), args.Error(1)
}

// mockExchanger implements Exchanger for OAuth code flow tests.
type mockExchanger struct {
	mock.Mock
}

func (m *mockExchanger) Exchange(ctx context.Context, code string) (*SocialProfile, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SocialProfile), args.Error(1)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.SMTP.From = "support@example.com"
	cfg.Frontend.URL = "https://app.example.com"
	return cfg
}

// newTestService wires a service against mocks and real in-memory token
// machinery. The returned *service allows clock injection.
func newTestService(t *testing.T, repo Repository, notifier *testutil.MockNotifier, exchangers map[string]Exchanger) *service {
	t.Helper()

	cfg := testConfig()
	issuer := token.NewIssuer(cfg.JWT.Secret, 30*time.Minute, 7*24*time.Hour)
	revocations := token.NewMemoryRevocationStore(24 * time.Hour)
	validator := token.NewValidator(cfg.JWT.Secret, revocations)

	svc := NewService(&Config{
		Repo:        repo,
		Logger:      testutil.Logger(),
		Config:      cfg,
		Issuer:      issuer,
		Validator:   validator,
		Revocations: revocations,
		Codes:       dedup.NewMemoryClaimStore(5 * time.Minute),
		Notifier:    notifier,
		Exchangers:  exchangers,
	})
	return svc.(*service)
}

func testHash(t *testing.T, password string) *string {
	t.Helper()
	h, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &h
}

func activeUser(t *testing.T) *User {
	t.Helper()
	return &User{
		ID:           "user-1",
		Name:         "Ada Lovelace",
		Username:     "ada_9f",
		Email:        "ada@example.com",
		PasswordHash: testHash(t, "correct horse"),
		NameAvatar:   "AL",
		Role:         RoleUser,
		IsActive:     true,
		IsVerified:   true,
	}
}
