package user

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/profacthq/profact-api/internal/database"
)

// Repository defines the interface for database operations for the user module.
// This abstraction allows the service layer to be independent of the database implementation.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, userID string, newPasswordHash string) error
	SetActive(ctx context.Context, userID string, active bool) error

	// Password reset
	SetResetToken(ctx context.Context, userID, token string, expires time.Time) error
	ConsumeResetToken(ctx context.Context, token, newPasswordHash string, now time.Time) (*User, error)

	// Email verification
	SetVerificationToken(ctx context.Context, userID, token string, sentAt time.Time) error
	FindByVerificationToken(ctx context.Context, token string) (*User, error)
	MarkVerified(ctx context.Context, token string) (*User, error)
	MarkVerifiedByID(ctx context.Context, userID string) error
	InsertVerificationRecord(ctx context.Context, rec *VerificationRecord) error
	FindVerificationRecord(ctx context.Context, token string) (*VerificationRecord, error)
	MarkVerificationRecordUsed(ctx context.Context, token string, at time.Time) error

	// Social accounts
	AddSocialAccount(ctx context.Context, acct *SocialAccount) error
	FindBySocialAccount(ctx context.Context, provider, providerUserID string) (*User, error)
	ListSocialAccounts(ctx context.Context, userID string) ([]SocialAccount, error)
}

// repository implements the Repository interface using pgx and squirrel.
type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewRepository creates a new user repository with the given database connection.
func NewRepository(db database.DBTX) Repository {
	return &repository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}
