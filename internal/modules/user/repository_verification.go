package user

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

// SetVerificationToken stores a fresh verification token on the user row,
// replacing any previously issued one.
func (r *repository) SetVerificationToken(ctx context.Context, userID, token string, sentAt time.Time) error {
	query, args, err := r.psql.Update("users").
		Set("verification_token", token).
		Set("verification_sent_at", sentAt).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// FindByVerificationToken returns the user currently holding the given live
// verification token. Consumed tokens are not found here; see
// FindVerificationRecord for the audit trail.
func (r *repository) FindByVerificationToken(ctx context.Context, token string) (*User, error) {
	return r.findOne(ctx, squirrel.Eq{"verification_token": token})
}

// MarkVerified atomically consumes a verification token: the single UPDATE
// both checks the token is still live on an unverified user and flips the
// verified flag while clearing the token. Under concurrent verification
// attempts exactly one caller gets the user back; the others get ErrNotFound.
func (r *repository) MarkVerified(ctx context.Context, token string) (*User, error) {
	query, args, err := r.psql.Update("users").
		Set("is_verified", true).
		Set("verification_token", nil).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"verification_token": token}).
		Where(squirrel.Eq{"is_verified": false}).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return nil, err
	}

	var user User
	err = pgxscan.Get(ctx, r.db, &user, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}

	return &user, nil
}

// MarkVerifiedByID flips the verified flag directly, used when a social
// provider vouches for the email address.
func (r *repository) MarkVerifiedByID(ctx context.Context, userID string) error {
	query, args, err := r.psql.Update("users").
		Set("is_verified", true).
		Set("verification_token", nil).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// InsertVerificationRecord appends an audit row for an issued token.
func (r *repository) InsertVerificationRecord(ctx context.Context, rec *VerificationRecord) error {
	rec.CreatedAt = time.Now()

	query, args, err := r.psql.Insert("verification_tokens").
		Columns("id", "token", "user_id", "verified", "created_at").
		Values(rec.ID, rec.Token, rec.UserID, rec.Verified, rec.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// FindVerificationRecord looks up the audit row for a token.
func (r *repository) FindVerificationRecord(ctx context.Context, token string) (*VerificationRecord, error) {
	query, args, err := r.psql.Select("*").
		From("verification_tokens").
		Where(squirrel.Eq{"token": token}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rec VerificationRecord
	err = pgxscan.Get(ctx, r.db, &rec, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}

	return &rec, nil
}

// MarkVerificationRecordUsed flags the audit row after a successful verify.
func (r *repository) MarkVerificationRecordUsed(ctx context.Context, token string, at time.Time) error {
	query, args, err := r.psql.Update("verification_tokens").
		Set("verified", true).
		Set("verified_at", at).
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}
