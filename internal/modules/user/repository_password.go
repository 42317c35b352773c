package user

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

// SetResetToken stores a password reset token and its expiry on the user row.
// Issuing a new token overwrites any previous one, invalidating it.
func (r *repository) SetResetToken(ctx context.Context, userID, token string, expires time.Time) error {
	query, args, err := r.psql.Update("users").
		Set("password_reset_token", token).
		Set("password_reset_expires", expires).
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

// ConsumeResetToken atomically redeems a reset token: in a single statement it
// checks the token matches and has not expired, sets the new password hash and
// clears the token fields. Concurrent attempts with the same token race on the
// WHERE clause and exactly one wins; the rest get ErrInvalidResetToken.
func (r *repository) ConsumeResetToken(ctx context.Context, token, newPasswordHash string, now time.Time) (*User, error) {
	query, args, err := r.psql.Update("users").
		Set("password_hash", newPasswordHash).
		Set("password_reset_token", nil).
		Set("password_reset_expires", nil).
		Set("updated_at", now).
		Where(squirrel.Eq{"password_reset_token": token}).
		Where(squirrel.Gt{"password_reset_expires": now}).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return nil, err
	}

	var user User
	err = pgxscan.Get(ctx, r.db, &user, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidResetToken.WithCause(err)
		}
		return nil, err
	}

	return &user, nil
}
