package user

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

// AddSocialAccount links a provider identity to a user. Re-linking the same
// (provider, provider_user_id) pair is a no-op, so repeated social logins
// never fail on the unique constraint.
func (r *repository) AddSocialAccount(ctx context.Context, acct *SocialAccount) error {
	acct.CreatedAt = time.Now()

	query, args, err := r.psql.Insert("user_social_accounts").
		Columns("id", "user_id", "provider", "provider_user_id", "email", "name", "created_at").
		Values(acct.ID, acct.UserID, acct.Provider, acct.ProviderUserID, acct.Email, acct.Name, acct.CreatedAt).
		Suffix("ON CONFLICT (provider, provider_user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// FindBySocialAccount resolves a provider identity to the owning user.
func (r *repository) FindBySocialAccount(ctx context.Context, provider, providerUserID string) (*User, error) {
	query, args, err := r.psql.Select("u.*").
		From("users u").
		Join("user_social_accounts sa ON sa.user_id = u.id").
		Where(squirrel.Eq{"sa.provider": provider, "sa.provider_user_id": providerUserID}).
		Limit(1).
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

// ListSocialAccounts returns all provider identities linked to a user.
func (r *repository) ListSocialAccounts(ctx context.Context, userID string) ([]SocialAccount, error) {
	query, args, err := r.psql.Select("*").
		From("user_social_accounts").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var accts []SocialAccount
	if err := pgxscan.Select(ctx, r.db, &accts, query, args...); err != nil {
		return nil, err
	}

	return accts, nil
}
