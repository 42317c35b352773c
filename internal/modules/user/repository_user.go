package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Create inserts a new user record. Unique violations on email or username are
// mapped to their domain errors so the service layer never inspects SQLSTATEs.
func (r *repository) Create(ctx context.Context, user *User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query, args, err := r.psql.Insert("users").
		Columns(
			"id", "name", "username", "email", "phone", "password_hash",
			"profile_image", "name_avatar", "role", "is_active", "is_verified",
			"verification_token", "verification_sent_at", "created_at", "updated_at",
		).
		Values(
			user.ID, user.Name, user.Username, user.Email, user.Phone, user.PasswordHash,
			user.ProfileImage, user.NameAvatar, user.Role, user.IsActive, user.IsVerified,
			user.VerificationToken, user.VerificationSentAt, user.CreatedAt, user.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch {
			case strings.Contains(pgErr.ConstraintName, "email"):
				return ErrEmailExists.WithCause(err)
			case strings.Contains(pgErr.ConstraintName, "username"):
				return ErrUsernameExists.WithCause(err)
			}
		}
		return err
	}

	return nil
}

// FindByEmail retrieves a user by their email address.
// It returns ErrNotFound if no user is found.
func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, squirrel.Eq{"email": email})
}

// FindByID retrieves a user by their unique ID.
// It returns ErrNotFound if no user is found.
func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id})
}

// FindByUsername retrieves a user by their username.
func (r *repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.findOne(ctx, squirrel.Eq{"username": username})
}

func (r *repository) findOne(ctx context.Context, pred squirrel.Eq) (*User, error) {
	query, args, err := r.psql.Select("*").
		From("users").
		Where(pred).
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

// Update persists mutable profile fields of an existing user.
func (r *repository) Update(ctx context.Context, user *User) error {
	user.UpdatedAt = time.Now()

	query, args, err := r.psql.Update("users").
		Set("name", user.Name).
		Set("username", user.Username).
		Set("phone", user.Phone).
		Set("profile_image", user.ProfileImage).
		Set("name_avatar", user.NameAvatar).
		Set("updated_at", user.UpdatedAt).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "username") {
			return ErrUsernameExists.WithCause(err)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdatePassword replaces the stored password hash for a user.
func (r *repository) UpdatePassword(ctx context.Context, userID string, newPasswordHash string) error {
	query, args, err := r.psql.Update("users").
		Set("password_hash", newPasswordHash).
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

// SetActive toggles the is_active flag, used by account deactivation.
func (r *repository) SetActive(ctx context.Context, userID string, active bool) error {
	query, args, err := r.psql.Update("users").
		Set("is_active", active).
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
