package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/profacthq/profact-api/internal/database"
)

// errNotFound is an internal repository sentinel; the service maps it to a
// domain error appropriate to the operation.
var errNotFound = errors.New("subscription not found")

// Repository defines the database operations for subscriptions.
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	Latest(ctx context.Context, userID string) (*Subscription, error)
	UpdateStatus(ctx context.Context, id, status string, autoRenew bool) error
	ListExpired(ctx context.Context, now time.Time) ([]Subscription, error)
	MarkExpired(ctx context.Context, id string, now time.Time) error
}

type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewRepository creates a new subscription repository.
func NewRepository(db database.DBTX) Repository {
	return &repository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a subscription term.
func (r *repository) Create(ctx context.Context, sub *Subscription) error {
	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	query, args, err := r.psql.Insert("subscriptions").
		Columns("id", "user_id", "plan_id", "status", "payment_id", "auto_renew",
			"start_date", "end_date", "created_at", "updated_at").
		Values(sub.ID, sub.UserID, sub.PlanID, sub.Status, sub.PaymentID, sub.AutoRenew,
			sub.StartDate, sub.EndDate, sub.CreatedAt, sub.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// Latest returns the newest subscription row for a user.
func (r *repository) Latest(ctx context.Context, userID string) (*Subscription, error) {
	query, args, err := r.psql.Select("*").
		From("subscriptions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var sub Subscription
	err = pgxscan.Get(ctx, r.db, &sub, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errNotFound
		}
		return nil, err
	}

	return &sub, nil
}

// UpdateStatus changes a subscription's status and auto-renew flag.
func (r *repository) UpdateStatus(ctx context.Context, id, status string, autoRenew bool) error {
	query, args, err := r.psql.Update("subscriptions").
		Set("status", status).
		Set("auto_renew", autoRenew).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}

	return nil
}

// ListExpired returns active subscriptions whose end date has passed.
func (r *repository) ListExpired(ctx context.Context, now time.Time) ([]Subscription, error) {
	query, args, err := r.psql.Select("*").
		From("subscriptions").
		Where(squirrel.Eq{"status": StatusActive}).
		Where(squirrel.Lt{"end_date": now}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var subs []Subscription
	if err := pgxscan.Select(ctx, r.db, &subs, query, args...); err != nil {
		return nil, err
	}
	return subs, nil
}

// MarkExpired flags an active subscription whose term has ended. The status
// check in the WHERE clause keeps concurrent sweeps from double-processing.
func (r *repository) MarkExpired(ctx context.Context, id string, now time.Time) error {
	query, args, err := r.psql.Update("subscriptions").
		Set("status", StatusExpired).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "status": StatusActive}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}
