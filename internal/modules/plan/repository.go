package plan

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/profacthq/profact-api/internal/database"
)

// Repository defines the database operations for plans and features.
type Repository interface {
	ListPlans(ctx context.Context, billingPeriod string) ([]Plan, error)
	GetPlan(ctx context.Context, id string) (*Plan, error)
	UpdatePlan(ctx context.Context, id string, changes PlanChanges) error
	SetPlanFeatures(ctx context.Context, planID string, featureIDs []string) error

	ListFeatures(ctx context.Context) ([]Feature, error)
	CountFeaturesByIDs(ctx context.Context, ids []string) (int, error)
	CreateFeature(ctx context.Context, f *Feature) error
	DeleteFeature(ctx context.Context, id string) error
	FeatureInUse(ctx context.Context, id string) (bool, error)
}

// PlanChanges carries the mutable plan fields; nil means leave unchanged.
type PlanChanges struct {
	Description        *string
	Price              *float64
	OriginalPrice      *float64
	DiscountPercentage *float64
}

// Empty reports whether no column change is requested.
func (c PlanChanges) Empty() bool {
	return c.Description == nil && c.Price == nil && c.OriginalPrice == nil && c.DiscountPercentage == nil
}

type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewRepository creates a new plan repository with the given database connection.
func NewRepository(db database.DBTX) Repository {
	return &repository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListPlans returns all plans, optionally filtered by billing period, with
// their feature IDs attached.
func (r *repository) ListPlans(ctx context.Context, billingPeriod string) ([]Plan, error) {
	q := r.psql.Select("*").From("plans").OrderBy("price ASC")
	if billingPeriod != "" {
		q = q.Where(squirrel.Eq{"billing_period": billingPeriod})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var plans []Plan
	if err := pgxscan.Select(ctx, r.db, &plans, query, args...); err != nil {
		return nil, err
	}

	for i := range plans {
		ids, err := r.featureIDs(ctx, plans[i].ID)
		if err != nil {
			return nil, err
		}
		plans[i].FeatureIDs = ids
	}

	return plans, nil
}

// GetPlan returns a single plan with its feature IDs.
func (r *repository) GetPlan(ctx context.Context, id string) (*Plan, error) {
	query, args, err := r.psql.Select("*").
		From("plans").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var p Plan
	err = pgxscan.Get(ctx, r.db, &p, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound.WithCause(err)
		}
		return nil, err
	}

	p.FeatureIDs, err = r.featureIDs(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) featureIDs(ctx context.Context, planID string) ([]string, error) {
	query, args, err := r.psql.Select("feature_id").
		From("plan_features").
		Where(squirrel.Eq{"plan_id": planID}).
		OrderBy("feature_id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := pgxscan.Select(ctx, r.db, &ids, query, args...); err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdatePlan applies the non-nil changes to a plan row.
func (r *repository) UpdatePlan(ctx context.Context, id string, changes PlanChanges) error {
	q := r.psql.Update("plans").Set("updated_at", time.Now())
	if changes.Description != nil {
		q = q.Set("description", *changes.Description)
	}
	if changes.Price != nil {
		q = q.Set("price", *changes.Price)
	}
	if changes.OriginalPrice != nil {
		q = q.Set("original_price", *changes.OriginalPrice)
	}
	if changes.DiscountPercentage != nil {
		q = q.Set("discount_percentage", *changes.DiscountPercentage)
	}

	query, args, err := q.Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}

	return nil
}

// SetPlanFeatures replaces the plan's feature set.
func (r *repository) SetPlanFeatures(ctx context.Context, planID string, featureIDs []string) error {
	del, delArgs, err := r.psql.Delete("plan_features").
		Where(squirrel.Eq{"plan_id": planID}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, del, delArgs...); err != nil {
		return err
	}

	if len(featureIDs) == 0 {
		return nil
	}

	ins := r.psql.Insert("plan_features").Columns("plan_id", "feature_id")
	for _, fid := range featureIDs {
		ins = ins.Values(planID, fid)
	}
	query, args, err := ins.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// ListFeatures returns every feature.
func (r *repository) ListFeatures(ctx context.Context) ([]Feature, error) {
	query, args, err := r.psql.Select("*").
		From("features").
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var features []Feature
	if err := pgxscan.Select(ctx, r.db, &features, query, args...); err != nil {
		return nil, err
	}
	return features, nil
}

// CountFeaturesByIDs returns how many of the given IDs exist, for validating
// a feature list in one query.
func (r *repository) CountFeaturesByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := r.psql.Select("COUNT(*)").
		From("features").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := pgxscan.Get(ctx, r.db, &count, query, args...); err != nil {
		return 0, err
	}
	return count, nil
}

// CreateFeature inserts a new feature.
func (r *repository) CreateFeature(ctx context.Context, f *Feature) error {
	f.CreatedAt = time.Now()

	query, args, err := r.psql.Insert("features").
		Columns("id", "name", "description", "value", "created_at").
		Values(f.ID, f.Name, f.Description, f.Value, f.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// DeleteFeature removes a feature row.
func (r *repository) DeleteFeature(ctx context.Context, id string) error {
	query, args, err := r.psql.Delete("features").
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
		return ErrFeatureNotFound
	}

	return nil
}

// FeatureInUse reports whether any plan references the feature.
func (r *repository) FeatureInUse(ctx context.Context, id string) (bool, error) {
	query, args, err := r.psql.Select("COUNT(*)").
		From("plan_features").
		Where(squirrel.Eq{"feature_id": id}).
		ToSql()
	if err != nil {
		return false, err
	}

	var count int
	if err := pgxscan.Get(ctx, r.db, &count, query, args...); err != nil {
		return false, err
	}
	return count > 0, nil
}
