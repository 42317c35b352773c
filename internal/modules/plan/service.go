package plan

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// Service defines the business logic for the plan catalog.
type Service interface {
	ListPlans(ctx context.Context, billingPeriod string) ([]Plan, error)
	GetPlan(ctx context.Context, id string) (*Plan, error)
	EditPlan(ctx context.Context, id string, input EditPlanInput) error

	ListFeatures(ctx context.Context) ([]Feature, error)
	AddFeature(ctx context.Context, name, description, value string) (*Feature, error)
	DeleteFeature(ctx context.Context, id string) error
}

// EditPlanInput carries a partial plan update. Title and BillingPeriod are
// accepted only so their presence can be rejected; they are immutable.
type EditPlanInput struct {
	Title              *string
	BillingPeriod      *string
	Description        *string
	Price              *float64
	OriginalPrice      *float64
	DiscountPercentage *float64
	FeatureIDs         []string
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

// Config holds the dependencies for the plan service.
type Config struct {
	Repo   Repository
	Logger *slog.Logger
}

// NewService creates a new plan service.
func NewService(cfg *Config) Service {
	return &service{
		repo:   cfg.Repo,
		logger: cfg.Logger,
	}
}

// ListPlans returns the catalog, optionally filtered by billing period, with
// computed pricing fields filled in.
func (s *service) ListPlans(ctx context.Context, billingPeriod string) ([]Plan, error) {
	plans, err := s.repo.ListPlans(ctx, billingPeriod)
	if err != nil {
		s.logger.Error("failed to list plans", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	for i := range plans {
		plans[i].Enrich()
	}

	return plans, nil
}

// GetPlan returns a single plan with computed pricing fields.
func (s *service) GetPlan(ctx context.Context, id string) (*Plan, error) {
	p, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			return nil, ErrPlanNotFound
		}
		s.logger.Error("failed to get plan", "plan_id", id, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	p.Enrich()

	return p, nil
}

// EditPlan updates a default plan. Only plans from the default catalog may be
// edited, and their title and billing period never change.
func (s *service) EditPlan(ctx context.Context, id string, input EditPlanInput) error {
	p, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			return ErrPlanNotFound
		}
		s.logger.Error("failed to get plan", "plan_id", id, "error", err)
		return ErrInternal.WithCause(err)
	}

	if !IsDefaultPlanTitle(p.Title) {
		return ErrPlanNotEditable
	}
	if input.Title != nil || input.BillingPeriod != nil {
		return ErrImmutableFields
	}

	if input.FeatureIDs != nil {
		count, err := s.repo.CountFeaturesByIDs(ctx, input.FeatureIDs)
		if err != nil {
			s.logger.Error("failed to validate feature ids", "error", err)
			return ErrInternal.WithCause(err)
		}
		if count != len(input.FeatureIDs) {
			return ErrInvalidFeatureIDs
		}
		if err := s.repo.SetPlanFeatures(ctx, id, input.FeatureIDs); err != nil {
			s.logger.Error("failed to set plan features", "plan_id", id, "error", err)
			return ErrInternal.WithCause(err)
		}
	}

	changes := PlanChanges{
		Description:        input.Description,
		Price:              input.Price,
		OriginalPrice:      input.OriginalPrice,
		DiscountPercentage: input.DiscountPercentage,
	}
	if !changes.Empty() {
		if err := s.repo.UpdatePlan(ctx, id, changes); err != nil {
			if errors.Is(err, ErrPlanNotFound) {
				return ErrPlanNotFound
			}
			s.logger.Error("failed to update plan", "plan_id", id, "error", err)
			return ErrInternal.WithCause(err)
		}
	}

	s.logger.Info("plan updated", "plan_id", id)

	return nil
}

// ListFeatures returns every feature.
func (s *service) ListFeatures(ctx context.Context) ([]Feature, error) {
	features, err := s.repo.ListFeatures(ctx)
	if err != nil {
		s.logger.Error("failed to list features", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	return features, nil
}

// AddFeature creates a new feature.
func (s *service) AddFeature(ctx context.Context, name, description, value string) (*Feature, error) {
	f := &Feature{
		ID:          newID(),
		Name:        name,
		Description: description,
		Value:       value,
	}

	if err := s.repo.CreateFeature(ctx, f); err != nil {
		s.logger.Error("failed to create feature", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	s.logger.Info("feature added", "feature_id", f.ID)

	return f, nil
}

// DeleteFeature removes a feature unless a plan still references it.
func (s *service) DeleteFeature(ctx context.Context, id string) error {
	inUse, err := s.repo.FeatureInUse(ctx, id)
	if err != nil {
		s.logger.Error("failed to check feature usage", "feature_id", id, "error", err)
		return ErrInternal.WithCause(err)
	}
	if inUse {
		return ErrFeatureInUse
	}

	if err := s.repo.DeleteFeature(ctx, id); err != nil {
		if errors.Is(err, ErrFeatureNotFound) {
			return ErrFeatureNotFound
		}
		s.logger.Error("failed to delete feature", "feature_id", id, "error", err)
		return ErrInternal.WithCause(err)
	}

	s.logger.Info("feature deleted", "feature_id", id)

	return nil
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
