package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/profacthq/profact-api/internal/modules/plan"
	"github.com/profacthq/profact-api/internal/modules/user"
	"github.com/profacthq/profact-api/internal/notification"
	"github.com/profacthq/profact-api/internal/notification/templates"
)

// Subscription term lengths by billing period.
const (
	monthlyTerm = 30 * 24 * time.Hour
	yearlyTerm  = 365 * 24 * time.Hour
)

// Service defines the business logic for subscriptions and payment webhooks.
type Service interface {
	Current(ctx context.Context, userID string) (*CurrentSubscription, error)
	Subscribe(ctx context.Context, u *user.User, planID string, paymentID *string, autoRenew bool) (*Subscription, error)
	Cancel(ctx context.Context, userID string) error
	HandlePayment(ctx context.Context, method string, p PaymentEvent) error
	SweepExpired(ctx context.Context) error
	StartExpirySweep(ctx context.Context, interval time.Duration)
}

// CurrentSubscription pairs the newest subscription with its plan details.
// Subscription is nil when the user never subscribed or the term lapsed.
type CurrentSubscription struct {
	Subscription *Subscription `json:"subscription"`
	Plan         *plan.Plan    `json:"plan,omitempty"`
}

// PaymentEvent is the normalized payload extracted from a provider webhook.
type PaymentEvent struct {
	PaymentID string
	UserID    string
	PlanID    string
	Amount    float64
	Currency  string
}

type service struct {
	repo     Repository
	plans    plan.Service
	users    user.Service
	notifier notification.Service
	logger   *slog.Logger
	now      func() time.Time
}

// Config holds the dependencies for the subscription service.
type Config struct {
	Repo     Repository
	Plans    plan.Service
	Users    user.Service
	Notifier notification.Service
	Logger   *slog.Logger
}

// NewService creates a new subscription service.
func NewService(cfg *Config) Service {
	return &service{
		repo:     cfg.Repo,
		plans:    cfg.Plans,
		users:    cfg.Users,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
		now:      time.Now,
	}
}

// Current returns the user's newest subscription with plan details, or an
// empty result when there is none granting access.
func (s *service) Current(ctx context.Context, userID string) (*CurrentSubscription, error) {
	sub, err := s.repo.Latest(ctx, userID)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return &CurrentSubscription{}, nil
		}
		s.logger.Error("failed to load subscription", "user_id", userID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	result := &CurrentSubscription{Subscription: sub}

	p, err := s.plans.GetPlan(ctx, sub.PlanID)
	if err != nil {
		// The subscription is still reportable without catalog details.
		s.logger.Warn("failed to load plan for subscription", "plan_id", sub.PlanID, "error", err)
	} else {
		result.Plan = p
	}

	return result, nil
}

// Subscribe starts a new term on the given plan. A new row is always
// inserted; the previous term simply stops being the latest.
func (s *service) Subscribe(ctx context.Context, u *user.User, planID string, paymentID *string, autoRenew bool) (*Subscription, error) {
	p, err := s.plans.GetPlan(ctx, planID)
	if err != nil || !p.IsActive {
		return nil, ErrInvalidPlan
	}

	now := s.now()
	sub := &Subscription{
		ID:        newID(),
		UserID:    u.ID,
		PlanID:    planID,
		Status:    StatusActive,
		PaymentID: paymentID,
		AutoRenew: autoRenew,
		StartDate: now,
		EndDate:   now.Add(termFor(p.BillingPeriod)),
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		s.logger.Error("failed to create subscription", "user_id", u.ID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	s.sendConfirmation(ctx, u, p, sub)

	s.logger.Info("subscription started", "user_id", u.ID, "plan_id", planID)

	return sub, nil
}

// Cancel stops auto-renewal; access continues until the end date.
func (s *service) Cancel(ctx context.Context, userID string) error {
	sub, err := s.repo.Latest(ctx, userID)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return ErrNoSubscription
		}
		s.logger.Error("failed to load subscription", "user_id", userID, "error", err)
		return ErrInternal.WithCause(err)
	}

	if sub.Status != StatusActive {
		return ErrNoSubscription
	}

	if err := s.repo.UpdateStatus(ctx, sub.ID, StatusCancelled, false); err != nil {
		s.logger.Error("failed to cancel subscription", "user_id", userID, "error", err)
		return ErrInternal.WithCause(err)
	}

	s.logger.Info("subscription cancelled", "user_id", userID, "subscription_id", sub.ID)

	return nil
}

// HandlePayment applies a verified provider payment to the referenced user's
// subscription and emails a receipt.
func (s *service) HandlePayment(ctx context.Context, method string, p PaymentEvent) error {
	if p.UserID == "" || p.PlanID == "" {
		return ErrMalformedEvent
	}

	u, err := s.users.GetProfile(ctx, p.UserID)
	if err != nil {
		s.logger.Warn("payment webhook for unknown user", "method", method, "user_id", p.UserID)
		return ErrMalformedEvent.WithCause(err)
	}

	paymentID := p.PaymentID
	if _, err := s.Subscribe(ctx, u, p.PlanID, &paymentID, false); err != nil {
		return err
	}

	s.logger.Info("payment processed", "method", method, "user_id", p.UserID, "payment_id", p.PaymentID)

	return nil
}

// SweepExpired marks lapsed terms and downgrades non-renewing users to the
// free tier. Renewal charging is out of scope; auto-renew terms are left for
// the payment provider's next webhook.
func (s *service) SweepExpired(ctx context.Context) error {
	now := s.now()

	expired, err := s.repo.ListExpired(ctx, now)
	if err != nil {
		s.logger.Error("failed to list expired subscriptions", "error", err)
		return ErrInternal.WithCause(err)
	}

	for i := range expired {
		sub := &expired[i]
		if sub.AutoRenew {
			continue
		}
		if err := s.repo.MarkExpired(ctx, sub.ID, now); err != nil {
			s.logger.Error("failed to expire subscription", "subscription_id", sub.ID, "error", err)
			continue
		}
		s.logger.Info("subscription expired", "subscription_id", sub.ID, "user_id", sub.UserID)
	}

	return nil
}

// StartExpirySweep runs SweepExpired on a ticker until ctx is cancelled.
func (s *service) StartExpirySweep(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.SweepExpired(ctx); err != nil {
					s.logger.Error("expiry sweep failed", "error", err)
				}
			}
		}
	}()
}

func (s *service) sendConfirmation(ctx context.Context, u *user.User, p *plan.Plan, sub *Subscription) {
	currency := "USD"
	err := notification.SendTemplate(ctx, s.notifier, templates.PaymentConfirmation, u.Email, templates.PaymentConfirmationData{
		Name:     u.Name,
		PlanName: p.Title,
		Amount:   fmt.Sprintf("%.2f", p.Price),
		Currency: currency,
		EndDate:  sub.EndDate.Format("2006-01-02"),
	})
	if err != nil {
		s.logger.Warn("failed to send payment confirmation email", "user_id", u.ID, "error", err)
	}
}

func termFor(billingPeriod string) time.Duration {
	if billingPeriod == plan.BillingYearly {
		return yearlyTerm
	}
	return monthlyTerm
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
