package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/profacthq/profact-api/internal/modules/plan"
	"github.com/profacthq/profact-api/internal/modules/user"
	"github.com/profacthq/profact-api/internal/testutil"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, sub *Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockRepository) Latest(ctx context.Context, userID string) (*Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Subscription), args.Error(1)
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id, status string, autoRenew bool) error {
	args := m.Called(ctx, id, status, autoRenew)
	return args.Error(0)
}

func (m *mockRepository) ListExpired(ctx context.Context, now time.Time) ([]Subscription, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Subscription), args.Error(1)
}

func (m *mockRepository) MarkExpired(ctx context.Context, id string, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

// stubPlans serves a fixed catalog; only GetPlan is exercised here.
type stubPlans struct {
	plan.Service
	plans map[string]*plan.Plan
}

func (s stubPlans) GetPlan(_ context.Context, id string) (*plan.Plan, error) {
	p, ok := s.plans[id]
	if !ok {
		return nil, plan.ErrPlanNotFound
	}
	return p, nil
}

// stubUsers resolves a single known profile; only GetProfile is exercised here.
type stubUsers struct {
	user.Service
	profile *user.User
}

func (s stubUsers) GetProfile(_ context.Context, userID string) (*user.User, error) {
	if s.profile == nil || s.profile.ID != userID {
		return nil, user.ErrNotFound
	}
	return s.profile, nil
}

func testPlan(billingPeriod string) *plan.Plan {
	return &plan.Plan{
		ID:            "plan-1",
		Title:         "Pro Monthly",
		Price:         29.0,
		BillingPeriod: billingPeriod,
		IsActive:      true,
	}
}

func testUser() *user.User {
	return &user.User{
		ID:         "user-1",
		Name:       "Ada Lovelace",
		Email:      "ada@example.com",
		IsActive:   true,
		IsVerified: true,
	}
}

func newTestService(repo Repository, plans plan.Service, users user.Service, notifier *testutil.MockNotifier) *service {
	svc := NewService(&Config{
		Repo:     repo,
		Plans:    plans,
		Users:    users,
		Notifier: notifier,
		Logger:   testutil.Logger(),
	})
	return svc.(*service)
}

func TestSubscribeMonthlyTerm(t *testing.T) {
	repo := new(mockRepository)
	notifier := new(testutil.MockNotifier)
	plans := stubPlans{plans: map[string]*plan.Plan{"plan-1": testPlan(plan.BillingMonthly)}}
	svc := newTestService(repo, plans, stubUsers{}, notifier)

	base := time.Now()
	svc.now = func() time.Time { return base }

	repo.On("Create", mock.Anything, mock.AnythingOfType("*subscription.Subscription")).Return(nil)
	notifier.On("SendScenario", mock.Anything, "ada@example.com", "billing.payment_confirmation", mock.Anything).Return(nil)

	sub, err := svc.Subscribe(context.Background(), testUser(), "plan-1", nil, true)
	require.NoError(t, err)

	assert.Equal(t, StatusActive, sub.Status)
	assert.True(t, sub.AutoRenew)
	assert.Equal(t, base.Add(30*24*time.Hour), sub.EndDate)
	notifier.AssertExpectations(t)
}

func TestSubscribeYearlyTerm(t *testing.T) {
	repo := new(mockRepository)
	notifier := new(testutil.MockNotifier)
	yearly := testPlan(plan.BillingYearly)
	yearly.Title = "Pro Yearly"
	plans := stubPlans{plans: map[string]*plan.Plan{"plan-1": yearly}}
	svc := newTestService(repo, plans, stubUsers{}, notifier)

	base := time.Now()
	svc.now = func() time.Time { return base }

	repo.On("Create", mock.Anything, mock.AnythingOfType("*subscription.Subscription")).Return(nil)
	notifier.On("SendScenario", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	sub, err := svc.Subscribe(context.Background(), testUser(), "plan-1", nil, false)
	require.NoError(t, err)
	assert.Equal(t, base.Add(365*24*time.Hour), sub.EndDate)
}

func TestSubscribeUnknownPlan(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, stubPlans{plans: map[string]*plan.Plan{}}, stubUsers{}, new(testutil.MockNotifier))

	_, err := svc.Subscribe(context.Background(), testUser(), "missing", nil, true)
	assert.ErrorIs(t, err, ErrInvalidPlan)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubscribeInactivePlan(t *testing.T) {
	repo := new(mockRepository)
	retired := testPlan(plan.BillingMonthly)
	retired.IsActive = false
	svc := newTestService(repo, stubPlans{plans: map[string]*plan.Plan{"plan-1": retired}}, stubUsers{}, new(testutil.MockNotifier))

	_, err := svc.Subscribe(context.Background(), testUser(), "plan-1", nil, true)
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

// A receipt email that bounces must not fail the subscription itself.
func TestSubscribeConfirmationFailureIgnored(t *testing.T) {
	repo := new(mockRepository)
	notifier := new(testutil.MockNotifier)
	plans := stubPlans{plans: map[string]*plan.Plan{"plan-1": testPlan(plan.BillingMonthly)}}
	svc := newTestService(repo, plans, stubUsers{}, notifier)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*subscription.Subscription")).Return(nil)
	notifier.On("SendScenario", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError)

	_, err := svc.Subscribe(context.Background(), testUser(), "plan-1", nil, true)
	assert.NoError(t, err)
}

func TestCancelKeepsAccessUntilEndDate(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, stubPlans{}, stubUsers{}, new(testutil.MockNotifier))

	sub := &Subscription{
		ID:      "sub-1",
		UserID:  "user-1",
		Status:  StatusActive,
		EndDate: time.Now().Add(10 * 24 * time.Hour),
	}
	repo.On("Latest", mock.Anything, "user-1").Return(sub, nil)
	repo.On("UpdateStatus", mock.Anything, "sub-1", StatusCancelled, false).Return(nil)

	require.NoError(t, svc.Cancel(context.Background(), "user-1"))
	repo.AssertExpectations(t)

	sub.Status = StatusCancelled
	assert.True(t, sub.Active(time.Now()), "cancelled terms keep access until they lapse")
	assert.False(t, sub.Active(time.Now().Add(11*24*time.Hour)))
}

func TestCancelWithoutSubscription(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, stubPlans{}, stubUsers{}, new(testutil.MockNotifier))

	repo.On("Latest", mock.Anything, "user-1").Return(nil, errNotFound)

	err := svc.Cancel(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrNoSubscription)
}

func TestCancelAlreadyCancelled(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, stubPlans{}, stubUsers{}, new(testutil.MockNotifier))

	repo.On("Latest", mock.Anything, "user-1").Return(&Subscription{ID: "sub-1", Status: StatusCancelled}, nil)

	err := svc.Cancel(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrNoSubscription)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCurrentWithoutSubscription(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, stubPlans{}, stubUsers{}, new(testutil.MockNotifier))

	repo.On("Latest", mock.Anything, "user-1").Return(nil, errNotFound)

	cur, err := svc.Current(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, cur.Subscription)
}

func TestCurrentIncludesPlan(t *testing.T) {
	repo := new(mockRepository)
	plans := stubPlans{plans: map[string]*plan.Plan{"plan-1": testPlan(plan.BillingMonthly)}}
	svc := newTestService(repo, plans, stubUsers{}, new(testutil.MockNotifier))

	repo.On("Latest", mock.Anything, "user-1").
		Return(&Subscription{ID: "sub-1", UserID: "user-1", PlanID: "plan-1", Status: StatusActive}, nil)

	cur, err := svc.Current(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, cur.Subscription)
	require.NotNil(t, cur.Plan)
	assert.Equal(t, "Pro Monthly", cur.Plan.Title)
}

func TestHandlePaymentSubscribesUser(t *testing.T) {
	repo := new(mockRepository)
	notifier := new(testutil.MockNotifier)
	plans := stubPlans{plans: map[string]*plan.Plan{"plan-1": testPlan(plan.BillingMonthly)}}
	svc := newTestService(repo, plans, stubUsers{profile: testUser()}, notifier)

	var created *Subscription
	repo.On("Create", mock.Anything, mock.AnythingOfType("*subscription.Subscription")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*Subscription) }).
		Return(nil)
	notifier.On("SendScenario", mock.Anything, "ada@example.com", "billing.payment_confirmation", mock.Anything).Return(nil)

	err := svc.HandlePayment(context.Background(), MethodStripe, PaymentEvent{
		PaymentID: "pi_123",
		UserID:    "user-1",
		PlanID:    "plan-1",
		Amount:    29.0,
		Currency:  "USD",
	})
	require.NoError(t, err)

	require.NotNil(t, created)
	require.NotNil(t, created.PaymentID)
	assert.Equal(t, "pi_123", *created.PaymentID)
	assert.False(t, created.AutoRenew)
}

func TestHandlePaymentMissingMetadata(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, stubPlans{}, stubUsers{}, new(testutil.MockNotifier))

	err := svc.HandlePayment(context.Background(), MethodStripe, PaymentEvent{PaymentID: "pi_123"})
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestHandlePaymentUnknownUser(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, stubPlans{}, stubUsers{}, new(testutil.MockNotifier))

	err := svc.HandlePayment(context.Background(), MethodRazorpay, PaymentEvent{
		UserID: "ghost",
		PlanID: "plan-1",
	})
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestSweepExpiredSkipsAutoRenew(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, stubPlans{}, stubUsers{}, new(testutil.MockNotifier))

	base := time.Now()
	svc.now = func() time.Time { return base }

	repo.On("ListExpired", mock.Anything, base).Return([]Subscription{
		{ID: "sub-1", UserID: "user-1", AutoRenew: false},
		{ID: "sub-2", UserID: "user-2", AutoRenew: true},
	}, nil)
	repo.On("MarkExpired", mock.Anything, "sub-1", base).Return(nil)

	require.NoError(t, svc.SweepExpired(context.Background()))
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "MarkExpired", mock.Anything, "sub-2", mock.Anything)
}
