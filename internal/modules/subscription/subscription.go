package subscription

import "time"

// Subscription statuses.
const (
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
	StatusPending   = "pending"
)

// Payment providers accepted on webhooks.
const (
	MethodStripe   = "stripe"
	MethodRazorpay = "razorpay"
)

// Subscription is one term of a plan held by a user. A user's current
// subscription is the newest row; older rows form the history.
type Subscription struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	PlanID    string    `db:"plan_id" json:"plan_id"`
	Status    string    `db:"status" json:"status"`
	PaymentID *string   `db:"payment_id" json:"payment_id,omitempty"`
	AutoRenew bool      `db:"auto_renew" json:"auto_renew"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Active reports whether the subscription still grants access at t. Cancelled
// subscriptions keep access until their end date.
func (s *Subscription) Active(t time.Time) bool {
	if s.Status != StatusActive && s.Status != StatusCancelled {
		return false
	}
	return s.EndDate.After(t)
}
