package plan

import (
	"math"
	"time"
)

// Billing periods a plan can be sold under.
const (
	BillingFree    = "free"
	BillingMonthly = "monthly"
	BillingYearly  = "yearly"
)

// ValidBillingPeriod reports whether s is a known billing period.
func ValidBillingPeriod(s string) bool {
	switch s {
	case BillingFree, BillingMonthly, BillingYearly:
		return true
	}
	return false
}

// Default catalog plans. Only these may be edited through the API, and their
// title and billing period are immutable.
var DefaultPlanTitles = []string{
	"Free Starter",
	"Pro Monthly",
	"Business Monthly",
	"Pro Yearly",
	"Business Yearly",
	"Enterprise Yearly",
}

// IsDefaultPlanTitle reports whether the title belongs to the default catalog.
func IsDefaultPlanTitle(title string) bool {
	for _, t := range DefaultPlanTitles {
		if t == title {
			return true
		}
	}
	return false
}

// Plan is a purchasable subscription tier. FeatureIDs reference rows in the
// features table through the plan_features join table.
type Plan struct {
	ID                 string    `db:"id" json:"id"`
	Title              string    `db:"title" json:"title"`
	Description        string    `db:"description" json:"description"`
	Price              float64   `db:"price" json:"price"`
	OriginalPrice      *float64  `db:"original_price" json:"original_price,omitempty"`
	DiscountPercentage *float64  `db:"discount_percentage" json:"discount_percentage,omitempty"`
	BillingPeriod      string    `db:"billing_period" json:"billing_period"`
	IsActive           bool      `db:"is_active" json:"is_active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`

	FeatureIDs []string `db:"-" json:"features"`

	// Computed on read.
	Savings      *float64 `db:"-" json:"savings,omitempty"`
	MonthlyPrice *float64 `db:"-" json:"monthly_price,omitempty"`
}

// Enrich fills the computed pricing fields. Savings requires an original
// price; the effective monthly price only makes sense for yearly plans.
func (p *Plan) Enrich() {
	if p.OriginalPrice != nil && *p.OriginalPrice > 0 && p.Price > 0 {
		savings := round2(*p.OriginalPrice - p.Price)
		p.Savings = &savings
		if p.BillingPeriod == BillingYearly {
			monthly := round2(p.Price / 12)
			p.MonthlyPrice = &monthly
		}
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Feature is a capability that plans can include.
type Feature struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Value       string    `db:"value" json:"value"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
