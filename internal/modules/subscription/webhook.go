package subscription

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Webhook event types that trigger a subscription update. Everything else is
// acknowledged and ignored.
const (
	stripePaymentSucceeded  = "payment_intent.succeeded"
	razorpayPaymentCaptured = "payment.captured"
)

// stripeSignatureTolerance bounds how old a Stripe-Signature timestamp may be.
const stripeSignatureTolerance = 5 * time.Minute

// verifyStripeSignature checks the Stripe-Signature header against the raw
// payload. The header carries a timestamp and one or more v1 HMAC-SHA256
// signatures computed over "<timestamp>.<payload>".
func verifyStripeSignature(payload []byte, header, secret string, now time.Time) bool {
	if header == "" || secret == "" {
		return false
	}

	var timestamp string
	var candidates []string
	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			candidates = append(candidates, v)
		}
	}
	if timestamp == "" || len(candidates) == 0 {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > stripeSignatureTolerance || age < -stripeSignatureTolerance {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range candidates {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return true
		}
	}
	return false
}

// verifyRazorpaySignature checks the X-Razorpay-Signature header, a hex
// HMAC-SHA256 of the raw body.
func verifyRazorpaySignature(payload []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// stripeEvent is the subset of a Stripe event the webhook needs. user_id and
// plan_id travel in the payment intent's metadata, set at checkout.
type stripeEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string `json:"id"`
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Metadata struct {
				UserID string `json:"user_id"`
				PlanID string `json:"plan_id"`
			} `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// parseStripeEvent extracts a PaymentEvent from a verified Stripe payload.
// The bool reports whether the event type is one we act on.
func parseStripeEvent(payload []byte) (PaymentEvent, bool, error) {
	var ev stripeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return PaymentEvent{}, false, err
	}
	if ev.Type != stripePaymentSucceeded {
		return PaymentEvent{}, false, nil
	}

	obj := ev.Data.Object
	return PaymentEvent{
		PaymentID: obj.ID,
		UserID:    obj.Metadata.UserID,
		PlanID:    obj.Metadata.PlanID,
		Amount:    float64(obj.Amount) / 100,
		Currency:  strings.ToUpper(obj.Currency),
	}, true, nil
}

// razorpayEvent is the subset of a Razorpay event the webhook needs. user_id
// and plan_id travel in the payment's notes, set at order creation.
type razorpayEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID       string `json:"id"`
				Amount   int64  `json:"amount"`
				Currency string `json:"currency"`
				Notes    struct {
					UserID string `json:"user_id"`
					PlanID string `json:"plan_id"`
				} `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// parseRazorpayEvent extracts a PaymentEvent from a verified Razorpay payload.
func parseRazorpayEvent(payload []byte) (PaymentEvent, bool, error) {
	var ev razorpayEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return PaymentEvent{}, false, err
	}
	if ev.Event != razorpayPaymentCaptured {
		return PaymentEvent{}, false, nil
	}

	entity := ev.Payload.Payment.Entity
	return PaymentEvent{
		PaymentID: entity.ID,
		UserID:    entity.Notes.UserID,
		PlanID:    entity.Notes.PlanID,
		Amount:    float64(entity.Amount) / 100,
		Currency:  strings.ToUpper(entity.Currency),
	}, true, nil
}
