package subscription

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/profacthq/profact-api/internal/config"
	"github.com/profacthq/profact-api/internal/contextx"
	"github.com/profacthq/profact-api/internal/httpx"
	"github.com/profacthq/profact-api/internal/modules/user"
	"github.com/profacthq/profact-api/internal/validation"
)

// Handler holds the dependencies for the subscription module's HTTP handlers.
type Handler struct {
	service  Service
	config   *config.Config
	logger   *slog.Logger
	auth     func(huma.Context, func(huma.Context))
	verified func(huma.Context, func(huma.Context))
	now      func() time.Time
}

// NewHandler creates a new handler for the subscription module. auth guards
// member routes; verified additionally gates subscribing on email
// verification.
func NewHandler(service Service, cfg *config.Config, logger *slog.Logger, auth, verified func(huma.Context, func(huma.Context))) *Handler {
	return &Handler{
		service:  service,
		config:   cfg,
		logger:   logger,
		auth:     auth,
		verified: verified,
		now:      time.Now,
	}
}

// RegisterRoutes sets up the subscription and webhook endpoints.
func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "subscription-current",
		Method:      http.MethodGet,
		Path:        "/subscription/current",
		Summary:     "Get the current subscription",
		Tags:        []string{"subscription"},
		Middlewares: huma.Middlewares{h.auth},
	}, h.CurrentHandler)

	huma.Register(api, huma.Operation{
		OperationID: "subscription-subscribe",
		Method:      http.MethodPost,
		Path:        "/subscription/subscribe",
		Summary:     "Subscribe to a plan",
		Tags:        []string{"subscription"},
		Middlewares: huma.Middlewares{h.auth, h.verified},
	}, h.SubscribeHandler)

	huma.Register(api, huma.Operation{
		OperationID: "subscription-cancel",
		Method:      http.MethodPost,
		Path:        "/subscription/cancel",
		Summary:     "Cancel the current subscription",
		Tags:        []string{"subscription"},
		Middlewares: huma.Middlewares{h.auth},
	}, h.CancelHandler)

	huma.Register(api, huma.Operation{
		OperationID: "webhook-stripe",
		Method:      http.MethodPost,
		Path:        "/webhook/stripe",
		Summary:     "Stripe payment webhook",
		Tags:        []string{"webhooks"},
	}, h.StripeWebhookHandler)

	huma.Register(api, huma.Operation{
		OperationID: "webhook-razorpay",
		Method:      http.MethodPost,
		Path:        "/webhook/razorpay",
		Summary:     "Razorpay payment webhook",
		Tags:        []string{"webhooks"},
	}, h.RazorpayWebhookHandler)
}

// --- DTOs ---

// CurrentResponse returns the user's subscription state.
type CurrentResponse struct {
	Body struct {
		Success      bool                 `json:"success"`
		Subscription *CurrentSubscription `json:"subscription"`
		Message      string               `json:"message"`
	}
}

// SubscribeRequest starts a subscription term.
type SubscribeRequest struct {
	Body struct {
		PlanID    string  `json:"plan_id" validate:"required"`
		PaymentID *string `json:"payment_id,omitempty"`
		AutoRenew bool    `json:"auto_renew"`
	}
}

// SubscribeResponse returns the new subscription term.
type SubscribeResponse struct {
	Body Subscription
}

// MessageResponse is a plain acknowledgment body.
type MessageResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func messageResponse(msg string) *MessageResponse {
	resp := &MessageResponse{}
	resp.Body.Message = msg
	return resp
}

// StripeWebhookRequest carries the raw Stripe event and its signature header.
type StripeWebhookRequest struct {
	Signature string `header:"Stripe-Signature"`
	RawBody   []byte
}

// RazorpayWebhookRequest carries the raw Razorpay event and its signature header.
type RazorpayWebhookRequest struct {
	Signature string `header:"X-Razorpay-Signature"`
	RawBody   []byte
}

// WebhookResponse acknowledges a processed event.
type WebhookResponse struct {
	Body struct {
		Status string `json:"status"`
	}
}

func webhookProcessed() *WebhookResponse {
	resp := &WebhookResponse{}
	resp.Body.Status = "processed"
	return resp
}

// --- Handlers ---

// CurrentHandler returns the authenticated user's subscription.
func (h *Handler) CurrentHandler(ctx context.Context, _ *struct{}) (*CurrentResponse, error) {
	userID, _ := ctx.Value(contextx.UserIDKey).(string)

	current, err := h.service.Current(ctx, userID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &CurrentResponse{}
	resp.Body.Success = true
	resp.Body.Subscription = current
	resp.Body.Message = "Subscription fetched successfully."
	return resp, nil
}

// SubscribeHandler starts a subscription term for the authenticated, verified
// user.
func (h *Handler) SubscribeHandler(ctx context.Context, input *SubscribeRequest) (*SubscribeResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	u, ok := ctx.Value(contextx.UserKey).(*user.User)
	if !ok {
		return nil, httpx.ToProblem(ctx, user.ErrUnauthorized)
	}

	sub, err := h.service.Subscribe(ctx, u, input.Body.PlanID, input.Body.PaymentID, input.Body.AutoRenew)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return &SubscribeResponse{Body: *sub}, nil
}

// CancelHandler cancels the authenticated user's subscription.
func (h *Handler) CancelHandler(ctx context.Context, _ *struct{}) (*MessageResponse, error) {
	userID, _ := ctx.Value(contextx.UserIDKey).(string)

	if err := h.service.Cancel(ctx, userID); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return messageResponse("Subscription cancelled successfully."), nil
}

// StripeWebhookHandler verifies and applies a Stripe event.
func (h *Handler) StripeWebhookHandler(ctx context.Context, input *StripeWebhookRequest) (*WebhookResponse, error) {
	if !verifyStripeSignature(input.RawBody, input.Signature, h.config.Stripe.WebhookSecret, h.now()) {
		h.logger.Warn("stripe webhook signature rejected")
		return nil, httpx.ToProblem(ctx, ErrInvalidSignature)
	}

	event, actionable, err := parseStripeEvent(input.RawBody)
	if err != nil {
		return nil, httpx.ToProblem(ctx, ErrMalformedEvent.WithCause(err))
	}
	if !actionable {
		return webhookProcessed(), nil
	}

	if err := h.service.HandlePayment(ctx, MethodStripe, event); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return webhookProcessed(), nil
}

// RazorpayWebhookHandler verifies and applies a Razorpay event.
func (h *Handler) RazorpayWebhookHandler(ctx context.Context, input *RazorpayWebhookRequest) (*WebhookResponse, error) {
	if !verifyRazorpaySignature(input.RawBody, input.Signature, h.config.Razorpay.WebhookSecret) {
		h.logger.Warn("razorpay webhook signature rejected")
		return nil, httpx.ToProblem(ctx, ErrInvalidSignature)
	}

	event, actionable, err := parseRazorpayEvent(input.RawBody)
	if err != nil {
		return nil, httpx.ToProblem(ctx, ErrMalformedEvent.WithCause(err))
	}
	if !actionable {
		return webhookProcessed(), nil
	}

	if err := h.service.HandlePayment(ctx, MethodRazorpay, event); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return webhookProcessed(), nil
}
