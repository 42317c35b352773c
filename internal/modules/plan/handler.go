package plan

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/profacthq/profact-api/internal/httpx"
	"github.com/profacthq/profact-api/internal/validation"
)

// Handler holds the dependencies for the plan module's HTTP handlers.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new handler for the plan module.
func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the routing for the plan and feature endpoints.
func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "plans-list",
		Method:      http.MethodGet,
		Path:        "/plans",
		Summary:     "List plans",
		Tags:        []string{"plans"},
	}, h.ListPlansHandler)

	huma.Register(api, huma.Operation{
		OperationID: "plans-get",
		Method:      http.MethodGet,
		Path:        "/plans/{id}",
		Summary:     "Get a plan",
		Tags:        []string{"plans"},
	}, h.GetPlanHandler)

	huma.Register(api, huma.Operation{
		OperationID: "plans-edit",
		Method:      http.MethodPatch,
		Path:        "/plans/{id}/edit",
		Summary:     "Edit a default plan",
		Tags:        []string{"plans"},
	}, h.EditPlanHandler)

	huma.Register(api, huma.Operation{
		OperationID: "features-list",
		Method:      http.MethodGet,
		Path:        "/features",
		Summary:     "List features",
		Tags:        []string{"features"},
	}, h.ListFeaturesHandler)

	huma.Register(api, huma.Operation{
		OperationID:   "features-add",
		Method:        http.MethodPost,
		Path:          "/features",
		Summary:       "Add a feature",
		Tags:          []string{"features"},
		DefaultStatus: http.StatusCreated,
	}, h.AddFeatureHandler)

	huma.Register(api, huma.Operation{
		OperationID: "features-delete",
		Method:      http.MethodDelete,
		Path:        "/features/{id}",
		Summary:     "Delete a feature",
		Tags:        []string{"features"},
	}, h.DeleteFeatureHandler)
}

// --- DTOs ---

// ListPlansRequest filters the catalog by billing period.
type ListPlansRequest struct {
	BillingPeriod string `query:"billing_period" enum:"free,monthly,yearly" required:"false"`
}

// ListPlansResponse returns the plan catalog.
type ListPlansResponse struct {
	Body struct {
		Plans []Plan `json:"plans"`
	}
}

// GetPlanRequest addresses a single plan.
type GetPlanRequest struct {
	ID string `path:"id"`
}

// PlanResponse returns a single plan.
type PlanResponse struct {
	Body Plan
}

// EditPlanRequest carries a partial plan update.
type EditPlanRequest struct {
	ID   string `path:"id"`
	Body struct {
		Title              *string  `json:"title,omitempty"`
		BillingPeriod      *string  `json:"billing_period,omitempty"`
		Description        *string  `json:"description,omitempty"`
		Price              *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
		OriginalPrice      *float64 `json:"original_price,omitempty" validate:"omitempty,gte=0"`
		DiscountPercentage *float64 `json:"discount_percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
		FeatureIDs         []string `json:"features,omitempty"`
	}
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

// ListFeaturesResponse returns all features.
type ListFeaturesResponse struct {
	Body struct {
		Features []Feature `json:"features"`
	}
}

// AddFeatureRequest creates a feature.
type AddFeatureRequest struct {
	Body struct {
		Name        string `json:"name" validate:"required,min=1"`
		Description string `json:"description" validate:"required"`
		Value       string `json:"value"`
	}
}

// AddFeatureResponse returns the new feature's ID.
type AddFeatureResponse struct {
	Body struct {
		FeatureID string `json:"feature_id"`
		Message   string `json:"message"`
	}
}

// DeleteFeatureRequest addresses a feature.
type DeleteFeatureRequest struct {
	ID string `path:"id"`
}

// --- Handlers ---

// ListPlansHandler returns the catalog, optionally filtered.
func (h *Handler) ListPlansHandler(ctx context.Context, input *ListPlansRequest) (*ListPlansResponse, error) {
	if input.BillingPeriod != "" && !ValidBillingPeriod(input.BillingPeriod) {
		return nil, httpx.ValidationProblem(ctx, "invalid billing period", map[string][]string{
			"billing_period": {"must be one of free, monthly, yearly"},
		})
	}

	plans, err := h.service.ListPlans(ctx, input.BillingPeriod)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &ListPlansResponse{}
	resp.Body.Plans = plans
	return resp, nil
}

// GetPlanHandler returns a single plan.
func (h *Handler) GetPlanHandler(ctx context.Context, input *GetPlanRequest) (*PlanResponse, error) {
	p, err := h.service.GetPlan(ctx, input.ID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return &PlanResponse{Body: *p}, nil
}

// EditPlanHandler updates a default plan.
func (h *Handler) EditPlanHandler(ctx context.Context, input *EditPlanRequest) (*MessageResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	err := h.service.EditPlan(ctx, input.ID, EditPlanInput{
		Title:              input.Body.Title,
		BillingPeriod:      input.Body.BillingPeriod,
		Description:        input.Body.Description,
		Price:              input.Body.Price,
		OriginalPrice:      input.Body.OriginalPrice,
		DiscountPercentage: input.Body.DiscountPercentage,
		FeatureIDs:         input.Body.FeatureIDs,
	})
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return messageResponse("Plan updated successfully."), nil
}

// ListFeaturesHandler returns all features.
func (h *Handler) ListFeaturesHandler(ctx context.Context, _ *struct{}) (*ListFeaturesResponse, error) {
	features, err := h.service.ListFeatures(ctx)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &ListFeaturesResponse{}
	resp.Body.Features = features
	return resp, nil
}

// AddFeatureHandler creates a feature.
func (h *Handler) AddFeatureHandler(ctx context.Context, input *AddFeatureRequest) (*AddFeatureResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	f, err := h.service.AddFeature(ctx, input.Body.Name, input.Body.Description, input.Body.Value)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &AddFeatureResponse{}
	resp.Body.FeatureID = f.ID
	resp.Body.Message = "Feature added successfully."
	return resp, nil
}

// DeleteFeatureHandler removes an unused feature.
func (h *Handler) DeleteFeatureHandler(ctx context.Context, input *DeleteFeatureRequest) (*MessageResponse, error) {
	if err := h.service.DeleteFeature(ctx, input.ID); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return messageResponse("Feature deleted successfully."), nil
}
