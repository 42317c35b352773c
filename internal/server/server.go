package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/profacthq/profact-api/internal/config"
	"github.com/profacthq/profact-api/internal/limiter"
	appmw "github.com/profacthq/profact-api/internal/middleware"
	"github.com/profacthq/profact-api/internal/modules/plan"
	"github.com/profacthq/profact-api/internal/modules/subscription"
	"github.com/profacthq/profact-api/internal/modules/user"
)

// Services bundles the module services the server exposes.
type Services struct {
	User         user.Service
	Plan         plan.Service
	Subscription subscription.Service
	LoginLimiter limiter.Limiter
}

// New creates and configures a new server instance. All module routes are
// mounted under /api.
func New(cfg *config.Config, log *slog.Logger, svcs Services) chi.Router {
	router := chi.NewMux()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(60 * time.Second))

	apiRouter := chi.NewRouter()
	router.Mount("/api", apiRouter)

	apiConfig := huma.DefaultConfig("Profact API", "1.0.0")
	apiConfig.Servers = []*huma.Server{{URL: "/api"}}
	apiConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	api := humachi.New(apiRouter, apiConfig)

	authMW := appmw.RequireAuth(svcs.User, log)
	verifiedMW := appmw.RequireVerified()
	authLimitMW := appmw.RateLimit(svcs.LoginLimiter, "auth", log)

	user.NewHandler(svcs.User, log, authMW, authLimitMW).RegisterRoutes(api)
	plan.NewHandler(svcs.Plan, log).RegisterRoutes(api)
	subscription.NewHandler(svcs.Subscription, cfg, log, authMW, verifiedMW).RegisterRoutes(api)

	huma.Register(api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health Check",
		Description: "Responds with the server's health status.",
	}, func(ctx context.Context, input *struct{}) (*struct {
		Body struct {
			Status string `json:"status"`
		}
	}, error) {
		resp := &struct {
			Body struct {
				Status string `json:"status"`
			}
		}{}
		resp.Body.Status = "ok"
		return resp, nil
	})

	return router
}
