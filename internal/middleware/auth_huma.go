package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/profacthq/profact-api/internal/contextx"
	apphttpx "github.com/profacthq/profact-api/internal/httpx"
	"github.com/profacthq/profact-api/internal/modules/user"
)

// RequireAuth is a router-agnostic Huma middleware that resolves the bearer
// token to an account and injects the user, user ID and raw token into the
// request context. The full pipeline runs on every request: header presence,
// revocation, signature and expiry, subject, user lookup and the active flag.
// On failure it writes an RFC 7807 problem+json response.
func RequireAuth(svc user.Service, logger *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		r, w := humachi.Unwrap(ctx)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeProblem(w, r, user.ErrUnauthorized.WithDetail("Missing authorization header."))
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			writeProblem(w, r, user.ErrUnauthorized.WithDetail("Invalid authorization header format."))
			return
		}

		u, err := svc.CurrentUser(r.Context(), tokenString)
		if err != nil {
			if errors.Is(err, user.ErrAccountDisabled) {
				writeProblem(w, r, user.ErrAccountDisabled)
				return
			}
			logger.Debug("request authentication failed", "error", err)
			writeProblem(w, r, user.ErrUnauthorized)
			return
		}

		ctx = huma.WithValue(ctx, contextx.UserKey, u)
		ctx = huma.WithValue(ctx, contextx.UserIDKey, u.ID)
		ctx = huma.WithValue(ctx, contextx.BearerTokenKey, tokenString)
		next(ctx)
	}
}

// RequireVerified gates an operation behind email verification. It must run
// after RequireAuth.
func RequireVerified() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		r, w := humachi.Unwrap(ctx)

		u, ok := ctx.Context().Value(contextx.UserKey).(*user.User)
		if !ok {
			writeProblem(w, r, user.ErrUnauthorized)
			return
		}
		if !u.IsVerified {
			writeProblem(w, r, user.ErrEmailNotVerified)
			return
		}
		next(ctx)
	}
}

// writeProblem renders a domain error as problem+json directly on the
// response, for failures raised before an operation handler runs.
func writeProblem(w http.ResponseWriter, r *http.Request, de *apphttpx.DomainError) {
	p := &apphttpx.Problem{
		Type:      de.ProblemTypeURI(),
		Title:     de.Title,
		Status:    de.ProblemStatus(),
		Detail:    de.ProblemDetail(),
		Code:      de.Code,
		RequestID: chimw.GetReqID(r.Context()),
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.GetStatus())
	_ = json.NewEncoder(w).Encode(p)
}
