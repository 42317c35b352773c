package middleware

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"

	"github.com/profacthq/profact-api/internal/limiter"
	"github.com/profacthq/profact-api/internal/modules/user"
)

// RateLimit throttles an operation per client IP using a sliding window.
// Denied requests are not counted against the window, so a client locked out
// mid-window regains access as soon as older attempts age out. If the limiter
// backend fails the request is allowed through; auth still protects the
// endpoint and an outage should not lock everyone out.
func RateLimit(l limiter.Limiter, scope string, logger *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		r, w := humachi.Unwrap(ctx)

		key := scope + ":" + clientIP(r)
		allowed, err := l.Allow(r.Context(), key)
		if err != nil {
			logger.Error("rate limiter check failed", "scope", scope, "error", err)
			next(ctx)
			return
		}
		if !allowed {
			writeProblem(w, r, user.ErrTooManyRequests)
			return
		}

		next(ctx)
	}
}

// clientIP strips the port from RemoteAddr. chi's RealIP middleware has
// already folded X-Forwarded-For / X-Real-IP into RemoteAddr by this point.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
