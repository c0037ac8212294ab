package http

import (
	"context"
	"net/http"
	"time"

	"github.com/daily-task-list/backend/internal/common/constants"
	"github.com/daily-task-list/backend/internal/common/httpmetrics"
	"github.com/daily-task-list/backend/internal/common/logger"
)

type BaseHandlerOptions struct {
	CORSOrigins []string
	RateLimiter PathRateLimiter
}

// BuildBaseHandler wraps handler with the shared middleware chain, outermost
// first: security headers, CORS, recovery, trace id, body limit, metrics and
// the optional rate limiter.
func BuildBaseHandler(log *logger.Logger, opts BaseHandlerOptions, handler http.Handler) http.Handler {
	collector := httpmetrics.New()

	inner := handler
	if opts.RateLimiter != nil {
		limited := opts.RateLimiter.Middleware()(handler)
		inner = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rateLimitExempt(r.URL.Path) {
				handler.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}

	recovery := RecoveryMiddleware(log)
	cors := CORSMiddleware(opts.CORSOrigins)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)

	return SecurityHeadersMiddleware(cors(recovery(TraceIDMiddleware(maxRequestSize(collector.Wrap(inner))))))
}

func rateLimitExempt(path string) bool {
	switch path {
	case "/ping", "/readyz", "/metrics":
		return true
	}
	return false
}

// WithTimeout bounds the request context of a single route. A non-positive
// timeout leaves the context untouched.
func WithTimeout(timeout time.Duration) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if timeout <= 0 {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next(w, r.WithContext(ctx))
		}
	}
}
