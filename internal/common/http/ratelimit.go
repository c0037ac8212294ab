package http

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/daily-task-list/backend/internal/common/constants"
	"github.com/daily-task-list/backend/internal/observability/metrics"
)

const (
	limiterTypeAuth    = "auth"
	limiterTypeGeneral = "general"
)

// GetClientIP keys rate limits: X-Real-IP, then the first X-Forwarded-For
// hop, then the host part of RemoteAddr.
func GetClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// PathRateLimiter picks a limit from the request path.
type PathRateLimiter interface {
	Middleware() func(http.Handler) http.Handler
}

func limiterTypeForPath(path string) string {
	switch path {
	case "/register", "/login":
		return limiterTypeAuth
	default:
		return limiterTypeGeneral
	}
}

func writeRateLimited(w http.ResponseWriter, r *http.Request, limiterType string) {
	metrics.RateLimitBlocked.WithLabelValues(metricsPathLabel(r.URL.Path), limiterType).Inc()
	WriteErrorEnvelope(w, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded", getTraceIDFromContext(r.Context()))
}

func metricsPathLabel(path string) string {
	if limiterTypeForPath(path) == limiterTypeAuth {
		return path
	}
	return "other"
}

// RateLimiter keeps one token bucket per client key.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	cleanup  *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		cleanup:  time.NewTicker(constants.RateLimitCleanupInterval),
		done:     make(chan struct{}),
	}

	go rl.cleanupLimiters()

	return rl
}

func (rl *RateLimiter) cleanupLimiters() {
	for {
		select {
		case <-rl.done:
			return
		case <-rl.cleanup.C:
			rl.mu.Lock()
			for key, limiter := range rl.limiters {
				if limiter.Tokens() >= float64(rl.burst) {
					delete(rl.limiters, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		limiter, exists = rl.limiters[key]
		if !exists {
			limiter = rate.NewLimiter(rl.rate, rl.burst)
			rl.limiters[key] = limiter
		}
		rl.mu.Unlock()
	}

	return limiter
}

func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		rl.cleanup.Stop()
		close(rl.done)
	})
}

// StrictRateLimiter applies a tighter limit to the credential endpoints.
type StrictRateLimiter struct {
	authLimiter    *RateLimiter
	generalLimiter *RateLimiter
}

func NewStrictRateLimiter() *StrictRateLimiter {
	return &StrictRateLimiter{
		authLimiter:    NewRateLimiter(constants.RateLimitAuthRequestsPerSecond, constants.RateLimitAuthBurst),
		generalLimiter: NewRateLimiter(constants.RateLimitGeneralRequestsPerSecond, constants.RateLimitGeneralBurst),
	}
}

func (srl *StrictRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiterType := limiterTypeForPath(r.URL.Path)
			limiter := srl.generalLimiter
			if limiterType == limiterTypeAuth {
				limiter = srl.authLimiter
			}

			if !limiter.Allow(GetClientIP(r)) {
				writeRateLimited(w, r, limiterType)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (srl *StrictRateLimiter) Stop() {
	srl.authLimiter.Stop()
	srl.generalLimiter.Stop()
}
