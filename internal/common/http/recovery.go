package http

import (
	"net/http"
	"runtime/debug"

	commonerrors "github.com/daily-task-list/backend/internal/common/errors"
	"github.com/daily-task-list/backend/internal/common/logger"
	"github.com/daily-task-list/backend/internal/observability/metrics"
)

// RecoveryMiddleware answers a panicking handler with the 500 envelope.
// http.ErrAbortHandler is re-raised so the server can abort the response.
func RecoveryMiddleware(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					metrics.PanicsRecoveredTotal.Inc()
					log.WithFields(r.Context(), logger.Fields{
						"path":   r.URL.Path,
						"method": r.Method,
						"action": "panic_recovered",
					}).Errorf("panic recovered: %v\n%s", err, debug.Stack())
					WriteErrorEnvelope(w, http.StatusInternalServerError, commonerrors.ErrInternalError.Code(), commonerrors.ErrInternalError.Message(), getTraceIDFromContext(r.Context()))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
