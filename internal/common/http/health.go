package http

import (
	"context"
	"net/http"

	"github.com/daily-task-list/backend/internal/common/constants"
	commonerrors "github.com/daily-task-list/backend/internal/common/errors"
	"github.com/daily-task-list/backend/internal/common/logger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type ServiceInfo struct {
	Name    string
	Version string
}

type rootResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Store   string `json:"store"`
}

type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func pingStore(ctx context.Context, store Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, constants.StorePingTimeout)
	defer cancel()
	return store.Ping(ctx)
}

// RootHandler always answers 200 and reports whether the store responds.
func RootHandler(info ServiceInfo, store Pinger, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeState := "up"
		if err := pingStore(r.Context(), store); err != nil {
			log.WithFields(r.Context(), logger.Fields{"action": "root_store_ping_failed"}).Warnf("store ping failed: %v", err)
			storeState = "down"
		}
		WriteJSON(w, http.StatusOK, rootResponse{
			Message: "Daily Task List API is running",
			Status:  "ok",
			Service: info.Name,
			Version: info.Version,
			Store:   storeState,
		})
	}
}

// PingHandler answers liveness checks and never touches the store.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func ReadinessHandler(store Pinger, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := pingStore(r.Context(), store); err != nil {
			log.WithFields(r.Context(), logger.Fields{"action": "readiness_failed"}).Warnf("readiness check failed: %v", err)
			WriteJSON(w, http.StatusServiceUnavailable, readinessResponse{
				Status: "unavailable",
				Checks: map[string]string{"store": "down"},
			})
			return
		}
		WriteJSON(w, http.StatusOK, readinessResponse{
			Status: "ready",
			Checks: map[string]string{"store": "up"},
		})
	}
}

// NotFoundHandler answers unmatched routes with the JSON error envelope.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	notFound := commonerrors.ErrRouteNotFound
	WriteErrorEnvelope(w, notFound.HTTPStatus(), notFound.Code(), notFound.Message(), getTraceIDFromContext(r.Context()))
}
