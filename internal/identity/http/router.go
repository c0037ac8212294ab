package http

import (
	"context"
	"net/http"
	"time"

	commonerrors "github.com/daily-task-list/backend/internal/common/errors"
	commonhttp "github.com/daily-task-list/backend/internal/common/http"
	"github.com/daily-task-list/backend/internal/common/logger"
	"github.com/daily-task-list/backend/internal/identity/service"
)

type IdentityService interface {
	Register(ctx context.Context, input service.Credentials) (service.UserRecord, error)
	Authenticate(ctx context.Context, input service.Credentials) (service.UserRecord, error)
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type loginResponse struct {
	Message  string `json:"message"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type Handler struct {
	identity IdentityService
	errors   *commonhttp.ErrorHandler
	log      *logger.Logger
	timeout  time.Duration
}

func NewHandler(identity IdentityService, requestTimeout time.Duration, log *logger.Logger) *Handler {
	return &Handler{
		identity: identity,
		errors:   commonhttp.NewErrorHandler(log),
		log:      log,
		timeout:  requestTimeout,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	withTimeout := commonhttp.WithTimeout(h.timeout)
	mux.HandleFunc("POST /register", withTimeout(h.register))
	mux.HandleFunc("POST /login", withTimeout(h.login))
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := commonhttp.DecodeAndValidate(r, &req, commonerrors.ErrMissingCredentials); err != nil {
		h.errors.HandleError(w, r, "register", err)
		return
	}

	user, err := h.identity.Register(r.Context(), service.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.errors.HandleError(w, r, "register", err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, registerResponse{
		Message: "User registered successfully",
		UserID:  user.ID,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := commonhttp.DecodeAndValidate(r, &req, commonerrors.ErrMissingCredentials); err != nil {
		h.errors.HandleError(w, r, "login", err)
		return
	}

	user, err := h.identity.Authenticate(r.Context(), service.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.errors.HandleError(w, r, "login", err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, loginResponse{
		Message:  "Login successful",
		UserID:   user.ID,
		Username: user.Username,
	})
}
