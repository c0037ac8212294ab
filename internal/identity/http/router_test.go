package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	commonerrors "github.com/daily-task-list/backend/internal/common/errors"
	"github.com/daily-task-list/backend/internal/common/logger"
	identityhttp "github.com/daily-task-list/backend/internal/identity/http"
	"github.com/daily-task-list/backend/internal/identity/service"
)

type mockIdentityService struct {
	registerFunc     func(ctx context.Context, input service.Credentials) (service.UserRecord, error)
	authenticateFunc func(ctx context.Context, input service.Credentials) (service.UserRecord, error)
}

func (m *mockIdentityService) Register(ctx context.Context, input service.Credentials) (service.UserRecord, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, input)
	}
	return service.UserRecord{ID: "u1", Username: input.Username}, nil
}

func (m *mockIdentityService) Authenticate(ctx context.Context, input service.Credentials) (service.UserRecord, error) {
	if m.authenticateFunc != nil {
		return m.authenticateFunc(ctx, input)
	}
	return service.UserRecord{ID: "u1", Username: input.Username}, nil
}

type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func newMux(svc *mockIdentityService) *http.ServeMux {
	log := logger.NewWithWriter(io.Discard, "test", "info")
	mux := http.NewServeMux()
	identityhttp.NewHandler(svc, 5*time.Second, log).RegisterRoutes(mux)
	return mux
}

func post(mux http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestIdentityHTTP_Register_Success(t *testing.T) {
	rec := post(newMux(&mockIdentityService{}), "/register", `{"username":"alice","password":"pw"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var body map[string]string
	_ = json.NewDecoder(rec.Body).Decode(&body)
	if body["message"] != "User registered successfully" || body["user_id"] != "u1" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestIdentityHTTP_Register_InvalidJSON(t *testing.T) {
	rec := post(newMux(&mockIdentityService{}), "/register", "not json")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	var env errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if env.Code != "INVALID_JSON" {
		t.Errorf("expected code INVALID_JSON, got %s", env.Code)
	}
}

func TestIdentityHTTP_Register_MissingPassword(t *testing.T) {
	rec := post(newMux(&mockIdentityService{}), "/register", `{"username":"alice"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	var env errorEnvelope
	_ = json.NewDecoder(rec.Body).Decode(&env)
	if env.Error != "Username and password are required" {
		t.Errorf("unexpected error message %q", env.Error)
	}
}

func TestIdentityHTTP_Register_Conflict(t *testing.T) {
	svc := &mockIdentityService{
		registerFunc: func(ctx context.Context, input service.Credentials) (service.UserRecord, error) {
			return service.UserRecord{}, commonerrors.ErrUsernameAlreadyExists
		},
	}
	rec := post(newMux(svc), "/register", `{"username":"alice","password":"pw"}`)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestIdentityHTTP_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"success", `{"username":"alice","password":"pw"}`, nil, http.StatusOK},
		{"wrong password", `{"username":"alice","password":"bad"}`, commonerrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{"missing fields", `{}`, nil, http.StatusBadRequest},
		{"store down", `{"username":"alice","password":"pw"}`, commonerrors.ErrCircuitOpen, http.StatusServiceUnavailable},
		{"unexpected", `{"username":"alice","password":"pw"}`, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockIdentityService{
				authenticateFunc: func(ctx context.Context, input service.Credentials) (service.UserRecord, error) {
					if tt.err != nil {
						return service.UserRecord{}, tt.err
					}
					return service.UserRecord{ID: "u1", Username: input.Username}, nil
				},
			}
			rec := post(newMux(svc), "/login", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusOK {
				var body map[string]string
				_ = json.NewDecoder(rec.Body).Decode(&body)
				if body["message"] != "Login successful" || body["username"] != "alice" || body["user_id"] != "u1" {
					t.Errorf("unexpected body %v", body)
				}
			}
		})
	}
}
