package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/daily-task-list/backend/internal/common/constants"
	commonerrors "github.com/daily-task-list/backend/internal/common/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var ErrRequestTooLarge = commonerrors.NewDomainError(
	CodeRequestTooLarge,
	commonerrors.CategoryValidation,
	http.StatusRequestEntityTooLarge,
	"request body too large",
)

// DecodeJSON reads a JSON object into v. Missing, empty, malformed and
// non-object bodies (including null and arrays) yield ErrInvalidJSON.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return commonerrors.ErrInvalidJSON
	}
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrRequestTooLarge
		}
		return commonerrors.ErrInvalidJSON.WithCause(err)
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return commonerrors.ErrInvalidJSON
	}
	if err := json.Unmarshal(body, v); err != nil {
		return commonerrors.ErrInvalidJSON.WithCause(err)
	}
	return nil
}

// DecodeAndValidate decodes the body and checks its `validate` tags,
// returning missing when a required field is absent or empty.
func DecodeAndValidate(r *http.Request, v any, missing commonerrors.DomainError) error {
	if err := DecodeJSON(r, v); err != nil {
		return err
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return missing.WithCause(err)
		}
		return commonerrors.ErrInvalidJSON.WithCause(err)
	}
	return nil
}

// MaxRequestSizeMiddleware rejects bodies declared larger than maxBytes
// up front and caps the rest while they are read.
func MaxRequestSizeMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = constants.DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				WriteErrorEnvelope(w, http.StatusRequestEntityTooLarge, CodeRequestTooLarge, "request body too large", getTraceIDFromContext(r.Context()))
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}

			next.ServeHTTP(w, r)
		})
	}
}
