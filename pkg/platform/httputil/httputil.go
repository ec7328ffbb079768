// Package httputil maps domain errors onto HTTP responses and keeps JSON
// encode/decode boilerplate out of handlers.
package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "github.com/qxxq-lcvn/treasure-hunt/pkg/domain-errors"
)

// errorBody is the wire shape for failures.
type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// statusFor maps domain error codes to HTTP status codes.
func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeResourceExhausted:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// wireCode is the stable string surfaced to clients per error code.
func wireCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeInvariantViolation:
		return "validation_error"
	case dErrors.CodeUnauthorized:
		return "authorization_error"
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeConflict:
		return "state_conflict"
	case dErrors.CodeResourceExhausted:
		return "resource_exhausted"
	default:
		return "internal_error"
	}
}

// WriteJSON encodes payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError translates err into a typed rejection. Internal errors withhold
// the description so infrastructure details never reach callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: wireCode(code)}
	if code != dErrors.CodeInternal {
		var dErr *dErrors.Error
		if ok := asDomainError(err, &dErr); ok {
			body.Description = dErr.Message
		}
	}
	WriteJSON(w, statusFor(code), body)
}

func asDomainError(err error, target **dErrors.Error) bool {
	for err != nil {
		if e, ok := err.(*dErrors.Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Decode parses the request body into T, logging and answering a validation
// error on malformed JSON. The bool result reports whether the handler should
// continue.
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "failed to decode request body",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, dErrors.New(dErrors.CodeValidation, "malformed request body"))
		return req, false
	}
	return req, true
}
