// Package response writes the uniform {success, message?, data?} envelope
// used by every endpoint, and maps internal error kinds onto it in one place
// instead of per-handler catch blocks.
package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shashiranjanraj/deviceexpress/pkg/database"
	"github.com/shashiranjanraj/deviceexpress/pkg/logger"
)

// Envelope is the uniform response shape.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// OK sends a 200 success envelope carrying data.
func OK(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Message sends a 200 success envelope with a message only.
func Message(w http.ResponseWriter, msg string) {
	write(w, http.StatusOK, Envelope{Success: true, Message: msg})
}

// Created sends a 201 success envelope.
func Created(w http.ResponseWriter, msg string, data any) {
	write(w, http.StatusCreated, Envelope{Success: true, Message: msg, Data: data})
}

// Fail sends a neutral failure envelope. No-op and not-found outcomes use
// this shape with a 200 status; the envelope, not the status code, carries
// the verdict.
func Fail(w http.ResponseWriter, msg string) {
	write(w, http.StatusOK, Envelope{Success: false, Message: msg})
}

// Error sends a failure envelope with an explicit HTTP status.
func Error(w http.ResponseWriter, status int, msg string) {
	write(w, status, Envelope{Success: false, Message: msg})
}

// Unauthorized sends a 401 with the fixed gate message.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "unauthorized access")
}

// Forbidden sends a 403 with the fixed gate message.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "forbidden access")
}

// ValidationError sends a 422 with a field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusUnprocessableEntity, struct {
		Envelope
		Errors map[string]string `json:"errors"`
	}{
		Envelope: Envelope{Success: false, Message: "validation failed"},
		Errors:   errs,
	})
}

// JSON writes an arbitrary body verbatim, for the handful of routes whose
// shape predates the envelope ({isAdmin}, {isSeller}, {accessToken}).
func JSON(w http.ResponseWriter, status int, body any) {
	write(w, status, body)
}

// FromError is the single boundary mapper from internal failures to the
// envelope. Store errors are logged with their full text but surfaced to the
// client as a generic message; notFoundMsg covers the neutral no-op case.
func FromError(ctx context.Context, w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		Fail(w, notFoundMsg)
	case errors.Is(err, database.ErrDuplicate):
		Fail(w, "record already exists")
	default:
		logger.WithCtx(ctx).Error("request failed", "error", err)
		Error(w, http.StatusInternalServerError, "something went wrong")
	}
}
