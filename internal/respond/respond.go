// Package respond standardises how JSON responses and errors are written.
//
// It is shared by the handlers and the auth middleware, so an expired token
// rejected by middleware and a validation error from a service reach the
// client in exactly the same shape:
//
//	{"error": "token expired"}
//
// Error is the single place where domain errors become HTTP status codes.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/bloglist/internal/apperror"
)

// MsgInternal is sent for every error that is not an *apperror.AppError.
// The real error is only logged; it may contain SQL or file paths.
const MsgInternal = "internal server error"

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON sends data as JSON with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set BEFORE the body is written. Once Encode
// writes, the headers are on the wire and later changes are ignored.
func JSON(logger *slog.Logger, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// Error maps err to a status code, logs it through logger and writes
// {"error": message}.
//
// errors.Is walks the whole chain, so a service may wrap an AppError with
// fmt.Errorf("...: %w", err) and the mapping below still sees the sentinel.
func Error(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status, message := Translate(err)

	attrs := []slog.Attr{
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		attrs = append(attrs, slog.String("requestID", id))
	}

	if status >= http.StatusInternalServerError {
		logger.LogAttrs(r.Context(), slog.LevelError, "request failed", attrs...)
	} else {
		logger.LogAttrs(r.Context(), slog.LevelInfo, "request rejected", attrs...)
	}

	JSON(logger, w, status, ErrorResponse{Error: message})
}

// Translate returns the status code and client-facing message for err.
func Translate(err error) (int, string) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, MsgInternal
	}

	switch {
	case errors.Is(err, apperror.ErrValidation),
		errors.Is(err, apperror.ErrMalformedID),
		errors.Is(err, apperror.ErrDuplicate):
		return http.StatusBadRequest, appErr.Message
	case errors.Is(err, apperror.ErrTokenInvalid),
		errors.Is(err, apperror.ErrTokenExpired),
		errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, appErr.Message
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, appErr.Message
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, appErr.Message
	}

	return http.StatusInternalServerError, MsgInternal
}

// maxBodyBytes caps request bodies. Blog and user payloads are tiny.
const maxBodyBytes = 1 << 20

// DecodeJSON decodes the request body into dst.
//
// An empty body leaves dst untouched, so a missing field and a missing body
// reach validation the same way. Syntax and type errors become a
// ValidationError so the client gets a 400, never a 500. The body must hold
// exactly one JSON value; anything after it is rejected the same way.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return malformedBody()
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return malformedBody()
	}
	return nil
}

func malformedBody() error {
	return apperror.ValidationFailed("body", "malformatted JSON body")
}
