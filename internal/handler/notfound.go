package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/bloglist/internal/respond"
)

// MsgUnknownEndpoint is the body of every unrouted request.
const MsgUnknownEndpoint = "unknown endpoint"

// UnknownEndpoint answers routes and methods the router does not know.
func UnknownEndpoint(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(logger, w, http.StatusNotFound, respond.ErrorResponse{Error: MsgUnknownEndpoint})
	}
}
