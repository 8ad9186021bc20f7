// Package handler contains the HTTP handlers.
//
// A handler only speaks HTTP: it decodes the body, reads URL parameters and
// the authenticated user from the context, calls one service method and
// writes the result with package respond. Business rules live in the
// services; status codes are chosen by respond.Error.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/respond"
	"github.com/sakif/bloglist/internal/service"
)

// BlogHandler serves /api/blogs.
type BlogHandler struct {
	blogs  *service.BlogService
	logger *slog.Logger
}

// NewBlogHandler creates a new BlogHandler.
func NewBlogHandler(blogs *service.BlogService, logger *slog.Logger) *BlogHandler {
	return &BlogHandler{blogs: blogs, logger: logger}
}

// HandleList returns every blog with its owner populated.
//
// HTTP: GET /api/blogs
//
//	[{"title":"...","author":"...","url":"...","likes":5,
//	  "user":{"username":"root","name":"Superuser","id":"..."},"id":"..."}]
func (h *BlogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogs.List(r.Context())
	if err != nil {
		respond.Error(h.logger, w, r, err)
		return
	}
	respond.JSON(h.logger, w, http.StatusOK, blogs)
}

// HandleCreate stores a blog owned by the authenticated user.
//
// HTTP: POST /api/blogs (behind UserExtractor)
// REQUEST BODY: {"title": "...", "author": "...", "url": "...", "likes": 0}
func (h *BlogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respond.Error(h.logger, w, r, apperror.TokenInvalid())
		return
	}

	var req model.CreateBlogRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(h.logger, w, r, err)
		return
	}

	blog, err := h.blogs.Create(r.Context(), user, req)
	if err != nil {
		respond.Error(h.logger, w, r, err)
		return
	}

	respond.JSON(h.logger, w, http.StatusCreated, blog)
}

// HandleDelete removes one of the authenticated user's blogs.
//
// HTTP: DELETE /api/blogs/{id} (behind UserExtractor)
// 204 No Content on success; there is no body to send.
func (h *BlogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respond.Error(h.logger, w, r, apperror.TokenInvalid())
		return
	}

	if err := h.blogs.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		respond.Error(h.logger, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdate applies a partial update.
//
// HTTP: PUT /api/blogs/{id}
// Any subset of title, author, url and likes may be sent.
func (h *BlogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateBlogRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(h.logger, w, r, err)
		return
	}

	blog, err := h.blogs.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respond.Error(h.logger, w, r, err)
		return
	}

	respond.JSON(h.logger, w, http.StatusOK, blog)
}

// HandleStats returns the list-helper aggregates over all blogs.
//
// HTTP: GET /api/blogs/stats
func (h *BlogHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.blogs.Stats(r.Context())
	if err != nil {
		respond.Error(h.logger, w, r, err)
		return
	}
	respond.JSON(h.logger, w, http.StatusOK, stats)
}
