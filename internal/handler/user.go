package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/respond"
	"github.com/sakif/bloglist/internal/service"
)

// UserHandler serves /api/users and /api/login.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleCreate registers a user.
//
// HTTP: POST /api/users (behind ValidateUser)
// REQUEST BODY: {"username": "root", "name": "Superuser", "password": "Sekret1"}
//
// The response never contains the password hash; model.User skips it.
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(h.logger, w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), req)
	if err != nil {
		respond.Error(h.logger, w, r, err)
		return
	}

	respond.JSON(h.logger, w, http.StatusCreated, user)
}

// HandleList returns every user with its blogs populated.
//
// HTTP: GET /api/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respond.Error(h.logger, w, r, err)
		return
	}
	respond.JSON(h.logger, w, http.StatusOK, users)
}

// HandleLogin exchanges a username and password for a bearer token.
//
// HTTP: POST /api/login
// RESPONSE: {"token": "...", "username": "root", "name": "Superuser"}
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(h.logger, w, r, err)
		return
	}

	resp, err := h.users.Login(r.Context(), req)
	if err != nil {
		respond.Error(h.logger, w, r, err)
		return
	}

	respond.JSON(h.logger, w, http.StatusOK, resp)
}
