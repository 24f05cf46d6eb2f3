package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/bloglist/internal/service"
)

// UserHandler serves registration, the user listing and login.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// registerRequest keeps the password raw so that a missing, null or
// non-string password reaches the service as "no password" instead of
// failing JSON decoding.
type registerRequest struct {
	Username string          `json:"username"`
	Name     string          `json:"name"`
	Password json.RawMessage `json:"password"`
}

func (req registerRequest) password() *string {
	var s *string
	if len(req.Password) == 0 || json.Unmarshal(req.Password, &s) != nil {
		return nil
	}
	return s
}

// HandleRegister creates a user account.
//
// HTTP: POST /api/users
// REQUEST BODY: {"username": "root", "name": "Superuser", "password": "salainen"}
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.password(),
		Name:     req.Name,
	})
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// HandleList returns every user with their blogs.
//
// HTTP: GET /api/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleLogin exchanges a username and password for a bearer token.
//
// HTTP: POST /api/login
// REQUEST BODY: {"username": "root", "password": "salainen"}
// RESPONSE:     {"token": "<jwt>", "username": "root", "name": "Superuser"}
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	res, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
