package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/vidfeed/internal/service"
)

// UserHandler serves registration and login.
type UserHandler struct {
	users  *service.UserService
	logger zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger.With().Str("handler", "user").Logger(),
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID              uuid.UUID `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	AcceptedTermsAt time.Time `json:"accepted_terms_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// Register handles POST /v1/users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, userResponse{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		AcceptedTermsAt: user.AcceptedTermsAt,
		CreatedAt:       user.CreatedAt,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login handles POST /v1/sessions.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, sessionResponse{Token: out.Token, ExpiresAt: out.ExpiresAt})
}
