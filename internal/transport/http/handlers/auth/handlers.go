package authhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"staffhub/internal/domain/access"
	"staffhub/internal/domain/auth"
	"staffhub/internal/domain/users"
	"staffhub/internal/transport/http/api"
	"staffhub/internal/transport/http/middleware"
	"staffhub/internal/transport/http/shared"
)

type Handler struct {
	Users    *users.Service
	Secret   string
	TokenTTL time.Duration
}

func NewHandler(users *users.Service, secret string, ttl time.Duration) *Handler {
	return &Handler{Users: users, Secret: secret, TokenTTL: ttl}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	UserID    string      `json:"userId"`
	Email     string      `json:"email"`
	Role      access.Role `json:"role"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("email", payload.Email, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, requestID) {
		return
	}

	user, err := h.Users.Authenticate(r.Context(), strings.TrimSpace(payload.Email), payload.Password)
	switch {
	case errors.Is(err, users.ErrInvalidCredentials), errors.Is(err, users.ErrInactive):
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	case err != nil:
		slog.Error("login failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", requestID)
		return
	}

	h.issue(w, r, user)
}

// HandleRefresh re-issues a token for the current principal using the role
// currently stored for the user, so role changes take effect on refresh.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	user, err := h.Users.Get(r.Context(), principal.UserID)
	if errors.Is(err, users.ErrNotFound) {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "session expired", requestID)
		return
	}
	if err != nil {
		slog.Error("refresh lookup failed", "userId", principal.UserID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "refresh_failed", "failed to refresh token", requestID)
		return
	}
	if !user.Active {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "session expired", requestID)
		return
	}

	h.issue(w, r, user)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request, user users.User) {
	requestID := middleware.GetRequestID(r.Context())
	token, expires, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	}, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}

	api.Success(w, tokenResponse{
		Token:     token,
		ExpiresAt: expires,
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
	}, requestID)
}
