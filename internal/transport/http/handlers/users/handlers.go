package usershandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"staffhub/internal/domain/access"
	"staffhub/internal/domain/audit"
	"staffhub/internal/domain/users"
	"staffhub/internal/transport/http/api"
	"staffhub/internal/transport/http/middleware"
	"staffhub/internal/transport/http/shared"
)

type Handler struct {
	Users *users.Service
	Gate  *middleware.Gate
	Audit audit.Recorder
}

func NewHandler(svc *users.Service, gate *middleware.Gate, recorder audit.Recorder) *Handler {
	return &Handler{Users: svc, Gate: gate, Audit: recorder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Use(h.Gate.RequirePermission(access.PermManageUsers))
		r.Get("/", h.handleList)
		r.Get("/{userID}", h.handleGet)
		r.Patch("/{userID}/role", h.handleAssignRole)
	})
}

type roleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	result, err := h.Users.List(r.Context(), page.Limit, page.Offset)
	if err != nil {
		slog.Error("list users failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "users_list_failed", "failed to list users", requestID)
		return
	}
	shared.WriteTotal(w, result.Total)
	api.Success(w, result.Users, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, err := h.Users.Get(r.Context(), chi.URLParam(r, "userID"))
	if errors.Is(err, users.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
		return
	}
	if err != nil {
		slog.Error("get user failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "user_get_failed", "failed to load user", requestID)
		return
	}
	api.Success(w, user, requestID)
}

func (h *Handler) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var payload roleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("role", payload.Role, "is required")
	role, known := access.ParseRole(payload.Role)
	if payload.Role != "" && !known {
		v.Add("role", "unknown role")
	}
	if v.Reject(w, requestID) {
		return
	}

	userID := chi.URLParam(r, "userID")
	change, err := h.Users.AssignRole(r.Context(), actor.UserID, actor.Role, userID, role)
	switch {
	case errors.Is(err, users.ErrInvalidRole):
		api.Fail(w, http.StatusBadRequest, "invalid_role", "unknown role", requestID)
		return
	case errors.Is(err, users.ErrSelfRoleChange):
		api.Fail(w, http.StatusForbidden, "self_role_change", "you cannot change your own role", requestID)
		return
	case errors.Is(err, users.ErrSuperAdminGrant):
		api.Fail(w, http.StatusForbidden, "forbidden", "only a super admin can grant or revoke super admin", requestID)
		return
	case errors.Is(err, users.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
		return
	case err != nil:
		slog.Error("assign role failed", "userId", userID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "role_update_failed", "failed to update role", requestID)
		return
	}

	if change.Before != change.After && h.Audit != nil {
		evt := audit.Event{
			ActorID:    actor.UserID,
			ActorRole:  string(actor.Role),
			Action:     audit.ActionUserRoleChanged,
			EntityType: audit.EntityUser,
			EntityID:   userID,
		}
		if err := h.Audit.Record(r.Context(), evt, map[string]string{"role": string(change.Before)}, map[string]string{"role": string(change.After)}); err != nil {
			slog.Warn("audit role change failed", "userId", userID, "err", err)
		}
	}
	api.Success(w, change, requestID)
}
