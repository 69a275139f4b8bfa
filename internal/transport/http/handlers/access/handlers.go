package accesshandler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"staffhub/internal/domain/access"
	"staffhub/internal/transport/http/api"
	"staffhub/internal/transport/http/middleware"
	"staffhub/internal/transport/http/shared"
)

type Handler struct {
	Table *access.Table
}

func NewHandler(table *access.Table) *Handler {
	return &Handler{Table: table}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/access", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/roles", h.handleRoles)
		r.Get("/permissions", h.handlePermissions)
		r.Get("/me", h.handleMe)
		r.Post("/check", h.handleCheck)
	})
}

type roleResponse struct {
	Role  access.Role `json:"role"`
	Label string      `json:"label"`
	Rank  int         `json:"rank"`
}

type permissionResponse struct {
	Permission   access.Permission `json:"permission"`
	Description  string            `json:"description"`
	AllowedRoles []access.Role     `json:"allowedRoles"`
}

type permissionsResponse struct {
	Permissions []permissionResponse `json:"permissions"`
	// Override names the role granted every permission regardless of the lists.
	Override access.Role `json:"override"`
}

type meResponse struct {
	UserID      string              `json:"userId"`
	Email       string              `json:"email,omitempty"`
	Role        access.Role         `json:"role"`
	Permissions []access.Permission `json:"permissions"`
}

type checkRequest struct {
	Role         string   `json:"role"`
	Permission   string   `json:"permission"`
	AllowedRoles []string `json:"allowedRoles"`
}

type checkResponse struct {
	Role       string `json:"role"`
	Permission string `json:"permission,omitempty"`
	Allowed    bool   `json:"allowed"`
}

func (h *Handler) handleRoles(w http.ResponseWriter, r *http.Request) {
	roles := access.AllRoles()
	out := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleResponse{Role: role, Label: role.Label(), Rank: role.Rank()})
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePermissions(w http.ResponseWriter, r *http.Request) {
	entries := h.Table.Entries()
	out := permissionsResponse{Permissions: make([]permissionResponse, 0, len(entries)), Override: access.RoleSuperAdmin}
	for _, entry := range entries {
		out.Permissions = append(out.Permissions, permissionResponse{
			Permission:   entry.Permission,
			Description:  entry.Description,
			AllowedRoles: entry.Allowed,
		})
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	api.Success(w, meResponse{
		UserID:      user.UserID,
		Email:       user.Email,
		Role:        user.Role,
		Permissions: h.Table.GrantedTo(user.Role),
	}, middleware.GetRequestID(r.Context()))
}

// handleCheck evaluates a role against a named permission or an explicit
// allowed-role list. The role is matched exactly as sent; values outside the
// role set, including differently cased ones, are evaluated and denied rather
// than rejected.
func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload checkRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("role", payload.Role, "is required")
	permission := strings.TrimSpace(payload.Permission)
	switch {
	case permission == "" && payload.AllowedRoles == nil:
		v.Add("permission", "permission or allowedRoles is required")
	case permission != "" && payload.AllowedRoles != nil:
		v.Add("allowedRoles", "must not be combined with permission")
	case permission != "" && !h.Table.Has(access.Permission(permission)):
		v.Add("permission", "unknown permission")
	}
	allowed := make([]access.Role, 0, len(payload.AllowedRoles))
	for _, raw := range payload.AllowedRoles {
		role, ok := access.ParseRole(raw)
		if !ok {
			v.Add("allowedRoles", "contains an unknown role")
			continue
		}
		allowed = append(allowed, role)
	}
	if v.Reject(w, requestID) {
		return
	}

	role := access.Role(payload.Role)
	var granted bool
	if permission != "" {
		granted = h.Table.Can(role, access.Permission(permission))
	} else {
		granted = access.HasPermission(role, allowed)
	}
	api.Success(w, checkResponse{Role: string(role), Permission: permission, Allowed: granted}, requestID)
}
