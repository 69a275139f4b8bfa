package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"staffhub/internal/domain/access"
	"staffhub/internal/domain/audit"
	"staffhub/internal/transport/http/api"
)

// Authorizer decides whether a role holds a permission. *access.Table
// implements it.
type Authorizer interface {
	Can(role access.Role, permission access.Permission) bool
}

type DecisionCounter interface {
	RecordDecision(allowed bool)
}

// AccountChecker reports whether the account behind a token may still act.
type AccountChecker interface {
	IsActive(ctx context.Context, userID string) (bool, error)
}

// Gate turns authorization decisions into HTTP responses. Audit, Metrics and
// Accounts are optional. With Accounts set, a token whose user has since been
// deactivated or removed is rejected before the permission is evaluated.
type Gate struct {
	Authorizer Authorizer
	Audit      audit.Recorder
	Metrics    DecisionCounter
	Accounts   AccountChecker
}

func NewGate(authorizer Authorizer, recorder audit.Recorder, counter DecisionCounter) *Gate {
	return &Gate{Authorizer: authorizer, Audit: recorder, Metrics: counter}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gate) RequirePermission(permission access.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			if g.Accounts != nil {
				active, err := g.Accounts.IsActive(r.Context(), user.UserID)
				if err != nil {
					slog.Error("account lookup failed", "userId", user.UserID, "err", err)
					api.Fail(w, http.StatusInternalServerError, "internal_error", "could not verify account", GetRequestID(r.Context()))
					return
				}
				if !active {
					api.Fail(w, http.StatusUnauthorized, "account_inactive", "account is no longer active", GetRequestID(r.Context()))
					return
				}
			}

			allowed := g.Authorizer.Can(user.Role, permission)
			if g.Metrics != nil {
				g.Metrics.RecordDecision(allowed)
			}
			if !allowed {
				g.recordDenial(r, user.UserID, user.Role, permission)
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(r.Context()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (g *Gate) recordDenial(r *http.Request, userID string, role access.Role, permission access.Permission) {
	slog.Info("access denied", "userId", userID, "role", role, "permission", permission, "path", r.URL.Path, "requestId", GetRequestID(r.Context()))
	if g.Audit == nil {
		return
	}
	evt := audit.Event{
		ActorID:    userID,
		ActorRole:  string(role),
		Action:     audit.ActionAccessDenied,
		EntityType: audit.EntityPermission,
		EntityID:   string(permission),
	}
	details := map[string]string{"method": r.Method, "path": r.URL.Path}
	if err := g.Audit.Record(r.Context(), evt, nil, details); err != nil {
		slog.Warn("audit record failed", "action", evt.Action, "err", err)
	}
}
