package audithandler

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"staffhub/internal/domain/access"
	"staffhub/internal/domain/audit"
	"staffhub/internal/domain/auth"
	"staffhub/internal/transport/http/middleware"
)

func seedLog(t *testing.T) *audit.MemoryLog {
	t.Helper()
	log := audit.NewMemoryLog()
	events := []audit.Event{
		{ActorID: "u1", ActorRole: "employee", Action: audit.ActionAccessDenied, EntityType: audit.EntityPermission, EntityID: "payroll.manage"},
		{ActorID: "u2", ActorRole: "main_admin", Action: audit.ActionUserRoleChanged, EntityType: audit.EntityUser, EntityID: "u1"},
		{ActorID: "u1", ActorRole: "employee", Action: audit.ActionAccessDenied, EntityType: audit.EntityPermission, EntityID: "users.manage"},
	}
	for _, evt := range events {
		if err := log.Record(context.Background(), evt, nil, map[string]string{"k": "v"}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	return log
}

func serve(log *audit.MemoryLog, role access.Role, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithUser(req.Context(), auth.UserContext{UserID: "viewer", Role: role})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(log, middleware.NewGate(access.DefaultTable(), log, nil)).RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestListEventsFiltersAndCounts(t *testing.T) {
	log := seedLog(t)

	rec := serve(log, access.RoleMainAdmin, "/audit/events?action=access.denied&limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Total-Count") != "2" {
		t.Fatalf("unexpected total %q", rec.Header().Get("X-Total-Count"))
	}
	var env struct {
		Data []audit.Event `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data) != 1 || env.Data[0].EntityID != "users.manage" {
		t.Fatalf("expected newest denial first, got %+v", env.Data)
	}
	if env.Data[0].After != nil {
		t.Fatal("details must be omitted unless requested")
	}
}

func TestListEventsForbiddenForHRAdmin(t *testing.T) {
	log := seedLog(t)
	if rec := serve(log, access.RoleHRAdmin, "/audit/events"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if n, _ := log.Count(context.Background(), audit.Filter{Action: audit.ActionAccessDenied}); n != 3 {
		t.Fatalf("expected the denial to be recorded, got %d", n)
	}
}

func TestExportEventsCSV(t *testing.T) {
	rec := serve(seedLog(t), access.RoleSuperAdmin, "/audit/events/export?entityType=user")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 2 || rows[0][0] != "id" || rows[1][3] != audit.ActionUserRoleChanged {
		t.Fatalf("unexpected rows %v", rows)
	}
}

type countFailingLog struct {
	*audit.MemoryLog
}

func (countFailingLog) Count(context.Context, audit.Filter) (int, error) {
	return 0, errors.New("count unavailable")
}

func TestListEventsOmitsTotalWhenCountFails(t *testing.T) {
	log := seedLog(t)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithUser(req.Context(), auth.UserContext{UserID: "viewer", Role: access.RoleMainAdmin})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(countFailingLog{log}, middleware.NewGate(access.DefaultTable(), log, nil)).RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if _, ok := rec.Header()["X-Total-Count"]; ok {
		t.Fatalf("total must be omitted when counting fails, got %q", rec.Header().Get("X-Total-Count"))
	}
}
