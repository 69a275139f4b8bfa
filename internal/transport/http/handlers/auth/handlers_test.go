package authhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"staffhub/internal/domain/access"
	"staffhub/internal/domain/auth"
	"staffhub/internal/domain/users"
	"staffhub/internal/transport/http/middleware"
)

const testSecret = "test-secret"

func setup(t *testing.T) (*Handler, *users.MemoryStore, string) {
	t.Helper()
	store := users.NewMemoryStore()
	svc := users.NewService(store)
	if _, err := svc.EnsureUser(context.Background(), "mgr@example.com", "Password123", access.RoleManager); err != nil {
		t.Fatalf("seed: %v", err)
	}
	creds, err := store.CredentialsByEmail(context.Background(), "mgr@example.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	return NewHandler(svc, testSecret, time.Hour), store, creds.ID
}

func postLogin(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	middleware.RequestID(http.HandlerFunc(h.HandleLogin)).ServeHTTP(rec, req)
	return rec
}

func decodeToken(t *testing.T, rec *httptest.ResponseRecorder) tokenResponse {
	t.Helper()
	var env struct {
		Data tokenResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env.Data
}

func TestLoginIssuesTokenWithRole(t *testing.T) {
	h, _, id := setup(t)

	rec := postLogin(h, `{"email":"MGR@example.com","password":"Password123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeToken(t, rec)
	if out.UserID != id || out.Role != access.RoleManager {
		t.Fatalf("unexpected response %+v", out)
	}

	claims, err := auth.ParseToken(testSecret, out.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Principal().Role != access.RoleManager {
		t.Fatalf("unexpected claim role %q", claims.Role)
	}
}

func TestLoginRejects(t *testing.T) {
	h, store, id := setup(t)

	cases := map[string]struct {
		body string
		code int
	}{
		"bad json":       {`{`, http.StatusBadRequest},
		"missing fields": {`{"email":""}`, http.StatusBadRequest},
		"wrong password": {`{"email":"mgr@example.com","password":"nope"}`, http.StatusUnauthorized},
		"unknown user":   {`{"email":"x@example.com","password":"Password123"}`, http.StatusUnauthorized},
	}
	for name, tc := range cases {
		if rec := postLogin(h, tc.body); rec.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d", name, tc.code, rec.Code)
		}
	}

	store.SetActive(id, false)
	if rec := postLogin(h, `{"email":"mgr@example.com","password":"Password123"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("inactive: expected 401, got %d", rec.Code)
	}
}

func TestRefreshPicksUpRoleChange(t *testing.T) {
	h, store, id := setup(t)
	if err := store.UpdateRole(context.Background(), id, access.RoleHRAdmin); err != nil {
		t.Fatalf("update: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{UserID: id, Role: access.RoleManager}))
	rec := httptest.NewRecorder()
	h.HandleRefresh(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if out := decodeToken(t, rec); out.Role != access.RoleHRAdmin {
		t.Fatalf("expected refreshed role hr_admin, got %s", out.Role)
	}

	rec = httptest.NewRecorder()
	h.HandleRefresh(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous refresh: expected 401, got %d", rec.Code)
	}
}
