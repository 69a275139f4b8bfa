package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"staffhub/internal/domain/access"
	"staffhub/internal/domain/auth"
)

func limitedNoContent(baseLimit int, window time.Duration) http.Handler {
	return SensitiveMutationRateLimit(baseLimit, window)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func loginRequest(email, remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"`+email+`","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	return req
}

func roleChangeRequest(actorID, remoteAddr string) *http.Request {
	ctx := context.WithValue(context.Background(), ctxKeyUser, auth.UserContext{UserID: actorID, Role: access.RoleMainAdmin})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/u2/role", strings.NewReader(`{"role":"manager"}`)).WithContext(ctx)
	req.RemoteAddr = remoteAddr
	return req
}

func serveStatus(h http.Handler, req *http.Request) int {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRoleChangeLimitKeyedByActor(t *testing.T) {
	limited := limitedNoContent(2, time.Minute)

	if code := serveStatus(limited, roleChangeRequest("admin-1", "198.51.100.11:2222")); code != http.StatusNoContent {
		t.Fatalf("expected first role change to pass, got %d", code)
	}
	if code := serveStatus(limited, roleChangeRequest("admin-1", "198.51.100.12:3333")); code != http.StatusTooManyRequests {
		t.Fatalf("expected same actor from another address to be throttled, got %d", code)
	}
	if code := serveStatus(limited, roleChangeRequest("admin-2", "198.51.100.11:2222")); code != http.StatusNoContent {
		t.Fatalf("expected a different actor to pass, got %d", code)
	}
}

func TestLoginLimitKeyedByEmailAndAddress(t *testing.T) {
	limited := limitedNoContent(4, time.Minute)

	if code := serveStatus(limited, loginRequest("a@example.com", "203.0.113.10:4444")); code != http.StatusNoContent {
		t.Fatalf("expected first login to pass, got %d", code)
	}
	if code := serveStatus(limited, loginRequest("A@example.com", "203.0.113.11:4444")); code != http.StatusTooManyRequests {
		t.Fatalf("expected the same email from another address to be throttled, got %d", code)
	}
	if code := serveStatus(limited, loginRequest("b@example.com", "203.0.113.10:5555")); code != http.StatusTooManyRequests {
		t.Fatalf("expected another email from the same address to be throttled, got %d", code)
	}
}

func TestLoginLimitKeepsBodyReadable(t *testing.T) {
	var body string
	limited := SensitiveMutationRateLimit(60, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := new(bytes.Buffer)
		if _, err := raw.ReadFrom(r.Body); err != nil {
			t.Errorf("read body: %v", err)
		}
		body = raw.String()
		w.WriteHeader(http.StatusNoContent)
	}))

	serveStatus(limited, loginRequest("a@example.com", "192.0.2.5:1000"))
	if !strings.Contains(body, `"a@example.com"`) {
		t.Fatalf("handler saw body %q", body)
	}
}

func TestRateLimitWindowReset(t *testing.T) {
	limited := limitedNoContent(4, 40*time.Millisecond)

	if code := serveStatus(limited, loginRequest("a@example.com", "192.0.2.20:1111")); code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := serveStatus(limited, loginRequest("a@example.com", "192.0.2.20:1111")); code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", code)
	}
	time.Sleep(50 * time.Millisecond)
	if code := serveStatus(limited, loginRequest("a@example.com", "192.0.2.20:1111")); code != http.StatusNoContent {
		t.Fatalf("expected request after window reset to pass, got %d", code)
	}
}

func TestRateLimitReturnsRetryMetadata(t *testing.T) {
	limited := limitedNoContent(4, time.Minute)
	serveStatus(limited, loginRequest("a@example.com", "192.0.2.30:1234"))

	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, loginRequest("a@example.com", "192.0.2.30:1234"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected throttled response, got %d", rec.Code)
	}
	for _, header := range []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Reset"} {
		if rec.Header().Get(header) == "" {
			t.Fatalf("expected %s header", header)
		}
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("expected no remaining requests, got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestReadRoutesBypassLimits(t *testing.T) {
	limited := limitedNoContent(4, time.Minute)
	for i := range 6 {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/access/permissions", nil)
		req.RemoteAddr = "198.51.100.40:8888"
		if code := serveStatus(limited, req); code != http.StatusNoContent {
			t.Fatalf("expected read request %d to bypass limits, got %d", i+1, code)
		}
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/access/check", strings.NewReader(`{}`))
	req.RemoteAddr = "198.51.100.40:8888"
	if code := serveStatus(limited, req); code != http.StatusNoContent {
		t.Fatalf("expected check to bypass limits, got %d", code)
	}
}
