package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pchen41/gauntlet-reel-app/internal/log"
)

func TestNewServer_RequiresCoach(t *testing.T) {
	if _, err := NewServer(ServerConfig{Logger: log.NewNop()}); err == nil {
		t.Error("NewServer() without coach service succeeded, want error")
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeCoach{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHealth_NoIdentityRequired(t *testing.T) {
	srv := newTestServer(t, &fakeCoach{})

	// No X-User-ID header; probes must bypass the identity check.
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, err := NewServer(ServerConfig{
		Coach:       &fakeCoach{},
		Logger:      log.NewNop(),
		CORSOrigins: []string{"https://app.example.com"},
		RateBurst:   100,
	})
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestCORS_UnknownOriginGetsNoHeaders(t *testing.T) {
	srv, _ := NewServer(ServerConfig{
		Coach:       &fakeCoach{},
		Logger:      log.NewNop(),
		CORSOrigins: []string{"https://app.example.com"},
		RateBurst:   100,
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want no CORS headers for unknown origin", got)
	}
}

func TestRateLimit(t *testing.T) {
	srv, err := NewServer(ServerConfig{Coach: &fakeCoach{reply: "ok"}, Logger: log.NewNop(), RateBurst: 1})
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}

	first := doChat(t, srv, "u1", `{"message":"one"}`)
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", first.Code)
	}

	second := doChat(t, srv, "u1", `{"message":"two"}`)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After header")
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, &fakeCoach{reply: "ok"})
	rec := doChat(t, srv, "u1", `{"message":"hello"}`)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID header")
	}
}
