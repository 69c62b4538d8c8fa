package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	sharedauth "resume-builder/internal/shared/auth"
	"resume-builder/internal/users"
)

func newGoogleRouter(t *testing.T, clientID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := sharedauth.NewTokens("secret", time.Hour, false)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	svc := NewGoogleService(clientID, "client-secret", "http://localhost:8080/api/v1/auth/google/callback",
		"http://localhost:3000/auth/callback", tokens, users.NewService(users.NewMemoryRepo()))
	r := gin.New()
	svc.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestStartRedirectsWithState(t *testing.T) {
	r := newGoogleRouter(t, "client-id")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.Code)
	}
	loc, err := url.Parse(resp.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if loc.Query().Get("state") == "" || loc.Query().Get("client_id") != "client-id" {
		t.Fatalf("unexpected redirect %s", loc)
	}
}

func TestStartWithoutConfigFails(t *testing.T) {
	r := newGoogleRouter(t, "")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestCallbackRejectsUnknownState(t *testing.T) {
	r := newGoogleRouter(t, "client-id")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state=nope&code=abc", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest || !strings.Contains(resp.Body.String(), "invalid or expired state") {
		t.Fatalf("expected state rejection, got %d %s", resp.Code, resp.Body.String())
	}
}

func TestStateStoreConsumesOnce(t *testing.T) {
	s := newStateStore()
	s.put("a", time.Now().Add(time.Minute))
	s.put("old", time.Now().Add(-time.Minute))
	if !s.consume("a") {
		t.Fatalf("expected first consume to succeed")
	}
	if s.consume("a") {
		t.Fatalf("expected replayed state to fail")
	}
	if s.consume("old") {
		t.Fatalf("expected expired state to fail")
	}
}

func TestAppendToken(t *testing.T) {
	got, err := appendToken("http://localhost:3000/auth/callback?next=%2Fresumes", "tok")
	if err != nil {
		t.Fatalf("appendToken: %v", err)
	}
	u, _ := url.Parse(got)
	if u.Query().Get("token") != "tok" || u.Query().Get("next") != "/resumes" {
		t.Fatalf("unexpected url %s", got)
	}
	if _, err := appendToken("", "tok"); err == nil {
		t.Fatalf("expected error for empty redirect")
	}
}
