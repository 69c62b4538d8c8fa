package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/config"
)

type pingRoute struct{ path string }

func (p pingRoute) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET(p.path, func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterDeps{
		Config:  config.Config{Env: "dev", CORSAllowOrigin: []string{"http://localhost:3000"}},
		Health:  health.NewService(nil),
		Public:  []RouteRegistrar{pingRoute{path: "/public"}},
		Private: []RouteRegistrar{pingRoute{path: "/private"}},
	})
}

func TestHealthReportsMemoryStore(t *testing.T) {
	r := newTestRouter()
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"database":"memory"`) {
		t.Fatalf("unexpected health response %d %s", resp.Code, resp.Body.String())
	}
}

func TestPublicAndPrivateGroups(t *testing.T) {
	r := newTestRouter()

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/public", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected public 200, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/private", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected private 401, got %d", resp.Code)
	}
}

func TestAddr(t *testing.T) {
	cases := map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
