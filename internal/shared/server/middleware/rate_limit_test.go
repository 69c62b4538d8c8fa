package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newLimitedRouter(limiter *RateLimiter, rules map[string]RateLimitRule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	r.Use(RateLimit(RateLimitConfig{
		GroupFor: RateGroupForPath,
		Limiter:  limiter,
		Rules:    rules,
	}))
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	r.GET("/api/v1/resumes/:id", ok)
	r.POST("/api/v1/ai/summary", ok)
	r.PATCH("/api/v1/editor/sessions/:id/steps/:step", ok)
	r.POST("/api/v1/billing/checkout", ok)
	return r
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(method, path, nil))
	return resp
}

func TestRateGroupForPath(t *testing.T) {
	cases := map[string]string{
		"/api/v1/ai/work-experience":              RateGroupAI,
		"/api/v1/editor/sessions/s-1/steps/skill": RateGroupEditor,
		"/api/v1/billing/checkout":                RateGroupBilling,
		"/api/v1/billing/portal":                  RateGroupBilling,
		"/api/v1/billing/subscription":            RateGroupDefault,
		"/api/v1/resumes":                         RateGroupDefault,
	}
	for path, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, path, nil)
		if got := RateGroupForPath(c); got != want {
			t.Fatalf("%s: expected %s, got %s", path, want, got)
		}
	}
}

func TestRateLimitAIGroupStricterThanDefault(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := newLimitedRouter(NewRateLimiter(func() time.Time { return now }), map[string]RateLimitRule{
		RateGroupDefault: {Rate: 5, Burst: 10},
		RateGroupAI:      {Rate: 1, Burst: 2},
	})

	for i := 0; i < 3; i++ {
		if resp := serve(r, http.MethodGet, "/api/v1/resumes/resume-1"); resp.Code != http.StatusOK {
			t.Fatalf("resume request %d expected 200, got %d", i+1, resp.Code)
		}
	}
	for i := 0; i < 2; i++ {
		if resp := serve(r, http.MethodPost, "/api/v1/ai/summary"); resp.Code != http.StatusOK {
			t.Fatalf("ai request %d expected 200, got %d", i+1, resp.Code)
		}
	}
	if resp := serve(r, http.MethodPost, "/api/v1/ai/summary"); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("ai request 3 expected 429, got %d", resp.Code)
	}
	if resp := serve(r, http.MethodPatch, "/api/v1/editor/sessions/s-1/steps/summary"); resp.Code != http.StatusOK {
		t.Fatalf("editor group has no rule here, expected 200, got %d", resp.Code)
	}
}

func TestRateLimit429IncludesRetryAfter(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := newLimitedRouter(NewRateLimiter(func() time.Time { return now }), map[string]RateLimitRule{
		RateGroupBilling: {Rate: 1, Burst: 1},
	})

	if resp := serve(r, http.MethodPost, "/api/v1/billing/checkout"); resp.Code != http.StatusOK {
		t.Fatalf("expected first checkout 200, got %d", resp.Code)
	}
	resp := serve(r, http.MethodPost, "/api/v1/billing/checkout")
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After 1, got %q", resp.Header().Get("Retry-After"))
	}

	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Group        string `json:"group"`
				RetryAfterMs int    `json:"retryAfterMs"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != "rate_limited" || payload.Error.Details.Group != RateGroupBilling {
		t.Fatalf("unexpected error body %+v", payload.Error)
	}
	if payload.Error.Details.RetryAfterMs != 1000 {
		t.Fatalf("expected retryAfterMs 1000, got %d", payload.Error.Details.RetryAfterMs)
	}
}

func TestRateLimiterDropsIdleBuckets(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := DefaultRateLimitRules()[RateGroupDefault]

	for _, key := range []string{"user-1|DEFAULT", "user-2|DEFAULT", "user-3|DEFAULT"} {
		if ok, _ := limiter.Allow(key, rule); !ok {
			t.Fatalf("expected %s to pass", key)
		}
	}
	if limiter.Len() != 3 {
		t.Fatalf("expected 3 buckets, got %d", limiter.Len())
	}

	now = now.Add(bucketIdleTTL)
	if ok, _ := limiter.Allow("user-1|DEFAULT", rule); !ok {
		t.Fatalf("expected user-1 to pass after idling")
	}
	if limiter.Len() != 1 {
		t.Fatalf("expected idle buckets to be dropped, got %d", limiter.Len())
	}
}
