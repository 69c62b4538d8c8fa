package entitlements

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/subscriptions"
)

type fixedCounter int

func (f fixedCounter) CountByUser(context.Context, string) (int, error) { return int(f), nil }

type failingReader struct{}

func (failingReader) GetByUser(context.Context, string) (*subscriptions.Record, error) {
	return nil, errors.New("db down")
}

func newTestService(t *testing.T) (*Service, *subscriptions.MemoryRepo) {
	t.Helper()
	repo := subscriptions.NewMemoryRepo()
	svc := NewService(repo, NewPlanTable("price_premium", "price_plus"))
	svc.Now = func() time.Time { return time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestServiceLevel(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	lvl, err := svc.Level(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, LevelFree, lvl)

	require.NoError(t, repo.Upsert(ctx, subscriptions.Record{
		UserID:           "user-1",
		CustomerID:       "cus_1",
		PriceID:          "price_premium",
		CurrentPeriodEnd: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
	}))
	lvl, err = svc.Level(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, LevelPremium, lvl)

	_, err = svc.Level(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestServiceLevelPropagatesStoreErrors(t *testing.T) {
	svc := NewService(failingReader{}, NewPlanTable("a", "b"))
	_, err := svc.Level(context.Background(), "user-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestHandlerReturnsSnapshot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(t)
	h := NewHandler(svc, fixedCounter(1))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	h.RegisterRoutes(r.Group("/api/v1"))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/entitlements", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"level":"free","canCreateResume":false,"canUseAiTools":false,"canUseCustomizations":false,"resumeQuota":1,"resumeCount":1}`, resp.Body.String())
}
