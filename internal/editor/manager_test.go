package editor

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/entitlements"
	"resume-builder/internal/resumes"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func withClock(c *fakeClock) Option {
	return func(m *Manager) { m.now = c.Now }
}

func TestManagerSharesSessionPerResume(t *testing.T) {
	svc := newResumeService(entitlements.LevelPremium)
	mgr := NewManager(svc, time.Hour)
	ctx := context.Background()
	defer mgr.Shutdown(ctx)

	stored, err := svc.Save(ctx, "user-1", resumes.Resume{Title: "orig"})
	require.NoError(t, err)

	a, err := mgr.Open(ctx, "user-1", stored.ID)
	require.NoError(t, err)
	b, err := mgr.Open(ctx, "user-1", stored.ID)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, mgr.Len())

	require.NoError(t, b.Apply(StepGeneralInfo, []byte(`{"title":"new title"}`)))
	require.NoError(t, b.Flush(ctx))
	require.NoError(t, a.Apply(StepSummary, []byte(`{"summary":"s"}`)))
	require.NoError(t, a.Flush(ctx))

	got, err := svc.Get(ctx, "user-1", stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "new title", got.Title)
	assert.Equal(t, "s", got.Summary)

	_, err = mgr.Open(ctx, "user-2", stored.ID)
	assert.ErrorIs(t, err, resumes.ErrNotFound)
}

func TestManagerReopensSavedDraftBySession(t *testing.T) {
	svc := newResumeService(entitlements.LevelPremium)
	mgr := NewManager(svc, time.Hour)
	ctx := context.Background()
	defer mgr.Shutdown(ctx)

	draft, err := mgr.Open(ctx, "user-1", "")
	require.NoError(t, err)
	require.NoError(t, draft.Apply(StepSummary, []byte(`{"summary":"first"}`)))
	require.NoError(t, draft.Flush(ctx))
	require.NotEmpty(t, draft.ResumeID())

	again, err := mgr.Open(ctx, "user-1", draft.ResumeID())
	require.NoError(t, err)
	assert.Same(t, draft, again)
}

func TestManagerCapsSessionsPerUser(t *testing.T) {
	mgr := NewManager(newResumeService(entitlements.LevelPremiumPlus), time.Hour, WithMaxSessionsPerUser(2))
	ctx := context.Background()
	defer mgr.Shutdown(ctx)

	first, err := mgr.Open(ctx, "user-1", "")
	require.NoError(t, err)
	_, err = mgr.Open(ctx, "user-1", "")
	require.NoError(t, err)
	_, err = mgr.Open(ctx, "user-1", "")
	assert.ErrorIs(t, err, ErrTooManySessions)

	_, err = mgr.Open(ctx, "user-2", "")
	require.NoError(t, err, "the cap is per user")

	require.NoError(t, mgr.Close(ctx, "user-1", first.ID))
	_, err = mgr.Open(ctx, "user-1", "")
	assert.NoError(t, err)
}

func TestManagerClosesIdleSessions(t *testing.T) {
	svc := newResumeService(entitlements.LevelPremium)
	clock := &fakeClock{now: time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC)}
	mgr := NewManager(svc, time.Hour, WithIdleTimeout(time.Minute), withClock(clock))
	ctx := context.Background()
	defer mgr.Shutdown(ctx)

	idle, err := mgr.Open(ctx, "user-1", "")
	require.NoError(t, err)
	active, err := mgr.Open(ctx, "user-1", "")
	require.NoError(t, err)
	require.NoError(t, idle.Apply(StepSummary, []byte(`{"summary":"unsaved"}`)))

	clock.Advance(40 * time.Second)
	_, err = mgr.Get("user-1", active.ID)
	require.NoError(t, err)
	clock.Advance(40 * time.Second)

	assert.Equal(t, 1, mgr.CloseIdle(ctx))
	assert.Equal(t, 1, mgr.Len())

	_, err = mgr.Get("user-1", idle.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = mgr.Get("user-1", active.ID)
	assert.NoError(t, err)

	require.NotEmpty(t, idle.ResumeID(), "expiry flushes pending edits")
	stored, err := svc.Get(ctx, "user-1", idle.ResumeID())
	require.NoError(t, err)
	assert.Equal(t, "unsaved", stored.Summary)

	assert.ErrorIs(t, idle.Apply(StepSummary, []byte(`{"summary":"late"}`)), ErrSessionClosed)
}

func TestManagerShutdownRejectsLaterOpens(t *testing.T) {
	mgr := NewManager(newResumeService(entitlements.LevelPremium), time.Hour, WithIdleTimeout(time.Minute))
	ctx := context.Background()

	_, err := mgr.Open(ctx, "user-1", "")
	require.NoError(t, err)
	require.NoError(t, mgr.Shutdown(ctx))
	require.NoError(t, mgr.Shutdown(ctx))
	assert.Zero(t, mgr.Len())

	_, err = mgr.Open(ctx, "user-1", "")
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestWriteThroughPersistsBeforeResponding(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newResumeService(entitlements.LevelPremium)
	mgr := NewManager(svc, time.Hour, WithWriteThrough())
	defer mgr.Shutdown(context.Background())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", c.GetHeader("X-Test-User"))
		c.Next()
	})
	NewHandler(mgr).RegisterRoutes(r.Group("/api/v1"))

	resp := doJSON(r, http.MethodPost, "/api/v1/editor/sessions", "user-1", "")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	sess := onlySession(t, mgr)

	resp = doJSON(r, http.MethodPatch, "/api/v1/editor/sessions/"+sess.ID+"/steps/summary", "user-1", `{"summary":"durable"}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	require.NotEmpty(t, sess.ResumeID())
	stored, err := svc.Get(context.Background(), "user-1", sess.ResumeID())
	require.NoError(t, err)
	assert.Equal(t, "durable", stored.Summary)
	assert.False(t, sess.State().HasPending)
}

func onlySession(t *testing.T, m *Manager) *Session {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.Len(t, m.sessions, 1)
	for _, sess := range m.sessions {
		return sess
	}
	return nil
}
