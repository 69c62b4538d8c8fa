package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/entitlements"
)

func newEditorRouter(t *testing.T) (*gin.Engine, *Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mgr := NewManager(newResumeService(entitlements.LevelPremium), time.Hour)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set("userId", id)
		}
		c.Next()
	})
	NewHandler(mgr).RegisterRoutes(r.Group("/api/v1"))
	return r, mgr
}

func doJSON(r *gin.Engine, method, path, user string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestEditorHandlerFlow(t *testing.T) {
	r, mgr := newEditorRouter(t)
	defer mgr.Shutdown(context.Background())

	resp := doJSON(r, http.MethodPost, "/api/v1/editor/sessions", "user-1", "")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var st State
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &st))
	assert.Equal(t, StepGeneralInfo, st.CurrentStep)
	assert.Equal(t, StepPersonalInfo, st.NextStep)
	base := "/api/v1/editor/sessions/" + st.SessionID

	resp = doJSON(r, http.MethodPatch, base+"/steps/personal-info", "user-1", `{"email":"bad"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "validation_error")

	resp = doJSON(r, http.MethodPatch, base+"/steps/work-experience", "user-1",
		`{"workExperiences":[{"position":"A"},{"position":"B"}]}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = doJSON(r, http.MethodPost, base+"/reorder", "user-1", `{"list":"workExperiences","from":0,"to":1}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &st))
	assert.Equal(t, "B", st.Draft.WorkExperiences[0].Position)

	resp = doJSON(r, http.MethodPost, base+"/navigate", "user-1", `{"direction":"previous"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &st))
	assert.Equal(t, StepGeneralInfo, st.CurrentStep)

	resp = doJSON(r, http.MethodPost, base+"/flush", "user-1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &st))
	assert.NotEmpty(t, st.ResumeID)
	assert.False(t, st.HasPending)

	resp = doJSON(r, http.MethodGet, base, "user-2", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = doJSON(r, http.MethodGet, base, "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = doJSON(r, http.MethodDelete, base, "user-1", "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	resp = doJSON(r, http.MethodGet, base, "user-1", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
