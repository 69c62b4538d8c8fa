package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteSendsSystemPrompt(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": " Detail-oriented engineer. "}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	c, err := NewClient("test-key", "claude-3-5-haiku-latest", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), "you write resumes", "summarize me")
	require.NoError(t, err)
	assert.Equal(t, "Detail-oriented engineer.", text)
	assert.Equal(t, "claude-3-5-haiku-latest", body["model"])

	system, ok := body["system"].([]any)
	require.True(t, ok, "system blocks missing: %v", body)
	require.Len(t, system, 1)
	assert.Equal(t, "you write resumes", system[0].(map[string]any)["text"])
}

func TestNewClientRequiresKeyAndModel(t *testing.T) {
	_, err := NewClient("", "claude-3-5-haiku-latest")
	assert.Error(t, err)
	_, err = NewClient("key", "")
	assert.Error(t, err)
}
