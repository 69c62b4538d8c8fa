package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func TestCompleteSendsSystemAndUserMessages(t *testing.T) {
	var got chatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","model":"gpt-4o-mini","choices":[{"message":{"role":"assistant","content":"  Seasoned engineer.  "}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient("sk-test", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.url = srv.URL

	text, err := c.Complete(context.Background(), "be brief", "write a summary")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "Seasoned engineer." {
		t.Fatalf("unexpected text %q", text)
	}
	if auth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "write a summary" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
	if got.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model %q", got.Model)
	}
}

func TestCompleteReportsProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	c, _ := NewClient("sk-test", "gpt-4o-mini")
	c.url = srv.URL
	if _, err := c.Complete(context.Background(), "s", "u"); err == nil || !strings.Contains(err.Error(), "slow down") {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestCompleteNoChoicesIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"c1","choices":[]}`))
	}))
	defer srv.Close()

	c, _ := NewClient("sk-test", "gpt-4o-mini")
	c.url = srv.URL
	text, err := c.Complete(context.Background(), "s", "u")
	if err != nil || text != "" {
		t.Fatalf("expected empty text without error, got %q, %v", text, err)
	}
}

func TestNewClientRequiresKeyAndModel(t *testing.T) {
	if _, err := NewClient("", "gpt-4o-mini"); err == nil {
		t.Fatalf("expected missing key error")
	}
	if _, err := NewClient("sk", " "); err == nil {
		t.Fatalf("expected missing model error")
	}
}
