package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestNewClientRequiresKeyAndModel(t *testing.T) {
	if _, err := NewClient(context.Background(), "", "gemini-1.5-flash"); err == nil {
		t.Fatalf("expected missing key error")
	}
	if _, err := NewClient(context.Background(), "key", ""); err == nil {
		t.Fatalf("expected missing model error")
	}
}

func TestExtractTextJoinsTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("Job title: "), genai.Text("Engineer")}},
		}},
	}
	if got := extractText(resp); got != "Job title: Engineer" {
		t.Fatalf("unexpected text %q", got)
	}
	if got := extractText(&genai.GenerateContentResponse{}); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
	if got := extractText(nil); got != "" {
		t.Fatalf("expected empty text for nil response, got %q", got)
	}
}
