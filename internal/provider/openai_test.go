package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("missing auth header")
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Error("missing content-type")
		}
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %s", r.URL.Path)
		}

		var req openaiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %s", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("messages = %+v", req.Messages)
		}
		if !strings.Contains(req.Messages[0].Content, "Ticket Title") {
			t.Error("prompt not forwarded")
		}

		json.NewEncoder(w).Encode(openaiResponse{
			Choices: []openaiChoice{{Message: openaiMessage{Role: "assistant", Content: "USER STORY:\nAs a user..."}}},
		})
	}))
	defer srv.Close()

	p := NewOpenAI("test-key", WithBaseURL(srv.URL), WithModel("test-model"))
	got, err := p.Generate(context.Background(), "Ticket Title: Slow page")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(got, "USER STORY:") {
		t.Errorf("got %q", got)
	}
}

func TestOpenAIGenerate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAI("test-key", WithBaseURL(srv.URL))
	_, err := p.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error = %v", err)
	}
}

func TestOpenAIGenerate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(openaiResponse{})
	}))
	defer srv.Close()

	p := NewOpenAI("test-key", WithBaseURL(srv.URL))
	_, err := p.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestOpenAIName(t *testing.T) {
	if got := NewOpenAI("k").Name(); got != "openai" {
		t.Errorf("Name() = %s", got)
	}
}
