package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		// Ollama doesn't require an Authorization header.
		if r.Header.Get("Authorization") != "" {
			t.Error("Ollama should not send Authorization header")
		}

		var req openaiRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "llama3:8b" {
			t.Errorf("model = %q, want default llama3:8b", req.Model)
		}

		var resp openaiResponse
		resp.Model = "llama3:8b"
		resp.Choices = []struct {
			Message openaiMessage `json:"message"`
		}{
			{Message: openaiMessage{Role: "assistant", Content: "Ollama response"}},
		}
		resp.Usage.PromptTokens = 5
		resp.Usage.CompletionTokens = 10
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL)

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "Ollama response" {
		t.Errorf("Content = %q, want %q", resp.Content, "Ollama response")
	}
	if resp.InputTokens != 5 {
		t.Errorf("InputTokens = %d, want 5", resp.InputTokens)
	}
}

func TestOllamaProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"model not loaded"}`))
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL)

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("Complete() should return error on non-200 status")
	}
}

func TestOllamaProvider_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/version" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"version":"0.5.1"}`))
	}))
	defer server.Close()

	if err := NewOllamaProvider(server.URL).HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}
