package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		var payload generateRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if payload.Model != "dall-e-3" {
			t.Fatalf("unexpected model: %s", payload.Model)
		}
		if payload.Prompt != "sunset over mountains" {
			t.Fatalf("unexpected prompt: %s", payload.Prompt)
		}
		if payload.N != 1 || payload.Size != "1024x1024" {
			t.Fatalf("unexpected parameters: n=%d size=%s", payload.N, payload.Size)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": "https://images.example/out.png"}},
		})
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "test-key", BaseURL: ts.URL})
	got, err := client.Generate(context.Background(), "sunset over mountains")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if got != "https://images.example/out.png" {
		t.Fatalf("unexpected url: %s", got)
	}
}

func TestClientGenerateProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "billing hard limit reached", "type": "invalid_request_error"},
		})
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "test-key", BaseURL: ts.URL})
	if _, err := client.Generate(context.Background(), "anything"); err == nil {
		t.Fatalf("expected error from provider failure")
	}
}

func TestClientGenerateMissingKey(t *testing.T) {
	client := NewClient(Options{})
	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected error when api key missing")
	}
}
