package pixelcut

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientUpscale(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-KEY"); got != "test-key" {
			t.Fatalf("unexpected api key header: %s", got)
		}
		if r.URL.Path != "/v1/upscale" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var payload upscaleRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload.Scale != 4 {
			t.Fatalf("scale = %d, want 4", payload.Scale)
		}
		_ = json.NewEncoder(w).Encode(upscaleResponse{ResultURL: "https://cdn.example/big.png"})
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "test-key", BaseURL: ts.URL})
	got, err := client.Upscale(context.Background(), "https://cdn.example/small.png", 4)
	if err != nil {
		t.Fatalf("Upscale error: %v", err)
	}
	if got != "https://cdn.example/big.png" {
		t.Fatalf("unexpected url: %s", got)
	}
}

func TestClientUpscaleClampsScale(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload upscaleRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload.Scale != 2 {
			t.Fatalf("scale = %d, want minimum 2", payload.Scale)
		}
		_ = json.NewEncoder(w).Encode(upscaleResponse{ResultURL: "https://cdn.example/big.png"})
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "test-key", BaseURL: ts.URL})
	if _, err := client.Upscale(context.Background(), "https://cdn.example/small.png", 1); err != nil {
		t.Fatalf("Upscale error: %v", err)
	}
}

func TestClientUpscaleProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(upscaleResponse{Error: "image too large"})
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "test-key", BaseURL: ts.URL})
	if _, err := client.Upscale(context.Background(), "https://cdn.example/small.png", 2); err == nil {
		t.Fatalf("expected error from provider failure")
	}
}

func TestClientContentLength(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Fatalf("method = %s, want HEAD", r.Method)
		}
		w.Header().Set("Content-Length", "1048576")
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "test-key", BaseURL: ts.URL})
	size, err := client.ContentLength(context.Background(), ts.URL+"/file.png")
	if err != nil {
		t.Fatalf("ContentLength error: %v", err)
	}
	if size != 1048576 {
		t.Fatalf("size = %d, want 1048576", size)
	}
}
