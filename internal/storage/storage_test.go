package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileStoreWriteAndPublicURL(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "https://cdn.example/files")
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	key, err := store.Write(context.Background(), "images/a.png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if key != "images/a.png" {
		t.Fatalf("key = %s", key)
	}

	data, err := os.ReadFile(filepath.Join(dir, "images", "a.png"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("content = %s", data)
	}

	if got := store.PublicURL(key); got != "https://cdn.example/files/images/a.png" {
		t.Fatalf("public url = %s", got)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	if _, err := store.Write(context.Background(), "../escape.png", []byte("x")); err == nil {
		t.Fatalf("expected traversal rejection")
	}
}

func TestSignerRoundTrip(t *testing.T) {
	signer, err := NewSigner("secret", "https://cdn.example/files")
	if err != nil {
		t.Fatalf("NewSigner error: %v", err)
	}

	signed, err := signer.SignedURL("images/a.png", time.Hour)
	if err != nil {
		t.Fatalf("SignedURL error: %v", err)
	}
	if !strings.HasPrefix(signed, "https://cdn.example/files/images/a.png?") {
		t.Fatalf("signed url = %s", signed)
	}

	query := signed[strings.Index(signed, "?")+1:]
	params := map[string]string{}
	for _, pair := range strings.Split(query, "&") {
		kv := strings.SplitN(pair, "=", 2)
		params[kv[0]] = kv[1]
	}
	if err := signer.Verify("images/a.png", params["expires"], params["sig"]); err != nil {
		t.Fatalf("Verify error: %v", err)
	}
}

func TestSignerRejectsExpiredAndTampered(t *testing.T) {
	signer, err := NewSigner("secret", "https://cdn.example/files")
	if err != nil {
		t.Fatalf("NewSigner error: %v", err)
	}
	base := time.Now()
	signer.now = func() time.Time { return base }

	signed, err := signer.SignedURL("images/a.png", time.Minute)
	if err != nil {
		t.Fatalf("SignedURL error: %v", err)
	}
	query := signed[strings.Index(signed, "?")+1:]
	params := map[string]string{}
	for _, pair := range strings.Split(query, "&") {
		kv := strings.SplitN(pair, "=", 2)
		params[kv[0]] = kv[1]
	}

	signer.now = func() time.Time { return base.Add(2 * time.Minute) }
	if err := signer.Verify("images/a.png", params["expires"], params["sig"]); err == nil {
		t.Fatalf("expected expiry rejection")
	}

	signer.now = func() time.Time { return base }
	if err := signer.Verify("images/other.png", params["expires"], params["sig"]); err == nil {
		t.Fatalf("expected signature rejection for a different key")
	}
}
