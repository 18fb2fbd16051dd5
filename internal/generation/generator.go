package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generator renders one image for a prompt and returns its URL.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// FakeGenerator is the configuration-selected stand-in provider for
// development and tests. It never calls out; it answers with a
// deterministic-looking placeholder URL after a short delay.
type FakeGenerator struct {
	BaseURL string
	Delay   time.Duration
}

func (f *FakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("fake generator: prompt required")
	}
	delay := f.Delay
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	base := strings.TrimRight(f.BaseURL, "/")
	if base == "" {
		base = "https://picsum.photos/seed"
	}
	return fmt.Sprintf("%s/%s/1024/1024", base, uuid.NewString()), nil
}
