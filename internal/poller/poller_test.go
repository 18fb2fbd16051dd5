package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adam-tracht/printgenie.ai/internal/domain"
)

func TestRunStopsOnDone(t *testing.T) {
	calls := 0
	err := Run(context.Background(), Options{Interval: time.Millisecond}, func(ctx context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRunPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := Run(context.Background(), Options{Interval: time.Millisecond}, func(ctx context.Context) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want %v", err, boom)
	}
}

func TestRunTimesOutOnMaxAttempts(t *testing.T) {
	calls := 0
	err := Run(context.Background(), Options{Interval: time.Millisecond, MaxAttempts: 5}, func(ctx context.Context) (bool, error) {
		calls++
		return false, nil
	})
	if !errors.Is(err, domain.ErrTimedOut) {
		t.Fatalf("Run error = %v, want ErrTimedOut", err)
	}
	if calls != 5 {
		t.Fatalf("calls = %d, want 5", calls)
	}
}

func TestRunTimesOutOnDeadline(t *testing.T) {
	err := Run(context.Background(), Options{Interval: time.Millisecond, MaxWait: 5 * time.Millisecond}, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, domain.ErrTimedOut) {
		t.Fatalf("Run error = %v, want ErrTimedOut", err)
	}
}

func TestRunCancelledBeforeFirstPoll(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, Options{Interval: time.Hour}, func(ctx context.Context) (bool, error) {
		t.Fatal("poll fn must not run after cancellation")
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
}
