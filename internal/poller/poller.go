// Package poller provides the shared cadence-and-termination primitive
// behind image generation and mockup rendering. Callers own submission
// and result handling; the poller only decides when to ask again and
// when to give up.
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/adam-tracht/printgenie.ai/internal/domain"
)

// PollFunc checks the remote job once. done=true stops the loop; a
// non-nil error stops it immediately.
type PollFunc func(ctx context.Context) (done bool, err error)

// Options bound a poll loop. Both limits exist so an abandoned tab
// cannot poll forever.
type Options struct {
	Interval    time.Duration
	MaxAttempts int
	MaxWait     time.Duration
}

const (
	defaultMaxAttempts = 150
	defaultMaxWait     = 5 * time.Minute
)

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = time.Second
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.MaxWait <= 0 {
		o.MaxWait = defaultMaxWait
	}
	return o
}

// Run polls fn at a fixed interval until it reports done, fails, the
// context is cancelled, or the loop exhausts its bounds. The first poll
// waits one full interval; remote jobs never finish instantly.
func Run(ctx context.Context, opts Options, fn PollFunc) error {
	opts = opts.withDefaults()

	deadline := time.Now().Add(opts.MaxWait)
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if time.Now().After(deadline) {
			break
		}
	}

	return fmt.Errorf("poll loop exhausted after %s: %w", opts.MaxWait, domain.ErrTimedOut)
}
