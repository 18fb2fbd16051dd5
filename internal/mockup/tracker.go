package mockup

import (
	"context"
	"sync"

	"github.com/adam-tracht/printgenie.ai/internal/domain"
)

// Tracker keeps one session's live mockup. Changing the selection bumps
// the epoch and cancels the in-flight render; a late result from an
// earlier epoch is dropped.
type Tracker struct {
	mu     sync.Mutex
	epoch  uint64
	job    *domain.MockupJob
	cancel context.CancelFunc
}

// Begin starts a new render attempt for the current selection. It
// cancels any in-flight attempt and returns the derived context plus
// the epoch results must carry.
func (t *Tracker) Begin(parent context.Context) (context.Context, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	t.cancel = cancel
	t.epoch++
	t.job = &domain.MockupJob{Status: domain.JobStatusProcessing, Epoch: t.epoch}
	return ctx, t.epoch
}

// Apply installs a finished job if its epoch is still current.
func (t *Tracker) Apply(epoch uint64, job *domain.MockupJob) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if epoch != t.epoch {
		return false
	}
	job.Epoch = epoch
	t.job = job
	return true
}

// Current returns the tracked job, which may be mid-render.
func (t *Tracker) Current() *domain.MockupJob {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.job
}

// Completed returns the finished mockup, if the current attempt is done.
func (t *Tracker) Completed() (*domain.MockupJob, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.job == nil || t.job.Status != domain.JobStatusCompleted {
		return nil, false
	}
	return t.job, true
}

// Reset drops the mockup and cancels any in-flight render. Called when
// the product or variant selection changes.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.epoch++
	t.job = nil
}
