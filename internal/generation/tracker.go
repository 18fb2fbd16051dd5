package generation

import (
	"sync"

	"github.com/adam-tracht/printgenie.ai/internal/domain"
)

// Tracker keeps one session's latest generation job. Every new attempt
// bumps the epoch; results carrying an older epoch are ignored, so a
// slow first job can never overwrite a regenerated one.
type Tracker struct {
	mu    sync.Mutex
	epoch uint64
	job   *domain.GenerationJob
}

// Begin adopts a freshly started job as the session's current one and
// returns the epoch its results must carry.
func (t *Tracker) Begin(job *domain.GenerationJob) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.epoch++
	job.Epoch = t.epoch
	t.job = job
	return t.epoch
}

// Apply installs a job update if its epoch is still current. Stale
// updates report false and leave the tracker untouched.
func (t *Tracker) Apply(epoch uint64, job *domain.GenerationJob) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if epoch != t.epoch {
		return false
	}
	job.Epoch = epoch
	t.job = job
	return true
}

// Current returns the tracked job and its epoch.
func (t *Tracker) Current() (*domain.GenerationJob, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.job, t.epoch
}

// Confirm returns the completed result the session locked in, if any.
func (t *Tracker) Confirm() (imageURL, imageID string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.job == nil || t.job.Status != domain.JobStatusCompleted {
		return "", "", false
	}
	return t.job.ResultImageURL, t.job.ResultImageID, true
}

// Reset drops the tracked job and invalidates in-flight results.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.epoch++
	t.job = nil
}
