// Package jobstore keeps generation job state in a keyed store with TTL
// eviction so any API instance can answer status polls. A process-local
// map neither survives restarts nor works behind a load balancer, so
// Redis backs production and the in-memory store backs dev and tests.
package jobstore

import (
	"context"
	"time"

	"github.com/adam-tracht/printgenie.ai/internal/domain"
)

// Store is the contract shared by the Redis and in-memory backends.
type Store interface {
	// Put records a job snapshot, refreshing its TTL.
	Put(ctx context.Context, job domain.GenerationJob) error
	// Get returns the current snapshot or domain.ErrNotFound.
	Get(ctx context.Context, id string) (domain.GenerationJob, error)
	// Enqueue pushes a job id onto the generation work queue.
	Enqueue(ctx context.Context, id string) error
	// Dequeue blocks up to timeout for the next queued job id. An empty
	// id with nil error means the wait elapsed.
	Dequeue(ctx context.Context, timeout time.Duration) (string, error)
	// ClaimOnce atomically claims a one-shot marker. It returns true for
	// the first caller and false for everyone after, until ttl expires.
	ClaimOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release drops a claimed marker so the work it guards can be retried.
	Release(ctx context.Context, key string) error
}

// Complete transitions a job to its terminal completed state.
func Complete(ctx context.Context, s Store, id, imageURL, imageID string) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	job.Status = domain.JobStatusCompleted
	job.ResultImageURL = imageURL
	job.ResultImageID = imageID
	job.Error = ""
	job.UpdatedAt = time.Now().UTC()
	return s.Put(ctx, job)
}

// Fail transitions a job to its terminal failed state.
func Fail(ctx context.Context, s Store, id, message string) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	job.Status = domain.JobStatusFailed
	job.Error = message
	job.UpdatedAt = time.Now().UTC()
	return s.Put(ctx, job)
}
