package jobstore

import (
	"context"
	"sync"
	"time"

	"github.com/adam-tracht/printgenie.ai/internal/domain"
)

// MemoryStore is the single-process fallback used in development and
// tests. TTL semantics match the Redis backend: entries expire lazily on
// read.
type MemoryStore struct {
	mu     sync.Mutex
	jobs   map[string]memoryEntry
	claims map[string]time.Time
	queue  chan string
	ttl    time.Duration
	now    func() time.Time
}

type memoryEntry struct {
	job       domain.GenerationJob
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultJobTTL
	}
	return &MemoryStore{
		jobs:   make(map[string]memoryEntry),
		claims: make(map[string]time.Time),
		queue:  make(chan string, 256),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *MemoryStore) Put(ctx context.Context, job domain.GenerationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = memoryEntry{job: job, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (domain.GenerationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.jobs[id]
	if !ok {
		return domain.GenerationJob{}, domain.ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.jobs, id)
		return domain.GenerationJob{}, domain.ErrNotFound
	}
	return entry.job, nil
}

func (s *MemoryStore) Enqueue(ctx context.Context, id string) error {
	select {
	case s.queue <- id:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *MemoryStore) Dequeue(ctx context.Context, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case id := <-s.queue:
		return id, nil
	case <-timer.C:
		return "", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *MemoryStore) ClaimOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if until, ok := s.claims[key]; ok && s.now().Before(until) {
		return false, nil
	}
	s.claims[key] = s.now().Add(ttl)
	return true, nil
}

func (s *MemoryStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claims, key)
	return nil
}

var _ Store = (*MemoryStore)(nil)
