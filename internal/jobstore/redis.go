package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/adam-tracht/printgenie.ai/internal/domain"
)

const (
	jobKeyPrefix  = "genjob:"
	queueKey      = "genjob:queue"
	oncePrefix    = "once:"
	defaultJobTTL = 30 * time.Minute
)

// RedisStore persists job state in Redis so status polls are answerable
// by any instance. Terminal jobs expire with the key TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultJobTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, job domain.GenerationJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := s.rdb.Set(ctx, jobKeyPrefix+job.ID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store job: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (domain.GenerationJob, error) {
	payload, err := s.rdb.Get(ctx, jobKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.GenerationJob{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.GenerationJob{}, fmt.Errorf("load job: %w", err)
	}
	var job domain.GenerationJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return domain.GenerationJob{}, fmt.Errorf("decode job: %w", err)
	}
	return job, nil
}

func (s *RedisStore) Enqueue(ctx context.Context, id string) error {
	return s.rdb.LPush(ctx, queueKey, id).Err()
}

func (s *RedisStore) Dequeue(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := s.rdb.BRPop(ctx, timeout, queueKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("dequeue job: %w", err)
	}
	if len(res) != 2 {
		return "", nil
	}
	return res[1], nil
}

func (s *RedisStore) ClaimOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, oncePrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim marker: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, oncePrefix+key).Err(); err != nil {
		return fmt.Errorf("release marker: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
