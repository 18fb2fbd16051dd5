package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adam-tracht/printgenie.ai/internal/domain"
	"github.com/adam-tracht/printgenie.ai/internal/infra"
	"github.com/adam-tracht/printgenie.ai/internal/jobstore"
)

// Options configures the generation service.
type Options struct {
	Store     jobstore.Store
	Generator Generator
	Logger    infra.Logger
	// Archiver, when set, copies finished images into our storage so
	// the result URL outlives the provider's link expiry.
	Archiver *Archiver
	// Inline runs jobs in a goroutine of the API process instead of
	// queueing them for a worker. Single-process dev mode.
	Inline bool
}

// Service owns generation jobs: it accepts prompts, tracks job status
// in the shared store, and executes jobs either inline or from the
// worker queue.
type Service struct {
	store     jobstore.Store
	generator Generator
	archiver  *Archiver
	logger    infra.Logger
	inline    bool
}

func NewService(opts Options) *Service {
	return &Service{
		store:     opts.Store,
		generator: opts.Generator,
		archiver:  opts.Archiver,
		logger:    opts.Logger,
		inline:    opts.Inline,
	}
}

// Start validates the prompt and records a pending job. The caller gets
// the job immediately and polls Status for the outcome.
func (s *Service) Start(ctx context.Context, prompt string) (*domain.GenerationJob, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt required: %w", domain.ErrValidation)
	}

	now := time.Now().UTC()
	job := domain.GenerationJob{
		ID:        uuid.NewString(),
		Prompt:    prompt,
		Status:    domain.JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Put(ctx, job); err != nil {
		return nil, fmt.Errorf("record job: %w", err)
	}

	if s.inline {
		go func() {
			runCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			s.Execute(runCtx, job.ID)
		}()
	} else if err := s.store.Enqueue(ctx, job.ID); err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	s.logger.Info().Str("job_id", job.ID).Bool("inline", s.inline).Msg("generation job accepted")
	return &job, nil
}

// Status looks up a job by id.
func (s *Service) Status(ctx context.Context, jobID string) (*domain.GenerationJob, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Execute runs one job to its terminal state. Safe to call from either
// the inline goroutine or the worker loop.
func (s *Service) Execute(ctx context.Context, jobID string) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("generation job vanished before execution")
		return
	}
	if job.Status.Terminal() {
		return
	}

	job.Status = domain.JobStatusProcessing
	job.UpdatedAt = time.Now().UTC()
	if err := s.store.Put(ctx, job); err != nil {
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("failed to mark job processing")
	}

	imageURL, err := s.generator.Generate(ctx, job.Prompt)
	if err != nil {
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("generation failed")
		if storeErr := jobstore.Fail(ctx, s.store, jobID, err.Error()); storeErr != nil {
			s.logger.Error().Err(storeErr).Str("job_id", jobID).Msg("failed to record job failure")
		}
		return
	}

	if archived, ok := s.archiver.Archive(ctx, jobID, imageURL); ok {
		imageURL = archived
	}

	if err := jobstore.Complete(ctx, s.store, jobID, imageURL, job.ID); err != nil {
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("failed to record job completion")
		return
	}
	s.logger.Info().Str("job_id", jobID).Msg("generation job completed")
}

// RunWorker drains the generation queue until the context ends.
func (s *Service) RunWorker(ctx context.Context) error {
	s.logger.Info().Msg("generation worker started")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		jobID, err := s.store.Dequeue(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error().Err(err).Msg("dequeue failed")
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		if jobID == "" {
			continue
		}
		s.Execute(ctx, jobID)
	}
}
