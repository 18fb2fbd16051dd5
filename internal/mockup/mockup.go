// Package mockup renders product previews through the print provider's
// two-step mockup protocol: fetch the printable-area descriptor, then
// submit a render task and poll it to completion.
package mockup

import (
	"context"
	"fmt"
	"time"

	"github.com/adam-tracht/printgenie.ai/internal/domain"
	"github.com/adam-tracht/printgenie.ai/internal/infra"
	"github.com/adam-tracht/printgenie.ai/internal/poller"
	"github.com/adam-tracht/printgenie.ai/internal/providers/printful"
)

// Provider is the slice of the print API the renderer needs.
type Provider interface {
	Printfiles(ctx context.Context, productID int64) (*printful.PrintfilesDescriptor, error)
	CreateMockupTask(ctx context.Context, productID int64, req printful.MockupTaskRequest) (*printful.MockupTask, error)
	MockupTaskStatus(ctx context.Context, taskKey string) (*printful.MockupTask, error)
}

// Options configures the mockup service.
type Options struct {
	Provider     Provider
	Logger       infra.Logger
	PollInterval time.Duration
}

// Service renders one mockup per call. Supersession is the caller's
// concern; see Tracker.
type Service struct {
	provider Provider
	logger   infra.Logger
	interval time.Duration
}

func NewService(opts Options) *Service {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	return &Service{
		provider: opts.Provider,
		logger:   opts.Logger,
		interval: interval,
	}
}

// Generate renders the artwork onto the product and returns the
// finished mockup job. It blocks until the provider's render task
// reaches a terminal state or the poll budget runs out.
func (s *Service) Generate(ctx context.Context, productID, variantID int64, imageURL string) (*domain.MockupJob, error) {
	if productID == 0 || variantID == 0 {
		return nil, fmt.Errorf("product and variant required: %w", domain.ErrMissingSelection)
	}
	if imageURL == "" {
		return nil, fmt.Errorf("image required: %w", domain.ErrMissingSelection)
	}

	placement, printfile, err := s.resolvePlacement(ctx, productID, variantID)
	if err != nil {
		return nil, err
	}

	req := printful.MockupTaskRequest{
		VariantIDs: []int64{variantID},
		Format:     "jpg",
		Files: []printful.MockupFile{{
			Placement: placement,
			ImageURL:  imageURL,
			Position: printful.Position{
				AreaWidth:  printfile.Width,
				AreaHeight: printfile.Height,
				Width:      printfile.Width,
				Height:     printfile.Height,
				Top:        0,
				Left:       0,
			},
		}},
	}
	task, err := s.provider.CreateMockupTask(ctx, productID, req)
	if err != nil {
		return nil, fmt.Errorf("create render task: %v: %w", err, domain.ErrMockupFailed)
	}
	if task.TaskKey == "" {
		return nil, fmt.Errorf("render task came back without a key: %w", domain.ErrMockupFailed)
	}

	job := &domain.MockupJob{
		TaskKey:   task.TaskKey,
		ProductID: productID,
		VariantID: variantID,
		Status:    domain.JobStatusProcessing,
	}
	s.logger.Info().
		Str("task_key", task.TaskKey).
		Int64("product_id", productID).
		Int64("variant_id", variantID).
		Msg("mockup render task created")

	err = poller.Run(ctx, poller.Options{Interval: s.interval}, func(ctx context.Context) (bool, error) {
		state, err := s.provider.MockupTaskStatus(ctx, task.TaskKey)
		if err != nil {
			return false, fmt.Errorf("poll render task: %v: %w", err, domain.ErrMockupFailed)
		}
		switch state.Status {
		case "completed":
			if len(state.Mockups) == 0 || state.Mockups[0].MockupURL == "" {
				return false, fmt.Errorf("render task completed without a mockup: %w", domain.ErrMockupFailed)
			}
			job.MockupURL = state.Mockups[0].MockupURL
			job.Status = domain.JobStatusCompleted
			return true, nil
		case "failed":
			return false, fmt.Errorf("render task failed: %s: %w", state.Error, domain.ErrMockupFailed)
		default:
			return false, nil
		}
	})
	if err != nil {
		job.Status = domain.JobStatusFailed
		job.Error = err.Error()
		return job, err
	}
	return job, nil
}

// resolvePlacement picks the variant's first placement and its
// printfile template. The provider lists placements in its own order;
// the first one is the product's primary print surface.
func (s *Service) resolvePlacement(ctx context.Context, productID, variantID int64) (string, printful.Printfile, error) {
	descriptor, err := s.provider.Printfiles(ctx, productID)
	if err != nil {
		return "", printful.Printfile{}, fmt.Errorf("fetch printfiles: %v: %w", err, domain.ErrMockupFailed)
	}
	vp, ok := descriptor.ForVariant(variantID)
	if !ok || len(vp.Placements) == 0 {
		return "", printful.Printfile{}, fmt.Errorf("variant %d not printable: %w", variantID, domain.ErrMissingSelection)
	}
	first := vp.Placements[0]
	printfile, ok := descriptor.PrintfileByID(first.PrintfileID)
	if !ok {
		return "", printful.Printfile{}, fmt.Errorf("printfile %d missing from descriptor: %w", first.PrintfileID, domain.ErrMockupFailed)
	}
	return first.Placement, printfile, nil
}
