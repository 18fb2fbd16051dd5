package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adam-tracht/printgenie.ai/internal/domain"
	"github.com/adam-tracht/printgenie.ai/internal/infra"
	"github.com/adam-tracht/printgenie.ai/internal/jobstore"
)

type stubGenerator struct {
	url string
	err error
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.url, nil
}

func newTestService(gen Generator) (*Service, jobstore.Store) {
	store := jobstore.NewMemoryStore(time.Minute)
	svc := NewService(Options{
		Store:     store,
		Generator: gen,
		Logger:    infra.NewLogger("test", "generation"),
	})
	return svc, store
}

func TestStartRejectsEmptyPrompt(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{})
	_, err := svc.Start(context.Background(), "   ")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestStartQueuesPendingJob(t *testing.T) {
	svc, store := newTestService(&stubGenerator{url: "https://images.example/a.png"})
	job, err := svc.Start(context.Background(), "a fox in watercolor")
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if job.Status != domain.JobStatusPending {
		t.Fatalf("status = %s, want pending", job.Status)
	}

	queued, err := store.Dequeue(context.Background(), 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue error: %v", err)
	}
	if queued != job.ID {
		t.Fatalf("queued id = %s, want %s", queued, job.ID)
	}
}

func TestExecuteCompletesJob(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{url: "https://images.example/a.png"})
	job, err := svc.Start(context.Background(), "a fox in watercolor")
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}

	svc.Execute(context.Background(), job.ID)

	got, err := svc.Status(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Status error: %v", err)
	}
	if got.Status != domain.JobStatusCompleted {
		t.Fatalf("status = %s, want completed", got.Status)
	}
	if got.ResultImageURL != "https://images.example/a.png" {
		t.Fatalf("result url = %s", got.ResultImageURL)
	}
	if got.ResultImageID == "" {
		t.Fatalf("expected result image id")
	}
}

func TestExecuteRecordsFailure(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{err: errors.New("billing hard limit reached")})
	job, err := svc.Start(context.Background(), "a fox in watercolor")
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}

	svc.Execute(context.Background(), job.ID)

	got, err := svc.Status(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Status error: %v", err)
	}
	if got.Status != domain.JobStatusFailed {
		t.Fatalf("status = %s, want failed", got.Status)
	}
	if got.Error == "" {
		t.Fatalf("expected failure message on job")
	}
}

func TestStatusUnknownJob(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{})
	_, err := svc.Status(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestFakeGeneratorProducesURL(t *testing.T) {
	gen := &FakeGenerator{}
	url, err := gen.Generate(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if url == "" {
		t.Fatalf("expected placeholder url")
	}
}
