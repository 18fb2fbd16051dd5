package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/adam-tracht/printgenie.ai/internal/domain"
	"github.com/adam-tracht/printgenie.ai/internal/infra"
	"github.com/adam-tracht/printgenie.ai/internal/wizard"
)

func TestStartGenerationOnlyAtPromptStep(t *testing.T) {
	store := wizard.NewStore(time.Hour)
	session := store.Create()
	session.Generation.Begin(&domain.GenerationJob{
		ID:             "job-1",
		Status:         domain.JobStatusCompleted,
		ResultImageURL: "https://images.example/a.png",
		ResultImageID:  "img-1",
	})
	if err := session.ConfirmImage(); err != nil {
		t.Fatalf("ConfirmImage error: %v", err)
	}

	app := &App{Logger: infra.NewLogger("test", "api"), Sessions: store}
	r := chi.NewRouter()
	r.Post("/v1/sessions/{id}/generate", app.StartGeneration)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+session.ID+"/generate", strings.NewReader(`{"prompt":"a fox"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("generate after image confirm = %d, want 400", rec.Code)
	}
	if url, _ := session.Image(); url != "https://images.example/a.png" {
		t.Fatalf("confirmed image changed to %q", url)
	}
}
