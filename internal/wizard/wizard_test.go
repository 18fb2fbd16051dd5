package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adam-tracht/printgenie.ai/internal/domain"
)

func confirmedSession(t *testing.T) *Session {
	t.Helper()
	session := NewStore(time.Hour).Create()
	job := &domain.GenerationJob{ID: "job-1", Status: domain.JobStatusProcessing}
	epoch := session.Generation.Begin(job)
	done := &domain.GenerationJob{
		ID:             "job-1",
		Status:         domain.JobStatusCompleted,
		ResultImageURL: "https://images.example/a.png",
		ResultImageID:  "img-1",
	}
	session.Generation.Apply(epoch, done)
	if err := session.ConfirmImage(); err != nil {
		t.Fatalf("ConfirmImage error: %v", err)
	}
	return session
}

func completeMockup(t *testing.T, session *Session, url string) {
	t.Helper()
	_, epoch := session.Mockup.Begin(context.Background())
	ok := session.Mockup.Apply(epoch, &domain.MockupJob{
		Status:    domain.JobStatusCompleted,
		MockupURL: url,
	})
	if !ok {
		t.Fatalf("mockup apply rejected")
	}
}

func testProduct(id int64) *domain.Product {
	return &domain.Product{ID: id, Title: "Canvas", TypeName: "Canvas (in)"}
}

func testVariant(id int64) domain.PricedVariant {
	return domain.PricedVariant{
		Variant:      domain.Variant{ID: id, Color: "default", Size: "12×12", BasePrice: 25},
		SellingPrice: 30.95,
	}
}

func TestConfirmImageRequiresCompletedGeneration(t *testing.T) {
	session := NewStore(time.Hour).Create()
	err := session.ConfirmImage()
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if session.State() != StateCreating {
		t.Fatalf("state = %s, want creating", session.State())
	}
}

func TestHappyPathTransitions(t *testing.T) {
	session := confirmedSession(t)
	if session.State() != StateSelectingGrid {
		t.Fatalf("state = %s, want selecting.grid", session.State())
	}

	if err := session.SelectProduct(testProduct(71)); err != nil {
		t.Fatalf("SelectProduct error: %v", err)
	}
	if session.State() != StateSelectingDetail {
		t.Fatalf("state = %s, want selecting.detail", session.State())
	}

	if err := session.SelectVariant(testVariant(4011), 6.19); err != nil {
		t.Fatalf("SelectVariant error: %v", err)
	}
	completeMockup(t, session, "https://cdn.example/mockup.jpg")

	if err := session.Proceed(); err != nil {
		t.Fatalf("Proceed error: %v", err)
	}
	if session.State() != StateCheckout {
		t.Fatalf("state = %s, want checkout", session.State())
	}

	if err := session.BackToDetail(); err != nil {
		t.Fatalf("BackToDetail error: %v", err)
	}
	if session.State() != StateSelectingDetail {
		t.Fatalf("state = %s, want selecting.detail", session.State())
	}
}

func TestProceedGatedOnVariantAndMockup(t *testing.T) {
	session := confirmedSession(t)
	if err := session.SelectProduct(testProduct(71)); err != nil {
		t.Fatalf("SelectProduct error: %v", err)
	}

	// No variant, no mockup.
	if err := session.Proceed(); !errors.Is(err, domain.ErrMissingSelection) {
		t.Fatalf("error = %v, want ErrMissingSelection", err)
	}

	// Variant but no completed mockup.
	if err := session.SelectVariant(testVariant(4011), 6.19); err != nil {
		t.Fatalf("SelectVariant error: %v", err)
	}
	if err := session.Proceed(); !errors.Is(err, domain.ErrMissingSelection) {
		t.Fatalf("error = %v, want ErrMissingSelection without mockup", err)
	}

	completeMockup(t, session, "https://cdn.example/mockup.jpg")
	if err := session.Proceed(); err != nil {
		t.Fatalf("Proceed error: %v", err)
	}
}

func TestProductChangeDiscardsVariantAndMockup(t *testing.T) {
	session := confirmedSession(t)
	if err := session.SelectProduct(testProduct(71)); err != nil {
		t.Fatalf("SelectProduct error: %v", err)
	}
	if err := session.SelectVariant(testVariant(4011), 6.19); err != nil {
		t.Fatalf("SelectVariant error: %v", err)
	}
	completeMockup(t, session, "https://cdn.example/mockup.jpg")

	if err := session.SelectProduct(testProduct(88)); err != nil {
		t.Fatalf("SelectProduct error: %v", err)
	}
	_, variant, _ := session.Selection()
	if variant != nil {
		t.Fatalf("variant must be discarded on product change")
	}
	if _, ok := session.Mockup.Completed(); ok {
		t.Fatalf("mockup must be discarded on product change")
	}
}

func TestVariantChangeDiscardsMockup(t *testing.T) {
	session := confirmedSession(t)
	if err := session.SelectProduct(testProduct(71)); err != nil {
		t.Fatalf("SelectProduct error: %v", err)
	}
	if err := session.SelectVariant(testVariant(4011), 6.19); err != nil {
		t.Fatalf("SelectVariant error: %v", err)
	}
	completeMockup(t, session, "https://cdn.example/mockup.jpg")

	if err := session.SelectVariant(testVariant(4012), 6.19); err != nil {
		t.Fatalf("SelectVariant error: %v", err)
	}
	if _, ok := session.Mockup.Completed(); ok {
		t.Fatalf("mockup must be discarded on variant change")
	}
}

func TestBackToGridDiscardsSelection(t *testing.T) {
	session := confirmedSession(t)
	if err := session.SelectProduct(testProduct(71)); err != nil {
		t.Fatalf("SelectProduct error: %v", err)
	}
	if err := session.SelectVariant(testVariant(4011), 6.19); err != nil {
		t.Fatalf("SelectVariant error: %v", err)
	}

	if err := session.BackToGrid(); err != nil {
		t.Fatalf("BackToGrid error: %v", err)
	}
	product, variant, _ := session.Selection()
	if product != nil || variant != nil {
		t.Fatalf("selection must be discarded going back to the grid")
	}
	if session.State() != StateSelectingGrid {
		t.Fatalf("state = %s, want selecting.grid", session.State())
	}
}

func TestResetFromAnyState(t *testing.T) {
	session := confirmedSession(t)
	if err := session.SelectProduct(testProduct(71)); err != nil {
		t.Fatalf("SelectProduct error: %v", err)
	}

	session.Reset()
	if session.State() != StateCreating {
		t.Fatalf("state = %s, want creating", session.State())
	}
	if url, _ := session.Image(); url != "" {
		t.Fatalf("image must be cleared on reset")
	}
	product, variant, _ := session.Selection()
	if product != nil || variant != nil {
		t.Fatalf("selection must be cleared on reset")
	}
}

func TestInvalidTransitionsRejected(t *testing.T) {
	session := NewStore(time.Hour).Create()

	if err := session.SelectProduct(testProduct(71)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("selecting a product from creating must fail, got %v", err)
	}
	if err := session.Proceed(); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("proceeding from creating must fail, got %v", err)
	}
	if err := session.BackToDetail(); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("back-to-detail from creating must fail, got %v", err)
	}
}

func TestStoreEvictIdle(t *testing.T) {
	store := NewStore(time.Minute)
	base := time.Now()
	store.now = func() time.Time { return base }

	stale := store.Create()
	fresh := store.Create()

	store.now = func() time.Time { return base.Add(2 * time.Minute) }
	fresh.touch(store.now())

	if evicted := store.EvictIdle(); evicted != 1 {
		t.Fatalf("evicted = %d, want 1", evicted)
	}
	if _, ok := store.Get(stale.ID); ok {
		t.Fatalf("stale session must be gone")
	}
	if _, ok := store.Get(fresh.ID); !ok {
		t.Fatalf("fresh session must survive")
	}
}
