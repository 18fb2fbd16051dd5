// Package wizard sequences a buyer's flow: create an image, pick a
// product, preview the mockup, check out. One Session per buyer, with
// strict transitions so checkout can never start from incomplete state.
package wizard

import (
	"fmt"
	"sync"
	"time"

	"github.com/adam-tracht/printgenie.ai/internal/domain"
	"github.com/adam-tracht/printgenie.ai/internal/generation"
	"github.com/adam-tracht/printgenie.ai/internal/mockup"
)

// State is a wizard step.
type State string

const (
	StateCreating        State = "creating"
	StateSelectingGrid   State = "selecting.grid"
	StateSelectingDetail State = "selecting.detail"
	StateCheckout        State = "checkout"
)

// Session is one buyer's wizard. All mutation goes through its methods;
// the embedded trackers own poll-loop supersession.
type Session struct {
	ID string

	Generation generation.Tracker
	Mockup     mockup.Tracker

	mu           sync.Mutex
	state        State
	imageURL     string
	imageID      string
	product      *domain.Product
	variant      *domain.PricedVariant
	shippingCost float64
	lastActive   time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:         id,
		state:      StateCreating,
		lastActive: now,
	}
}

// State returns the current step.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Image returns the confirmed artwork, if any.
func (s *Session) Image() (url, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imageURL, s.imageID
}

// Selection returns the chosen product and variant.
func (s *Session) Selection() (*domain.Product, *domain.PricedVariant, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.product, s.variant, s.shippingCost
}

// ConfirmImage locks in a completed generation and moves to the
// product grid.
func (s *Session) ConfirmImage() error {
	url, id, ok := s.Generation.Confirm()
	if !ok {
		return fmt.Errorf("no completed image to confirm: %w", domain.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCreating {
		return s.badTransition("confirm image")
	}
	s.imageURL = url
	s.imageID = id
	s.state = StateSelectingGrid
	return nil
}

// SelectProduct moves from the grid to the product detail. Picking a
// different product discards the variant choice and any mockup.
func (s *Session) SelectProduct(product *domain.Product) error {
	if product == nil {
		return fmt.Errorf("product required: %w", domain.ErrValidation)
	}
	s.mu.Lock()
	if s.state != StateSelectingGrid && s.state != StateSelectingDetail {
		defer s.mu.Unlock()
		return s.badTransition("select product")
	}
	changed := s.product == nil || s.product.ID != product.ID
	s.product = product
	if changed {
		s.variant = nil
		s.shippingCost = 0
	}
	s.state = StateSelectingDetail
	s.mu.Unlock()

	if changed {
		s.Mockup.Reset()
	}
	return nil
}

// SelectVariant records the color/size choice and its shipping cost.
// Changing the variant invalidates the previous mockup.
func (s *Session) SelectVariant(variant domain.PricedVariant, shippingCost float64) error {
	s.mu.Lock()
	if s.state != StateSelectingDetail {
		defer s.mu.Unlock()
		return s.badTransition("select variant")
	}
	changed := s.variant == nil || s.variant.ID != variant.ID
	s.variant = &variant
	s.shippingCost = shippingCost
	s.mu.Unlock()

	if changed {
		s.Mockup.Reset()
	}
	return nil
}

// BackToGrid leaves the product detail, discarding the product, variant
// and mockup selection.
func (s *Session) BackToGrid() error {
	s.mu.Lock()
	if s.state != StateSelectingDetail {
		defer s.mu.Unlock()
		return s.badTransition("back to grid")
	}
	s.product = nil
	s.variant = nil
	s.shippingCost = 0
	s.state = StateSelectingGrid
	s.mu.Unlock()

	s.Mockup.Reset()
	return nil
}

// Proceed enters checkout. Hard requirement: a priced variant and a
// completed mockup. Anything less keeps the buyer on the detail step.
func (s *Session) Proceed() error {
	completed, ok := s.Mockup.Completed()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSelectingDetail {
		return s.badTransition("proceed to checkout")
	}
	if s.variant == nil || !ok || completed.MockupURL == "" {
		return fmt.Errorf("checkout requires a variant and a finished mockup: %w", domain.ErrMissingSelection)
	}
	s.state = StateCheckout
	return nil
}

// BackToDetail returns from checkout to the product detail, keeping
// the selection and mockup.
func (s *Session) BackToDetail() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCheckout {
		return s.badTransition("back to detail")
	}
	s.state = StateSelectingDetail
	return nil
}

// Reset abandons everything and returns to the prompt step.
func (s *Session) Reset() {
	s.mu.Lock()
	s.imageURL = ""
	s.imageID = ""
	s.product = nil
	s.variant = nil
	s.shippingCost = 0
	s.state = StateCreating
	s.mu.Unlock()

	s.Generation.Reset()
	s.Mockup.Reset()
}

func (s *Session) badTransition(action string) error {
	return fmt.Errorf("cannot %s from %s: %w", action, s.state, domain.ErrValidation)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive)
}
