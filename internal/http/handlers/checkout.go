package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adam-tracht/printgenie.ai/internal/checkout"
	"github.com/adam-tracht/printgenie.ai/internal/wizard"
)

// StartCheckout creates the hosted payment session for a wizard that
// has reached the checkout step.
func (a *App) StartCheckout(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if session.State() != wizard.StateCheckout {
		a.error(w, http.StatusUnprocessableEntity, "missing_selection", "wizard is not at the checkout step")
		return
	}

	product, variant, shipping := session.Selection()
	imageURL, _ := session.Image()
	completed, ok := session.Mockup.Completed()
	if product == nil || variant == nil || !ok {
		a.error(w, http.StatusUnprocessableEntity, "missing_selection", "variant and mockup are required")
		return
	}

	payment, err := a.Checkout.CreateSession(r.Context(), checkout.CreateSessionRequest{
		ProductID:        product.ID,
		ProductTitle:     product.Title,
		Variant:          *variant,
		MockupURL:        completed.MockupURL,
		OriginalImageURL: imageURL,
		ShippingCost:     shipping,
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusCreated, payment)
}

type finalizeRequest struct {
	SessionID string `json:"sessionId"`
}

// FinalizeCheckout is the return-page hook: it resolves the paid
// session and drives fulfillment exactly once.
func (a *App) FinalizeCheckout(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "validation", "invalid payload")
		return
	}
	result, err := a.Checkout.Finalize(r.Context(), req.SessionID)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, result)
}
