package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/adam-tracht/printgenie.ai/internal/catalog"
	"github.com/adam-tracht/printgenie.ai/internal/domain"
	"github.com/adam-tracht/printgenie.ai/internal/poller"
	"github.com/adam-tracht/printgenie.ai/internal/wizard"
)

const generationPollInterval = 2 * time.Second

type sessionView struct {
	SessionID    string                 `json:"sessionId"`
	State        wizard.State           `json:"state"`
	ImageURL     string                 `json:"imageUrl,omitempty"`
	ImageID      string                 `json:"imageId,omitempty"`
	Generation   *domain.GenerationJob  `json:"generation,omitempty"`
	Product      *domain.Product        `json:"product,omitempty"`
	Variant      *domain.PricedVariant  `json:"variant,omitempty"`
	ShippingCost float64                `json:"shippingCost,omitempty"`
	Mockup       *domain.MockupJob      `json:"mockup,omitempty"`
}

func (a *App) view(session *wizard.Session) sessionView {
	url, id := session.Image()
	product, variant, shipping := session.Selection()
	job, _ := session.Generation.Current()
	return sessionView{
		SessionID:    session.ID,
		State:        session.State(),
		ImageURL:     url,
		ImageID:      id,
		Generation:   job,
		Product:      product,
		Variant:      variant,
		ShippingCost: shipping,
		Mockup:       session.Mockup.Current(),
	}
}

// CreateSession opens a fresh wizard session.
func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	session := a.Sessions.Create()
	a.json(w, http.StatusCreated, a.view(session))
}

// GetSession serves the session snapshot the UI polls.
func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	a.json(w, http.StatusOK, a.view(session))
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// StartGeneration starts (or restarts) image generation for the
// session. A fresh call abandons the previous job; its late results
// are dropped by the epoch check. Only the prompt step may generate:
// a confirmed image is locked in until an explicit reset.
func (a *App) StartGeneration(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if session.State() != wizard.StateCreating {
		a.error(w, http.StatusBadRequest, "validation", "image generation is only available at the prompt step")
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "validation", "invalid payload")
		return
	}

	job, err := a.Generation.Start(r.Context(), req.Prompt)
	if err != nil {
		a.fail(w, err)
		return
	}
	if a.Metrics != nil {
		a.Metrics.GenerationsStarted.Inc()
	}

	epoch := session.Generation.Begin(job)
	go a.watchGeneration(session, job.ID, epoch)

	a.json(w, http.StatusAccepted, a.view(session))
}

// watchGeneration mirrors the job's store state into the session
// tracker until the job is terminal. The loop is bounded; if it
// exhausts, the tracker gets a failed snapshot with a timeout message.
func (a *App) watchGeneration(session *wizard.Session, jobID string, epoch uint64) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := time.Now()
	var last *domain.GenerationJob
	superseded := false
	err := poller.Run(ctx, poller.Options{Interval: generationPollInterval}, func(ctx context.Context) (bool, error) {
		job, err := a.Generation.Status(ctx, jobID)
		if err != nil {
			return false, err
		}
		last = job
		if !session.Generation.Apply(epoch, job) {
			// Superseded; stop polling on behalf of this epoch.
			superseded = true
			cancel()
			return true, nil
		}
		return job.Status.Terminal(), nil
	})
	if superseded {
		return
	}
	if err != nil {
		failed := &domain.GenerationJob{ID: jobID, Status: domain.JobStatusFailed, Error: err.Error()}
		if last != nil {
			failed.Prompt = last.Prompt
			failed.CreatedAt = last.CreatedAt
		}
		failed.UpdatedAt = time.Now().UTC()
		session.Generation.Apply(epoch, failed)
		if a.Metrics != nil {
			a.Metrics.GenerationsFailed.Inc()
		}
		return
	}
	if last != nil && a.Metrics != nil {
		if last.Status == domain.JobStatusFailed {
			a.Metrics.GenerationsFailed.Inc()
		} else if last.Status == domain.JobStatusCompleted {
			a.Metrics.GenerationDuration.Observe(time.Since(started).Seconds())
		}
	}
}

// ConfirmImage locks in the completed image, saves it to the gallery,
// and moves the wizard to the product grid.
func (a *App) ConfirmImage(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := session.ConfirmImage(); err != nil {
		a.fail(w, err)
		return
	}

	if a.Gallery.Enabled() {
		url, _ := session.Image()
		job, _ := session.Generation.Current()
		prompt := ""
		if job != nil {
			prompt = job.Prompt
		}
		if _, err := a.Gallery.Save(r.Context(), url, prompt); err != nil {
			// Gallery is a nicety; the flow continues.
			a.Logger.Warn().Err(err).Msg("could not save image to gallery")
		}
	}
	a.json(w, http.StatusOK, a.view(session))
}

type selectProductRequest struct {
	ProductID int64 `json:"productId"`
}

// SelectProduct picks a product from the grid, fetching its variants.
func (a *App) SelectProduct(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req selectProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "validation", "invalid payload")
		return
	}
	product, err := a.Catalog.Product(r.Context(), req.ProductID)
	if err != nil {
		a.fail(w, err)
		return
	}
	if err := session.SelectProduct(product); err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, a.view(session))
}

type selectVariantRequest struct {
	Color string `json:"color"`
	Size  string `json:"size"`
}

// SelectVariant resolves the color/size pair. A combination the
// catalog does not carry is reported as unavailable, not an error.
func (a *App) SelectVariant(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req selectVariantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "validation", "invalid payload")
		return
	}
	product, _, _ := session.Selection()
	if product == nil {
		a.error(w, http.StatusUnprocessableEntity, "missing_selection", "no product selected")
		return
	}

	priced, found := catalog.SelectVariant(product.Variants, req.Color, req.Size)
	if !found {
		a.json(w, http.StatusOK, map[string]any{"available": false})
		return
	}
	shipping := catalog.ShippingCost(priced.SellingPrice)
	if err := session.SelectVariant(priced, shipping); err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"available": true,
		"session":   a.view(session),
	})
}

// StartMockup renders the mockup for the current selection. The render
// runs in the background; the UI polls GetSession for the outcome.
func (a *App) StartMockup(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	product, variant, _ := session.Selection()
	imageURL, _ := session.Image()
	if product == nil || variant == nil || imageURL == "" {
		a.error(w, http.StatusUnprocessableEntity, "missing_selection", "image, product, and variant are required")
		return
	}

	ctx, epoch := session.Mockup.Begin(context.Background())
	go func() {
		started := time.Now()
		job, err := a.Mockups.Generate(ctx, product.ID, variant.ID, imageURL)
		if err != nil {
			if job == nil {
				job = &domain.MockupJob{
					ProductID: product.ID,
					VariantID: variant.ID,
					Status:    domain.JobStatusFailed,
					Error:     err.Error(),
				}
			}
			if session.Mockup.Apply(epoch, job) && a.Metrics != nil {
				a.Metrics.MockupsFailed.Inc()
			}
			return
		}
		if session.Mockup.Apply(epoch, job) && a.Metrics != nil {
			a.Metrics.MockupsRendered.Inc()
			a.Metrics.MockupDuration.Observe(time.Since(started).Seconds())
		}
	}()

	a.json(w, http.StatusAccepted, a.view(session))
}

// Back steps backwards: checkout to detail, detail to grid.
func (a *App) Back(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var err error
	switch session.State() {
	case wizard.StateCheckout:
		err = session.BackToDetail()
	case wizard.StateSelectingDetail:
		err = session.BackToGrid()
	default:
		a.error(w, http.StatusBadRequest, "validation", "nothing to go back to")
		return
	}
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, a.view(session))
}

// Proceed enters the checkout step. Hard-gated on a priced variant and
// a finished mockup.
func (a *App) Proceed(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := session.Proceed(); err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, a.view(session))
}

// ResetSession abandons everything and returns to the prompt step.
func (a *App) ResetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	session.Reset()
	a.json(w, http.StatusOK, a.view(session))
}
