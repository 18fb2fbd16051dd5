// Package handlers carries the HTTP surface. Handlers stay thin:
// decode, call a service, translate the error kind to a status.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/adam-tracht/printgenie.ai/internal/catalog"
	"github.com/adam-tracht/printgenie.ai/internal/checkout"
	"github.com/adam-tracht/printgenie.ai/internal/domain"
	"github.com/adam-tracht/printgenie.ai/internal/gallery"
	"github.com/adam-tracht/printgenie.ai/internal/generation"
	"github.com/adam-tracht/printgenie.ai/internal/infra"
	"github.com/adam-tracht/printgenie.ai/internal/metrics"
	"github.com/adam-tracht/printgenie.ai/internal/mockup"
	"github.com/adam-tracht/printgenie.ai/internal/providers/printful"
	"github.com/adam-tracht/printgenie.ai/internal/storage"
	"github.com/adam-tracht/printgenie.ai/internal/wizard"
)

type App struct {
	Config     *infra.Config
	Logger     infra.Logger
	Catalog    *catalog.Service
	Generation *generation.Service
	Mockups    *mockup.Service
	Checkout   *checkout.Service
	Sessions   *wizard.Store
	Gallery    *gallery.Service
	Printful   *printful.Client
	Storage    *storage.FileStore
	Signer     *storage.Signer
	Metrics    *metrics.Metrics
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, details string) {
	a.json(w, code, map[string]string{"error": kind, "details": details})
}

// fail maps a domain error kind onto an HTTP status.
func (a *App) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrMissingSelection):
		a.error(w, http.StatusUnprocessableEntity, "missing_selection", err.Error())
	case errors.Is(err, domain.ErrTimedOut):
		a.error(w, http.StatusGatewayTimeout, "timed_out", err.Error())
	case errors.Is(err, domain.ErrCatalogUnavailable),
		errors.Is(err, domain.ErrProviderUnavailable),
		errors.Is(err, domain.ErrGenerationFailed),
		errors.Is(err, domain.ErrMockupFailed),
		errors.Is(err, domain.ErrPaymentResolution):
		a.error(w, http.StatusBadGateway, "upstream", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("unhandled error")
		a.error(w, http.StatusInternalServerError, "internal", "unexpected error")
	}
}

// session resolves the wizard session in the URL or writes a 404.
func (a *App) session(w http.ResponseWriter, id string) (*wizard.Session, bool) {
	session, ok := a.Sessions.Get(id)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "unknown session")
		return nil, false
	}
	return session, true
}
