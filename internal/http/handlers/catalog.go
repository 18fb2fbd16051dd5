package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ListProducts serves the offered catalog.
func (a *App) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.Catalog.ListCatalog(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"products": products})
}

// GetProduct serves one product with its displayable variants.
func (a *App) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		a.error(w, http.StatusBadRequest, "validation", "product id must be numeric")
		return
	}
	product, err := a.Catalog.Product(r.Context(), id)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, product)
}
