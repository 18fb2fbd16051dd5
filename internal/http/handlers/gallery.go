package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type saveImageRequest struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
}

// SaveImage records a generated image in the gallery.
func (a *App) SaveImage(w http.ResponseWriter, r *http.Request) {
	var req saveImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "validation", "invalid payload")
		return
	}
	img, err := a.Gallery.Save(r.Context(), req.URL, req.Prompt)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusCreated, img)
}

// GetImage serves one gallery image.
func (a *App) GetImage(w http.ResponseWriter, r *http.Request) {
	img, err := a.Gallery.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, img)
}

// ListImages serves the most recent gallery images.
func (a *App) ListImages(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	images, err := a.Gallery.Recent(r.Context(), limit)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"images": images})
}
