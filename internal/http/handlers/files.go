package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// ServeFile serves a stored file after checking its signed-URL
// signature and expiry.
func (a *App) ServeFile(w http.ResponseWriter, r *http.Request) {
	if a.Storage == nil || a.Signer == nil {
		a.error(w, http.StatusNotFound, "not_found", "file storage disabled")
		return
	}
	key := chi.URLParam(r, "*")
	q := r.URL.Query()
	if err := a.Signer.Verify(key, q.Get("expires"), q.Get("sig")); err != nil {
		a.error(w, http.StatusForbidden, "forbidden", err.Error())
		return
	}
	http.ServeFile(w, r, filepath.Join(a.Storage.BasePath(), filepath.FromSlash(key)))
}
