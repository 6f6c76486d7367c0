package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RequestStatus proxies the status of an asynchronous generation request.
func (a *App) RequestStatus(w http.ResponseWriter, r *http.Request) {
	if a.Status == nil {
		a.error(w, http.StatusServiceUnavailable, "status_unavailable", "FAL_API_KEY is not configured")
		return
	}
	id := chi.URLParam(r, "id")
	status, err := a.Status.RequestStatus(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, status)
}
