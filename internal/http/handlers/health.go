package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"asset_dir":  a.Studio.OutputDir(),
		"ledger":     a.Ledger != nil,
		"status_api": a.Status != nil,
	})
}
