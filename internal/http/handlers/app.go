package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"assetstudio/internal/domain"
	"assetstudio/internal/infra"
	"assetstudio/internal/studio"
)

// StatusClient looks up asynchronous requests on the image service.
type StatusClient interface {
	RequestStatus(ctx context.Context, requestID string) (*domain.RequestStatus, error)
}

// App carries the dependencies shared by every handler. Status and Ledger are
// optional; their routes answer 503 when they are missing.
type App struct {
	Studio *studio.Studio
	Status StatusClient
	Ledger domain.AssetRepository
	Logger *infra.Logger
}

func NewApp(s *studio.Studio, status StatusClient, ledger domain.AssetRepository, logger *infra.Logger) *App {
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &App{Studio: s, Status: status, Ledger: ledger, Logger: logger}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorBody{Error: errorDetail{Code: errCode, Message: message}})
}

// fail maps domain errors onto HTTP statuses.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domain.ErrTransport):
		a.logger(r).Warn().Err(err).Msg("handlers: upstream failure")
		a.error(w, http.StatusBadGateway, "upstream_error", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		a.error(w, http.StatusGatewayTimeout, "timeout", err.Error())
	default:
		a.logger(r).Error().Err(err).Msg("handlers: request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// logger prefers the request-scoped logger installed by the middleware.
func (a *App) logger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return a.Logger
}
