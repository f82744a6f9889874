package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"server/internal/artifact"
	"server/internal/callback"
	"server/internal/dispatch"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/middleware"
	"server/internal/notify"
)

// App bundles the dependencies the HTTP handlers need.
type App struct {
	Repo           domain.JobRepository
	Dispatcher     *dispatch.Dispatcher
	Correlator     *callback.Correlator
	SSE            *notify.SSEHandler
	Materializer   *artifact.Materializer
	CallbackSecret string
	Logger         infra.Logger
}

// Options wires an App.
type Options struct {
	Repo           domain.JobRepository
	Dispatcher     *dispatch.Dispatcher
	Correlator     *callback.Correlator
	SSE            *notify.SSEHandler
	Materializer   *artifact.Materializer
	CallbackSecret string
	Logger         infra.Logger
}

func NewApp(opts Options) *App {
	return &App{
		Repo:           opts.Repo,
		Dispatcher:     opts.Dispatcher,
		Correlator:     opts.Correlator,
		SSE:            opts.SSE,
		Materializer:   opts.Materializer,
		CallbackSecret: opts.CallbackSecret,
		Logger:         opts.Logger,
	}
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, map[string]string{"error": errCode, "message": msg})
}

// domainError maps domain sentinel errors onto HTTP responses. Provider
// errors keep their raw body in the message so the UI can show what the
// upstream actually said.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "generation not found")
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusForbidden, "forbidden", "not the owner of this generation")
	case errors.Is(err, domain.ErrInvalidRequest):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrNoRoute):
		a.error(w, http.StatusBadRequest, "no_route", err.Error())
	case errors.Is(err, domain.ErrProviderFailure):
		a.error(w, http.StatusBadGateway, "provider_failure", err.Error())
	default:
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
