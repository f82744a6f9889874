// Package httpapi wires the HTTP surface: versioned API routes, the inbound
// callback endpoints, the SSE notification channel, and static serving of the
// storage root so materialized inputs are fetchable by remote providers.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/infra"
	"server/internal/middleware"
)

// Options wires the router.
type Options struct {
	App            *handlers.App
	Logger         infra.Logger
	StorageRoot    string
	AllowedOrigins []string
}

func NewRouter(opts Options) http.Handler {
	app := opts.App

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.Logger(opts.Logger),
		middleware.Identity,
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/generations", func(r chi.Router) {
		// Submissions fan out to paid providers; cap the per-client rate.
		r.With(middleware.RateLimit(60, time.Minute)).Post("/", app.GenerationsSubmit)
		r.Get("/", app.GenerationsList)
		r.Route("/{job_id}", func(r chi.Router) {
			r.Get("/", app.GenerationsGet)
			r.Delete("/", app.GenerationsDelete)
			r.Post("/upscale", app.GenerationsUpscale)
			r.Post("/remix", app.GenerationsRemix)
			r.Post("/fill", app.GenerationsFill)
			r.Post("/bookmark", app.GenerationsBookmark)
			r.Post("/like", app.GenerationsLike)
		})
	})

	r.Route("/v1/callbacks/generation", func(r chi.Router) {
		r.Post("/", app.CallbackSuccess)
		r.Post("/failure", app.CallbackFailure)
	})

	r.Get("/v1/notifications/{user_id}", app.Notifications)

	if opts.StorageRoot != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StorageRoot)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}
