package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"assetstudio/internal/http/handlers"
	"assetstudio/internal/infra"
	"assetstudio/internal/metrics"
	"assetstudio/internal/middleware"
)

// Options configures the router. Metrics and AllowedOrigins are optional.
type Options struct {
	Logger         infra.Logger
	Metrics        *metrics.Collector
	AllowedOrigins []string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
	)
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}
	if len(opts.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(opts.AllowedOrigins))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/assets", func(r chi.Router) {
		r.Post("/product", app.ProductPhoto)
		r.Post("/social", app.SocialPost)
		r.Post("/brand", app.BrandElement)
		r.Post("/custom", app.CustomAsset)
		r.Post("/batch", app.Batch)
		r.Get("/summary", app.Summary)
		r.Get("/export", app.Export)
		r.Get("/history", app.History)
	})

	r.Get("/v1/requests/{id}", app.RequestStatus)

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	return r
}
