package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/adam-tracht/printgenie.ai/internal/http/handlers"
	"github.com/adam-tracht/printgenie.ai/internal/middleware"
)

func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(app.Logger))
	if app.Config != nil && app.Config.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))
	}
	if app.Config != nil && len(app.Config.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(app.Config.AllowedOrigins))
	}

	r.Get("/v1/healthz", app.Health)
	r.Handle("/metrics", handlers.MetricsHandler())
	r.Get("/files/*", app.ServeFile)

	r.Get("/v1/prompts", app.SuggestedPrompts)

	r.Route("/v1/products", func(r chi.Router) {
		r.Get("/", app.ListProducts)
		r.Get("/{id}", app.GetProduct)
	})

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", app.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.GetSession)
			r.Post("/generate", app.StartGeneration)
			r.Post("/confirm-image", app.ConfirmImage)
			r.Post("/select-product", app.SelectProduct)
			r.Post("/select-variant", app.SelectVariant)
			r.Post("/mockup", app.StartMockup)
			r.Post("/back", app.Back)
			r.Post("/proceed", app.Proceed)
			r.Post("/checkout", app.StartCheckout)
			r.Post("/reset", app.ResetSession)
		})
	})

	r.Post("/v1/checkout/finalize", app.FinalizeCheckout)

	r.Post("/v1/printful", app.PrintfulProxy)

	r.Route("/v1/images", func(r chi.Router) {
		r.Post("/", app.SaveImage)
		r.Get("/", app.ListImages)
		r.Get("/{id}", app.GetImage)
	})

	return r
}
