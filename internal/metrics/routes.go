package metrics

import (
	"github.com/go-chi/chi/v5"
	"github.com/m-lab/mlab-metrics-api/internal/middleware"
)

// RegisterRoutes attaches the metric endpoints to the API router. Mutating
// endpoints are gated behind the admin token.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/metric/{name}", h.LookupHandler)
	r.Get("/metrics", h.ListHandler)
	r.Get("/metrics/{name}", h.DetailsHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminMiddleware(middleware.EnvTokenVerifier{}))
		r.Post("/metrics", h.CreateHandler)
		r.Put("/metrics/{name}", h.UpdateHandler)
		r.Delete("/metrics/{name}", h.DeleteHandler)
	})
}
