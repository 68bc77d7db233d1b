package locales

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes attaches the locale lookup endpoints to the API router.
func RegisterRoutes(r chi.Router) {
	r.Get("/nearest", NearestHandler)
	r.Get("/locale/{name}", LocaleHandler)
}
