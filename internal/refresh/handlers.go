package refresh

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-lab/mlab-metrics-api/internal/middleware"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// Handlers serves the privileged refresh endpoints.
type Handlers struct {
	Refresher *Refresher
}

type cronResponse struct {
	OK            bool  `json:"ok"`
	LocalesLoaded int   `json:"locales_loaded"`
	DurationMs    int64 `json:"duration_ms"`
}

// CronHandler triggers a locale index rebuild. Called by the weekly cron job
// or manually by an operator; a failed build keeps the previous index.
func (h *Handlers) CronHandler(w http.ResponseWriter, r *http.Request) {
	run, err := h.Refresher.Run(r.Context())
	if err != nil {
		http.Error(w, "Refresh failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, cronResponse{
		OK:            run.OK,
		LocalesLoaded: run.LocalesLoaded,
		DurationMs:    run.DurationMs,
	})
}

// RunsHandler lists recent refresh runs, newest first.
func (h *Handlers) RunsHandler(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Refresher.RecentRuns(r.Context(), 20)
	if err != nil {
		http.Error(w, "Failed to list refresh runs", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []RefreshRun{}
	}
	writeJSON(w, runs)
}

// CronRoutes returns the router mounted at /cron.
func (h *Handlers) CronRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.AdminMiddleware(middleware.EnvTokenVerifier{}))
	r.Get("/weekly_refresh", h.CronHandler)
	return r
}

// AdminRoutes returns the router mounted at /api/admin.
func (h *Handlers) AdminRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.AdminMiddleware(middleware.EnvTokenVerifier{}))
	r.Get("/refreshes", h.RunsHandler)
	return r
}
