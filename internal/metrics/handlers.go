package metrics

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-lab/mlab-metrics-api/internal/logger"
	"github.com/m-lab/mlab-metrics-api/internal/telemetry"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// Handlers serves the metric lookup and definition endpoints. Store is the
// backing metric store; Cache may be nil.
type Handlers struct {
	Store Store
	Cache *Cache
}

type lookupResponse struct {
	Metric string  `json:"metric"`
	Units  string  `json:"units"`
	Value  float64 `json:"value"`
}

// normalizeLocale maps the non-standard world spellings clients send for
// global data onto the canonical root identifier.
func normalizeLocale(locale string) string {
	switch locale {
	case "", `""`, `''`, "world", "global":
		return "world"
	}
	return locale
}

// LookupHandler serves one metric value for a year, month, and locale.
func (h *Handlers) LookupHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	telemetry.RequestsTotal.WithLabelValues("metric").Inc()
	defer func() {
		telemetry.RequestDurationMs.WithLabelValues("metric").
			Observe(float64(time.Since(start).Milliseconds()))
	}()

	name := chi.URLParam(r, "name")
	q := r.URL.Query()

	if !q.Has("year") || !q.Has("month") {
		telemetry.LookupErrorsTotal.WithLabelValues("metric", "invalid_argument").Inc()
		http.Error(w, `Must provide parameters "year" and "month" identifying the date to query`,
			http.StatusBadRequest)
		return
	}
	year, yearErr := strconv.Atoi(q.Get("year"))
	month, monthErr := strconv.Atoi(q.Get("month"))
	if yearErr != nil || monthErr != nil || year < 1 || month < 1 || month > 12 {
		telemetry.LookupErrorsTotal.WithLabelValues("metric", "invalid_argument").Inc()
		http.Error(w, `Parameters "year" and "month" must be a valid year and a month from 1 to 12`,
			http.StatusBadRequest)
		return
	}

	if !q.Has("locale") {
		telemetry.LookupErrorsTotal.WithLabelValues("metric", "invalid_argument").Inc()
		http.Error(w, `Must provide a parameter "locale" identifying the locale to query`,
			http.StatusBadRequest)
		return
	}
	locale := normalizeLocale(q.Get("locale"))

	key := LookupKey(name, year, month, locale)
	if body, ok := h.Cache.Get(r.Context(), key); ok {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
		return
	}

	v, units, err := h.Store.Lookup(r.Context(), name, year, month, locale)
	switch {
	case errors.Is(err, ErrNotFound):
		telemetry.LookupErrorsTotal.WithLabelValues("metric", "not_found").Inc()
		http.Error(w, `Unknown metric "`+name+`"`, http.StatusNotFound)
		return
	case errors.Is(err, ErrNoData):
		telemetry.LookupErrorsTotal.WithLabelValues("metric", "not_found").Inc()
		http.Error(w, "No data for metric="+name+", year="+strconv.Itoa(year)+
			", month="+strconv.Itoa(month)+", locale="+locale, http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, "Lookup failed", http.StatusInternalServerError)
		return
	}

	resp := lookupResponse{Metric: v.MetricName, Units: units, Value: v.Value}
	if body, err := json.Marshal(resp); err == nil {
		h.Cache.Set(r.Context(), key, body)
	}
	writeJSON(w, resp)
}

// ListHandler returns every metric definition, ordered by name.
func (h *Handlers) ListHandler(w http.ResponseWriter, r *http.Request) {
	telemetry.RequestsTotal.WithLabelValues("metrics_list").Inc()

	list, err := h.Store.List(r.Context())
	if err != nil {
		http.Error(w, "Failed to list metrics", http.StatusInternalServerError)
		return
	}
	writeJSON(w, list)
}

// DetailsHandler returns one metric definition.
func (h *Handlers) DetailsHandler(w http.ResponseWriter, r *http.Request) {
	telemetry.RequestsTotal.WithLabelValues("metrics_details").Inc()

	name := chi.URLParam(r, "name")
	m, err := h.Store.Get(r.Context(), name)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, `No such metric: `+name, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to load metric", http.StatusInternalServerError)
		return
	}
	writeJSON(w, m)
}

type metricInput struct {
	Name      string `json:"name"`
	Units     string `json:"units"`
	ShortDesc string `json:"short_desc"`
	LongDesc  string `json:"long_desc"`
	Query     string `json:"query"`
}

// CreateHandler creates a metric definition. Admin only.
func (h *Handlers) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input metricInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.Name == "" {
		http.Error(w, "Metric name is required", http.StatusBadRequest)
		return
	}

	m := Metric{
		Name:      input.Name,
		Units:     input.Units,
		ShortDesc: input.ShortDesc,
		LongDesc:  input.LongDesc,
		Query:     input.Query,
	}
	err := h.Store.Create(r.Context(), m)
	if errors.Is(err, ErrAlreadyExists) {
		http.Error(w, `Metric "`+input.Name+`" already exists`, http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, "Failed to create metric", http.StatusInternalServerError)
		return
	}

	l := logger.Get("metrics")
	l.Info().Str("metric", input.Name).Msg("metric created")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, m)
}

// UpdateHandler edits a metric definition; empty fields are left unchanged.
// Admin only.
func (h *Handlers) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var input metricInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	m := Metric{
		Name:      name,
		Units:     input.Units,
		ShortDesc: input.ShortDesc,
		LongDesc:  input.LongDesc,
		Query:     input.Query,
	}
	updated, err := h.Store.Update(r.Context(), m)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, `No such metric: `+name, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to update metric", http.StatusInternalServerError)
		return
	}

	h.Cache.Invalidate(r.Context(), name)
	l := logger.Get("metrics")
	l.Info().Str("metric", name).Msg("metric updated")
	writeJSON(w, updated)
}

// DeleteHandler removes a metric definition and all its values. Admin only.
func (h *Handlers) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	err := h.Store.Delete(r.Context(), name)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, `No such metric: `+name, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to delete metric", http.StatusInternalServerError)
		return
	}

	h.Cache.Invalidate(r.Context(), name)
	l := logger.Get("metrics")
	l.Info().Str("metric", name).Msg("metric deleted")
	w.WriteHeader(http.StatusNoContent)
}
