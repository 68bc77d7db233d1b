package locales

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-lab/mlab-metrics-api/internal/telemetry"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type nearestResponse struct {
	City    *LocaleInfo `json:"city,omitempty"`
	Region  *LocaleInfo `json:"region,omitempty"`
	Country *LocaleInfo `json:"country,omitempty"`
}

// NearestHandler resolves the closest city, region, and country to the lat /
// lon query parameters. Each tier is returned as a full nested locale object.
func NearestHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	telemetry.RequestsTotal.WithLabelValues("nearest").Inc()
	defer func() {
		telemetry.RequestDurationMs.WithLabelValues("nearest").
			Observe(float64(time.Since(start).Milliseconds()))
	}()

	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		telemetry.LookupErrorsTotal.WithLabelValues("nearest", "invalid_argument").Inc()
		http.Error(w, `Must provide parameters "lat" for latitude and "lon" for longitude`,
			http.StatusBadRequest)
		return
	}

	ix, err := Current()
	if err != nil {
		telemetry.LookupErrorsTotal.WithLabelValues("nearest", "empty_index").Inc()
		http.Error(w, "Locale index is empty", http.StatusNotFound)
		return
	}

	result, err := ix.NearestNeighbors(lat, lon)
	switch {
	case errors.Is(err, ErrInvalidCoordinates):
		telemetry.LookupErrorsTotal.WithLabelValues("nearest", "invalid_argument").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, ErrEmptyIndex):
		telemetry.LookupErrorsTotal.WithLabelValues("nearest", "empty_index").Inc()
		http.Error(w, "Locale index is empty", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, "Lookup failed", http.StatusInternalServerError)
		return
	}

	var resp nearestResponse
	if m := result.City; m != nil {
		info := m.Locale.Describe()
		resp.City = &info
	}
	if m := result.Region; m != nil {
		info := m.Locale.Describe()
		resp.Region = &info
	}
	if m := result.Country; m != nil {
		info := m.Locale.Describe()
		resp.Country = &info
	}
	writeJSON(w, resp)
}

type hierarchyResponse struct {
	Locale   LocaleInfo   `json:"locale"`
	Parent   *LocaleInfo  `json:"parent,omitempty"`
	Children []LocaleInfo `json:"children,omitempty"`
}

// LocaleHandler returns a locale with its parent and direct children. Parent
// and children are full nested locale objects, not bare identifiers.
func LocaleHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	telemetry.RequestsTotal.WithLabelValues("locale").Inc()
	defer func() {
		telemetry.RequestDurationMs.WithLabelValues("locale").
			Observe(float64(time.Since(start).Milliseconds()))
	}()

	name := chi.URLParam(r, "name")
	if name == "" {
		telemetry.LookupErrorsTotal.WithLabelValues("locale", "invalid_argument").Inc()
		http.Error(w, "Missing locale identifier", http.StatusBadRequest)
		return
	}

	ix, err := Current()
	if err != nil {
		telemetry.LookupErrorsTotal.WithLabelValues("locale", "empty_index").Inc()
		http.Error(w, "Locale index is empty", http.StatusNotFound)
		return
	}

	h, err := ix.HierarchyOf(name)
	if errors.Is(err, ErrNotFound) {
		telemetry.LookupErrorsTotal.WithLabelValues("locale", "not_found").Inc()
		http.Error(w, `Locale "`+name+`" does not exist`, http.StatusNotFound)
		return
	}

	resp := hierarchyResponse{Locale: h.Locale.Describe()}
	if h.Parent != nil {
		info := h.Parent.Describe()
		resp.Parent = &info
	}
	for _, child := range h.Children {
		resp.Children = append(resp.Children, child.Describe())
	}
	writeJSON(w, resp)
}
