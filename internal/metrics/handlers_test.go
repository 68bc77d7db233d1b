package metrics_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/m-lab/mlab-metrics-api/internal/metrics"
)

// mockStore is an in-memory Store for handler tests. It records the locale of
// the last lookup so alias normalization can be asserted.
type mockStore struct {
	metrics          map[string]metrics.Metric
	values           map[string]float64
	lastLookupLocale string
}

func newMockStore() *mockStore {
	return &mockStore{
		metrics: map[string]metrics.Metric{
			"download_speed": {Name: "download_speed", Units: "Mbit/s", ShortDesc: "Median download speed"},
			"upload_speed":   {Name: "upload_speed", Units: "Mbit/s", ShortDesc: "Median upload speed"},
		},
		values: map[string]float64{
			"download_speed|2020|6|862_g_valencia": 4.25,
			"download_speed|2020|6|world":          11.5,
		},
	}
}

func valueKey(name string, year, month int, locale string) string {
	return fmt.Sprintf("%s|%d|%d|%s", name, year, month, locale)
}

func (s *mockStore) List(ctx context.Context) ([]metrics.Metric, error) {
	out := make([]metrics.Metric, 0, len(s.metrics))
	for _, m := range s.metrics {
		out = append(out, m)
	}
	return out, nil
}

func (s *mockStore) Get(ctx context.Context, name string) (metrics.Metric, error) {
	m, ok := s.metrics[name]
	if !ok {
		return metrics.Metric{}, metrics.ErrNotFound
	}
	return m, nil
}

func (s *mockStore) Create(ctx context.Context, m metrics.Metric) error {
	if _, ok := s.metrics[m.Name]; ok {
		return metrics.ErrAlreadyExists
	}
	s.metrics[m.Name] = m
	return nil
}

func (s *mockStore) Update(ctx context.Context, m metrics.Metric) (metrics.Metric, error) {
	existing, ok := s.metrics[m.Name]
	if !ok {
		return metrics.Metric{}, metrics.ErrNotFound
	}
	if m.Units != "" {
		existing.Units = m.Units
	}
	if m.ShortDesc != "" {
		existing.ShortDesc = m.ShortDesc
	}
	if m.LongDesc != "" {
		existing.LongDesc = m.LongDesc
	}
	if m.Query != "" {
		existing.Query = m.Query
	}
	s.metrics[m.Name] = existing
	return existing, nil
}

func (s *mockStore) Delete(ctx context.Context, name string) error {
	if _, ok := s.metrics[name]; !ok {
		return metrics.ErrNotFound
	}
	delete(s.metrics, name)
	return nil
}

func (s *mockStore) Lookup(ctx context.Context, name string, year, month int, locale string) (metrics.MetricValue, string, error) {
	s.lastLookupLocale = locale
	m, ok := s.metrics[name]
	if !ok {
		return metrics.MetricValue{}, "", metrics.ErrNotFound
	}
	v, ok := s.values[valueKey(name, year, month, locale)]
	if !ok {
		return metrics.MetricValue{}, "", metrics.ErrNoData
	}
	return metrics.MetricValue{
		MetricName: name, Year: year, Month: month, Locale: locale, Value: v,
	}, m.Units, nil
}

func newTestServer(t *testing.T, store metrics.Store) *chi.Mux {
	t.Helper()
	t.Setenv("ADMIN_TOKEN_HASH", "")
	t.Setenv("ADMIN_TOKEN", "test-admin-token")

	h := &metrics.Handlers{Store: store}
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func do(t *testing.T, r http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("x-admin-token", token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

// TestLookupHandler_OK verifies the lookup response shape.
func TestLookupHandler_OK(t *testing.T) {
	r := newTestServer(t, newMockStore())

	rr := do(t, r, http.MethodGet,
		"/metric/download_speed?year=2020&month=6&locale=862_g_valencia", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Metric string  `json:"metric"`
		Units  string  `json:"units"`
		Value  float64 `json:"value"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Metric != "download_speed" || resp.Units != "Mbit/s" || resp.Value != 4.25 {
		t.Errorf("response = %+v, want download_speed / Mbit/s / 4.25", resp)
	}
}

// TestLookupHandler_WorldAliases verifies the non-standard world spellings
// all hit the canonical root locale.
func TestLookupHandler_WorldAliases(t *testing.T) {
	store := newMockStore()
	r := newTestServer(t, store)

	for _, locale := range []string{"world", "global", `""`, `''`} {
		rr := do(t, r, http.MethodGet,
			"/metric/download_speed?year=2020&month=6&locale="+locale, "", "")
		if rr.Code != http.StatusOK {
			t.Errorf("locale %q: status = %d, want 200; body: %s", locale, rr.Code, rr.Body.String())
			continue
		}
		if store.lastLookupLocale != "world" {
			t.Errorf("locale %q resolved to %q, want world", locale, store.lastLookupLocale)
		}
	}
}

// TestLookupHandler_MissingDate verifies both date parameters are required.
func TestLookupHandler_MissingDate(t *testing.T) {
	r := newTestServer(t, newMockStore())

	for _, target := range []string{
		"/metric/download_speed?locale=world",
		"/metric/download_speed?year=2020&locale=world",
		"/metric/download_speed?month=6&locale=world",
	} {
		if rr := do(t, r, http.MethodGet, target, "", ""); rr.Code != http.StatusBadRequest {
			t.Errorf("GET %s: status = %d, want 400", target, rr.Code)
		}
	}
}

// TestLookupHandler_BadDate verifies rejection of non-numeric and
// out-of-range date parameters.
func TestLookupHandler_BadDate(t *testing.T) {
	r := newTestServer(t, newMockStore())

	for _, target := range []string{
		"/metric/download_speed?year=twenty&month=6&locale=world",
		"/metric/download_speed?year=2020&month=0&locale=world",
		"/metric/download_speed?year=2020&month=13&locale=world",
		"/metric/download_speed?year=0&month=6&locale=world",
	} {
		if rr := do(t, r, http.MethodGet, target, "", ""); rr.Code != http.StatusBadRequest {
			t.Errorf("GET %s: status = %d, want 400", target, rr.Code)
		}
	}
}

// TestLookupHandler_MissingLocale verifies the locale parameter is required.
func TestLookupHandler_MissingLocale(t *testing.T) {
	r := newTestServer(t, newMockStore())

	rr := do(t, r, http.MethodGet, "/metric/download_speed?year=2020&month=6", "", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

// TestLookupHandler_UnknownMetric verifies the 404 answer for metrics that
// do not exist.
func TestLookupHandler_UnknownMetric(t *testing.T) {
	r := newTestServer(t, newMockStore())

	rr := do(t, r, http.MethodGet, "/metric/nope?year=2020&month=6&locale=world", "", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

// TestLookupHandler_NoData verifies the 404 answer when the metric exists
// but holds no value for the requested period.
func TestLookupHandler_NoData(t *testing.T) {
	r := newTestServer(t, newMockStore())

	rr := do(t, r, http.MethodGet,
		"/metric/download_speed?year=1999&month=1&locale=world", "", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

// TestListHandler verifies the definition listing.
func TestListHandler(t *testing.T) {
	r := newTestServer(t, newMockStore())

	rr := do(t, r, http.MethodGet, "/metrics", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var list []metrics.Metric
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("got %d metrics, want 2", len(list))
	}
}

// TestDetailsHandler verifies single-definition fetches and the 404 path.
func TestDetailsHandler(t *testing.T) {
	r := newTestServer(t, newMockStore())

	rr := do(t, r, http.MethodGet, "/metrics/upload_speed", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var m metrics.Metric
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if m.Name != "upload_speed" {
		t.Errorf("name = %q, want upload_speed", m.Name)
	}

	if rr := do(t, r, http.MethodGet, "/metrics/nope", "", ""); rr.Code != http.StatusNotFound {
		t.Errorf("unknown metric: status = %d, want 404", rr.Code)
	}
}

// TestCreateHandler verifies creation, the duplicate conflict, and input
// validation, all through the admin gate.
func TestCreateHandler(t *testing.T) {
	store := newMockStore()
	r := newTestServer(t, store)

	body := `{"name":"latency","units":"ms","short_desc":"Median RTT"}`
	rr := do(t, r, http.MethodPost, "/metrics", body, "test-admin-token")
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rr.Code, rr.Body.String())
	}
	if _, ok := store.metrics["latency"]; !ok {
		t.Error("metric was not stored")
	}

	if rr := do(t, r, http.MethodPost, "/metrics", body, "test-admin-token"); rr.Code != http.StatusConflict {
		t.Errorf("duplicate: status = %d, want 409", rr.Code)
	}

	if rr := do(t, r, http.MethodPost, "/metrics", `{"units":"ms"}`, "test-admin-token"); rr.Code != http.StatusBadRequest {
		t.Errorf("missing name: status = %d, want 400", rr.Code)
	}

	if rr := do(t, r, http.MethodPost, "/metrics", `not json`, "test-admin-token"); rr.Code != http.StatusBadRequest {
		t.Errorf("bad body: status = %d, want 400", rr.Code)
	}
}

// TestUpdateHandler verifies the merge semantics: submitted fields change,
// omitted fields keep their stored values.
func TestUpdateHandler(t *testing.T) {
	store := newMockStore()
	r := newTestServer(t, store)

	rr := do(t, r, http.MethodPut, "/metrics/download_speed",
		`{"short_desc":"Updated description"}`, "test-admin-token")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rr.Code, rr.Body.String())
	}

	got := store.metrics["download_speed"]
	if got.ShortDesc != "Updated description" {
		t.Errorf("short_desc = %q, want the updated value", got.ShortDesc)
	}
	if got.Units != "Mbit/s" {
		t.Errorf("units = %q, want the original Mbit/s kept", got.Units)
	}

	if rr := do(t, r, http.MethodPut, "/metrics/nope", `{}`, "test-admin-token"); rr.Code != http.StatusNotFound {
		t.Errorf("unknown metric: status = %d, want 404", rr.Code)
	}
}

// TestDeleteHandler verifies removal and the 404 path.
func TestDeleteHandler(t *testing.T) {
	store := newMockStore()
	r := newTestServer(t, store)

	rr := do(t, r, http.MethodDelete, "/metrics/upload_speed", "", "test-admin-token")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
	if _, ok := store.metrics["upload_speed"]; ok {
		t.Error("metric still stored after delete")
	}

	if rr := do(t, r, http.MethodDelete, "/metrics/upload_speed", "", "test-admin-token"); rr.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", rr.Code)
	}
}

// TestAdminGate verifies mutating endpoints reject missing and wrong tokens
// while read endpoints stay open.
func TestAdminGate(t *testing.T) {
	r := newTestServer(t, newMockStore())

	if rr := do(t, r, http.MethodPost, "/metrics", `{"name":"x"}`, ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d, want 401", rr.Code)
	}
	if rr := do(t, r, http.MethodPost, "/metrics", `{"name":"x"}`, "wrong"); rr.Code != http.StatusForbidden {
		t.Errorf("wrong token: status = %d, want 403", rr.Code)
	}
	if rr := do(t, r, http.MethodGet, "/metrics", "", ""); rr.Code != http.StatusOK {
		t.Errorf("public read: status = %d, want 200", rr.Code)
	}
}
