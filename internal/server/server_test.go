package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chartsync/internal/charts"
	"chartsync/internal/config"
	"chartsync/internal/crossfilter"
	"chartsync/internal/dashboard"
	"chartsync/internal/models"
	"chartsync/internal/render"
	"chartsync/internal/storage"
)

const testLayout = `{
  "title": "Payments",
  "description": "Payments by **type**",
  "charts": [
    {"anchor": "type", "kind": "pie", "dimension": "type", "cap": 2},
    {"anchor": "total", "kind": "bar", "dimension": "total", "width": 180, "x_min": 0, "x_max": 400},
    {"anchor": "menu", "kind": "select", "dimension": "type"},
    {"anchor": "matrix", "kind": "heatmap", "dimensions": ["type", "quantity"], "group": "detail"},
    {"anchor": "types", "kind": "select", "dimension": "type", "multiple": true, "group": "detail"}
  ]
}`

const elasticLayout = `{
  "title": "Empty",
  "charts": [
    {"anchor": "total", "kind": "bar", "dimension": "total", "elastic_x": true}
  ]
}`

func records() []crossfilter.Record {
	return []crossfilter.Record{
		{"type": "tab", "total": 190.0, "quantity": 2.0},
		{"type": "tab", "total": 190.0, "quantity": 2.0},
		{"type": "visa", "total": 300.0, "quantity": 1.0},
		{"type": "tab", "total": 90.0, "quantity": 2.0},
		{"type": "visa", "total": 200.0, "quantity": 2.0},
		{"type": "cash", "total": 100.0, "quantity": 2.0},
	}
}

func newTestServer(t *testing.T, layoutJSON string, recs []crossfilter.Record) *Server {
	t.Helper()

	layout, err := models.ParseLayout([]byte(layoutJSON))
	if err != nil {
		t.Fatalf("Failed to parse layout: %v", err)
	}
	store, err := storage.NewLocalStorageClient(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	images := render.NewPNGRenderer("")
	html := render.NewEChartsRenderer()
	d, err := dashboard.New(dashboard.Options{
		Layout:   layout,
		Records:  recs,
		Renderer: render.Fanout{images, html},
		Storage:  store,
	})
	if err != nil {
		t.Fatalf("Failed to build dashboard: %v", err)
	}
	// elastic charts without data cannot draw yet
	if err := d.Render(); err != nil && !errors.Is(err, charts.ErrInvalidState) {
		t.Fatalf("Failed to render dashboard: %v", err)
	}

	s := NewServer(&config.Config{Port: "0"}, d, images, html)
	t.Cleanup(func() { s.Close() })
	return s
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeChart(t *testing.T, rr *httptest.ResponseRecorder) chartResponse {
	t.Helper()
	var resp chartResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode chart response: %v", err)
	}
	return resp
}

func rowValue(resp chartResponse, key string) float64 {
	for _, row := range resp.Rows {
		if row.Key == key {
			return row.Value
		}
	}
	return -1
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, testLayout, records())
	rr := do(t, s.Handler(), "GET", "/health", "")

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode health: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("Expected status healthy, got %v", body["status"])
	}
	if body["charts"] != 5.0 {
		t.Errorf("Expected 5 charts, got %v", body["charts"])
	}
}

func TestHandleListCharts(t *testing.T) {
	s := newTestServer(t, testLayout, records())
	rr := do(t, s.Handler(), "GET", "/api/charts", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var body struct {
		Title  string              `json:"title"`
		Groups []string            `json:"groups"`
		Charts []dashboard.Summary `json:"charts"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if body.Title != "Payments" || len(body.Charts) != 5 {
		t.Errorf("Expected 5 charts titled Payments, got %q with %d", body.Title, len(body.Charts))
	}
	if body.Charts[0].Anchor != "type" || body.Charts[3].Group != "detail" {
		t.Errorf("Expected layout order, got %+v", body.Charts)
	}
}

func TestClickFiltersOtherCharts(t *testing.T) {
	s := newTestServer(t, testLayout, records())
	h := s.Handler()

	rr := do(t, h, "POST", "/api/charts/menu/click", `{"key": "tab"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeChart(t, rr); len(resp.Filters) != 1 {
		t.Errorf("Expected one filter on menu, got %+v", resp.Filters)
	}

	pie := decodeChart(t, do(t, h, "GET", "/api/charts/type", ""))
	if got := rowValue(pie, "tab"); got != 3 {
		t.Errorf("Expected tab 3, got %v", got)
	}
	if got := rowValue(pie, "visa"); got > 0 {
		t.Errorf("Expected visa filtered out of the pie, got %v", got)
	}
}

func TestFilterModes(t *testing.T) {
	s := newTestServer(t, testLayout, records())
	h := s.Handler()

	rr := do(t, h, "POST", "/api/charts/type/filter", `{"mode": "toggle", "filters": [{"type": "exact", "value": "tab"}, {"type": "exact", "value": "cash"}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeChart(t, rr); len(resp.Filters) != 2 {
		t.Errorf("Expected 2 filters, got %d", len(resp.Filters))
	}

	rr = do(t, h, "POST", "/api/charts/type/filter", `{"mode": "replace", "filters": [{"type": "exact", "value": "visa"}]}`)
	if resp := decodeChart(t, rr); len(resp.Filters) != 1 {
		t.Errorf("Expected 1 filter after replace, got %d", len(resp.Filters))
	}

	rr = do(t, h, "POST", "/api/charts/type/filter", `{"mode": "reset"}`)
	if resp := decodeChart(t, rr); len(resp.Filters) != 0 {
		t.Errorf("Expected no filters after reset, got %d", len(resp.Filters))
	}

	rr = do(t, h, "POST", "/api/charts/type/filter", `{"mode": "sideways"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown mode, got %d", rr.Code)
	}
}

func TestBrushCommitsRange(t *testing.T) {
	s := newTestServer(t, testLayout, records())
	h := s.Handler()

	if rr := do(t, h, "POST", "/api/charts/total/brush", `{"action": "start"}`); rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	rr := do(t, h, "POST", "/api/charts/total/brush", `{"action": "end", "from": 50, "to": 100}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var body map[string]interface{}
	json.Unmarshal(rr.Body.Bytes(), &body)
	if body["state"] != "committed" {
		t.Errorf("Expected committed brush, got %v", body["state"])
	}

	pie := decodeChart(t, do(t, h, "GET", "/api/charts/type", ""))
	if got := rowValue(pie, "visa"); got != 2 {
		t.Errorf("Expected visa 2 inside [200, 400), got %v", got)
	}
}

func TestErrorStatuses(t *testing.T) {
	s := newTestServer(t, testLayout, records())
	h := s.Handler()

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		expected int
	}{
		{"unknown chart", "GET", "/api/charts/nope", "", http.StatusNotFound},
		{"brush on pie", "POST", "/api/charts/type/brush", `{"action": "start"}`, http.StatusBadRequest},
		{"select on pie", "POST", "/api/charts/type/select", `{"keys": ["tab"]}`, http.StatusBadRequest},
		{"bad json", "POST", "/api/charts/type/click", `{"key": `, http.StatusBadRequest},
		{"unknown field", "POST", "/api/charts/type/click", `{"button": 1}`, http.StatusBadRequest},
		{"bad filter", "POST", "/api/charts/type/filter", `{"filters": [{"type": "circle"}]}`, http.StatusBadRequest},
		{"unknown group", "POST", "/api/groups/nope/redraw", "", http.StatusNotFound},
		{"unknown group op", "POST", "/api/groups/detail/explode", "", http.StatusBadRequest},
		{"missing snapshot", "POST", "/api/snapshots/missing/restore", "", http.StatusNotFound},
		{"invalid snapshot name", "POST", "/api/snapshots/.hidden", "", http.StatusBadRequest},
		{"unknown chart file", "GET", "/charts/nope.png", "", http.StatusNotFound},
		{"unsupported chart file", "GET", "/charts/type.svg", "", http.StatusBadRequest},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rr := do(t, h, test.method, test.path, test.body)
			if rr.Code != test.expected {
				t.Errorf("Expected status %d, got %d: %s", test.expected, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestBrushWithoutScaleConflicts(t *testing.T) {
	s := newTestServer(t, elasticLayout, nil)
	rr := do(t, s.Handler(), "POST", "/api/charts/total/brush", `{"action": "end", "from": 0, "to": 10}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestSelectAndHeatMapClick(t *testing.T) {
	s := newTestServer(t, testLayout, records())
	h := s.Handler()

	rr := do(t, h, "POST", "/api/charts/types/select", `{"keys": ["tab", "cash"]}`)
	if resp := decodeChart(t, rr); len(resp.Filters) != 2 {
		t.Errorf("Expected 2 selected keys on a multiple select, got %d", len(resp.Filters))
	}

	rr = do(t, h, "POST", "/api/charts/menu/select", `{"keys": ["tab", "cash"]}`)
	resp := decodeChart(t, rr)
	if len(resp.Filters) != 1 || resp.Filters[0].Value != "tab" {
		t.Errorf("Expected a single select to keep only tab, got %+v", resp.Filters)
	}

	rr = do(t, h, "POST", "/api/charts/matrix/click", `{"key": 2, "axis": "y"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeChart(t, rr); len(resp.Filters) == 0 {
		t.Error("Expected a heat map row filter")
	}
}

func TestGroupFilterAll(t *testing.T) {
	s := newTestServer(t, testLayout, records())
	h := s.Handler()

	do(t, h, "POST", "/api/charts/type/click", `{"key": "tab"}`)
	rr := do(t, h, "POST", "/api/groups/default/filter-all", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeChart(t, do(t, h, "GET", "/api/charts/type", "")); len(resp.Filters) != 0 {
		t.Errorf("Expected filters cleared, got %+v", resp.Filters)
	}
}

func TestHandleChartFile(t *testing.T) {
	s := newTestServer(t, testLayout, records())
	h := s.Handler()

	rr := do(t, h, "GET", "/charts/type.png", "")
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "image/png" {
		t.Errorf("Expected PNG, got %d %q", rr.Code, rr.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("Expected PNG bytes")
	}

	rr = do(t, h, "GET", "/charts/total.html", "")
	if rr.Code != http.StatusOK || !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Expected HTML, got %d %q", rr.Code, rr.Header().Get("Content-Type"))
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestServer(t, testLayout, records())
	h := s.Handler()

	do(t, h, "POST", "/api/charts/type/click", `{"key": "visa"}`)
	if rr := do(t, h, "POST", "/api/snapshots/visa-only", ""); rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	rr := do(t, h, "GET", "/api/snapshots", "")
	var list struct {
		Snapshots []string `json:"snapshots"`
	}
	json.Unmarshal(rr.Body.Bytes(), &list)
	if len(list.Snapshots) != 1 || list.Snapshots[0] != "visa-only" {
		t.Errorf("Expected [visa-only], got %v", list.Snapshots)
	}

	do(t, h, "POST", "/api/charts/type/filter", `{"mode": "reset"}`)
	if rr := do(t, h, "POST", "/api/snapshots/visa-only/restore", ""); rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeChart(t, do(t, h, "GET", "/api/charts/type", ""))
	if len(resp.Filters) != 1 {
		t.Errorf("Expected the visa filter restored, got %+v", resp.Filters)
	}
}

func TestHandleRoot(t *testing.T) {
	s := newTestServer(t, testLayout, records())
	h := s.Handler()

	do(t, h, "POST", "/api/charts/type/click", `{"key": "tab"}`)
	rr := do(t, h, "GET", "/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	page := rr.Body.String()
	for _, want := range []string{"Payments", "<strong>type</strong>", "/charts/type.png", "Filtered: tab"} {
		if !strings.Contains(page, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}

	if rr := do(t, h, "GET", "/missing", ""); rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown path, got %d", rr.Code)
	}
}
