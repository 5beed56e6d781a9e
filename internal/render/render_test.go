package render

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chartsync/internal/capping"
	"chartsync/internal/charts"
	"chartsync/internal/filters"
)

var pngMagic = []byte("\x89PNG")

func sampleViews() []charts.View {
	rows := []capping.Row{{Key: "cash", Value: 1}, {Key: "tab", Value: 3}, {Key: "Others", Value: 2, Others: []any{"visa", "amex"}}}
	return []charts.View{
		{Anchor: "pie", Kind: "pie", Width: 300, Height: 300, Rows: rows, Filters: []filters.Filter{filters.Value("tab")}},
		{Anchor: "row", Kind: "row", Width: 400, Height: 300, Rows: rows},
		{Anchor: "select", Kind: "select", Width: 400, Height: 300, Rows: rows},
		{
			Anchor: "bar", Kind: "bar", Width: 400, Height: 300,
			Rows:    []capping.Row{{Key: 10.0, Value: 1}, {Key: 20.0, Value: 4}, {Key: 30.0, Value: 2}},
			XDomain: &charts.Domain{Min: 0.0, Max: 40.0},
			YDomain: &charts.Domain{Min: 0.0, Max: 5.0},
			Brush:   &filters.Ranged{Low: 15.0, High: 25.0},
			Filters: []filters.Filter{filters.NewRanged(15.0, 25.0)},
		},
		{
			Anchor: "line", Kind: "line", Width: 400, Height: 300,
			Rows: []capping.Row{
				{Key: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Value: 1},
				{Key: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), Value: 3},
			},
			XDomain: &charts.Domain{Min: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Max: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
			YDomain: &charts.Domain{Min: 0.0, Max: 3.0},
		},
		{
			Anchor: "heat", Kind: "heatmap", Width: 400, Height: 300,
			Rows: []capping.Row{{Key: []any{"a", 1}, Value: 2}, {Key: []any{"b", 1}, Value: 5}, {Key: []any{"a", 2}, Value: 1}},
		},
	}
}

func TestPNGRendererDrawsEveryKind(t *testing.T) {
	dir := t.TempDir()
	r := NewPNGRenderer(dir)

	for _, v := range sampleViews() {
		if err := r.Render(v); err != nil {
			t.Errorf("Failed to render %s: %v", v.Anchor, err)
			continue
		}
		img, ok := r.Get(v.Anchor)
		if !ok || !bytes.HasPrefix(img, pngMagic) {
			t.Errorf("Expected a PNG image for %s", v.Anchor)
		}
		if _, err := os.Stat(filepath.Join(dir, v.Anchor+".png")); err != nil {
			t.Errorf("Expected %s.png on disk: %v", v.Anchor, err)
		}
	}
	if len(r.Anchors()) != len(sampleViews()) {
		t.Errorf("Expected %d stored images, got %d", len(sampleViews()), len(r.Anchors()))
	}
}

func TestPNGRendererHandlesEmptyViews(t *testing.T) {
	r := NewPNGRenderer("")
	for _, kind := range []string{"pie", "row", "bar", "line", "heatmap"} {
		v := charts.View{Anchor: kind, Kind: kind, Width: 300, Height: 200}
		if err := r.Render(v); err != nil {
			t.Errorf("Expected empty %s view to render, got %v", kind, err)
		}
	}
	if err := r.Render(charts.View{Anchor: "x", Kind: "radar"}); err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestEChartsRendererDrawsEveryKind(t *testing.T) {
	r := NewEChartsRenderer()
	for _, v := range sampleViews() {
		if err := r.Render(v); err != nil {
			t.Errorf("Failed to render %s: %v", v.Anchor, err)
			continue
		}
		page, _ := r.Get(v.Anchor)
		html := string(page)
		if !strings.Contains(html, "echarts") || !strings.Contains(html, v.Anchor) {
			t.Errorf("Expected echarts HTML for %s", v.Anchor)
		}
	}

	page, _ := r.Get("pie")
	if !strings.Contains(string(page), "Filtered: tab") {
		t.Error("Expected the pie subtitle to describe its filter")
	}
}

func TestFanoutRunsAllRenderers(t *testing.T) {
	var calls []string
	failing := charts.RendererFunc(func(v charts.View) error {
		calls = append(calls, "failing")
		return errors.New("boom")
	})
	ok := charts.RendererFunc(func(v charts.View) error {
		calls = append(calls, "ok")
		return nil
	})

	err := Fanout{failing, ok}.Render(charts.View{Anchor: "a"})
	if err == nil || len(calls) != 2 {
		t.Errorf("Expected both renderers to run and the error to surface, got %v %v", calls, err)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		in       any
		expected string
	}{
		{"cash", "cash"},
		{3.0, "3"},
		{2.5, "2.5"},
		{[]any{"a", "b"}, "a/b"},
		{time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), "2026-03-04"},
		{time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC), "2026-03-04 05:06"},
		{nil, ""},
	}
	for _, test := range tests {
		if got := Label(test.in); got != test.expected {
			t.Errorf("Label(%v): expected %q, got %q", test.in, test.expected, got)
		}
	}
}

func TestFilterSummary(t *testing.T) {
	got := FilterSummary([]filters.Filter{filters.Value("a"), filters.NewRanged(1, 2), filters.NewHierarchy("x", "y")})
	expected := "Filtered: a, [1, 2), x/y"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}
