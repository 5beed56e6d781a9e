// Package render draws chart views: static PNG images with go-chart and interactive HTML
// fragments with go-echarts. Output is kept per anchor so the HTTP layer can serve it.
package render

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"chartsync/internal/charts"
	"chartsync/internal/values"
)

// Store keeps the latest output per chart anchor.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func newStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) put(anchor string, b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[anchor] = b
}

// Get returns the latest output for anchor.
func (s *Store) Get(anchor string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data[anchor]
	return b, ok
}

// Anchors lists the anchors that have output.
func (s *Store) Anchors() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.data))
	for a := range s.data {
		out = append(out, a)
	}
	return out
}

// Fanout sends each view to several renderers. Every renderer runs even if one fails.
type Fanout []charts.Renderer

func (f Fanout) Render(v charts.View) error {
	var errs []error
	for _, r := range f {
		if err := r.Render(v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Label formats a row key for axis and legend text.
func Label(key any) string {
	switch k := key.(type) {
	case nil:
		return ""
	case string:
		return k
	case time.Time:
		if k.Hour() == 0 && k.Minute() == 0 && k.Second() == 0 {
			return k.Format("2006-01-02")
		}
		return k.Format("2006-01-02 15:04")
	}
	if f, ok := values.ToFloat(key); ok {
		return fmt.Sprintf("%g", f)
	}
	if path, ok := values.Path(key); ok {
		parts := make([]string, len(path))
		for i, p := range path {
			parts[i] = Label(p)
		}
		return strings.Join(parts, "/")
	}
	return fmt.Sprint(key)
}

// title falls back to the anchor when a view has no title.
func title(v charts.View) string {
	if v.Title != "" {
		return v.Title
	}
	return v.Anchor
}
