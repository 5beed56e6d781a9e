package charts

import (
	"chartsync/internal/capping"
	"chartsync/internal/filters"
)

// Domain is an axis extent. Min and Max are numbers or times.
type Domain struct {
	Min any `json:"min"`
	Max any `json:"max"`
}

// View is the state a renderer draws: one snapshot of a chart after a data pull.
type View struct {
	Anchor  string           `json:"anchor"`
	Kind    string           `json:"kind"`
	Group   string           `json:"group"`
	Title   string           `json:"title,omitempty"`
	Width   int              `json:"width"`
	Height  int              `json:"height"`
	Rows    []capping.Row    `json:"rows"`
	Filters []filters.Filter `json:"-"`

	// coordinate grids only
	XDomain *Domain         `json:"x_domain,omitempty"`
	YDomain *Domain         `json:"y_domain,omitempty"`
	Brush   *filters.Ranged `json:"-"`

	// label of the folded row for capped charts
	OthersLabel string `json:"others_label,omitempty"`
}

// Selected reports whether row should be drawn highlighted. With no active filter every row is.
func (v View) Selected(row capping.Row) bool {
	if len(v.Filters) == 0 {
		return true
	}
	for _, f := range v.Filters {
		if f.IsFiltered(row.Key) {
			return true
		}
	}
	return false
}

// Renderer draws views. Implementations decide the output medium.
type Renderer interface {
	Render(v View) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(v View) error

func (f RendererFunc) Render(v View) error { return f(v) }
