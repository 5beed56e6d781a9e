package models

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"chartsync/internal/filters"
)

// Chart kinds a layout may declare
const (
	KindPie      = "pie"
	KindRow      = "row"
	KindSunburst = "sunburst"
	KindBar      = "bar"
	KindLine     = "line"
	KindHeatMap  = "heatmap"
	KindSelect   = "select"
)

// Reductions a chart may aggregate with
const (
	ReduceCount = "count"
	ReduceSum   = "sum"
)

// Layout describes a dashboard: its charts and how they are wired to the data
type Layout struct {
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"` // markdown
	EventDelayMS int         `json:"event_delay_ms,omitempty"`
	Charts       []ChartSpec `json:"charts"`
}

// ChartSpec declares one chart
type ChartSpec struct {
	Anchor string `json:"anchor"`
	Kind   string `json:"kind"`
	Group  string `json:"group,omitempty"` // chart group; empty joins the default group
	Title  string `json:"title,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`

	// Dimension is the record field the chart filters on. Heat maps and sunbursts key on
	// several fields instead.
	Dimension  string   `json:"dimension,omitempty"`
	Dimensions []string `json:"dimensions,omitempty"`
	Bin        float64  `json:"bin,omitempty"` // bucket width for numeric grid keys

	Reduce     string `json:"reduce,omitempty"`      // count (default) or sum
	ValueField string `json:"value_field,omitempty"` // summed field

	Cap         int    `json:"cap,omitempty"`
	OthersLabel string `json:"others_label,omitempty"`

	ElasticX          bool     `json:"elastic_x,omitempty"`
	ElasticY          bool     `json:"elastic_y,omitempty"`
	XMin              *float64 `json:"x_min,omitempty"`
	XMax              *float64 `json:"x_max,omitempty"`
	Round             float64  `json:"round,omitempty"`
	CenterBar         bool     `json:"center_bar,omitempty"`
	AlwaysUseRounding bool     `json:"always_use_rounding,omitempty"`
	RangeChartFor     string   `json:"range_chart_for,omitempty"` // anchor of the focus chart

	Multiple bool `json:"multiple,omitempty"` // select menus
}

// KeyFields returns the record fields that make up the chart key
func (s ChartSpec) KeyFields() []string {
	if len(s.Dimensions) > 0 {
		return s.Dimensions
	}
	if s.Dimension != "" {
		return []string{s.Dimension}
	}
	return nil
}

// IsGrid reports whether the chart is plotted on coordinate axes
func (s ChartSpec) IsGrid() bool {
	return s.Kind == KindBar || s.Kind == KindLine
}

// Validate checks a layout for missing or inconsistent chart declarations
func (l *Layout) Validate() error {
	if len(l.Charts) == 0 {
		return fmt.Errorf("layout declares no charts")
	}

	seen := make(map[string]bool)
	for i, c := range l.Charts {
		if c.Anchor == "" {
			return fmt.Errorf("chart %d: anchor is required", i)
		}
		if seen[c.Anchor] {
			return fmt.Errorf("chart %s: duplicate anchor", c.Anchor)
		}
		seen[c.Anchor] = true

		switch c.Kind {
		case KindPie, KindRow, KindBar, KindLine, KindSelect:
			if c.Dimension == "" {
				return fmt.Errorf("chart %s: dimension is required for %s charts", c.Anchor, c.Kind)
			}
		case KindHeatMap:
			if len(c.Dimensions) != 2 {
				return fmt.Errorf("chart %s: heatmap needs exactly 2 dimensions, got %d", c.Anchor, len(c.Dimensions))
			}
		case KindSunburst:
			if len(c.KeyFields()) == 0 {
				return fmt.Errorf("chart %s: sunburst needs at least one dimension", c.Anchor)
			}
		default:
			return fmt.Errorf("chart %s: unknown kind %q", c.Anchor, c.Kind)
		}

		if c.Cap < 0 {
			return fmt.Errorf("chart %s: cap must not be negative, got %d", c.Anchor, c.Cap)
		}

		switch c.Reduce {
		case "", ReduceCount:
		case ReduceSum:
			if c.ValueField == "" {
				return fmt.Errorf("chart %s: value_field is required to reduce by sum", c.Anchor)
			}
		default:
			return fmt.Errorf("chart %s: unknown reduce %q", c.Anchor, c.Reduce)
		}
	}

	for _, c := range l.Charts {
		if c.RangeChartFor == "" {
			continue
		}
		if !c.IsGrid() {
			return fmt.Errorf("chart %s: only grid charts can be range charts", c.Anchor)
		}
		if !seen[c.RangeChartFor] {
			return fmt.Errorf("chart %s: range chart target %s does not exist", c.Anchor, c.RangeChartFor)
		}
	}
	return nil
}

// EventDelay returns the configured redraw debounce delay
func (l *Layout) EventDelay() time.Duration {
	return time.Duration(l.EventDelayMS) * time.Millisecond
}

// ParseLayout decodes and validates a JSON layout
func ParseLayout(data []byte) (*Layout, error) {
	var layout Layout
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	return &layout, nil
}

// LoadLayout reads a JSON layout from path
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout %s: %w", path, err)
	}
	return ParseLayout(data)
}

// Snapshot is the saved filter state of a dashboard, keyed by chart anchor
type Snapshot struct {
	Name      string                    `json:"name"`
	CreatedAt time.Time                 `json:"created_at"`
	Charts    map[string][]filters.Wire `json:"charts"`
}
