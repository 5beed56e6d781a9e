package charts

import (
	"math"
	"time"

	"chartsync/internal/capping"
	"chartsync/internal/filters"
	"chartsync/internal/values"
)

// Margins is the space around a grid's plot area, in pixels.
type Margins struct {
	Top, Right, Bottom, Left int
}

// DefaultMargins leaves room for the axes.
var DefaultMargins = Margins{Top: 10, Right: 50, Bottom: 30, Left: 30}

// Scale maps a continuous domain onto the plot's pixel width.
type Scale struct {
	Min, Max float64
	Pixels   float64
	// Time makes Invert return time.Time instead of float64
	Time bool
}

// NewScale builds a scale over d. It fails when d is not numeric or temporal.
func NewScale(d Domain, pixels float64) (Scale, bool) {
	lo, ok1 := values.ToFloat(d.Min)
	hi, ok2 := values.ToFloat(d.Max)
	if !ok1 || !ok2 {
		return Scale{}, false
	}
	_, isTime := d.Min.(time.Time)
	return Scale{Min: lo, Max: hi, Pixels: pixels, Time: isTime}, true
}

// Invert maps a pixel offset back into the domain.
func (s Scale) Invert(px float64) any {
	v := s.Min
	if s.Pixels > 0 {
		v = s.Min + px*(s.Max-s.Min)/s.Pixels
	}
	if s.Time {
		return time.UnixMilli(int64(math.Round(v))).UTC()
	}
	return v
}

// Apply maps a domain value to a pixel offset.
func (s Scale) Apply(v any) float64 {
	f, ok := values.ToFloat(v)
	if !ok || s.Max == s.Min {
		return 0
	}
	return (f - s.Min) / (s.Max - s.Min) * s.Pixels
}

// RoundFunc snaps a domain value, e.g. to whole days.
type RoundFunc func(v any) any

// RoundTo snaps numeric values to the nearest multiple of step. Times are snapped in
// milliseconds since the epoch and stay times.
func RoundTo(step float64) RoundFunc {
	return func(v any) any {
		f, ok := values.ToFloat(v)
		if !ok || step <= 0 {
			return v
		}
		rounded := math.Round(f/step) * step
		if t, isTime := v.(time.Time); isTime {
			return time.UnixMilli(int64(rounded)).In(t.Location())
		}
		return rounded
	}
}

// CoordinateGridChart is a chart plotted on continuous x and y axes with a brushable x
// range. With elastic axes the domains follow the currently filtered data.
type CoordinateGridChart struct {
	*Base

	margins  Margins
	xDomain  *Domain
	ElasticX bool
	ElasticY bool
	// XPadding and YPadding widen elastic domains on both sides (x) or the top (y).
	XPadding float64
	YPadding float64

	// Round snaps brush extents. It is skipped for centered bars unless
	// AlwaysUseRounding is set.
	Round             RoundFunc
	CenterBar         bool
	AlwaysUseRounding bool

	focus      *filters.Ranged
	focusChart *CoordinateGridChart
	brush      *Brush
}

func newCoordinateGridChart(kind string, opts Options) *CoordinateGridChart {
	c := &CoordinateGridChart{Base: newBase(kind, opts), margins: DefaultMargins}
	c.brush = &Brush{chart: c}
	c.data = c.keyOrderedRows
	c.prepare = c.prepareAxes
	c.clickFilter = func(capping.Row) []filters.Filter { return nil }
	return c
}

// Brush returns the chart's brush controller.
func (c *CoordinateGridChart) Brush() *Brush { return c.brush }

// SetX fixes the x domain used when ElasticX is off.
func (c *CoordinateGridChart) SetX(min, max any) {
	c.xDomain = &Domain{Min: min, Max: max}
}

// SetMargins replaces the plot margins.
func (c *CoordinateGridChart) SetMargins(m Margins) { c.margins = m }

// PlotWidth is the pixel width of the plot area.
func (c *CoordinateGridChart) PlotWidth() float64 {
	return float64(c.width - c.margins.Left - c.margins.Right)
}

// XDomain returns the domain the next draw will use: the focus if set, else the elastic or
// fixed domain.
func (c *CoordinateGridChart) XDomain() (Domain, bool) {
	if c.focus != nil {
		return Domain{Min: c.focus.Low, Max: c.focus.High}, true
	}
	if c.ElasticX {
		return c.elasticX(c.Data())
	}
	if c.xDomain == nil {
		return Domain{}, false
	}
	return *c.xDomain, true
}

// XScale returns the scale brush pixels are inverted through.
func (c *CoordinateGridChart) XScale() (Scale, bool) {
	d, ok := c.XDomain()
	if !ok {
		return Scale{}, false
	}
	return NewScale(d, c.PlotWidth())
}

// Focus zooms the x axis to r. A nil r restores the normal domain.
func (c *CoordinateGridChart) Focus(r *filters.Ranged) {
	if r == nil {
		c.focus = nil
		return
	}
	focus := *r
	c.focus = &focus
}

// Refocus restores the normal x domain.
func (c *CoordinateGridChart) Refocus() { c.focus = nil }

// Focused reports whether the x axis is zoomed.
func (c *CoordinateGridChart) Focused() bool { return c.focus != nil }

// SetRangeChart links rc as the range selector of this chart: its committed brush becomes
// this chart's focus.
func (c *CoordinateGridChart) SetRangeChart(rc *CoordinateGridChart) {
	rc.focusChart = c
	rc.OnFiltered(func(string, []filters.Filter) {
		if r, ok := rc.FirstFilter().(filters.Ranged); ok {
			c.Focus(&r)
		} else {
			c.Refocus()
		}
	})
}

// FocusChart returns the chart this one selects a range for, if any.
func (c *CoordinateGridChart) FocusChart() *CoordinateGridChart { return c.focusChart }

func (c *CoordinateGridChart) prepareAxes(v *View) error {
	x, ok := c.XDomain()
	if !ok {
		return &InvalidStateError{Anchor: c.anchor, Attribute: "x"}
	}
	v.XDomain = &x

	y := c.yDomain(v.Rows)
	v.YDomain = &y

	if r, ok := c.FirstFilter().(filters.Ranged); ok {
		v.Brush = &r
	}
	return nil
}

// elasticX spans the row keys, widened by XPadding.
func (c *CoordinateGridChart) elasticX(rows []capping.Row) (Domain, bool) {
	if len(rows) == 0 {
		return Domain{}, false
	}
	lo, hi := rows[0].Key, rows[0].Key
	for _, r := range rows[1:] {
		if values.Less(r.Key, lo) {
			lo = r.Key
		}
		if values.Less(hi, r.Key) {
			hi = r.Key
		}
	}
	if c.XPadding == 0 {
		return Domain{Min: lo, Max: hi}, true
	}
	return Domain{Min: pad(lo, -c.XPadding), Max: pad(hi, c.XPadding)}, true
}

// yDomain is [min(0, lowest), highest + YPadding] when elastic, else [0, highest].
func (c *CoordinateGridChart) yDomain(rows []capping.Row) Domain {
	lo, hi := 0.0, 0.0
	for _, r := range rows {
		lo = math.Min(lo, r.Value)
		hi = math.Max(hi, r.Value)
	}
	if c.ElasticY {
		hi += c.YPadding
		if lo < 0 {
			lo -= c.YPadding
		}
	}
	return Domain{Min: lo, Max: hi}
}

func pad(v any, by float64) any {
	if t, ok := v.(time.Time); ok {
		return t.Add(time.Duration(by * float64(time.Millisecond)))
	}
	if f, ok := values.ToFloat(v); ok {
		return f + by
	}
	return v
}

// BarChart is a grid chart drawn as vertical bars.
type BarChart struct {
	*CoordinateGridChart
}

// NewBarChart creates a bar chart and registers it.
func NewBarChart(opts Options) *BarChart {
	c := &BarChart{CoordinateGridChart: newCoordinateGridChart("bar", opts)}
	c.registry.Register(c, c.chartGroup)
	return c
}

// LineChart is a grid chart drawn as a connected series.
type LineChart struct {
	*CoordinateGridChart
}

// NewLineChart creates a line chart and registers it.
func NewLineChart(opts Options) *LineChart {
	c := &LineChart{CoordinateGridChart: newCoordinateGridChart("line", opts)}
	c.registry.Register(c, c.chartGroup)
	return c
}
