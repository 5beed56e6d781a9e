package charts

import (
	"chartsync/internal/filters"
	"chartsync/internal/logger"
	"chartsync/internal/values"
)

// BrushState is the phase of a brush gesture.
type BrushState int

const (
	BrushIdle BrushState = iota
	BrushBrushing
	BrushCommitted
)

func (s BrushState) String() string {
	switch s {
	case BrushBrushing:
		return "brushing"
	case BrushCommitted:
		return "committed"
	default:
		return "idle"
	}
}

// Brush turns pixel-space drags on a grid chart into range filters. While a drag moves,
// the range is applied to the dimension directly and the filter set is left alone; ending
// the drag commits the range as the chart's only filter.
type Brush struct {
	chart  *CoordinateGridChart
	state  BrushState
	extent *filters.Ranged
}

// State returns the current phase.
func (b *Brush) State() BrushState { return b.state }

// Extent returns the last non-empty range the brush produced, or nil.
func (b *Brush) Extent() *filters.Ranged { return b.extent }

// Start begins a gesture.
func (b *Brush) Start() {
	b.state = BrushBrushing
}

// Move previews the range between the two pixel offsets.
func (b *Brush) Move(px0, px1 float64) {
	c := b.chart
	r, ok := b.rangeFor(px0, px1)
	if !ok {
		b.clear()
		return
	}
	b.state = BrushBrushing
	b.extent = &r
	if c.dimension != nil {
		filters.Apply(c.dimension, []filters.Filter{r})
	}
	c.requestRedraw()
}

// End commits the range between the two pixel offsets. An empty range clears the filter.
func (b *Brush) End(px0, px1 float64) {
	c := b.chart
	r, ok := b.rangeFor(px0, px1)
	if !ok {
		b.clear()
		return
	}
	b.extent = &r
	c.ReplaceFilter(r)
	b.state = BrushCommitted
	c.requestRedraw()
}

// Cancel aborts a gesture, restoring the dimension to the committed filters.
func (b *Brush) Cancel() {
	c := b.chart
	if c.dimension != nil {
		filters.Apply(c.dimension, c.Filters())
	}
	if c.HasFilter(nil) {
		b.state = BrushCommitted
	} else {
		b.state = BrushIdle
		b.extent = nil
	}
	c.requestRedraw()
}

func (b *Brush) clear() {
	b.state = BrushIdle
	b.extent = nil
	b.chart.Filter(nil)
	b.chart.requestRedraw()
}

// rangeFor inverts a pixel extent through the x scale and applies the rounding policy. It
// reports false for an empty extent.
func (b *Brush) rangeFor(px0, px1 float64) (filters.Ranged, bool) {
	c := b.chart
	if px1 < px0 {
		px0, px1 = px1, px0
	}
	scale, ok := c.XScale()
	if !ok {
		c.log.Warn("brush ignored: chart has no continuous x domain", logger.Fields{"chart": c.anchor})
		return filters.Ranged{}, false
	}
	low, high := scale.Invert(px0), scale.Invert(px1)

	if c.Round != nil {
		if c.CenterBar && !c.AlwaysUseRounding {
			c.log.WarnOnce("brush-rounding:"+c.anchor,
				"brush rounding is disabled for centered bars; set AlwaysUseRounding to force it",
				logger.Fields{"chart": c.anchor})
		} else {
			low, high = c.Round(low), c.Round(high)
		}
	}

	if values.Compare(high, low) <= 0 {
		return filters.Ranged{}, false
	}
	return filters.NewRanged(low, high), true
}
