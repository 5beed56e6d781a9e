package charts

import (
	"chartsync/internal/capping"
	"chartsync/internal/filters"
	"chartsync/internal/logger"
	"chartsync/internal/values"
)

// HeatMap plots rows keyed by [x, y] pairs as a grid of cells.
type HeatMap struct {
	*Base
}

// NewHeatMap creates a heat map and registers it.
func NewHeatMap(opts Options) *HeatMap {
	c := &HeatMap{Base: newBase("heatmap", opts)}
	c.clickFilter = func(row capping.Row) []filters.Filter {
		f := filters.NewTwoDimensional(row.Key)
		if !f.Valid() {
			c.log.Warn("heat map click ignored: key is not an [x, y] pair", logger.Fields{"chart": c.anchor, "key": row.Key})
			return nil
		}
		return []filters.Filter{f}
	}
	c.registry.Register(c, c.chartGroup)
	return c
}

// ClickCell toggles the cell at (x, y) and redraws the chart group.
func (c *HeatMap) ClickCell(x, y any) {
	c.OnClick(capping.Row{Key: []any{x, y}})
}

// ClickColumn selects every cell whose x equals x, or clears them when all are already
// selected.
func (c *HeatMap) ClickColumn(x any) {
	c.toggleLine(func(cx, _ any) bool { return values.Equal(cx, x) })
}

// ClickRow selects every cell whose y equals y, or clears them when all are already selected.
func (c *HeatMap) ClickRow(y any) {
	c.toggleLine(func(_, cy any) bool { return values.Equal(cy, y) })
}

func (c *HeatMap) toggleLine(match func(x, y any) bool) {
	var selected, unselected []filters.Filter
	for _, row := range c.Data() {
		x, y, ok := values.Pair(row.Key)
		if !ok || !match(x, y) {
			continue
		}
		f := filters.NewTwoDimensional(row.Key)
		if c.HasFilter(f) {
			selected = append(selected, f)
		} else {
			unselected = append(unselected, f)
		}
	}
	if len(unselected) > 0 {
		c.FilterBatch(unselected...)
	} else {
		c.FilterBatch(selected...)
	}
	c.requestRedraw()
}
