package charts

import (
	"chartsync/internal/capping"
	"chartsync/internal/filters"
	"chartsync/internal/values"
)

// CapChart is a chart whose rows are ordered, capped and folded into an "Others" row.
type CapChart struct {
	*Base
	reducer *capping.Reducer
}

func newCapChart(kind string, opts Options) *CapChart {
	c := &CapChart{Base: newBase(kind, opts), reducer: capping.New()}
	c.data = c.cappedRows
	c.clickFilter = c.othersAwareFilters
	c.prepare = func(v *View) error {
		v.OthersLabel = c.reducer.OthersLabel
		return nil
	}
	return c
}

// Reducer exposes the capping configuration.
func (c *CapChart) Reducer() *capping.Reducer { return c.reducer }

// SetCap sets the number of rows kept before folding.
func (c *CapChart) SetCap(n int) { c.reducer.Cap = n }

// SetOthersLabel sets the key of the folded row.
func (c *CapChart) SetOthersLabel(label string) { c.reducer.OthersLabel = label }

func (c *CapChart) cappedRows() []capping.Row {
	return c.reducer.Data(c.groupRows())
}

// othersAwareFilters expands a click on the folded row into every folded key plus the
// label, so both the dimension and label-based highlighting see the selection.
func (c *CapChart) othersAwareFilters(row capping.Row) []filters.Filter {
	if !row.IsOthers() {
		return filters.Values(row.Key)
	}
	fs := filters.Values(row.Others...)
	return append(fs, filters.Value(row.Key))
}

// PieChart is a capped chart drawn as slices.
type PieChart struct {
	*CapChart
}

// NewPieChart creates a pie chart and registers it.
func NewPieChart(opts Options) *PieChart {
	c := &PieChart{CapChart: newCapChart("pie", opts)}
	c.registry.Register(c, c.chartGroup)
	return c
}

// RowChart is a capped chart drawn as horizontal bars.
type RowChart struct {
	*CapChart
}

// NewRowChart creates a row chart and registers it.
func NewRowChart(opts Options) *RowChart {
	c := &RowChart{CapChart: newCapChart("row", opts)}
	c.registry.Register(c, c.chartGroup)
	return c
}

// SunburstChart is a capped chart over path keys. Clicking a ring segment selects the
// subtree rooted at that path.
type SunburstChart struct {
	*CapChart
}

// NewSunburstChart creates a sunburst chart and registers it.
func NewSunburstChart(opts Options) *SunburstChart {
	c := &SunburstChart{CapChart: newCapChart("sunburst", opts)}
	c.clickFilter = c.pathFilters
	c.registry.Register(c, c.chartGroup)
	return c
}

// ClickPath toggles the subtree at path and redraws the chart group.
func (c *SunburstChart) ClickPath(path ...any) {
	c.OnClick(capping.Row{Key: path})
}

// pathFilters toggles the clicked path and drops active filters on its ancestors or
// descendants, so one branch is never selected at two depths.
func (c *SunburstChart) pathFilters(row capping.Row) []filters.Filter {
	if row.IsOthers() {
		return c.othersAwareFilters(row)
	}
	path, ok := values.Path(row.Key)
	if !ok {
		path = []any{row.Key}
	}
	clicked := filters.NewHierarchy(path...)

	var fs []filters.Filter
	for _, f := range c.Filters() {
		h, ok := f.(filters.Hierarchy)
		if !ok || h.Equal(clicked) {
			continue
		}
		if clicked.IsFiltered(h.Path) || h.IsFiltered(path) {
			fs = append(fs, h)
		}
	}
	return append(fs, clicked)
}
