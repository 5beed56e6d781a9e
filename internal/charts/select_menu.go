package charts

import (
	"chartsync/internal/filters"
)

// SelectMenu is a chart rendered as a drop-down. Choosing options replaces the filters
// rather than toggling them.
type SelectMenu struct {
	*Base
	Multiple bool
}

// NewSelectMenu creates a select menu and registers it.
func NewSelectMenu(opts Options) *SelectMenu {
	c := &SelectMenu{Base: newBase("select", opts)}
	c.data = c.keyOrderedRows
	c.registry.Register(c, c.chartGroup)
	return c
}

// Select replaces the filters with keys. No keys clears the selection.
func (c *SelectMenu) Select(keys ...any) {
	if !c.Multiple && len(keys) > 1 {
		keys = keys[:1]
	}
	if len(keys) == 0 {
		c.Filter(nil)
	} else {
		c.ReplaceFilter(filters.Values(keys...)...)
	}
	c.requestRedraw()
}
