package dashboard

import (
	"fmt"

	"chartsync/internal/capping"
	"chartsync/internal/charts"
	"chartsync/internal/filters"
	"chartsync/internal/values"
)

// FilterMode selects how Filter combines predicates with a chart's active set
type FilterMode string

const (
	FilterToggle  FilterMode = "toggle"
	FilterReplace FilterMode = "replace"
	FilterReset   FilterMode = "reset"
)

// BrushAction is one step of a brush gesture
type BrushAction string

const (
	BrushStart  BrushAction = "start"
	BrushMove   BrushAction = "move"
	BrushEnd    BrushAction = "end"
	BrushCancel BrushAction = "cancel"
)

// Filter changes a chart's filters and schedules a redraw of its group
func (d *Dashboard) Filter(anchor string, mode FilterMode, fs ...filters.Filter) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, err := d.Chart(anchor)
	if err != nil {
		return err
	}
	switch mode {
	case FilterToggle, "":
		c.FilterBatch(fs...)
	case FilterReplace:
		c.ReplaceFilter(fs...)
	case FilterReset:
		c.Filter(nil)
	default:
		return fmt.Errorf("%w: unknown filter mode %q", ErrUnsupported, mode)
	}
	d.scheduleRedraw(c.ChartGroup())
	return nil
}

// Click toggles the row with key as a user click would. Clicking the folded row of a
// capped chart toggles every key folded into it.
func (d *Dashboard) Click(anchor string, key any) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, err := d.Chart(anchor)
	if err != nil {
		return err
	}
	c.OnClick(findRow(c.Data(), key))
	return nil
}

func findRow(rows []capping.Row, key any) capping.Row {
	for _, row := range rows {
		if values.Equal(row.Key, key) {
			return row
		}
	}
	return capping.Row{Key: key}
}

type brushable interface {
	Brush() *charts.Brush
	XScale() (charts.Scale, bool)
}

// Brush drives the brush of a grid chart. Pixel positions are relative to the plot area.
func (d *Dashboard) Brush(anchor string, action BrushAction, px0, px1 float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, err := d.Chart(anchor)
	if err != nil {
		return err
	}
	grid, ok := c.(brushable)
	if !ok {
		return fmt.Errorf("%w: %s charts have no brush", ErrUnsupported, c.Kind())
	}
	if action == BrushMove || action == BrushEnd {
		if _, ok := grid.XScale(); !ok {
			return &charts.InvalidStateError{Anchor: anchor, Attribute: "x"}
		}
	}

	brush := grid.Brush()
	switch action {
	case BrushStart:
		brush.Start()
	case BrushMove:
		brush.Move(px0, px1)
	case BrushEnd:
		brush.End(px0, px1)
	case BrushCancel:
		brush.Cancel()
	default:
		return fmt.Errorf("%w: unknown brush action %q", ErrUnsupported, action)
	}
	return nil
}

// BrushState reports the brush state and extent of a grid chart
func (d *Dashboard) BrushState(anchor string) (charts.BrushState, *filters.Ranged, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, err := d.Chart(anchor)
	if err != nil {
		return charts.BrushIdle, nil, err
	}
	grid, ok := c.(brushable)
	if !ok {
		return charts.BrushIdle, nil, fmt.Errorf("%w: %s charts have no brush", ErrUnsupported, c.Kind())
	}
	return grid.Brush().State(), grid.Brush().Extent(), nil
}

// Select sets the selection of a select menu. No keys clears it.
func (d *Dashboard) Select(anchor string, keys ...any) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, err := d.Chart(anchor)
	if err != nil {
		return err
	}
	menu, ok := c.(*charts.SelectMenu)
	if !ok {
		return fmt.Errorf("%w: %s charts are not select menus", ErrUnsupported, c.Kind())
	}
	menu.Select(keys...)
	return nil
}

// ClickHeatMapLine toggles a whole column ("x") or row ("y") of a heat map
func (d *Dashboard) ClickHeatMapLine(anchor, axis string, value any) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, err := d.Chart(anchor)
	if err != nil {
		return err
	}
	hm, ok := c.(*charts.HeatMap)
	if !ok {
		return fmt.Errorf("%w: %s charts are not heat maps", ErrUnsupported, c.Kind())
	}
	switch axis {
	case "x":
		hm.ClickColumn(value)
	case "y":
		hm.ClickRow(value)
	default:
		return fmt.Errorf("%w: unknown heat map axis %q", ErrUnsupported, axis)
	}
	return nil
}

// FilterAllGroup resets every chart of group and redraws it
func (d *Dashboard) FilterAllGroup(group string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	name, err := d.resolveGroup(group)
	if err != nil {
		return err
	}
	d.registry.FilterAll(name)
	return d.registry.RedrawAll(name)
}

// RedrawGroup redraws every chart of group
func (d *Dashboard) RedrawGroup(group string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	name, err := d.resolveGroup(group)
	if err != nil {
		return err
	}
	return d.registry.RedrawAll(name)
}

// RenderGroup renders every chart of group
func (d *Dashboard) RenderGroup(group string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	name, err := d.resolveGroup(group)
	if err != nil {
		return err
	}
	return d.registry.RenderAll(name)
}

// RefocusGroup restores the full x range of every zoomed chart of group
func (d *Dashboard) RefocusGroup(group string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	name, err := d.resolveGroup(group)
	if err != nil {
		return err
	}
	d.registry.RefocusAll(name)
	return d.registry.RedrawAll(name)
}
