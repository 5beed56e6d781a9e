package charts

import (
	"time"

	"chartsync/internal/capping"
	"chartsync/internal/crossfilter"
	"chartsync/internal/events"
	"chartsync/internal/filters"
	"chartsync/internal/logger"
	"chartsync/internal/registry"
)

// Default chart size in pixels.
const (
	DefaultWidth  = 400
	DefaultHeight = 300
)

// Options configures a chart at construction.
type Options struct {
	Anchor     string
	ChartGroup string
	Title      string
	Width      int
	Height     int

	Dimension filters.Dimension
	Group     crossfilter.Group

	// Registry defaults to registry.Default.
	Registry *registry.Registry
	// Events defaults to an unguarded engine owned by the chart.
	Events     *events.Engine
	EventDelay time.Duration
	Renderer   Renderer
}

// FilteredListener is notified after a chart's filters changed and were applied.
type FilteredListener func(anchor string, changed []filters.Filter)

// Base carries the state and behavior shared by every chart kind: the filter set and its
// toggle protocol, data pulls, and group-wide redraws. Chart kinds embed it and install
// their strategies at construction.
type Base struct {
	anchor     string
	chartGroup string
	kind       string
	title      string
	width      int
	height     int

	dimension filters.Dimension
	group     crossfilter.Group
	filters   *filters.Set
	listeners []FilteredListener

	registry   *registry.Registry
	events     *events.Engine
	eventDelay time.Duration
	renderer   Renderer
	log        *logger.Logger

	// strategies
	data        func() []capping.Row
	clickFilter func(row capping.Row) []filters.Filter
	prepare     func(v *View) error
}

func newBase(kind string, opts Options) *Base {
	b := &Base{
		anchor:     opts.Anchor,
		chartGroup: opts.ChartGroup,
		kind:       kind,
		title:      opts.Title,
		width:      opts.Width,
		height:     opts.Height,
		dimension:  opts.Dimension,
		group:      opts.Group,
		filters:    filters.NewSet(),
		registry:   opts.Registry,
		events:     opts.Events,
		eventDelay: opts.EventDelay,
		renderer:   opts.Renderer,
		log:        logger.GetGlobalLogger().WithComponent("chart"),
	}
	if b.chartGroup == "" {
		b.chartGroup = registry.DefaultGroup
	}
	if b.width <= 0 {
		b.width = DefaultWidth
	}
	if b.height <= 0 {
		b.height = DefaultHeight
	}
	if b.registry == nil {
		b.registry = registry.Default
	}
	if b.events == nil {
		b.events = events.New(nil)
	}
	b.data = b.groupRows
	b.clickFilter = func(row capping.Row) []filters.Filter { return filters.Values(row.Key) }
	return b
}

// AnchorName identifies the chart in its registry.
func (b *Base) AnchorName() string { return b.anchor }

// ChartGroup returns the name of the group the chart redraws with.
func (b *Base) ChartGroup() string { return b.chartGroup }

// Kind returns the chart kind, e.g. "pie".
func (b *Base) Kind() string { return b.kind }

// Dimension returns the dimension filters are applied to.
func (b *Base) Dimension() filters.Dimension { return b.dimension }

// SetDimension replaces the dimension.
func (b *Base) SetDimension(dim filters.Dimension) { b.dimension = dim }

// Group returns the aggregation the chart reads.
func (b *Base) Group() crossfilter.Group { return b.group }

// SetGroup replaces the aggregation.
func (b *Base) SetGroup(g crossfilter.Group) { b.group = g }

// SetRenderer replaces the renderer.
func (b *Base) SetRenderer(r Renderer) { b.renderer = r }

// EventDelay is the debounce delay used for gesture redraws.
func (b *Base) EventDelay() time.Duration { return b.eventDelay }

// SetEventDelay sets the debounce delay used for gesture redraws.
func (b *Base) SetEventDelay(d time.Duration) { b.eventDelay = d }

// FirstFilter returns the first active filter, or nil.
func (b *Base) FirstFilter() filters.Filter { return b.filters.First() }

// Filters returns a copy of the active filters in insertion order.
func (b *Base) Filters() []filters.Filter { return b.filters.All() }

// HasFilter reports whether f is active. A nil f reports whether any filter is active.
func (b *Base) HasFilter(f filters.Filter) bool { return b.filters.Has(f) }

// Filter toggles f. A nil f resets every filter.
func (b *Base) Filter(f filters.Filter) {
	if f == nil {
		b.filters.Reset()
		b.applyFilters(nil)
		return
	}
	b.filters.Toggle(f)
	b.applyFilters([]filters.Filter{f})
}

// FilterBatch toggles each filter independently and applies the result once. An empty
// batch changes nothing.
func (b *Base) FilterBatch(fs ...filters.Filter) {
	if len(fs) == 0 {
		return
	}
	b.filters.Toggle(fs...)
	b.applyFilters(fs)
}

// ReplaceFilter resets and toggles fs as one step.
func (b *Base) ReplaceFilter(fs ...filters.Filter) {
	b.filters.Replace(fs...)
	b.applyFilters(fs)
}

// FilterAll resets every filter.
func (b *Base) FilterAll() { b.Filter(nil) }

// OnFiltered registers a listener run after every filter change.
func (b *Base) OnFiltered(fn FilteredListener) {
	b.listeners = append(b.listeners, fn)
}

func (b *Base) applyFilters(changed []filters.Filter) {
	if b.dimension != nil {
		filters.Apply(b.dimension, b.filters.All())
	}
	b.log.Debug("filtered", logger.Fields{"chart": b.anchor, "active": b.filters.Len()})
	for _, fn := range b.listeners {
		fn(b.anchor, changed)
	}
}

// OnClick toggles the filters derived from row and redraws the chart group.
func (b *Base) OnClick(row capping.Row) {
	fs := b.clickFilter(row)
	if len(fs) == 0 {
		return
	}
	b.FilterBatch(fs...)
	b.requestRedraw()
}

// RedrawGroup redraws every chart of the group.
func (b *Base) RedrawGroup() error {
	return b.registry.RedrawAll(b.chartGroup)
}

// RenderGroup renders every chart of the group.
func (b *Base) RenderGroup() error {
	return b.registry.RenderAll(b.chartGroup)
}

// requestRedraw schedules one coordinated group redraw through the events engine.
func (b *Base) requestRedraw() {
	b.events.Trigger(func() {
		// failures are logged per chart by the registry
		_ = b.RedrawGroup()
	}, b.eventDelay)
}

// Data returns the rows the chart displays.
func (b *Base) Data() []capping.Row {
	if b.group == nil {
		return nil
	}
	return b.data()
}

func (b *Base) groupRows() []capping.Row {
	all := b.group.All()
	rows := make([]capping.Row, len(all))
	for i, r := range all {
		rows[i] = capping.Row{Key: r.Key, Value: r.Value}
	}
	return rows
}

func (b *Base) keyOrderedRows() []capping.Row {
	byKey := capping.New()
	byKey.Ordering = capping.ByKey
	return byKey.Order(b.groupRows())
}

func (b *Base) checkState() error {
	if b.dimension == nil {
		return &InvalidStateError{Anchor: b.anchor, Attribute: "dimension"}
	}
	if b.group == nil {
		return &InvalidStateError{Anchor: b.anchor, Attribute: "group"}
	}
	return nil
}

// View pulls data and builds the snapshot handed to the renderer.
func (b *Base) View() (View, error) {
	if err := b.checkState(); err != nil {
		return View{}, err
	}
	v := View{
		Anchor:  b.anchor,
		Kind:    b.kind,
		Group:   b.chartGroup,
		Title:   b.title,
		Width:   b.width,
		Height:  b.height,
		Rows:    b.Data(),
		Filters: b.Filters(),
	}
	if b.prepare != nil {
		if err := b.prepare(&v); err != nil {
			return View{}, err
		}
	}
	return v, nil
}

// Render draws the chart from scratch.
func (b *Base) Render() error {
	return b.draw("render")
}

// Redraw draws the chart from freshly pulled data.
func (b *Base) Redraw() error {
	return b.draw("redraw")
}

func (b *Base) draw(pass string) error {
	v, err := b.View()
	if err != nil {
		return err
	}
	b.log.Debug(pass, logger.Fields{"chart": b.anchor, "rows": len(v.Rows)})
	if b.renderer == nil {
		return nil
	}
	return b.renderer.Render(v)
}
