// Package dashboard assembles charts from a layout and serializes every interaction with
// them behind one lock, the way a browser's UI thread would.
package dashboard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"chartsync/internal/capping"
	"chartsync/internal/charts"
	"chartsync/internal/crossfilter"
	"chartsync/internal/crossfilter/remote"
	"chartsync/internal/events"
	"chartsync/internal/filters"
	"chartsync/internal/logger"
	"chartsync/internal/models"
	"chartsync/internal/registry"
	"chartsync/internal/storage"
)

var (
	// ErrUnknownChart is returned for anchors the layout does not declare
	ErrUnknownChart = errors.New("unknown chart")
	// ErrUnknownGroup is returned for chart groups with no charts
	ErrUnknownGroup = errors.New("unknown chart group")
	// ErrUnsupported is returned when a gesture does not apply to a chart kind
	ErrUnsupported = errors.New("operation not supported by chart")
	// ErrNoStorage is returned by snapshot operations when no store is configured
	ErrNoStorage = errors.New("snapshot storage is not configured")
)

// Chart is the surface every chart kind exposes to the dashboard
type Chart interface {
	registry.Chart
	Kind() string
	ChartGroup() string
	View() (charts.View, error)
	Data() []capping.Row
	Filters() []filters.Filter
	Filter(f filters.Filter)
	FilterBatch(fs ...filters.Filter)
	ReplaceFilter(fs ...filters.Filter)
	OnClick(row capping.Row)
}

// Options configures a dashboard
type Options struct {
	Layout *models.Layout

	// Records feed the in-memory engine. Remote, when set, replaces it.
	Records []crossfilter.Record
	Remote  *remote.Engine

	Renderer charts.Renderer
	Storage  storage.StorageClient

	// EventDelay overrides the layout's debounce delay when positive
	EventDelay time.Duration
}

// Dashboard owns the charts of one layout
type Dashboard struct {
	mu sync.Mutex

	layout   *models.Layout
	cf       *crossfilter.Crossfilter
	registry *registry.Registry
	events   *events.Engine
	delay    time.Duration
	store    storage.StorageClient
	log      *logger.Logger

	charts map[string]Chart
	order  []string
}

// New builds every chart the layout declares. Charts are not rendered until Render.
func New(opts Options) (*Dashboard, error) {
	if opts.Layout == nil {
		return nil, fmt.Errorf("dashboard needs a layout")
	}
	if err := opts.Layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	d := &Dashboard{
		layout:   opts.Layout,
		registry: registry.New(),
		delay:    opts.Layout.EventDelay(),
		store:    opts.Storage,
		log:      logger.GetGlobalLogger().WithComponent("dashboard"),
		charts:   make(map[string]Chart),
	}
	if opts.EventDelay > 0 {
		d.delay = opts.EventDelay
	}
	d.events = events.New(&d.mu)
	if opts.Remote == nil {
		d.cf = crossfilter.New(opts.Records)
	}

	b := builder{d: d, remote: opts.Remote, renderer: opts.Renderer}
	if err := b.build(); err != nil {
		return nil, err
	}

	d.registry.SetRenderlet(func(group string) {
		d.log.Debug("group drawn", logger.Fields{"group": group})
	})
	d.log.Info("Dashboard built", logger.Fields{"title": d.layout.Title, "charts": len(d.order), "groups": len(d.registry.Groups())})
	return d, nil
}

// Layout returns the layout the dashboard was built from
func (d *Dashboard) Layout() *models.Layout { return d.layout }

// Do runs fn while holding the dashboard lock
func (d *Dashboard) Do(fn func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn()
}

// Anchors lists chart anchors in layout order
func (d *Dashboard) Anchors() []string {
	return append([]string(nil), d.order...)
}

// Groups lists chart group names in creation order
func (d *Dashboard) Groups() []string {
	return d.registry.Groups()
}

// Chart looks up a chart by anchor. Callers touching its state must go through Do.
func (d *Dashboard) Chart(anchor string) (Chart, error) {
	c, ok := d.charts[anchor]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChart, anchor)
	}
	return c, nil
}

// View returns the current view of one chart
func (d *Dashboard) View(anchor string) (charts.View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, err := d.Chart(anchor)
	if err != nil {
		return charts.View{}, err
	}
	return c.View()
}

// Render draws every chart of every group
func (d *Dashboard) Render() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	for _, group := range d.registry.Groups() {
		if err := d.registry.RenderAll(group); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Flush runs a pending debounced redraw now
func (d *Dashboard) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events.Flush()
}

// Pending reports whether a debounced redraw is waiting
func (d *Dashboard) Pending() bool {
	return d.events.Pending()
}

// Close drops any pending redraw and closes the snapshot store
func (d *Dashboard) Close() error {
	d.events.Cancel()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Size returns the number of records the in-memory engine holds, or 0 for remote data
func (d *Dashboard) Size() int {
	if d.cf == nil {
		return 0
	}
	return d.cf.Size()
}

// AddRecords appends records and redraws every group
func (d *Dashboard) AddRecords(records ...crossfilter.Record) error {
	if d.cf == nil {
		return fmt.Errorf("%w: records live in the remote engine", ErrUnsupported)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cf.Add(records...)
	return d.redrawAll()
}

// scheduleRedraw asks the events engine for one coordinated redraw of group
func (d *Dashboard) scheduleRedraw(group string) {
	d.events.Trigger(func() {
		_ = d.registry.RedrawAll(group)
	}, d.delay)
}

func (d *Dashboard) redrawAll() error {
	var errs []error
	for _, group := range d.registry.Groups() {
		if err := d.registry.RedrawAll(group); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// resolveGroup maps "" and "default" to the default group and checks the group exists
func (d *Dashboard) resolveGroup(name string) (string, error) {
	if name == "" || name == "default" {
		name = registry.DefaultGroup
	}
	for _, g := range d.registry.Groups() {
		if g == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownGroup, name)
}

// Summary describes a chart without pulling its data
type Summary struct {
	Anchor  string         `json:"anchor"`
	Kind    string         `json:"kind"`
	Group   string         `json:"group"`
	Title   string         `json:"title,omitempty"`
	Filters []filters.Wire `json:"filters"`
}

// Summaries describes every chart in layout order
func (d *Dashboard) Summaries() ([]Summary, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Summary, 0, len(d.order))
	for i, anchor := range d.order {
		c := d.charts[anchor]
		wires, err := Wires(c.Filters())
		if err != nil {
			return nil, fmt.Errorf("chart %s: %w", anchor, err)
		}
		out = append(out, Summary{
			Anchor:  anchor,
			Kind:    c.Kind(),
			Group:   c.ChartGroup(),
			Title:   d.layout.Charts[i].Title,
			Filters: wires,
		})
	}
	return out, nil
}

// Wires converts filters to their JSON form
func Wires(fs []filters.Filter) ([]filters.Wire, error) {
	wires := make([]filters.Wire, 0, len(fs))
	for _, f := range fs {
		w, err := filters.ToWire(f)
		if err != nil {
			return nil, err
		}
		wires = append(wires, w)
	}
	return wires, nil
}
