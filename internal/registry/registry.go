// Package registry keeps charts in named groups and broadcasts render, redraw, filterAll and
// refocus operations to every chart of a group in registration order.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"chartsync/internal/logger"
)

// DefaultGroup is the group charts join when none is named.
const DefaultGroup = "__default_chart_group__"

// Chart is the handle a registry broadcasts to.
type Chart interface {
	AnchorName() string
	FilterAll()
	Render() error
	Redraw() error
}

// Refocuser is implemented by charts with a zoomable focus.
type Refocuser interface {
	Refocus()
}

// Registry maps group names to ordered chart lists.
type Registry struct {
	mu        sync.RWMutex
	groups    map[string][]Chart
	order     []string
	renderlet func(group string)
	log       *logger.Logger
}

// Default is the process-wide registry.
var Default = New()

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		groups: make(map[string][]Chart),
		log:    logger.GetGlobalLogger().WithComponent("registry"),
	}
}

func groupName(group []string) string {
	if len(group) == 0 || group[0] == "" {
		return DefaultGroup
	}
	return group[0]
}

// Register adds chart to group. Re-registering an anchor replaces its handle in place.
func (r *Registry) Register(chart Chart, group ...string) {
	name := groupName(group)

	r.mu.Lock()
	defer r.mu.Unlock()

	charts, ok := r.groups[name]
	if !ok {
		r.order = append(r.order, name)
	}
	for i, c := range charts {
		if c.AnchorName() == chart.AnchorName() {
			charts[i] = chart
			return
		}
	}
	r.groups[name] = append(charts, chart)
}

// Deregister removes the chart with the same anchor name from group. Absent charts are ignored.
func (r *Registry) Deregister(chart Chart, group ...string) {
	name := groupName(group)

	r.mu.Lock()
	defer r.mu.Unlock()

	charts := r.groups[name]
	for i, c := range charts {
		if c.AnchorName() == chart.AnchorName() {
			r.groups[name] = append(charts[:i:i], charts[i+1:]...)
			return
		}
	}
}

// Has reports whether a chart with the same anchor name is registered in any group.
func (r *Registry) Has(chart Chart) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, charts := range r.groups {
		for _, c := range charts {
			if c.AnchorName() == chart.AnchorName() {
				return true
			}
		}
	}
	return false
}

// DeregisterAll empties group, or every group when none is given.
func (r *Registry) DeregisterAll(group ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(group) == 0 {
		r.groups = make(map[string][]Chart)
		r.order = nil
		return
	}
	delete(r.groups, groupName(group))
	for i, name := range r.order {
		if name == groupName(group) {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
}

// Charts returns a snapshot of group's charts in registration order.
func (r *Registry) Charts(group ...string) []Chart {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Chart(nil), r.groups[groupName(group)]...)
}

// Groups returns the known group names in creation order.
func (r *Registry) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Lookup finds a chart by anchor name across all groups.
func (r *Registry) Lookup(anchor string) (Chart, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		for _, c := range r.groups[name] {
			if c.AnchorName() == anchor {
				return c, name, true
			}
		}
	}
	return nil, "", false
}

// SetRenderlet installs a callback run after RenderAll and RedrawAll.
func (r *Registry) SetRenderlet(fn func(group string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderlet = fn
}

// FilterAll resets the filters of every chart in group.
func (r *Registry) FilterAll(group ...string) {
	for _, c := range r.Charts(group...) {
		c.FilterAll()
	}
}

// RefocusAll restores the focus of every zoomable chart in group.
func (r *Registry) RefocusAll(group ...string) {
	for _, c := range r.Charts(group...) {
		if f, ok := c.(Refocuser); ok {
			f.Refocus()
		}
	}
}

// RenderAll renders every chart in group. A failing chart does not stop the others.
func (r *Registry) RenderAll(group ...string) error {
	return r.broadcast("render", groupName(group), Chart.Render)
}

// RedrawAll redraws every chart in group. A failing chart does not stop the others.
func (r *Registry) RedrawAll(group ...string) error {
	return r.broadcast("redraw", groupName(group), Chart.Redraw)
}

func (r *Registry) broadcast(op, group string, fn func(Chart) error) error {
	var errs []error
	for _, c := range r.Charts(group) {
		if err := fn(c); err != nil {
			r.log.Error(op+" failed", err, logger.Fields{"group": group, "chart": c.AnchorName()})
			errs = append(errs, fmt.Errorf("%s %s: %w", op, c.AnchorName(), err))
		}
	}

	r.mu.RLock()
	renderlet := r.renderlet
	r.mu.RUnlock()
	if renderlet != nil {
		renderlet(group)
	}
	return errors.Join(errs...)
}
