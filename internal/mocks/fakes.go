package mocks

import (
	"fmt"
	"sync"

	"chartsync/internal/crossfilter"
	"chartsync/internal/values"
)

// RecordingDimension records every native filter call it receives
type RecordingDimension struct {
	mu    sync.Mutex
	Calls []string
	match func(key any) bool
}

// FilterAll records a reset
func (d *RecordingDimension) FilterAll() {
	d.record("all", nil)
}

// FilterExact records an exact filter
func (d *RecordingDimension) FilterExact(v any) {
	d.record(fmt.Sprintf("exact(%v)", v), func(k any) bool { return values.Equal(k, v) })
}

// FilterRange records a range filter
func (d *RecordingDimension) FilterRange(low, high any) {
	d.record(fmt.Sprintf("range(%v,%v)", low, high), func(k any) bool {
		return values.Compare(k, low) >= 0 && values.Compare(k, high) < 0
	})
}

// FilterFunction records a function filter
func (d *RecordingDimension) FilterFunction(fn func(key any) bool) {
	d.record("function", fn)
}

func (d *RecordingDimension) record(call string, match func(any) bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls = append(d.Calls, call)
	d.match = match
}

// Matches reports whether key passes the last applied filter
func (d *RecordingDimension) Matches(key any) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.match == nil || d.match(key)
}

// CallCount returns the number of native calls received
func (d *RecordingDimension) CallCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Calls)
}

// LastCall returns the most recent native call, or ""
func (d *RecordingDimension) LastCall() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Calls) == 0 {
		return ""
	}
	return d.Calls[len(d.Calls)-1]
}

// Reset forgets recorded calls
func (d *RecordingDimension) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls = nil
}

// StaticGroup serves fixed rows
type StaticGroup struct {
	Rows     []crossfilter.Row
	ordering func(crossfilter.Row) any
}

// NewStaticGroup builds a group from alternating key, value pairs
func NewStaticGroup(pairs ...any) *StaticGroup {
	g := &StaticGroup{}
	for i := 0; i+1 < len(pairs); i += 2 {
		v, _ := values.ToFloat(pairs[i+1])
		g.Rows = append(g.Rows, crossfilter.Row{Key: pairs[i], Value: v})
	}
	return g
}

// All returns a copy of the rows
func (g *StaticGroup) All() []crossfilter.Row {
	return append([]crossfilter.Row(nil), g.Rows...)
}

// Top returns the first n rows by ordering, descending
func (g *StaticGroup) Top(n int) []crossfilter.Row {
	rows := g.All()
	ordering := g.ordering
	if ordering == nil {
		ordering = func(r crossfilter.Row) any { return r.Value }
	}
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && values.Less(ordering(rows[j-1]), ordering(rows[j])); j-- {
			rows[j-1], rows[j] = rows[j], rows[j-1]
		}
	}
	if n >= 0 && n < len(rows) {
		rows = rows[:n]
	}
	return rows
}

// Order sets the Top ordering
func (g *StaticGroup) Order(fn func(crossfilter.Row) any) {
	g.ordering = fn
}

// RecordingChart is a registry handle that records the operations broadcast to it
type RecordingChart struct {
	Anchor    string
	Log       *[]string
	RenderErr error
}

// NewRecordingChart creates a chart handle appending to log
func NewRecordingChart(anchor string, log *[]string) *RecordingChart {
	return &RecordingChart{Anchor: anchor, Log: log}
}

func (c *RecordingChart) AnchorName() string { return c.Anchor }

func (c *RecordingChart) FilterAll() { c.append("filterAll") }

func (c *RecordingChart) Render() error {
	c.append("render")
	return c.RenderErr
}

func (c *RecordingChart) Redraw() error {
	c.append("redraw")
	return nil
}

func (c *RecordingChart) Refocus() { c.append("refocus") }

func (c *RecordingChart) append(op string) {
	if c.Log != nil {
		*c.Log = append(*c.Log, op+":"+c.Anchor)
	}
}
