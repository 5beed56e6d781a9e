// Package remote adapts a server-side aggregation engine to the dimension and group contracts
// charts consume. Dimensions record serialized predicates instead of running filter functions;
// groups post every dimension's predicates to the engine and decode the aggregated rows.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"chartsync/internal/crossfilter"
	"chartsync/internal/filters"
	"chartsync/internal/logger"
	"chartsync/internal/values"

	"github.com/go-resty/resty/v2"
)

// StatusError is returned when the engine answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote engine %s returned status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Query is the request body sent for one group.
type Query struct {
	Dimension string                   `json:"dimension"`
	Group     string                   `json:"group"`
	Filters   map[string][]filters.Wire `json:"filters"`
}

// Engine is a client for one remote aggregation endpoint.
type Engine struct {
	client  *resty.Client
	baseURL string
	timeout time.Duration
	log     *logger.Logger

	mu         sync.RWMutex
	dimensions map[string]*Dimension
}

// NewEngine creates an engine client rooted at baseURL.
func NewEngine(baseURL string) *Engine {
	client := resty.New()
	client.SetTimeout(10 * time.Second)
	client.SetRetryCount(2)
	client.SetRetryWaitTime(500 * time.Millisecond)

	return NewEngineWithClient(client, baseURL)
}

// NewEngineWithClient creates an engine client using an existing resty client.
func NewEngineWithClient(client *resty.Client, baseURL string) *Engine {
	return &Engine{
		client:     client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    10 * time.Second,
		log:        logger.GetGlobalLogger().WithComponent("remote"),
		dimensions: make(map[string]*Dimension),
	}
}

// Dimension returns the named dimension, creating it on first use.
func (e *Engine) Dimension(name string) *Dimension {
	e.mu.Lock()
	defer e.mu.Unlock()

	if d, ok := e.dimensions[name]; ok {
		return d
	}
	d := &Dimension{engine: e, name: name}
	e.dimensions[name] = d
	return d
}

// Group returns a group aggregating dimension under the engine-side group name.
func (e *Engine) Group(dimension, name string) *Group {
	return &Group{engine: e, dimension: dimension, name: name}
}

// filterState snapshots the predicates of every filtered dimension.
func (e *Engine) filterState() map[string][]filters.Wire {
	e.mu.RLock()
	defer e.mu.RUnlock()

	state := make(map[string][]filters.Wire)
	for name, d := range e.dimensions {
		if wires := d.Wires(); len(wires) > 0 {
			state[name] = wires
		}
	}
	return state
}

func (e *Engine) query(ctx context.Context, q Query) ([]crossfilter.Row, error) {
	url := fmt.Sprintf("%s/groups/%s", e.baseURL, q.Group)

	var rows []crossfilter.Row
	resp, err := e.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetBody(q).
		Post(url)
	if err != nil {
		return nil, fmt.Errorf("failed to query remote group %s: %w", q.Group, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
	}
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, fmt.Errorf("failed to parse remote group %s: %w", q.Group, err)
	}
	return rows, nil
}

// Dimension records the predicates applied to it.
type Dimension struct {
	engine *Engine
	name   string

	mu    sync.RWMutex
	wires []filters.Wire
}

// Name returns the engine-side dimension name.
func (d *Dimension) Name() string { return d.name }

// FilterPredicates stores the serialized predicate list.
func (d *Dimension) FilterPredicates(fs []filters.Filter) {
	wires := make([]filters.Wire, 0, len(fs))
	for _, f := range fs {
		w, err := filters.ToWire(f)
		if err != nil {
			d.engine.log.Warn("dropping unserializable filter", logger.Fields{"dimension": d.name, "kind": f.Kind().String()})
			continue
		}
		wires = append(wires, w)
	}
	d.mu.Lock()
	d.wires = wires
	d.mu.Unlock()
}

// FilterAll clears the dimension.
func (d *Dimension) FilterAll() { d.FilterPredicates(nil) }

// FilterExact records an exact predicate.
func (d *Dimension) FilterExact(v any) { d.FilterPredicates(filters.Values(v)) }

// FilterRange records a range predicate.
func (d *Dimension) FilterRange(low, high any) {
	d.FilterPredicates([]filters.Filter{filters.NewRanged(low, high)})
}

// FilterFunction cannot be sent over the wire; it clears the dimension and logs a warning.
func (d *Dimension) FilterFunction(fn func(key any) bool) {
	d.engine.log.WarnOnce("remote-function:"+d.name, "function filters are not supported by the remote engine", logger.Fields{"dimension": d.name})
	d.FilterPredicates(nil)
}

// Wires returns a copy of the recorded predicates.
func (d *Dimension) Wires() []filters.Wire {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]filters.Wire(nil), d.wires...)
}

// Group aggregates one dimension on the engine.
type Group struct {
	engine    *Engine
	dimension string
	name      string
	ordering  func(crossfilter.Row) any
}

// Fetch queries the engine with the current filter state.
func (g *Group) Fetch(ctx context.Context) ([]crossfilter.Row, error) {
	state := g.engine.filterState()
	// a group never observes its own dimension's filter
	delete(state, g.dimension)

	rows, err := g.engine.query(ctx, Query{Dimension: g.dimension, Group: g.name, Filters: state})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return values.Less(rows[i].Key, rows[j].Key) })
	return rows, nil
}

// All returns the group's rows in ascending key order. Errors are logged and yield no rows.
func (g *Group) All() []crossfilter.Row {
	ctx, cancel := context.WithTimeout(context.Background(), g.engine.timeout)
	defer cancel()

	rows, err := g.Fetch(ctx)
	if err != nil {
		g.engine.log.Error("remote group fetch failed", err, logger.Fields{"group": g.name})
		return nil
	}
	return rows
}

// Top returns the n rows with the greatest ordering value.
func (g *Group) Top(n int) []crossfilter.Row {
	rows := g.All()
	ordering := g.ordering
	if ordering == nil {
		ordering = func(r crossfilter.Row) any { return r.Value }
	}
	sort.SliceStable(rows, func(i, j int) bool { return values.Less(ordering(rows[j]), ordering(rows[i])) })
	if n >= 0 && n < len(rows) {
		rows = rows[:n]
	}
	return rows
}

// Order sets the value Top sorts by, descending.
func (g *Group) Order(fn func(crossfilter.Row) any) {
	g.ordering = fn
}
