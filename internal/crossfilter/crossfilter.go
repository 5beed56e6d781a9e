// Package crossfilter is an in-memory dimensional aggregation engine. Records are projected
// onto dimensions; groups aggregate records by dimension key and observe the filters of every
// dimension except their own.
package crossfilter

import (
	"sort"
	"sync"

	"chartsync/internal/values"
)

// Record is one input row, keyed by field name.
type Record map[string]any

// Row is one aggregated group bucket.
type Row struct {
	Key   any     `json:"key"`
	Value float64 `json:"value"`
}

// Group is the read side of an aggregation consumed by charts.
type Group interface {
	All() []Row
	Top(n int) []Row
	Order(fn func(Row) any)
}

// Crossfilter holds the records and their dimensions.
type Crossfilter struct {
	mu         sync.RWMutex
	records    []Record
	dimensions []*Dimension
}

// New creates an engine over records.
func New(records []Record) *Crossfilter {
	return &Crossfilter{records: append([]Record(nil), records...)}
}

// Add appends records. Existing filters apply to them immediately.
func (cf *Crossfilter) Add(records ...Record) {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	cf.records = append(cf.records, records...)
}

// Size returns the number of records.
func (cf *Crossfilter) Size() int {
	cf.mu.RLock()
	defer cf.mu.RUnlock()
	return len(cf.records)
}

// AllFiltered returns the records passing every dimension's filter.
func (cf *Crossfilter) AllFiltered() []Record {
	cf.mu.RLock()
	defer cf.mu.RUnlock()

	var out []Record
	for _, r := range cf.records {
		if cf.passes(r, nil) {
			out = append(out, r)
		}
	}
	return out
}

// Dimension projects each record to a key.
func (cf *Crossfilter) Dimension(key func(Record) any) *Dimension {
	cf.mu.Lock()
	defer cf.mu.Unlock()

	d := &Dimension{cf: cf, key: key}
	cf.dimensions = append(cf.dimensions, d)
	return d
}

// FieldDimension is a dimension keyed by a record field.
func (cf *Crossfilter) FieldDimension(field string) *Dimension {
	return cf.Dimension(func(r Record) any { return r[field] })
}

// passes reports whether r passes every dimension filter except skip's. Caller holds mu.
func (cf *Crossfilter) passes(r Record, skip *Dimension) bool {
	for _, d := range cf.dimensions {
		if d == skip || d.match == nil {
			continue
		}
		if !d.match(d.key(r)) {
			return false
		}
	}
	return true
}

// Dimension is a filterable projection of the records.
type Dimension struct {
	cf    *Crossfilter
	key   func(Record) any
	match func(key any) bool
}

func (d *Dimension) setMatch(fn func(any) bool) {
	d.cf.mu.Lock()
	defer d.cf.mu.Unlock()
	d.match = fn
}

// FilterAll clears the dimension's filter.
func (d *Dimension) FilterAll() {
	d.setMatch(nil)
}

// FilterExact keeps records whose key equals v.
func (d *Dimension) FilterExact(v any) {
	d.setMatch(func(k any) bool { return values.Equal(k, v) })
}

// FilterRange keeps records with low <= key < high.
func (d *Dimension) FilterRange(low, high any) {
	d.setMatch(func(k any) bool {
		return values.Compare(k, low) >= 0 && values.Compare(k, high) < 0
	})
}

// FilterFunction keeps records whose key satisfies fn.
func (d *Dimension) FilterFunction(fn func(key any) bool) {
	d.setMatch(fn)
}

// HasFilter reports whether the dimension currently filters records.
func (d *Dimension) HasFilter() bool {
	d.cf.mu.RLock()
	defer d.cf.mu.RUnlock()
	return d.match != nil
}

// Bottom returns up to n records passing all filters, ordered by ascending key.
func (d *Dimension) Bottom(n int) []Record {
	d.cf.mu.RLock()
	defer d.cf.mu.RUnlock()

	var out []Record
	for _, r := range d.cf.records {
		if d.cf.passes(r, nil) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return values.Less(d.key(out[i]), d.key(out[j]))
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Group buckets records by this dimension's key and counts them.
func (d *Dimension) Group() *DimensionGroup {
	return d.GroupBy(nil)
}

// GroupBy buckets records by keyFn applied to the dimension key; nil keeps the key.
func (d *Dimension) GroupBy(keyFn func(any) any) *DimensionGroup {
	return &DimensionGroup{dim: d, keyFn: keyFn, reduce: count}
}

func count(Record) float64 { return 1 }

// DimensionGroup aggregates one dimension.
type DimensionGroup struct {
	dim      *Dimension
	keyFn    func(any) any
	reduce   func(Record) float64
	ordering func(Row) any
}

// ReduceCount counts records per bucket. This is the default.
func (g *DimensionGroup) ReduceCount() *DimensionGroup {
	g.reduce = count
	return g
}

// ReduceSum sums value over records per bucket.
func (g *DimensionGroup) ReduceSum(value func(Record) float64) *DimensionGroup {
	g.reduce = value
	return g
}

// ReduceSumField sums a numeric record field per bucket.
func (g *DimensionGroup) ReduceSumField(field string) *DimensionGroup {
	return g.ReduceSum(func(r Record) float64 {
		f, ok := values.ToFloat(r[field])
		if !ok {
			return 0
		}
		return f
	})
}

// Order sets the value Top sorts by, descending.
func (g *DimensionGroup) Order(fn func(Row) any) {
	g.ordering = fn
}

// All returns every bucket in ascending key order. Buckets whose records are all filtered
// out are kept with a zero value.
func (g *DimensionGroup) All() []Row {
	cf := g.dim.cf
	cf.mu.RLock()
	defer cf.mu.RUnlock()

	index := make(map[string]int)
	var rows []Row
	for _, r := range cf.records {
		key := g.dim.key(r)
		if g.keyFn != nil {
			key = g.keyFn(key)
		}
		k := values.Key(key)
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, Row{Key: key})
		}
		if cf.passes(r, g.dim) {
			rows[i].Value += g.reduce(r)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return values.Less(rows[i].Key, rows[j].Key)
	})
	return rows
}

// Top returns the n buckets with the greatest ordering value (default: value).
func (g *DimensionGroup) Top(n int) []Row {
	rows := g.All()
	ordering := g.ordering
	if ordering == nil {
		ordering = func(r Row) any { return r.Value }
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return values.Less(ordering(rows[j]), ordering(rows[i]))
	})
	if n >= 0 && n < len(rows) {
		rows = rows[:n]
	}
	return rows
}

// Size returns the number of buckets.
func (g *DimensionGroup) Size() int {
	return len(g.All())
}
