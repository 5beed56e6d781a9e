// Package capping orders aggregate rows, truncates them to a cap, and folds the tail into a
// synthetic "Others" row.
package capping

import (
	"math"
	"sort"

	"chartsync/internal/values"
)

// Unlimited disables capping.
const Unlimited = math.MaxInt

// DefaultOthersLabel is the key given to the folded row.
const DefaultOthersLabel = "Others"

// Row is one aggregate row as a chart displays it. Others lists the original keys folded
// into a synthetic row and is empty for ordinary rows.
type Row struct {
	Key    any     `json:"key"`
	Value  float64 `json:"value"`
	Others []any   `json:"others,omitempty"`
}

// IsOthers reports whether the row was synthesized from folded rows.
func (r Row) IsOthers() bool {
	return len(r.Others) > 0
}

// Grouper combines the kept rows with the capped remainder.
type Grouper func(items, rest []Row, label string) []Row

// Reducer is the capping configuration of one chart.
type Reducer struct {
	// Cap is the number of rows kept. Zero keeps none, so every row folds into Others.
	// Unlimited, or any negative value, keeps everything.
	Cap int

	// TakeFront keeps the first Cap rows after ordering; otherwise the last Cap.
	TakeFront bool

	// OthersLabel is the key of the folded row.
	OthersLabel string

	// OthersGrouper folds the remainder. Nil drops it.
	OthersGrouper Grouper

	// Ordering maps a row to its sort key; rows sort ascending by it.
	Ordering func(Row) any
}

// New returns a reducer with no cap, front-taking, and Others folding enabled.
func New() *Reducer {
	return &Reducer{
		Cap:           Unlimited,
		TakeFront:     true,
		OthersLabel:   DefaultOthersLabel,
		OthersGrouper: FoldOthers,
		Ordering:      ByValueDesc,
	}
}

// ByValueDesc orders rows by descending value.
func ByValueDesc(r Row) any { return -r.Value }

// ByKey orders rows by ascending key.
func ByKey(r Row) any { return r.Key }

// FoldOthers appends one row holding the sum of rest, unless that sum is zero.
func FoldOthers(items, rest []Row, label string) []Row {
	sum := 0.0
	keys := make([]any, 0, len(rest))
	for _, r := range rest {
		sum += r.Value
		keys = append(keys, r.Key)
	}
	if sum > 0 {
		return append(items, Row{Key: label, Value: sum, Others: keys})
	}
	return items
}

// Order returns a stably sorted copy of rows.
func (r *Reducer) Order(rows []Row) []Row {
	out := append([]Row(nil), rows...)
	ordering := r.Ordering
	if ordering == nil {
		ordering = ByValueDesc
	}
	sort.SliceStable(out, func(i, j int) bool {
		return values.Less(ordering(out[i]), ordering(out[j]))
	})
	return out
}

// Data orders rows and applies the cap. The input slice is not modified.
func (r *Reducer) Data(rows []Row) []Row {
	ordered := r.Order(rows)
	if r.Cap == Unlimited || r.Cap < 0 || r.Cap >= len(ordered) {
		// nothing to cap; an empty remainder never produces an Others row
		return ordered
	}

	var items, rest []Row
	if r.TakeFront {
		items = ordered[:r.Cap:r.Cap]
		rest = ordered[r.Cap:]
	} else {
		start := len(ordered) - r.Cap
		rest = ordered[:start:start]
		items = ordered[start:]
	}

	if r.OthersGrouper == nil {
		return items
	}
	label := r.OthersLabel
	if label == "" {
		label = DefaultOthersLabel
	}
	return r.OthersGrouper(items, rest, label)
}

// Total sums the values of rows.
func Total(rows []Row) float64 {
	sum := 0.0
	for _, r := range rows {
		sum += r.Value
	}
	return sum
}
