// Package filters holds the filter predicates a chart can activate, the per-chart filter set,
// and the applicator that pushes a set into a dimension of the aggregation engine.
package filters

import (
	"math"

	"chartsync/internal/values"
)

// Kind tags a predicate variant for applicator dispatch and the wire codec.
type Kind int

const (
	KindExact Kind = iota
	KindRanged
	KindTwoDimensional
	KindRangedTwoDimensional
	KindHierarchy
)

// String returns the wire name of the kind
func (k Kind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindRanged:
		return "ranged"
	case KindTwoDimensional:
		return "two-dimensional"
	case KindRangedTwoDimensional:
		return "ranged-two-dimensional"
	case KindHierarchy:
		return "hierarchy"
	default:
		return "unknown"
	}
}

// Filter is an immutable predicate over dimension keys.
type Filter interface {
	// Kind returns the variant tag.
	Kind() Kind

	// IsFiltered reports whether a record with key v passes the predicate.
	IsFiltered(v any) bool

	// Equal reports whether other is the same predicate. Filter sets use it to
	// decide whether a toggle adds or removes.
	Equal(other Filter) bool
}

// Exact matches keys equal to Value.
type Exact struct {
	Value any
}

// Value wraps a plain key as an exact-match filter.
func Value(v any) Exact {
	return Exact{Value: v}
}

// Values wraps every key as an exact-match filter.
func Values(vs ...any) []Filter {
	out := make([]Filter, len(vs))
	for i, v := range vs {
		out[i] = Exact{Value: v}
	}
	return out
}

func (f Exact) Kind() Kind { return KindExact }

func (f Exact) IsFiltered(v any) bool { return values.Equal(f.Value, v) }

func (f Exact) Equal(other Filter) bool {
	o, ok := other.(Exact)
	return ok && values.Equal(f.Value, o.Value)
}

// Ranged matches Low <= key < High.
type Ranged struct {
	Low, High any
}

// NewRanged returns the half-open range [low, high).
func NewRanged(low, high any) Ranged {
	return Ranged{Low: low, High: high}
}

func (f Ranged) Kind() Kind { return KindRanged }

func (f Ranged) IsFiltered(v any) bool {
	return values.Compare(v, f.Low) >= 0 && values.Compare(v, f.High) < 0
}

func (f Ranged) Equal(other Filter) bool {
	o, ok := other.(Ranged)
	return ok && values.Equal(f.Low, o.Low) && values.Equal(f.High, o.High)
}

// TwoDimensional matches a 2-vector key equal to (X, Y).
type TwoDimensional struct {
	X, Y any

	invalid bool
}

// NewTwoDimensional builds a point filter from a 2-vector. Anything else yields a point
// that no key matches.
func NewTwoDimensional(p any) TwoDimensional {
	x, y, ok := values.Pair(p)
	if !ok {
		return TwoDimensional{invalid: true}
	}
	return TwoDimensional{X: x, Y: y}
}

// Valid reports whether the point was built from a 2-vector.
func (f TwoDimensional) Valid() bool { return !f.invalid }

func (f TwoDimensional) Kind() Kind { return KindTwoDimensional }

func (f TwoDimensional) IsFiltered(v any) bool {
	if f.invalid {
		return false
	}
	x, y, ok := values.Pair(v)
	return ok && values.Equal(x, f.X) && values.Equal(y, f.Y)
}

func (f TwoDimensional) Equal(other Filter) bool {
	o, ok := other.(TwoDimensional)
	if ok && (f.invalid || o.invalid) {
		return f.invalid == o.invalid
	}
	return ok && values.Equal(f.X, o.X) && values.Equal(f.Y, o.Y)
}

// RangedTwoDimensional matches X1 <= x < X2 and Y1 <= y < Y2. Build it with
// NewRangedTwoDimensional so the corners are normalized.
type RangedTwoDimensional struct {
	X1, Y1 any
	X2, Y2 any
	xOnly  bool
}

// NewRangedTwoDimensional normalizes two corners into a rectangle. When the corners are
// scalars the filter constrains x only.
func NewRangedTwoDimensional(p1, p2 any) RangedTwoDimensional {
	x1, y1, ok1 := values.Pair(p1)
	x2, y2, ok2 := values.Pair(p2)
	if !ok1 || !ok2 {
		return RangedTwoDimensional{
			X1: p1, Y1: math.Inf(-1),
			X2: p2, Y2: math.Inf(1),
			xOnly: true,
		}
	}
	if values.Less(x2, x1) {
		x1, x2 = x2, x1
	}
	if values.Less(y2, y1) {
		y1, y2 = y2, y1
	}
	return RangedTwoDimensional{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// XOnly reports whether the rectangle was built from scalar corners.
func (f RangedTwoDimensional) XOnly() bool { return f.xOnly }

func (f RangedTwoDimensional) Kind() Kind { return KindRangedTwoDimensional }

func (f RangedTwoDimensional) IsFiltered(v any) bool {
	x, y, ok := values.Pair(v)
	if !ok {
		x, y = v, f.Y1
	}
	return values.Compare(x, f.X1) >= 0 && values.Compare(x, f.X2) < 0 &&
		values.Compare(y, f.Y1) >= 0 && values.Compare(y, f.Y2) < 0
}

func (f RangedTwoDimensional) Equal(other Filter) bool {
	o, ok := other.(RangedTwoDimensional)
	return ok && f.xOnly == o.xOnly &&
		values.Equal(f.X1, o.X1) && values.Equal(f.Y1, o.Y1) &&
		values.Equal(f.X2, o.X2) && values.Equal(f.Y2, o.Y2)
}

// Hierarchy matches any key path that starts with Path.
type Hierarchy struct {
	Path []any
}

// NewHierarchy returns a path-prefix filter.
func NewHierarchy(path ...any) Hierarchy {
	return Hierarchy{Path: append([]any(nil), path...)}
}

func (f Hierarchy) Kind() Kind { return KindHierarchy }

func (f Hierarchy) IsFiltered(v any) bool {
	p, ok := values.Path(v)
	if !ok || len(f.Path) == 0 || len(p) < len(f.Path) {
		return false
	}
	for i := range f.Path {
		if !values.Equal(p[i], f.Path[i]) {
			return false
		}
	}
	return true
}

func (f Hierarchy) Equal(other Filter) bool {
	o, ok := other.(Hierarchy)
	return ok && values.Equal(f.Path, o.Path)
}
