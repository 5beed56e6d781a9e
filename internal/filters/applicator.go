package filters

// Dimension is the part of the aggregation engine a filter set is applied to.
type Dimension interface {
	FilterAll()
	FilterExact(v any)
	FilterRange(low, high any)
	FilterFunction(fn func(key any) bool)
}

// PredicateDimension is implemented by dimensions that take the predicates themselves
// instead of a function, e.g. engines that evaluate filters out of process.
type PredicateDimension interface {
	FilterPredicates(fs []Filter)
}

// Apply pushes fs into dim with exactly one dimension call, picking the cheapest native
// filter that is still correct: clear, exact, range, or an OR-matching function.
func Apply(dim Dimension, fs []Filter) {
	if pd, ok := dim.(PredicateDimension); ok {
		pd.FilterPredicates(append([]Filter(nil), fs...))
		return
	}

	if len(fs) == 0 {
		dim.FilterAll()
		return
	}
	if len(fs) == 1 {
		switch f := fs[0].(type) {
		case Exact:
			dim.FilterExact(f.Value)
			return
		case Ranged:
			dim.FilterRange(f.Low, f.High)
			return
		}
	}

	active := append([]Filter(nil), fs...)
	dim.FilterFunction(func(key any) bool {
		return matchAny(active, key)
	})
}
