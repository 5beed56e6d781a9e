package filters

// Set is the ordered collection of a chart's active predicates. A record passes the set when
// any predicate matches it. Order only matters for toggle bookkeeping.
type Set struct {
	active []Filter
}

// NewSet returns an empty filter set.
func NewSet() *Set {
	return &Set{}
}

// Len returns the number of active predicates.
func (s *Set) Len() int {
	return len(s.active)
}

// First returns the first active predicate, or nil when the set is empty.
func (s *Set) First() Filter {
	if len(s.active) == 0 {
		return nil
	}
	return s.active[0]
}

// All returns a copy of the active predicates in insertion order.
func (s *Set) All() []Filter {
	return append([]Filter(nil), s.active...)
}

// Has reports whether f is active. A nil f asks whether any predicate is active.
func (s *Set) Has(f Filter) bool {
	if f == nil {
		return len(s.active) > 0
	}
	return s.indexOf(f) >= 0
}

// Toggle adds each predicate that is absent and removes each that is present.
// It reports whether the set changed.
func (s *Set) Toggle(fs ...Filter) bool {
	changed := false
	for _, f := range fs {
		if f == nil {
			continue
		}
		if i := s.indexOf(f); i >= 0 {
			s.active = append(s.active[:i], s.active[i+1:]...)
		} else {
			s.active = append(s.active, f)
		}
		changed = true
	}
	return changed
}

// Reset empties the set.
func (s *Set) Reset() {
	s.active = nil
}

// Replace resets the set and toggles fs in one step.
func (s *Set) Replace(fs ...Filter) {
	s.Reset()
	s.Toggle(fs...)
}

// Matches reports whether v passes any active predicate. An empty set matches everything.
func (s *Set) Matches(v any) bool {
	if len(s.active) == 0 {
		return true
	}
	return matchAny(s.active, v)
}

func (s *Set) indexOf(f Filter) int {
	for i, a := range s.active {
		if a.Equal(f) {
			return i
		}
	}
	return -1
}

func matchAny(fs []Filter, v any) bool {
	for _, f := range fs {
		if f.IsFiltered(v) {
			return true
		}
	}
	return false
}
