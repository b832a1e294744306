package routes

import "github.com/nao1215/sitecheck/internal/model"

// Set is an insertion-ordered set of routes.
type Set struct {
	order   []model.Route
	members map[model.Route]struct{}
}

// NewSet creates a set holding routes.
func NewSet(routes ...model.Route) *Set {
	s := &Set{members: make(map[model.Route]struct{})}
	for _, r := range routes {
		s.Add(r)
	}
	return s
}

// Add inserts r. Re-adding an existing route keeps its first position.
func (s *Set) Add(r model.Route) {
	if _, ok := s.members[r]; ok {
		return
	}
	s.members[r] = struct{}{}
	s.order = append(s.order, r)
}

// Has reports whether r is in the set.
func (s *Set) Has(r model.Route) bool {
	_, ok := s.members[r]
	return ok
}

// Len returns the number of routes.
func (s *Set) Len() int {
	return len(s.order)
}

// Routes returns the routes in insertion order.
func (s *Set) Routes() []model.Route {
	out := make([]model.Route, len(s.order))
	copy(out, s.order)
	return out
}

// Minus returns the routes of s absent from other, in s's order.
func (s *Set) Minus(other *Set) []model.Route {
	out := make([]model.Route, 0)
	for _, r := range s.order {
		if !other.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Equal reports whether both sets hold the same routes.
func (s *Set) Equal(other *Set) bool {
	return s.Len() == other.Len() && len(s.Minus(other)) == 0
}
