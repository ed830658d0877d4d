package registry

import "sort"

// TypeSet is an immutable set of operator types.
type TypeSet struct {
	types map[string]struct{}
}

// NewTypeSet creates a set holding the given operator types.
func NewTypeSet(types ...string) TypeSet {
	s := TypeSet{types: make(map[string]struct{}, len(types))}
	for _, t := range types {
		s.types[t] = struct{}{}
	}
	return s
}

// Contains reports whether opType is in the set.
func (s TypeSet) Contains(opType string) bool {
	_, ok := s.types[opType]
	return ok
}

// Len returns the number of types in the set.
func (s TypeSet) Len() int {
	return len(s.types)
}

// Sorted returns the types in lexical order.
func (s TypeSet) Sorted() []string {
	out := make([]string, 0, len(s.types))
	for t := range s.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
