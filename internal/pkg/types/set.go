// Package types holds small generic containers shared across the module.
package types

import (
	"iter"
	"maps"
	"slices"
)

// Set is a generic hash set for comparable types, backed by a
// map[T]struct{}. It is mutable: Add and Delete modify the set in place.
type Set[T comparable] map[T]struct{}

// NewSet creates a Set holding the provided elements.
func NewSet[T comparable](elems ...T) Set[T] {
	s := make(Set[T], len(elems))
	s.Add(elems...)
	return s
}

// Add inserts the elements into the set.
func (s Set[T]) Add(elems ...T) {
	for _, e := range elems {
		s[e] = struct{}{}
	}
}

// Delete removes the elements from the set, ignoring absent ones.
func (s Set[T]) Delete(elems ...T) {
	for _, e := range elems {
		delete(s, e)
	}
}

// Contains reports whether the element is in the set.
func (s Set[T]) Contains(e T) bool {
	_, ok := s[e]
	return ok
}

// Len returns the number of elements in the set.
func (s Set[T]) Len() int {
	return len(s)
}

// Clone returns an independent copy of the set.
func (s Set[T]) Clone() Set[T] {
	return Set[T](maps.Clone(map[T]struct{}(s)))
}

// ToSlice returns the elements as a slice in unspecified order.
// It returns nil for an empty set.
func (s Set[T]) ToSlice() []T {
	return slices.Collect(maps.Keys(s))
}

// ToIter returns an iterator over the elements in unspecified order.
func (s Set[T]) ToIter() iter.Seq[T] {
	return maps.Keys(s)
}
