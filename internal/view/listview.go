package view

import "sync"

// ListView holds the latest rendering of one list. Loads are numbered when
// they start; a result is applied only if no newer load has been applied
// already, so a slow early load never overwrites a fast later one.
type ListView[T any] struct {
	mu      sync.Mutex
	next    uint64
	applied uint64
	value   T
	loaded  bool
	loading int
}

// Begin starts a load and returns its generation.
func (v *ListView[T]) Begin() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.next++
	v.loading++
	return v.next
}

// Apply stores value for generation gen. It reports false, and changes
// nothing, when a newer generation is already shown.
func (v *ListView[T]) Apply(gen uint64, value T) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.loading > 0 {
		v.loading--
	}
	if gen <= v.applied {
		return false
	}
	v.applied = gen
	v.value = value
	v.loaded = true
	return true
}

// Get returns the current value and whether any load has completed.
func (v *ListView[T]) Get() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value, v.loaded
}

// Loading reports whether a load is outstanding.
func (v *ListView[T]) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading > 0
}

// Generation returns the generation currently shown.
func (v *ListView[T]) Generation() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.applied
}

// Abandon ends a load that produced nothing to show, keeping the current
// value.
func (v *ListView[T]) Abandon(gen uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.loading > 0 {
		v.loading--
	}
}
