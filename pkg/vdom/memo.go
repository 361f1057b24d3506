package vdom

import "reflect"

// Cache holds a value computed from a list of dependencies and recomputes
// it only when the dependencies change. The zero Cache is ready to use.
//
//	var filtered vdom.Cache[[]string]
//	items := filtered.Get(func() []string { return filter(all, q) }, len(all), q)
type Cache[T any] struct {
	deps []any
	val  T
	has  bool
}

// Get returns the cached value, calling fn first if this is the first call
// or any dependency differs from the previous call.
func (c *Cache[T]) Get(fn func() T, deps ...any) T {
	if !c.has || !shallowEqual(c.deps, deps) {
		c.val = fn()
		c.deps = append(c.deps[:0], deps...)
		c.has = true
	}
	return c.val
}

// Reset drops the cached value.
func (c *Cache[T]) Reset() {
	var zero T
	c.val = zero
	c.deps = nil
	c.has = false
}

func shallowEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
