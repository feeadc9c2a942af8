package ecs

import (
	"iter"
	"reflect"
)

// Components gives typed access to the pool of one component type. Declare
// it as a field of a System and the Scheduler binds it on Register.
type Components[T any] struct {
	storage *Storage
	pool    *ObjectPool
}

// NewComponents creates an accessor for T bound to storage.
func NewComponents[T any](storage *Storage) *Components[T] {
	c := &Components[T]{}
	c.Init(storage)
	return c
}

// Init binds the accessor to storage. Called by the Scheduler during system
// registration.
func (c *Components[T]) Init(storage *Storage) {
	c.storage = storage
	c.pool = nil
}

// resolve finds the pool lazily, since it may not exist until the first
// component of T is added, and drops it again once the storage frees it.
func (c *Components[T]) resolve() *ObjectPool {
	if c.pool != nil && !c.pool.IsLoaded() {
		c.pool = nil
	}
	if c.pool == nil && c.storage != nil {
		if pool, ok := c.storage.pools[reflect.TypeFor[T]()]; ok {
			c.pool = pool
		}
	}
	return c.pool
}

// Get returns the component of id, or nil if it has none.
func (c *Components[T]) Get(id EntityId) *T {
	pool := c.resolve()
	if pool == nil || !pool.IsValid(id) {
		return nil
	}
	comp, err := GetData[T](pool, id)
	if err != nil {
		return nil
	}
	return comp
}

// Has reports whether id holds a component of type T.
func (c *Components[T]) Has(id EntityId) bool {
	pool := c.resolve()
	return pool != nil && pool.IsValid(id)
}

// Len returns the number of entities holding a T.
func (c *Components[T]) Len() int {
	pool := c.resolve()
	if pool == nil {
		return 0
	}
	return pool.Len()
}

// Iter yields every entity holding a T with a pointer to its component.
// Structural changes during iteration must go through Commands.
func (c *Components[T]) Iter() iter.Seq2[EntityId, *T] {
	return func(yield func(EntityId, *T) bool) {
		pool := c.resolve()
		if pool == nil {
			return
		}
		for id, raw := range pool.Iter() {
			if !yield(id, raw.(*T)) {
				return
			}
		}
	}
}
