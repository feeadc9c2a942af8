package ecs

import (
	"reflect"
	"sort"
)

type byTypeName []reflect.Type

func (a byTypeName) Len() int           { return len(a) }
func (a byTypeName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool { return a[i].String() < a[j].String() }

// ComponentRegistry holds the descriptors of the component types a Storage
// may pool. Each Storage is handed its registry explicitly, so independent
// worlds never share type state.
type ComponentRegistry struct {
	descriptors map[reflect.Type]TypeDescriptor
}

// NewComponentRegistry creates an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		descriptors: make(map[reflect.Type]TypeDescriptor),
	}
}

// RegisterComponent registers T with the registry. Registering the same type
// twice keeps the first descriptor.
func RegisterComponent[T any](r *ComponentRegistry) TypeDescriptor {
	desc := Describe[T]()
	if existing, ok := r.descriptors[desc.Type()]; ok {
		return existing
	}
	r.descriptors[desc.Type()] = desc
	return desc
}

// Descriptor returns the descriptor registered for t.
func (r *ComponentRegistry) Descriptor(t reflect.Type) (TypeDescriptor, bool) {
	desc, ok := r.descriptors[t]
	return desc, ok
}

// Types returns every registered type ordered by name.
func (r *ComponentRegistry) Types() []reflect.Type {
	types := make([]reflect.Type, 0, len(r.descriptors))
	for t := range r.descriptors {
		types = append(types, t)
	}
	sort.Sort(byTypeName(types))
	return types
}
