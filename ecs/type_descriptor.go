package ecs

import "reflect"

// TypeDescriptor describes an element type well enough to allocate and
// address a buffer of it without the pool knowing the type statically.
type TypeDescriptor interface {
	Type() reflect.Type
	Name() string
	// Size is the size in bytes of one element.
	Size() uintptr
	NewBuffer(max int) ElementBuffer
}

type typeDescriptor[T any] struct {
	typ reflect.Type
}

// Describe returns the TypeDescriptor for T.
func Describe[T any]() TypeDescriptor {
	return typeDescriptor[T]{typ: reflect.TypeFor[T]()}
}

func (d typeDescriptor[T]) Type() reflect.Type { return d.typ }
func (d typeDescriptor[T]) Name() string       { return d.typ.String() }
func (d typeDescriptor[T]) Size() uintptr      { return d.typ.Size() }

func (d typeDescriptor[T]) NewBuffer(max int) ElementBuffer {
	return newTypedBuffer[T](max)
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
