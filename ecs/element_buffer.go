package ecs

import "github.com/pkg/errors"

// ElementBuffer is fixed-capacity, type-erased storage for the elements of
// one pool. Slots are addressed directly; the buffer has no notion of which
// slots are live.
type ElementBuffer interface {
	// SetRaw writes src into slot. src may be a T, a *T, or nil for the zero value.
	SetRaw(slot uint32, src any) error
	// GetRaw returns a *T pointing into the buffer, or nil for an out-of-range slot.
	GetRaw(slot uint32) any
	// Move copies the element at src over dst.
	Move(dst, src uint32)
	// Zero resets slot to the zero value.
	Zero(slot uint32)
	Cap() int
}

// typedBuffer is the ElementBuffer for elements of type T.
type typedBuffer[T any] struct {
	items []T
}

func newTypedBuffer[T any](max int) *typedBuffer[T] {
	return &typedBuffer[T]{items: make([]T, max)}
}

func (b *typedBuffer[T]) SetRaw(slot uint32, src any) error {
	if int(slot) >= len(b.items) {
		return errors.Wrapf(ErrCapacityExceeded, "slot %d of %d", slot, len(b.items))
	}

	var value T
	switch v := src.(type) {
	case nil:
	case T:
		value = v
	case *T:
		if v != nil {
			value = *v
		}
	default:
		return errors.Wrapf(ErrTypeMismatch, "cannot store %T in buffer of %T", src, value)
	}

	b.items[slot] = value
	return nil
}

func (b *typedBuffer[T]) GetRaw(slot uint32) any {
	if int(slot) >= len(b.items) {
		return nil
	}
	return &b.items[slot]
}

func (b *typedBuffer[T]) Move(dst, src uint32) {
	b.items[dst] = b.items[src]
}

func (b *typedBuffer[T]) Zero(slot uint32) {
	var zero T
	b.items[slot] = zero
}

func (b *typedBuffer[T]) Cap() int {
	return len(b.items)
}
