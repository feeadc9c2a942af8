package ecs

// EntityId is an opaque handle issued by an IdSource. Zero is never a live id.
type EntityId uint64

// InvalidEntityId is returned wherever an id could not be produced.
const InvalidEntityId EntityId = 0

// Identifier is satisfied by every id type a SparseIndex can key on.
type Identifier interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}
