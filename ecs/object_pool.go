package ecs

import (
	"iter"
	"math"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultPoolCapacity is the capacity LoadDefault allocates.
const DefaultPoolCapacity = 100

// checkCapacity rejects capacities that cannot be addressed by uint32 slots.
func checkCapacity(capacity int) error {
	if capacity <= 0 || uint64(capacity) > math.MaxUint32 {
		return errors.Wrapf(ErrInvalidCapacity, "capacity %d", capacity)
	}
	return nil
}

// ObjectPool stores up to Cap() elements of one type, addressed by EntityId.
//
// Elements are kept packed in slots [0, Len()): deleting an element moves the
// element in the last slot into its place. Pointers returned by GetDataRaw and
// GetData therefore remain valid only until the next DeleteData or Free on the
// same pool; callers must not hold them across either.
//
// A pool is owned by a single goroutine. It does no locking of its own.
type ObjectPool struct {
	elementType TypeDescriptor
	buffer      ElementBuffer
	index       *SparseIndex[EntityId]
	max         int

	ids    IdSource
	logger *log.Entry
}

// PoolOption configures an ObjectPool.
type PoolOption func(*ObjectPool)

// WithIdSource sets the source InsertData draws ids from. A nil source
// disables InsertData; ids then come only through InsertDataWithId.
func WithIdSource(ids IdSource) PoolOption {
	return func(p *ObjectPool) {
		p.ids = ids
	}
}

// WithLogger sets the entry rejected operations are logged to.
func WithLogger(logger *log.Entry) PoolOption {
	return func(p *ObjectPool) {
		p.logger = logger
	}
}

// NewObjectPool creates an unloaded pool.
func NewObjectPool(opts ...PoolOption) *ObjectPool {
	p := &ObjectPool{
		index:  NewSparseIndex[EntityId](0),
		ids:    NewSequentialIds(),
		logger: log.NewEntry(log.StandardLogger()),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load allocates room for max elements of elementType and empties the index.
// A loaded pool is freed first.
func (p *ObjectPool) Load(elementType TypeDescriptor, max int) error {
	if elementType == nil {
		return errors.WithStack(ErrUnregisteredType)
	}
	if err := checkCapacity(max); err != nil {
		return err
	}

	p.Free()
	p.elementType = elementType
	p.buffer = elementType.NewBuffer(max)
	p.index = NewSparseIndex[EntityId](max)
	p.max = max
	return nil
}

// LoadDefault loads the pool with DefaultPoolCapacity.
func (p *ObjectPool) LoadDefault(elementType TypeDescriptor) error {
	return p.Load(elementType, DefaultPoolCapacity)
}

// Free releases the buffer and returns the pool to the unloaded state.
func (p *ObjectPool) Free() {
	if p.buffer == nil {
		return
	}
	p.elementType = nil
	p.buffer = nil
	p.index.Reset()
	p.max = 0
}

// IsLoaded reports whether Load has been called since the last Free.
func (p *ObjectPool) IsLoaded() bool {
	return p.buffer != nil
}

// ElementType returns the descriptor the pool was loaded with, nil when unloaded.
func (p *ObjectPool) ElementType() TypeDescriptor {
	return p.elementType
}

// Len returns the number of live elements.
func (p *ObjectPool) Len() int {
	return p.index.Len()
}

// Cap returns the fixed capacity, zero when unloaded.
func (p *ObjectPool) Cap() int {
	return p.max
}

// IsValid reports whether id has an element in the pool.
func (p *ObjectPool) IsValid(id EntityId) bool {
	return p.index.Test(id)
}

// InsertDataWithId stores data under id. data may be a value or pointer of
// the pool's element type, or nil for the zero value.
func (p *ObjectPool) InsertDataWithId(id EntityId, data any) error {
	if !p.IsLoaded() {
		return p.reject("insert", id, errors.WithStack(ErrNotLoaded))
	}
	if id == InvalidEntityId {
		return p.reject("insert", id, errors.WithStack(ErrInvalidId))
	}
	if p.index.Test(id) {
		return p.reject("insert", id, errors.Wrapf(ErrAlreadyExists, "id %d", id))
	}
	if p.index.Len() >= p.max {
		return p.reject("insert", id, errors.Wrapf(ErrCapacityExceeded, "pool holds %d of %d", p.index.Len(), p.max))
	}

	slot, err := p.index.Insert(id)
	if err != nil {
		return p.reject("insert", id, err)
	}
	if err := p.buffer.SetRaw(slot, data); err != nil {
		// slot is the last one, so this is a pure removal
		_, _, _ = p.index.Delete(id)
		return p.reject("insert", id, err)
	}
	return nil
}

// InsertData stores data under a fresh id and returns it.
func (p *ObjectPool) InsertData(data any) (EntityId, error) {
	if !p.IsLoaded() {
		return InvalidEntityId, p.reject("insert", InvalidEntityId, errors.WithStack(ErrNotLoaded))
	}
	if p.ids == nil {
		return InvalidEntityId, p.reject("insert", InvalidEntityId, errors.WithStack(ErrNoIdSource))
	}

	id := p.ids.NextId()
	if err := p.InsertDataWithId(id, data); err != nil {
		if releaser, ok := p.ids.(IdReleaser); ok {
			releaser.ReleaseId(id)
		}
		return InvalidEntityId, err
	}
	return id, nil
}

// GetDataRaw returns a pointer to the element stored under id.
func (p *ObjectPool) GetDataRaw(id EntityId) (any, error) {
	if !p.IsLoaded() {
		return nil, p.reject("get", id, errors.WithStack(ErrNotLoaded))
	}
	slot, ok := p.index.Lookup(id)
	if !ok {
		return nil, p.reject("get", id, errors.Wrapf(ErrNotFound, "id %d", id))
	}
	return p.buffer.GetRaw(slot), nil
}

// GetData returns a typed pointer to the element stored under id.
func GetData[T any](p *ObjectPool, id EntityId) (*T, error) {
	raw, err := p.GetDataRaw(id)
	if err != nil {
		return nil, err
	}
	ptr, ok := raw.(*T)
	if !ok {
		return nil, p.reject("get", id, errors.Wrapf(ErrTypeMismatch, "pool holds %s, not %s", p.elementType.Name(), typeName[T]()))
	}
	return ptr, nil
}

// DeleteData removes the element stored under id. The element in the last
// slot moves into the freed slot.
func (p *ObjectPool) DeleteData(id EntityId) error {
	if !p.IsLoaded() {
		return p.reject("delete", id, errors.WithStack(ErrNotLoaded))
	}

	deleted, last, err := p.index.Delete(id)
	if err != nil {
		return p.reject("delete", id, err)
	}
	if deleted != last {
		p.buffer.Move(deleted, last)
	}
	p.buffer.Zero(last)
	return nil
}

// Iter yields every live id with a pointer to its element, in slot order.
// The pool must not be mutated during iteration.
func (p *ObjectPool) Iter() iter.Seq2[EntityId, any] {
	return func(yield func(EntityId, any) bool) {
		if !p.IsLoaded() {
			return
		}
		for slot, id := range p.index.All() {
			if !yield(id, p.buffer.GetRaw(slot)) {
				return
			}
		}
	}
}

// Validate checks the index invariants and that the pool is within capacity.
func (p *ObjectPool) Validate() error {
	if err := p.index.Validate(); err != nil {
		return err
	}
	if p.index.Len() > p.max {
		return errors.Wrapf(ErrCorrupted, "pool holds %d of %d", p.index.Len(), p.max)
	}
	return nil
}

func (p *ObjectPool) reject(op string, id EntityId, err error) error {
	fields := log.Fields{
		"op": op,
		"id": id,
	}
	if p.elementType != nil {
		fields["type"] = p.elementType.Name()
	}
	p.logger.WithFields(fields).WithError(err).Debug("pool operation rejected")
	return err
}
