package ecs

import (
	"iter"
	"reflect"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Storage ties together a set of live entities and one ObjectPool per
// component type. It is the context object every system works through; there
// is no package-level state.
type Storage struct {
	registry *ComponentRegistry
	entities *SparseIndex[EntityId]
	pools    map[reflect.Type]*ObjectPool
	capacity int
	ids      IdSource
	logger   *log.Entry
}

// StorageOption configures a Storage.
type StorageOption func(*Storage)

// WithCapacity sets the capacity every component pool is loaded with.
func WithCapacity(capacity int) StorageOption {
	return func(s *Storage) {
		s.capacity = capacity
	}
}

// WithStorageIdSource sets the source entity ids are drawn from.
func WithStorageIdSource(ids IdSource) StorageOption {
	return func(s *Storage) {
		s.ids = ids
	}
}

// WithStorageLogger sets the entry the storage and its pools log to.
func WithStorageLogger(logger *log.Entry) StorageOption {
	return func(s *Storage) {
		s.logger = logger
	}
}

// NewStorage creates an empty storage for the types in registry. The pool
// capacity must be positive and fit a uint32 slot.
func NewStorage(registry *ComponentRegistry, opts ...StorageOption) (*Storage, error) {
	s := &Storage{
		registry: registry,
		pools:    make(map[reflect.Type]*ObjectPool),
		capacity: DefaultPoolCapacity,
		ids:      NewSequentialIds(),
		logger:   log.NewEntry(log.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := checkCapacity(s.capacity); err != nil {
		return nil, err
	}
	s.entities = NewSparseIndex[EntityId](s.capacity)
	return s, nil
}

// Pool returns the pool for component type t, loading it on first use.
// Storage pools have no id source: InsertData fails with ErrNoIdSource, and
// components are added through the storage or InsertDataWithId for a live
// entity.
func (s *Storage) Pool(t reflect.Type) (*ObjectPool, error) {
	if pool, ok := s.pools[t]; ok {
		return pool, nil
	}

	desc, ok := s.registry.Descriptor(t)
	if !ok {
		return nil, errors.Wrapf(ErrUnregisteredType, "component %s", t)
	}

	pool := NewObjectPool(WithIdSource(nil), WithLogger(s.logger))
	if err := pool.Load(desc, s.capacity); err != nil {
		return nil, err
	}
	s.pools[t] = pool
	return pool, nil
}

// Spawn creates an entity holding the given components. Either every
// component is stored or the entity is not created at all.
func (s *Storage) Spawn(components ...any) (EntityId, error) {
	id := s.ids.NextId()
	if _, err := s.entities.Insert(id); err != nil {
		return InvalidEntityId, err
	}

	for _, comp := range components {
		if err := s.AddComponent(id, comp); err != nil {
			if delErr := s.Delete(id); delErr != nil {
				s.logger.WithError(delErr).WithField("id", id).Warn("spawn rollback failed")
			}
			return InvalidEntityId, err
		}
	}
	return id, nil
}

// Delete removes the entity and all of its components.
func (s *Storage) Delete(id EntityId) error {
	if _, _, err := s.entities.Delete(id); err != nil {
		return err
	}

	for _, pool := range s.pools {
		if !pool.IsValid(id) {
			continue
		}
		if err := pool.DeleteData(id); err != nil {
			return err
		}
	}

	if releaser, ok := s.ids.(IdReleaser); ok {
		releaser.ReleaseId(id)
	}
	return nil
}

// Alive reports whether id was spawned and not yet deleted.
func (s *Storage) Alive(id EntityId) bool {
	return s.entities.Test(id)
}

// EntityCount returns the number of live entities.
func (s *Storage) EntityCount() int {
	return s.entities.Len()
}

// Entities iterates live entity ids. The storage must not be mutated during
// iteration.
func (s *Storage) Entities() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		for _, id := range s.entities.All() {
			if !yield(id) {
				return
			}
		}
	}
}

// AddComponent attaches component to a live entity. component may be a value
// or a pointer; an entity holds at most one component of each type.
func (s *Storage) AddComponent(id EntityId, component any) error {
	if !s.entities.Test(id) {
		return errors.Wrapf(ErrNotFound, "entity %d", id)
	}

	compType, err := componentType(component)
	if err != nil {
		return err
	}
	pool, err := s.Pool(compType)
	if err != nil {
		return err
	}
	return pool.InsertDataWithId(id, component)
}

// RemoveComponent detaches the component of type compType from id.
func (s *Storage) RemoveComponent(id EntityId, compType reflect.Type) error {
	if !s.entities.Test(id) {
		return errors.Wrapf(ErrNotFound, "entity %d", id)
	}

	pool, ok := s.pools[compType]
	if !ok {
		return errors.Wrapf(ErrNotFound, "entity %d has no %s", id, compType)
	}
	return pool.DeleteData(id)
}

// GetComponent returns a pointer to the component of type compType held by
// id, or nil if it has none.
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	pool, ok := s.pools[compType]
	if !ok || !pool.IsValid(id) {
		return nil
	}
	comp, err := pool.GetDataRaw(id)
	if err != nil {
		return nil
	}
	return comp
}

// HasComponent reports whether id holds a component of type compType.
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	pool, ok := s.pools[compType]
	return ok && pool.IsValid(id)
}

// Free releases every pool and forgets all entities.
func (s *Storage) Free() {
	for _, pool := range s.pools {
		pool.Free()
	}
	clear(s.pools)
	s.entities.Reset()
}

// Validate checks the invariants of the entity set and every pool.
func (s *Storage) Validate() error {
	if err := s.entities.Validate(); err != nil {
		return errors.Wrap(err, "entities")
	}
	for t, pool := range s.pools {
		if err := pool.Validate(); err != nil {
			return errors.Wrapf(err, "pool %s", t)
		}
		for id := range pool.Iter() {
			if !s.entities.Test(id) {
				return errors.Wrapf(ErrCorrupted, "pool %s holds component of dead entity %d", t, id)
			}
		}
	}
	return nil
}

// componentType returns the type a component value is pooled under.
func componentType(component any) (reflect.Type, error) {
	compType := reflect.TypeOf(component)
	if compType == nil {
		return nil, errors.Wrap(ErrTypeMismatch, "nil component")
	}
	if compType.Kind() == reflect.Ptr {
		compType = compType.Elem()
	}
	return compType, nil
}

type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent returns the component of type T held by entityId, or nil.
func ReadComponent[T any](reader ComponentReader, entityId EntityId) *T {
	comp, _ := reader.GetComponent(entityId, reflect.TypeFor[T]()).(*T)
	return comp
}
