package ecs

import (
	"iter"

	"github.com/kamstrup/intmap"
	"github.com/pkg/errors"
)

// InvalidSlot is what Search returns for an absent id. It is also the slot of
// the first inserted id, so Search results are only meaningful after Test.
const InvalidSlot uint32 = 0

// SparseIndex maps ids onto the packed slot range [0, Len()).
//
// Slots are handed out in insertion order. Deleting an id moves the entry in
// the final slot into the hole it leaves, so the occupied range never has gaps
// and every operation is O(1). The index stores no payload; callers mirror the
// slot moves reported by Delete in their own dense storage.
type SparseIndex[ID Identifier] struct {
	forward  *intmap.Map[ID, uint32]
	backward []ID
}

// NewSparseIndex creates an empty index sized for capacity entries. capacity
// is only a size hint; negative values are treated as zero.
func NewSparseIndex[ID Identifier](capacity int) *SparseIndex[ID] {
	capacity = max(capacity, 0)
	return &SparseIndex[ID]{
		forward:  intmap.New[ID, uint32](capacity),
		backward: make([]ID, 0, capacity),
	}
}

// IsEmpty reports whether no ids are live.
func (s *SparseIndex[ID]) IsEmpty() bool {
	return len(s.backward) == 0
}

// Len returns the number of live ids.
func (s *SparseIndex[ID]) Len() int {
	return len(s.backward)
}

// Test reports whether id is live.
func (s *SparseIndex[ID]) Test(id ID) bool {
	return s.forward.Has(id)
}

// Search returns the slot of id, or InvalidSlot if id is not live.
func (s *SparseIndex[ID]) Search(id ID) uint32 {
	slot, ok := s.forward.Get(id)
	if !ok {
		return InvalidSlot
	}
	return slot
}

// Lookup returns the slot of id and whether id is live.
func (s *SparseIndex[ID]) Lookup(id ID) (uint32, bool) {
	return s.forward.Get(id)
}

// IdAt returns the id occupying slot.
func (s *SparseIndex[ID]) IdAt(slot uint32) (ID, bool) {
	if int(slot) >= len(s.backward) {
		return 0, false
	}
	return s.backward[slot], true
}

// Insert appends id at slot Len() and returns that slot.
func (s *SparseIndex[ID]) Insert(id ID) (uint32, error) {
	if id == 0 {
		return InvalidSlot, errors.WithStack(ErrInvalidId)
	}
	if s.forward.Has(id) {
		return InvalidSlot, errors.Wrapf(ErrAlreadyExists, "id %d", id)
	}

	slot := uint32(len(s.backward))
	s.forward.Put(id, slot)
	s.backward = append(s.backward, id)
	return slot, nil
}

// Delete removes id and compacts the index by moving the entry in the last
// slot into the deleted one. It returns both slots so the caller can perform
// the same move on its payload. When deleted == last nothing moves.
func (s *SparseIndex[ID]) Delete(id ID) (deleted, last uint32, err error) {
	deleted, ok := s.forward.Get(id)
	if !ok {
		return InvalidSlot, InvalidSlot, errors.Wrapf(ErrNotFound, "id %d", id)
	}

	last = uint32(len(s.backward) - 1)
	s.forward.Del(id)

	lastId := s.backward[last]
	s.backward = s.backward[:last]
	if deleted != last {
		s.backward[deleted] = lastId
		s.forward.Put(lastId, deleted)
	}
	return deleted, last, nil
}

// Reset drops every entry.
func (s *SparseIndex[ID]) Reset() {
	s.forward.Clear()
	s.backward = s.backward[:0]
}

// All iterates live entries in slot order. The index must not be mutated
// during iteration.
func (s *SparseIndex[ID]) All() iter.Seq2[uint32, ID] {
	return func(yield func(uint32, ID) bool) {
		for slot, id := range s.backward {
			if !yield(uint32(slot), id) {
				return
			}
		}
	}
}

// Validate checks that forward and backward are exact inverses over [0, Len()).
func (s *SparseIndex[ID]) Validate() error {
	if s.forward.Len() != len(s.backward) {
		return errors.Wrapf(ErrCorrupted, "forward holds %d ids, backward holds %d", s.forward.Len(), len(s.backward))
	}
	for slot, id := range s.backward {
		got, ok := s.forward.Get(id)
		if !ok {
			return errors.Wrapf(ErrCorrupted, "slot %d holds id %d missing from forward map", slot, id)
		}
		if got != uint32(slot) {
			return errors.Wrapf(ErrCorrupted, "id %d maps to slot %d but occupies slot %d", id, got, slot)
		}
	}
	return nil
}
