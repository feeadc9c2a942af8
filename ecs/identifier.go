package ecs

import (
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
)

// IdSource issues fresh, non-zero entity ids.
type IdSource interface {
	NextId() EntityId
}

// IdReleaser is implemented by sources that can hand out an id again once
// the caller no longer uses it.
type IdReleaser interface {
	ReleaseId(id EntityId)
}

// SequentialIds counts up from 1 and never reuses an id. It is safe for
// concurrent use, so several storages may share one.
type SequentialIds struct {
	last atomic.Uint64
}

// NewSequentialIds creates a source whose first id is 1.
func NewSequentialIds() *SequentialIds {
	return &SequentialIds{}
}

func (s *SequentialIds) NextId() EntityId {
	return EntityId(s.last.Add(1))
}

// RecyclingIds hands out the lowest id that is not currently in use.
// Released ids are reissued, which keeps ids dense for long-running worlds
// with heavy churn. Not safe for concurrent use.
type RecyclingIds struct {
	used *bitset.BitSet
}

// NewRecyclingIds creates a source with room for capacity ids before the
// bitmap has to grow.
func NewRecyclingIds(capacity uint) *RecyclingIds {
	return &RecyclingIds{used: bitset.New(capacity + 1)}
}

func (r *RecyclingIds) NextId() EntityId {
	// bit 0 is never set, so the search starts at 1
	id, ok := r.used.NextClear(1)
	if !ok {
		id = max(r.used.Len(), 1)
	}
	r.used.Set(id)
	return EntityId(id)
}

// ReleaseId makes id available again. Releasing an id that is not in use is
// a no-op.
func (r *RecyclingIds) ReleaseId(id EntityId) {
	r.used.Clear(uint(id))
}

// InUse returns how many ids are currently issued.
func (r *RecyclingIds) InUse() int {
	return int(r.used.Count())
}
