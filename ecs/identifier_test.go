package ecs_test

import (
	"sync"
	"testing"

	"github.com/plus3/poolecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialIds(t *testing.T) {
	ids := ecs.NewSequentialIds()

	assert.Equal(t, ecs.EntityId(1), ids.NextId())
	assert.Equal(t, ecs.EntityId(2), ids.NextId())
	assert.Equal(t, ecs.EntityId(3), ids.NextId())
}

func TestSequentialIdsConcurrent(t *testing.T) {
	ids := ecs.NewSequentialIds()

	const workers, perWorker = 8, 500
	results := make(chan ecs.EntityId, workers*perWorker)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				results <- ids.NextId()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[ecs.EntityId]bool)
	for id := range results {
		require.NotEqual(t, ecs.InvalidEntityId, id)
		require.False(t, seen[id], "id %d issued twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestRecyclingIds(t *testing.T) {
	ids := ecs.NewRecyclingIds(2)

	a, b, c := ids.NextId(), ids.NextId(), ids.NextId()
	assert.Equal(t, []ecs.EntityId{1, 2, 3}, []ecs.EntityId{a, b, c})
	assert.Equal(t, 3, ids.InUse())

	ids.ReleaseId(b)
	assert.Equal(t, 2, ids.InUse())
	assert.Equal(t, ecs.EntityId(2), ids.NextId(), "lowest released id comes back first")
	assert.Equal(t, ecs.EntityId(4), ids.NextId())

	// releasing something never issued is harmless
	ids.ReleaseId(1000)
	assert.Equal(t, 4, ids.InUse())
}

func TestRecyclingIdsGrowsPastCapacity(t *testing.T) {
	ids := ecs.NewRecyclingIds(0)

	for want := ecs.EntityId(1); want <= 200; want++ {
		require.Equal(t, want, ids.NextId())
	}
	assert.Equal(t, 200, ids.InUse())
}
