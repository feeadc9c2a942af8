package ecs_test

import (
	"testing"

	"github.com/plus3/poolecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentsBeforePoolExists(t *testing.T) {
	storage := newTestStorage()
	positions := ecs.NewComponents[Position](storage)

	assert.Equal(t, 0, positions.Len())
	assert.False(t, positions.Has(1))
	assert.Nil(t, positions.Get(1))
	for range positions.Iter() {
		t.Fatal("expected no components")
	}

	id, err := storage.Spawn(Position{X: 1, Y: 2})
	require.NoError(t, err)

	assert.Equal(t, 1, positions.Len())
	assert.True(t, positions.Has(id))
	require.NotNil(t, positions.Get(id))
	assert.Equal(t, float32(2), positions.Get(id).Y)
}

func TestComponentsIterMutatesInPlace(t *testing.T) {
	storage := newTestStorage()
	healths := ecs.NewComponents[Health](storage)

	ids := make([]ecs.EntityId, 0, 3)
	for i := range 3 {
		id, err := storage.Spawn(Health{Current: i, Max: 10})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	for _, health := range healths.Iter() {
		health.Current = health.Max
	}
	for _, id := range ids {
		assert.Equal(t, 10, healths.Get(id).Current)
	}
}

func TestComponentsIterStopsEarly(t *testing.T) {
	storage := newTestStorage()
	positions := ecs.NewComponents[Position](storage)
	for range 5 {
		_, err := storage.Spawn(Position{})
		require.NoError(t, err)
	}

	seen := 0
	for range positions.Iter() {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func TestComponentsAfterStorageFree(t *testing.T) {
	storage := newTestStorage()
	positions := ecs.NewComponents[Position](storage)

	_, err := storage.Spawn(Position{X: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, positions.Len())

	storage.Free()
	assert.Equal(t, 0, positions.Len())

	id, err := storage.Spawn(Position{X: 7})
	require.NoError(t, err)
	assert.Equal(t, 1, positions.Len())
	assert.Equal(t, float32(7), positions.Get(id).X)
}
