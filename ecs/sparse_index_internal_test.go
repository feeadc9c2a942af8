package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparseIndexValidateDetectsCorruption(t *testing.T) {
	idx := NewSparseIndex[EntityId](4)
	for _, id := range []EntityId{5, 7, 9} {
		_, err := idx.Insert(id)
		require.NoError(t, err)
	}
	require.NoError(t, idx.Validate())

	// swap two backward entries without touching forward
	idx.backward[0], idx.backward[1] = idx.backward[1], idx.backward[0]
	assert.ErrorIs(t, idx.Validate(), ErrCorrupted)

	idx.backward[0], idx.backward[1] = idx.backward[1], idx.backward[0]
	require.NoError(t, idx.Validate())

	// forward entry with no backward slot
	idx.forward.Put(11, 3)
	assert.ErrorIs(t, idx.Validate(), ErrCorrupted)
}

func TestSparseIndexDeleteKeepsBackwardPacked(t *testing.T) {
	idx := NewSparseIndex[EntityId](4)
	for _, id := range []EntityId{5, 7, 9} {
		_, err := idx.Insert(id)
		require.NoError(t, err)
	}

	_, _, err := idx.Delete(7)
	require.NoError(t, err)

	assert.Equal(t, []EntityId{5, 9}, idx.backward)
	slot, ok := idx.forward.Get(9)
	require.True(t, ok)
	assert.Equal(t, uint32(1), slot)
	assert.False(t, idx.forward.Has(7))
}
