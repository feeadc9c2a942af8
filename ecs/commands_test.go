package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/poolecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSpawnSystem struct {
	executed bool
}

func (s *testSpawnSystem) Execute(frame *ecs.UpdateFrame) {
	s.executed = true
	frame.Commands.Spawn(Position{X: 1, Y: 2}, Velocity{DX: 0.5, DY: 0.5})
	frame.Commands.Spawn(Position{X: 3, Y: 4})
}

type testDeleteSystem struct {
	entityToDelete ecs.EntityId
}

func (s *testDeleteSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.Delete(s.entityToDelete)
}

type testAddSystem struct {
	entity ecs.EntityId
}

func (s *testAddSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.AddComponent(s.entity, Velocity{DX: 5, DY: 10})
}

type testRemoveSystem struct {
	entity ecs.EntityId
}

func (s *testRemoveSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.RemoveComponent(s.entity, reflect.TypeOf(Velocity{}))
}

type testMixedSystem struct {
	entity ecs.EntityId
}

func (s *testMixedSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.Spawn(Position{X: 10, Y: 20})
	frame.Commands.AddComponent(s.entity, Velocity{DX: 1, DY: 1})
	frame.Commands.Delete(s.entity)
	frame.Commands.Spawn(Health{Current: 100, Max: 100})
}

func TestCommands(t *testing.T) {
	t.Run("spawn entities", func(t *testing.T) {
		storage := newTestStorage()
		scheduler := ecs.NewScheduler(storage)

		system := &testSpawnSystem{}
		scheduler.Register(system)

		positions := ecs.NewComponents[Position](storage)
		assert.Equal(t, 0, positions.Len(), "entities spawned before frame execution")

		require.NoError(t, scheduler.Once(1.0))

		assert.True(t, system.executed)
		assert.Equal(t, 2, positions.Len())
		assert.Equal(t, 1, ecs.NewComponents[Velocity](storage).Len())
	})

	t.Run("delete entities", func(t *testing.T) {
		storage := newTestStorage()
		e1, err := storage.Spawn(Position{X: 1, Y: 2})
		require.NoError(t, err)
		e2, err := storage.Spawn(Position{X: 3, Y: 4})
		require.NoError(t, err)

		scheduler := ecs.NewScheduler(storage)
		scheduler.Register(&testDeleteSystem{entityToDelete: e1})

		assert.True(t, storage.Alive(e1), "entity deleted before frame execution")

		require.NoError(t, scheduler.Once(1.0))

		assert.False(t, storage.Alive(e1))
		assert.Nil(t, storage.GetComponent(e1, reflect.TypeOf(Position{})))
		assert.NotNil(t, storage.GetComponent(e2, reflect.TypeOf(Position{})), "wrong entity deleted")
	})

	t.Run("add components", func(t *testing.T) {
		storage := newTestStorage()
		entity, err := storage.Spawn(Position{X: 1, Y: 2})
		require.NoError(t, err)

		scheduler := ecs.NewScheduler(storage)
		scheduler.Register(&testAddSystem{entity: entity})

		require.NoError(t, scheduler.Once(1.0))

		vel := ecs.ReadComponent[Velocity](storage, entity)
		require.NotNil(t, vel)
		assert.Equal(t, Velocity{DX: 5, DY: 10}, *vel)
	})

	t.Run("remove components", func(t *testing.T) {
		storage := newTestStorage()
		entity, err := storage.Spawn(Position{X: 1, Y: 2}, Velocity{DX: 5, DY: 10})
		require.NoError(t, err)

		scheduler := ecs.NewScheduler(storage)
		scheduler.Register(&testRemoveSystem{entity: entity})

		require.NoError(t, scheduler.Once(1.0))

		assert.False(t, storage.HasComponent(entity, reflect.TypeOf(Velocity{})))
		assert.Equal(t, Position{X: 1, Y: 2}, *ecs.ReadComponent[Position](storage, entity))
	})

	t.Run("mixed operations", func(t *testing.T) {
		storage := newTestStorage()
		e1, err := storage.Spawn(Position{X: 1, Y: 2})
		require.NoError(t, err)

		scheduler := ecs.NewScheduler(storage)
		scheduler.Register(&testMixedSystem{entity: e1})
		require.NoError(t, scheduler.Once(1.0))

		// the add targets an entity deleted in the same flush and is dropped
		assert.False(t, storage.Alive(e1))
		assert.Equal(t, 1, ecs.NewComponents[Position](storage).Len())
		assert.Equal(t, 0, ecs.NewComponents[Velocity](storage).Len())
		assert.Equal(t, 1, ecs.NewComponents[Health](storage).Len())
	})

	t.Run("failures are collected", func(t *testing.T) {
		storage := newTestStorage()
		entity, err := storage.Spawn(Position{})
		require.NoError(t, err)

		commands := &ecs.Commands{}
		commands.Delete(999)
		commands.AddComponent(entity, Position{})
		commands.Spawn(Velocity{DX: 1})

		err = commands.Flush(storage)
		assert.ErrorIs(t, err, ecs.ErrNotFound)
		assert.ErrorIs(t, err, ecs.ErrAlreadyExists)

		// the valid spawn still went through
		assert.Equal(t, 1, ecs.NewComponents[Velocity](storage).Len())
		assert.Equal(t, 0, commands.Len())
	})

	t.Run("defer runs after structural changes", func(t *testing.T) {
		storage := newTestStorage()
		commands := &ecs.Commands{}

		var seen int
		commands.Defer(func() { seen = storage.EntityCount() })
		commands.Spawn(Position{})
		commands.Spawn(Position{})
		assert.Equal(t, 3, commands.Len())

		require.NoError(t, commands.Flush(storage))
		assert.Equal(t, 2, seen)
	})
}
