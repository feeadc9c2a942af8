package ecs

import (
	"reflect"

	"go.uber.org/multierr"
)

// Commands provides a buffer for deferred ECS operations that are executed at the end of a frame.
// Pools compact on delete, so structural changes made while a system is
// iterating would move elements under it; queue them here instead.
type Commands struct {
	spawns  []spawnCommand
	deletes []EntityId
	adds    []addComponentCommand
	removes []removeComponentCommand
	defers  []deferCommand
}

func newCommands() *Commands {
	return &Commands{}
}

type deferCommand struct {
	fn func()
}

type spawnCommand struct {
	components []any
}

type addComponentCommand struct {
	entity    EntityId
	component any
}

type removeComponentCommand struct {
	entity   EntityId
	compType reflect.Type
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// Spawn queues an entity spawn operation with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// Delete queues an entity deletion operation.
func (c *Commands) Delete(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues a component addition operation.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.adds = append(c.adds, addComponentCommand{
		entity:    entity,
		component: component,
	})
}

// RemoveComponent queues a component removal operation.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{
		entity:   entity,
		compType: compType,
	})
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.deletes) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush applies every queued operation to storage and resets the buffer.
// A failing operation does not stop the rest; all failures are returned
// together. Operations on an entity deleted in the same flush are dropped.
func (c *Commands) Flush(storage *Storage) error {
	var err error
	deletedEntities := make(map[EntityId]bool)

	for _, cmd := range c.deletes {
		if deletedEntities[cmd] {
			continue
		}
		err = multierr.Append(err, storage.Delete(cmd))
		deletedEntities[cmd] = true
	}

	for _, cmd := range c.removes {
		if !deletedEntities[cmd.entity] {
			err = multierr.Append(err, storage.RemoveComponent(cmd.entity, cmd.compType))
		}
	}

	for _, cmd := range c.adds {
		if !deletedEntities[cmd.entity] {
			err = multierr.Append(err, storage.AddComponent(cmd.entity, cmd.component))
		}
	}

	for _, cmd := range c.spawns {
		_, spawnErr := storage.Spawn(cmd.components...)
		err = multierr.Append(err, spawnErr)
	}

	for _, df := range c.defers {
		df.fn()
	}

	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
	return err
}
