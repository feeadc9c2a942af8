package main

import (
	"math/rand"
	"reflect"

	"github.com/plus3/poolecs/ecs"
	"github.com/samber/lo"
)

// movementSystem integrates velocities into positions.
type movementSystem struct {
	Positions  ecs.Components[Position]
	Velocities ecs.Components[Velocity]
}

func (s *movementSystem) Execute(frame *ecs.UpdateFrame) {
	for id, vel := range s.Velocities.Iter() {
		if pos := s.Positions.Get(id); pos != nil {
			pos.X += vel.DX * float32(frame.DeltaTime)
			pos.Y += vel.DY * float32(frame.DeltaTime)
		}
	}
}

// lifetimeSystem queues entities whose lifetime ran out for deletion.
type lifetimeSystem struct {
	Lifetimes ecs.Components[Lifetime]
	expired   int64
}

func (s *lifetimeSystem) Execute(frame *ecs.UpdateFrame) {
	for id, life := range s.Lifetimes.Iter() {
		life.Frames--
		if life.Frames <= 0 {
			frame.Commands.Delete(id)
			s.expired++
		}
	}
}

// churnSystem issues a random mix of structural changes every frame so that
// pools keep filling up, compacting and hitting their capacity.
type churnSystem struct {
	rng        *rand.Rand
	opsPerTick int

	spawns, deletes, adds, removes int64
}

func (s *churnSystem) Execute(frame *ecs.UpdateFrame) {
	live := make([]ecs.EntityId, 0, frame.Storage.EntityCount())
	for id := range frame.Storage.Entities() {
		live = append(live, id)
	}

	for i := 0; i < s.opsPerTick; i++ {
		op := s.rng.Intn(8)
		if len(live) == 0 {
			op = 0
		}

		switch {
		case op < 3:
			spawnRandomEntity(frame.Commands, s.rng)
			s.spawns++
		case op < 5:
			frame.Commands.Delete(lo.Sample(live))
			s.deletes++
		case op < 7:
			frame.Commands.AddComponent(lo.Sample(live), Health{Current: 100, Max: 100})
			s.adds++
		default:
			frame.Commands.RemoveComponent(lo.Sample(live), reflect.TypeFor[Health]())
			s.removes++
		}
	}
}

type spawner interface {
	Spawn(components ...any)
}

func spawnRandomEntity(target spawner, rng *rand.Rand) {
	components := []any{Position{X: rng.Float32() * 100, Y: rng.Float32() * 100}}
	if rng.Intn(2) == 0 {
		components = append(components, Velocity{DX: rng.Float32() - 0.5, DY: rng.Float32() - 0.5})
	}
	if rng.Intn(3) == 0 {
		components = append(components, Lifetime{Frames: 1 + rng.Intn(120)})
	}
	target.Spawn(components...)
}
