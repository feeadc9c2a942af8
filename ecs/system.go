package ecs

// System is one step of a Scheduler pass. Exported Components[T] fields of a
// system struct are bound to the storage when the system is registered; other
// fields keep their state between frames.
type System interface {
	Execute(frame *UpdateFrame)
}
