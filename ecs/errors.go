package ecs

import "github.com/pkg/errors"

// Contract violations reported by the index, pools and storage. Returned
// errors wrap one of these; match them with errors.Is.
var (
	ErrInvalidId        = errors.New("invalid id")
	ErrAlreadyExists    = errors.New("already exists")
	ErrNotFound         = errors.New("not found")
	ErrNotLoaded        = errors.New("pool not loaded")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrInvalidCapacity  = errors.New("invalid capacity")
	ErrNoIdSource       = errors.New("pool has no id source")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrUnregisteredType = errors.New("type not registered")
	ErrCorrupted        = errors.New("index corrupted")
)
