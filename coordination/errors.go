package coordination

import "errors"

var (
	// ErrQueueFull is returned by Enqueue when the buffer is at capacity and
	// no consumer is waiting to absorb the item.
	ErrQueueFull = errors.New("queue full")
	// ErrQueueShuttingDown is returned by Enqueue once Drain has begun.
	ErrQueueShuttingDown = errors.New("queue shutting down")
	// ErrNotLocked is returned by Unlock when the mutex is not held.
	ErrNotLocked = errors.New("mutex not locked")

	ErrInvalidCapacity = errors.New("invalid capacity")
	ErrInvalidPermits  = errors.New("invalid permits")
)
