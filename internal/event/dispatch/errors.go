package dispatch

import "errors"

var (
	// ErrAlreadyRunning is returned by Start on a dispatcher whose workers are up.
	ErrAlreadyRunning = errors.New("dispatch: workers already started")

	// ErrNotRunning is returned by Enqueue and Stop before Start or after Stop.
	ErrNotRunning = errors.New("dispatch: workers not started")

	// ErrQueueFull is returned by Enqueue when the bounded queue has no room;
	// the task is counted as dropped.
	ErrQueueFull = errors.New("dispatch: queue full, task dropped")
)
