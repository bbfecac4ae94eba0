package queue

import (
	"context"
	"time"
)

// Adapter is a thin lease-based interface over an external queue broker.
// Take returns (nil, nil) when the queue is empty within timeout, never an
// error in that case. Ack, Bury, and Put act on a previously leased task.
type Adapter interface {
	// Take waits up to timeout for a task, returning (nil, nil) on empty.
	Take(ctx context.Context, timeout time.Duration) (*Task, error)

	// Ack declares the task successfully processed.
	Ack(ctx context.Context, t *Task) error

	// Bury retains the task in a non-ready state for later inspection.
	Bury(ctx context.Context, t *Task) error

	// Put enqueues new data, optionally delayed, at the given priority.
	Put(ctx context.Context, data map[string]interface{}, delay time.Duration, pri string) error
}
