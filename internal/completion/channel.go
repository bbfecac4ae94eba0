// Package completion implements the bounded mailbox Notification Workers
// post (task, verdict) pairs into, and the Dispatch Loop drains once per
// iteration.
package completion

import "github.com/netsweep/dispatchd/internal/queue"

// Completion pairs a task with the verdict a worker reached for it.
type Completion struct {
	Task    *queue.Task
	Verdict queue.Verdict
}

// Channel is a bounded, thread-safe FIFO of Completions. It wraps a plain Go
// channel: sends from many worker goroutines, a single consumer (the
// Dispatch Loop) drains it.
type Channel struct {
	ch chan Completion
}

// New creates a Channel with the given capacity. spec.md's design notes
// recommend capacity equal to the worker pool size.
func New(capacity int) *Channel {
	if capacity <= 0 {
		capacity = 1
	}
	return &Channel{ch: make(chan Completion, capacity)}
}

// Send posts a completion. Blocks if the channel is full; callers size
// capacity so this cannot happen under normal operation (capacity >=
// worker pool size means no more completions can be in flight than slots).
func (c *Channel) Send(t *queue.Task, v queue.Verdict) {
	c.ch <- Completion{Task: t, Verdict: v}
}

// TryRecv performs a non-blocking take. ok is false when the channel is
// currently empty.
func (c *Channel) TryRecv() (Completion, bool) {
	select {
	case comp := <-c.ch:
		return comp, true
	default:
		return Completion{}, false
	}
}

// Len reports how many completions are currently buffered and unread.
func (c *Channel) Len() int {
	return len(c.ch)
}

// DrainAll repeatedly performs non-blocking takes, invoking fn for each,
// until the channel reports empty. This is the §4.2 reaper behavior: a
// snapshot drain, not a blocking wait for more to arrive.
func (c *Channel) DrainAll(fn func(Completion)) int {
	n := 0
	for {
		comp, ok := c.TryRecv()
		if !ok {
			return n
		}
		fn(comp)
		n++
	}
}
