// Package workerpool implements the fixed-size cooperative scheduler the
// Dispatch Loop spawns Notification Workers against. It is adapted from the
// bounded worker pool used for camera device probing in the teacher
// codebase, generalized from a task-submission API to the free-slot /
// register-started-worker shape the dispatch core needs.
package workerpool

import (
	"sync"
	"sync/atomic"

	"github.com/netsweep/dispatchd/internal/logging"
)

// Pool is a cooperative concurrency pool of fixed capacity. Unlike a
// submit-a-closure pool, callers start their own goroutine and register it
// with Add so the pool can track completions without owning execution.
type Pool struct {
	capacity int
	live     int64 // atomic
	wg       sync.WaitGroup
	logger   *logging.Logger
}

// New creates a pool with the given capacity. capacity <= 0 is clamped to 1.
func New(capacity int, logger *logging.Logger) *Pool {
	if capacity <= 0 {
		capacity = 1
	}
	if logger == nil {
		logger = logging.GetLogger("workerpool")
	}
	return &Pool{capacity: capacity, logger: logger}
}

// Capacity returns the pool's fixed worker capacity.
func (p *Pool) Capacity() int {
	return p.capacity
}

// FreeCount returns the number of slots not currently occupied. Never
// negative: a pool that has somehow over-registered clamps to zero rather
// than reporting free capacity that doesn't exist.
func (p *Pool) FreeCount() int {
	free := p.capacity - int(atomic.LoadInt64(&p.live))
	if free < 0 {
		return 0
	}
	return free
}

// LiveCount returns the number of currently registered, not-yet-completed workers.
func (p *Pool) LiveCount() int {
	return int(atomic.LoadInt64(&p.live))
}

// Add registers an already-started worker goroutine. done must be closed
// (or signaled) by the caller's goroutine when the unit of work completes;
// Add blocks in a background goroutine until then, decrementing the live
// count and releasing the slot.
func (p *Pool) Add(done <-chan struct{}) {
	atomic.AddInt64(&p.live, 1)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		<-done
		atomic.AddInt64(&p.live, -1)
	}()
}

// Wait blocks until every registered worker has completed. Neither the
// Dispatch Loop nor the Supervisor calls it: in-flight workers are not
// waited on at shutdown.
func (p *Pool) Wait() {
	p.wg.Wait()
}
