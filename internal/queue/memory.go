package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryAdapter is an in-process Adapter backed by a single mutex-protected
// slice. It is used by the package tests and is suitable as a local/dev
// backend; a production deployment wires Adapter against a real broker
// client instead.
type MemoryAdapter struct {
	mu     sync.Mutex
	ready  []*entry
	leased map[string]*Task
	tube   string
}

type entry struct {
	task      *Task
	visibleAt time.Time
}

// NewMemoryAdapter creates an empty adapter for the named tube.
func NewMemoryAdapter(tube string) *MemoryAdapter {
	return &MemoryAdapter{
		tube:   tube,
		leased: make(map[string]*Task),
	}
}

// Seed injects a ready task directly, bypassing Put. Intended for tests.
func (a *MemoryAdapter) Seed(data map[string]interface{}, meta map[string]interface{}) *Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	t := &Task{ID: uuid.NewString(), Data: data, Meta: meta}
	a.ready = append(a.ready, &entry{task: t})
	return t
}

// Take returns the oldest ready task, or (nil, nil) if none is visible yet.
// It does not wait: timeout is ignored and an empty result is immediate.
func (a *MemoryAdapter) Take(ctx context.Context, timeout time.Duration) (*Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	for i, e := range a.ready {
		if e.visibleAt.After(now) {
			continue
		}
		a.ready = append(a.ready[:i], a.ready[i+1:]...)
		a.leased[e.task.ID] = e.task
		return e.task, nil
	}
	return nil, nil
}

// Ack removes the task from the leased set.
func (a *MemoryAdapter) Ack(ctx context.Context, t *Task) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.leased[t.ID]; !ok {
		return fmt.Errorf("queue: ack of unknown task %s", t.ID)
	}
	delete(a.leased, t.ID)
	return nil
}

// Bury removes the task from the leased set without re-queueing it.
func (a *MemoryAdapter) Bury(ctx context.Context, t *Task) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.leased[t.ID]; !ok {
		return fmt.Errorf("queue: bury of unknown task %s", t.ID)
	}
	delete(a.leased, t.ID)
	return nil
}

// Put enqueues a new task, visible after delay, with the given priority.
func (a *MemoryAdapter) Put(ctx context.Context, data map[string]interface{}, delay time.Duration, pri string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	t := &Task{
		ID:   uuid.NewString(),
		Data: data,
		Meta: map[string]interface{}{"pri": pri},
	}
	a.ready = append(a.ready, &entry{task: t, visibleAt: time.Now().Add(delay)})
	return nil
}

// Len returns the number of ready (not yet leased) tasks. Intended for tests.
func (a *MemoryAdapter) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.ready)
}
