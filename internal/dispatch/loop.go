// Package dispatch implements the notification-mode Dispatch Loop: lease
// tasks up to the worker pool's free capacity, spawn one notification
// worker per task, and reap completions into ack/bury calls against the
// queue. Adapted from the teacher's worker-pool-driven polling loops,
// generalized to the take/spawn/drain cycle spec.md §4.4 describes.
package dispatch

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/netsweep/dispatchd/internal/completion"
	"github.com/netsweep/dispatchd/internal/lifecycle"
	"github.com/netsweep/dispatchd/internal/logging"
	"github.com/netsweep/dispatchd/internal/notifier"
	"github.com/netsweep/dispatchd/internal/queue"
	"github.com/netsweep/dispatchd/internal/status"
	"github.com/netsweep/dispatchd/internal/statusfeed"
	"github.com/netsweep/dispatchd/internal/workerpool"
)

// Config controls loop timing independent of the notifier's own HTTP config.
type Config struct {
	TakeTimeout time.Duration
	Sleep       time.Duration
}

// Loop runs the notification dispatch cycle against a queue adapter.
type Loop struct {
	cfg       Config
	adapter   queue.Adapter
	pool      *workerpool.Pool
	completed *completion.Channel
	worker    *notifier.Worker
	control   *lifecycle.Controller
	logger    *logging.Logger
	feed      *statusfeed.Hub // nil when the status feed is disabled

	// AckCount/BuryCount are exposed for the status surface; updated only
	// from the single goroutine that runs Run, so no locking is needed.
	ackCount  int64
	buryCount int64

	configured atomic.Bool
}

// WithFeed attaches a statusfeed Hub that reap publishes each completion
// to. Publishing never blocks the reaper: the hub itself drops slow
// subscribers rather than letting them throttle dispatch.
func (l *Loop) WithFeed(hub *statusfeed.Hub) *Loop {
	l.feed = hub
	return l
}

// New builds a Loop. pool and completed should be sized consistently (pool
// capacity == completed channel capacity) so no worker ever blocks posting
// its verdict.
func New(cfg Config, adapter queue.Adapter, pool *workerpool.Pool, completed *completion.Channel, worker *notifier.Worker, control *lifecycle.Controller, logger *logging.Logger) *Loop {
	return &Loop{
		cfg:       cfg,
		adapter:   adapter,
		pool:      pool,
		completed: completed,
		worker:    worker,
		control:   control,
		logger:    logger,
	}
}

// Run executes the dispatch cycle until the lifecycle controller's run flag
// clears or a queue take fails. It never waits for in-flight workers on
// exit, and the supervisor does not call the pool's Wait either: workers
// still running when the process exits are abandoned. A take failure is
// not handled here: per
// spec.md §7, it is a Dispatch-Loop crash and propagates to the
// Supervisor, which restarts the loop after SLEEP_ON_FAIL.
func (l *Loop) Run(ctx context.Context) error {
	for l.control.Running() {
		if err := l.tick(ctx); err != nil {
			return err
		}
		l.reap()
		l.sleep(ctx)
	}
	l.logger.Info("dispatch: stop application loop")
	return nil
}

// tick leases as many tasks as there are free pool slots, stopping the first
// time Take reports nothing ready, and spawns a notification worker per
// leased task.
func (l *Loop) tick(ctx context.Context) error {
	free := l.pool.FreeCount()
	leased := 0
	for i := 0; i < free; i++ {
		task, err := l.adapter.Take(ctx, l.cfg.TakeTimeout)
		if err != nil {
			return err
		}
		if task == nil {
			break
		}
		l.spawn(ctx, task)
		leased++
	}
	l.configured.Store(true)
	if l.feed != nil {
		l.feed.Publish(statusfeed.Event{Type: "tick", Timestamp: time.Now(), Detail: map[string]int{"free_slots": free, "leased": leased}})
	}
	return nil
}

// Configured reports whether the loop has completed at least one tick,
// used by the status surface's readiness probe.
func (l *Loop) Configured() bool {
	return l.configured.Load()
}

func (l *Loop) spawn(ctx context.Context, task *queue.Task) {
	done := make(chan struct{})
	l.pool.Add(done)
	go func() {
		defer close(done)
		l.worker.Run(ctx, task, l.completed)
	}()
}

// reap drains every completion currently available and resolves it against
// the queue, swallowing ack/bury errors (the broker having already expired
// the lease is not this loop's problem to solve).
func (l *Loop) reap() {
	l.completed.DrainAll(func(c completion.Completion) {
		ctx := context.Background()
		switch c.Verdict {
		case queue.VerdictAck:
			if err := l.adapter.Ack(ctx, c.Task); err != nil {
				l.logger.WithError(err).WithField("task_id", c.Task.ID).Warn("dispatch: ack failed")
			}
			l.ackCount++
		default:
			if err := l.adapter.Bury(ctx, c.Task); err != nil {
				l.logger.WithError(err).WithField("task_id", c.Task.ID).Warn("dispatch: bury failed")
			}
			l.buryCount++
		}
		l.publish(c)
	})
}

func (l *Loop) publish(c completion.Completion) {
	if l.feed == nil {
		return
	}
	l.feed.Publish(statusfeed.Event{
		Type:      "completion",
		TaskID:    c.Task.ID,
		Verdict:   c.Verdict.String(),
		Timestamp: time.Now(),
	})
}

func (l *Loop) sleep(ctx context.Context) {
	t := time.NewTimer(l.cfg.Sleep)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// AckCount returns the number of tasks acked so far.
func (l *Loop) AckCount() int64 { return l.ackCount }

// BuryCount returns the number of tasks buried so far.
func (l *Loop) BuryCount() int64 { return l.buryCount }

// StatusSnapshot implements status.Reporter.
func (l *Loop) StatusSnapshot() status.Snapshot {
	return status.Snapshot{
		Running:        l.control.Running(),
		Ready:          l.Configured(),
		PoolCapacity:   l.pool.Capacity(),
		LiveWorkers:    l.pool.LiveCount(),
		FreeSlots:      l.pool.FreeCount(),
		CompletionSize: l.completed.Len(),
		AckCount:       l.ackCount,
		BuryCount:      l.buryCount,
	}
}
