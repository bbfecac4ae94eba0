package urlcheck

import (
	"context"
	"time"

	"github.com/netsweep/dispatchd/internal/lifecycle"
)

// LoopConfig controls the inter-iteration sleep; queue/analyzer timing
// lives in Config.
type LoopConfig struct {
	Sleep time.Duration
}

// Loop repeatedly calls Worker.Step while the lifecycle controller's run
// flag holds. A Take failure is not handled here: it propagates to the
// caller (the supervisor), which treats it as a crash and restarts after
// SLEEP_ON_FAIL, per spec.md §7.
type Loop struct {
	cfg     LoopConfig
	worker  *Worker
	control *lifecycle.Controller
}

// NewLoop builds a Loop.
func NewLoop(cfg LoopConfig, worker *Worker, control *lifecycle.Controller) *Loop {
	return &Loop{cfg: cfg, worker: worker, control: control}
}

// Run executes the worker loop until the run flag clears or Step returns an
// error.
func (l *Loop) Run(ctx context.Context) error {
	for l.control.Running() {
		if err := l.worker.Step(ctx); err != nil {
			return err
		}
		l.sleep(ctx)
	}
	return nil
}

func (l *Loop) sleep(ctx context.Context) {
	t := time.NewTimer(l.cfg.Sleep)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
