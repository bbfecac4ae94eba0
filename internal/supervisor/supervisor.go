// Package supervisor runs the Dispatch Loop (or the URL-Check Loop) and the
// Status Server concurrently, restarting the dispatch side after an
// unhandled crash. Uses an errgroup to coordinate "one crash-restartable
// core loop plus any number of auxiliary Stoppable services."
package supervisor

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/netsweep/dispatchd/internal/common"
	"github.com/netsweep/dispatchd/internal/lifecycle"
	"github.com/netsweep/dispatchd/internal/logging"
)

// Config controls the restart cooldown.
type Config struct {
	SleepOnFail time.Duration
}

// CoreLoop is the crash-restartable dispatch or url-check loop. A non-nil
// error return is treated as a crash and triggers a restart (after
// SleepOnFail) if the run flag is still set; a nil return is a clean exit.
type CoreLoop func(ctx context.Context) error

// Supervisor owns the restart loop for the core and the lifecycle of any
// number of auxiliary services (e.g. the status server, the status feed).
type Supervisor struct {
	cfg       Config
	control   *lifecycle.Controller
	logger    *logging.Logger
	auxiliary []common.Stoppable
	starters  []func(ctx context.Context) error
}

// New builds a Supervisor.
func New(cfg Config, control *lifecycle.Controller, logger *logging.Logger) *Supervisor {
	return &Supervisor{cfg: cfg, control: control, logger: logger}
}

// WithAuxiliary registers a Stoppable service with a blocking start
// function, run alongside the core loop and stopped when the group
// unwinds. start should block until ctx is cancelled.
func (s *Supervisor) WithAuxiliary(svc common.Stoppable, start func(ctx context.Context) error) *Supervisor {
	s.auxiliary = append(s.auxiliary, svc)
	s.starters = append(s.starters, start)
	return s
}

// Run starts every auxiliary service and the restartable core loop under a
// shared errgroup. An auxiliary service's error is logged and does not
// cancel the core loop's context. When the restart loop returns, the
// auxiliaries' context is cancelled so ctx-aware auxiliaries unwind.
// Run returns once the core loop has exited cleanly (run flag cleared) or
// every restart attempt has been exhausted by the run flag clearing during
// the cooldown sleep, and the auxiliaries have returned.
func (s *Supervisor) Run(ctx context.Context, core CoreLoop) error {
	group, gctx := errgroup.WithContext(ctx)
	auxCtx, cancelAux := context.WithCancel(gctx)
	defer cancelAux()

	for _, start := range s.starters {
		start := start
		group.Go(func() error {
			if err := start(auxCtx); err != nil {
				s.logger.WithError(err).Warn("supervisor: auxiliary service failed")
			}
			return nil
		})
	}

	group.Go(func() error {
		defer cancelAux()
		return s.restartLoop(gctx, core)
	})

	return group.Wait()
}

// restartLoop implements spec.md §4.7's supervisor restart semantics: run
// core; on error, log + sleep SLEEP_ON_FAIL, then retry if Run Flag still
// holds; on clean return, stop without sleeping.
func (s *Supervisor) restartLoop(ctx context.Context, core CoreLoop) error {
	for {
		err := core(ctx)
		if err == nil {
			s.logger.Info("supervisor: core loop exited cleanly")
			return nil
		}

		s.logger.WithError(err).Warn("supervisor: core loop crashed, restarting after cooldown")
		if !s.control.Running() {
			return nil
		}

		t := time.NewTimer(s.cfg.SleepOnFail)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
		t.Stop()

		if !s.control.Running() {
			return nil
		}
	}
}

// StopAuxiliary stops every registered auxiliary service, collecting the
// first error encountered while still attempting to stop the rest.
func (s *Supervisor) StopAuxiliary(ctx context.Context) error {
	var first error
	for _, svc := range s.auxiliary {
		if err := svc.Stop(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
