// Package lifecycle owns the process-wide run flag and exit code, and the
// signal handler that flips them. Ported from the original pusher's
// stop_handler/exit_code/run globals (see original_source's
// test_notification_pusher.py TestMain.test_stop_handler), expressed as
// atomics instead of module globals.
package lifecycle

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/netsweep/dispatchd/internal/logging"
)

// Controller holds the run flag and exit code the rest of the process polls
// and sets respectively. Zero value is not usable; construct with New.
type Controller struct {
	running  atomic.Bool
	exitCode atomic.Int32
	logger   *logging.Logger
}

// New returns a Controller with the run flag set (process starts up running).
func New(logger *logging.Logger) *Controller {
	c := &Controller{logger: logger}
	c.running.Store(true)
	return c
}

// Running reports whether the process should keep looping.
func (c *Controller) Running() bool {
	return c.running.Load()
}

// ExitCode returns the code the process should exit with once it stops.
func (c *Controller) ExitCode() int {
	return int(c.exitCode.Load())
}

// Stop clears the run flag without changing the exit code. Used for
// programmatic/normal shutdown (e.g. tests) rather than a signal.
func (c *Controller) Stop() {
	c.running.Store(false)
}

// HandleSignal is the stop handler: it clears the run flag and sets the
// exit code to 128+signum, matching the original implementation exactly
// (including negative and zero signum, which the original's unit tests
// exercise directly).
func (c *Controller) HandleSignal(signum int) {
	c.running.Store(false)
	c.exitCode.Store(int32(128 + signum))
	if c.logger != nil {
		c.logger.WithField("signum", signum).Info("lifecycle: stop signal received")
	}
}

// Watch installs OS signal handling for SIGTERM, SIGINT, SIGHUP and SIGQUIT,
// each routed through HandleSignal with its numeric value. It returns a
// stop function that restores default signal handling.
func (c *Controller) Watch() (stop func()) {
	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig, ok := <-sigCh:
				if !ok {
					return
				}
				c.HandleSignal(signalNumber(sig))
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}

func signalNumber(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return int(s)
	}
	return 0
}
