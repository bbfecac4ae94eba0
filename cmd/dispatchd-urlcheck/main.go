// Command dispatchd-urlcheck runs the url-checker worker mode of
// dispatchd: leases URL-check tasks, classifies redirect chains, and
// routes the outcome to an output queue or back to the input queue.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/netsweep/dispatchd/internal/auth"
	"github.com/netsweep/dispatchd/internal/config"
	"github.com/netsweep/dispatchd/internal/lifecycle"
	"github.com/netsweep/dispatchd/internal/logging"
	"github.com/netsweep/dispatchd/internal/queue"
	"github.com/netsweep/dispatchd/internal/resources"
	"github.com/netsweep/dispatchd/internal/status"
	"github.com/netsweep/dispatchd/internal/supervisor"
	"github.com/netsweep/dispatchd/internal/urlcheck"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("c", "", "path to configuration file")
	daemon := flag.Bool("d", false, "detach as a daemon")
	pidfile := flag.String("P", "", "path to write the process pid")
	flag.StringVar(configPath, "config", *configPath, "path to configuration file")
	flag.BoolVar(daemon, "daemon", *daemon, "detach as a daemon")
	flag.StringVar(pidfile, "pidfile", *pidfile, "path to write the process pid")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "dispatchd-urlcheck: -c/--config is required")
		return 1
	}

	if *daemon {
		if err := supervisor.Daemonize(); err != nil {
			fmt.Fprintf(os.Stderr, "dispatchd-urlcheck: daemonize: %v\n", err)
			return 1
		}
	}

	if *pidfile != "" {
		if err := supervisor.WritePidfile(*pidfile); err != nil {
			fmt.Fprintf(os.Stderr, "dispatchd-urlcheck: pidfile: %v\n", err)
			return 1
		}
	}

	mgr := config.NewManager()
	if err := mgr.Load(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "dispatchd-urlcheck: config: %v\n", err)
		return 1
	}
	cfg := mgr.Get()

	if err := logging.SetupLogging(&logging.Config{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		FileEnabled:    cfg.Logging.FileEnabled,
		FilePath:       cfg.Logging.FilePath,
		MaxFileSize:    cfg.Logging.MaxFileSize,
		BackupCount:    cfg.Logging.BackupCount,
		ConsoleEnabled: cfg.Logging.ConsoleEnabled,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "dispatchd-urlcheck: logging: %v\n", err)
		return 1
	}
	logger := logging.GetLogger("dispatchd-urlcheck")

	if err := mgr.Watch(); err != nil {
		logger.WithError(err).Warn("dispatchd-urlcheck: config hot reload disabled")
	}

	control := lifecycle.New(logger)
	stopSignals := control.Watch()
	defer stopSignals()

	input := queue.NewMemoryAdapter(cfg.URLCheck.Input.Tube)
	output := queue.NewMemoryAdapter(cfg.URLCheck.Output.Tube)

	analyzer, err := newConfiguredAnalyzer()
	if err != nil {
		logger.WithError(err).Error("dispatchd-urlcheck: redirect-history analyzer unavailable")
		return 1
	}

	worker := urlcheck.New(urlcheck.Config{
		TakeTimeout:  cfg.QueueTakeTimeout,
		MaxRedirects: cfg.URLCheck.MaxRedirects,
		UserAgent:    cfg.URLCheck.UserAgent,
		HTTPTimeout:  cfg.HTTP.Timeout,
		RecheckDelay: cfg.URLCheck.RecheckDelay,
	}, input, output, analyzer, logging.GetLogger("urlcheck"))

	loop := urlcheck.NewLoop(urlcheck.LoopConfig{Sleep: cfg.Sleep}, worker, control)

	var authHandler *auth.Handler
	if cfg.StatusAuth.JWTSecret != "" {
		h, err := auth.NewHandler(cfg.StatusAuth.JWTSecret, logging.GetLogger("auth"))
		if err != nil {
			logger.WithError(err).Warn("dispatchd-urlcheck: status auth disabled")
		} else {
			authHandler = h
		}
	}

	sampler, err := resources.NewSampler()
	if err != nil {
		logger.WithError(err).Warn("dispatchd-urlcheck: resource sampler unavailable")
		sampler = nil
	}

	statusSrv := status.New(status.Config{
		Enabled: cfg.Status.Enabled,
		Host:    cfg.Status.Host,
		Port:    cfg.Status.Port,
	}, urlCheckReporter{control}, authHandler, logging.GetLogger("status"))
	if sampler != nil {
		statusSrv = statusSrv.WithSampler(sampler)
	}

	sup := supervisor.New(supervisor.Config{SleepOnFail: cfg.SleepOnFail}, control, logger)
	sup.WithAuxiliary(statusSrv, statusSrv.Start)

	ctx := context.Background()
	if err := sup.Run(ctx, loop.Run); err != nil {
		logger.WithError(err).Error("dispatchd-urlcheck: supervisor exited with error")
	}

	return control.ExitCode()
}

// newConfiguredAnalyzer builds the redirect-history analyzer client.
// spec.md scopes the analyzer itself out of this daemon (§1): it is a
// separate collaborator process. This always returns a no-op analyzer;
// a production deployment replaces it with a client wired to the real
// analyzer's network address.
func newConfiguredAnalyzer() (urlcheck.Analyzer, error) {
	return noOpAnalyzer{}, nil
}

type noOpAnalyzer struct{}

func (noOpAnalyzer) Analyze(ctx context.Context, url string, timeout time.Duration, maxRedirects int, userAgent string) (*urlcheck.RedirectHistory, error) {
	return nil, nil
}

// urlCheckReporter is the minimal status.Reporter for worker mode, which
// has no worker pool or completion channel of its own (it processes one
// task per iteration, synchronously).
type urlCheckReporter struct {
	control *lifecycle.Controller
}

func (r urlCheckReporter) StatusSnapshot() status.Snapshot {
	running := r.control.Running()
	return status.Snapshot{Running: running, Ready: true}
}
