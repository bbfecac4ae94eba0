// Command dispatchd-notify runs the notification-pusher mode of dispatchd:
// drains a task queue and delivers each task as an HTTP callback.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/netsweep/dispatchd/internal/auth"
	"github.com/netsweep/dispatchd/internal/completion"
	"github.com/netsweep/dispatchd/internal/config"
	"github.com/netsweep/dispatchd/internal/dispatch"
	"github.com/netsweep/dispatchd/internal/lifecycle"
	"github.com/netsweep/dispatchd/internal/logging"
	"github.com/netsweep/dispatchd/internal/notifier"
	"github.com/netsweep/dispatchd/internal/queue"
	"github.com/netsweep/dispatchd/internal/resources"
	"github.com/netsweep/dispatchd/internal/status"
	"github.com/netsweep/dispatchd/internal/statusfeed"
	"github.com/netsweep/dispatchd/internal/supervisor"
	"github.com/netsweep/dispatchd/internal/workerpool"
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
		fmt.Fprintln(os.Stderr, "dispatchd-notify: -c/--config is required")
		return 1
	}

	if *daemon {
		if err := supervisor.Daemonize(); err != nil {
			fmt.Fprintf(os.Stderr, "dispatchd-notify: daemonize: %v\n", err)
			return 1
		}
	}

	if *pidfile != "" {
		if err := supervisor.WritePidfile(*pidfile); err != nil {
			fmt.Fprintf(os.Stderr, "dispatchd-notify: pidfile: %v\n", err)
			return 1
		}
	}

	mgr := config.NewManager()
	if err := mgr.Load(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "dispatchd-notify: config: %v\n", err)
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
		fmt.Fprintf(os.Stderr, "dispatchd-notify: logging: %v\n", err)
		return 1
	}
	logger := logging.GetLogger("dispatchd-notify")

	mgr.OnChange(func(c *config.Config) {
		_ = logging.SetupLogging(&logging.Config{
			Level: c.Logging.Level, Format: c.Logging.Format,
			FileEnabled: c.Logging.FileEnabled, FilePath: c.Logging.FilePath,
			MaxFileSize: c.Logging.MaxFileSize, BackupCount: c.Logging.BackupCount,
			ConsoleEnabled: c.Logging.ConsoleEnabled,
		})
	})
	if err := mgr.Watch(); err != nil {
		logger.WithError(err).Warn("dispatchd-notify: config hot reload disabled")
	}

	control := lifecycle.New(logger)
	stopSignals := control.Watch()
	defer stopSignals()

	q := queue.NewMemoryAdapter(cfg.Notification.Queue.Tube)

	pool := workerpool.New(cfg.WorkerPoolSize, logging.GetLogger("workerpool"))
	completed := completion.New(cfg.WorkerPoolSize)
	worker := notifier.New(notifier.Config{
		ConnectionTimeout: cfg.HTTP.ConnectionTimeout,
		Timeout:           cfg.HTTP.Timeout,
		TLSVerify:         cfg.HTTP.TLSVerify,
	}, logging.GetLogger("notifier"))

	loop := dispatch.New(dispatch.Config{
		TakeTimeout: cfg.QueueTakeTimeout,
		Sleep:       cfg.Sleep,
	}, q, pool, completed, worker, control, logging.GetLogger("dispatch"))

	var authHandler *auth.Handler
	if cfg.StatusAuth.JWTSecret != "" {
		h, err := auth.NewHandler(cfg.StatusAuth.JWTSecret, logging.GetLogger("auth"))
		if err != nil {
			logger.WithError(err).Warn("dispatchd-notify: status auth disabled")
		} else {
			authHandler = h
		}
	}

	sampler, err := resources.NewSampler()
	if err != nil {
		logger.WithError(err).Warn("dispatchd-notify: resource sampler unavailable")
		sampler = nil
	}

	statusSrv := status.New(status.Config{
		Enabled: cfg.Status.Enabled,
		Host:    cfg.Status.Host,
		Port:    cfg.Status.Port,
	}, loop, authHandler, logging.GetLogger("status"))
	if sampler != nil {
		statusSrv = statusSrv.WithSampler(sampler)
	}

	if cfg.StatusFeed.Enabled {
		loop = loop.WithFeed(statusfeed.NewHub(logging.GetLogger("statusfeed")))
	}

	sup := supervisor.New(supervisor.Config{SleepOnFail: cfg.SleepOnFail}, control, logger)
	sup.WithAuxiliary(statusSrv, statusSrv.Start)

	ctx := context.Background()
	if err := sup.Run(ctx, loop.Run); err != nil {
		logger.WithError(err).Error("dispatchd-notify: supervisor exited with error")
	}

	return control.ExitCode()
}
