package config

import (
	"errors"
	"fmt"
)

var errNotLoaded = errors.New("config: no configuration file loaded yet")

// Validate checks the invariants the dispatch core depends on: a positive
// worker pool, positive take timeout, sleep, sleep_on_fail and http.timeout,
// and a non-negative url_check.max_redirects. Queue coordinates are not
// checked.
func Validate(cfg *Config) error {
	if cfg.WorkerPoolSize <= 0 {
		return fmt.Errorf("worker_pool_size must be positive, got %d", cfg.WorkerPoolSize)
	}
	if cfg.QueueTakeTimeout <= 0 {
		return fmt.Errorf("queue_take_timeout must be positive")
	}
	if cfg.Sleep <= 0 {
		return fmt.Errorf("sleep must be positive")
	}
	if cfg.SleepOnFail <= 0 {
		return fmt.Errorf("sleep_on_fail must be positive")
	}
	if cfg.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive")
	}
	if cfg.URLCheck.MaxRedirects < 0 {
		return fmt.Errorf("url_check.max_redirects must not be negative")
	}
	return nil
}
