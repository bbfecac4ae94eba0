package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/netsweep/dispatchd/internal/logging"
)

// Manager loads configuration from a YAML file, applies
// DISPATCHD_-prefixed environment overrides, validates the result, and
// optionally watches the file for hot reload.
type Manager struct {
	mu        sync.RWMutex
	cfg       *Config
	path      string
	watcher   *fsnotify.Watcher
	callbacks []func(*Config)
	logger    *logging.Logger
}

// NewManager creates an unconfigured Manager.
func NewManager() *Manager {
	return &Manager{logger: logging.GetLogger("config")}
}

// Load reads path, applies defaults and environment overrides, validates,
// and stores the result. Safe to call again later (e.g. from the Watch
// hot-reload loop) to reload; existing callbacks registered via OnChange
// are notified.
func (m *Manager) Load(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("DISPATCHD")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}

	m.mu.Lock()
	m.cfg = &cfg
	m.path = path
	callbacks := append([]func(*Config){}, m.callbacks...)
	m.mu.Unlock()

	for _, cb := range callbacks {
		cb(&cfg)
	}

	return nil
}

// Get returns the currently loaded configuration. Callers must not mutate
// the returned value; it is shared.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// OnChange registers a callback invoked after every successful reload.
func (m *Manager) OnChange(cb func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, cb)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("queue_take_timeout", "5s")
	v.SetDefault("worker_pool_size", 10)
	v.SetDefault("sleep", "1s")
	v.SetDefault("sleep_on_fail", "10s")

	v.SetDefault("http.connection_timeout", "5s")
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.tls_verify", true)

	v.SetDefault("url_check.max_redirects", 10)
	v.SetDefault("url_check.user_agent", "dispatchd-urlcheck")
	v.SetDefault("url_check.recheck_delay", "5m")
	v.SetDefault("url_check.input_queue.tube", "url_check")
	v.SetDefault("url_check.output_queue.tube", "url_check_result")

	v.SetDefault("notification.queue.tube", "notifications")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.console_enabled", true)

	v.SetDefault("status.enabled", true)
	v.SetDefault("status.host", "127.0.0.1")
	v.SetDefault("status.port", 8070)
}
