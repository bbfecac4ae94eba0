// Package config loads dispatchd's configuration: queue coordinates for
// both dispatch modes, worker pool sizing, HTTP callback tuning, and the
// ambient logging/status sections. Loading goes through Viper against a
// YAML file, with DISPATCHD_-prefixed environment overrides, mirroring
// the teacher's config manager.
package config

import "time"

// QueueEndpoint names a broker tube: host, port, keyspace, and tube name.
type QueueEndpoint struct {
	Host  string `mapstructure:"host"`
	Port  int    `mapstructure:"port"`
	Space int    `mapstructure:"space"`
	Tube  string `mapstructure:"tube"`
}

// NotificationConfig is notification-pusher mode's queue coordinates.
type NotificationConfig struct {
	Queue QueueEndpoint `mapstructure:"queue"`
}

// URLCheckConfig is url-checker mode's queue coordinates: one input tube
// for URL-check tasks, one output tube for terminal classifications.
type URLCheckConfig struct {
	Input  QueueEndpoint `mapstructure:"input_queue"`
	Output QueueEndpoint `mapstructure:"output_queue"`

	MaxRedirects int           `mapstructure:"max_redirects"`
	UserAgent    string        `mapstructure:"user_agent"`
	RecheckDelay time.Duration `mapstructure:"recheck_delay"`
}

// HTTPConfig tunes the Notification Worker's outbound HTTP client.
type HTTPConfig struct {
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout"`
	Timeout           time.Duration `mapstructure:"timeout"`
	TLSVerify         bool          `mapstructure:"tls_verify"`
}

// StatusConfig is the observational HTTP surface's bind address.
type StatusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// StatusAuthConfig gates the /status/detailed endpoint behind a JWT bearer
// check. Empty JWTSecret disables the check. The status feed is not gated.
type StatusAuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// StatusFeedConfig controls the optional WebSocket status feed.
type StatusFeedConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Config is the fully loaded, read-only configuration for one dispatchd
// process. Both cmd/ entrypoints load the same struct; each mode only
// reads the sections it needs.
type Config struct {
	Notification NotificationConfig `mapstructure:"notification"`
	URLCheck     URLCheckConfig     `mapstructure:"url_check"`

	QueueTakeTimeout time.Duration `mapstructure:"queue_take_timeout"`
	WorkerPoolSize   int           `mapstructure:"worker_pool_size"`
	Sleep            time.Duration `mapstructure:"sleep"`
	SleepOnFail      time.Duration `mapstructure:"sleep_on_fail"`

	HTTP HTTPConfig `mapstructure:"http"`

	Logging    LoggingSection   `mapstructure:"logging"`
	Status     StatusConfig     `mapstructure:"status"`
	StatusAuth StatusAuthConfig `mapstructure:"status_detailed_auth"`
	StatusFeed StatusFeedConfig `mapstructure:"status_feed"`
}

// LoggingSection mirrors logging.Config's mapstructure tags so Viper can
// unmarshal straight into it without a translation step.
type LoggingSection struct {
	Level          string `mapstructure:"level"`
	Format         string `mapstructure:"format"`
	FileEnabled    bool   `mapstructure:"file_enabled"`
	FilePath       string `mapstructure:"file_path"`
	MaxFileSize    int    `mapstructure:"max_file_size"`
	BackupCount    int    `mapstructure:"backup_count"`
	ConsoleEnabled bool   `mapstructure:"console_enabled"`
}
