package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps logrus.Logger, tagging every entry with a component name.
type Logger struct {
	*logrus.Logger
	component string
}

// Fields is a type alias for logrus.Fields to keep call sites logrus-free.
type Fields = logrus.Fields

// Config describes how to set up logging. Field names mirror the
// configuration file's LOGGING section (spec.md §6 / SPEC_FULL.md §6.2).
type Config struct {
	Level          string `mapstructure:"level"`
	Format         string `mapstructure:"format"` // "text" or "json"
	FileEnabled    bool   `mapstructure:"file_enabled"`
	FilePath       string `mapstructure:"file_path"`
	MaxFileSize    int    `mapstructure:"max_file_size"` // bytes
	BackupCount    int    `mapstructure:"backup_count"`
	ConsoleEnabled bool   `mapstructure:"console_enabled"`
}

// WithField returns a derived logger scoped to the given key/value.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{Logger: l.Logger.WithField(key, value).Logger, component: l.component}
}

// WithFields returns a derived logger scoped to the given fields.
func (l *Logger) WithFields(fields Fields) *Logger {
	return &Logger{Logger: l.Logger.WithFields(fields).Logger, component: l.component}
}

// WithError returns a derived logger carrying an error field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.Logger.WithError(err).Logger, component: l.component}
}

func newLogger(component string) *Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	return &Logger{Logger: l, component: component}
}

// SetupLogging configures level, formatter, and output destinations. It is
// meant to be called once at startup with the loaded configuration; it
// reconfigures every logger handed out by GetLogger afterward because they
// all share the same underlying *logrus.Logger per component.
func SetupLogging(cfg *Config) error {
	mu.Lock()
	lastCfg = cfg
	mu.Unlock()

	level, _ := parseLevelOrInfo(cfg.Level)
	formatter := formatterFor(cfg.Format)

	for _, l := range allLoggers() {
		l.SetLevel(level)
		l.SetFormatter(formatter)

		switch {
		case cfg.FileEnabled && cfg.FilePath != "":
			if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
				return fmt.Errorf("logging: create log dir: %w", err)
			}
			l.SetOutput(&lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    maxSizeMB(cfg.MaxFileSize),
				MaxBackups: cfg.BackupCount,
				MaxAge:     30,
				Compress:   true,
			})
		case cfg.ConsoleEnabled:
			l.SetOutput(os.Stdout)
		default:
			l.SetOutput(noOpWriter{})
		}
	}

	return nil
}

func maxSizeMB(bytes int) int {
	mb := bytes / (1024 * 1024)
	if mb <= 0 {
		return 10
	}
	return mb
}

func parseLevelOrInfo(level string) (logrus.Level, error) {
	l, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return logrus.InfoLevel, err
	}
	return l, nil
}

func formatterFor(format string) logrus.Formatter {
	if strings.EqualFold(format, "json") {
		return &logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05"}
	}
	return &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"}
}

type noOpWriter struct{}

func (noOpWriter) Write(p []byte) (int, error) { return len(p), nil }
