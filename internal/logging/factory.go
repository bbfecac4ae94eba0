package logging

import "sync"

var (
	mu      sync.Mutex
	byName  = make(map[string]*Logger)
	lastCfg *Config
)

// GetLogger returns the shared Logger for the given component, creating it
// on first use. Every logger returned by GetLogger is reconfigured in place
// by a later SetupLogging call, since dispatchd's startup sequence creates
// component loggers before the configuration file has been loaded.
func GetLogger(component string) *Logger {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := byName[component]; ok {
		return l
	}
	l := newLogger(component)
	byName[component] = l
	if lastCfg != nil {
		applyLocked(l, lastCfg)
	}
	return l
}

func allLoggers() []*Logger {
	mu.Lock()
	defer mu.Unlock()
	out := make([]*Logger, 0, len(byName))
	for _, l := range byName {
		out = append(out, l)
	}
	return out
}

func applyLocked(l *Logger, cfg *Config) {
	// Applying a single logger's settings re-derives the formatter/level but
	// intentionally skips the MkdirAll/file-output side effect performed in
	// SetupLogging; a logger created after SetupLogging has already run
	// still needs level/format, but re-running file setup per-logger would
	// truncate rotation state.
	level, err := parseLevelOrInfo(cfg.Level)
	l.SetLevel(level)
	if err == nil {
		l.SetFormatter(formatterFor(cfg.Format))
	}
}
