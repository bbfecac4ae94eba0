package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch starts watching the loaded configuration file's directory for
// writes and calls Load again on change, notifying OnChange callbacks.
// Reload errors are logged and the previously loaded configuration is kept
// in place — a bad edit never tears down a running daemon.
func (m *Manager) Watch() error {
	m.mu.Lock()
	path := m.path
	m.mu.Unlock()

	if path == "" {
		return errNotLoaded
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}

	m.mu.Lock()
	m.watcher = watcher
	m.mu.Unlock()

	go m.watchLoop(watcher, path)
	return nil
}

func (m *Manager) watchLoop(watcher *fsnotify.Watcher, path string) {
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := m.Load(path); err != nil {
				m.logger.WithError(err).Warn("Configuration reload failed, keeping previous configuration")
			} else {
				m.logger.Info("Configuration reloaded")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.logger.WithError(err).Warn("Configuration watcher error")
		}
	}
}

// StopWatch stops a previously started Watch, if any.
func (m *Manager) StopWatch() error {
	m.mu.Lock()
	w := m.watcher
	m.watcher = nil
	m.mu.Unlock()

	if w == nil {
		return nil
	}
	return w.Close()
}
