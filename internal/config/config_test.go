package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "dispatchd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
notification:
  queue:
    host: 127.0.0.1
    port: 11300
    tube: notifications
`)

	m := NewManager()
	require.NoError(t, m.Load(path))

	cfg := m.Get()
	assert.Equal(t, 10, cfg.WorkerPoolSize)
	assert.Equal(t, 5*time.Second, cfg.QueueTakeTimeout)
	assert.Equal(t, "127.0.0.1", cfg.Notification.Queue.Host)
	assert.Equal(t, 11300, cfg.Notification.Queue.Port)
	assert.True(t, cfg.HTTP.TLSVerify)
}

func TestLoadRejectsInvalidWorkerPoolSize(t *testing.T) {
	path := writeConfig(t, `
worker_pool_size: 0
`)

	m := NewManager()
	err := m.Load(path)
	require.Error(t, err)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	path := writeConfig(t, `
worker_pool_size: 5
`)

	t.Setenv("DISPATCHD_WORKER_POOL_SIZE", "42")

	m := NewManager()
	require.NoError(t, m.Load(path))
	assert.Equal(t, 42, m.Get().WorkerPoolSize)
}

func TestOnChangeCalledAfterReload(t *testing.T) {
	path := writeConfig(t, `
worker_pool_size: 5
`)

	m := NewManager()
	require.NoError(t, m.Load(path))

	called := make(chan *Config, 1)
	m.OnChange(func(c *Config) { called <- c })

	require.NoError(t, os.WriteFile(path, []byte("worker_pool_size: 9\n"), 0o644))
	require.NoError(t, m.Load(path))

	select {
	case c := <-called:
		assert.Equal(t, 9, c.WorkerPoolSize)
	default:
		t.Fatal("OnChange callback was not invoked")
	}
}
