package supervisor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsweep/dispatchd/internal/lifecycle"
	"github.com/netsweep/dispatchd/internal/logging"
)

func TestRunRestartsCoreAfterCrashThenExitsCleanly(t *testing.T) {
	control := lifecycle.New(logging.GetLogger("supervisor-test"))
	sup := New(Config{SleepOnFail: time.Millisecond}, control, logging.GetLogger("supervisor-test"))

	var attempts int64
	core := func(ctx context.Context) error {
		n := atomic.AddInt64(&attempts, 1)
		if n == 1 {
			return errors.New("boom")
		}
		control.Stop()
		return nil
	}

	err := sup.Run(context.Background(), core)
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&attempts))
}

func TestRunStopsRestartingWhenRunFlagClearsDuringCooldown(t *testing.T) {
	control := lifecycle.New(logging.GetLogger("supervisor-test-2"))
	sup := New(Config{SleepOnFail: 50 * time.Millisecond}, control, logging.GetLogger("supervisor-test-2"))

	var attempts int64
	core := func(ctx context.Context) error {
		atomic.AddInt64(&attempts, 1)
		return errors.New("boom")
	}

	go func() {
		time.Sleep(5 * time.Millisecond)
		control.Stop()
	}()

	err := sup.Run(context.Background(), core)
	require.NoError(t, err)
	assert.Equal(t, int64(1), atomic.LoadInt64(&attempts))
}

func TestWritePidfileWritesDecimalPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatchd.pid")
	require.NoError(t, WritePidfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(raw))
}

func TestWritePidfileIsNoOpForEmptyPath(t *testing.T) {
	assert.NoError(t, WritePidfile(""))
}
