package urlcheck

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsweep/dispatchd/internal/lifecycle"
	"github.com/netsweep/dispatchd/internal/logging"
	"github.com/netsweep/dispatchd/internal/queue"
)

func TestRunStopsWhenControllerRunFlagClears(t *testing.T) {
	input := queue.NewMemoryAdapter("input")
	output := queue.NewMemoryAdapter("output")
	w := New(testConfig(), input, output, fakeAnalyzer{}, logging.GetLogger("urlcheck-loop-test"))

	control := lifecycle.New(logging.GetLogger("urlcheck-loop-lifecycle"))
	loop := NewLoop(LoopConfig{Sleep: time.Millisecond}, w, control)

	go func() {
		time.Sleep(5 * time.Millisecond)
		control.Stop()
	}()

	err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, control.Running())
}
