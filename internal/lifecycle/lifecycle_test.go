package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleSignalPositiveSignum(t *testing.T) {
	c := New(nil)
	c.HandleSignal(1)
	assert.False(t, c.Running())
	assert.Equal(t, 129, c.ExitCode())
}

func TestHandleSignalNegativeSignum(t *testing.T) {
	c := New(nil)
	c.HandleSignal(-1)
	assert.Equal(t, 127, c.ExitCode())
}

func TestHandleSignalZeroSignum(t *testing.T) {
	c := New(nil)
	c.HandleSignal(0)
	assert.Equal(t, 128, c.ExitCode())
}

func TestStopClearsRunFlagOnly(t *testing.T) {
	c := New(nil)
	c.Stop()
	assert.False(t, c.Running())
	assert.Equal(t, 0, c.ExitCode())
}
