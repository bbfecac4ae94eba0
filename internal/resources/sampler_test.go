package resources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSamplerSampleSelf(t *testing.T) {
	s, err := NewSampler()
	require.NoError(t, err)

	snap := s.Sample(10 * time.Millisecond)
	require.GreaterOrEqual(t, snap.RSSBytes, uint64(0))
}
