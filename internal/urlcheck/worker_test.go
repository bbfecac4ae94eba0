package urlcheck

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsweep/dispatchd/internal/logging"
	"github.com/netsweep/dispatchd/internal/queue"
)

type fakeAnalyzer struct {
	history *RedirectHistory
	err     error
}

func (f fakeAnalyzer) Analyze(ctx context.Context, url string, timeout time.Duration, maxRedirects int, userAgent string) (*RedirectHistory, error) {
	return f.history, f.err
}

func testConfig() Config {
	return Config{TakeTimeout: time.Millisecond, MaxRedirects: 10, UserAgent: "dispatchd-urlcheck", HTTPTimeout: time.Second, RecheckDelay: time.Second}
}

func TestStepRequeuesForRecheckOnErrorHistory(t *testing.T) {
	input := queue.NewMemoryAdapter("input")
	output := queue.NewMemoryAdapter("output")
	task := input.Seed(map[string]interface{}{
		"url":        "www.leningrad.spb.ru",
		"url_id":     666,
		"recheck":    false,
		"suspicious": "whazzzup",
	}, map[string]interface{}{"pri": "hi"})
	_ = task

	analyzer := fakeAnalyzer{history: &RedirectHistory{Types: []string{"ERROR", "APPLE"}}}
	w := New(testConfig(), input, output, analyzer, logging.GetLogger("urlcheck-test"))

	require.NoError(t, w.Step(context.Background()))

	require.Equal(t, 1, input.Len())
	// The recheck is put with RecheckDelay, so it only becomes visible after that.
	time.Sleep(testConfig().RecheckDelay)
	requeued, err := input.Take(context.Background(), 0)
	require.NoError(t, err)
	require.NotNil(t, requeued)
	assert.Equal(t, true, requeued.Data["recheck"])
	assert.Equal(t, "www.leningrad.spb.ru", requeued.Data["url"])
	assert.Equal(t, 666, requeued.Data["url_id"])
	assert.Equal(t, "whazzzup", requeued.Data["suspicious"], "recheck must carry over the full original task data, not just url/url_id/recheck")
	assert.Equal(t, "hi", requeued.Priority())
	assert.Equal(t, 0, output.Len())
}

func TestStepPublishesNormalVerdictToOutput(t *testing.T) {
	input := queue.NewMemoryAdapter("input")
	output := queue.NewMemoryAdapter("output")
	input.Seed(map[string]interface{}{
		"url":     "www.leningrad.spb.ru",
		"url_id":  666,
		"recheck": false,
	}, nil)

	analyzer := fakeAnalyzer{history: &RedirectHistory{
		Types:    []string{"APPLE", "BLACKBERRY"},
		URLs:     []string{"apple.com", "blackberry.com"},
		Counters: []string{"a", "b"},
	}}
	w := New(testConfig(), input, output, analyzer, logging.GetLogger("urlcheck-test"))

	require.NoError(t, w.Step(context.Background()))

	assert.Equal(t, 0, input.Len())
	assert.Equal(t, 1, output.Len())
	published, err := output.Take(context.Background(), 0)
	require.NoError(t, err)
	require.NotNil(t, published)
	assert.Equal(t, "normal", published.Data["check_type"])
	assert.Equal(t, 666, published.Data["url_id"])
}

func TestStepNoOpWhenAnalyzerReturnsNoClassification(t *testing.T) {
	input := queue.NewMemoryAdapter("input")
	output := queue.NewMemoryAdapter("output")
	input.Seed(map[string]interface{}{"url": "www.x", "url_id": 1, "recheck": false}, nil)

	w := New(testConfig(), input, output, fakeAnalyzer{}, logging.GetLogger("urlcheck-test"))
	require.NoError(t, w.Step(context.Background()))

	assert.Equal(t, 0, input.Len())
	assert.Equal(t, 0, output.Len())
}

func TestStepReturnsNilWhenNoTaskReady(t *testing.T) {
	input := queue.NewMemoryAdapter("input")
	output := queue.NewMemoryAdapter("output")

	w := New(testConfig(), input, output, fakeAnalyzer{}, logging.GetLogger("urlcheck-test"))
	require.NoError(t, w.Step(context.Background()))
}
