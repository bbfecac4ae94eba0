package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsweep/dispatchd/internal/completion"
	"github.com/netsweep/dispatchd/internal/logging"
	"github.com/netsweep/dispatchd/internal/queue"
)

func testWorker() *Worker {
	return New(Config{Timeout: time.Second, TLSVerify: true}, logging.GetLogger("notifier-test"))
}

func TestRunAcksOnAnyHTTPResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	task := &queue.Task{ID: "t1", Data: map[string]interface{}{"callback_url": srv.URL}}
	ch := completion.New(1)

	testWorker().Run(context.Background(), task, ch)

	c, ok := ch.TryRecv()
	require.True(t, ok)
	assert.Equal(t, queue.VerdictAck, c.Verdict)
}

func TestRunBuriesOnTransportFailure(t *testing.T) {
	task := &queue.Task{ID: "t2", Data: map[string]interface{}{"callback_url": "http://127.0.0.1:0"}}
	ch := completion.New(1)

	testWorker().Run(context.Background(), task, ch)

	c, ok := ch.TryRecv()
	require.True(t, ok)
	assert.Equal(t, queue.VerdictBury, c.Verdict)
}

func TestRunBuriesOnMissingCallbackURL(t *testing.T) {
	task := &queue.Task{ID: "t3", Data: map[string]interface{}{}}
	ch := completion.New(1)

	testWorker().Run(context.Background(), task, ch)

	c, ok := ch.TryRecv()
	require.True(t, ok)
	assert.Equal(t, queue.VerdictBury, c.Verdict)
}

func TestNotificationBodyIncludesIDAlongsideData(t *testing.T) {
	body := notificationBody{Data: map[string]interface{}{"url": "https://example.com"}, ID: "abc"}
	raw, err := body.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id":"abc"`)
	assert.Contains(t, string(raw), `"url":"https://example.com"`)
}
