// Package notifier implements the notification worker: it delivers a
// single HTTP callback for one task and reports the outcome on a
// completion channel. Adapted from the teacher's MediaMTX HTTP client
// doRequest pattern (context-aware request construction, structured
// request/response logging), simplified to a one-shot POST.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/netsweep/dispatchd/internal/completion"
	"github.com/netsweep/dispatchd/internal/logging"
	"github.com/netsweep/dispatchd/internal/queue"
)

// ErrNoCallbackURL is returned when a task carries no callback_url field.
var ErrNoCallbackURL = errors.New("notifier: task has no callback_url")

// Config controls how the notification worker talks to callback endpoints.
type Config struct {
	ConnectionTimeout time.Duration
	Timeout           time.Duration
	TLSVerify         bool
}

// Worker delivers one task's callback over HTTP and posts the verdict to a
// completion channel. It never touches the queue directly; ack/bury is
// decided by the dispatch loop's reaper reading the completion channel.
type Worker struct {
	client *http.Client
	logger *logging.Logger
}

// New builds a Worker with a client configured per cfg. A fresh *http.Client
// is created per worker generation rather than shared, mirroring the
// teacher's per-request transport construction; callers that spin up many
// short-lived workers per dispatch tick may instead share one via NewShared.
func New(cfg Config, logger *logging.Logger) *Worker {
	return &Worker{
		client: newHTTPClient(cfg),
		logger: logger,
	}
}

// NewShared builds a Worker around an already-constructed client, letting
// the dispatch loop share one pooled transport across all workers it spawns.
func NewShared(client *http.Client, logger *logging.Logger) *Worker {
	return &Worker{client: client, logger: logger}
}

func newHTTPClient(cfg Config) *http.Client {
	transport := &http.Transport{
		TLSClientConfig: tlsConfig(cfg.TLSVerify),
	}
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}
}

// Run delivers the callback and sends exactly one Completion on done before
// returning. It never panics and never returns an error to the caller: all
// outcomes, including malformed tasks, are reported as a Verdict.
func (w *Worker) Run(ctx context.Context, task *queue.Task, done *completion.Channel) {
	verdict := w.deliver(ctx, task)
	done.Send(task, verdict)
}

func (w *Worker) deliver(ctx context.Context, task *queue.Task) queue.Verdict {
	callbackURL, ok := task.Data["callback_url"].(string)
	if !ok || callbackURL == "" {
		w.logger.WithField("task_id", task.ID).Warn("notifier: missing callback_url, burying")
		return queue.VerdictBury
	}

	payload, err := json.Marshal(notificationBody{Data: task.Data, ID: task.ID})
	if err != nil {
		w.logger.WithError(err).WithField("task_id", task.ID).Warn("notifier: failed to encode payload, burying")
		return queue.VerdictBury
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, callbackURL, bytes.NewReader(payload))
	if err != nil {
		w.logger.WithError(err).WithField("task_id", task.ID).Warn("notifier: failed to build request, burying")
		return queue.VerdictBury
	}
	req.Header.Set("Content-Type", "application/json")

	w.logger.WithFields(logging.Fields{
		"task_id": task.ID,
		"url":     callbackURL,
	}).Info("notifier: posting callback")

	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.WithError(err).WithFields(logging.Fields{
			"task_id": task.ID,
			"url":     callbackURL,
		}).Warn("notifier: callback delivery failed, burying")
		return queue.VerdictBury
	}
	defer resp.Body.Close()

	// Any completed HTTP exchange — including 4xx/5xx — acks the task. The
	// worker only reports transport-level failure as bury; interpreting
	// response status is the callback endpoint's business, not ours.
	w.logger.WithFields(logging.Fields{
		"task_id":     task.ID,
		"status_code": resp.StatusCode,
	}).Info("notifier: callback delivered")
	return queue.VerdictAck
}

type notificationBody struct {
	Data map[string]interface{} `json:"-"`
	ID   string                 `json:"id"`
}

// MarshalJSON flattens Data alongside the id field, matching the original
// pusher's payload shape of task data plus an injected "id" key.
func (n notificationBody) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(n.Data)+1)
	for k, v := range n.Data {
		flat[k] = v
	}
	flat["id"] = n.ID
	b, err := json.Marshal(flat)
	if err != nil {
		return nil, fmt.Errorf("notifier: marshal payload: %w", err)
	}
	return b, nil
}
