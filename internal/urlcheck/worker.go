// Package urlcheck implements the URL-Check Worker (worker mode): lease one
// task from the input tube, classify its redirect chain, and route the
// outcome to the output tube or back to the input tube as a recheck.
// Structured the same single-task-per-iteration way as the teacher's device
// probing routines, adapted to the classify/route/ack cycle spec.md §4.5
// describes.
package urlcheck

import (
	"context"
	"time"

	"github.com/netsweep/dispatchd/internal/logging"
	"github.com/netsweep/dispatchd/internal/normalize"
	"github.com/netsweep/dispatchd/internal/queue"
)

// RedirectHistory is the triple an Analyzer returns for a URL.
type RedirectHistory struct {
	Types    []string
	URLs     []string
	Counters []string
}

// HasError reports whether the analyzer flagged the chain as an error,
// which is the trigger for a recheck rather than a terminal classification.
func (h RedirectHistory) HasError() bool {
	for _, t := range h.Types {
		if t == "ERROR" {
			return true
		}
	}
	return false
}

// Analyzer is the external redirect-history collaborator: spec.md scopes it
// out of this daemon's responsibilities entirely (it's a separate HTTP
// crawl/classification engine). A nil *RedirectHistory with a nil error
// means "no classification" (§4.5's no-op case).
type Analyzer interface {
	Analyze(ctx context.Context, url string, timeout time.Duration, maxRedirects int, userAgent string) (*RedirectHistory, error)
}

// Config controls the worker's queue timing and the parameters forwarded to
// the analyzer.
type Config struct {
	TakeTimeout  time.Duration
	MaxRedirects int
	UserAgent    string
	HTTPTimeout  time.Duration
	RecheckDelay time.Duration
}

// Worker runs one lease/classify/route/ack cycle per Step call against a
// pair of input/output queue adapters.
type Worker struct {
	cfg      Config
	input    queue.Adapter
	output   queue.Adapter
	analyzer Analyzer
	logger   *logging.Logger
}

// New builds a Worker.
func New(cfg Config, input, output queue.Adapter, analyzer Analyzer, logger *logging.Logger) *Worker {
	return &Worker{cfg: cfg, input: input, output: output, analyzer: analyzer, logger: logger}
}

// Step leases at most one task and fully processes it before returning. If
// the input tube has nothing ready, it returns immediately without calling
// the analyzer.
func (w *Worker) Step(ctx context.Context) error {
	task, err := w.input.Take(ctx, w.cfg.TakeTimeout)
	if err != nil {
		return err
	}
	if task == nil {
		return nil
	}

	w.process(ctx, task)

	if err := w.input.Ack(ctx, task); err != nil {
		w.logger.WithError(err).WithField("task_id", task.ID).Warn("urlcheck: ack failed")
	}
	return nil
}

func (w *Worker) process(ctx context.Context, task *queue.Task) {
	rawURL, _ := task.Data["url"].(string)
	urlID := task.Data["url_id"]
	recheck, _ := task.Data["recheck"].(bool)

	history, err := w.analyzer.Analyze(ctx, normalize.URL(rawURL), w.cfg.HTTPTimeout, w.cfg.MaxRedirects, w.cfg.UserAgent)
	if err != nil {
		w.logger.WithError(err).WithField("task_id", task.ID).Warn("urlcheck: analyzer failed")
		return
	}
	if history == nil {
		return
	}

	if history.HasError() && !recheck {
		w.requeueForRecheck(ctx, task)
		return
	}
	w.publishVerdict(ctx, task, urlID, history)
}

// requeueForRecheck re-enqueues the task's original data unchanged except
// for recheck, which is forced true so the next pass skips ERROR-requeue
// and routes straight to a verdict.
func (w *Worker) requeueForRecheck(ctx context.Context, task *queue.Task) {
	data := make(map[string]interface{}, len(task.Data))
	for k, v := range task.Data {
		data[k] = v
	}
	data["recheck"] = true
	if err := w.input.Put(ctx, data, w.cfg.RecheckDelay, task.Priority()); err != nil {
		w.logger.WithError(err).WithField("task_id", task.ID).Warn("urlcheck: recheck re-enqueue failed")
	}
}

func (w *Worker) publishVerdict(ctx context.Context, task *queue.Task, urlID interface{}, history *RedirectHistory) {
	data := map[string]interface{}{
		"url_id":     urlID,
		"result":     []interface{}{history.Types, history.URLs, history.Counters},
		"check_type": "normal",
	}
	if suspicious, ok := task.Data["suspicious"]; ok {
		data["suspicious"] = suspicious
	}
	if err := w.output.Put(ctx, data, 0, ""); err != nil {
		w.logger.WithError(err).WithField("task_id", task.ID).Warn("urlcheck: output put failed")
	}
}
