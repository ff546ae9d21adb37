package task

import (
	"context"
	"log/slog"

	"github.com/phrazzld/vocab-drill/internal/config"
	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/service/drill"
)

// Session is the part of a drill session the dispatcher drives.
type Session interface {
	Current(ctx context.Context) (*drill.Prompt, error)
	Submit(ctx context.Context, marker, translation string) (*drill.Outcome, error)
	Suspend(ctx context.Context) error
}

// ProgressReader reads tier progress.
type ProgressReader interface {
	ProgressAll(ctx context.Context, tiers []string) ([]domain.Progress, error)
}

var _ Session = (*drill.Session)(nil)
var _ ProgressReader = (*drill.Engine)(nil)

// Dispatcher queues drill requests onto a worker pool. Every method returns
// immediately; the result arrives on the returned channel, which yields one
// Result and is then closed. A request the queue cannot take fails with
// ErrQueueFull or ErrQueueClosed instead.
type Dispatcher struct {
	queue  *TaskQueue
	pool   *WorkerPool
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher sized by cfg. Call Start before use.
func NewDispatcher(cfg config.EngineConfig, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		panic("logger cannot be nil")
	}

	queue := NewTaskQueue(cfg.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: cfg.WorkerCount}, logger)

	d := &Dispatcher{
		queue:  queue,
		pool:   pool,
		logger: logger.With(slog.String("component", "dispatcher")),
	}
	pool.SetErrorHandler(d.handleError)
	return d
}

// Start launches the workers.
func (d *Dispatcher) Start() {
	d.pool.Start()
}

// Stop rejects new requests, cancels running ones and resolves the rest
// with ErrQueueClosed.
func (d *Dispatcher) Stop() {
	d.queue.Close()
	d.pool.Stop()
}

func (d *Dispatcher) handleError(task Task, err error) {
	d.logger.Debug("request failed",
		slog.String("task_id", task.ID().String()),
		slog.String("task_type", task.Type()),
		slog.String("error", err.Error()))
}

// Prompt fetches the session's pending prompt, drawing a word if needed.
func (d *Dispatcher) Prompt(ctx context.Context, s Session) (<-chan Result[*drill.Prompt], error) {
	return submit(d, TaskTypePrompt, func(taskCtx context.Context) (*drill.Prompt, error) {
		return s.Current(requestContext(taskCtx, ctx))
	})
}

// Answer evaluates and records an answer for the session's pending word.
func (d *Dispatcher) Answer(ctx context.Context, s Session, marker, translation string) (<-chan Result[*drill.Outcome], error) {
	return submit(d, TaskTypeAnswer, func(taskCtx context.Context) (*drill.Outcome, error) {
		return s.Submit(requestContext(taskCtx, ctx), marker, translation)
	})
}

// Suspend flushes the session.
func (d *Dispatcher) Suspend(ctx context.Context, s Session) (<-chan Result[struct{}], error) {
	return submit(d, TaskTypeSuspend, func(taskCtx context.Context) (struct{}, error) {
		return struct{}{}, s.Suspend(requestContext(taskCtx, ctx))
	})
}

// Progress reads the progress of tiers.
func (d *Dispatcher) Progress(ctx context.Context, r ProgressReader, tiers []string) (<-chan Result[[]domain.Progress], error) {
	return submit(d, TaskTypeProgress, func(taskCtx context.Context) ([]domain.Progress, error) {
		return r.ProgressAll(requestContext(taskCtx, ctx), tiers)
	})
}

func submit[T any](d *Dispatcher, taskType string, fn func(ctx context.Context) (T, error)) (<-chan Result[T], error) {
	t := newFuncTask(taskType, fn)
	if err := d.queue.Enqueue(t); err != nil {
		return nil, err
	}
	return t.result, nil
}

// requestContext carries the request's values, such as its logger, into
// the worker's context. Cancellation follows the worker pool only: a
// request abandoned by its caller still completes.
func requestContext(taskCtx, reqCtx context.Context) context.Context {
	return valuesContext{Context: taskCtx, values: reqCtx}
}

type valuesContext struct {
	context.Context
	values context.Context
}

func (c valuesContext) Value(key any) any {
	if v := c.values.Value(key); v != nil {
		return v
	}
	return c.Context.Value(key)
}

// Wait blocks until the result arrives or ctx is done.
func Wait[T any](ctx context.Context, results <-chan Result[T]) (T, error) {
	select {
	case r, ok := <-results:
		if !ok {
			var zero T
			return zero, ErrQueueClosed
		}
		return r.Value, r.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
