package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// WorkerPool runs tasks from a queue on a fixed number of goroutines.
type WorkerPool struct {
	queue       <-chan Task
	workerCount int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *slog.Logger

	// errorHandler is called when a task fails; if nil, errors are only logged
	errorHandler func(task Task, err error)
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount is the number of worker goroutines; values below 1 mean 1
	WorkerCount int
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{WorkerCount: 2}
}

// NewWorkerPool creates a worker pool reading from queue.
func NewWorkerPool(queue *TaskQueue, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if queue == nil {
		panic("queue cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	logger = logger.With(slog.String("component", "worker_pool"))

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			slog.Int("specified_count", config.WorkerCount),
			slog.Int("default_count", workerCount))
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		queue:       queue.GetChannel(),
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// SetErrorHandler sets a handler for failed tasks. Call it before Start.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// Start launches the workers.
func (p *WorkerPool) Start() {
	for i := range p.workerCount {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info("worker pool started", slog.Int("workers", p.workerCount))
}

// Stop cancels running tasks and waits for the workers to exit. Tasks left
// in the queue are resolved with ErrQueueClosed.
func (p *WorkerPool) Stop() {
	p.cancel()
	p.wg.Wait()

	drained := 0
	for {
		select {
		case task, ok := <-p.queue:
			if !ok {
				p.logStopped(drained)
				return
			}
			if r, ok := task.(resolver); ok {
				r.resolve(ErrQueueClosed)
			}
			drained++
		default:
			p.logStopped(drained)
			return
		}
	}
}

func (p *WorkerPool) logStopped(drained int) {
	p.logger.Info("worker pool stopped", slog.Int("abandoned_tasks", drained))
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", slog.Int("worker_id", id))

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", slog.Int("worker_id", id))
			return

		case task, ok := <-p.queue:
			if !ok {
				p.logger.Debug("task channel closed, stopping worker", slog.Int("worker_id", id))
				return
			}
			p.processTask(task, id)
		}
	}
}

func (p *WorkerPool) processTask(task Task, workerID int) {
	log := p.logger.With(
		slog.String("task_id", task.ID().String()),
		slog.String("task_type", task.Type()),
		slog.Int("worker_id", workerID),
	)

	err := p.execute(task)
	if err == nil {
		log.Debug("task completed")
		return
	}

	log.Warn("task failed", slog.String("error", err.Error()))
	if p.errorHandler != nil {
		p.errorHandler(task, err)
	}
}

// execute runs the task and converts a panic into an error.
func (p *WorkerPool) execute(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
			if res, ok := task.(resolver); ok {
				res.resolve(err)
			}
		}
	}()

	return task.Execute(p.ctx)
}
