package task

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	TaskTypePrompt   = "prompt"
	TaskTypeAnswer   = "answer"
	TaskTypeSuspend  = "suspend"
	TaskTypeProgress = "progress"
)

// Task is a unit of work executed by the worker pool.
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Status returns the current task status
	Status() TaskStatus

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// resolver is implemented by tasks that must report a result even when
// they never ran to completion.
type resolver interface {
	resolve(err error)
}

// Result is the outcome of a task.
type Result[T any] struct {
	TaskID uuid.UUID
	Value  T
	Err    error
}

// funcTask adapts a function into a Task whose result is delivered on a
// buffered channel.
type funcTask[T any] struct {
	id       uuid.UUID
	taskType string
	fn       func(ctx context.Context) (T, error)
	result   chan Result[T]

	mu     sync.Mutex
	status TaskStatus
	once   sync.Once
}

func newFuncTask[T any](taskType string, fn func(ctx context.Context) (T, error)) *funcTask[T] {
	return &funcTask[T]{
		id:       uuid.New(),
		taskType: taskType,
		fn:       fn,
		result:   make(chan Result[T], 1),
		status:   TaskStatusPending,
	}
}

func (t *funcTask[T]) ID() uuid.UUID { return t.id }

func (t *funcTask[T]) Type() string { return t.taskType }

func (t *funcTask[T]) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *funcTask[T]) setStatus(status TaskStatus) {
	t.mu.Lock()
	t.status = status
	t.mu.Unlock()
}

// Execute runs the function and publishes its result.
func (t *funcTask[T]) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)

	value, err := t.fn(ctx)
	t.deliver(Result[T]{TaskID: t.id, Value: value, Err: err})
	return err
}

func (t *funcTask[T]) resolve(err error) {
	t.deliver(Result[T]{TaskID: t.id, Err: err})
}

func (t *funcTask[T]) deliver(r Result[T]) {
	t.once.Do(func() {
		if r.Err != nil {
			t.setStatus(TaskStatusFailed)
		} else {
			t.setStatus(TaskStatusCompleted)
		}
		t.result <- r
		close(t.result)
	})
}
