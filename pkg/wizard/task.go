// task.go - Cancellable background work with a single result.
package wizard

import (
	"context"
	"sync"
)

// Task runs one function in its own goroutine. Cancel stops it through its
// context; Wait blocks until it has returned.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}

	once sync.Once
	err  error
}

// Go starts fn with a context derived from ctx.
func Go(ctx context.Context, fn func(ctx context.Context) error) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer cancel()
		t.err = fn(ctx)
	}()
	return t
}

// Cancel asks the task to stop. It is safe to call more than once.
func (t *Task) Cancel() {
	t.once.Do(t.cancel)
}

// Done is closed when the task has returned.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task returns and reports its error.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}
