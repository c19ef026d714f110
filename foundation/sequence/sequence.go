// Package sequence provides a serialized execution queue. Every mutation of
// chain state runs through one queue so ledger changes never interleave.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
)

// ErrShutdown is returned for work submitted after the queue stopped.
var ErrShutdown = errors.New("sequence queue is shut down")

type job struct {
	fn   func() error
	done chan error
}

// Queue runs submitted functions one at a time in submission order.
type Queue struct {
	jobs     chan job
	shutdown chan struct{}
}

// New constructs a queue and starts its single runner goroutine. The depth
// bounds how many jobs may wait before submitters block.
func New(depth int) *Queue {
	q := Queue{
		jobs:     make(chan job, depth),
		shutdown: make(chan struct{}),
	}

	go q.run()
	return &q
}

func (q *Queue) run() {
	for {
		select {
		case j := <-q.jobs:
			j.done <- q.execute(j.fn)

		case <-q.shutdown:
			for {
				select {
				case j := <-q.jobs:
					j.done <- q.execute(j.fn)
				default:
					return
				}
			}
		}
	}
}

// execute isolates a single job: a panic inside one job must not take down
// the runner and starve every later job.
func (q *Queue) execute(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sequence job panic: %v: %s", r, debug.Stack())
		}
	}()

	return fn()
}

// Do submits the function and waits for it to run. The context bounds only
// the wait, not the function itself: a job that started always finishes.
func (q *Queue) Do(ctx context.Context, fn func() error) error {
	select {
	case <-q.shutdown:
		return ErrShutdown
	default:
	}

	j := job{fn: fn, done: make(chan error, 1)}

	select {
	case q.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting new work. Jobs already queued still run.
func (q *Queue) Shutdown() {
	select {
	case <-q.shutdown:
		return
	default:
		close(q.shutdown)
	}
}
