// Package tasks runs blocking gateway calls off the caller's loop and
// delivers their results back on it. A UI surface must never invoke the
// storage gateway on its rendering goroutine; it schedules the call with
// Go and consumes the completion on the single goroutine that owns its
// state, via Run or Dispatch.
//
// There is no cancellation of an in-flight call: dropping the runner only
// discards completions that were never dispatched.
package tasks

import (
	"fmt"
	"sync"
)

// Runner queues completed task callbacks for serial delivery on the
// goroutine that owns it.
type Runner struct {
	completions chan func()
	closing     chan struct{}
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

// NewRunner creates a runner. buffer bounds how many undelivered
// completions may pile up before workers block; values below 1 fall back
// to a small default.
func NewRunner(buffer int) *Runner {
	if buffer < 1 {
		buffer = 16
	}
	return &Runner{
		completions: make(chan func(), buffer),
		closing:     make(chan struct{}),
	}
}

// Go executes call on a worker goroutine and queues done with its result.
// done runs later on the owner's goroutine, inside Run or Dispatch, never
// on the worker. A panic inside call is recovered and delivered as an
// error through the same path.
func Go[T any](r *Runner, call func() (T, error), done func(T, error)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		value, err := invoke(call)
		select {
		case r.completions <- func() { done(value, err) }:
		case <-r.closing:
			// Runner shut down before delivery; the completion is dropped,
			// matching the advisory "ignore the callback" contract.
		}
	}()
}

func invoke[T any](call func() (T, error)) (value T, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task panicked: %v", p)
		}
	}()
	return call()
}

// Dispatch delivers every completion queued so far without blocking and
// reports how many ran. Embedders with their own event loop call this on
// each tick.
func (r *Runner) Dispatch() int {
	delivered := 0
	for {
		select {
		case fn, ok := <-r.completions:
			if !ok {
				return delivered
			}
			fn()
			delivered++
		default:
			return delivered
		}
	}
}

// Run delivers completions serially until Close. It must be called on the
// goroutine that owns the caller's state.
func (r *Runner) Run() {
	for fn := range r.completions {
		fn()
	}
}

// Close waits for in-flight tasks to finish, then releases Run. Queued
// completions that were never dispatched are discarded.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		close(r.closing)
		r.wg.Wait()
		close(r.completions)
	})
}
