package api

import (
	"context"
	"sync"

	"github.com/systmms/commonspack/pkg/apierror"
)

// Executor runs completion callbacks
type Executor interface {
	Dispatch(fn func())
}

// Inline runs callbacks on the goroutine that finished the request
type Inline struct{}

// Dispatch runs fn immediately
func (Inline) Dispatch(fn func()) { fn() }

// SerialExecutor runs callbacks one at a time, in submission order, on a
// single goroutine. The queue is unbounded, so Dispatch never blocks and a
// callback may dispatch follow-up work onto the same executor.
type SerialExecutor struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	done chan struct{}
}

// NewSerialExecutor starts the executor goroutine with room for capacity
// queued callbacks before the queue grows. Close stops it.
func NewSerialExecutor(capacity int) *SerialExecutor {
	e := &SerialExecutor{
		queue: make([]func(), 0, capacity),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	go e.loop()
	return e
}

func (e *SerialExecutor) loop() {
	defer close(e.done)
	for {
		fn, ok := e.next()
		if !ok {
			return
		}
		fn()
	}
}

// next blocks until a callback is queued. It reports false once the
// executor is closed and drained.
func (e *SerialExecutor) next() (func(), bool) {
	e.mu.Lock()
	for len(e.queue) == 0 {
		if e.closed {
			e.mu.Unlock()
			return nil, false
		}
		e.mu.Unlock()
		<-e.wake
		e.mu.Lock()
	}
	fn := e.queue[0]
	e.queue[0] = nil
	e.queue = e.queue[1:]
	e.mu.Unlock()
	return fn, true
}

func (e *SerialExecutor) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Dispatch queues fn and returns immediately. After Close, fn runs on the
// caller's goroutine.
func (e *SerialExecutor) Dispatch(fn func()) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		fn()
		return
	}
	e.queue = append(e.queue, fn)
	e.mu.Unlock()
	e.signal()
}

// Close runs the callbacks already queued and stops the goroutine. It must
// not be called from a callback.
func (e *SerialExecutor) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.signal()
	<-e.done
}

// Task is a request running in the background
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func newTask(ctx context.Context) (*Task, context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	return &Task{cancel: cancel, done: make(chan struct{})}, ctx
}

// Cancel aborts the request. The failure callback still runs, with
// apierror.Cancelled.
func (t *Task) Cancel() {
	t.cancel()
}

// Wait blocks until the completion callback has returned
func (t *Task) Wait() {
	<-t.done
}

// Done is closed once the completion callback has returned
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Go runs call in the background. Exactly one of onSuccess or onFailure is
// dispatched through the client's executor; either may be nil.
func (c *Client) Go(ctx context.Context, call Call, onSuccess func(*Response), onFailure func(*apierror.Error)) *Task {
	task, ctx := newTask(ctx)

	go func() {
		resp, err := c.Do(ctx, call)
		c.complete(task, func() {
			if err != nil {
				if onFailure != nil {
					onFailure(apierror.Translate(err, nil))
				}
				return
			}
			if onSuccess != nil {
				onSuccess(resp)
			}
		})
	}()

	return task
}

// GoDecode is Go with the body decoded as in Decode
func GoDecode[T any](ctx context.Context, c *Client, call Call, onSuccess func(*T, *Response), onFailure func(*apierror.Error)) *Task {
	task, ctx := newTask(ctx)

	go func() {
		out, resp, err := Decode[T](ctx, c, call)
		c.complete(task, func() {
			if err != nil {
				if onFailure != nil {
					onFailure(apierror.Translate(err, nil))
				}
				return
			}
			if onSuccess != nil {
				onSuccess(out, resp)
			}
		})
	}()

	return task
}

func (c *Client) complete(task *Task, fn func()) {
	c.exec.Dispatch(func() {
		defer close(task.done)
		defer task.cancel()
		fn()
	})
}
