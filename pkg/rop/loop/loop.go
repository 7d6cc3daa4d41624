// Package loop provides Loop, a serial task queue drained by one goroutine.
//
// A task that wants to continue later posts its continuation and returns;
// the continuation runs on a fresh stack once every task queued before it
// has finished. Streams use this to pull one event per task, so the stack
// stays flat however long the stream runs and other work (pause requests,
// other streams sharing the loop) interleaves between events.
package loop

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
)

// ErrClosed reports work that was cut short because its loop closed.
var ErrClosed = errors.New("loop: closed")

type Loop struct {
	mu       sync.Mutex
	queue    []func()
	wake     chan struct{}
	done     chan struct{}
	closed   bool
	hooks    map[uint64]func()
	nextHook uint64
}

func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Start creates a loop and runs it in its own goroutine until ctx is done or
// Close is called.
func Start(ctx context.Context) *Loop {
	l := New()
	go func() {
		_ = l.Run(ctx)
	}()
	return l
}

// Post queues task. It never blocks and reports false when the loop is
// closed, in which case task will not run.
func (l *Loop) Post(task func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Run executes queued tasks one at a time. It returns nil after Close and
// ctx.Err() when ctx ends; either way the loop is closed on return.
func (l *Loop) Run(ctx context.Context) error {
	defer l.Close()

	for {
		task, ok := l.next()
		if ok {
			task()
			continue
		}

		select {
		case <-l.wake:
		case <-l.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Step runs the oldest queued task on the caller's goroutine and reports
// whether there was one. It is meant for driving a loop by hand; do not mix
// it with a concurrent Run.
func (l *Loop) Step() bool {
	task, ok := l.next()
	if ok {
		task()
	}
	return ok
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || len(l.queue) == 0 {
		return nil, false
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return task, true
}

// Close stops the loop. Queued tasks are dropped and every OnClose hook is
// started.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.queue = nil
	close(l.done)

	hooks := make([]func(), 0, len(l.hooks))
	for _, id := range slices.Sorted(maps.Keys(l.hooks)) {
		hooks = append(hooks, l.hooks[id])
	}
	l.hooks = nil
	l.mu.Unlock()

	for _, fn := range hooks {
		go fn()
	}
}

// OnClose arranges for fn to run in its own goroutine once the loop closes,
// like context.AfterFunc. On a closed loop fn is started right away. stop
// unregisters fn and reports whether it did so before fn was started.
func (l *Loop) OnClose(fn func()) (stop func() bool) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		go fn()
		return func() bool { return false }
	}
	if l.hooks == nil {
		l.hooks = make(map[uint64]func())
	}
	id := l.nextHook
	l.nextHook++
	l.hooks[id] = fn
	l.mu.Unlock()

	return func() bool {
		l.mu.Lock()
		defer l.mu.Unlock()

		if _, ok := l.hooks[id]; !ok {
			return false
		}
		delete(l.hooks, id)
		return true
	}
}

func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}
