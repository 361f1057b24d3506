// Package loop binds schedulers to event loops.
//
// EventLoop runs on github.com/joeycumines/go-eventloop: idle callbacks are
// setImmediate tasks and delayed callbacks are setTimeout timers. Manual is
// a virtual-clock loop for tests and headless runs.
package loop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/joeycumines/go-eventloop"

	"github.com/vango-dev/vtree/pkg/sched"
)

// timerBit marks TaskIDs that refer to setTimeout timers rather than
// setImmediate tasks. Both ID spaces stay below 2^53.
const timerBit sched.TaskID = 1 << 62

// EventLoop adapts an eventloop.Loop to sched.Loop.
type EventLoop struct {
	loop   *eventloop.Loop
	js     *eventloop.JS
	logger *slog.Logger

	mu        sync.Mutex
	intervals map[uint64]struct{}
}

var _ Driver = (*EventLoop)(nil)

// Driver is a sched.Loop that can also be entered from outside and can run
// periodic ticks.
type Driver interface {
	sched.Loop
	// Submit queues fn to run on the loop.
	Submit(fn func()) error
	// Every runs fn every d until stop is called.
	Every(d time.Duration, fn func()) (stop func(), err error)
}

// Option configures an EventLoop.
type Option func(*EventLoop)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *EventLoop) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an event loop. It does nothing until Run is called.
func New(opts ...Option) (*EventLoop, error) {
	l, err := eventloop.New()
	if err != nil {
		return nil, err
	}
	js, err := eventloop.NewJS(l)
	if err != nil {
		_ = l.Close()
		return nil, err
	}
	e := &EventLoop{
		loop:      l,
		js:        js,
		logger:    slog.Default(),
		intervals: make(map[uint64]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run runs the loop and blocks until Shutdown is called or ctx is done.
// Stopping through Shutdown or a cancelled ctx yields nil.
func (e *EventLoop) Run(ctx context.Context) error {
	err := e.loop.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, eventloop.ErrLoopTerminated) {
		return nil
	}
	return err
}

// Shutdown stops the loop after queued work has drained.
func (e *EventLoop) Shutdown(ctx context.Context) error {
	err := e.loop.Shutdown(ctx)
	if errors.Is(err, eventloop.ErrLoopTerminated) {
		return nil
	}
	return err
}

// Submit runs fn on the loop goroutine. It is safe to call from any goroutine.
func (e *EventLoop) Submit(fn func()) error {
	return e.loop.Submit(fn)
}

// ScheduleIdle implements sched.Loop.
func (e *EventLoop) ScheduleIdle(fn func()) sched.TaskID {
	id, err := e.js.SetImmediate(fn)
	if err != nil {
		e.logger.Debug("loop: set immediate failed", "error", err)
		return 0
	}
	return sched.TaskID(id)
}

// ScheduleAfter implements sched.Loop. Delays are rounded down to whole
// milliseconds.
func (e *EventLoop) ScheduleAfter(d time.Duration, fn func()) sched.TaskID {
	id, err := e.js.SetTimeout(fn, int(d/time.Millisecond))
	if err != nil {
		e.logger.Debug("loop: set timeout failed", "error", err)
		return 0
	}
	return sched.TaskID(id) | timerBit
}

// Cancel implements sched.Loop.
func (e *EventLoop) Cancel(id sched.TaskID) {
	if id == 0 {
		return
	}
	var err error
	if id&timerBit != 0 {
		err = e.js.ClearTimeout(uint64(id &^ timerBit))
	} else {
		err = e.js.ClearImmediate(uint64(id))
	}
	if err != nil {
		// Already fired.
		e.logger.Debug("loop: cancel", "id", uint64(id), "error", err)
	}
}

// Every runs fn on the loop every d until stop is called.
func (e *EventLoop) Every(d time.Duration, fn func()) (stop func(), err error) {
	ms := int(d / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	id, err := e.js.SetInterval(fn, ms)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.intervals[id] = struct{}{}
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		_, ok := e.intervals[id]
		delete(e.intervals, id)
		e.mu.Unlock()
		if ok {
			_ = e.js.ClearInterval(id)
		}
	}, nil
}
