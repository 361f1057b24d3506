package termhost

import (
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vango-dev/vtree/pkg/loop"
	"github.com/vango-dev/vtree/pkg/sched"
)

// ErrLoopClosed is returned by Submit and Every after Close.
var ErrLoopClosed = errors.New("termhost: loop closed")

// wakeMsg tells the model that callbacks are ready to run.
type wakeMsg struct{}

// TeaLoop is a loop.Driver whose callbacks run inside a bubbletea
// program's Update. Timers fire on their own goroutines and only move
// callbacks into the ready queue; RunPending executes them.
type TeaLoop struct {
	mu     sync.Mutex
	send   func(tea.Msg)
	nextID sched.TaskID
	ready  []teaTask
	timers map[sched.TaskID]*time.Timer
	woken  bool
	closed bool
}

type teaTask struct {
	id sched.TaskID
	fn func()
}

var _ loop.Driver = (*TeaLoop)(nil)

// NewTeaLoop creates a loop that is not attached to a program yet.
// Callbacks queue up until Attach.
func NewTeaLoop() *TeaLoop {
	return &TeaLoop{timers: make(map[sched.TaskID]*time.Timer)}
}

// Attach routes wake-ups through send, normally (*tea.Program).Send.
func (l *TeaLoop) Attach(send func(tea.Msg)) {
	l.mu.Lock()
	l.send = send
	l.mu.Unlock()
	l.wake()
}

// ScheduleIdle implements sched.Loop.
func (l *TeaLoop) ScheduleIdle(fn func()) sched.TaskID {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return 0
	}
	l.nextID++
	id := l.nextID
	l.ready = append(l.ready, teaTask{id: id, fn: fn})
	l.mu.Unlock()
	l.wake()
	return id
}

// ScheduleAfter implements sched.Loop.
func (l *TeaLoop) ScheduleAfter(d time.Duration, fn func()) sched.TaskID {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0
	}
	l.nextID++
	id := l.nextID
	l.timers[id] = time.AfterFunc(d, func() {
		l.mu.Lock()
		if _, ok := l.timers[id]; !ok {
			l.mu.Unlock()
			return
		}
		delete(l.timers, id)
		l.ready = append(l.ready, teaTask{id: id, fn: fn})
		l.mu.Unlock()
		l.wake()
	})
	return id
}

// Cancel implements sched.Loop.
func (l *TeaLoop) Cancel(id sched.TaskID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.timers[id]; ok {
		t.Stop()
		delete(l.timers, id)
		return
	}
	for i, t := range l.ready {
		if t.id == id {
			l.ready = append(l.ready[:i], l.ready[i+1:]...)
			return
		}
	}
}

// Submit queues fn as an idle callback.
func (l *TeaLoop) Submit(fn func()) error {
	if l.ScheduleIdle(fn) == 0 {
		return ErrLoopClosed
	}
	return nil
}

// Every queues fn every d until stop is called.
func (l *TeaLoop) Every(d time.Duration, fn func()) (stop func(), err error) {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return nil, ErrLoopClosed
	}
	if d < time.Millisecond {
		d = time.Millisecond
	}
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				l.ScheduleIdle(fn)
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}, nil
}

// RunPending runs the callbacks that are ready, in the order they became
// ready, and returns how many ran. Callbacks queued while running wait for
// the next wake-up. It must be called from the program's Update.
func (l *TeaLoop) RunPending() int {
	l.mu.Lock()
	batch := l.ready
	l.ready = nil
	l.woken = false
	l.mu.Unlock()

	for _, t := range batch {
		t.fn()
	}
	l.mu.Lock()
	more := len(l.ready) > 0
	l.mu.Unlock()
	if more {
		l.wake()
	}
	return len(batch)
}

// Pending returns the number of ready callbacks and armed timers.
func (l *TeaLoop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ready) + len(l.timers)
}

// Close stops every timer and drops queued callbacks.
func (l *TeaLoop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	for id, t := range l.timers {
		t.Stop()
		delete(l.timers, id)
	}
	l.ready = nil
}

// wake sends one wakeMsg per batch. Send blocks until the program reads
// it, so it never runs on the caller's goroutine.
func (l *TeaLoop) wake() {
	l.mu.Lock()
	if l.woken || l.send == nil || len(l.ready) == 0 {
		l.mu.Unlock()
		return
	}
	l.woken = true
	send := l.send
	l.mu.Unlock()
	go send(wakeMsg{})
}
