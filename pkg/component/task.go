package component

import (
	"errors"
	"fmt"

	"github.com/vango-dev/vtree/pkg/host"
)

// TaskState is the lifecycle state of a Task.
type TaskState uint8

const (
	Created TaskState = iota
	Running
	Closed
)

func (s TaskState) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Message outcomes recorded in metrics.
const (
	outcomeOK      = "ok"
	outcomeUnknown = "unknown"
	outcomeError   = "error"
	outcomeClosed  = "closed"
	outcomeDone    = "done"
)

// Task drives one component instance.
//
//	Created --Start--> Running --Close/ErrDone--> Closed
//
// Resume delivers one message and returns the events emitted since the
// previous suspension. Messages are processed strictly in call order.
type Task struct {
	name  string
	comp  Component
	ctx   *Context
	state TaskState

	events []Event
}

// NewTask creates a task rendering into parent. The component is not
// mounted until Start.
func NewTask(name string, comp Component, env Env, parent host.Handle) (*Task, error) {
	if err := env.validate(); err != nil {
		return nil, err
	}
	t := &Task{name: name, comp: comp}
	t.ctx = newContext(t, env.withDefaults(), parent)
	return t, nil
}

// Name returns the component name.
func (t *Task) Name() string {
	return t.name
}

// State returns the lifecycle state.
func (t *Task) State() TaskState {
	return t.state
}

// Host returns the host node the task renders into.
func (t *Task) Host() host.Handle {
	return t.ctx.host
}

// Context returns the task's context.
func (t *Task) Context() *Context {
	return t.ctx
}

// Component returns the driven component.
func (t *Task) Component() Component {
	return t.comp
}

// Start mounts the component, renders every view it attached and returns
// the first event batch. Starting a running task is a no-op.
func (t *Task) Start() ([]Event, error) {
	switch t.state {
	case Running:
		return nil, nil
	case Closed:
		return nil, ErrClosed
	}
	t.state = Running
	t.ctx.env.Metrics.TaskStarted()

	if err := t.call(func() error { return t.comp.Mount(t.ctx) }); err != nil {
		t.ctx.logger.Error("component mount failed", "error", err)
		t.Close()
		return nil, fmt.Errorf("component %s: mount: %w", t.name, err)
	}
	for _, v := range t.ctx.views {
		if err := v.RenderNow(); err != nil {
			t.ctx.logger.Warn("initial render failed", "error", err)
		}
	}
	return t.drain(), nil
}

// Resume delivers msg and returns the events emitted since the previous
// suspension. All views are deferred while the message is processed and
// flushed once afterwards, so one message yields at most one render per
// view. A closed task returns an empty batch. A created task is started
// first and its initial batch is returned along with the message's events.
func (t *Task) Resume(msg Message) []Event {
	switch t.state {
	case Closed:
		t.ctx.logger.Debug("message to closed task dropped", "message", fmt.Sprintf("%T", msg))
		t.ctx.env.Metrics.ObserveMessage(t.name, outcomeClosed)
		return []Event{}
	case Created:
		first, err := t.Start()
		if err != nil {
			return []Event{}
		}
		t.events = first
	}

	views := append([]*View(nil), t.ctx.views...)
	for _, v := range views {
		v.Defer()
	}
	err := t.call(func() error { return t.comp.Update(t.ctx, msg) })
	for _, v := range views {
		v.Flush()
	}
	// Views attached while handling the message have no pending request
	// to flush; they render now, as during Start.
	for _, v := range t.ctx.views[len(views):] {
		if err := v.RenderNow(); err != nil {
			t.ctx.logger.Warn("initial render failed", "error", err)
		}
	}

	switch {
	case err == nil:
		t.ctx.env.Metrics.ObserveMessage(t.name, outcomeOK)
	case errors.Is(err, ErrUnknownMessage):
		t.ctx.logger.Debug("unknown message", "message", fmt.Sprintf("%T", msg))
		t.ctx.env.Metrics.ObserveMessage(t.name, outcomeUnknown)
	case errors.Is(err, ErrDone):
		t.ctx.env.Metrics.ObserveMessage(t.name, outcomeDone)
		events := t.drain()
		t.Close()
		return events
	default:
		t.ctx.logger.Error("component update failed", "message", fmt.Sprintf("%T", msg), "error", err)
		t.ctx.env.Metrics.ObserveMessage(t.name, outcomeError)
	}
	return t.drain()
}

// Close ends the task: the component's Unmount runs, children are closed,
// schedulers are cancelled, rendered subtrees are released and privately
// owned nodes are destroyed. The host node the task renders into belongs
// to the parent and is left alone. Close is idempotent.
func (t *Task) Close() {
	if t.state == Closed {
		return
	}
	wasRunning := t.state == Running
	t.state = Closed

	if wasRunning {
		_ = t.call(func() error {
			t.comp.Unmount(t.ctx)
			return nil
		})
		t.ctx.env.Metrics.TaskClosed()
	}
	t.ctx.release()
	t.events = nil
	t.ctx.logger.Debug("component closed")
}

func (t *Task) emit(e Event) {
	if t.state == Closed {
		return
	}
	t.events = append(t.events, e)
}

func (t *Task) drain() []Event {
	out := t.events
	t.events = nil
	if out == nil {
		return []Event{}
	}
	return out
}

// call runs fn, converting a panic into an error.
func (t *Task) call(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("component %s panicked: %v", t.name, p)
		}
	}()
	return fn()
}

func (t *Task) String() string {
	return fmt.Sprintf("Task(%s, %s)", t.name, t.state)
}
