package component

import (
	"github.com/vango-dev/vtree/pkg/host"
	"github.com/vango-dev/vtree/pkg/sched"
)

// Runner drives a root component: it starts the task, sends it messages,
// queues the events that reach the top and services immediate render
// requests from anywhere in the tree by pushing a Poll through the root.
type Runner struct {
	task   *Task
	pump   *sched.Scheduler
	queue  []Event
	closed bool
}

// NewRunner creates the root task with factory, rendering into root.
// The Env's RequestImmediateRender is replaced by the runner's own.
func NewRunner(factory Factory, env Env, root host.Handle, args ...any) (*Runner, error) {
	if err := env.validate(); err != nil {
		return nil, err
	}
	env = env.withDefaults()

	r := &Runner{}
	r.pump = sched.New(env.Loop, r.poll,
		sched.WithLogger(env.Logger),
		sched.WithMetrics(env.Metrics),
		sched.WithFrameBudget(env.FrameBudget),
	)
	env.RequestImmediateRender = func() { r.pump.Request(sched.High) }

	task, err := factory(env, root, args...)
	if err != nil {
		return nil, err
	}
	r.task = task
	return r, nil
}

// Task returns the root task.
func (r *Runner) Task() *Task {
	return r.task
}

// Start mounts the root component and queues its first batch.
func (r *Runner) Start() error {
	events, err := r.task.Start()
	if err != nil {
		return err
	}
	r.queue = append(r.queue, events...)
	return nil
}

// Send delivers msg to the root and queues the resulting events.
func (r *Runner) Send(msg Message) {
	if r.closed {
		return
	}
	r.queue = append(r.queue, r.task.Resume(msg)...)
}

// Events drains the queued events.
func (r *Runner) Events() []Event {
	out := r.queue
	r.queue = nil
	return out
}

// Close cancels pending polls and closes the root task.
func (r *Runner) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.pump.Cancel()
	r.task.Close()
}

func (r *Runner) poll() {
	r.Send(Poll{})
}
