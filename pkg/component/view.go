package component

import (
	"context"

	"github.com/vango-dev/vtree/pkg/host"
	"github.com/vango-dev/vtree/pkg/reconcile"
	"github.com/vango-dev/vtree/pkg/sched"
)

// View is a render function bound to a host node, with its own scheduler.
// After every successful render the component's children are rescanned.
type View struct {
	ctx   *Context
	mount *reconcile.Mount
	sched *sched.Scheduler

	lastErr error
	closed  bool
}

func newView(c *Context, h host.Handle, render reconcile.RenderFunc) *View {
	v := &View{ctx: c}
	v.mount = reconcile.NewMount(c.env.Reconciler, h, render, reconcile.WithName(c.task.name))
	v.sched = sched.New(c.env.Loop, v.update,
		sched.WithFrameBudget(c.env.FrameBudget),
		sched.WithMetrics(c.env.Metrics),
		sched.WithLogger(c.logger),
	)
	return v
}

// Host returns the host node the view renders into.
func (v *View) Host() host.Handle {
	return v.mount.Host()
}

// Mount returns the underlying mount.
func (v *View) Mount() *reconcile.Mount {
	return v.mount
}

// Scheduler returns the view's scheduler.
func (v *View) Scheduler() *sched.Scheduler {
	return v.sched
}

// Err returns the error of the most recent render, if it failed.
func (v *View) Err() error {
	return v.lastErr
}

// Request asks for a render at priority p.
func (v *View) Request(p sched.Priority) {
	if v.closed {
		return
	}
	v.sched.Request(p)
}

// RenderNow cancels any pending render and renders synchronously.
func (v *View) RenderNow() error {
	if v.closed {
		return reconcile.ErrUnmounted
	}
	v.sched.Cancel()
	v.update()
	return v.lastErr
}

// Defer suspends rendering until Flush.
func (v *View) Defer() {
	if !v.closed {
		v.sched.Defer()
	}
}

// Flush ends a Defer, rendering once if anything was requested.
func (v *View) Flush() {
	if !v.closed {
		v.sched.Flush()
	}
}

// Close cancels pending renders and removes what the view rendered.
func (v *View) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.sched.Cancel()
	v.mount.Unmount()
}

func (v *View) update() {
	if v.closed {
		return
	}
	v.lastErr = v.mount.Update(context.Background())
	if v.lastErr != nil {
		return
	}
	v.ctx.children.scan()
}
