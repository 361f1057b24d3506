package component

import (
	"log/slog"

	"github.com/vango-dev/vtree/pkg/host"
	"github.com/vango-dev/vtree/pkg/reconcile"
	"github.com/vango-dev/vtree/pkg/sched"
)

// Context is a task's handle on the runtime. It is passed to every
// Component method and may be captured by input callbacks.
type Context struct {
	task   *Task
	env    Env
	host   host.Handle
	logger *slog.Logger

	views    []*View
	children *Children
	owned    []host.Handle
}

func newContext(t *Task, env Env, parent host.Handle) *Context {
	ctx := &Context{
		task:   t,
		env:    env,
		host:   parent,
		logger: env.Logger.With("component", t.name),
	}
	ctx.children = newChildren(ctx)
	return ctx
}

// Name returns the component name.
func (c *Context) Name() string {
	return c.task.name
}

// Host returns the host node the component renders into. It belongs to the
// parent and outlives the component.
func (c *Context) Host() host.Handle {
	return c.host
}

// Env returns the environment the task was built with. Children created by
// this component receive the same Env.
func (c *Context) Env() Env {
	return c.env
}

// Logger returns a logger tagged with the component name.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// Emit queues an event for the next suspension.
func (c *Context) Emit(typ string, payload any) {
	c.task.emit(Event{Type: typ, Payload: payload, Source: c.task.name})
}

// Forward queues events received from children unchanged.
func (c *Context) Forward(events []Event) {
	for _, e := range events {
		c.task.emit(e)
	}
}

// Attach creates a view rendering into the component's host.
func (c *Context) Attach(render reconcile.RenderFunc) *View {
	return c.AttachTo(c.host, render)
}

// AttachTo creates a view rendering into h, typically a node from OwnNode.
func (c *Context) AttachTo(h host.Handle, render reconcile.RenderFunc) *View {
	v := newView(c, h, render)
	c.views = append(c.views, v)
	return v
}

// Children returns the registry of child components found in this
// component's views.
func (c *Context) Children() *Children {
	return c.children
}

// OwnNode creates a private node under the component's host. The node is
// destroyed when the task closes.
func (c *Context) OwnNode(kind string) (host.Handle, error) {
	h, err := c.env.Reconciler.Adapter().CreateNode(c.host, kind)
	if err != nil {
		return host.None, err
	}
	c.owned = append(c.owned, h)
	return h, nil
}

// RequestRender asks every view for a render at priority p.
func (c *Context) RequestRender(p sched.Priority) {
	for _, v := range c.views {
		v.Request(p)
	}
}

// Err returns the error of the first view whose most recent render failed.
func (c *Context) Err() error {
	for _, v := range c.views {
		if err := v.Err(); err != nil {
			return err
		}
	}
	return nil
}

// RequestImmediateRender asks the root driver to push a Poll through the
// tree. It is a no-op when the driver did not provide the capability.
func (c *Context) RequestImmediateRender() {
	if fn := c.env.RequestImmediateRender; fn != nil {
		fn()
	}
}

// release tears down everything the context holds.
func (c *Context) release() {
	c.children.Close()
	for _, v := range c.views {
		v.Close()
	}
	for _, h := range c.owned {
		c.env.Reconciler.Destroy(h)
	}
	c.owned = nil
}
