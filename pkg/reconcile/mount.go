package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/vango-dev/vtree/pkg/host"
	"github.com/vango-dev/vtree/pkg/telemetry"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// RenderFunc produces the virtual tree of one render cycle.
type RenderFunc func() *vdom.VNode

// Mount binds a render function to a host node and remembers the last tree
// patched into it. The rendered tree always lives at child index 0 of the host.
type Mount struct {
	r      *Reconciler
	host   host.Handle
	render RenderFunc
	name   string

	tree     *vdom.VNode
	renders  int
	detached bool
}

// MountOption configures a Mount.
type MountOption func(*Mount)

// WithName names the mount in logs, metrics and spans.
func WithName(name string) MountOption {
	return func(m *Mount) {
		m.name = name
	}
}

// NewMount creates a mount rendering into h. Nothing is rendered until Update.
func NewMount(r *Reconciler, h host.Handle, render RenderFunc, opts ...MountOption) *Mount {
	m := &Mount{
		r:      r,
		host:   h,
		render: render,
		name:   "mount",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Host returns the host node the mount renders into.
func (m *Mount) Host() host.Handle {
	return m.host
}

// Tree returns the last successfully patched tree.
func (m *Mount) Tree() *vdom.VNode {
	return m.tree
}

// Renders returns the number of successful render cycles.
func (m *Mount) Renders() int {
	return m.renders
}

// Update renders and patches the result into the host.
//
// A render that panics or produces duplicate sibling keys is abandoned: the
// failure is logged and counted, a *RenderError is returned and the host
// keeps showing the previous tree. If the host node no longer exists the
// cycle is skipped.
func (m *Mount) Update(ctx context.Context) (err error) {
	if m.detached {
		return ErrUnmounted
	}

	start := time.Now()
	_, span := telemetry.StartRender(ctx, m.r.tracer, m.name)
	var stats Stats
	defer func() {
		telemetry.EndRender(span, stats.Created, stats.Destroyed, stats.Moves, err)
	}()

	next, err := m.safeRender()
	if err != nil {
		status := telemetry.StatusError
		if re, ok := err.(*RenderError); ok && re.Panic != nil {
			status = telemetry.StatusPanic
		}
		m.r.logger.Error("render failed, keeping previous tree", "component", m.name, "error", err)
		m.r.metrics.ObserveRender(status, time.Since(start))
		return err
	}

	if !m.r.host.Exists(m.host) {
		m.r.logger.Debug("render target gone, skipping", "component", m.name, "host", m.host)
		return nil
	}

	m.tree = m.r.Patch(m.host, m.tree, next, 0)
	m.renders++
	stats = m.r.LastStats()
	m.r.metrics.ObserveRender(telemetry.StatusOK, time.Since(start))
	m.r.logger.Debug("rendered", "component", m.name, "stats", stats.String())
	return nil
}

func (m *Mount) safeRender() (next *vdom.VNode, err error) {
	defer func() {
		if p := recover(); p != nil {
			next = nil
			err = &RenderError{Component: m.name, Panic: p}
		}
	}()
	next = m.render()
	if verr := vdom.Validate(next); verr != nil {
		return nil, &RenderError{Component: m.name, Err: verr}
	}
	return next, nil
}

// Unmount destroys everything rendered into the host and forgets the tree.
// The host node itself belongs to the caller and is left in place. Unmount
// is safe when the host has already been destroyed.
func (m *Mount) Unmount() {
	if m.detached {
		return
	}
	m.detached = true
	if m.tree != nil && m.r.host.Exists(m.host) {
		m.r.Patch(m.host, m.tree, nil, 0)
	}
	m.tree = nil
}

func (m *Mount) String() string {
	return fmt.Sprintf("Mount(%s on %s)", m.name, m.host)
}
