package component

import (
	"slices"

	"github.com/vango-dev/vtree/pkg/host"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Children tracks the child components of one component.
//
// After every successful render of the owner, the owner's host trees are
// scanned for slot markers. Unknown slots are instantiated through their
// factory; children whose slot is gone are closed. Children are identified
// by slot key and kept in host-tree order.
//
// A child's initial batch is held back and delivered with the first send
// to that child.
type Children struct {
	owner *Context

	byKey  map[string]*child
	order  []string
	closed bool
}

type child struct {
	key     string
	slot    host.Handle
	task    *Task
	pending []Event
}

type slotRef struct {
	handle host.Handle
	node   *vdom.VNode
}

func newChildren(owner *Context) *Children {
	return &Children{
		owner: owner,
		byKey: make(map[string]*child),
	}
}

// Keys returns the child keys in host-tree order.
func (c *Children) Keys() []string {
	return slices.Clone(c.order)
}

// Len returns the number of children.
func (c *Children) Len() int {
	return len(c.order)
}

// Get returns the task of the child with key, or nil.
func (c *Children) Get(key string) *Task {
	if ch, ok := c.byKey[key]; ok {
		return ch.task
	}
	return nil
}

// Send delivers msg to the child with key and returns its events, preceded
// by any batch still held back for it.
func (c *Children) Send(key string, msg Message) []Event {
	ch, ok := c.byKey[key]
	if !ok {
		return nil
	}
	return c.deliver(ch, msg)
}

// Broadcast delivers msg to every child and concatenates their events in
// host-tree order.
func (c *Children) Broadcast(msg Message) []Event {
	return c.SendEach(func(string, *Task) Message { return msg })
}

// SendEach delivers the message fn builds for each child. A nil message
// only collects the events held back for that child.
func (c *Children) SendEach(fn func(key string, t *Task) Message) []Event {
	var out []Event
	for _, key := range slices.Clone(c.order) {
		ch, ok := c.byKey[key]
		if !ok {
			continue
		}
		msg := fn(key, ch.task)
		if msg == nil {
			out = append(out, ch.pending...)
			ch.pending = nil
			continue
		}
		out = append(out, c.deliver(ch, msg)...)
	}
	return out
}

// Close closes every child.
func (c *Children) Close() {
	if c.closed {
		return
	}
	c.closed = true
	for _, key := range c.order {
		if ch, ok := c.byKey[key]; ok {
			ch.task.Close()
		}
	}
	c.byKey = make(map[string]*child)
	c.order = nil
}

func (c *Children) deliver(ch *child, msg Message) []Event {
	out := ch.pending
	ch.pending = nil
	return append(out, ch.task.Resume(msg)...)
}

// scan reconciles the registry with the slots present in the owner's views.
func (c *Children) scan() {
	if c.closed {
		return
	}
	logger := c.owner.logger
	found := c.collect()

	seen := make(map[string]bool, len(found))
	order := make([]string, 0, len(found))
	for _, f := range found {
		key := f.node.Key
		if key == "" {
			logger.Warn("slot without key ignored", "slot", f.handle)
			continue
		}
		if seen[key] {
			logger.Warn("duplicate slot key ignored", "key", key)
			continue
		}
		seen[key] = true

		ch, ok := c.byKey[key]
		if ok && ch.slot != f.handle {
			// The slot was recreated; the old child lost its host.
			ch.task.Close()
			delete(c.byKey, key)
			ok = false
		}
		if !ok {
			ch = c.spawn(key, f)
			if ch == nil {
				continue
			}
			c.byKey[key] = ch
		}
		order = append(order, key)
	}

	for _, key := range c.order {
		if seen[key] {
			continue
		}
		if ch, ok := c.byKey[key]; ok {
			logger.Debug("child removed", "key", key)
			ch.task.Close()
			delete(c.byKey, key)
		}
	}
	c.order = order
}

func (c *Children) spawn(key string, f slotRef) *child {
	logger := c.owner.logger
	factory, ok := f.node.Factory.(Factory)
	if !ok {
		logger.Error("cannot instantiate child", "key", key, "error", ErrNotFactory)
		return nil
	}
	task, err := factory(c.owner.env, f.handle, f.node.Args...)
	if err != nil {
		logger.Error("cannot instantiate child", "key", key, "error", err)
		return nil
	}
	first, err := task.Start()
	if err != nil {
		logger.Error("child failed to start", "key", key, "error", err)
		return nil
	}
	logger.Debug("child started", "key", key, "child", task.Name())
	return &child{key: key, slot: f.handle, task: task, pending: first}
}

// collect walks the owner's view hosts in order and returns the slot
// markers found, without descending into slots. Portal content is
// followed into its target.
func (c *Children) collect() []slotRef {
	r := c.owner.env.Reconciler
	adapter := r.Adapter()
	visited := make(map[host.Handle]bool)
	var found []slotRef

	var walk func(h host.Handle)
	walk = func(h host.Handle) {
		for _, k := range adapter.Children(h) {
			if visited[k] {
				continue
			}
			visited[k] = true
			v, ok := r.VNodeOf(k)
			if ok {
				switch v.Kind {
				case vdom.KindSlot:
					found = append(found, slotRef{handle: k, node: v})
					continue
				case vdom.KindPortal:
					if rec, ok := r.Portals().Record(v.Target); ok && rec.Key == v.Key {
						walk(v.Target)
					}
					continue
				}
			}
			walk(k)
		}
	}

	for _, view := range c.owner.views {
		if !view.closed {
			walk(view.Host())
		}
	}
	return found
}
