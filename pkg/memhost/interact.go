package memhost

import (
	"errors"

	"github.com/vango-dev/vtree/pkg/host"
)

// Callback property names, as set by vdom.OnCommand and vdom.OnInput.
const (
	PropCommand = "command"
	PropOnInput = "on_input"
	PropValue   = "value"
)

// ErrNoCallback is returned when a node lacks the callback being invoked.
var ErrNoCallback = errors.New("memhost: node has no callback")

// Find returns the first node under root, in depth-first display order,
// for which match reports true. root itself is not tested.
func (h *Host) Find(root host.Handle, match func(id host.Handle) bool) host.Handle {
	for _, c := range h.Children(root) {
		if match(c) {
			return c
		}
		if id := h.Find(c, match); id != host.None {
			return id
		}
	}
	return host.None
}

// FindAll returns every node under root for which match reports true.
func (h *Host) FindAll(root host.Handle, match func(id host.Handle) bool) []host.Handle {
	var out []host.Handle
	for _, c := range h.Children(root) {
		if match(c) {
			out = append(out, c)
		}
		out = append(out, h.FindAll(c, match)...)
	}
	return out
}

// WithProp matches nodes of kind whose property name equals value.
func (h *Host) WithProp(kind, name string, value any) func(host.Handle) bool {
	return func(id host.Handle) bool {
		if h.Kind(id) != kind {
			return false
		}
		v, ok := h.Property(id, name)
		return ok && v == value
	}
}

// Activate invokes the command callback of a node, as a click would.
func (h *Host) Activate(id host.Handle) error {
	v, _ := h.Property(id, PropCommand)
	fn, ok := v.(func())
	if !ok {
		return host.NewNodeError("activate", id, ErrNoCallback)
	}
	fn()
	return nil
}

// Input stores value as the node's current text and invokes its input
// callback, as typing would. The value is not recorded as a mutation.
func (h *Host) Input(id host.Handle, value string) error {
	h.mu.Lock()
	n, ok := h.nodes[id]
	if ok {
		n.props[PropValue] = value
	}
	h.mu.Unlock()
	if !ok {
		return host.NewNodeError("input", id, host.ErrNodeNotFound)
	}

	v, _ := h.Property(id, PropOnInput)
	fn, ok := v.(func(string))
	if !ok {
		return host.NewNodeError("input", id, ErrNoCallback)
	}
	fn(value)
	return nil
}
