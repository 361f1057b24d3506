// Package termhost renders a host tree in a terminal.
//
// Host is a memhost.Host plus keyboard focus: buttons and inputs can be
// focused, activated and typed into. Render draws a subtree with lipgloss.
// TeaLoop runs render callbacks on a bubbletea program's update goroutine,
// so the host tree is only touched from one goroutine.
package termhost

import (
	"slices"
	"unicode/utf8"

	"github.com/vango-dev/vtree/pkg/host"
	"github.com/vango-dev/vtree/pkg/memhost"
)

// Host is a terminal host adapter.
type Host struct {
	*memhost.Host

	focus host.Handle
}

// New creates an empty terminal host.
func New(opts ...memhost.Option) *Host {
	return &Host{Host: memhost.New(opts...)}
}

// Focusable reports whether id can take keyboard focus.
func (h *Host) Focusable(id host.Handle) bool {
	switch h.Kind(id) {
	case "button", "input":
		return true
	}
	return false
}

// Focusables returns the focusable nodes under roots in display order.
func (h *Host) Focusables(roots ...host.Handle) []host.Handle {
	var out []host.Handle
	for _, r := range roots {
		out = append(out, h.FindAll(r, h.Focusable)...)
	}
	return out
}

// Focused returns the focused node, or host.None.
func (h *Host) Focused() host.Handle {
	if h.focus != host.None && !h.Exists(h.focus) {
		h.focus = host.None
	}
	return h.focus
}

// Focus moves focus to id.
func (h *Host) Focus(id host.Handle) {
	if h.Focusable(id) {
		h.focus = id
	}
}

// FocusNext moves focus forward by delta among the focusables under
// roots, wrapping around. A lost focus restarts at the first node.
func (h *Host) FocusNext(delta int, roots ...host.Handle) host.Handle {
	nodes := h.Focusables(roots...)
	if len(nodes) == 0 {
		h.focus = host.None
		return host.None
	}
	i := slices.Index(nodes, h.Focused())
	if i < 0 {
		h.focus = nodes[0]
		return h.focus
	}
	i = ((i+delta)%len(nodes) + len(nodes)) % len(nodes)
	h.focus = nodes[i]
	return h.focus
}

// ActivateFocused activates the focused node.
func (h *Host) ActivateFocused() error {
	id := h.Focused()
	if id == host.None {
		return nil
	}
	return h.Activate(id)
}

// TypeRunes appends s to the focused input.
func (h *Host) TypeRunes(s string) error {
	id := h.Focused()
	if h.Kind(id) != "input" {
		return nil
	}
	return h.Input(id, h.value(id)+s)
}

// Backspace deletes the last rune of the focused input.
func (h *Host) Backspace() error {
	id := h.Focused()
	if h.Kind(id) != "input" {
		return nil
	}
	v := h.value(id)
	if v == "" {
		return nil
	}
	_, size := utf8.DecodeLastRuneInString(v)
	return h.Input(id, v[:len(v)-size])
}

func (h *Host) value(id host.Handle) string {
	v, _ := h.Property(id, memhost.PropValue)
	s, _ := v.(string)
	return s
}
