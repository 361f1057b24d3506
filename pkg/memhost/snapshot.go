package memhost

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/vango-dev/vtree/pkg/host"
)

// Snapshot is a JSON-friendly copy of a host subtree. Callback properties
// are replaced by "<func>".
type Snapshot struct {
	Handle   host.Handle    `json:"handle"`
	Kind     string         `json:"kind"`
	Props    map[string]any `json:"props,omitempty"`
	Items    []string       `json:"items,omitempty"`
	Children []*Snapshot    `json:"children,omitempty"`
}

// Snapshot copies the subtree rooted at id. It returns nil if id does not exist.
func (h *Host) Snapshot(id host.Handle) *Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshot(id)
}

// Roots returns the parentless nodes in creation order.
func (h *Host) Roots() []host.Handle {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var roots []host.Handle
	for id, n := range h.nodes {
		if n.parent == host.None {
			roots = append(roots, id)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	return roots
}

func (h *Host) snapshot(id host.Handle) *Snapshot {
	n, ok := h.nodes[id]
	if !ok {
		return nil
	}
	s := &Snapshot{Handle: id, Kind: n.kind}
	if len(n.props) > 0 {
		s.Props = make(map[string]any, len(n.props))
		for k, v := range n.props {
			s.Props[k] = displayValue(v)
		}
	}
	if len(n.items) > 0 {
		s.Items = append([]string(nil), n.items...)
	}
	for _, c := range n.children {
		if cs := h.snapshot(c); cs != nil {
			s.Children = append(s.Children, cs)
		}
	}
	return s
}

// Sanitized returns a copy of m safe for JSON encoding.
func (m Mutation) Sanitized() Mutation {
	if m.Value != nil {
		m.Value = displayValue(m.Value)
	}
	return m
}

// Outline renders a snapshot as an indented outline, one node per line:
//
//	div
//	  #text text="a"
func (s *Snapshot) Outline() string {
	var b strings.Builder
	s.outline(&b, 0)
	return b.String()
}

func (s *Snapshot) outline(b *strings.Builder, depth int) {
	if s == nil {
		return
	}
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(s.Kind)
	keys := make([]string, 0, len(s.Props))
	for k := range s.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%q", k, fmt.Sprint(s.Props[k]))
	}
	if len(s.Items) > 0 {
		fmt.Fprintf(b, " items=%q", s.Items)
	}
	b.WriteByte('\n')
	for _, c := range s.Children {
		c.outline(b, depth+1)
	}
}

func isFunc(v any) bool {
	return reflect.ValueOf(v).Kind() == reflect.Func
}
