// Package memhost is an in-memory host adapter.
//
// It keeps a retained tree of nodes with properties, records every mutation
// the reconciler performs and can be snapshotted as JSON. Tests use it to
// count host mutations; the headless runner and the inspector use it as a
// real host tree.
package memhost

import (
	"fmt"
	"slices"
	"sync"

	"github.com/vango-dev/vtree/pkg/host"
)

// Op names a recorded host mutation.
type Op string

const (
	OpCreate   Op = "create"
	OpDestroy  Op = "destroy"
	OpSet      Op = "set"
	OpReorder  Op = "reorder"
	OpSetItems Op = "set_items"
)

// Mutation is one recorded host mutation.
type Mutation struct {
	Op     Op          `json:"op"`
	Handle host.Handle `json:"handle"`
	Parent host.Handle `json:"parent,omitempty"`
	Kind   string      `json:"kind,omitempty"`
	Name   string      `json:"name,omitempty"`
	Value  any         `json:"value,omitempty"`
}

// String returns a compact description, e.g. "set #3 text=a".
func (m Mutation) String() string {
	switch m.Op {
	case OpCreate:
		return fmt.Sprintf("create %s %s under %s", m.Handle, m.Kind, m.Parent)
	case OpSet:
		return fmt.Sprintf("set %s %s=%v", m.Handle, m.Name, displayValue(m.Value))
	case OpSetItems:
		return fmt.Sprintf("set_items %s %v", m.Handle, m.Value)
	default:
		return fmt.Sprintf("%s %s", m.Op, m.Handle)
	}
}

type node struct {
	kind     string
	parent   host.Handle
	children []host.Handle
	props    map[string]any
	items    []string
}

// Host is an in-memory host.Adapter and host.ItemSetter.
// It is safe for concurrent use; mutations are expected from one goroutine
// while snapshots may be taken from others.
type Host struct {
	mu        sync.RWMutex
	nodes     map[host.Handle]*node
	next      host.Handle
	log       []Mutation
	recording bool
	listKinds map[string]bool
	failures  map[failKey]error

	subMu  sync.Mutex
	subs   map[int]func(Mutation)
	nextID int
}

type failKey struct {
	op Op
	h  host.Handle
}

var (
	_ host.Adapter    = (*Host)(nil)
	_ host.ItemSetter = (*Host)(nil)
)

// Option configures a Host.
type Option func(*Host)

// WithListKinds marks node kinds as list containers.
func WithListKinds(kinds ...string) Option {
	return func(h *Host) {
		for _, k := range kinds {
			h.listKinds[k] = true
		}
	}
}

// New creates an empty host. By default "ul" nodes are list containers and
// mutations are recorded.
func New(opts ...Option) *Host {
	h := &Host{
		nodes:     make(map[host.Handle]*node),
		listKinds: map[string]bool{"ul": true},
		failures:  make(map[failKey]error),
		subs:      make(map[int]func(Mutation)),
		recording: true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewRoot creates a parentless node, such as an application frame or a
// status bar living outside it. Roots are not recorded as mutations.
func (h *Host) NewRoot(kind string) host.Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	id := h.next
	h.nodes[id] = &node{kind: kind, props: make(map[string]any)}
	return id
}

// CreateNode implements host.Adapter.
func (h *Host) CreateNode(parent host.Handle, kind string) (host.Handle, error) {
	h.mu.Lock()
	p, ok := h.nodes[parent]
	if !ok {
		h.mu.Unlock()
		return host.None, host.NewNodeError("create", parent, host.ErrInvalidParent)
	}
	if err := h.failure(OpCreate, parent); err != nil {
		h.mu.Unlock()
		return host.None, err
	}
	h.next++
	id := h.next
	h.nodes[id] = &node{kind: kind, parent: parent, props: make(map[string]any)}
	p.children = append(p.children, id)
	m := Mutation{Op: OpCreate, Handle: id, Parent: parent, Kind: kind}
	h.record(m)
	h.mu.Unlock()

	h.publish(m)
	return id, nil
}

// DestroyNode implements host.Adapter.
func (h *Host) DestroyNode(id host.Handle) error {
	h.mu.Lock()
	n, ok := h.nodes[id]
	if !ok {
		h.mu.Unlock()
		return host.NewNodeError("destroy", id, host.ErrNodeNotFound)
	}
	if err := h.failure(OpDestroy, id); err != nil {
		h.mu.Unlock()
		return err
	}
	if p, ok := h.nodes[n.parent]; ok {
		p.children = slices.DeleteFunc(p.children, func(c host.Handle) bool { return c == id })
	}
	h.drop(id)
	m := Mutation{Op: OpDestroy, Handle: id}
	h.record(m)
	h.mu.Unlock()

	h.publish(m)
	return nil
}

// drop removes id and its descendants from the table. Caller holds mu.
func (h *Host) drop(id host.Handle) {
	n, ok := h.nodes[id]
	if !ok {
		return
	}
	for _, c := range n.children {
		h.drop(c)
	}
	delete(h.nodes, id)
}

// SetProperty implements host.Adapter.
func (h *Host) SetProperty(id host.Handle, name string, value any) error {
	h.mu.Lock()
	n, ok := h.nodes[id]
	if !ok {
		h.mu.Unlock()
		return host.NewNodeError("set "+name, id, host.ErrNodeNotFound)
	}
	if err := h.failure(OpSet, id); err != nil {
		h.mu.Unlock()
		return err
	}
	if value == nil {
		delete(n.props, name)
	} else {
		n.props[name] = value
	}
	m := Mutation{Op: OpSet, Handle: id, Name: name, Value: value}
	h.record(m)
	h.mu.Unlock()

	h.publish(m)
	return nil
}

// Children implements host.Adapter.
func (h *Host) Children(parent host.Handle) []host.Handle {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n, ok := h.nodes[parent]
	if !ok {
		return nil
	}
	return slices.Clone(n.children)
}

// Exists implements host.Adapter.
func (h *Host) Exists(id host.Handle) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.nodes[id]
	return ok
}

// ReorderToEnd implements host.Adapter.
func (h *Host) ReorderToEnd(id host.Handle) error {
	h.mu.Lock()
	n, ok := h.nodes[id]
	if !ok {
		h.mu.Unlock()
		return host.NewNodeError("reorder", id, host.ErrNodeNotFound)
	}
	if p, ok := h.nodes[n.parent]; ok {
		p.children = slices.DeleteFunc(p.children, func(c host.Handle) bool { return c == id })
		p.children = append(p.children, id)
	}
	m := Mutation{Op: OpReorder, Handle: id}
	h.record(m)
	h.mu.Unlock()

	h.publish(m)
	return nil
}

// IsList implements host.ItemSetter.
func (h *Host) IsList(kind string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.listKinds[kind]
}

// SetItems implements host.ItemSetter.
func (h *Host) SetItems(id host.Handle, items []string) error {
	h.mu.Lock()
	n, ok := h.nodes[id]
	if !ok {
		h.mu.Unlock()
		return host.NewNodeError("set_items", id, host.ErrNodeNotFound)
	}
	if !h.listKinds[n.kind] {
		h.mu.Unlock()
		return host.NewNodeError("set_items", id, host.ErrNotList)
	}
	n.items = slices.Clone(items)
	m := Mutation{Op: OpSetItems, Handle: id, Value: slices.Clone(items)}
	h.record(m)
	h.mu.Unlock()

	h.publish(m)
	return nil
}

// Kind returns the kind of a node, or "" if it does not exist.
func (h *Host) Kind(id host.Handle) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if n, ok := h.nodes[id]; ok {
		return n.kind
	}
	return ""
}

// Parent returns the parent of a node.
func (h *Host) Parent(id host.Handle) host.Handle {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if n, ok := h.nodes[id]; ok {
		return n.parent
	}
	return host.None
}

// Property returns one property of a node.
func (h *Host) Property(id host.Handle, name string) (any, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n, ok := h.nodes[id]
	if !ok {
		return nil, false
	}
	v, ok := n.props[name]
	return v, ok
}

// Items returns the items of a list container.
func (h *Host) Items(id host.Handle) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if n, ok := h.nodes[id]; ok {
		return slices.Clone(n.items)
	}
	return nil
}

// Len returns the number of live nodes, roots included.
func (h *Host) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.nodes)
}

// Mutations returns the recorded mutations.
func (h *Host) Mutations() []Mutation {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.log)
}

// Reset clears the mutation log and returns what it held.
func (h *Host) Reset() []Mutation {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.log
	h.log = nil
	return out
}

// SetRecording turns the mutation log on or off. Subscribers are notified
// either way.
func (h *Host) SetRecording(on bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recording = on
}

// Fail makes the next op on handle return err. Used to simulate native
// objects failing underneath the reconciler.
func (h *Host) Fail(op Op, id host.Handle, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures[failKey{op, id}] = err
}

// Vanish destroys a node out-of-band, as if the native toolkit had torn it
// down. Nothing is recorded or published.
func (h *Host) Vanish(id host.Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, ok := h.nodes[id]
	if !ok {
		return
	}
	if p, ok := h.nodes[n.parent]; ok {
		p.children = slices.DeleteFunc(p.children, func(c host.Handle) bool { return c == id })
	}
	h.drop(id)
}

// Subscribe registers fn to receive every mutation after it is applied.
// fn runs on the mutating goroutine. The returned func unsubscribes.
func (h *Host) Subscribe(fn func(Mutation)) (unsubscribe func()) {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	h.nextID++
	id := h.nextID
	h.subs[id] = fn
	return func() {
		h.subMu.Lock()
		defer h.subMu.Unlock()
		delete(h.subs, id)
	}
}

// failure consumes a configured failure. Caller holds mu.
func (h *Host) failure(op Op, id host.Handle) error {
	k := failKey{op, id}
	if err, ok := h.failures[k]; ok {
		delete(h.failures, k)
		return host.NewNodeError(string(op), id, err)
	}
	return nil
}

// record appends m to the log. Caller holds mu.
func (h *Host) record(m Mutation) {
	if h.recording {
		h.log = append(h.log, m)
	}
}

func (h *Host) publish(m Mutation) {
	h.subMu.Lock()
	subs := make([]func(Mutation), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.subMu.Unlock()

	for _, fn := range subs {
		fn(m)
	}
}

func displayValue(v any) any {
	if v == nil {
		return "<nil>"
	}
	switch v.(type) {
	case string, bool, int, int64, float64, []string:
		return v
	}
	if isFunc(v) {
		return "<func>"
	}
	return fmt.Sprintf("%v", v)
}
