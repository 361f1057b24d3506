package reconcile

import (
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vtree/pkg/host"
	"github.com/vango-dev/vtree/pkg/telemetry"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Reconciler applies virtual tree differences to one host adapter.
//
// A Reconciler is not safe for concurrent use. All calls must come from the
// goroutine driving the host event loop; a Patch runs to completion before
// control returns, so no partial host state is ever observable.
type Reconciler struct {
	host  host.Adapter
	items host.ItemSetter

	logger  *slog.Logger
	metrics *telemetry.Metrics
	tracer  trace.Tracer

	// bound maps each live host node to the VNode it currently represents.
	bound map[host.Handle]*vdom.VNode

	// anchors maps portal anchors to their target hosts.
	anchors map[host.Handle]host.Handle

	portals *Registry

	// Per top-level call state.
	depth    int
	orphaned map[host.Handle]struct{}
	mounted  map[host.Handle]struct{}
	stats    Stats
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics records mutation counts and render outcomes.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Reconciler) {
		r.metrics = m
	}
}

// WithTracer sets the tracer used for render spans.
// Default: the global provider's "vtree" tracer.
func WithTracer(t trace.Tracer) Option {
	return func(r *Reconciler) {
		if t != nil {
			r.tracer = t
		}
	}
}

// New creates a Reconciler for adapter. If adapter also implements
// host.ItemSetter, its list containers receive whole-content updates.
func New(adapter host.Adapter, opts ...Option) *Reconciler {
	r := &Reconciler{
		host:    adapter,
		logger:  slog.Default(),
		tracer:  otel.Tracer(telemetry.TracerName),
		bound:   make(map[host.Handle]*vdom.VNode),
		anchors: make(map[host.Handle]host.Handle),
		portals: newRegistry(),
	}
	if is, ok := adapter.(host.ItemSetter); ok {
		r.items = is
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Adapter returns the host adapter.
func (r *Reconciler) Adapter() host.Adapter {
	return r.host
}

// Logger returns the reconciler's logger.
func (r *Reconciler) Logger() *slog.Logger {
	return r.logger
}

// Metrics returns the metrics sink, which may be nil.
func (r *Reconciler) Metrics() *telemetry.Metrics {
	return r.metrics
}

// VNodeOf returns the VNode the live host node h currently represents.
func (r *Reconciler) VNodeOf(h host.Handle) (*vdom.VNode, bool) {
	v, ok := r.bound[h]
	return v, ok
}

// Portals returns the portal mount registry.
func (r *Reconciler) Portals() *Registry {
	return r.portals
}

// LastStats returns the mutation counts of the most recent top-level call.
func (r *Reconciler) LastStats() Stats {
	return r.stats
}

// Patch makes the child of parent at index represent next, given that it
// currently represents prev, and returns next for storage as the next prev.
//
// A nil prev creates the subtree. A nil next removes the child. Patch never
// fails: every structural mismatch or vanished host node falls back to
// replacing the node.
func (r *Reconciler) Patch(parent host.Handle, prev, next *vdom.VNode, index int) *vdom.VNode {
	r.begin()
	defer r.end()

	if !parent.IsValid() || !r.host.Exists(parent) {
		r.logger.Debug("reconcile: parent missing, skipping patch", "parent", parent)
		return next
	}

	target := r.adopt(r.childAt(parent, index), prev)
	h := r.patchNode(parent, target, prev, next)
	if h.IsValid() && h != target {
		r.placeAt(parent, h, index)
	}
	return next
}

// Destroy destroys h and forgets everything bound to its subtree.
func (r *Reconciler) Destroy(h host.Handle) {
	r.begin()
	defer r.end()
	r.destroy(h)
}

// Clear destroys every child of parent.
func (r *Reconciler) Clear(parent host.Handle) {
	r.begin()
	defer r.end()
	for _, c := range r.host.Children(parent) {
		r.destroy(c)
	}
}

// Forget drops all bookkeeping for a host subtree that was torn down by
// someone else. It is the explicit lifecycle hook for portal targets.
func (r *Reconciler) Forget(h host.Handle) {
	r.forget(h)
	r.portals.drop(h)
}

func (r *Reconciler) begin() {
	if r.depth == 0 {
		r.stats = Stats{}
		r.orphaned = make(map[host.Handle]struct{})
		r.mounted = make(map[host.Handle]struct{})
		r.portals.prune(r.host.Exists)
	}
	r.depth++
}

func (r *Reconciler) end() {
	r.depth--
	if r.depth > 0 {
		return
	}
	// Targets whose anchor went away without being re-mounted lose their content.
	for t := range r.orphaned {
		if _, ok := r.mounted[t]; ok {
			continue
		}
		if r.host.Exists(t) {
			for _, c := range r.host.Children(t) {
				r.destroy(c)
			}
		}
		r.portals.drop(t)
	}
	r.orphaned = nil
	r.mounted = nil
	r.metrics.ObservePatch(r.stats.Created, r.stats.Destroyed, r.stats.PropsSet, r.stats.Moves, r.stats.Repacks)
}

// patchNode makes target, a child of parent representing prev, represent
// next. It returns the handle now representing next, which differs from
// target when the node had to be created or replaced.
func (r *Reconciler) patchNode(parent, target host.Handle, prev, next *vdom.VNode) host.Handle {
	if next == nil {
		if target.IsValid() {
			r.destroy(target)
		}
		return host.None
	}

	// Case 1: nothing to patch against.
	if prev == nil || !target.IsValid() || !r.host.Exists(target) {
		if prev != nil && target.IsValid() {
			r.forget(target)
		}
		return r.create(parent, next)
	}

	// Case 2: deep-equal short-circuit.
	if vdom.Equal(prev, next) {
		r.stats.Skipped++
		r.rebind(target, next)
		return target
	}

	switch {
	// Case 3: text content changes in place.
	case prev.Kind == vdom.KindText && next.Kind == vdom.KindText:
		if err := r.set(target, host.PropText, next.Text); err != nil {
			return r.replace(parent, target, next)
		}
		r.bind(target, next)
		return target

	// Case 4: portals are identified by key.
	case prev.Kind == vdom.KindPortal || next.Kind == vdom.KindPortal:
		if !vdom.SameNode(prev, next) {
			return r.replace(parent, target, next)
		}
		if prev.Target != next.Target {
			r.anchors[target] = next.Target
			r.orphan(prev.Target)
		}
		r.mountPortal(next)
		r.bind(target, next)
		return target

	// Case 5: incompatible shapes are never reused.
	case !vdom.SameNode(prev, next):
		return r.replace(parent, target, next)

	// Case 6: memo match skips recursion.
	case vdom.MemoMatch(prev, next):
		r.stats.Skipped++
		r.bind(target, next)
		return target

	// The runtime owns what is mounted inside a slot.
	case next.Kind == vdom.KindSlot:
		r.bind(target, next)
		return target
	}

	// Case 7: patch the element in place.
	changed := vdom.ChangedProps(prev.Props, next.Props)
	sort.Strings(changed)
	for _, k := range changed {
		if err := r.set(target, k, next.Props[k]); err != nil {
			return r.replace(parent, target, next)
		}
	}

	if r.isList(next.Tag) {
		items := vdom.Items(next.Children)
		if !equalStrings(vdom.Items(prev.Children), items) {
			if err := r.items.SetItems(target, items); err != nil {
				r.hostError("set_items", target, err)
				return r.replace(parent, target, next)
			}
			r.stats.ItemsReplaced++
		}
	} else {
		r.patchChildren(target, prev.Children, next.Children)
	}

	r.bind(target, next)
	return target
}

// create builds the host subtree for v as the last child of parent.
// It returns host.None if the host refused to create the node.
func (r *Reconciler) create(parent host.Handle, v *vdom.VNode) host.Handle {
	if v == nil {
		return host.None
	}

	kind := v.Tag
	switch v.Kind {
	case vdom.KindText:
		kind = host.KindText
	case vdom.KindPortal:
		kind = host.KindPortalAnchor
	case vdom.KindSlot:
		kind = host.KindSlot
	}

	h, err := r.host.CreateNode(parent, kind)
	if err != nil {
		r.hostError("create", parent, err)
		return host.None
	}
	r.stats.Created++
	r.bind(h, v)

	switch v.Kind {
	case vdom.KindText:
		_ = r.set(h, host.PropText, v.Text)

	case vdom.KindElement:
		keys := make([]string, 0, len(v.Props))
		for k := range v.Props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			_ = r.set(h, k, v.Props[k])
		}
		if r.isList(v.Tag) {
			if len(v.Children) > 0 {
				if err := r.items.SetItems(h, vdom.Items(v.Children)); err != nil {
					r.hostError("set_items", h, err)
				} else {
					r.stats.ItemsReplaced++
				}
			}
			break
		}
		for _, c := range v.Children {
			r.create(h, c)
		}

	case vdom.KindPortal:
		_ = r.set(h, host.PropKey, v.Key)
		r.anchors[h] = v.Target
		r.mountPortal(v)

	case vdom.KindSlot:
		_ = r.set(h, host.PropSlot, v.Key)
	}
	return h
}

// replace destroys target and creates v in its place (at the end of parent).
func (r *Reconciler) replace(parent, target host.Handle, v *vdom.VNode) host.Handle {
	r.destroy(target)
	return r.create(parent, v)
}

// destroy forgets the subtree of h, then destroys h on the host.
func (r *Reconciler) destroy(h host.Handle) {
	if !h.IsValid() {
		return
	}
	exists := r.host.Exists(h)
	r.forget(h)
	if !exists {
		return
	}
	if err := r.host.DestroyNode(h); err != nil {
		r.hostError("destroy", h, err)
		return
	}
	r.stats.Destroyed++
}

// forget drops back-references, anchors and mount records of a subtree.
func (r *Reconciler) forget(h host.Handle) {
	if r.host.Exists(h) {
		for _, c := range r.host.Children(h) {
			r.forget(c)
		}
	}
	delete(r.bound, h)
	if t, ok := r.anchors[h]; ok {
		delete(r.anchors, h)
		r.orphan(t)
	}
	r.portals.drop(h)
}

func (r *Reconciler) orphan(target host.Handle) {
	if r.orphaned != nil {
		r.orphaned[target] = struct{}{}
	}
}

func (r *Reconciler) markMounted(target host.Handle) {
	if r.mounted != nil {
		r.mounted[target] = struct{}{}
	}
}

func (r *Reconciler) bind(h host.Handle, v *vdom.VNode) {
	r.bound[h] = v
}

// adopt returns target when it is the node prev was rendered into, and
// None otherwise. A node sitting at the expected position that is not bound
// to prev belongs to someone else (a sibling, or a node the host or a
// component created directly) and must not be patched.
func (r *Reconciler) adopt(target host.Handle, prev *vdom.VNode) host.Handle {
	if prev == nil {
		return host.None
	}
	if target.IsValid() && r.bound[target] == prev {
		return target
	}
	r.release(prev)
	return host.None
}

// release forgets the vanished node prev was rendered into, if any.
func (r *Reconciler) release(prev *vdom.VNode) {
	for h, v := range r.bound {
		if v == prev && !r.host.Exists(h) {
			r.forget(h)
		}
	}
}

// rebind points the back-references of an unchanged subtree at the new
// VNodes without touching the host.
func (r *Reconciler) rebind(h host.Handle, v *vdom.VNode) {
	r.bind(h, v)
	switch v.Kind {
	case vdom.KindElement:
		if r.isList(v.Tag) {
			return
		}
		kids := r.host.Children(h)
		if len(kids) != len(v.Children) {
			return
		}
		for i, c := range v.Children {
			r.rebind(kids[i], c)
		}

	case vdom.KindPortal:
		r.markMounted(v.Target)
		rec := r.portals.get(v.Target)
		if rec == nil || rec.Key != v.Key {
			return
		}
		c := r.childAt(v.Target, 0)
		if c.IsValid() && v.Child != nil && r.bound[c] == rec.Child {
			r.rebind(c, v.Child)
		}
		rec.Child = v.Child
	}
}

func (r *Reconciler) set(h host.Handle, name string, value any) error {
	if err := r.host.SetProperty(h, name, value); err != nil {
		r.logger.Debug("reconcile: set property failed", "handle", h, "name", name, "error", err)
		r.metrics.ObserveHostError("set")
		return err
	}
	r.stats.PropsSet++
	return nil
}

func (r *Reconciler) isList(tag string) bool {
	return r.items != nil && tag != "" && r.items.IsList(tag)
}

func (r *Reconciler) childAt(parent host.Handle, index int) host.Handle {
	kids := r.host.Children(parent)
	if index < 0 || index >= len(kids) {
		return host.None
	}
	return kids[index]
}

// placeAt moves h, currently the last child of parent, to position index by
// cycling the siblings that must follow it to the end.
func (r *Reconciler) placeAt(parent, h host.Handle, index int) {
	kids := r.host.Children(parent)
	if index >= len(kids) || kids[index] == h {
		return
	}
	for _, c := range kids[index:] {
		if c == h {
			continue
		}
		if err := r.host.ReorderToEnd(c); err != nil {
			r.hostError("reorder", c, err)
		}
	}
	r.stats.Repacks++
}

func (r *Reconciler) hostError(op string, h host.Handle, err error) {
	r.logger.Debug("reconcile: host operation failed", "op", op, "handle", h, "error", err)
	r.metrics.ObserveHostError(op)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
