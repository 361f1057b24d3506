package reconcile

import (
	"github.com/vango-dev/vtree/pkg/host"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Record is the mount record of one portal target: the key of the portal
// currently rendering into it and the last VNode rendered there.
type Record struct {
	Key   string
	Child *vdom.VNode
}

// Registry maps portal target hosts to their mount records.
//
// Entries never keep a target alive. They are removed when the target is
// destroyed through the reconciler, when Forget is called for it, or when
// the target is found missing at the start of a top-level call.
type Registry struct {
	records map[host.Handle]*Record
}

func newRegistry() *Registry {
	return &Registry{records: make(map[host.Handle]*Record)}
}

// Record returns the mount record of target.
func (g *Registry) Record(target host.Handle) (Record, bool) {
	rec, ok := g.records[target]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Len returns the number of live mount records.
func (g *Registry) Len() int {
	return len(g.records)
}

// Targets returns the targets that currently hold a mount record.
func (g *Registry) Targets() []host.Handle {
	out := make([]host.Handle, 0, len(g.records))
	for t := range g.records {
		out = append(out, t)
	}
	return out
}

func (g *Registry) get(target host.Handle) *Record {
	return g.records[target]
}

func (g *Registry) set(target host.Handle, rec *Record) {
	g.records[target] = rec
}

func (g *Registry) drop(target host.Handle) {
	delete(g.records, target)
}

func (g *Registry) prune(exists func(host.Handle) bool) {
	for t := range g.records {
		if !exists(t) {
			delete(g.records, t)
		}
	}
}

// mountPortal renders the child of portal p into its target using the
// target's mount record as the previous tree.
func (r *Reconciler) mountPortal(p *vdom.VNode) {
	target := p.Target
	if !target.IsValid() || !r.host.Exists(target) {
		r.logger.Debug("reconcile: portal target missing, skipping", "target", target, "key", p.Key)
		r.portals.drop(target)
		return
	}
	r.markMounted(target)

	rec := r.portals.get(target)
	if rec == nil || rec.Key != p.Key {
		// First mount, or another portal took the target over: the target's
		// previous content is not ours to patch against.
		for _, c := range r.host.Children(target) {
			r.destroy(c)
		}
		rec = &Record{Key: p.Key}
	}

	current := r.adopt(r.childAt(target, 0), rec.Child)
	h := r.patchNode(target, current, rec.Child, p.Child)
	if h.IsValid() {
		r.placeAt(target, h, 0)
	}
	rec.Child = p.Child
	r.portals.set(target, rec)
}
