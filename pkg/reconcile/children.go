package reconcile

import (
	"github.com/vango-dev/vtree/pkg/host"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// childPlan is the outcome of matching an old children list against a new one.
type childPlan struct {
	// assign[newIndex] is the matched old index, or -1 for a create.
	assign []int
	// stable[newIndex] is true for matched children that keep their
	// relative order and therefore need no move.
	stable []bool
	// deletes are unmatched old indices, highest first.
	deletes []int
}

// planChildren matches new children to old children. Keyed children match
// by key; unkeyed children match the same-node old child whose index is
// closest to their new index.
func planChildren(prev, next []*vdom.VNode) childPlan {
	plan := childPlan{
		assign: make([]int, len(next)),
		stable: make([]bool, len(next)),
	}
	used := make([]bool, len(prev))

	prevKeyed := make(map[string]int, len(prev))
	for i, c := range prev {
		if c.IsKeyed() {
			if _, dup := prevKeyed[c.Key]; !dup {
				prevKeyed[c.Key] = i
			}
		}
	}

	// Keyed pass
	for ni, n := range next {
		plan.assign[ni] = -1
		if !n.IsKeyed() {
			continue
		}
		if oi, ok := prevKeyed[n.Key]; ok && !used[oi] && vdom.SameNode(prev[oi], n) {
			plan.assign[ni] = oi
			used[oi] = true
		}
	}

	// Unkeyed pass: nearest same-node candidate among unmatched old children.
	for ni, n := range next {
		if n.IsKeyed() {
			continue
		}
		best := -1
		for oi, o := range prev {
			if used[oi] || o.IsKeyed() || !vdom.SameNode(o, n) {
				continue
			}
			if best < 0 || abs(oi-ni) < abs(best-ni) {
				best = oi
			}
		}
		if best >= 0 {
			plan.assign[ni] = best
			used[best] = true
		}
	}

	for oi := len(prev) - 1; oi >= 0; oi-- {
		if !used[oi] {
			plan.deletes = append(plan.deletes, oi)
		}
	}

	// Matched children on the longest increasing run of old indices stay put;
	// every other matched child is a move.
	var matched []int
	for ni, oi := range plan.assign {
		if oi >= 0 {
			matched = append(matched, ni)
		}
	}
	olds := make([]int, len(matched))
	for i, ni := range matched {
		olds[i] = plan.assign[ni]
	}
	for _, i := range longestIncreasing(olds) {
		plan.stable[matched[i]] = true
	}
	return plan
}

// patchChildren reconciles the children of the host node h.
func (r *Reconciler) patchChildren(h host.Handle, prev, next []*vdom.VNode) {
	if len(prev) == 0 && len(next) == 0 {
		return
	}

	handles, strays := r.alignChildren(h, prev)
	plan := planChildren(prev, next)
	final := make([]host.Handle, len(next))

	// Patches: matched children that do not move.
	for ni, n := range next {
		if oi := plan.assign[ni]; oi >= 0 && plan.stable[ni] {
			final[ni] = r.patchNode(h, handles[oi], prev[oi], n)
		}
	}

	// Deletes, highest original index first.
	for _, oi := range plan.deletes {
		r.destroy(handles[oi])
	}
	for _, s := range strays {
		r.destroy(s)
	}

	// Moves
	for ni, n := range next {
		if oi := plan.assign[ni]; oi >= 0 && !plan.stable[ni] {
			final[ni] = r.patchNode(h, handles[oi], prev[oi], n)
			r.stats.Moves++
		}
	}

	// Creates
	for ni, n := range next {
		if plan.assign[ni] < 0 {
			final[ni] = r.create(h, n)
		}
	}

	r.repack(h, final)
}

// alignChildren returns, for every old child, the host node representing it.
// Normally this is positional. When the host children no longer line up
// with prev (nodes destroyed out-of-band), back-references are used and the
// host children that match nothing are returned as strays.
func (r *Reconciler) alignChildren(h host.Handle, prev []*vdom.VNode) (handles, strays []host.Handle) {
	kids := r.host.Children(h)
	handles = make([]host.Handle, len(prev))
	if len(kids) == len(prev) {
		copy(handles, kids)
		return handles, nil
	}

	index := make(map[*vdom.VNode]int, len(prev))
	for i, v := range prev {
		index[v] = i
	}
	for _, k := range kids {
		v, ok := r.bound[k]
		if !ok {
			strays = append(strays, k)
			continue
		}
		i, ok := index[v]
		if !ok || handles[i].IsValid() {
			strays = append(strays, k)
			continue
		}
		handles[i] = k
	}
	r.logger.Debug("reconcile: host children out of sync", "parent", h,
		"expected", len(prev), "found", len(kids), "strays", len(strays))
	return handles, strays
}

// repack brings the host children of h into the order of final. Hosts only
// offer append-at-end positioning, so every child from the first
// out-of-place one onward is reattached in order.
func (r *Reconciler) repack(h host.Handle, final []host.Handle) {
	want := final[:0:0]
	for _, f := range final {
		if f.IsValid() {
			want = append(want, f)
		}
	}

	kids := r.host.Children(h)
	first := -1
	for i, w := range want {
		if i >= len(kids) || kids[i] != w {
			first = i
			break
		}
	}
	if first < 0 {
		return
	}
	for _, w := range want[first:] {
		if err := r.host.ReorderToEnd(w); err != nil {
			r.hostError("reorder", w, err)
		}
	}
	r.stats.Repacks++
}

// longestIncreasing returns the indices of one longest strictly increasing
// subsequence of seq.
func longestIncreasing(seq []int) []int {
	if len(seq) == 0 {
		return nil
	}
	// tails[k] is the index in seq of the smallest tail of an increasing
	// run of length k+1.
	tails := make([]int, 0, len(seq))
	prev := make([]int, len(seq))
	for i, v := range seq {
		lo, hi := 0, len(tails)
		for lo < hi {
			mid := (lo + hi) / 2
			if seq[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			prev[i] = tails[lo-1]
		} else {
			prev[i] = -1
		}
		if lo == len(tails) {
			tails = append(tails, i)
		} else {
			tails[lo] = i
		}
	}

	out := make([]int, len(tails))
	for k, i := len(tails)-1, tails[len(tails)-1]; k >= 0; k-- {
		out[k] = i
		i = prev[i]
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
