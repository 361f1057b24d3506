package reconcile

import "fmt"

// Stats counts the work done by one top-level reconciler call.
type Stats struct {
	Created       int // host nodes created
	Destroyed     int // host nodes destroyed
	PropsSet      int // property writes, text included
	Moves         int // matched children that changed relative order
	Repacks       int // children lists that needed ReorderToEnd calls
	ItemsReplaced int // list containers whose items were replaced
	Skipped       int // subtrees skipped by equality or memo match
}

// Mutations returns the number of host mutations, reorders excluded.
func (s Stats) Mutations() int {
	return s.Created + s.Destroyed + s.PropsSet + s.ItemsReplaced
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Created += o.Created
	s.Destroyed += o.Destroyed
	s.PropsSet += o.PropsSet
	s.Moves += o.Moves
	s.Repacks += o.Repacks
	s.ItemsReplaced += o.ItemsReplaced
	s.Skipped += o.Skipped
}

func (s Stats) String() string {
	return fmt.Sprintf("created=%d destroyed=%d set=%d moves=%d repacks=%d items=%d skipped=%d",
		s.Created, s.Destroyed, s.PropsSet, s.Moves, s.Repacks, s.ItemsReplaced, s.Skipped)
}
