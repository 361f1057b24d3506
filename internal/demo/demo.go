// Package demo is a multi-view application built on the component runtime.
//
// The root, MultiView, shows a header with a memoized title, tab
// navigation, either a counter or a filterable list, and a status bar that
// is rendered through a portal into a host node outside the application
// frame. Children report input through events; the root owns the shared
// state and pushes it back down as typed messages on every Tick or Poll.
package demo

import (
	"github.com/vango-dev/vtree/pkg/component"
	"github.com/vango-dev/vtree/pkg/host"
)

// Tick sets the parent tick shown by the views.
type Tick int

// Tabs.
const (
	TabCounter = "counter"
	TabList    = "list"
)

// Events leaving the root.
const (
	EventSwitched = "switched"
	EventChanged  = "changed"
	EventFiltered = "filtered"
	EventAdded    = "added"
)

// Events between children and their parents.
const (
	evTabSwitched    = "tab_switched"
	evCounterChanged = "counter_changed"
	evFilterChanged  = "filter_changed"
	evAddRequested   = "item_add_requested"
	evItemAdded      = "item_added"
)

// Options configures MultiView.
type Options struct {
	Title string
	Items []string

	// StatusHost receives the status bar. It should live outside the node
	// the root renders into.
	StatusHost host.Handle
}

type headerState struct {
	Title  string
	Active string
	Tick   int
}

type tabsState struct {
	Active string
}

type counterState struct {
	Tick  int
	Count int
}

type listState struct {
	Tick   int
	Items  []string
	Filter string
}

type filterState struct {
	Filter string
}

type statusState struct {
	Active string
	Tick   int
	Count  int
	Items  int
}

// argOr returns args[i] as T, or def when it is absent or of another type.
func argOr[T any](args []any, i int, def T) T {
	if i < len(args) {
		if v, ok := args[i].(T); ok {
			return v
		}
	}
	return def
}

var _ component.Message = Tick(0)
