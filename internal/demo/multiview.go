package demo

import (
	"slices"

	"github.com/vango-dev/vtree/pkg/component"
	"github.com/vango-dev/vtree/pkg/sched"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// MultiView is the demo root. Args: Options.
//
// On every Tick or Poll the root first collects what its children emitted
// since the last message, applies it to the shared state, then sends each
// child its slice of that state.
var MultiView = component.Define("multiview", func(args ...any) (component.Component, error) {
	o := argOr(args, 0, Options{})
	if o.Title == "" {
		o.Title = "vtree"
	}
	return &multiView{
		opts:   o,
		active: TabCounter,
		items:  slices.Clone(o.Items),
	}, nil
})

type multiView struct {
	opts Options

	active string
	tick   int
	count  int
	items  []string
	filter string
}

func (m *multiView) Mount(ctx *component.Context) error {
	ctx.Attach(m.render)
	return nil
}

func (m *multiView) render() *vdom.VNode {
	return vdom.Section(vdom.Prop("class", "multi-view"),
		vdom.SlotFor(Header, "header", m.opts.Title, m.active, m.tick),
		vdom.SlotFor(Tabs, "tabs", m.active),
		vdom.IfElse(m.active == TabCounter,
			vdom.SlotFor(Counter, TabCounter, m.count, m.tick),
			vdom.SlotFor(ListView, TabList, m.items, m.filter, m.tick),
		),
		vdom.If(m.opts.StatusHost.IsValid(), vdom.SlotFor(StatusBar, "status", m.opts.StatusHost, m.stateFor("status"))),
	)
}

func (m *multiView) Update(ctx *component.Context, msg component.Message) error {
	switch msg := msg.(type) {
	case Tick:
		m.tick = int(msg)
	case component.Poll:
	default:
		return component.UnknownMessage(msg)
	}

	children := ctx.Children()
	ctx.Forward(component.Dispatch(children.Broadcast(component.Poll{}), map[string]func(component.Event) []component.Event{
		evTabSwitched:    m.onTab,
		evCounterChanged: m.onCount,
		evFilterChanged:  m.onFilter,
		evItemAdded:      m.onAdded,
	}))
	ctx.Forward(children.SendEach(func(key string, _ *component.Task) component.Message {
		return m.stateFor(key)
	}))
	ctx.RequestRender(sched.Low)
	return nil
}

func (m *multiView) stateFor(key string) component.Message {
	switch key {
	case "header":
		return headerState{Title: m.opts.Title, Active: m.active, Tick: m.tick}
	case "tabs":
		return tabsState{Active: m.active}
	case TabCounter:
		return counterState{Tick: m.tick, Count: m.count}
	case TabList:
		return listState{Tick: m.tick, Items: m.items, Filter: m.filter}
	case "status":
		return statusState{Active: m.active, Tick: m.tick, Count: m.count, Items: len(m.items)}
	}
	return nil
}

func (m *multiView) onTab(e component.Event) []component.Event {
	tab, _ := e.Payload.(string)
	if tab != TabCounter && tab != TabList {
		return nil
	}
	m.active = tab
	return []component.Event{{Type: EventSwitched, Payload: tab, Source: "multiview"}}
}

func (m *multiView) onCount(e component.Event) []component.Event {
	m.count, _ = e.Payload.(int)
	return []component.Event{{Type: EventChanged, Payload: m.count, Source: "multiview"}}
}

func (m *multiView) onFilter(e component.Event) []component.Event {
	m.filter, _ = e.Payload.(string)
	return []component.Event{{Type: EventFiltered, Payload: m.filter, Source: "multiview"}}
}

func (m *multiView) onAdded(e component.Event) []component.Event {
	item, _ := e.Payload.(string)
	m.items = append(slices.Clone(m.items), item)
	return []component.Event{{Type: EventAdded, Payload: item, Source: "multiview"}}
}

func (m *multiView) Unmount(*component.Context) {}

// State is a snapshot of the root's shared state.
type State struct {
	Active string
	Tick   int
	Count  int
	Items  []string
	Filter string
}

// StateOf returns the shared state of a task created from MultiView.
func StateOf(t *component.Task) (State, bool) {
	m, ok := t.Component().(*multiView)
	if !ok {
		return State{}, false
	}
	return State{
		Active: m.active,
		Tick:   m.tick,
		Count:  m.count,
		Items:  slices.Clone(m.items),
		Filter: m.filter,
	}, true
}
