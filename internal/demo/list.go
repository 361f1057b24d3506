package demo

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vango-dev/vtree/pkg/component"
	"github.com/vango-dev/vtree/pkg/sched"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// ListFilter is the text filter and add button above the list.
// Args: filter string.
var ListFilter = component.Define("list_filter", func(args ...any) (component.Component, error) {
	return &listFilter{filter: argOr(args, 0, "")}, nil
})

type listFilter struct {
	ctx    *component.Context
	filter string
}

func (f *listFilter) Mount(ctx *component.Context) error {
	f.ctx = ctx
	ctx.Attach(f.render)
	return nil
}

func (f *listFilter) render() *vdom.VNode {
	return vdom.Div(vdom.Prop("class", "list-controls"), vdom.MemoBy("filter", f.filter),
		vdom.Input(vdom.Prop("value", f.filter), vdom.OnInput(f.changed)),
		vdom.Button(vdom.Prop("text", "Add"), vdom.OnCommand(f.add)),
	)
}

func (f *listFilter) changed(value string) {
	if value == f.filter {
		return
	}
	f.filter = value
	f.ctx.Emit(evFilterChanged, value)
	f.ctx.RequestImmediateRender()
}

func (f *listFilter) add() {
	f.ctx.Emit(evAddRequested, nil)
	f.ctx.RequestImmediateRender()
}

func (f *listFilter) Update(ctx *component.Context, msg component.Message) error {
	switch m := msg.(type) {
	case filterState:
		if m.Filter != f.filter {
			f.filter = m.Filter
			ctx.RequestRender(sched.Low)
		}
	case component.Poll:
	default:
		return component.UnknownMessage(msg)
	}
	return nil
}

func (f *listFilter) Unmount(*component.Context) {}

// ListView shows the items matching the filter in a list container.
// Args: items []string, filter string, tick int.
var ListView = component.Define("list", func(args ...any) (component.Component, error) {
	return &listView{
		items:  slices.Clone(argOr[[]string](args, 0, nil)),
		filter: argOr(args, 1, ""),
		tick:   argOr(args, 2, 0),
	}, nil
})

type listView struct {
	items  []string
	filter string
	tick   int

	shown vdom.Cache[[]string]
}

func (l *listView) Mount(ctx *component.Context) error {
	ctx.Attach(l.render)
	return nil
}

func (l *listView) render() *vdom.VNode {
	shown := l.shown.Get(func() []string { return Filter(l.items, l.filter) }, l.items, l.filter)
	return vdom.Div(vdom.Prop("class", "view list"),
		vdom.SlotFor(ListFilter, "filter", l.filter),
		vdom.Ul(vdom.Key("items"), vdom.MemoBy("list", l.filter, len(l.items)),
			vdom.Range(shown, func(item string, _ int) *vdom.VNode {
				return vdom.Li(vdom.Key(item), vdom.Prop("text", item))
			}),
		),
	)
}

func (l *listView) Update(ctx *component.Context, msg component.Message) error {
	switch m := msg.(type) {
	case component.Poll:
		events := ctx.Children().Send("filter", component.Poll{})
		ctx.Forward(component.Dispatch(events, map[string]func(component.Event) []component.Event{
			evFilterChanged: l.onFilter,
			evAddRequested:  l.onAdd,
		}))
	case listState:
		l.tick = m.Tick
		l.items = slices.Clone(m.Items)
		l.filter = m.Filter
		ctx.Forward(ctx.Children().Send("filter", filterState{Filter: l.filter}))
	default:
		return component.UnknownMessage(msg)
	}
	ctx.RequestRender(sched.Low)
	return nil
}

func (l *listView) onFilter(e component.Event) []component.Event {
	l.filter, _ = e.Payload.(string)
	return []component.Event{{Type: evFilterChanged, Payload: l.filter, Source: "list"}}
}

func (l *listView) onAdd(component.Event) []component.Event {
	item := fmt.Sprintf("Item %d @t%d", len(l.items)+1, l.tick)
	l.items = append(slices.Clone(l.items), item)
	return []component.Event{{Type: evItemAdded, Payload: item, Source: "list"}}
}

func (l *listView) Unmount(*component.Context) {}

// Filter returns the items containing filter, case-insensitively.
func Filter(items []string, filter string) []string {
	if filter == "" {
		return slices.Clone(items)
	}
	needle := strings.ToLower(filter)
	var out []string
	for _, it := range items {
		if strings.Contains(strings.ToLower(it), needle) {
			out = append(out, it)
		}
	}
	return out
}
