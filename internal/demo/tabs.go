package demo

import (
	"github.com/vango-dev/vtree/pkg/component"
	"github.com/vango-dev/vtree/pkg/sched"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Tabs switches between the counter and the list.
// Args: active string.
var Tabs = component.Define("tabs", func(args ...any) (component.Component, error) {
	return &tabs{active: argOr(args, 0, TabCounter)}, nil
})

type tabs struct {
	ctx    *component.Context
	active string
}

func (t *tabs) Mount(ctx *component.Context) error {
	t.ctx = ctx
	ctx.Attach(t.render)
	return nil
}

func (t *tabs) render() *vdom.VNode {
	return vdom.Div(vdom.Prop("class", "tabs"), vdom.MemoBy(t.active),
		t.button("Counter", TabCounter),
		t.button("List", TabList),
	)
}

func (t *tabs) button(label, tab string) *vdom.VNode {
	return vdom.Button(vdom.Key(tab),
		vdom.Prop("text", label),
		vdom.Prop("selected", t.active == tab),
		vdom.OnCommand(func() { t.switchTo(tab) }),
	)
}

func (t *tabs) switchTo(tab string) {
	if t.active == tab {
		return
	}
	t.active = tab
	t.ctx.Emit(evTabSwitched, tab)
	t.ctx.RequestRender(sched.High)
	t.ctx.RequestImmediateRender()
}

func (t *tabs) Update(ctx *component.Context, msg component.Message) error {
	switch m := msg.(type) {
	case tabsState:
		if m.Active != t.active {
			t.active = m.Active
			ctx.RequestRender(sched.Low)
		}
	case component.Poll:
	default:
		return component.UnknownMessage(msg)
	}
	return nil
}

func (t *tabs) Unmount(*component.Context) {}
