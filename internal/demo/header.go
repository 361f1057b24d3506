package demo

import (
	"fmt"

	"github.com/vango-dev/vtree/pkg/component"
	"github.com/vango-dev/vtree/pkg/sched"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Header shows "<title> - <active tab> (t<tick>)".
// Args: title string, active string, tick int.
var Header = component.Define("header", func(args ...any) (component.Component, error) {
	return &header{
		title:  argOr(args, 0, ""),
		active: argOr(args, 1, TabCounter),
		tick:   argOr(args, 2, 0),
	}, nil
})

type header struct {
	title  string
	active string
	tick   int

	text     vdom.Cache[string]
	computed int
}

func (h *header) Mount(ctx *component.Context) error {
	ctx.Attach(h.render)
	return nil
}

func (h *header) render() *vdom.VNode {
	text := h.text.Get(func() string {
		h.computed++
		return fmt.Sprintf("%s - %s (t%d)", h.title, h.active, h.tick)
	}, h.title, h.active, h.tick)
	return vdom.H2(vdom.Prop("text", text), vdom.MemoBy(text))
}

func (h *header) Update(ctx *component.Context, msg component.Message) error {
	switch m := msg.(type) {
	case headerState:
		h.title, h.active, h.tick = m.Title, m.Active, m.Tick
		ctx.RequestRender(sched.Low)
	case component.Poll:
	default:
		return component.UnknownMessage(msg)
	}
	return nil
}

func (h *header) Unmount(*component.Context) {}
