package demo

import (
	"fmt"

	"github.com/vango-dev/vtree/pkg/component"
	"github.com/vango-dev/vtree/pkg/sched"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Counter shows a count with increment and decrement buttons.
// Args: count int, tick int.
var Counter = component.Define("counter", func(args ...any) (component.Component, error) {
	return &counter{count: argOr(args, 0, 0), tick: argOr(args, 1, 0)}, nil
})

type counter struct {
	ctx   *component.Context
	count int
	tick  int
}

func (c *counter) Mount(ctx *component.Context) error {
	c.ctx = ctx
	ctx.Attach(c.render)
	return nil
}

func (c *counter) render() *vdom.VNode {
	return vdom.Div(vdom.Prop("class", "view counter"), vdom.MemoBy("counter", c.tick, c.count),
		vdom.Span(vdom.Prop("text", fmt.Sprintf("Parent tick: %d", c.tick))),
		vdom.Span(vdom.Prop("text", fmt.Sprintf("Count: %d", c.count))),
		vdom.Button(vdom.Prop("text", "Inc"), vdom.OnCommand(func() { c.add(1) })),
		vdom.Button(vdom.Prop("text", "Dec"), vdom.OnCommand(func() { c.add(-1) })),
	)
}

func (c *counter) add(delta int) {
	c.count += delta
	c.ctx.Emit(evCounterChanged, c.count)
	c.ctx.RequestRender(sched.High)
	c.ctx.RequestImmediateRender()
}

func (c *counter) Update(ctx *component.Context, msg component.Message) error {
	switch m := msg.(type) {
	case counterState:
		if m.Tick != c.tick || m.Count != c.count {
			c.tick, c.count = m.Tick, m.Count
			ctx.RequestRender(sched.Low)
		}
	case component.Poll:
	default:
		return component.UnknownMessage(msg)
	}
	return nil
}

func (c *counter) Unmount(*component.Context) {}
