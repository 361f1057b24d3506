package demo

import (
	"fmt"

	"github.com/vango-dev/vtree/pkg/component"
	"github.com/vango-dev/vtree/pkg/host"
	"github.com/vango-dev/vtree/pkg/sched"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// StatusBar renders a one-line summary through a portal into a host node
// outside the application frame. It never emits events.
// Args: target host.Handle, initial statusState.
var StatusBar = component.Define("status", func(args ...any) (component.Component, error) {
	target := argOr(args, 0, host.None)
	if !target.IsValid() {
		return nil, fmt.Errorf("demo: status bar needs a target host node")
	}
	return &statusBar{target: target, state: argOr(args, 1, statusState{Active: TabCounter})}, nil
})

type statusBar struct {
	target host.Handle
	state  statusState
}

func (s *statusBar) Mount(ctx *component.Context) error {
	ctx.Attach(s.render)
	return nil
}

// Text returns the status line.
func (st statusState) Text() string {
	return fmt.Sprintf("Active: %s | Tick: %d | Count: %d | Items: %d",
		st.Active, st.Tick, st.Count, st.Items)
}

func (s *statusBar) render() *vdom.VNode {
	return vdom.PortalTo(s.target, "status",
		vdom.Div(vdom.Prop("class", "status"),
			vdom.Span(vdom.Prop("text", s.state.Text())),
		),
	)
}

func (s *statusBar) Update(ctx *component.Context, msg component.Message) error {
	switch m := msg.(type) {
	case statusState:
		if m != s.state {
			s.state = m
			ctx.RequestRender(sched.Low)
		}
	case component.Poll:
	default:
		return component.UnknownMessage(msg)
	}
	return nil
}

func (s *statusBar) Unmount(*component.Context) {}
