package main

import (
	"errors"
	"fmt"
	"testing"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/host"
	"github.com/vango-dev/vtree/pkg/memhost"
	"github.com/vango-dev/vtree/pkg/reconcile"
	"github.com/vango-dev/vtree/pkg/vdom"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"render panic", &reconcile.RenderError{Component: "list", Panic: "boom"}, "V040"},
		{"duplicate key", &reconcile.RenderError{Component: "list", Err: vdom.Validate(vdom.Div(vdom.Span(vdom.Key(1)), vdom.Span(vdom.Key(1))))}, "V041"},
		{"missing node", host.NewNodeError("input", 7, host.ErrNodeNotFound), "V061"},
		{"host failure", host.NewNodeError("activate", 7, memhost.ErrNoCallback), "V060"},
		{"already coded", vterrors.New("V021"), "V021"},
		{"anything else", errors.New("boom"), "V042"},
		{"wrapped render error", fmt.Errorf("start: %w", &reconcile.RenderError{Component: "x", Panic: "p"}), "V040"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorCode(classify(tt.err, "V042")); got != tt.want {
				t.Errorf("classify(%v) code = %q, want %q", tt.err, got, tt.want)
			}
		})
	}

	if err := classify(nil, "V042"); err != nil {
		t.Errorf("classify(nil) = %v, want nil", err)
	}
}

func TestStepHostFailureIsCoded(t *testing.T) {
	mem := memhost.New()
	a := &app{host: mem, root: mem.NewRoot("window")}
	button, err := mem.CreateNode(a.root, "button")
	if err != nil {
		t.Fatal(err)
	}
	if err := mem.SetProperty(button, host.PropText, "Inert"); err != nil {
		t.Fatal(err)
	}

	if got := errorCode(a.step("click:Inert")); got != "V060" {
		t.Errorf("click on a button without a callback = %q, want V060", got)
	}
}
