package component

import (
	"github.com/vango-dev/vtree/pkg/host"
)

// Factory creates a task rendering into parent. It is what slot markers
// carry: vdom.SlotFor(factory, key, args...).
type Factory func(env Env, parent host.Handle, args ...any) (*Task, error)

// Define builds a Factory from a constructor. The task is named name.
//
//	var Counter = component.Define("counter", func(args ...any) (component.Component, error) {
//	    return &counter{}, nil
//	})
func Define(name string, ctor func(args ...any) (Component, error)) Factory {
	return func(env Env, parent host.Handle, args ...any) (*Task, error) {
		c, err := ctor(args...)
		if err != nil {
			return nil, err
		}
		return NewTask(name, c, env, parent)
	}
}

// Funcs adapts plain functions to Component. Nil fields are no-ops;
// a nil OnUpdate rejects every message.
type Funcs struct {
	OnMount   func(ctx *Context) error
	OnUpdate  func(ctx *Context, msg Message) error
	OnUnmount func(ctx *Context)
}

var _ Component = Funcs{}

// Mount implements Component.
func (f Funcs) Mount(ctx *Context) error {
	if f.OnMount == nil {
		return nil
	}
	return f.OnMount(ctx)
}

// Update implements Component.
func (f Funcs) Update(ctx *Context, msg Message) error {
	if f.OnUpdate == nil {
		return UnknownMessage(msg)
	}
	return f.OnUpdate(ctx, msg)
}

// Unmount implements Component.
func (f Funcs) Unmount(ctx *Context) {
	if f.OnUnmount != nil {
		f.OnUnmount(ctx)
	}
}
