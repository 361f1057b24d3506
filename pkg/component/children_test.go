package component

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/vtree/pkg/host"
	"github.com/vango-dev/vtree/pkg/sched"
	. "github.com/vango-dev/vtree/pkg/vdom"
)

type ping struct{}

type setKeys []string

// spawned records every child task a test factory creates, by key.
type spawned map[string][]*Task

func (s spawned) factory() Factory {
	ctor := Define("item", func(args ...any) (Component, error) {
		key := args[0].(string)
		return Funcs{
			OnMount: func(ctx *Context) error {
				ctx.Attach(func() *VNode { return Text("item " + key) })
				ctx.Emit("mounted", key)
				return nil
			},
			OnUpdate: func(ctx *Context, msg Message) error {
				if _, ok := msg.(ping); !ok {
					return UnknownMessage(msg)
				}
				ctx.Emit("pong", key)
				return nil
			},
		}, nil
	})
	return func(env Env, parent host.Handle, args ...any) (*Task, error) {
		t, err := ctor(env, parent, args...)
		if err == nil {
			s[args[0].(string)] = append(s[args[0].(string)], t)
		}
		return t, err
	}
}

// parentOf renders one slot per key and broadcasts pings to its children.
func parentOf(factory Factory, keys ...string) Component {
	return Funcs{
		OnMount: func(ctx *Context) error {
			ctx.Attach(func() *VNode {
				return Div(Range(keys, func(k string, _ int) *VNode {
					return SlotFor(factory, k, k)
				}))
			})
			return nil
		},
		OnUpdate: func(ctx *Context, msg Message) error {
			switch m := msg.(type) {
			case ping:
				ctx.Forward(ctx.Children().Broadcast(m))
			case setKeys:
				keys = m
				ctx.RequestRender(sched.High)
			default:
				return UnknownMessage(msg)
			}
			return nil
		},
	}
}

func TestChildrenInstantiatedFromSlots(t *testing.T) {
	te := newTestEnv(t)
	s := spawned{}
	parent, _ := NewTask("parent", parentOf(s.factory(), "a", "b"), te.env, te.root)

	first, err := parent.Start()
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 0 {
		t.Errorf("parent initial batch = %v, want empty", first)
	}
	if diff := cmp.Diff([]string{"a", "b"}, parent.Context().Children().Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	div := te.host.Children(te.root)[0]
	slots := te.host.Children(div)
	if len(slots) != 2 {
		t.Fatalf("slot nodes = %d, want 2", len(slots))
	}
	for i, key := range []string{"a", "b"} {
		if got := te.host.Kind(slots[i]); got != host.KindSlot {
			t.Errorf("slot %d kind = %q, want %q", i, got, host.KindSlot)
		}
		if got := s[key][0].Host(); got != slots[i] {
			t.Errorf("child %s renders into %v, want slot %v", key, got, slots[i])
		}
		text := te.host.Children(slots[i])[0]
		if v, _ := te.host.Property(text, host.PropText); v != "item "+key {
			t.Errorf("child %s text = %v", key, v)
		}
	}
}

func TestChildEventsFollowTreeOrder(t *testing.T) {
	te := newTestEnv(t)
	s := spawned{}
	parent, _ := NewTask("parent", parentOf(s.factory(), "a", "b"), te.env, te.root)
	if _, err := parent.Start(); err != nil {
		t.Fatal(err)
	}

	got := parent.Resume(ping{})
	want := []Event{
		{Type: "mounted", Payload: "a", Source: "item"},
		{Type: "pong", Payload: "a", Source: "item"},
		{Type: "mounted", Payload: "b", Source: "item"},
		{Type: "pong", Payload: "b", Source: "item"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("first broadcast (-want +got):\n%s", diff)
	}

	got = parent.Resume(ping{})
	want = []Event{
		{Type: "pong", Payload: "a", Source: "item"},
		{Type: "pong", Payload: "b", Source: "item"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("second broadcast (-want +got):\n%s", diff)
	}
}

func TestChildrenFollowSlotChanges(t *testing.T) {
	te := newTestEnv(t)
	s := spawned{}
	parent, _ := NewTask("parent", parentOf(s.factory(), "a", "b", "c"), te.env, te.root)
	if _, err := parent.Start(); err != nil {
		t.Fatal(err)
	}
	children := parent.Context().Children()

	parent.Resume(setKeys{"c", "a"})
	if diff := cmp.Diff([]string{"c", "a"}, children.Keys()); diff != "" {
		t.Errorf("Keys() after reorder (-want +got):\n%s", diff)
	}
	if st := s["b"][0].State(); st != Closed {
		t.Errorf("removed child state = %v, want closed", st)
	}
	for _, key := range []string{"a", "c"} {
		if n := len(s[key]); n != 1 {
			t.Errorf("child %s instantiated %d times, want 1", key, n)
		}
		if children.Get(key) != s[key][0] {
			t.Errorf("child %s was replaced", key)
		}
	}

	got := parent.Resume(ping{})
	var order []any
	for _, e := range got {
		if e.Type == "pong" {
			order = append(order, e.Payload)
		}
	}
	if diff := cmp.Diff([]any{"c", "a"}, order); diff != "" {
		t.Errorf("pong order (-want +got):\n%s", diff)
	}

	parent.Resume(setKeys{"a", "d"})
	if diff := cmp.Diff([]string{"a", "d"}, children.Keys()); diff != "" {
		t.Errorf("Keys() after insert (-want +got):\n%s", diff)
	}
	if st := s["c"][0].State(); st != Closed {
		t.Errorf("child c state = %v, want closed", st)
	}

	parent.Close()
	for key, tasks := range s {
		for _, task := range tasks {
			if task.State() != Closed {
				t.Errorf("child %s survived parent Close", key)
			}
		}
	}
}

func TestChildInsidePortal(t *testing.T) {
	te := newTestEnv(t)
	s := spawned{}
	target := te.host.NewRoot("statusbar")
	factory := s.factory()

	parent, _ := NewTask("parent", Funcs{
		OnMount: func(ctx *Context) error {
			ctx.Attach(func() *VNode {
				return Div(PortalTo(target, "status", Div(SlotFor(factory, "x", "x"))))
			})
			return nil
		},
	}, te.env, te.root)
	if _, err := parent.Start(); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"x"}, parent.Context().Children().Keys()); diff != "" {
		t.Fatalf("Keys() mismatch (-want +got):\n%s", diff)
	}
	div := te.host.Children(target)[0]
	slot := te.host.Children(div)[0]
	if s["x"][0].Host() != slot {
		t.Errorf("child renders into %v, want slot %v in the portal target", s["x"][0].Host(), slot)
	}
}

func TestSlotWithoutFactoryIgnored(t *testing.T) {
	te := newTestEnv(t)
	parent, _ := NewTask("parent", Funcs{
		OnMount: func(ctx *Context) error {
			ctx.Attach(func() *VNode {
				return Div(SlotFor(func() {}, "bad"))
			})
			return nil
		},
	}, te.env, te.root)
	if _, err := parent.Start(); err != nil {
		t.Fatal(err)
	}
	if n := parent.Context().Children().Len(); n != 0 {
		t.Errorf("Len() = %d, want 0", n)
	}
}
