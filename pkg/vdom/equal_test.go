package vdom

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEqual(t *testing.T) {
	handler := func() {}

	tests := []struct {
		name string
		a, b *VNode
		want bool
	}{
		{"both nil", nil, nil, true},
		{"one nil", Text("a"), nil, false},
		{"text same", Text("a"), Text("a"), true},
		{"text differs", Text("a"), Text("b"), false},
		{"kind differs", Text("a"), Span("a"), false},
		{"tag differs", Div(), Span(), false},
		{"key differs", Div(Key(1)), Div(Key(2)), false},
		{"props same", Div(Prop("x", 1)), Div(Prop("x", 1)), true},
		{"props differ", Div(Prop("x", 1)), Div(Prop("x", 2)), false},
		{"props extra", Div(Prop("x", 1)), Div(Prop("x", 1), Prop("y", 1)), false},
		{"children differ", Div(Text("a")), Div(Text("b")), false},
		{"children count", Div(Text("a")), Div(Text("a"), Text("a")), false},
		{"deep same", Div(Span(Prop("text", "a")), Ul("x")), Div(Span(Prop("text", "a")), Ul("x")), true},
		{"memo short-circuit", Div(MemoBy("k"), Text("a")), Div(MemoBy("k"), Text("b")), true},
		{"memo differs", Div(MemoBy("k1"), Text("a")), Div(MemoBy("k2"), Text("a")), false},
		{"same handler", Button(OnCommand(handler)), Button(OnCommand(handler)), true},
		{"portal same", PortalTo(1, "k", Text("a")), PortalTo(1, "k", Text("a")), true},
		{"portal target", PortalTo(1, "k", Text("a")), PortalTo(2, "k", Text("a")), false},
		{"portal child", PortalTo(1, "k", Text("a")), PortalTo(1, "k", Text("b")), false},
		{"slot same", SlotFor(nil, "c", 1), SlotFor(nil, "c", 1), true},
		{"slot args", SlotFor(nil, "c", 1), SlotFor(nil, "c", 2), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSameNode(t *testing.T) {
	tests := []struct {
		name string
		a, b *VNode
		want bool
	}{
		{"texts", Text("a"), Text("b"), true},
		{"same tag", Div(Prop("x", 1)), Div(Prop("x", 2)), true},
		{"tag differs", Button(), Input(), false},
		{"keyed match", Div(Key("a")), Div(Key("a")), true},
		{"keyed vs unkeyed", Div(Key("a")), Div(), false},
		{"keyed tag differs", Div(Key("a")), Span(Key("a")), false},
		{"portal keys", PortalTo(1, "a", nil), PortalTo(2, "a", nil), true},
		{"portal empty key", PortalTo(1, "", nil), PortalTo(1, "", nil), false},
		{"slot keys", SlotFor(nil, "a"), SlotFor(nil, "b"), false},
		{"variant differs", Text("a"), Div(), false},
		{"nil", nil, Div(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameNode(tt.a, tt.b); got != tt.want {
				t.Errorf("SameNode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPropEqualFunctions(t *testing.T) {
	var fns []func()
	for i := 0; i < 2; i++ {
		fns = append(fns, func() { _ = i })
	}
	a, b := fns[0], fns[1]
	if !PropEqual(a, b) {
		t.Error("closures from the same literal should compare equal")
	}
	other := func() {}
	if PropEqual(a, other) {
		t.Error("closures from different literals should differ")
	}
	if PropEqual(a, nil) {
		t.Error("func vs nil should differ")
	}
	if PropEqual(a, func(string) {}) {
		t.Error("funcs of different types should differ")
	}
	if !PropEqual([]string{"a"}, []string{"a"}) {
		t.Error("slices should use deep equality")
	}
}

func TestChangedProps(t *testing.T) {
	a := Props{"keep": 1, "change": "x", "drop": true}
	b := Props{"keep": 1, "change": "y", "add": 2.5}

	got := ChangedProps(a, b)
	sort.Strings(got)
	want := []string{"add", "change", "drop"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ChangedProps mismatch (-want +got):\n%s", diff)
	}
	if got := ChangedProps(a, a); len(got) != 0 {
		t.Errorf("ChangedProps(a, a) = %v, want none", got)
	}
}
