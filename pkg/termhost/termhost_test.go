package termhost

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/vtree/pkg/host"
	"github.com/vango-dev/vtree/pkg/memhost"
)

// form builds: div(span "Name", input, div.tabs(button A, button B)).
func form(t *testing.T) (h *Host, root, input, a, b host.Handle) {
	t.Helper()
	h = New()
	root = h.NewRoot("window")
	must := func(id host.Handle, err error) host.Handle {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return id
	}
	div := must(h.CreateNode(root, "div"))
	span := must(h.CreateNode(div, "span"))
	h.SetProperty(span, host.PropText, "Name")
	input = must(h.CreateNode(div, "input"))
	tabs := must(h.CreateNode(div, "div"))
	h.SetProperty(tabs, "class", "tabs")
	a = must(h.CreateNode(tabs, "button"))
	h.SetProperty(a, host.PropText, "A")
	b = must(h.CreateNode(tabs, "button"))
	h.SetProperty(b, host.PropText, "B")
	return h, root, input, a, b
}

func TestFocusCycles(t *testing.T) {
	h, root, input, a, b := form(t)

	if diff := cmp.Diff([]host.Handle{input, a, b}, h.Focusables(root)); diff != "" {
		t.Fatalf("Focusables() (-want +got):\n%s", diff)
	}
	if h.Focused() != host.None {
		t.Errorf("Focused() = %v before any focus", h.Focused())
	}

	var got []host.Handle
	for range 4 {
		got = append(got, h.FocusNext(1, root))
	}
	if diff := cmp.Diff([]host.Handle{input, a, b, input}, got); diff != "" {
		t.Errorf("forward order (-want +got):\n%s", diff)
	}
	if id := h.FocusNext(-1, root); id != b {
		t.Errorf("FocusNext(-1) = %v, want %v", id, b)
	}

	h.DestroyNode(b)
	if h.Focused() != host.None {
		t.Error("focus kept on a destroyed node")
	}
	if id := h.FocusNext(1, root); id != input {
		t.Errorf("FocusNext after loss = %v, want first focusable", id)
	}
}

func TestFocusIgnoresPlainNodes(t *testing.T) {
	h, root, _, _, _ := form(t)
	span := h.Find(root, func(id host.Handle) bool { return h.Kind(id) == "span" })
	h.Focus(span)
	if h.Focused() != host.None {
		t.Errorf("span took focus")
	}
	if got := h.FocusNext(1, h.NewRoot("empty")); got != host.None {
		t.Errorf("FocusNext on empty root = %v", got)
	}
}

func TestTyping(t *testing.T) {
	h, _, input, a, _ := form(t)
	var seen []string
	h.SetProperty(input, memhost.PropOnInput, func(v string) { seen = append(seen, v) })

	h.Focus(input)
	h.TypeRunes("hé")
	h.TypeRunes("!")
	h.Backspace()
	h.Backspace()
	if diff := cmp.Diff([]string{"hé", "hé!", "hé", "h"}, seen); diff != "" {
		t.Errorf("input values (-want +got):\n%s", diff)
	}

	h.Focus(a)
	if err := h.TypeRunes("x"); err != nil {
		t.Errorf("typing on a button: %v", err)
	}
	if len(seen) != 4 {
		t.Error("typing reached the input while a button was focused")
	}
}

func TestActivateFocused(t *testing.T) {
	h, _, _, a, b := form(t)
	clicks := 0
	h.SetProperty(a, memhost.PropCommand, func() { clicks++ })

	if err := h.ActivateFocused(); err != nil {
		t.Errorf("ActivateFocused() without focus = %v", err)
	}
	h.Focus(a)
	h.ActivateFocused()
	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}
	h.Focus(b)
	if err := h.ActivateFocused(); !errors.Is(err, memhost.ErrNoCallback) {
		t.Errorf("ActivateFocused() on button without command = %v", err)
	}
}

func TestRender(t *testing.T) {
	h, root, input, _, b := form(t)
	h.SetProperty(input, memhost.PropValue, "bob")
	h.SetProperty(b, "selected", true)
	list, _ := h.CreateNode(root, "ul")
	h.SetItems(list, []string{"apples", "bread"})

	out := h.Render(root, 0)
	for _, want := range []string{"Name", "> bob", "[A]", "B", "• apples", "• bread"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q:\n%s", want, out)
		}
	}
	lines := strings.Split(out, "\n")
	var tabsLine string
	for _, l := range lines {
		if strings.Contains(l, "[A]") {
			tabsLine = l
		}
	}
	if !strings.Contains(tabsLine, "B") {
		t.Errorf("tab buttons not on one line:\n%s", out)
	}

	h.Focus(input)
	if out := h.Render(root, 0); !strings.Contains(out, "> bob_") {
		t.Errorf("focused input has no cursor:\n%s", out)
	}
}

func TestRenderFollowsSlotsAndSkipsEmpty(t *testing.T) {
	h := New()
	root := h.NewRoot("window")
	slot, _ := h.CreateNode(root, host.KindSlot)
	text, _ := h.CreateNode(slot, host.KindText)
	h.SetProperty(text, host.PropText, "inside")
	h.CreateNode(root, "div")

	if got := h.Render(root, 0); got != "inside" {
		t.Errorf("Render() = %q, want %q", got, "inside")
	}
	if got := h.RenderStatus(h.NewRoot("status"), 40); got != "" {
		t.Errorf("RenderStatus() of empty root = %q", got)
	}
}
