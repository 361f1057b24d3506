package termhost

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/vtree/internal/demo"
	"github.com/vango-dev/vtree/pkg/component"
	"github.com/vango-dev/vtree/pkg/host"
	"github.com/vango-dev/vtree/pkg/reconcile"
)

type app struct {
	t      *testing.T
	model  *Model
	msgs   chan tea.Msg
	events []component.Event
}

func newApp(t *testing.T) *app {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	h := New()
	l := NewTeaLoop()
	a := &app{t: t, msgs: make(chan tea.Msg, 64)}
	l.Attach(func(m tea.Msg) { a.msgs <- m })

	appRoot := h.NewRoot("window")
	status := h.NewRoot("statusbar")
	env := component.Env{
		Reconciler: reconcile.New(h, reconcile.WithLogger(logger)),
		Loop:       l,
		Logger:     logger,
	}
	r, err := component.NewRunner(demo.MultiView, env, appRoot, demo.Options{
		Title:      "Demo",
		Items:      []string{"apples", "bread", "cheese"},
		StatusHost: status,
	})
	if err != nil {
		t.Fatalf("NewRunner() error: %v", err)
	}
	if err := r.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	a.model = &Model{
		Host:    h,
		Loop:    l,
		Runner:  r,
		App:     appRoot,
		Status:  status,
		Title:   "vtree",
		OnEvent: func(e component.Event) { a.events = append(a.events, e) },
	}
	a.model.Init()
	t.Cleanup(func() {
		r.Close()
		l.Close()
	})
	return a
}

func (a *app) key(k tea.KeyMsg) tea.Cmd {
	_, cmd := a.model.Update(k)
	return cmd
}

// settle feeds wake-ups back into the model until no callback is left.
func (a *app) settle() []component.Event {
	a.t.Helper()
	for a.model.Loop.Pending() > 0 {
		select {
		case m := <-a.msgs:
			a.model.Update(m)
		case <-time.After(2 * time.Second):
			a.t.Fatal("loop never woke up")
		}
	}
	out := a.events
	a.events = nil
	return out
}

func (a *app) focusedText() string {
	v, _ := a.model.Host.Property(a.model.Host.Focused(), host.PropText)
	s, _ := v.(string)
	return s
}

func TestModelCounter(t *testing.T) {
	a := newApp(t)

	for range 3 {
		a.key(tea.KeyMsg{Type: tea.KeyTab})
	}
	if got := a.focusedText(); got != "Inc" {
		t.Fatalf("focused %q after three tabs, want Inc", got)
	}
	a.key(tea.KeyMsg{Type: tea.KeyEnter})

	want := []component.Event{{Type: demo.EventChanged, Payload: 1, Source: "multiview"}}
	if diff := cmp.Diff(want, a.settle()); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
	view := a.model.View()
	for _, s := range []string{"Count: 1", "Count: 1 | Items: 3", "changed: 1"} {
		if !strings.Contains(view, s) {
			t.Errorf("View() missing %q:\n%s", s, view)
		}
	}
}

func TestModelListTyping(t *testing.T) {
	a := newApp(t)

	a.key(tea.KeyMsg{Type: tea.KeyTab})
	a.key(tea.KeyMsg{Type: tea.KeyTab})
	if got := a.focusedText(); got != "List" {
		t.Fatalf("focused %q, want List", got)
	}
	a.key(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	want := []component.Event{{Type: demo.EventSwitched, Payload: demo.TabList, Source: "multiview"}}
	if diff := cmp.Diff(want, a.settle()); diff != "" {
		t.Fatalf("events after switching (-want +got):\n%s", diff)
	}

	a.key(tea.KeyMsg{Type: tea.KeyTab})
	if kind := a.model.Host.Kind(a.model.Host.Focused()); kind != "input" {
		t.Fatalf("focused %q, want the filter input", kind)
	}
	a.key(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("bq")})
	a.key(tea.KeyMsg{Type: tea.KeyBackspace})
	if cmd := a.key(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}); cmd != nil {
		t.Error("typing returned a command")
	}

	var filters []any
	for _, e := range a.settle() {
		if e.Type == demo.EventFiltered {
			filters = append(filters, e.Payload)
		}
	}
	if len(filters) == 0 || filters[len(filters)-1] != "br" {
		t.Errorf("filter events = %v, want to end with br", filters)
	}
	view := a.model.View()
	if !strings.Contains(view, "• bread") || strings.Contains(view, "• apples") {
		t.Errorf("filtered list not rendered:\n%s", view)
	}
}

func TestModelQuit(t *testing.T) {
	a := newApp(t)
	if cmd := a.key(tea.KeyMsg{Type: tea.KeyEsc}); cmd == nil {
		t.Fatal("esc did not quit")
	}
	if a.model.Runner.Task().State() != component.Closed {
		t.Error("runner still open after quit")
	}
	if n := a.model.Loop.Pending(); n != 0 {
		t.Errorf("Pending() after quit = %d", n)
	}
}

func TestModelWindowSize(t *testing.T) {
	a := newApp(t)
	a.model.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	for _, line := range strings.Split(a.model.Host.Render(a.model.App, a.model.Width), "\n") {
		if w := len([]rune(line)); w > 20 {
			t.Errorf("line %q is %d wide, want at most 20", line, w)
		}
	}
}
