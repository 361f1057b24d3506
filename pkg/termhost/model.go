package termhost

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vango-dev/vtree/pkg/component"
	"github.com/vango-dev/vtree/pkg/host"
)

var (
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500"))
)

// maxEvents is how many recent root events the model shows.
const maxEvents = 3

// Model is the bubbletea model of a running component tree.
type Model struct {
	Host   *Host
	Loop   *TeaLoop
	Runner *component.Runner
	App    host.Handle
	Status host.Handle
	Title  string

	// OnEvent, when set, sees every event that reaches the root.
	OnEvent func(component.Event)

	// Width limits rendered lines; window size messages update it.
	Width int

	recent []string
	err    error
}

var _ tea.Model = (*Model)(nil)

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.drain()
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case wakeMsg:
		m.Loop.RunPending()

	case tea.WindowSizeMsg:
		m.Width = msg.Width

	case tea.KeyMsg:
		if m.key(msg) {
			m.Runner.Close()
			m.Loop.Close()
			return m, tea.Quit
		}
	}
	m.drain()
	return m, nil
}

// key handles one key press and reports whether the program should quit.
func (m *Model) key(msg tea.KeyMsg) bool {
	var err error
	switch msg.String() {
	case "ctrl+c", "esc":
		return true
	case "q":
		if m.Host.Kind(m.Host.Focused()) != "input" {
			return true
		}
		err = m.Host.TypeRunes("q")
	case "tab", "down":
		m.Host.FocusNext(1, m.App, m.Status)
	case "shift+tab", "up":
		m.Host.FocusNext(-1, m.App, m.Status)
	case "enter", " ", "space":
		switch {
		case m.Host.Kind(m.Host.Focused()) != "input":
			err = m.Host.ActivateFocused()
		case msg.Type == tea.KeySpace:
			err = m.Host.TypeRunes(" ")
		}
	case "backspace":
		err = m.Host.Backspace()
	default:
		if msg.Type == tea.KeyRunes {
			err = m.Host.TypeRunes(string(msg.Runes))
		}
	}
	m.err = err
	return false
}

func (m *Model) drain() {
	for _, e := range m.Runner.Events() {
		if m.OnEvent != nil {
			m.OnEvent(e)
		}
		line := e.Type
		if e.Payload != nil {
			line = fmt.Sprintf("%s: %v", e.Type, e.Payload)
		}
		m.recent = append(m.recent, line)
	}
	if n := len(m.recent); n > maxEvents {
		m.recent = m.recent[n-maxEvents:]
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	if m.Title != "" {
		b.WriteString(TitleStyle.Render(m.Title))
		b.WriteString("\n\n")
	}
	b.WriteString(m.Host.Render(m.App, m.Width))
	b.WriteString("\n\n")
	if s := m.Host.RenderStatus(m.Status, m.Width); s != "" {
		b.WriteString(s)
		b.WriteString("\n")
	}
	for _, line := range m.recent {
		b.WriteString(eventStyle.Render("• " + line))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(eventStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("tab: focus • enter: activate • type to edit • q/esc: quit"))
	return b.String()
}
