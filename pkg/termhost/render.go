package termhost

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vango-dev/vtree/pkg/host"
)

// Styles used by Render.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Padding(0, 1)

	SelectedStyle = ButtonStyle.
			Underline(true).
			Bold(true)

	FocusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	InputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	ItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true)
)

// Render draws the subtree under root. width limits the line length when
// positive.
func (h *Host) Render(root host.Handle, width int) string {
	var parts []string
	for _, c := range h.Children(root) {
		if s := h.render(c); s != "" {
			parts = append(parts, s)
		}
	}
	out := lipgloss.JoinVertical(lipgloss.Left, parts...)
	if width > 0 {
		out = lipgloss.NewStyle().MaxWidth(width).Render(out)
	}
	return out
}

func (h *Host) render(id host.Handle) string {
	focused := id == h.Focused()
	switch h.Kind(id) {
	case host.KindText, "span", "label":
		return h.text(id)

	case "h1", "h2":
		return TitleStyle.Render(h.text(id))

	case "button":
		label := h.text(id)
		switch {
		case focused:
			return FocusStyle.Render(label)
		case h.flag(id, "selected"):
			return SelectedStyle.Render(label)
		}
		return ButtonStyle.Render("[" + label + "]")

	case "input":
		cursor := ""
		if focused {
			cursor = "_"
		}
		line := "> " + h.value(id) + cursor
		if focused {
			return FocusStyle.Render(line)
		}
		return InputStyle.Render(line)

	case "ul":
		items := h.Items(id)
		lines := make([]string, len(items))
		for i, it := range items {
			lines[i] = ItemStyle.Render("• " + it)
		}
		return strings.Join(lines, "\n")
	}

	var parts []string
	for _, c := range h.Children(id) {
		if s := h.render(c); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	if h.class(id) == "tabs" {
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// RenderStatus draws a status root below a separator.
func (h *Host) RenderStatus(root host.Handle, width int) string {
	body := h.Render(root, 0)
	if body == "" {
		return ""
	}
	style := StatusStyle
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(body)
}

func (h *Host) text(id host.Handle) string {
	v, ok := h.Property(id, host.PropText)
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func (h *Host) class(id host.Handle) string {
	v, _ := h.Property(id, "class")
	s, _ := v.(string)
	return s
}

func (h *Host) flag(id host.Handle, name string) bool {
	v, _ := h.Property(id, name)
	b, _ := v.(bool)
	return b
}
