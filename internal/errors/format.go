package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	codeStyle     = lipgloss.NewStyle().Bold(true)
	locationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	gutterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	detailStyle   = lipgloss.NewStyle().Width(72)
)

// colorEnabled controls whether styles are applied.
var colorEnabled = true

// DisableColors turns styling off.
func DisableColors() {
	colorEnabled = false
}

// EnableColors turns styling on. Styles still degrade to plain text when
// the output is not a terminal.
func EnableColors() {
	colorEnabled = true
}

func paint(s lipgloss.Style, text string) string {
	if !colorEnabled {
		return text
	}
	return s.Render(text)
}

// Format renders the error for terminal display.
func (e *Error) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	if e.Code != "" {
		b.WriteString(paint(errorStyle, "ERROR "))
		b.WriteString(paint(codeStyle, e.Code+": "))
	} else {
		b.WriteString(paint(errorStyle, "ERROR: "))
	}
	b.WriteString(e.Message)
	b.WriteString("\n\n")

	if e.Location != nil {
		b.WriteString("  " + paint(locationStyle, e.Location.String()) + "\n\n")
		if len(e.Context) > 0 {
			first := max(e.Location.Line-2, 1)
			for i, line := range e.Context {
				n := first + i
				marker := "    "
				if n == e.Location.Line {
					marker = paint(errorStyle, "  → ")
				}
				fmt.Fprintf(&b, "%s%4d%s%s\n", marker, n, paint(gutterStyle, " │ "), line)
				if n == e.Location.Line && e.Location.Column > 0 {
					b.WriteString("        " + paint(gutterStyle, "│ "))
					b.WriteString(strings.Repeat(" ", e.Location.Column-1))
					b.WriteString(paint(errorStyle, "^") + "\n")
				}
			}
			b.WriteString("\n")
		}
	}

	if e.Wrapped != nil {
		b.WriteString("  " + e.Wrapped.Error() + "\n\n")
	}

	if e.Detail != "" {
		text := e.Detail
		if colorEnabled {
			text = detailStyle.Render(text)
		}
		for _, line := range strings.Split(text, "\n") {
			b.WriteString("  " + strings.TrimRight(line, " ") + "\n")
		}
		b.WriteString("\n")
	}

	if e.Suggestion != "" {
		b.WriteString("  " + paint(hintStyle, "Hint: ") + e.Suggestion + "\n")
	}

	return b.String()
}

// FormatCompact returns a single-line rendering.
func (e *Error) FormatCompact() string {
	if e.Location != nil {
		return e.Location.String() + ": " + e.Error()
	}
	return e.Error()
}

// FormatJSON returns the error as a JSON object.
func (e *Error) FormatJSON() string {
	out := struct {
		Code       string    `json:"code,omitempty"`
		Category   Category  `json:"category"`
		Message    string    `json:"message"`
		Detail     string    `json:"detail,omitempty"`
		Location   *Location `json:"location,omitempty"`
		Suggestion string    `json:"suggestion,omitempty"`
		Cause      string    `json:"cause,omitempty"`
	}{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Location:   e.Location,
		Suggestion: e.Suggestion,
	}
	if e.Wrapped != nil {
		out.Cause = e.Wrapped.Error()
	}
	data, _ := json.Marshal(out)
	return string(data)
}

// Fprint writes err to w, formatted when it is an *Error.
func Fprint(w io.Writer, err error) {
	if e, ok := err.(*Error); ok {
		fmt.Fprint(w, e.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", paint(errorStyle, "ERROR:"), err)
}

// PrintError prints err to stderr.
func PrintError(err error) {
	Fprint(os.Stderr, err)
}
