package styles

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors
var (
	Primary   = lipgloss.Color("#7C3AED")
	Secondary = lipgloss.Color("#A78BFA")
	Success   = lipgloss.Color("#10B981")
	Warning   = lipgloss.Color("#F59E0B")
	Danger    = lipgloss.Color("#EF4444")
	Info      = lipgloss.Color("#3B82F6")
	Muted     = lipgloss.Color("#6B7280")
	TextDim   = lipgloss.Color("#9CA3AF")
)

// Theme holds the styles used for command output. Styles are bound to a
// renderer so color is dropped automatically when the writer is not a
// terminal.
type Theme struct {
	Title    lipgloss.Style
	Target   lipgloss.Style
	Path     lipgloss.Style
	Size     lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Dim      lipgloss.Style
	Bold     lipgloss.Style
	Progress lipgloss.Style
}

// NewTheme builds a theme for output written to w
func NewTheme(w io.Writer) Theme {
	r := lipgloss.NewRenderer(w)

	return Theme{
		Title: r.NewStyle().
			Bold(true).
			Foreground(Primary),
		Target: r.NewStyle().
			Foreground(Secondary).
			Italic(true),
		Path: r.NewStyle().
			Foreground(Info),
		Size: r.NewStyle().
			Foreground(Warning),
		Success: r.NewStyle().
			Foreground(Success).
			Bold(true),
		Error: r.NewStyle().
			Foreground(Danger).
			Bold(true),
		Warning: r.NewStyle().
			Foreground(Warning).
			Bold(true),
		Dim: r.NewStyle().
			Foreground(TextDim),
		Bold: r.NewStyle().
			Bold(true),
		Progress: r.NewStyle().
			Foreground(Primary),
	}
}

// ProgressBar renders a width-cell bar for current out of total
func (t Theme) ProgressBar(current, total int, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	if current > total {
		current = total
	}

	filled := current * width / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return t.Progress.Render(bar)
}
