package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a named palette the editor can switch at runtime.
type Theme struct {
	Name       string
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
	Muted      lipgloss.Color
	Foreground lipgloss.Color
	Surface    lipgloss.Color
}

// Dark is the default editor theme.
var Dark = Theme{
	Name:       "dark",
	Primary:    lipgloss.Color("#818CF8"), // Indigo
	Accent:     lipgloss.Color("#F472B6"), // Pink
	Success:    lipgloss.Color("#34D399"), // Emerald
	Error:      lipgloss.Color("#F87171"), // Red
	Muted:      lipgloss.Color("#6B7280"), // Gray
	Foreground: lipgloss.Color("#F9FAFB"), // Light gray
	Surface:    lipgloss.Color("#1F2937"), // Dark gray
}

// Light is the alternate editor theme.
var Light = Theme{
	Name:       "light",
	Primary:    lipgloss.Color("#4F46E5"),
	Accent:     lipgloss.Color("#DB2777"),
	Success:    lipgloss.Color("#059669"),
	Error:      lipgloss.Color("#DC2626"),
	Muted:      lipgloss.Color("#9CA3AF"),
	Foreground: lipgloss.Color("#111827"),
	Surface:    lipgloss.Color("#E5E7EB"),
}

// Themes lists the palettes the editor cycles through.
var Themes = []Theme{Dark, Light}

// Header renders the editor's top bar.
func (t Theme) Header() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Foreground).
		Background(t.Surface).
		Padding(0, 1)
}

// EditorFrame borders the text surface.
func (t Theme) EditorFrame() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary)
}

// SidebarFrame borders the roster panel.
func (t Theme) SidebarFrame() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Muted).
		Padding(0, 1)
}

// StatusBar renders the bottom status line.
func (t Theme) StatusBar() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted)
}

// Badge renders a participant's initials block.
func (t Theme) Badge() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Surface).
		Background(t.Accent).
		Padding(0, 1)
}

// Static styles for plain CLI output outside the editor.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Dark.Primary).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Dark.Success).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Dark.Error).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	MutedStyle = lipgloss.NewStyle().
			Foreground(Dark.Muted)

	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Dark.Primary)
)

// Emoji helpers for consistent iconography
const (
	IconSuccess = "✅"
	IconError   = "❌"
	IconWarning = "⚠️"
	IconInfo    = "ℹ️"
	IconRoom    = "🚪"
	IconPeer    = "👤"
	IconCopy    = "📋"
	IconLink    = "🔗"
)

func PrintError(msg string) {
	fmt.Printf("%s %s\n", ErrorStyle.Render(IconError), ErrorStyle.Render(msg))
}

func PrintSuccess(msg string) {
	fmt.Printf("%s %s\n", SuccessStyle.Render(IconSuccess), msg)
}

func PrintSuccessf(format string, args ...any) {
	PrintSuccess(fmt.Sprintf(format, args...))
}

func PrintInfo(msg string) {
	fmt.Printf("%s %s\n", IconInfo, msg)
}

// Truncate shortens s to at most max runes, appending an ellipsis when
// anything was cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}

// Initials derives the one- or two-letter badge text for a display name.
func Initials(name string) string {
	fields := strings.Fields(strings.TrimSpace(name))
	switch {
	case len(fields) == 0:
		return "?"
	case len(fields) == 1:
		r := []rune(fields[0])
		return strings.ToUpper(string(r[:1]))
	default:
		first := []rune(fields[0])
		last := []rune(fields[len(fields)-1])
		return strings.ToUpper(string(first[:1]) + string(last[:1]))
	}
}
