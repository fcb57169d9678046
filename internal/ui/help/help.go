package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/qbsearch/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Section groups related key bindings
type Section struct {
	Title string
	Keys  []KeyBinding
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"F1", "Toggle help"},
		{"Ctrl+C", "Quit application"},
		{"q", "Quit (search bar unfocused)"},
		{"/, i", "Focus search bar"},
		{"Ctrl+S", "Saved filters"},
		{"Ctrl+O", "Filter history"},
		{"Ctrl+Y", "Copy WHERE clause"},
		{"Ctrl+R", "Recount matching rows"},
	}
}

// GetSearchKeys returns search bar key bindings
func GetSearchKeys() []KeyBinding {
	return []KeyBinding{
		{"Tab/Enter", "Pick highlighted suggestion"},
		{"Enter", "Finish an IN / NOT_IN list"},
		{"↑/↓", "Move suggestion highlight"},
		{"Backspace", "Remove last tag (empty input)"},
		{"Ctrl+E", "Edit last tag"},
		{"Ctrl+W", "Remove last tag"},
		{"Esc", "Finish draft and unfocus"},
	}
}

// GetSections returns every help section in display order
func GetSections() []Section {
	return []Section{
		{Title: "Global", Keys: GetGlobalKeys()},
		{Title: "Search", Keys: GetSearchKeys()},
	}
}

// Render creates the help view
func Render(width, height int, th theme.Theme) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.BorderFocused).
		Padding(1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info).
		Padding(0, 0, 0, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(20)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	var b strings.Builder

	b.WriteString(titleStyle.Render("qbsearch - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, section := range GetSections() {
		b.WriteString(sectionStyle.Render(section.Title))
		b.WriteString("\n")
		for _, kb := range section.Keys {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press F1 or Esc to close help"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(1, 2).
		Width(width - 4).
		Height(height - 4)

	return boxStyle.Render(b.String())
}
