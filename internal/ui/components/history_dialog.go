package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/qbsearch/internal/history"
	"github.com/rebeliceyang/qbsearch/internal/models"
	"github.com/rebeliceyang/qbsearch/internal/ui/theme"
)

// ApplyHistoryMsg is sent when a history entry should replace the current tags
type ApplyHistoryMsg struct {
	Filter models.TagFilter
}

// HistoryDialog lists recently applied filters
type HistoryDialog struct {
	Width  int
	Height int
	Theme  theme.Theme

	entries  []history.Entry
	selected int
	offset   int
}

// NewHistoryDialog creates a new history dialog
func NewHistoryDialog(th theme.Theme) *HistoryDialog {
	return &HistoryDialog{Width: 80, Height: 24, Theme: th}
}

// SetEntries updates the list
func (d *HistoryDialog) SetEntries(entries []history.Entry) {
	d.entries = entries
	d.selected = 0
	d.offset = 0
}

func (d *HistoryDialog) visibleRows() int {
	rows := d.Height - 6
	if rows < 1 {
		rows = 1
	}
	return rows
}

// Update handles keyboard input
func (d *HistoryDialog) Update(msg tea.KeyMsg) (*HistoryDialog, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return d, func() tea.Msg { return CloseDialogMsg{} }
	case "up", "k":
		if d.selected > 0 {
			d.selected--
			if d.selected < d.offset {
				d.offset = d.selected
			}
		}
	case "down", "j":
		if d.selected < len(d.entries)-1 {
			d.selected++
			if d.selected >= d.offset+d.visibleRows() {
				d.offset = d.selected - d.visibleRows() + 1
			}
		}
	case "enter":
		if d.selected < len(d.entries) {
			f := d.entries[d.selected].Filter
			return d, func() tea.Msg { return ApplyHistoryMsg{Filter: f} }
		}
	}
	return d, nil
}

// View renders the dialog
func (d *HistoryDialog) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(d.Theme.Foreground).
		Background(d.Theme.Info).
		Padding(0, 1).
		Bold(true)
	metaStyle := lipgloss.NewStyle().Foreground(d.Theme.Metadata)

	sections := []string{
		titleStyle.Render("History"),
		metaStyle.Padding(0, 1).Render("↑↓: Navigate  Enter: Apply  Esc: Close"),
		"",
	}

	if len(d.entries) == 0 {
		sections = append(sections, "No filters applied yet.")
	}

	end := d.offset + d.visibleRows()
	if end > len(d.entries) {
		end = len(d.entries)
	}
	for i := d.offset; i < end; i++ {
		e := d.entries[i]
		when := e.AppliedAt.Format("01-02 15:04")
		count := ""
		if e.MatchCount >= 0 {
			count = fmt.Sprintf(" [%d]", e.MatchCount)
		}
		line := metaStyle.Render(when) + " " + truncate(e.Expression, d.Width-20) + metaStyle.Render(count)

		style := lipgloss.NewStyle().Padding(0, 1)
		if i == d.selected {
			style = style.Background(d.Theme.Selection)
		}
		sections = append(sections, style.Render(line))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(d.Theme.BorderFocused).
		Width(d.Width).
		Height(d.Height).
		Padding(1).
		Render(strings.Join(sections, "\n"))
}
