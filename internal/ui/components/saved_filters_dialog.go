package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	reflowtruncate "github.com/muesli/reflow/truncate"

	"github.com/rebeliceyang/qbsearch/internal/models"
	"github.com/rebeliceyang/qbsearch/internal/ui/theme"
)

// SavedFiltersMode represents the dialog mode
type SavedFiltersMode int

const (
	SavedFiltersModeList SavedFiltersMode = iota
	SavedFiltersModeSave
)

// ApplySavedFilterMsg is sent when a saved filter should replace the current tags
type ApplySavedFilterMsg struct {
	Filter models.SavedFilter
}

// SaveFilterMsg is sent when the current filter should be saved under a name
type SaveFilterMsg struct {
	Name        string
	Description string
}

// DeleteSavedFilterMsg is sent when a saved filter should be deleted
type DeleteSavedFilterMsg struct {
	ID string
}

// ExportSavedFiltersMsg is sent when saved filters should be exported
type ExportSavedFiltersMsg struct {
	Format string // "csv" or "json"
}

// CloseDialogMsg is sent when a dialog should close
type CloseDialogMsg struct{}

// SavedFiltersDialog lists saved filters and names new ones
type SavedFiltersDialog struct {
	Width  int
	Height int
	Theme  theme.Theme

	mode     SavedFiltersMode
	filters  []models.SavedFilter
	selected int
	offset   int

	nameInput        string
	descriptionInput string
	currentField     int // 0=name, 1=description
}

// NewSavedFiltersDialog creates a new saved filters dialog
func NewSavedFiltersDialog(th theme.Theme) *SavedFiltersDialog {
	return &SavedFiltersDialog{
		Width:   80,
		Height:  24,
		Theme:   th,
		mode:    SavedFiltersModeList,
		filters: []models.SavedFilter{},
	}
}

// Mode returns the current mode
func (d *SavedFiltersDialog) Mode() SavedFiltersMode {
	return d.mode
}

// SetFilters updates the list
func (d *SavedFiltersDialog) SetFilters(filters []models.SavedFilter) {
	d.filters = filters
	if d.selected >= len(filters) {
		d.selected = 0
		d.offset = 0
	}
}

// StartSave switches to the naming form
func (d *SavedFiltersDialog) StartSave() {
	d.mode = SavedFiltersModeSave
	d.nameInput = ""
	d.descriptionInput = ""
	d.currentField = 0
}

func (d *SavedFiltersDialog) visibleRows() int {
	rows := (d.Height - 8) / 2
	if rows < 1 {
		rows = 1
	}
	return rows
}

// Update handles keyboard input
func (d *SavedFiltersDialog) Update(msg tea.KeyMsg) (*SavedFiltersDialog, tea.Cmd) {
	if d.mode == SavedFiltersModeSave {
		return d.handleSaveMode(msg)
	}
	return d.handleListMode(msg)
}

func (d *SavedFiltersDialog) handleListMode(msg tea.KeyMsg) (*SavedFiltersDialog, tea.Cmd) {
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
		if d.selected < len(d.filters)-1 {
			d.selected++
			if d.selected >= d.offset+d.visibleRows() {
				d.offset = d.selected - d.visibleRows() + 1
			}
		}
	case "enter":
		if d.selected < len(d.filters) {
			sf := d.filters[d.selected]
			return d, func() tea.Msg { return ApplySavedFilterMsg{Filter: sf} }
		}
	case "a", "n":
		d.StartSave()
	case "d", "x":
		if d.selected < len(d.filters) {
			id := d.filters[d.selected].ID
			return d, func() tea.Msg { return DeleteSavedFilterMsg{ID: id} }
		}
	case "c":
		return d, func() tea.Msg { return ExportSavedFiltersMsg{Format: "csv"} }
	case "J":
		return d, func() tea.Msg { return ExportSavedFiltersMsg{Format: "json"} }
	}
	return d, nil
}

func (d *SavedFiltersDialog) handleSaveMode(msg tea.KeyMsg) (*SavedFiltersDialog, tea.Cmd) {
	switch msg.String() {
	case "esc":
		d.mode = SavedFiltersModeList
	case "tab", "shift+tab":
		d.currentField = 1 - d.currentField
	case "backspace":
		d.deleteChar()
	case "enter":
		if d.currentField == 0 {
			d.currentField = 1
			return d, nil
		}
		d.mode = SavedFiltersModeList
		name, desc := strings.TrimSpace(d.nameInput), strings.TrimSpace(d.descriptionInput)
		return d, func() tea.Msg { return SaveFilterMsg{Name: name, Description: desc} }
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			d.addChars(string(msg.Runes))
		}
	}
	return d, nil
}

func (d *SavedFiltersDialog) addChars(s string) {
	if d.currentField == 0 {
		d.nameInput += s
	} else {
		d.descriptionInput += s
	}
}

func (d *SavedFiltersDialog) deleteChar() {
	field := &d.nameInput
	if d.currentField == 1 {
		field = &d.descriptionInput
	}
	if r := []rune(*field); len(r) > 0 {
		*field = string(r[:len(r)-1])
	}
}

// View renders the dialog
func (d *SavedFiltersDialog) View() string {
	if d.mode == SavedFiltersModeSave {
		return d.renderSave()
	}
	return d.renderList()
}

func (d *SavedFiltersDialog) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(d.Theme.Foreground).
		Background(d.Theme.Info).
		Padding(0, 1).
		Bold(true)
}

func (d *SavedFiltersDialog) container() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(d.Theme.BorderFocused).
		Width(d.Width).
		Height(d.Height).
		Padding(1)
}

func (d *SavedFiltersDialog) renderList() string {
	var sections []string
	sections = append(sections, d.titleStyle().Render("Saved Filters"))

	instrStyle := lipgloss.NewStyle().Foreground(d.Theme.Metadata).Padding(0, 1)
	sections = append(sections, instrStyle.Render("↑↓: Navigate  Enter: Apply  a: Save current  d: Delete  c/J: Export CSV/JSON  Esc: Close"))

	if len(d.filters) == 0 {
		sections = append(sections, "\nNo saved filters yet. Press 'a' to save the current one.")
		return d.container().Render(strings.Join(sections, "\n"))
	}

	sections = append(sections, "")
	end := d.offset + d.visibleRows()
	if end > len(d.filters) {
		end = len(d.filters)
	}

	for i := d.offset; i < end; i++ {
		sf := d.filters[i]

		name := truncate(sf.Name, 40)
		expr := truncate(sf.Expression, d.Width-8)
		line := fmt.Sprintf("%s  (used %d)\n  %s", name, sf.UsageCount, expr)

		style := lipgloss.NewStyle().Padding(0, 1)
		if i == d.selected {
			style = style.Background(d.Theme.Selection).Foreground(d.Theme.Foreground)
		}
		sections = append(sections, style.Render(line))
	}

	return d.container().Render(strings.Join(sections, "\n"))
}

func (d *SavedFiltersDialog) renderSave() string {
	var sections []string
	sections = append(sections, d.titleStyle().Render("Save Filter"))

	instrStyle := lipgloss.NewStyle().Foreground(d.Theme.Metadata).Padding(0, 1)
	sections = append(sections, instrStyle.Render("Tab: Next field  Enter: Save  Esc: Cancel"))

	sections = append(sections, "")
	sections = append(sections, d.renderField("Name:", d.nameInput, d.currentField == 0))
	sections = append(sections, d.renderField("Description:", d.descriptionInput, d.currentField == 1))

	return d.container().Render(strings.Join(sections, "\n"))
}

func (d *SavedFiltersDialog) renderField(label, value string, active bool) string {
	style := lipgloss.NewStyle().Padding(0, 1)
	if active {
		style = style.Background(d.Theme.Selection).Foreground(d.Theme.Foreground)
		value = value + "_"
	}
	return style.Render(fmt.Sprintf("%s %s", label, value))
}

func truncate(s string, max int) string {
	if max < 4 {
		max = 4
	}
	return reflowtruncate.StringWithTail(s, uint(max), "...")
}
