package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/qbsearch/internal/models"
	"github.com/rebeliceyang/qbsearch/internal/search"
	"github.com/rebeliceyang/qbsearch/internal/ui/theme"
)

// FilterChangedMsg is sent when the committed tags change
type FilterChangedMsg struct {
	Filter models.TagFilter
}

// SearchErrorMsg reports a rejected search bar action
type SearchErrorMsg struct {
	Err error
}

// SearchBlurredMsg is sent when the search bar gives up focus
type SearchBlurredMsg struct{}

// SearchBar drives a search.Machine from a text input and renders tags and suggestions
type SearchBar struct {
	Input       textinput.Model
	Machine     *search.Machine
	Theme       theme.Theme
	Width       int
	Suggestions SuggestionList
}

// NewSearchBar creates a focused search bar around m
func NewSearchBar(m *search.Machine, th theme.Theme, placeholder string, maxSuggestions int) *SearchBar {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.CharLimit = 1024
	ti.Focus()

	return &SearchBar{
		Input:   ti,
		Machine: m,
		Theme:   th,
		Width:   80,
		Suggestions: SuggestionList{
			Theme:    th,
			MaxShown: maxSuggestions,
		},
	}
}

// Focused reports whether the bar takes key input
func (s *SearchBar) Focused() bool {
	return s.Input.Focused()
}

// Focus gives the bar key input
func (s *SearchBar) Focus() tea.Cmd {
	return s.Input.Focus()
}

// Reset replaces the committed tags with f
func (s *SearchBar) Reset(f models.TagFilter) {
	s.Machine.Reset(f)
	s.syncInput()
}

// Update handles messages
func (s *SearchBar) Update(msg tea.Msg) (*SearchBar, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !s.Focused() {
		var cmd tea.Cmd
		s.Input, cmd = s.Input.Update(msg)
		return s, cmd
	}

	before := s.Machine.Filters()
	var cmds []tea.Cmd

	switch keyMsg.String() {
	case "tab", "enter":
		opts := s.Machine.Options()
		sel := s.Suggestions.Selected()
		switch {
		case sel < len(opts):
			if err := s.Machine.Select(opts[sel].Value); err != nil {
				cmds = append(cmds, errCmd(err))
			}
		case keyMsg.String() == "enter":
			s.Machine.Blur()
		}
		s.syncInput()

	case "up", "ctrl+p":
		s.Suggestions.Move(-1, len(s.Machine.Options()))

	case "down", "ctrl+n":
		s.Suggestions.Move(1, len(s.Machine.Options()))

	case "esc":
		s.Machine.Blur()
		s.syncInput()
		s.Input.Blur()
		cmds = append(cmds, func() tea.Msg { return SearchBlurredMsg{} })

	case "ctrl+e":
		if err := s.Machine.EditTag(len(s.Machine.Tags()) - 1); err != nil {
			cmds = append(cmds, errCmd(err))
		}
		s.syncInput()

	case "ctrl+w":
		if err := s.Machine.RemoveTag(len(s.Machine.Tags()) - 1); err != nil {
			cmds = append(cmds, errCmd(err))
		}

	case "backspace":
		if s.Input.Value() == "" {
			s.Machine.BackspaceOnEmpty()
			break
		}
		cmds = append(cmds, s.updateText(msg))

	default:
		cmds = append(cmds, s.updateText(msg))
	}

	if after := s.Machine.Filters(); !after.Equal(before) {
		cmds = append(cmds, func() tea.Msg { return FilterChangedMsg{Filter: after} })
	}
	return s, tea.Batch(cmds...)
}

// updateText forwards a key to the text input and feeds the result to the machine
func (s *SearchBar) updateText(msg tea.Msg) tea.Cmd {
	prev := s.Input.Value()
	var cmd tea.Cmd
	s.Input, cmd = s.Input.Update(msg)
	if s.Input.Value() != prev {
		s.Machine.SetInput(s.Input.Value())
		s.syncInput()
	}
	return cmd
}

// syncInput copies the machine's text back into the input after a transition rewrote it
func (s *SearchBar) syncInput() {
	if s.Input.Value() != s.Machine.Input() {
		s.Input.SetValue(s.Machine.Input())
		s.Input.CursorEnd()
	}
	s.Suggestions.Reset()
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg { return SearchErrorMsg{Err: err} }
}

// renderChip renders one committed tag
func (s *SearchBar) renderChip(tag models.Tag) string {
	bg := s.Theme.ChipBackground
	key := lipgloss.NewStyle().Background(bg).Foreground(s.Theme.TagKey).Render(tag.Key.Key)
	op := lipgloss.NewStyle().Background(bg).Foreground(s.Theme.TagOperator).Bold(true).Render(" " + string(tag.Op))

	value := ""
	if !tag.Value.IsEmpty() {
		value = lipgloss.NewStyle().Background(bg).Foreground(s.Theme.TagValue).Render(" " + tag.Value.String())
	}

	pad := lipgloss.NewStyle().Background(bg).Render(" ")
	return pad + key + op + value + pad
}

// View renders the search bar
func (s *SearchBar) View() string {
	var chips []string
	for _, tag := range s.Machine.Tags() {
		chips = append(chips, s.renderChip(tag))
	}

	inputWidth := s.Width - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	s.Input.Width = inputWidth

	border := s.Theme.Border
	if s.Focused() {
		border = s.Theme.BorderFocused
	}
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(s.Width - 2)

	var body []string
	if len(chips) > 0 {
		body = append(body, lipgloss.NewStyle().Width(s.Width-4).Render(strings.Join(chips, " ")))
	}
	body = append(body, s.Input.View())

	stageStyle := lipgloss.NewStyle().Foreground(s.Theme.Metadata).Italic(true)
	body = append(body, stageStyle.Render(stageHint(s.Machine.State())))

	out := boxStyle.Render(strings.Join(body, "\n"))
	if s.Focused() {
		s.Suggestions.Width = s.Width - 2
		if list := s.Suggestions.View(s.Machine.Options(), TypedFragment(s.Input.Value())); list != "" {
			out = lipgloss.JoinVertical(lipgloss.Left, out, list)
		}
	}
	return out
}

func stageHint(st search.State) string {
	switch st := st.(type) {
	case search.ChoosingOperator:
		return "choose an operator for " + st.Key.Key
	case search.EnteringValue:
		if st.Op == models.OpIn || st.Op == models.OpNotIn {
			return "enter values for " + st.Key.Key + " " + string(st.Op) + ", press Enter on a selected value to finish"
		}
		return "enter a value for " + st.Key.Key + " " + string(st.Op)
	default:
		return "choose a key, or type free text to search the body"
	}
}
