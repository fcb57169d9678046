package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rebeliceyang/qbsearch/internal/models"
	"github.com/rebeliceyang/qbsearch/internal/search"
	"github.com/rebeliceyang/qbsearch/internal/ui/theme"
)

func newTestBar() *SearchBar {
	m := search.New(search.Config{
		Keys: []models.AttributeKey{
			{Key: "service.name", DataType: models.DataTypeString, Type: "resource"},
			{Key: "status_code", DataType: models.DataTypeInt64, IsColumn: true},
			{Key: "env", DataType: models.DataTypeString, Type: "tag"},
		},
		Values: models.AttributeValuesMap{
			"env": {StringAttributeValues: []string{"prod", "staging"}},
		},
		WhereClause: models.WhereClauseConfig{CustomKey: "body", CustomOp: models.OpContains},
	})
	return NewSearchBar(m, theme.DefaultTheme(), "search", 10)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+w":
		return tea.KeyMsg{Type: tea.KeyCtrlW}
	case "ctrl+e":
		return tea.KeyMsg{Type: tea.KeyCtrlE}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(s *SearchBar, text string) {
	for _, r := range text {
		if r == ' ' {
			s.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		s.Update(key(string(r)))
	}
}

func TestSearchBar_TypeAndCommit(t *testing.T) {
	s := newTestBar()

	typeText(s, "status_code = 500")
	if s.Machine.Stage() != search.StageAttributeValue {
		t.Fatalf("expected value stage, got %s", s.Machine.Stage())
	}

	s.Update(key("enter"))

	tags := s.Machine.QueryTags()
	if len(tags) != 1 || tags[0] != "status_code = 500" {
		t.Errorf("unexpected tags %v", tags)
	}
	if s.Input.Value() != "" {
		t.Errorf("expected cleared input, got %q", s.Input.Value())
	}
}

func TestSearchBar_ExistsCommitsWhileTyping(t *testing.T) {
	s := newTestBar()

	typeText(s, "env EXISTS")

	if len(s.Machine.Tags()) != 1 {
		t.Fatalf("expected tag to be committed, got %v", s.Machine.QueryTags())
	}
	if s.Input.Value() != "" {
		t.Errorf("expected input to follow the machine, got %q", s.Input.Value())
	}
}

func TestSearchBar_TabSelectsSuggestion(t *testing.T) {
	s := newTestBar()

	typeText(s, "se")
	s.Update(key("tab"))

	if s.Machine.Stage() != search.StageOperator {
		t.Fatalf("expected operator stage, got %s", s.Machine.Stage())
	}
	if s.Input.Value() != "service.name" {
		t.Errorf("expected input 'service.name', got %q", s.Input.Value())
	}
}

func TestSearchBar_DownThenEnterPicksValue(t *testing.T) {
	s := newTestBar()

	typeText(s, "env = ")
	s.Update(key("down"))
	s.Update(key("enter"))

	tags := s.Machine.QueryTags()
	if len(tags) != 1 || tags[0] != "env = staging" {
		t.Errorf("unexpected tags %v", tags)
	}
}

func TestSearchBar_BackspaceOnEmptyRemovesTag(t *testing.T) {
	s := newTestBar()
	typeText(s, "env EXISTS")

	s.Update(key("backspace"))

	if len(s.Machine.Tags()) != 0 {
		t.Errorf("expected tag removed, got %v", s.Machine.QueryTags())
	}
}

func TestSearchBar_EscBlursWithBodyFallback(t *testing.T) {
	s := newTestBar()
	typeText(s, "timeout")

	s.Update(key("esc"))

	if s.Focused() {
		t.Error("expected search bar to lose focus")
	}
	tags := s.Machine.QueryTags()
	if len(tags) != 1 || tags[0] != "body CONTAINS timeout" {
		t.Errorf("unexpected tags %v", tags)
	}
}

func TestSearchBar_EditAndRemoveLastTag(t *testing.T) {
	s := newTestBar()
	typeText(s, "status_code = 500")
	s.Update(key("enter"))

	s.Update(key("ctrl+e"))
	if s.Input.Value() != "status_code = 500" {
		t.Errorf("expected tag back in input, got %q", s.Input.Value())
	}
	if len(s.Machine.Tags()) != 0 {
		t.Errorf("expected tag pulled out of the list")
	}

	s.Update(key("enter"))
	s.Update(key("ctrl+w"))
	if len(s.Machine.Tags()) != 0 {
		t.Errorf("expected tag removed, got %v", s.Machine.QueryTags())
	}
}

func TestSearchBar_View(t *testing.T) {
	s := newTestBar()
	typeText(s, "env EXISTS")

	if view := s.View(); view == "" {
		t.Error("expected non-empty view")
	}
}
