package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/qbsearch/internal/search"
	"github.com/rebeliceyang/qbsearch/internal/ui/theme"
)

func TestFuzzyMatch_ExactPrefix(t *testing.T) {
	match, positions := FuzzyMatch("serv", "service.name")

	if !match {
		t.Error("expected match")
	}
	if len(positions) != 4 || positions[0] != 0 || positions[3] != 3 {
		t.Errorf("expected positions [0,1,2,3], got %v", positions)
	}
}

func TestFuzzyMatch_Subsequence(t *testing.T) {
	match, positions := FuzzyMatch("snm", "service.name")

	if !match {
		t.Error("expected match")
	}
	if len(positions) != 3 {
		t.Errorf("expected 3 positions, got %d", len(positions))
	}
}

func TestFuzzyMatch_NoMatch(t *testing.T) {
	if match, _ := FuzzyMatch("xyz", "service.name"); match {
		t.Error("expected no match")
	}
}

func TestFuzzyMatch_CaseInsensitive(t *testing.T) {
	if match, _ := FuzzyMatch("not_", "NOT_IN"); !match {
		t.Error("expected case-insensitive match")
	}
}

func TestFuzzyMatch_EmptyPattern(t *testing.T) {
	match, positions := FuzzyMatch("", "anything")

	if !match {
		t.Error("empty pattern should match everything")
	}
	if len(positions) != 0 {
		t.Error("empty pattern should have no positions")
	}
}

func TestTypedFragment(t *testing.T) {
	tests := map[string]string{
		"serv":            "serv",
		"env not":         "not",
		"env IN prod,sta": "sta",
		"env IN prod,":    "",
		"":                "",
	}

	for input, want := range tests {
		if got := TypedFragment(input); got != want {
			t.Errorf("TypedFragment(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestHighlight_PlainWithoutPositions(t *testing.T) {
	base := lipgloss.NewStyle()
	if got := Highlight("env", nil, base, base); got != "env" {
		t.Errorf("expected plain label, got %q", got)
	}
}

func TestSuggestionList_Move(t *testing.T) {
	l := SuggestionList{MaxShown: 2}

	l.Move(1, 3)
	l.Move(1, 3)
	l.Move(1, 3)
	if l.Selected() != 2 {
		t.Errorf("expected clamp at 2, got %d", l.Selected())
	}
	if l.offset != 1 {
		t.Errorf("expected window to scroll to 1, got %d", l.offset)
	}

	l.Move(-5, 3)
	if l.Selected() != 0 || l.offset != 0 {
		t.Errorf("expected reset to top, got %d/%d", l.Selected(), l.offset)
	}

	l.Move(1, 0)
	if l.Selected() != 0 {
		t.Errorf("expected empty list to reset, got %d", l.Selected())
	}
}

func TestSuggestionList_View(t *testing.T) {
	l := SuggestionList{Theme: theme.DefaultTheme(), MaxShown: 1}

	if got := l.View(nil, ""); got != "" {
		t.Errorf("expected empty view without options, got %q", got)
	}

	view := l.View([]search.Option{{Label: "prod", Value: "prod"}, {Label: "staging", Value: "staging"}}, "")
	if !strings.Contains(view, "1/2") {
		t.Errorf("expected position indicator in %q", view)
	}
}
