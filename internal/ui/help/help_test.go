package help

import (
	"strings"
	"testing"

	"github.com/rebeliceyang/qbsearch/internal/ui/theme"
)

func TestGetSections(t *testing.T) {
	sections := GetSections()
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	for _, s := range sections {
		if len(s.Keys) == 0 {
			t.Errorf("section %q has no keys", s.Title)
		}
	}
}

func TestRender(t *testing.T) {
	out := Render(100, 40, theme.DefaultTheme())
	if !strings.Contains(out, "Keyboard Shortcuts") {
		t.Error("expected title in help view")
	}
	if !strings.Contains(out, "Ctrl+E") {
		t.Error("expected search keys in help view")
	}
}
