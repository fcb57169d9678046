package app

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/rebeliceyang/qbsearch/internal/catalog"
	"github.com/rebeliceyang/qbsearch/internal/config"
	"github.com/rebeliceyang/qbsearch/internal/favorites"
	"github.com/rebeliceyang/qbsearch/internal/history"
	"github.com/rebeliceyang/qbsearch/internal/models"
	"github.com/rebeliceyang/qbsearch/internal/ui/components"
)

func envFilter() models.TagFilter {
	return models.TagFilter{
		Op: "AND",
		Items: []models.FilterItem{
			{ID: "abcd1234", Key: models.AttributeKey{Key: "env"}, Op: "=", Value: models.Scalar("prod")},
		},
	}
}

func newTestApp(t *testing.T) (*App, *history.Store, *favorites.Manager) {
	t.Helper()
	dir := t.TempDir()

	store, err := history.NewStore(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	saved, err := favorites.NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	a := New(Deps{
		Config: config.GetDefaults(),
		Logger: zerolog.Nop(),
		Catalog: &catalog.Catalog{
			Keys: []models.AttributeKey{{Key: "env", DataType: models.DataTypeString}},
		},
		History: store,
		Saved:   saved,
	})
	return a, store, saved
}

func TestApp_FilterChangedUpdatesPreviewAndHistory(t *testing.T) {
	a, store, _ := newTestApp(t)

	_, cmd := a.Update(components.FilterChangedMsg{Filter: envFilter()})

	if a.preview.Expression != "env = prod" {
		t.Errorf("unexpected expression %q", a.preview.Expression)
	}
	if !strings.HasPrefix(a.preview.SQL, "WHERE ") {
		t.Errorf("unexpected SQL %q", a.preview.SQL)
	}

	if cmd == nil {
		t.Fatal("expected history command")
	}
	cmd()

	entries, err := store.GetRecent(10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Expression != "env = prod" {
		t.Errorf("unexpected history %+v", entries)
	}
	if entries[0].Source != "file" {
		t.Errorf("expected source 'file', got %q", entries[0].Source)
	}
}

func TestApp_ApplySavedFilter(t *testing.T) {
	a, _, saved := newTestApp(t)
	sf, err := saved.Add("Prod", "", envFilter(), "env = prod")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	a.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if a.state.Focus != models.FocusSaved {
		t.Fatalf("expected saved dialog focus")
	}

	a.Update(components.ApplySavedFilterMsg{Filter: *sf})

	if a.state.Focus != models.FocusSearch {
		t.Error("expected focus back on search")
	}
	if got := a.searchBar.Machine.QueryTags(); len(got) != 1 || got[0] != "env = prod" {
		t.Errorf("unexpected tags %v", got)
	}

	reloaded, _ := saved.Get(sf.ID)
	if reloaded.UsageCount != 1 {
		t.Errorf("expected usage recorded, got %d", reloaded.UsageCount)
	}
}

func TestApp_SaveCurrentFilter(t *testing.T) {
	a, _, saved := newTestApp(t)
	a.applyFilter(envFilter())

	a.Update(components.SaveFilterMsg{Name: "Prod only"})

	all := saved.GetAll()
	if len(all) != 1 || all[0].Expression != "env = prod" {
		t.Errorf("unexpected saved filters %+v", all)
	}
	if a.statusErr {
		t.Errorf("unexpected error status %q", a.status)
	}

	a.Update(components.SaveFilterMsg{Name: "prod ONLY"})
	if !a.statusErr {
		t.Error("expected duplicate name error")
	}
}

func TestApp_StaleCountIgnored(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.countSeq = 2

	a.Update(MatchCountMsg{Seq: 1, Filter: envFilter(), Count: 9})

	if a.preview.MatchCount != components.UnknownCount {
		t.Errorf("stale count applied: %d", a.preview.MatchCount)
	}

	a.Update(MatchCountMsg{Seq: 2, Filter: envFilter(), Count: 9})
	if a.preview.MatchCount != 9 {
		t.Errorf("expected count 9, got %d", a.preview.MatchCount)
	}
}

func TestApp_HelpToggle(t *testing.T) {
	a, _, _ := newTestApp(t)

	a.Update(tea.KeyMsg{Type: tea.KeyF1})
	if a.state.ViewMode != models.HelpMode {
		t.Fatal("expected help mode")
	}
	if !strings.Contains(a.View(), "Keyboard Shortcuts") {
		t.Error("expected help view")
	}

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if a.state.ViewMode != models.NormalMode {
		t.Error("expected normal mode")
	}
}

func TestApp_BlurAndRefocus(t *testing.T) {
	a, _, _ := newTestApp(t)

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if a.searchBar.Focused() {
		t.Fatal("expected search bar to lose focus")
	}

	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !a.searchBar.Focused() {
		t.Error("expected search bar to regain focus")
	}
}

func TestFormatStatusBar(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.state.Width = 24

	got := a.formatStatusBar("left", "right")
	if len(got) != 20 || !strings.HasPrefix(got, "left") || !strings.HasSuffix(got, "right") {
		t.Errorf("unexpected status bar %q", got)
	}

	got = a.formatStatusBar(strings.Repeat("x", 30), "right")
	if !strings.HasSuffix(got, "right") || len(got) != 20 {
		t.Errorf("expected truncated left side, got %q", got)
	}
}
