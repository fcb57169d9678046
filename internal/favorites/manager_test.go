package favorites

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rebeliceyang/qbsearch/internal/models"
)

func envFilter(value string) models.TagFilter {
	return models.TagFilter{
		Op: "AND",
		Items: []models.FilterItem{
			{ID: "abcd1234", Key: models.AttributeKey{Key: "env"}, Op: "=", Value: models.Scalar(value)},
		},
	}
}

func TestManager_AddAndReload(t *testing.T) {
	dir := t.TempDir()

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	sf, err := m.Add("Prod", "production only", envFilter("prod"), "env = prod")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(sf.ID) != 36 {
		t.Errorf("expected uuid id, got %q", sf.ID)
	}

	reloaded, err := NewManager(dir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	all := reloaded.GetAll()
	if len(all) != 1 {
		t.Fatalf("expected 1 saved filter, got %d", len(all))
	}
	if !all[0].Filter.Equal(envFilter("prod")) {
		t.Errorf("filter did not survive yaml round trip: %+v", all[0].Filter)
	}
}

func TestManager_AddValidation(t *testing.T) {
	m, _ := NewManager(t.TempDir())

	if _, err := m.Add("  ", "", envFilter("prod"), ""); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := m.Add("Empty", "", models.NewTagFilter(), ""); err == nil {
		t.Error("expected error for empty filter")
	}

	if _, err := m.Add("Prod", "", envFilter("prod"), ""); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := m.Add("PROD", "", envFilter("dev"), ""); err == nil {
		t.Error("expected case-insensitive duplicate name error")
	}
}

func TestManager_UpdateDeleteGet(t *testing.T) {
	m, _ := NewManager(t.TempDir())
	a, _ := m.Add("A", "", envFilter("a"), "env = a")
	b, _ := m.Add("B", "", envFilter("b"), "env = b")

	if err := m.Update(b.ID, "a", "", envFilter("b"), "env = b"); err == nil {
		t.Error("expected duplicate name error on update")
	}
	if err := m.Update(b.ID, "B2", "renamed", envFilter("c"), "env = c"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := m.Get(b.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "B2" || got.Expression != "env = c" {
		t.Errorf("update not applied: %+v", got)
	}

	if err := m.Delete(a.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := m.Get(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := m.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestManager_SearchAndUsage(t *testing.T) {
	m, _ := NewManager(t.TempDir())
	a, _ := m.Add("Checkout", "", envFilter("prod"), "env = prod")
	b, _ := m.Add("Payments", "card flows", envFilter("dev"), "env = dev")

	if got := m.Search("card"); len(got) != 1 || got[0].ID != b.ID {
		t.Errorf("expected description match, got %+v", got)
	}
	if got := m.Search("ENV"); len(got) != 2 {
		t.Errorf("expected key match on both, got %d", len(got))
	}

	_ = m.RecordUsage(b.ID)
	_ = m.RecordUsage(b.ID)
	_ = m.RecordUsage(a.ID)

	top := m.GetMostUsed(1)
	if len(top) != 1 || top[0].ID != b.ID || top[0].UsageCount != 2 {
		t.Errorf("unexpected most used: %+v", top)
	}
	if top[0].LastUsed.IsZero() {
		t.Error("expected LastUsed to be set")
	}
}

func TestManager_Export(t *testing.T) {
	dir := t.TempDir()
	m, _ := NewManager(dir)

	if _, err := m.ExportToCSV(); err == nil {
		t.Error("expected error when nothing to export")
	}

	_, _ = m.Add("Prod", "", envFilter("prod"), "env = prod")

	path, err := m.ExportToJSON()
	if err != nil {
		t.Fatalf("ExportToJSON failed: %v", err)
	}
	if path != filepath.Join(dir, "saved_filters.json") {
		t.Errorf("unexpected export path %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export file missing: %v", err)
	}

	custom := filepath.Join(dir, "out.csv")
	if path, err := m.ExportToCSV(custom); err != nil || path != custom {
		t.Errorf("ExportToCSV(custom) = %q, %v", path, err)
	}
}
