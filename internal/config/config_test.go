package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rebeliceyang/qbsearch/internal/models"
)

func TestGetDefaults(t *testing.T) {
	cfg := GetDefaults()

	if cfg.Search.WhereClause.CustomKey != "body" || cfg.Search.WhereClause.CustomOp != models.OpContains {
		t.Errorf("expected body CONTAINS fallback by default, got %+v", cfg.Search.WhereClause)
	}
	if cfg.Search.MaxSuggestions != 10 {
		t.Errorf("expected 10 suggestions, got %d", cfg.Search.MaxSuggestions)
	}
	if cfg.Catalog.UsePostgres() {
		t.Error("postgres catalog should be off by default")
	}
}

func TestLoadFrom_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
ui:
  theme: catppuccin
search:
  max_suggestions: 5
  where_clause:
    custom_key: ""
catalog:
  table: logs
  postgres:
    dsn: postgres://localhost/obs
history:
  path: /tmp/qb-history.db
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.UI.Theme != "catppuccin" {
		t.Errorf("expected theme 'catppuccin', got '%s'", cfg.UI.Theme)
	}
	if cfg.Search.MaxSuggestions != 5 {
		t.Errorf("expected 5 suggestions, got %d", cfg.Search.MaxSuggestions)
	}
	if cfg.Search.WhereClause.CustomKey != "" {
		t.Errorf("expected fallback key to be cleared, got '%s'", cfg.Search.WhereClause.CustomKey)
	}
	if !cfg.Catalog.UsePostgres() {
		t.Error("expected postgres catalog to be enabled")
	}
	if cfg.Catalog.Schema != "public" {
		t.Errorf("expected default schema 'public', got '%s'", cfg.Catalog.Schema)
	}
	if cfg.History.Path != "/tmp/qb-history.db" {
		t.Errorf("expected explicit history path, got '%s'", cfg.History.Path)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug level, got '%s'", cfg.Log.Level)
	}
}

func TestLoadFrom_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ui: [unclosed"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for malformed config")
	}
}
