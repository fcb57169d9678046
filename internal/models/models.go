package models

import "time"

// AppState holds the application state
type AppState struct {
	Width    int
	Height   int
	ViewMode ViewMode
	Focus    FocusTarget

	// Catalog state
	CatalogSource string // "file", "postgres" or "" when only free-form keys are available
	Schema        string
	Table         string

	// Last applied filter
	LastApplied time.Time
	MatchCount  int64 // -1 when unknown
}

// FocusTarget identifies which widget receives key input
type FocusTarget int

const (
	FocusSearch FocusTarget = iota
	FocusSaved
	FocusHistory
)

// ViewMode identifies the current view
type ViewMode int

const (
	NormalMode ViewMode = iota
	HelpMode
)

// NewAppState creates a new AppState with defaults
func NewAppState() AppState {
	return AppState{
		Width:      80,
		Height:     24,
		ViewMode:   NormalMode,
		Focus:      FocusSearch,
		MatchCount: -1,
	}
}

// SavedFilter is a named filter persisted by the favorites manager
type SavedFilter struct {
	ID          string    `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description" json:"description"`
	Filter      TagFilter `yaml:"filter" json:"filter"`
	Expression  string    `yaml:"expression" json:"expression"`
	CreatedAt   time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt   time.Time `yaml:"updated_at" json:"updated_at"`
	LastUsed    time.Time `yaml:"last_used" json:"last_used"`
	UsageCount  int       `yaml:"usage_count" json:"usage_count"`
}
