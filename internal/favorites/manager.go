package favorites

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/rebeliceyang/qbsearch/internal/export"
	"github.com/rebeliceyang/qbsearch/internal/models"
)

// ErrNotFound is returned when no saved filter has the requested ID
var ErrNotFound = errors.New("saved filter not found")

// Manager manages saved filters
type Manager struct {
	path    string
	filters []models.SavedFilter
}

// NewManager creates a new saved filter manager
func NewManager(configDir string) (*Manager, error) {
	path := filepath.Join(configDir, "saved_filters.yaml")

	m := &Manager{
		path:    path,
		filters: []models.SavedFilter{},
	}

	// Load existing filters if file exists
	if _, err := os.Stat(path); err == nil {
		if err := m.Load(); err != nil {
			return nil, fmt.Errorf("failed to load saved filters: %w", err)
		}
	}

	return m, nil
}

// Load loads saved filters from the YAML file
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("failed to read saved filters file: %w", err)
	}

	if err := yaml.Unmarshal(data, &m.filters); err != nil {
		return fmt.Errorf("failed to parse saved filters: %w", err)
	}

	return nil
}

// Save saves the filters to the YAML file
func (m *Manager) Save() error {
	data, err := yaml.Marshal(m.filters)
	if err != nil {
		return fmt.Errorf("failed to marshal saved filters: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write saved filters file: %w", err)
	}

	return nil
}

func validate(name string, filter models.TagFilter) error {
	if name == "" {
		return fmt.Errorf("saved filter name cannot be empty")
	}
	if len(filter.Items) == 0 {
		return fmt.Errorf("saved filter must have at least one tag")
	}
	return nil
}

func (m *Manager) checkName(id, name string) error {
	for _, sf := range m.filters {
		if sf.ID != id && strings.EqualFold(sf.Name, name) {
			return fmt.Errorf("a saved filter named '%s' already exists (names are case-insensitive)", name)
		}
	}
	return nil
}

// Add saves a new named filter
func (m *Manager) Add(name, description string, filter models.TagFilter, expression string) (*models.SavedFilter, error) {
	name = strings.TrimSpace(name)
	if err := validate(name, filter); err != nil {
		return nil, err
	}
	if err := m.checkName("", name); err != nil {
		return nil, err
	}

	now := time.Now()
	sf := models.SavedFilter{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Filter:      filter,
		Expression:  expression,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	m.filters = append(m.filters, sf)

	if err := m.Save(); err != nil {
		return nil, fmt.Errorf("failed to save filter: %w", err)
	}

	return &sf, nil
}

// Update replaces the name, description and filter of an existing entry
func (m *Manager) Update(id, name, description string, filter models.TagFilter, expression string) error {
	name = strings.TrimSpace(name)
	if err := validate(name, filter); err != nil {
		return err
	}
	if err := m.checkName(id, name); err != nil {
		return err
	}

	for i, sf := range m.filters {
		if sf.ID == id {
			m.filters[i].Name = name
			m.filters[i].Description = strings.TrimSpace(description)
			m.filters[i].Filter = filter
			m.filters[i].Expression = expression
			m.filters[i].UpdatedAt = time.Now()
			if err := m.Save(); err != nil {
				return fmt.Errorf("failed to save filter: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("update %s: %w", id, ErrNotFound)
}

// Delete deletes a saved filter by ID
func (m *Manager) Delete(id string) error {
	for i, sf := range m.filters {
		if sf.ID == id {
			m.filters = append(m.filters[:i], m.filters[i+1:]...)
			if err := m.Save(); err != nil {
				return fmt.Errorf("failed to save filters after deletion: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("delete %s: %w", id, ErrNotFound)
}

// Get returns a saved filter by ID
func (m *Manager) Get(id string) (*models.SavedFilter, error) {
	for _, sf := range m.filters {
		if sf.ID == id {
			return &sf, nil
		}
	}
	return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
}

// GetAll returns all saved filters
func (m *Manager) GetAll() []models.SavedFilter {
	return m.filters
}

// Search matches name, description, expression and key names
func (m *Manager) Search(query string) []models.SavedFilter {
	if query == "" {
		return m.filters
	}

	query = strings.ToLower(query)
	var results []models.SavedFilter

	for _, sf := range m.filters {
		if strings.Contains(strings.ToLower(sf.Name), query) ||
			strings.Contains(strings.ToLower(sf.Description), query) ||
			strings.Contains(strings.ToLower(sf.Expression), query) {
			results = append(results, sf)
			continue
		}

		for _, item := range sf.Filter.Items {
			if strings.Contains(strings.ToLower(item.Key.Key), query) {
				results = append(results, sf)
				break
			}
		}
	}

	return results
}

// RecordUsage updates usage statistics for a saved filter
func (m *Manager) RecordUsage(id string) error {
	for i, sf := range m.filters {
		if sf.ID == id {
			m.filters[i].UsageCount++
			m.filters[i].LastUsed = time.Now()
			if err := m.Save(); err != nil {
				return fmt.Errorf("failed to save usage statistics: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("record usage %s: %w", id, ErrNotFound)
}

// GetMostUsed returns the most frequently used filters
func (m *Manager) GetMostUsed(limit int) []models.SavedFilter {
	sorted := make([]models.SavedFilter, len(m.filters))
	copy(sorted, m.filters)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UsageCount > sorted[j].UsageCount
	})

	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	return sorted
}

// ExportToCSV exports all saved filters to a CSV file
func (m *Manager) ExportToCSV(customPath ...string) (string, error) {
	if len(m.filters) == 0 {
		return "", fmt.Errorf("no saved filters to export")
	}

	path := filepath.Join(filepath.Dir(m.path), "saved_filters.csv")
	if len(customPath) > 0 && customPath[0] != "" {
		path = customPath[0]
	}

	if err := export.ExportToCSV(m.filters, path); err != nil {
		return "", fmt.Errorf("failed to export saved filters to CSV: %w", err)
	}

	return path, nil
}

// ExportToJSON exports all saved filters to a JSON file
func (m *Manager) ExportToJSON(customPath ...string) (string, error) {
	if len(m.filters) == 0 {
		return "", fmt.Errorf("no saved filters to export")
	}

	path := filepath.Join(filepath.Dir(m.path), "saved_filters.json")
	if len(customPath) > 0 && customPath[0] != "" {
		path = customPath[0]
	}

	if err := export.ExportToJSON(m.filters, path); err != nil {
		return "", fmt.Errorf("failed to export saved filters to JSON: %w", err)
	}

	return path, nil
}
