package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rebeliceyang/qbsearch/internal/models"
)

func testFilter() models.TagFilter {
	return models.TagFilter{
		Op: "AND",
		Items: []models.FilterItem{
			{ID: "a1b2c3d4", Key: models.AttributeKey{Key: "service.name"}, Op: "=", Value: models.Scalar("checkout")},
			{ID: "e5f6a7b8", Key: models.AttributeKey{Key: "env"}, Op: "in", Value: models.ListOf("prod", "staging")},
			{ID: "c9d0e1f2", Key: models.AttributeKey{Key: "env"}, Op: "exists"},
		},
	}
}

func TestExportToCSV(t *testing.T) {
	filters := []models.SavedFilter{
		{
			ID:          "test-1",
			Name:        "Checkout errors",
			Description: "Checkout with commas, quotes \"and\" special chars",
			Filter:      testFilter(),
			Expression:  "service.name = checkout AND env IN (prod,staging) AND env EXISTS",
			CreatedAt:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC),
			LastUsed:    time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC),
			UsageCount:  5,
		},
		{
			ID:         "test-2",
			Name:       "Prod only",
			Filter:     models.TagFilter{Op: "AND", Items: []models.FilterItem{{Key: models.AttributeKey{Key: "env"}, Op: "=", Value: models.Scalar("prod")}}},
			Expression: "env = prod",
			CreatedAt:  time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC),
			UpdatedAt:  time.Date(2024, 1, 2, 13, 0, 0, 0, time.UTC),
			UsageCount: 2,
		},
	}

	csvPath := filepath.Join(t.TempDir(), "test.csv")

	if err := ExportToCSV(filters, csvPath); err != nil {
		t.Fatalf("ExportToCSV failed: %v", err)
	}

	file, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("Failed to open CSV: %v", err)
	}
	defer func() { _ = file.Close() }()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}

	if len(records) != 3 { // header + 2 rows
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	expectedHeader := []string{"Name", "Description", "Expression", "Keys", "Created", "Updated", "Last Used", "Usage Count"}
	if !slicesEqual(records[0], expectedHeader) {
		t.Errorf("Header mismatch.\nExpected: %v\nGot: %v", expectedHeader, records[0])
	}

	row1 := records[1]
	if row1[1] != filters[0].Description {
		t.Errorf("Description did not survive quoting: %q", row1[1])
	}
	if row1[3] != "service.name, env" {
		t.Errorf("Expected keys 'service.name, env', got '%s'", row1[3])
	}
	if row1[6] != "2024-01-03 12:00:00" {
		t.Errorf("Unexpected last used %q", row1[6])
	}
	if row1[7] != "5" {
		t.Errorf("Expected usage count '5', got '%s'", row1[7])
	}

	if records[2][6] != "" {
		t.Errorf("Expected empty last used for unused filter, got %q", records[2][6])
	}
}

func TestExportToJSON(t *testing.T) {
	filters := []models.SavedFilter{
		{
			ID:         "test-1",
			Name:       "Checkout errors",
			Filter:     testFilter(),
			Expression: "service.name = checkout",
			CreatedAt:  time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			UpdatedAt:  time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC),
			UsageCount: 5,
		},
	}

	jsonPath := filepath.Join(t.TempDir(), "test.json")

	if err := ExportToJSON(filters, jsonPath); err != nil {
		t.Fatalf("ExportToJSON failed: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("Failed to read JSON: %v", err)
	}

	var parsed []models.SavedFilter
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if len(parsed) != 1 {
		t.Fatalf("Expected 1 saved filter, got %d", len(parsed))
	}
	if !parsed[0].Filter.Equal(filters[0].Filter) {
		t.Errorf("Filter did not round trip: %+v", parsed[0].Filter)
	}

	jsonStr := string(data)
	if !strings.Contains(jsonStr, "\n  ") {
		t.Error("JSON should be pretty-printed and indented")
	}
}

func TestExportEmpty(t *testing.T) {
	tmpDir := t.TempDir()

	csvPath := filepath.Join(tmpDir, "empty.csv")
	if err := ExportToCSV(nil, csvPath); err != nil {
		t.Fatalf("ExportToCSV with empty list failed: %v", err)
	}

	file, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("Failed to open CSV: %v", err)
	}
	defer func() { _ = file.Close() }()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) != 1 { // Only header
		t.Errorf("Expected 1 record (header), got %d", len(records))
	}

	jsonPath := filepath.Join(tmpDir, "empty.json")
	if err := ExportToJSON(nil, jsonPath); err != nil {
		t.Fatalf("ExportToJSON with empty list failed: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("Failed to read JSON: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("Expected empty JSON array, got %s", data)
	}
}

func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
