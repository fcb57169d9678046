package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rebeliceyang/qbsearch/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

// ExportToCSV exports saved filters to a CSV file
func ExportToCSV(filters []models.SavedFilter, path string) error {
	// Create the file
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)

	// Write header
	header := []string{"Name", "Description", "Expression", "Keys", "Created", "Updated", "Last Used", "Usage Count"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, sf := range filters {
		lastUsed := ""
		if !sf.LastUsed.IsZero() {
			lastUsed = sf.LastUsed.Format(timeLayout)
		}

		row := []string{
			sf.Name,
			sf.Description,
			sf.Expression,
			strings.Join(filterKeys(sf.Filter), ", "),
			sf.CreatedAt.Format(timeLayout),
			sf.UpdatedAt.Format(timeLayout),
			lastUsed,
			fmt.Sprintf("%d", sf.UsageCount),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// ExportToJSON exports saved filters to a JSON file
func ExportToJSON(filters []models.SavedFilter, path string) error {
	if filters == nil {
		filters = []models.SavedFilter{}
	}

	data, err := json.MarshalIndent(filters, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal saved filters to JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	return nil
}

// filterKeys lists the distinct key names of a filter in order of first use
func filterKeys(f models.TagFilter) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, item := range f.Items {
		if !seen[item.Key.Key] {
			seen[item.Key.Key] = true
			keys = append(keys, item.Key.Key)
		}
	}
	return keys
}
