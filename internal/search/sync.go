package search

import (
	"github.com/google/uuid"
	"github.com/rebeliceyang/qbsearch/internal/filter"
	"github.com/rebeliceyang/qbsearch/internal/models"
)

// IDFunc mints identifiers for tags that do not have one yet
type IDFunc func() string

// ShortID returns the first 8 characters of a random UUID
func ShortID() string {
	return uuid.New().String()[:8]
}

// Export converts the tag list into the external filter shape
func Export(tags []models.Tag, newID IDFunc) models.TagFilter {
	if newID == nil {
		newID = ShortID
	}
	out := models.NewTagFilter()
	for _, tag := range tags {
		id := tag.ID
		if id == "" {
			id = newID()
		}
		out.Items = append(out.Items, models.FilterItem{
			ID:    id,
			Key:   tag.Key,
			Op:    filter.OperatorValue(tag.Op),
			Value: tag.Value.TrimDraft(),
		})
	}
	return out
}

// Import converts an external filter back into tags
func Import(f models.TagFilter) []models.Tag {
	tags := make([]models.Tag, 0, len(f.Items))
	for _, item := range f.Items {
		tags = append(tags, models.Tag{
			ID:    item.ID,
			Key:   item.Key,
			Op:    filter.OperatorFromValue(item.Op),
			Value: item.Value.Clone(),
		})
	}
	return tags
}

// Reconcile exports tags and compares the result with the external filter.
// When they differ it returns the new external filter and the tag list re-imported from it.
func Reconcile(tags []models.Tag, external models.TagFilter, newID IDFunc) (models.TagFilter, []models.Tag, bool) {
	exported := Export(tags, newID)
	if exported.Equal(normalize(external)) {
		return external, tags, false
	}
	return exported, Import(exported), true
}

func normalize(f models.TagFilter) models.TagFilter {
	if f.Op == "" {
		f.Op = "AND"
	}
	if f.Items == nil {
		f.Items = []models.FilterItem{}
	}
	return f
}
