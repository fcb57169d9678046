package models

import (
	"strings"
)

// FilterOperator is the human-readable operator shown in the search bar
type FilterOperator string

const (
	OpEqual          FilterOperator = "="
	OpNotEqual       FilterOperator = "!="
	OpGreaterThan    FilterOperator = ">"
	OpGreaterOrEqual FilterOperator = ">="
	OpLessThan       FilterOperator = "<"
	OpLessOrEqual    FilterOperator = "<="
	OpIn             FilterOperator = "IN"
	OpNotIn          FilterOperator = "NOT_IN"
	OpLike           FilterOperator = "LIKE"
	OpNotLike        FilterOperator = "NOT_LIKE"
	OpRegex          FilterOperator = "REGEX"
	OpNotRegex       FilterOperator = "NOT_REGEX"
	OpContains       FilterOperator = "CONTAINS"
	OpNotContains    FilterOperator = "NOT_CONTAINS"
	OpExists         FilterOperator = "EXISTS"
	OpNotExists      FilterOperator = "NOT_EXISTS"
	OpHas            FilterOperator = "HAS"  // JSON array contains
	OpNotHas         FilterOperator = "NHAS" // JSON array does not contain
)

// Tag is one committed key/operator/value filter condition
type Tag struct {
	ID    string         `json:"id,omitempty" yaml:"id,omitempty"`
	Key   AttributeKey   `json:"key" yaml:"key"`
	Op    FilterOperator `json:"op" yaml:"op"`
	Value Value          `json:"value" yaml:"value"`
}

// String returns the chip form "key op value"
func (t Tag) String() string {
	parts := []string{t.Key.Key, string(t.Op)}
	if v := t.Value.String(); v != "" {
		parts = append(parts, v)
	}
	return strings.Join(parts, " ")
}

// Equal compares two tags including their ids
func (t Tag) Equal(o Tag) bool {
	return t.ID == o.ID && t.Key == o.Key && t.Op == o.Op && t.Value.Equal(o.Value)
}

// FilterItem is a tag in the external filter shape; Op carries the machine form ("in", "nexists", ...)
type FilterItem struct {
	ID    string       `json:"id" yaml:"id"`
	Key   AttributeKey `json:"key" yaml:"key"`
	Op    string       `json:"op" yaml:"op"`
	Value Value        `json:"value" yaml:"value"`
}

// TagFilter is the externally owned filter the search bar stays in sync with
type TagFilter struct {
	Op    string       `json:"op" yaml:"op"`
	Items []FilterItem `json:"items" yaml:"items"`
}

// NewTagFilter returns an empty AND filter
func NewTagFilter() TagFilter {
	return TagFilter{Op: "AND", Items: []FilterItem{}}
}

// Equal reports whether both filters carry the same items in the same order
func (f TagFilter) Equal(o TagFilter) bool {
	if f.Op != o.Op || len(f.Items) != len(o.Items) {
		return false
	}
	for i := range f.Items {
		a, b := f.Items[i], o.Items[i]
		if a.ID != b.ID || a.Key != b.Key || a.Op != b.Op || !a.Value.Equal(b.Value) {
			return false
		}
	}
	return true
}

// WhereClauseConfig configures the fallback applied to a bare key on blur
type WhereClauseConfig struct {
	CustomKey string         `mapstructure:"custom_key" yaml:"custom_key"`
	CustomOp  FilterOperator `mapstructure:"custom_op" yaml:"custom_op"`
}
