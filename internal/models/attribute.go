package models

import (
	"fmt"
	"strings"
)

// DataType is the declared type of an attribute key
type DataType string

const (
	DataTypeEmpty   DataType = ""
	DataTypeString  DataType = "string"
	DataTypeInt64   DataType = "int64"
	DataTypeFloat64 DataType = "float64"
	DataTypeBool    DataType = "bool"
)

// AttributeKey describes one selectable field
type AttributeKey struct {
	Key      string   `json:"key" yaml:"key"`
	DataType DataType `json:"dataType" yaml:"data_type"`
	IsColumn bool     `json:"isColumn" yaml:"is_column"`
	IsJSON   bool     `json:"isJSON" yaml:"is_json"`
	Type     string   `json:"type" yaml:"type"` // tag, resource, or empty
	ID       string   `json:"id,omitempty" yaml:"id,omitempty"`
}

// MakeKeyID builds the conventional "key--dataType--type--isColumn" identifier
func MakeKeyID(k AttributeKey) string {
	return fmt.Sprintf("%s--%s--%s--%t", k.Key, k.DataType, k.Type, k.IsColumn)
}

// IsBodyArrayPath reports whether the key addresses a JSON array inside the log body, e.g. body.items[*]
func (k AttributeKey) IsBodyArrayPath() bool {
	return IsBodyArrayPath(k.Key)
}

// IsBodyArrayPath reports whether name looks like body.<path>[*]
func IsBodyArrayPath(name string) bool {
	return strings.HasPrefix(name, "body.") && strings.HasSuffix(name, "[*]")
}

// BodyKey is the synthetic key used by the "body CONTAINS" blur fallback
func BodyKey() AttributeKey {
	k := AttributeKey{
		Key:      "body",
		DataType: DataTypeString,
		IsColumn: true,
	}
	k.ID = MakeKeyID(k)
	return k
}

// AttributeValue holds known sample values for one key, partitioned by type
type AttributeValue struct {
	StringAttributeValues []string  `json:"stringAttributeValues" yaml:"string"`
	NumberAttributeValues []float64 `json:"numberAttributeValues" yaml:"number"`
	BoolAttributeValues   []bool    `json:"boolAttributeValues" yaml:"bool"`
}

// Samples returns the first non-empty sample list rendered as strings
func (v AttributeValue) Samples() []string {
	switch {
	case len(v.StringAttributeValues) > 0:
		return append([]string(nil), v.StringAttributeValues...)
	case len(v.NumberAttributeValues) > 0:
		out := make([]string, 0, len(v.NumberAttributeValues))
		for _, n := range v.NumberAttributeValues {
			out = append(out, formatNumber(n))
		}
		return out
	case len(v.BoolAttributeValues) > 0:
		out := make([]string, 0, len(v.BoolAttributeValues))
		for _, b := range v.BoolAttributeValues {
			out = append(out, fmt.Sprintf("%t", b))
		}
		return out
	}
	return nil
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}

// AttributeValuesMap maps a key name to its known sample values
type AttributeValuesMap map[string]AttributeValue
