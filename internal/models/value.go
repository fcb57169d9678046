package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Value is the right-hand side of a tag: a scalar, or a list for IN/NOT_IN.
// A list may end with an empty item while the next comma-separated value is being typed.
type Value struct {
	List  bool
	Items []string
}

// Scalar builds a single-value Value
func Scalar(s string) Value {
	return Value{Items: []string{s}}
}

// ListOf builds a multi-value Value
func ListOf(items ...string) Value {
	return Value{List: true, Items: append([]string{}, items...)}
}

// Scalar returns the scalar form, or the first item of a list
func (v Value) Scalar() string {
	if len(v.Items) == 0 {
		return ""
	}
	return v.Items[0]
}

// String renders the value as typed into the search bar
func (v Value) String() string {
	if !v.List {
		return v.Scalar()
	}
	quoted := make([]string, len(v.Items))
	for i, item := range v.Items {
		quoted[i] = QuoteIfComma(item)
	}
	return strings.Join(quoted, ",")
}

// Count returns the number of non-empty items
func (v Value) Count() int {
	n := 0
	for _, item := range v.Items {
		if item != "" {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no non-empty item exists
func (v Value) IsEmpty() bool {
	return v.Count() == 0
}

// HasDraft reports whether the list ends with the "awaiting next value" slot
func (v Value) HasDraft() bool {
	return v.List && len(v.Items) > 0 && v.Items[len(v.Items)-1] == ""
}

// TrimDraft drops the trailing empty slot of a list
func (v Value) TrimDraft() Value {
	if !v.HasDraft() {
		return v.Clone()
	}
	return Value{List: true, Items: append([]string{}, v.Items[:len(v.Items)-1]...)}
}

// Contains reports whether s is one of the items
func (v Value) Contains(s string) bool {
	for _, item := range v.Items {
		if item == s {
			return true
		}
	}
	return false
}

// Clone returns a deep copy
func (v Value) Clone() Value {
	if v.Items == nil {
		return Value{List: v.List}
	}
	return Value{List: v.List, Items: append([]string{}, v.Items...)}
}

// Equal compares kind and items
func (v Value) Equal(o Value) bool {
	if v.List != o.List {
		return false
	}
	if !v.List {
		return v.Scalar() == o.Scalar()
	}
	if len(v.Items) != len(o.Items) {
		return false
	}
	for i := range v.Items {
		if v.Items[i] != o.Items[i] {
			return false
		}
	}
	return true
}

// QuoteIfComma wraps s in double quotes when it contains a comma
func QuoteIfComma(s string) string {
	if strings.Contains(s, ",") {
		return `"` + s + `"`
	}
	return s
}

// MarshalJSON encodes a scalar as a string and a list as an array
func (v Value) MarshalJSON() ([]byte, error) {
	if v.List {
		items := v.Items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(v.Scalar())
}

// UnmarshalJSON accepts a string, number, bool or an array of those
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var raw []interface{}
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("invalid value list: %w", err)
		}
		items := make([]string, 0, len(raw))
		for _, r := range raw {
			items = append(items, stringify(r))
		}
		*v = Value{List: true, Items: items}
		return nil
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}
	*v = Scalar(stringify(raw))
	return nil
}

// MarshalYAML mirrors the JSON shape
func (v Value) MarshalYAML() (interface{}, error) {
	if v.List {
		items := v.Items
		if items == nil {
			items = []string{}
		}
		return items, nil
	}
	return v.Scalar(), nil
}

// UnmarshalYAML accepts a scalar or a sequence node
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, n := range node.Content {
			items = append(items, n.Value)
		}
		*v = Value{List: true, Items: items}
	case yaml.ScalarNode:
		*v = Scalar(node.Value)
	default:
		return fmt.Errorf("unsupported value node at line %d", node.Line)
	}
	return nil
}

func stringify(r interface{}) string {
	switch x := r.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatNumber(x)
	case bool:
		return fmt.Sprintf("%t", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
