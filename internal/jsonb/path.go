package jsonb

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rebeliceyang/qbsearch/internal/models"
)

// Path is a location inside a JSON document, e.g. user.address.city or items[*]
type Path struct {
	Parts    []string
	Array    bool            // the path addresses an array
	DataType models.DataType // type of the leaf, or of the array elements
}

// String returns the dotted notation
func (p Path) String() string {
	s := strings.Join(p.Parts, ".")
	if p.Array {
		s += "[*]"
	}
	return s
}

// AttributeKey renders the path as a search key below root, e.g. body.items[*]
func (p Path) AttributeKey(root string) models.AttributeKey {
	name := root
	if len(p.Parts) > 0 {
		name = root + "." + p.String()
	} else if p.Array {
		name = root + "[*]"
	}
	k := models.AttributeKey{
		Key:      name,
		DataType: p.DataType,
		IsJSON:   true,
	}
	k.ID = models.MakeKeyID(k)
	return k
}

// Decode parses a string or []byte as JSON; other values are returned as-is
func Decode(value interface{}) (interface{}, error) {
	var parsed interface{}
	switch v := value.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	case []byte:
		if err := json.Unmarshal(v, &parsed); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	default:
		parsed = v
	}
	return parsed, nil
}

// ExtractPaths extracts the leaf and array paths of a JSON value, sorted by name
func ExtractPaths(value interface{}) []Path {
	parsed, err := Decode(value)
	if err != nil {
		return nil
	}

	var paths []Path
	extractPathsRecursive(parsed, []string{}, &paths)
	sort.Slice(paths, func(i, j int) bool {
		return paths[i].String() < paths[j].String()
	})
	return paths
}

func extractPathsRecursive(value interface{}, currentPath []string, paths *[]Path) {
	switch v := value.(type) {
	case map[string]interface{}:
		for key, val := range v {
			newPath := append([]string{}, currentPath...)
			newPath = append(newPath, key)
			extractPathsRecursive(val, newPath, paths)
		}

	case []interface{}:
		// element type is taken from the first 5 elements
		limit := len(v)
		if limit > 5 {
			limit = 5
		}
		elemType := models.DataTypeEmpty
		for i := 0; i < limit; i++ {
			if t := leafType(v[i]); t != models.DataTypeEmpty {
				elemType = t
				break
			}
		}
		*paths = append(*paths, Path{Parts: currentPath, Array: true, DataType: elemType})

	case nil:
		// null carries no type information

	default:
		if len(currentPath) > 0 {
			*paths = append(*paths, Path{Parts: currentPath, DataType: leafType(v)})
		}
	}
}

func leafType(v interface{}) models.DataType {
	switch x := v.(type) {
	case string:
		return models.DataTypeString
	case bool:
		return models.DataTypeBool
	case float64:
		if x == float64(int64(x)) {
			return models.DataTypeInt64
		}
		return models.DataTypeFloat64
	default:
		return models.DataTypeEmpty
	}
}

// MergeKeys adds the keys of each document to a de-duplicated, sorted key list
func MergeKeys(root string, docs []interface{}) []models.AttributeKey {
	seen := make(map[string]models.AttributeKey)
	for _, doc := range docs {
		for _, p := range ExtractPaths(doc) {
			k := p.AttributeKey(root)
			if existing, ok := seen[k.Key]; ok && existing.DataType != models.DataTypeEmpty {
				continue
			}
			seen[k.Key] = k
		}
	}

	keys := make([]models.AttributeKey, 0, len(seen))
	for _, k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Key < keys[j].Key })
	return keys
}
