package search

import (
	"encoding/json"
	"strings"

	"github.com/rebeliceyang/qbsearch/internal/filter"
	"github.com/rebeliceyang/qbsearch/internal/models"
)

// Option is one dropdown suggestion; Value is what Select receives back
type Option struct {
	Label string
	Value string
}

// Resolve computes the suggestions for the current state and input
func Resolve(st State, input string, keys []models.AttributeKey, values models.AttributeValuesMap) []Option {
	switch s := st.(type) {
	case ChoosingOperator:
		return operatorOptions(s.Key, input)
	case EnteringValue:
		return valueOptions(s.Key, input, values)
	default:
		return keyOptions(keys, input)
	}
}

func keyOptions(keys []models.AttributeKey, input string) []Option {
	options := []Option{}
	for _, k := range keys {
		if !strings.HasPrefix(k.Key, input) {
			continue
		}
		options = append(options, Option{Label: k.Key, Value: encodeKey(k)})
	}
	return options
}

func operatorOptions(key models.AttributeKey, input string) []Option {
	parts := strings.Split(input, " ")
	strippedKey := parts[0]
	partial := ""
	if len(parts) > 1 {
		partial = strings.ToUpper(parts[1])
	}

	// body array paths only support HAS/NHAS, whatever their declared type
	if key.IsBodyArrayPath() || models.IsBodyArrayPath(strippedKey) {
		return []Option{
			{Label: string(models.OpHas), Value: string(models.OpHas)},
			{Label: string(models.OpNotHas), Value: string(models.OpNotHas)},
		}
	}

	options := []Option{}
	for _, op := range filter.GetOperatorsForType(key.DataType) {
		if partial != "" && !strings.HasPrefix(string(op), partial) {
			continue
		}
		options = append(options, Option{Label: string(op), Value: string(op)})
	}
	return options
}

func valueOptions(key models.AttributeKey, input string, values models.AttributeValuesMap) []Option {
	if values == nil {
		return []Option{}
	}

	var candidates []string
	tok := filter.SplitTag(input)
	if tok.Value.List {
		if n := len(tok.Value.Items); n > 0 && tok.Value.Items[n-1] != "" {
			candidates = append(candidates, tok.Value.Items[n-1])
		}
	} else if v := tok.Value.Scalar(); v != "" {
		candidates = append(candidates, v)
	}
	candidates = append(candidates, values[key.Key].Samples()...)

	seen := make(map[string]bool, len(candidates))
	options := make([]Option, 0, len(candidates))
	for _, c := range candidates {
		if strings.TrimSpace(c) == "" || seen[c] {
			continue
		}
		seen[c] = true
		options = append(options, Option{Label: models.QuoteIfComma(c), Value: c})
	}
	return options
}

func encodeKey(k models.AttributeKey) string {
	data, err := json.Marshal(k)
	if err != nil {
		return k.Key
	}
	return string(data)
}

// decodeKey reads a dropdown value back into a key; a non-JSON value is treated as a bare key name
func decodeKey(raw string) (models.AttributeKey, bool) {
	var k models.AttributeKey
	if err := json.Unmarshal([]byte(raw), &k); err != nil || k.Key == "" {
		return models.AttributeKey{}, false
	}
	return k, true
}
