// Package catalog loads the attribute keys and sample values offered by the search bar.
package catalog

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/rebeliceyang/qbsearch/internal/db/connection"
	"github.com/rebeliceyang/qbsearch/internal/db/metadata"
	"github.com/rebeliceyang/qbsearch/internal/jsonb"
	"github.com/rebeliceyang/qbsearch/internal/models"
)

// jsonSampleSize is the number of documents read per json column to discover paths
const jsonSampleSize = 50

// Catalog is the set of keys and values the dropdown resolver draws from
type Catalog struct {
	Keys   []models.AttributeKey     `yaml:"keys"`
	Values models.AttributeValuesMap `yaml:"values"`
}

// LoadFile reads a YAML catalog file
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog and fills in missing key ids
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for i := range c.Keys {
		if c.Keys[i].ID == "" {
			c.Keys[i].ID = models.MakeKeyID(c.Keys[i])
		}
	}
	if c.Values == nil {
		c.Values = models.AttributeValuesMap{}
	}
	return &c, nil
}

// FromPostgres builds a catalog from a table: columns become keys, json columns are expanded
// into their paths and scalar columns are sampled for values.
func FromPostgres(ctx context.Context, pool *connection.Pool, schema, table string, sampleLimit int) (*Catalog, error) {
	columns, err := metadata.GetTableColumns(ctx, pool, schema, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s.%s has no columns", schema, table)
	}

	c := &Catalog{Values: models.AttributeValuesMap{}}
	for _, col := range columns {
		if col.IsJsonb {
			docs, err := metadata.SampleJSON(ctx, pool, schema, table, col.Name, jsonSampleSize)
			if err != nil {
				return nil, err
			}
			parsed := make([]interface{}, 0, len(docs))
			for _, d := range docs {
				if v, err := jsonb.Decode(d); err == nil {
					parsed = append(parsed, v)
				}
			}
			c.Keys = append(c.Keys, ColumnKey(col))
			c.Keys = append(c.Keys, jsonb.MergeKeys(col.Name, parsed)...)
			continue
		}

		key := ColumnKey(col)
		c.Keys = append(c.Keys, key)
		if key.DataType == models.DataTypeEmpty || sampleLimit <= 0 {
			continue
		}

		samples, err := metadata.SampleDistinct(ctx, pool, schema, table, col.Name, sampleLimit)
		if err != nil {
			return nil, err
		}
		c.Values[col.Name] = ValuesFor(key.DataType, samples)
	}

	sort.SliceStable(c.Keys, func(i, j int) bool { return c.Keys[i].Key < c.Keys[j].Key })
	return c, nil
}

// ColumnKey turns a table column into a search key
func ColumnKey(col models.ColumnInfo) models.AttributeKey {
	k := models.AttributeKey{
		Key:      col.Name,
		DataType: DataTypeFor(col.UDTName),
		IsColumn: true,
		IsJSON:   col.IsJsonb,
	}
	if col.IsArray {
		k.DataType = models.DataTypeEmpty
	}
	k.ID = models.MakeKeyID(k)
	return k
}

// DataTypeFor maps a PostgreSQL udt name to a key data type
func DataTypeFor(udt string) models.DataType {
	switch udt {
	case "text", "varchar", "bpchar", "char", "name", "uuid", "citext", "inet":
		return models.DataTypeString
	case "int2", "int4", "int8":
		return models.DataTypeInt64
	case "float4", "float8", "numeric":
		return models.DataTypeFloat64
	case "bool":
		return models.DataTypeBool
	default:
		return models.DataTypeEmpty
	}
}

// ValuesFor partitions sampled text values by data type
func ValuesFor(dt models.DataType, samples []string) models.AttributeValue {
	var v models.AttributeValue
	switch dt {
	case models.DataTypeInt64, models.DataTypeFloat64:
		for _, s := range samples {
			var n float64
			if _, err := fmt.Sscan(s, &n); err == nil {
				v.NumberAttributeValues = append(v.NumberAttributeValues, n)
			}
		}
	case models.DataTypeBool:
		for _, s := range samples {
			switch s {
			case "true", "t":
				v.BoolAttributeValues = append(v.BoolAttributeValues, true)
			case "false", "f":
				v.BoolAttributeValues = append(v.BoolAttributeValues, false)
			}
		}
	default:
		v.StringAttributeValues = append(v.StringAttributeValues, samples...)
	}
	return v
}
