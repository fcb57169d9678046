package metadata

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rebeliceyang/qbsearch/internal/db/connection"
	"github.com/rebeliceyang/qbsearch/internal/models"
)

func toString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// tableName returns the quoted schema.table identifier
func tableName(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}

// GetTableColumns retrieves column metadata for a table
func GetTableColumns(ctx context.Context, pool *connection.Pool, schema, table string) ([]models.ColumnInfo, error) {
	query := `
		SELECT
			column_name,
			data_type,
			udt_name,
			CASE WHEN data_type = 'ARRAY' THEN true ELSE false END as is_array
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := pool.Query(ctx, query, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var columns []models.ColumnInfo
	for _, row := range rows {
		var col models.ColumnInfo
		col.Name = toString(row["column_name"])
		col.DataType = toString(row["data_type"])
		col.UDTName = toString(row["udt_name"])

		if isArray, ok := row["is_array"].(bool); ok {
			col.IsArray = isArray
		}

		col.IsJsonb = col.UDTName == "jsonb" || col.UDTName == "json"

		columns = append(columns, col)
	}

	return columns, nil
}

// SampleDistinct returns up to limit distinct non-null, non-blank values of a column, rendered as text
func SampleDistinct(ctx context.Context, pool *connection.Pool, schema, table, column string, limit int) ([]string, error) {
	query := fmt.Sprintf(
		"SELECT DISTINCT %[1]s::text AS v FROM %[2]s WHERE %[1]s IS NOT NULL AND btrim(%[1]s::text) <> '' ORDER BY 1 LIMIT %[3]d",
		pgx.Identifier{column}.Sanitize(), tableName(schema, table), limit,
	)

	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to sample %s: %w", column, err)
	}

	values := make([]string, 0, len(rows))
	for _, row := range rows {
		values = append(values, toString(row["v"]))
	}
	return values, nil
}

// SampleJSON returns up to limit raw JSON documents of a json/jsonb column
func SampleJSON(ctx context.Context, pool *connection.Pool, schema, table, column string, limit int) ([]interface{}, error) {
	query := fmt.Sprintf(
		"SELECT %s::text AS doc FROM %s WHERE %s IS NOT NULL LIMIT %d",
		pgx.Identifier{column}.Sanitize(), tableName(schema, table), pgx.Identifier{column}.Sanitize(), limit,
	)

	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to sample json column %s: %w", column, err)
	}

	docs := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, toString(row["doc"]))
	}
	return docs, nil
}

// CountMatching counts the rows of a table matching a WHERE clause built by the filter builder
func CountMatching(ctx context.Context, pool *connection.Pool, schema, table, where string, args []interface{}) (int64, error) {
	query := "SELECT COUNT(*) FROM " + tableName(schema, table)
	if strings.TrimSpace(where) != "" {
		query += " " + where
	}

	n, err := pool.QueryInt64(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}
