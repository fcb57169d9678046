package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rebeliceyang/qbsearch/internal/models"
)

// Builder generates SQL WHERE clauses from tag filters
type Builder struct {
	// BodyColumn is the jsonb column addressed by body.<path> keys
	BodyColumn string
}

// NewBuilder creates a new filter builder
func NewBuilder() *Builder {
	return &Builder{BodyColumn: "body"}
}

// BuildWhere generates a parameterized WHERE clause from a TagFilter
func (b *Builder) BuildWhere(f models.TagFilter) (string, []interface{}, error) {
	if len(f.Items) == 0 {
		return "", nil, nil
	}

	var clauses []string
	var args []interface{}
	currentParam := 1

	for _, item := range f.Items {
		clause, itemArgs, err := b.buildCondition(item, currentParam)
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, clause)
		args = append(args, itemArgs...)
		currentParam += len(itemArgs)
	}

	logic := strings.ToUpper(f.Op)
	if logic == "" {
		logic = "AND"
	}

	return "WHERE " + strings.Join(clauses, " "+logic+" "), args, nil
}

// buildCondition builds a single condition; item.Op is in machine form
func (b *Builder) buildCondition(item models.FilterItem, paramIndex int) (string, []interface{}, error) {
	if item.Key.Key == "" {
		return "", nil, fmt.Errorf("condition %q has an empty key", item.ID)
	}
	column, path, isJSONPath := b.jsonPath(item.Key)
	expr := pgx.Identifier{column}.Sanitize()
	if isJSONPath {
		expr = fmt.Sprintf("%s #>> '{%s}'", expr, strings.Join(path, ","))
	}
	op := OperatorFromValue(item.Op)
	scalar := item.Value.Scalar()

	// plain columns compare against typed parameters; JSON text is cast only for ordering
	typed := !isJSONPath
	textExpr := expr
	if !isJSONPath && isTyped(item.Key.DataType) {
		textExpr = expr + "::text"
	}

	switch op {
	case models.OpExists:
		return fmt.Sprintf("%s IS NOT NULL", expr), nil, nil
	case models.OpNotExists:
		return fmt.Sprintf("%s IS NULL", expr), nil, nil
	case models.OpEqual, models.OpNotEqual:
		arg, err := scalarArg(item.Key, scalar, typed)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s %s $%d", expr, op, paramIndex), []interface{}{arg}, nil
	case models.OpGreaterThan, models.OpGreaterOrEqual, models.OpLessThan, models.OpLessOrEqual:
		if isJSONPath && isNumeric(item.Key.DataType) {
			expr = fmt.Sprintf("(%s)::numeric", expr)
			typed = true
		}
		arg, err := scalarArg(item.Key, scalar, typed)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s %s $%d", expr, op, paramIndex), []interface{}{arg}, nil
	case models.OpLike:
		return fmt.Sprintf("%s LIKE $%d", textExpr, paramIndex), []interface{}{scalar}, nil
	case models.OpNotLike:
		return fmt.Sprintf("%s NOT LIKE $%d", textExpr, paramIndex), []interface{}{scalar}, nil
	case models.OpContains:
		return fmt.Sprintf("%s ILIKE $%d", textExpr, paramIndex), []interface{}{"%" + scalar + "%"}, nil
	case models.OpNotContains:
		return fmt.Sprintf("%s NOT ILIKE $%d", textExpr, paramIndex), []interface{}{"%" + scalar + "%"}, nil
	case models.OpRegex:
		return fmt.Sprintf("%s ~ $%d", textExpr, paramIndex), []interface{}{scalar}, nil
	case models.OpNotRegex:
		return fmt.Sprintf("%s !~ $%d", textExpr, paramIndex), []interface{}{scalar}, nil
	case models.OpIn, models.OpNotIn:
		// the list is bound as one array parameter
		arg, err := listArg(item.Key, item.Value.TrimDraft().Items, typed)
		if err != nil {
			return "", nil, err
		}
		clause := fmt.Sprintf("%s = ANY($%d)", expr, paramIndex)
		if op == models.OpNotIn {
			clause = "NOT (" + clause + ")"
		}
		return clause, []interface{}{arg}, nil
	case models.OpHas, models.OpNotHas:
		if !isJSONPath {
			return "", nil, fmt.Errorf("operator %s needs a JSON array key, got %q", op, item.Key.Key)
		}
		arr := fmt.Sprintf("%s #> '{%s}'", pgx.Identifier{column}.Sanitize(), strings.Join(path, ","))
		clause := fmt.Sprintf("%s @> jsonb_build_array($%d::text)", arr, paramIndex)
		if op == models.OpNotHas {
			clause = "NOT (" + clause + ")"
		}
		return clause, []interface{}{scalar}, nil
	default:
		return "", nil, fmt.Errorf("unsupported operator: %s", item.Op)
	}
}

// jsonPath splits a key into its jsonb column and path. Keys below body always address BodyColumn;
// other keys are paths only when marked as JSON and carrying a path below their root segment.
func (b *Builder) jsonPath(k models.AttributeKey) (string, []string, bool) {
	name := k.Key
	cut := strings.IndexAny(name, ".[")
	if cut <= 0 {
		return name, nil, false
	}
	root := name[:cut]
	column := root
	switch {
	case root == "body":
		column = b.BodyColumn
	case !k.IsJSON:
		return name, nil, false
	}

	rest := strings.TrimSuffix(strings.TrimPrefix(name[cut:], "."), "[*]")
	if rest == "" {
		return column, []string{}, true
	}
	parts := strings.Split(rest, ".")
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(p, "'", "''")
	}
	return column, parts, true
}

func isTyped(dt models.DataType) bool {
	return dt == models.DataTypeInt64 || dt == models.DataTypeFloat64 || dt == models.DataTypeBool
}

func isNumeric(dt models.DataType) bool {
	return dt == models.DataTypeInt64 || dt == models.DataTypeFloat64
}

// scalarArg converts a typed value to the Go type of its column
func scalarArg(k models.AttributeKey, s string, typed bool) (interface{}, error) {
	if !typed {
		return s, nil
	}
	v := strings.TrimSpace(s)
	var (
		arg interface{}
		err error
	)
	switch k.DataType {
	case models.DataTypeInt64:
		arg, err = strconv.ParseInt(v, 10, 64)
	case models.DataTypeFloat64:
		arg, err = strconv.ParseFloat(v, 64)
	case models.DataTypeBool:
		arg, err = strconv.ParseBool(v)
	default:
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("value %q of %s is not a valid %s", s, k.Key, k.DataType)
	}
	return arg, nil
}

// listArg converts IN/NOT_IN items into a typed slice
func listArg(k models.AttributeKey, items []string, typed bool) (interface{}, error) {
	if !typed || !isTyped(k.DataType) {
		return items, nil
	}
	switch k.DataType {
	case models.DataTypeInt64:
		out := make([]int64, 0, len(items))
		for _, item := range items {
			n, err := strconv.ParseInt(strings.TrimSpace(item), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("value %q of %s is not a valid %s", item, k.Key, k.DataType)
			}
			out = append(out, n)
		}
		return out, nil
	case models.DataTypeFloat64:
		out := make([]float64, 0, len(items))
		for _, item := range items {
			f, err := strconv.ParseFloat(strings.TrimSpace(item), 64)
			if err != nil {
				return nil, fmt.Errorf("value %q of %s is not a valid %s", item, k.Key, k.DataType)
			}
			out = append(out, f)
		}
		return out, nil
	default:
		out := make([]bool, 0, len(items))
		for _, item := range items {
			v, err := strconv.ParseBool(strings.TrimSpace(item))
			if err != nil {
				return nil, fmt.Errorf("value %q of %s is not a valid %s", item, k.Key, k.DataType)
			}
			out = append(out, v)
		}
		return out, nil
	}
}

// Expression renders the human-readable form of a filter
func Expression(f models.TagFilter) string {
	parts := make([]string, 0, len(f.Items))
	for _, item := range f.Items {
		tag := models.Tag{Key: item.Key, Op: OperatorFromValue(item.Op), Value: item.Value.TrimDraft()}
		if IsInNotIn(tag.Op) {
			parts = append(parts, fmt.Sprintf("%s %s (%s)", tag.Key.Key, tag.Op, tag.Value.String()))
			continue
		}
		parts = append(parts, tag.String())
	}
	logic := strings.ToUpper(f.Op)
	if logic == "" {
		logic = "AND"
	}
	return strings.Join(parts, " "+logic+" ")
}
