package filter

import (
	"strings"

	"github.com/rebeliceyang/qbsearch/internal/models"
)

// Arity classifies how many values an operator takes
type Arity string

const (
	NoValue        Arity = "NON_VALUE"
	SingleValue    Arity = "SINGLE_VALUE"
	MultipleValues Arity = "MULTIPLY_VALUE"
	NotValid       Arity = "NOT_VALID"
)

// AllOperators lists every operator the search bar understands
var AllOperators = []models.FilterOperator{
	models.OpEqual, models.OpNotEqual,
	models.OpIn, models.OpNotIn,
	models.OpExists, models.OpNotExists,
	models.OpLike, models.OpNotLike,
	models.OpGreaterOrEqual, models.OpGreaterThan,
	models.OpLessOrEqual, models.OpLessThan,
	models.OpContains, models.OpNotContains,
	models.OpRegex, models.OpNotRegex,
	models.OpHas, models.OpNotHas,
}

// machine form used by the external filter model
var toMachine = map[models.FilterOperator]string{
	models.OpEqual:          "=",
	models.OpNotEqual:       "!=",
	models.OpIn:             "in",
	models.OpNotIn:          "nin",
	models.OpLike:           "like",
	models.OpNotLike:        "nlike",
	models.OpRegex:          "regex",
	models.OpNotRegex:       "nregex",
	models.OpContains:       "contains",
	models.OpNotContains:    "ncontains",
	models.OpExists:         "exists",
	models.OpNotExists:      "nexists",
	models.OpGreaterOrEqual: ">=",
	models.OpGreaterThan:    ">",
	models.OpLessOrEqual:    "<=",
	models.OpLessThan:       "<",
	models.OpHas:            "has",
	models.OpNotHas:         "nhas",
}

var fromMachine = func() map[string]models.FilterOperator {
	m := make(map[string]models.FilterOperator, len(toMachine))
	for op, v := range toMachine {
		m[v] = op
	}
	return m
}()

// OperatorValue maps a human operator to its machine form; unknown operators pass through
func OperatorValue(op models.FilterOperator) string {
	if v, ok := toMachine[op]; ok {
		return v
	}
	return string(op)
}

// OperatorFromValue maps a machine operator back to its human form; unknown values pass through
func OperatorFromValue(v string) models.FilterOperator {
	if op, ok := fromMachine[strings.ToLower(v)]; ok {
		return op
	}
	return models.FilterOperator(v)
}

// IsKnown reports whether op is one of AllOperators
func IsKnown(op models.FilterOperator) bool {
	_, ok := toMachine[op]
	return ok
}

// ArityOf classifies an operator
func ArityOf(op models.FilterOperator) Arity {
	switch op {
	case models.OpExists, models.OpNotExists:
		return NoValue
	case models.OpIn, models.OpNotIn:
		return MultipleValues
	case "":
		return NotValid
	}
	if IsKnown(op) {
		return SingleValue
	}
	return NotValid
}

// IsInNotIn reports whether op accumulates a comma-separated list
func IsInNotIn(op models.FilterOperator) bool {
	return ArityOf(op) == MultipleValues
}

// IsExistence reports whether op commits without a value
func IsExistence(op models.FilterOperator) bool {
	return ArityOf(op) == NoValue
}

// ValidCount reports whether count values satisfy the arity
func (a Arity) ValidCount(count int) bool {
	switch a {
	case SingleValue:
		return count == 1
	case MultipleValues:
		return count >= 1
	case NoValue:
		return count == 0
	default:
		return false
	}
}

// ValidValue checks a draft value against the operator's arity
func ValidValue(op models.FilterOperator, v models.Value) bool {
	return ArityOf(op).ValidCount(v.Count())
}

// GetOperatorsForType returns available operators for a given data type
func GetOperatorsForType(dataType models.DataType) []models.FilterOperator {
	switch dataType {
	case models.DataTypeString:
		return []models.FilterOperator{
			models.OpEqual, models.OpNotEqual,
			models.OpIn, models.OpNotIn,
			models.OpLike, models.OpNotLike,
			models.OpContains, models.OpNotContains,
			models.OpRegex, models.OpNotRegex,
			models.OpExists, models.OpNotExists,
		}
	case models.DataTypeInt64, models.DataTypeFloat64:
		return []models.FilterOperator{
			models.OpEqual, models.OpNotEqual,
			models.OpIn, models.OpNotIn,
			models.OpExists, models.OpNotExists,
			models.OpGreaterOrEqual, models.OpGreaterThan,
			models.OpLessOrEqual, models.OpLessThan,
		}
	case models.DataTypeBool:
		return []models.FilterOperator{
			models.OpEqual, models.OpNotEqual,
			models.OpExists, models.OpNotExists,
		}
	default:
		return append([]models.FilterOperator(nil), AllOperators...)
	}
}

// GetOperatorsForKey applies the body array restriction before the data type lookup
func GetOperatorsForKey(key models.AttributeKey) []models.FilterOperator {
	if key.IsBodyArrayPath() {
		return []models.FilterOperator{models.OpHas, models.OpNotHas}
	}
	return GetOperatorsForType(key.DataType)
}
