package filter

import (
	"testing"

	"github.com/rebeliceyang/qbsearch/internal/models"
)

func TestArityOf(t *testing.T) {
	tests := []struct {
		op   models.FilterOperator
		want Arity
	}{
		{models.OpExists, NoValue},
		{models.OpNotExists, NoValue},
		{models.OpIn, MultipleValues},
		{models.OpNotIn, MultipleValues},
		{models.OpEqual, SingleValue},
		{models.OpHas, SingleValue},
		{"", NotValid},
		{"BETWEEN", NotValid},
	}

	for _, tt := range tests {
		if got := ArityOf(tt.op); got != tt.want {
			t.Errorf("ArityOf(%q) = %s, want %s", tt.op, got, tt.want)
		}
	}
}

func TestValidValue(t *testing.T) {
	if !ValidValue(models.OpEqual, models.Scalar("x")) {
		t.Error("single value should satisfy '='")
	}
	if ValidValue(models.OpEqual, models.Scalar("")) {
		t.Error("empty value should not satisfy '='")
	}
	if !ValidValue(models.OpIn, models.ListOf("a", "")) {
		t.Error("one item plus draft slot should satisfy IN")
	}
	if ValidValue(models.OpIn, models.ListOf("")) {
		t.Error("only a draft slot should not satisfy IN")
	}
	if ValidValue("", models.Scalar("x")) {
		t.Error("missing operator is never valid")
	}
}

func TestOperatorMapping(t *testing.T) {
	for _, op := range AllOperators {
		if got := OperatorFromValue(OperatorValue(op)); got != op {
			t.Errorf("round trip of %s gave %s", op, got)
		}
	}
	if OperatorValue(models.OpNotIn) != "nin" {
		t.Errorf("expected 'nin', got '%s'", OperatorValue(models.OpNotIn))
	}
	if OperatorFromValue("between") != "between" {
		t.Error("unknown machine operator should pass through")
	}
}

func TestGetOperatorsForType(t *testing.T) {
	boolOps := GetOperatorsForType(models.DataTypeBool)
	if len(boolOps) != 4 {
		t.Errorf("expected 4 bool operators, got %d", len(boolOps))
	}

	universal := GetOperatorsForType(models.DataTypeEmpty)
	if len(universal) != len(AllOperators) {
		t.Errorf("expected universal list of %d, got %d", len(AllOperators), len(universal))
	}

	for _, op := range GetOperatorsForType(models.DataTypeInt64) {
		if op == models.OpLike {
			t.Error("int64 should not offer LIKE")
		}
	}
}

func TestGetOperatorsForKey_BodyArray(t *testing.T) {
	key := models.AttributeKey{Key: "body.status[*]", DataType: models.DataTypeString}

	ops := GetOperatorsForKey(key)

	if len(ops) != 2 || ops[0] != models.OpHas || ops[1] != models.OpNotHas {
		t.Errorf("expected [HAS NHAS], got %v", ops)
	}
}
