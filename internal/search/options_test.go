package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/qbsearch/internal/models"
)

func labels(opts []Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Label
	}
	return out
}

func TestResolveKeysByPrefix(t *testing.T) {
	keys := []models.AttributeKey{serviceName, statusCode, env}

	opts := Resolve(ChoosingKey{}, "s", keys, nil)
	assert.Equal(t, []string{"service.name", "status_code"}, labels(opts))

	opts = Resolve(ChoosingKey{}, "", keys, nil)
	assert.Len(t, opts, 3)

	opts = Resolve(ChoosingKey{}, "zzz", keys, nil)
	assert.NotNil(t, opts)
	assert.Empty(t, opts)
}

func TestResolveKeyValueIsJSON(t *testing.T) {
	opts := Resolve(ChoosingKey{}, "env", []models.AttributeKey{env}, nil)
	require.Len(t, opts, 1)

	k, ok := decodeKey(opts[0].Value)
	require.True(t, ok)
	assert.Equal(t, env, k)
}

func TestResolveOperatorsForDataType(t *testing.T) {
	opts := Resolve(ChoosingOperator{Key: models.AttributeKey{Key: "ok", DataType: models.DataTypeBool}}, "ok", nil, nil)
	assert.Equal(t, []string{"=", "!=", "EXISTS", "NOT_EXISTS"}, labels(opts))
}

func TestResolveOperatorsPartialCaseInsensitive(t *testing.T) {
	opts := Resolve(ChoosingOperator{Key: env}, "env not_", nil, nil)
	assert.Equal(t, []string{"NOT_IN", "NOT_LIKE", "NOT_CONTAINS", "NOT_REGEX", "NOT_EXISTS"}, labels(opts))
}

func TestResolveOperatorsUniversalFallback(t *testing.T) {
	opts := Resolve(ChoosingOperator{Key: models.AttributeKey{Key: "custom"}}, "custom", nil, nil)
	assert.Len(t, opts, 18)

	opts = Resolve(ChoosingOperator{Key: models.AttributeKey{Key: "custom"}}, "custom >", nil, nil)
	assert.Equal(t, []string{">=", ">"}, labels(opts))
}

func TestResolveOperatorsBodyArray(t *testing.T) {
	key := models.AttributeKey{Key: "body.status[*]", DataType: models.DataTypeInt64}

	opts := Resolve(ChoosingOperator{Key: key}, "body.status[*]", nil, nil)
	assert.Equal(t, []string{"HAS", "NHAS"}, labels(opts))
}

func TestResolveValues(t *testing.T) {
	values := models.AttributeValuesMap{
		"env":         {StringAttributeValues: []string{"prod", "staging"}},
		"status_code": {NumberAttributeValues: []float64{200, 500}},
		"region":      {StringAttributeValues: []string{"eu,west"}},
	}

	opts := Resolve(EnteringValue{Key: env, Op: models.OpEqual}, "env = pr", nil, values)
	assert.Equal(t, []string{"pr", "prod", "staging"}, labels(opts))

	opts = Resolve(EnteringValue{Key: env, Op: models.OpEqual}, "env = prod", nil, values)
	assert.Equal(t, []string{"prod", "staging"}, labels(opts), "typed value is de-duplicated")

	opts = Resolve(EnteringValue{Key: statusCode, Op: models.OpIn}, "status_code IN 200,", nil, values)
	assert.Equal(t, []string{"200", "500"}, labels(opts))

	opts = Resolve(EnteringValue{Key: models.AttributeKey{Key: "region"}, Op: models.OpEqual}, "region =", nil, values)
	require.Len(t, opts, 1)
	assert.Equal(t, `"eu,west"`, opts[0].Label)
	assert.Equal(t, "eu,west", opts[0].Value)
}

func TestResolveValuesWithoutMap(t *testing.T) {
	opts := Resolve(EnteringValue{Key: env, Op: models.OpEqual}, "env = prod", nil, nil)
	assert.NotNil(t, opts)
	assert.Empty(t, opts)

	opts = Resolve(EnteringValue{Key: env, Op: models.OpEqual}, "env = prod", nil, models.AttributeValuesMap{})
	assert.Equal(t, []string{"prod"}, labels(opts), "empty map still offers the typed value")
}
