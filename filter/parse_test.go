package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tabulagen/tabula/filter"
)

func TestParseKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key   string
		field string
		op    filter.Op
	}{
		{"status_eq", "status", filter.OpEQ},
		{"status", "status", filter.OpEQ},
		{"age_gte", "age", filter.OpGTE},
		{"age_lt", "age", filter.OpLT},
		{"name_like", "name", filter.OpLike},
		{"id_in", "id", filter.OpIn},
		{"id_nin", "id", filter.OpNotIn},
		{"age_between", "age", filter.OpBetween},
		{"deleted_at_null", "deleted_at", filter.OpIsNull},
		{"deleted_at_nnull", "deleted_at", filter.OpNotNull},
		// Only the trailing token is an operator candidate; earlier
		// underscores belong to the column name.
		{"created_at_gt", "created_at", filter.OpGT},
		// An unrecognized suffix keeps the whole key as the field name.
		{"status_equals", "status_equals", filter.OpEQ},
		{"like", "like", filter.OpEQ},
		// A key that is only an operator token is a field, not an operator.
		{"_eq", "_eq", filter.OpEQ},
	}
	for _, tt := range tests {
		field, op := filter.ParseKey(tt.key)
		assert.Equal(t, tt.field, field, tt.key)
		assert.Equal(t, tt.op, op, tt.key)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	c, ok := filter.Parse("age_between", "18,30")
	assert.True(t, ok)
	assert.Equal(t, "age", c.Field)
	assert.Equal(t, filter.OpBetween, c.Op)
	assert.Equal(t, []any{"18", "30"}, c.Values)

	c, ok = filter.Parse("status_in", []any{"active", nil, ""})
	assert.True(t, ok)
	assert.Equal(t, []any{"active"}, c.Values)

	_, ok = filter.Parse("age_between", "18")
	assert.False(t, ok, "between needs two bounds")

	_, ok = filter.Parse("id_in", "")
	assert.False(t, ok, "an empty list satisfies no membership test")

	c, ok = filter.Parse("deleted_at_null", nil)
	assert.True(t, ok)
	assert.Equal(t, filter.OpIsNull, c.Op)
	assert.Nil(t, c.Value)
}

func TestOpProperties(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "eq", filter.OpEQ.Token())
	assert.Equal(t, "nnull", filter.OpNotNull.String())
	assert.Equal(t, "", filter.Op(100).Token())

	assert.True(t, filter.OpLTE.Comparison())
	assert.False(t, filter.OpLike.Comparison())

	assert.True(t, filter.OpIn.List())
	assert.True(t, filter.OpBetween.List())
	assert.False(t, filter.OpEQ.List())

	assert.True(t, filter.OpIsNull.Nullary())
	assert.True(t, filter.OpNotNull.Nullary())
	assert.False(t, filter.OpIn.Nullary())
}
