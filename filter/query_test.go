package filter_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabulagen/tabula/filter"
)

func TestQuerySetGet(t *testing.T) {
	t.Parallel()

	q := filter.NewQuery()
	q.Set("a", 1).Set("b", 2).Set("a", 3)

	assert.Equal(t, []string{"a", "b"}, q.Keys())
	assert.Equal(t, 2, q.Len())

	v, ok := q.Get("a")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = q.Get("missing")
	assert.False(t, ok)
}

func TestQueryZeroValue(t *testing.T) {
	t.Parallel()

	var q filter.Query
	q.Set("x", "y")
	v, ok := q.Get("x")
	require.True(t, ok)
	assert.Equal(t, "y", v)
}

func TestQueryUnmarshalPreservesOrder(t *testing.T) {
	t.Parallel()

	var q filter.Query
	raw := `{"status_eq":"active","age_between":[18,30],"sort":"name:DESC","limit":10,"page":2}`
	require.NoError(t, json.Unmarshal([]byte(raw), &q))

	assert.Equal(t, []string{"status_eq", "age_between", "sort", "limit", "page"}, q.Keys())

	v, _ := q.Get("age_between")
	assert.Equal(t, []any{float64(18), float64(30)}, v)

	v, _ = q.Get("limit")
	assert.Equal(t, float64(10), v)
}

func TestQueryUnmarshalRejectsNonObject(t *testing.T) {
	t.Parallel()

	var q filter.Query
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &q))
	assert.Error(t, json.Unmarshal([]byte(`"x"`), &q))
}

func TestQueryMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	q := filter.NewQuery()
	q.Set("b", "2").Set("a", "1")
	out, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Equal(t, `{"b":"2","a":"1"}`, string(out))

	var back filter.Query
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, []string{"b", "a"}, back.Keys())
}

func TestIsReservedKey(t *testing.T) {
	t.Parallel()

	for _, k := range []string{"page", "limit", "sort", "order", "offset"} {
		assert.True(t, filter.IsReservedKey(k), k)
	}
	assert.False(t, filter.IsReservedKey("status_eq"))
	assert.False(t, filter.IsReservedKey("Page"))
}
