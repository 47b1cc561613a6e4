package filter_test

import (
	"testing"

	"github.com/tabulagen/tabula/filter"
)

func BenchmarkCompile(b *testing.B) {
	c := filter.NewCompiler([]string{"status", "age", "name", "created_at"})
	q := filter.NewQuery().
		Set("status_eq", "active").
		Set("age_between", "18,30").
		Set("name_like", "smith").
		Set("sort", "name").
		Set("order", "desc").
		Set("limit", 10).
		Set("page", 2)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := c.Compile("SELECT * FROM t", q); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkQueryUnmarshal(b *testing.B) {
	payload := []byte(`{"status_eq":"active","age_gte":18,"age_lte":30,"sort":"name","limit":10}`)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var q filter.Query
		if err := q.UnmarshalJSON(payload); err != nil {
			b.Fatal(err)
		}
	}
}
