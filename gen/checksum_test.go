package gen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabulagen/tabula/gen"
	"github.com/tabulagen/tabula/schema"
)

func ordersTable() *schema.Table {
	return schema.New("public", "orders",
		schema.UUID("id").PrimaryKey().Column(),
		schema.Enum("status", "active", "archived").Filterable().Column(),
		schema.Int("age").Range(0, 150).Filterable().Column(),
		schema.String("name").MaxLen(255).Unique().Filterable().Column(),
		schema.Time("created_at").Filterable().Column(),
	)
}

func TestChecksumDeterministic(t *testing.T) {
	t.Parallel()
	a, err := gen.Checksum(ordersTable())
	require.NoError(t, err)
	b, err := gen.Checksum(ordersTable())
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestChecksumTracksColumnChanges(t *testing.T) {
	t.Parallel()
	base, err := gen.Checksum(ordersTable())
	require.NoError(t, err)

	flipped := ordersTable()
	flipped.Column("age").Filterable = false
	sum, err := gen.Checksum(flipped)
	require.NoError(t, err)
	assert.NotEqual(t, base, sum, "filterability change must change the checksum")

	retyped := ordersTable()
	retyped.Column("age").Type = schema.TypeFloat
	sum, err = gen.Checksum(retyped)
	require.NoError(t, err)
	assert.NotEqual(t, base, sum, "type change must change the checksum")

	renamed := ordersTable()
	renamed.Name = "order_records"
	sum, err = gen.Checksum(renamed)
	require.NoError(t, err)
	assert.NotEqual(t, base, sum)
}

func TestChecksumIgnoresUniqueColumnOrder(t *testing.T) {
	t.Parallel()
	a := ordersTable()
	a.UniqueColumns = []string{"name", "id"}
	b := ordersTable()
	b.UniqueColumns = []string{"id", "name"}

	sumA, err := gen.Checksum(a)
	require.NoError(t, err)
	sumB, err := gen.Checksum(b)
	require.NoError(t, err)
	assert.Equal(t, sumA, sumB)
}
