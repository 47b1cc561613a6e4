package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabulagen/tabula"
	"github.com/tabulagen/tabula/schema"
)

func TestTypeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "string", schema.TypeString.String())
	assert.Equal(t, "uuid", schema.TypeUUID.String())
	assert.Equal(t, "invalid", schema.TypeInvalid.String())
	assert.Equal(t, "invalid", schema.Type(200).String())

	assert.True(t, schema.TypeEnum.Valid())
	assert.False(t, schema.TypeInvalid.Valid())
	assert.True(t, schema.TypeInt.Numeric())
	assert.True(t, schema.TypeFloat.Numeric())
	assert.False(t, schema.TypeString.Numeric())
}

func TestTypeTextRoundTrip(t *testing.T) {
	t.Parallel()

	b, err := schema.TypeTime.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "time", string(b))

	var typ schema.Type
	require.NoError(t, typ.UnmarshalText([]byte("enum")))
	assert.Equal(t, schema.TypeEnum, typ)

	require.NoError(t, typ.UnmarshalText([]byte("bogus")))
	assert.Equal(t, schema.TypeInvalid, typ)
}

func TestBuilder(t *testing.T) {
	t.Parallel()

	c := schema.String("email").MaxLen(255).Unique().Filterable().Column()
	assert.Equal(t, "email", c.Name)
	assert.Equal(t, schema.TypeString, c.Type)
	require.NotNil(t, c.MaxLen)
	assert.Equal(t, 255, *c.MaxLen)
	assert.True(t, c.Unique)
	assert.True(t, c.Filterable)
	assert.False(t, c.Nullable)

	c = schema.Int("age").Range(0, 150).Nullable().Column()
	require.NotNil(t, c.Min)
	require.NotNil(t, c.Max)
	assert.Equal(t, 0.0, *c.Min)
	assert.Equal(t, 150.0, *c.Max)
	assert.True(t, c.Nullable)

	c = schema.Enum("status", "active", "archived").Filterable().Column()
	assert.Equal(t, schema.TypeEnum, c.Type)
	assert.Equal(t, []string{"active", "archived"}, c.Enums)

	assert.Equal(t, schema.TypeUUID, schema.UUID("id").Column().Type)
	assert.Equal(t, schema.TypeJSON, schema.JSON("meta").Column().Type)
	assert.Equal(t, schema.TypeBool, schema.Bool("ok").Column().Type)
	assert.Equal(t, schema.TypeTime, schema.Time("created_at").Column().Type)
	assert.Equal(t, schema.TypeFloat, schema.Float("price").Column().Type)
}

func testTable() *schema.Table {
	return schema.New("public", "orders",
		schema.UUID("id").PrimaryKey().Column(),
		schema.Enum("status", "pending", "shipped").Filterable().Column(),
		schema.Int("age").Filterable().Column(),
		schema.String("name").MaxLen(120).Filterable().Unique().Column(),
		schema.Time("created_at").Column(),
	).WithTimestamps()
}

func TestNew(t *testing.T) {
	t.Parallel()

	tbl := testTable()
	assert.Equal(t, "public.orders", tbl.Key())
	assert.Equal(t, "id", tbl.PrimaryKey)
	assert.Equal(t, []string{"name"}, tbl.UniqueColumns)
	assert.True(t, tbl.HasTimestamps)
	assert.False(t, tbl.HasSoftDelete)
	assert.Equal(t, []string{"status", "age", "name"}, tbl.FilterableColumns())

	require.NotNil(t, tbl.Column("status"))
	assert.Nil(t, tbl.Column("missing"))
}

func TestTableValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, testTable().Validate())

	bad := schema.New("public", "drop", schema.Int("a").Column())
	err := bad.Validate()
	require.Error(t, err)
	assert.True(t, tabula.IsInvalidIdentifier(err))

	bad = schema.New("public", "t", schema.Int("a;b").Column())
	require.Error(t, bad.Validate())

	bad = schema.New("public", "t")
	require.Error(t, bad.Validate())

	dup := schema.New("public", "t", schema.Int("a").Column(), schema.String("a").Column())
	err = dup.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")

	invalidType := schema.New("public", "t", schema.Column{Name: "a"})
	require.Error(t, invalidType.Validate())
}

func TestCanonicalStable(t *testing.T) {
	t.Parallel()

	a, err := testTable().Canonical()
	require.NoError(t, err)
	b, err := testTable().Canonical()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// Unique set order does not affect the serialization.
	t1 := testTable()
	t1.UniqueColumns = []string{"b", "a"}
	t2 := testTable()
	t2.UniqueColumns = []string{"a", "b"}
	c1, err := t1.Canonical()
	require.NoError(t, err)
	c2, err := t2.Canonical()
	require.NoError(t, err)
	assert.Equal(t, c1, c2)

	// Flipping filterability changes the serialization.
	t3 := testTable()
	t3.Column("age").Filterable = false
	c3, err := t3.Canonical()
	require.NoError(t, err)
	assert.NotEqual(t, a, c3)
}
