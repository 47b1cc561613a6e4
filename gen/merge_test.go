package gen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tabulagen/tabula/gen"
)

const freshQueries = `package store

const OrderSelect = "SELECT * FROM orders"

// @preserve:begin order-custom-queries
// Hand-written queries go here.
// @preserve:end order-custom-queries
`

func TestMergeFirstGeneration(t *testing.T) {
	t.Parallel()
	out := gen.Merge(freshQueries, nil)
	assert.Equal(t, freshQueries, out, "no existing file means fresh output verbatim")
}

func TestMergeIsIdempotent(t *testing.T) {
	t.Parallel()
	once := gen.Merge(freshQueries, nil)
	twice := gen.Merge(freshQueries, []byte(once))
	assert.Equal(t, once, twice)
}

func TestMergePreservesEditedBlock(t *testing.T) {
	t.Parallel()
	edited := `package store

const OrderSelect = "SELECT * FROM orders"

// @preserve:begin order-custom-queries
const OrderByStatus = "SELECT * FROM orders WHERE status = $1"
// @preserve:end order-custom-queries
`
	regenerated := `package store

const OrderSelect = "SELECT id, status FROM orders"

// @preserve:begin order-custom-queries
// Hand-written queries go here.
// @preserve:end order-custom-queries
`
	out := gen.Merge(regenerated, []byte(edited))
	assert.Contains(t, out, `const OrderSelect = "SELECT id, status FROM orders"`,
		"generated text outside blocks must come from the fresh output")
	assert.Contains(t, out, "const OrderByStatus =", "edited block body must survive")
	assert.NotContains(t, out, "Hand-written queries go here")
}

func TestMergeMultipleBlocks(t *testing.T) {
	t.Parallel()
	existing := `-- @preserve:begin header
-- custom header
-- @preserve:end header
CREATE TABLE t ();
-- @preserve:begin footer
-- custom footer
-- @preserve:end footer
`
	fresh := `-- @preserve:begin header
-- default header
-- @preserve:end header
CREATE TABLE t (id int);
-- @preserve:begin footer
-- default footer
-- @preserve:end footer
`
	out := gen.Merge(fresh, []byte(existing))
	assert.Contains(t, out, "-- custom header")
	assert.Contains(t, out, "-- custom footer")
	assert.Contains(t, out, "CREATE TABLE t (id int);")
}

func TestMergeDiscardsOrphanedBlock(t *testing.T) {
	t.Parallel()
	existing := `// @preserve:begin gone
// this block no longer exists in the template
// @preserve:end gone
`
	fresh := "package store\n"
	out := gen.Merge(fresh, []byte(existing))
	assert.Equal(t, "package store\n", out)
}

func TestMergeNewBlockKeepsFreshBody(t *testing.T) {
	t.Parallel()
	existing := "package store\n"
	fresh := `package store

// @preserve:begin brand-new
// seeded content
// @preserve:end brand-new
`
	out := gen.Merge(fresh, []byte(existing))
	assert.Contains(t, out, "// seeded content")
}

func TestMergeIgnoresUnterminatedBlock(t *testing.T) {
	t.Parallel()
	existing := `// @preserve:begin broken
// never closed
`
	fresh := `// @preserve:begin broken
// default
// @preserve:end broken
`
	out := gen.Merge(fresh, []byte(existing))
	assert.Contains(t, out, "// default", "unterminated existing block contributes nothing")
}

func TestMergeBlocksReportsOrphans(t *testing.T) {
	t.Parallel()
	existing := `// @preserve:begin kept
// mine
// @preserve:end kept
// @preserve:begin gone
// lost
// @preserve:end gone
`
	fresh := `// @preserve:begin kept
// default
// @preserve:end kept
`
	out, orphaned := gen.MergeBlocks(fresh, []byte(existing))
	assert.Contains(t, out, "// mine")
	assert.Equal(t, []string{"gone"}, orphaned)
}

func TestMergeNormalizesOutput(t *testing.T) {
	t.Parallel()
	fresh := "package store\r\nconst A = 1\r\n\n\n"
	out := gen.Merge(fresh, nil)
	assert.False(t, strings.Contains(out, "\r"))
	assert.True(t, strings.HasSuffix(out, "const A = 1\n"))
}
