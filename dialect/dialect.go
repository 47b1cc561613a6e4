// Package dialect provides the database-specific pieces of query text:
// identifier quoting, placeholder styles and case-insensitive matching.
//
// The compiler always produces canonical $n-style placeholders; Rebind
// converts a canonical fragment to the style of a concrete dialect.
package dialect

import (
	"strconv"
	"strings"
	"unicode"
)

// Dialect describes one supported database backend.
type Dialect string

// Supported dialects.
const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
)

// Valid reports whether d names a supported dialect.
func (d Dialect) Valid() bool {
	switch d {
	case Postgres, MySQL, SQLite:
		return true
	}
	return false
}

// String returns the dialect name.
func (d Dialect) String() string { return string(d) }

// Quote wraps an already validated identifier in the dialect's quoting
// characters. It never escapes: callers must validate names first.
func (d Dialect) Quote(name string) string {
	switch d {
	case MySQL:
		return "`" + name + "`"
	default:
		return `"` + name + `"`
	}
}

// Placeholder returns the n-th (1-based) placeholder in canonical form.
// The canonical form is $n for all dialects; Rebind maps it to the
// driver's native style.
func (d Dialect) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// Rebind converts a canonical $n-style fragment into the placeholder
// style the dialect's driver expects. Postgres keeps $n; MySQL and
// SQLite use ?. Dollar signs inside single-quoted literals are left
// untouched.
func (d Dialect) Rebind(query string) string {
	if d == Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query))
	inString := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inString = !inString
			b.WriteByte(c)
		case c == '$' && !inString && i+1 < len(query) && unicode.IsDigit(rune(query[i+1])):
			b.WriteByte('?')
			for i+1 < len(query) && unicode.IsDigit(rune(query[i+1])) {
				i++
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Like returns a case-insensitive LIKE condition for the quoted column
// and the given placeholder. Postgres has ILIKE; the others lower both
// sides.
func (d Dialect) Like(column, placeholder string) string {
	if d == Postgres {
		return column + " ILIKE " + placeholder
	}
	return "LOWER(" + column + ") LIKE LOWER(" + placeholder + ")"
}
