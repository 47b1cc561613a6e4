package filter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tabulagen/tabula"
	"github.com/tabulagen/tabula/dialect"
	"github.com/tabulagen/tabula/ident"
)

// A CompiledQuery is the compiler's output: a SQL fragment with
// canonical $n-style positional placeholders and the ordered value list
// bound to them. Every scalar from the filter map appears only in Values;
// only validated identifiers are interpolated into Text.
type CompiledQuery struct {
	Text   string
	Values []any
}

// whereRe detects an existing WHERE clause in the base query text.
var whereRe = regexp.MustCompile(`(?i)\bWHERE\b`)

// A Compiler turns filter maps into SQL fragments for one table. It is
// immutable after construction and safe for concurrent use.
type Compiler struct {
	columns []string
	dialect dialect.Dialect
	strict  bool
}

// An Option configures a Compiler.
type Option func(*Compiler)

// WithDialect sets the target dialect. The default is Postgres.
func WithDialect(d dialect.Dialect) Option {
	return func(c *Compiler) { c.dialect = d }
}

// Strict makes the compiler raise MalformedFilterValueError for filter
// values that do not fit their operator, instead of silently dropping the
// condition.
func Strict() Option {
	return func(c *Compiler) { c.strict = true }
}

// NewCompiler returns a compiler whose filterable-column whitelist is
// columns. The list is always a whitelist: a table with no filterable
// columns yields a compiler that rejects every filter and sort column.
func NewCompiler(columns []string, opts ...Option) *Compiler {
	if columns == nil {
		columns = []string{}
	}
	c := &Compiler{columns: columns, dialect: dialect.Postgres}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile is a convenience wrapper for a one-off lenient compilation.
func Compile(base string, q *Query, columns []string) (*CompiledQuery, error) {
	return NewCompiler(columns).Compile(base, q)
}

// Compile appends WHERE/ORDER BY/LIMIT/OFFSET clauses derived from q to
// the base query text. Filter map entries are processed in insertion
// order; entries with nil or empty-string values and reserved control
// keys are skipped. Column names are validated against the whitelist
// before use and an invalid name fails the whole compilation. Malformed
// values drop their condition unless the compiler is strict.
func (c *Compiler) Compile(base string, q *Query) (*CompiledQuery, error) {
	cq := &CompiledQuery{Text: base}
	var conds []string
	for _, key := range q.Keys() {
		raw, _ := q.Get(key)
		if raw == nil || raw == "" {
			continue
		}
		if IsReservedKey(key) {
			continue
		}
		field, op := ParseKey(key)
		validated, err := ident.Validate(field, c.columns, "filter column")
		if err != nil {
			return nil, err
		}
		cond, ok := newCondition(validated, op, raw)
		if !ok {
			if c.strict {
				return nil, tabula.NewMalformedFilterValueError(validated, op.Token(), raw)
			}
			continue
		}
		conds = append(conds, c.render(cond, cq))
	}
	if len(conds) > 0 {
		sep := " WHERE "
		if whereRe.MatchString(base) {
			sep = " AND "
		}
		cq.Text += sep + strings.Join(conds, " AND ")
	}
	if err := c.appendSort(cq, q); err != nil {
		return nil, err
	}
	c.appendPagination(cq, q)
	return cq, nil
}

// render appends the condition's values to cq and returns its SQL text.
func (c *Compiler) render(cond Condition, cq *CompiledQuery) string {
	col := c.dialect.Quote(cond.Field)
	switch {
	case cond.Op.Comparison():
		return col + " " + opSQL[cond.Op] + " " + c.push(cq, cond.Value)
	case cond.Op == OpLike:
		return c.dialect.Like(col, c.push(cq, "%"+toString(cond.Value)+"%"))
	case cond.Op == OpBetween:
		lo := c.push(cq, cond.Values[0])
		hi := c.push(cq, cond.Values[1])
		return col + " BETWEEN " + lo + " AND " + hi
	case cond.Op == OpIn || cond.Op == OpNotIn:
		ps := make([]string, len(cond.Values))
		for i, v := range cond.Values {
			ps[i] = c.push(cq, v)
		}
		kw := " IN ("
		if cond.Op == OpNotIn {
			kw = " NOT IN ("
		}
		return col + kw + strings.Join(ps, ", ") + ")"
	case cond.Op == OpIsNull:
		return col + " IS NULL"
	default: // OpNotNull
		return col + " IS NOT NULL"
	}
}

// push appends v to the value list and returns its placeholder.
func (c *Compiler) push(cq *CompiledQuery, v any) string {
	cq.Values = append(cq.Values, v)
	return c.dialect.Placeholder(len(cq.Values))
}

// appendSort handles the sort/order control keys. The sort value is
// either "<column>" or "<column>:<direction>"; a separate order key
// supplies the direction for the bare form. Direction defaults to ASC on
// anything other than a case-insensitive "desc".
func (c *Compiler) appendSort(cq *CompiledQuery, q *Query) error {
	raw, ok := q.Get(KeySort)
	if !ok || raw == nil || raw == "" {
		return nil
	}
	field := toString(raw)
	dir := ""
	if i := strings.IndexByte(field, ':'); i >= 0 {
		field, dir = field[:i], field[i+1:]
	} else if o, ok := q.Get(KeyOrder); ok && o != nil {
		dir = toString(o)
	}
	validated, err := ident.Validate(field, c.columns, "sort column")
	if err != nil {
		return err
	}
	direction := "ASC"
	if strings.EqualFold(strings.TrimSpace(dir), "desc") {
		direction = "DESC"
	}
	cq.Text += " ORDER BY " + c.dialect.Quote(validated) + " " + direction
	return nil
}

// appendPagination resolves limit/page/offset. An explicit limit always
// wins; page is only meaningful together with limit (no implicit default
// page size is injected at this layer); an explicit offset overrides the
// page-derived one. Unparsable numbers are ignored.
func (c *Compiler) appendPagination(cq *CompiledQuery, q *Query) {
	limit, haveLimit := c.intKey(q, KeyLimit, 1)
	if !haveLimit {
		return
	}
	cq.Text += " LIMIT " + strconv.Itoa(limit)
	offset, haveOffset := c.intKey(q, KeyOffset, 0)
	if !haveOffset {
		if page, havePage := c.intKey(q, KeyPage, 1); havePage {
			offset = (page - 1) * limit
			haveOffset = true
		}
	}
	if haveOffset && offset > 0 {
		cq.Text += " OFFSET " + strconv.Itoa(offset)
	}
}

// intKey reads a control key as an integer with a lower bound.
func (c *Compiler) intKey(q *Query, key string, min int) (int, bool) {
	raw, ok := q.Get(key)
	if !ok || raw == nil || raw == "" {
		return 0, false
	}
	n, ok := toInt(raw)
	if !ok || n < min {
		return 0, false
	}
	return n, true
}
