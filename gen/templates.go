package gen

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/tabulagen/tabula/dialect"
	"github.com/tabulagen/tabula/schema"
)

// An Artifact is one candidate output file: its name relative to the
// output directory and its freshly generated content, before merging
// with whatever is on disk.
type Artifact struct {
	Name    string
	Content string
	Go      bool // run gofmt on the merged result
}

// A Builder produces the per-table artifacts: base queries, the
// data-access layer, the value validator and the column constants.
type Builder struct {
	pkg     string
	dialect dialect.Dialect
	modpath string
}

// NewBuilder returns a Builder emitting files for the given output
// package and dialect.
func NewBuilder(pkg string, d dialect.Dialect) *Builder {
	return &Builder{pkg: pkg, dialect: d, modpath: "github.com/tabulagen/tabula"}
}

// Build renders all artifacts for a table. The table must already be
// validated; Build quotes identifiers without re-checking them.
func (b *Builder) Build(t *schema.Table) ([]Artifact, error) {
	ctx := b.newContext(t)
	arts := make([]Artifact, 0, 4)
	for _, spec := range []struct {
		suffix string
		tmpl   *template.Template
	}{
		{"_queries.go", queriesTmpl},
		{"_store.go", storeTmpl},
		{"_validate.go", validateTmpl},
	} {
		var sb strings.Builder
		if err := spec.tmpl.Execute(&sb, ctx); err != nil {
			return nil, NewGenerationError("build", strings.ToLower(t.Name)+spec.suffix, "execute template", err)
		}
		arts = append(arts, Artifact{
			Name:    strings.ToLower(t.Name) + spec.suffix,
			Content: sb.String(),
			Go:      true,
		})
	}
	cols, err := b.buildColumns(t)
	if err != nil {
		return nil, err
	}
	arts = append(arts, cols)
	return arts, nil
}

// fileContext is the data handed to the artifact templates.
type fileContext struct {
	Package   string
	ModPath   string
	Dialect   string
	Table     *schema.Table
	Type      string // Go type name, e.g. "Order"
	Lower     string // lower-cased type name for private identifiers
	QualName  string // quoted "schema"."table"
	SelectAll string // Go literals, raw or quoted depending on dialect
	Count     string
	SelectPK  string
	Insert    string
	UpdatePK  string
	DeletePK  string
	Checks    []string // per-column validation code, one line each
	HasUUID   bool
	HasRange  bool
}

func (b *Builder) newContext(t *schema.Table) *fileContext {
	typ := TypeName(t.Name)
	ctx := &fileContext{
		Package:  b.pkg,
		ModPath:  b.modpath,
		Dialect:  b.dialect.String(),
		Table:    t,
		Type:     typ,
		Lower:    strings.ToLower(typ),
		QualName: b.dialect.Quote(t.Schema) + "." + b.dialect.Quote(t.Name),
	}
	for _, c := range t.Columns {
		if c.Type == schema.TypeUUID {
			ctx.HasUUID = true
		}
		if c.Type.Numeric() && (c.Min != nil || c.Max != nil) {
			ctx.HasRange = true
		}
	}
	ctx.Checks = b.columnChecks(t, ctx.Lower)
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = b.dialect.Quote(c.Name)
	}
	selectAll := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), ctx.QualName)
	ctx.SelectAll = goLit(selectAll)
	ctx.Count = goLit("SELECT COUNT(*) FROM " + ctx.QualName)
	if t.PrimaryKey != "" {
		pk := b.dialect.Quote(t.PrimaryKey)
		ctx.SelectPK = goLit(fmt.Sprintf("%s WHERE %s = $1", selectAll, pk))
		ctx.DeletePK = goLit(fmt.Sprintf("DELETE FROM %s WHERE %s = $1", ctx.QualName, pk))

		var ins, ph, set []string
		n := 0
		for _, c := range t.Columns {
			if c.Name == t.PrimaryKey {
				continue
			}
			n++
			ins = append(ins, b.dialect.Quote(c.Name))
			ph = append(ph, b.dialect.Placeholder(n))
			set = append(set, fmt.Sprintf("%s = %s", b.dialect.Quote(c.Name), b.dialect.Placeholder(n)))
		}
		ctx.Insert = goLit(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", ctx.QualName, strings.Join(ins, ", "), strings.Join(ph, ", ")))
		ctx.UpdatePK = goLit(fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
			ctx.QualName, strings.Join(set, ", "), pk, b.dialect.Placeholder(n+1)))
	}
	return ctx
}

// goLit renders a SQL string as a Go literal: raw when possible so the
// query reads cleanly, quoted when the text itself carries backticks
// (MySQL identifier quoting).
func goLit(s string) string {
	if strings.ContainsRune(s, '`') {
		return strconv.Quote(s)
	}
	return "`" + s + "`"
}

// columnChecks renders the per-column body of the generated validator.
func (b *Builder) columnChecks(t *schema.Table, lower string) []string {
	var out []string
	add := func(format string, args ...any) { out = append(out, fmt.Sprintf(format, args...)) }
	for _, c := range t.Columns {
		if !c.Nullable {
			add("if v, ok := values[%q]; ok && v == nil {", c.Name)
			add("\treturn fmt.Errorf(\"%s: must not be null\")", c.Name)
			add("}")
		}
		checks := b.valueChecks(c, lower)
		if len(checks) == 0 {
			continue
		}
		add("if v, ok := values[%q]; ok && v != nil {", c.Name)
		// already-rendered lines: append verbatim so their fmt verbs
		// survive into the generated source
		for _, line := range checks {
			out = append(out, "\t"+line)
		}
		add("}")
	}
	return out
}

// valueChecks renders the non-null constraint checks for one column.
func (b *Builder) valueChecks(c schema.Column, lower string) []string {
	var out []string
	add := func(format string, args ...any) { out = append(out, fmt.Sprintf(format, args...)) }
	switch c.Type {
	case schema.TypeString, schema.TypeEnum:
		if c.MaxLen == nil && len(c.Enums) == 0 {
			return nil
		}
		add("s, ok := v.(string)")
		add("if !ok {")
		add("\treturn fmt.Errorf(\"%s: expected a string, got %%T\", v)", c.Name)
		add("}")
		if c.MaxLen != nil {
			add("if len(s) > %d {", *c.MaxLen)
			add("\treturn fmt.Errorf(\"%s: longer than %d characters\")", c.Name, *c.MaxLen)
			add("}")
		}
		if len(c.Enums) > 0 {
			quoted := make([]string, len(c.Enums))
			for i, e := range c.Enums {
				quoted[i] = fmt.Sprintf("%q", e)
			}
			add("switch s {")
			add("case %s:", strings.Join(quoted, ", "))
			add("default:")
			add("\treturn fmt.Errorf(\"%s: %%q is not an allowed value\", s)", c.Name)
			add("}")
		}
	case schema.TypeUUID:
		add("if s, ok := v.(string); ok {")
		add("\tif _, err := ident.ValidateUUID(s); err != nil {")
		add("\t\treturn fmt.Errorf(\"%s: %%w\", err)", c.Name)
		add("\t}")
		add("}")
	case schema.TypeInt, schema.TypeFloat:
		if c.Min == nil && c.Max == nil {
			return nil
		}
		add("if n, ok := %sFloat(v); ok {", lower)
		if c.Min != nil {
			add("\tif n < %v {", *c.Min)
			add("\t\treturn fmt.Errorf(\"%s: below minimum %v\")", c.Name, *c.Min)
			add("\t}")
		}
		if c.Max != nil {
			add("\tif n > %v {", *c.Max)
			add("\t\treturn fmt.Errorf(\"%s: above maximum %v\")", c.Name, *c.Max)
			add("\t}")
		}
		add("}")
	}
	return out
}

var queriesTmpl = template.Must(template.New("queries").Parse(`// Code generated by tabula; preserved blocks are yours to edit.

package {{.Package}}

// Base queries for {{.Table.Key}}. The list queries are extended at
// runtime by the filter compiler; identifiers below were validated at
// generation time.
const (
	{{.Type}}Select = {{.SelectAll}}
	{{.Type}}Count  = {{.Count}}
{{- if .Table.PrimaryKey}}
	{{.Type}}SelectByID = {{.SelectPK}}
	{{.Type}}Insert     = {{.Insert}}
	{{.Type}}UpdateByID = {{.UpdatePK}}
	{{.Type}}DeleteByID = {{.DeletePK}}
{{- end}}
)

// @preserve:begin {{.Lower}}-custom-queries
// Hand-written queries for {{.Table.Name}} go here.
// @preserve:end {{.Lower}}-custom-queries
`))

var storeTmpl = template.Must(template.New("store").Parse(`// Code generated by tabula; preserved blocks are yours to edit.

package {{.Package}}

import (
	"context"
	"database/sql"

	"{{.ModPath}}/dialect"
	"{{.ModPath}}/filter"
)

// {{.Lower}}Dialect is the dialect the queries in this file were
// generated for.
var {{.Lower}}Dialect = dialect.{{if eq .Dialect "postgres"}}Postgres{{else if eq .Dialect "mysql"}}MySQL{{else}}SQLite{{end}}

// {{.Lower}}Compiler compiles runtime filter maps against the
// filterable columns of {{.Table.Key}}.
var {{.Lower}}Compiler = filter.NewCompiler({{.Type}}FilterableColumns, filter.WithDialect({{.Lower}}Dialect))

// {{.Type}}Store is the data-access layer for {{.Table.Key}}.
type {{.Type}}Store struct {
	db *sql.DB
}

// New{{.Type}}Store returns a store backed by db.
func New{{.Type}}Store(db *sql.DB) *{{.Type}}Store {
	return &{{.Type}}Store{db: db}
}

// List runs the base select extended with the given filter map.
func (s *{{.Type}}Store) List(ctx context.Context, f *filter.Query) (*sql.Rows, error) {
	cq, err := {{.Lower}}Compiler.Compile({{.Type}}Select, f)
	if err != nil {
		return nil, err
	}
	return s.db.QueryContext(ctx, {{.Lower}}Dialect.Rebind(cq.Text), cq.Values...)
}

// Count runs the base count query extended with the given filter map.
func (s *{{.Type}}Store) Count(ctx context.Context, f *filter.Query) (int64, error) {
	cq, err := {{.Lower}}Compiler.Compile({{.Type}}Count, f)
	if err != nil {
		return 0, err
	}
	var n int64
	err = s.db.QueryRowContext(ctx, {{.Lower}}Dialect.Rebind(cq.Text), cq.Values...).Scan(&n)
	return n, err
}
{{- if .Table.PrimaryKey}}

// Get fetches one row by primary key.
func (s *{{.Type}}Store) Get(ctx context.Context, id any) *sql.Row {
	return s.db.QueryRowContext(ctx, {{.Lower}}Dialect.Rebind({{.Type}}SelectByID), id)
}

// Delete removes one row by primary key.
func (s *{{.Type}}Store) Delete(ctx context.Context, id any) (sql.Result, error) {
	return s.db.ExecContext(ctx, {{.Lower}}Dialect.Rebind({{.Type}}DeleteByID), id)
}
{{- end}}

// @preserve:begin {{.Lower}}-custom-store
// Hand-written data-access methods for {{.Table.Name}} go here.
// @preserve:end {{.Lower}}-custom-store
`))

var validateTmpl = template.Must(template.New("validate").Parse(`// Code generated by tabula; preserved blocks are yours to edit.

package {{.Package}}

import (
	"fmt"
{{- if .HasUUID}}

	"{{.ModPath}}/ident"
{{- end}}
)

// Validate{{.Type}} checks a column/value map against the declared
// constraints of {{.Table.Key}}. Absent keys are not errors; partial
// updates validate only what they carry.
func Validate{{.Type}}(values map[string]any) error {
{{- range .Checks}}
	{{.}}
{{- end}}
	// @preserve:begin {{.Lower}}-custom-validation
	// Hand-written validation rules for {{.Table.Name}} go here.
	// @preserve:end {{.Lower}}-custom-validation
	return nil
}
{{- if .HasRange}}

// {{.Lower}}Float widens any numeric value for range checks.
func {{.Lower}}Float(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
{{- end}}
{{- if not .Checks}}

var _ = fmt.Errorf
{{- end}}
`))
