package gen

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/tabulagen/tabula/schema"
)

// buildColumns renders the <table>_columns.go artifact: table and
// column name constants plus the column-list vars the store file
// wires into the filter compiler. The file carries no preserved
// blocks; it is regenerated whole.
func (b *Builder) buildColumns(t *schema.Table) (Artifact, error) {
	typ := TypeName(t.Name)
	f := jen.NewFile(b.pkg)
	f.HeaderComment("Code generated by tabula; DO NOT EDIT.")

	f.Comment("Catalog names for " + t.Key() + ".")
	f.Const().Defs(
		jen.Id(typ+"Table").Op("=").Lit(t.Name),
		jen.Id(typ+"Schema").Op("=").Lit(t.Schema),
	)

	f.Comment("Column names of " + t.Name + ".")
	colConsts := make([]jen.Code, 0, len(t.Columns))
	for _, c := range t.Columns {
		colConsts = append(colConsts, jen.Id(typ+"Column"+ExportedName(c.Name)).Op("=").Lit(c.Name))
	}
	f.Const().Defs(colConsts...)

	all := make([]jen.Code, 0, len(t.Columns))
	for _, c := range t.Columns {
		all = append(all, jen.Id(typ+"Column"+ExportedName(c.Name)))
	}
	f.Commentf("%sColumns lists every column of %s in declaration order.", typ, t.Name)
	f.Var().Id(typ + "Columns").Op("=").Index().String().Values(all...)

	filterable := make([]jen.Code, 0, len(t.Columns))
	for _, name := range t.FilterableColumns() {
		filterable = append(filterable, jen.Id(typ+"Column"+ExportedName(name)))
	}
	f.Commentf("%sFilterableColumns is the whitelist handed to the filter compiler.", typ)
	f.Var().Id(typ + "FilterableColumns").Op("=").Index().String().Values(filterable...)

	var sb strings.Builder
	if err := f.Render(&sb); err != nil {
		return Artifact{}, NewGenerationError("build", strings.ToLower(t.Name)+"_columns.go", "render columns file", err)
	}
	return Artifact{
		Name:    strings.ToLower(t.Name) + "_columns.go",
		Content: sb.String(),
		Go:      true,
	}, nil
}
