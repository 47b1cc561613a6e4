package gen

import (
	"strings"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und, cases.NoLower)

// TypeName derives the Go type name for a table: singularized and
// camelized, e.g. "order_items" becomes "OrderItem".
func TypeName(table string) string {
	return inflect.Camelize(inflect.Singularize(table))
}

// Receiver returns the conventional receiver letter for a type name.
func Receiver(typeName string) string {
	if typeName == "" {
		return "x"
	}
	return strings.ToLower(typeName[:1])
}

// ExportedName camelizes a snake_case column name into an exported Go
// identifier, keeping common initialisms readable ("id" -> "ID").
func ExportedName(column string) string {
	parts := strings.Split(column, "_")
	for i, p := range parts {
		switch strings.ToLower(p) {
		case "id":
			parts[i] = "ID"
		case "uuid":
			parts[i] = "UUID"
		case "url":
			parts[i] = "URL"
		case "sql":
			parts[i] = "SQL"
		case "json":
			parts[i] = "JSON"
		case "":
			// collapse doubled underscores
		default:
			parts[i] = titleCaser.String(strings.ToLower(p))
		}
	}
	return strings.Join(parts, "")
}

// PackageName lowers a table name into a Go package name, e.g.
// "OrderItems" becomes "orderitems".
func PackageName(table string) string {
	return strings.ToLower(strings.ReplaceAll(table, "_", ""))
}
