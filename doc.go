// Package tabula is a metadata-driven source generator for relational
// tables. It compiles open-ended filter maps into parameterized SQL
// fragments, validates every identifier that must be embedded in query
// text, and regenerates output files without destroying developer-edited
// regions.
//
// The library is organized leaf-first:
//
//   - ident: pure identifier/security validation.
//   - filter: the filter-to-SQL query compiler.
//   - dialect: identifier quoting and placeholder styles.
//   - schema: table/column metadata and the column builder DSL.
//   - introspect: catalog-query metadata source with a msgpack cache.
//   - gen: checksum tracking, preservation merge, and the orchestrator.
//   - config: YAML configuration with environment overrides.
//
// The cmd/tabula command wires the pieces into a small CLI.
package tabula
