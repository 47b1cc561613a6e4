package schema

// A Column describes one column of a generation target. Only columns
// marked Filterable may appear as a field in a runtime filter expression;
// the query compiler rejects every other name even when it is
// syntactically valid.
type Column struct {
	Name       string   `json:"name"`
	Type       Type     `json:"type"`
	Nullable   bool     `json:"nullable,omitempty"`
	PrimaryKey bool     `json:"primary_key,omitempty"`
	Unique     bool     `json:"unique,omitempty"`
	Filterable bool     `json:"filterable,omitempty"`
	MaxLen     *int     `json:"max_len,omitempty"`
	Min        *float64 `json:"min,omitempty"`
	Max        *float64 `json:"max,omitempty"`
	Enums      []string `json:"enums,omitempty"`
}

// A Builder declares a column fluently:
//
//	schema.String("email").MaxLen(255).Unique().Filterable()
//	schema.Enum("status", "active", "archived").Filterable()
//
// Column() finalizes the declaration.
type Builder struct {
	col Column
}

// String declares a string-like column.
func String(name string) *Builder {
	return &Builder{col: Column{Name: name, Type: TypeString}}
}

// Int declares an integer-like column.
func Int(name string) *Builder {
	return &Builder{col: Column{Name: name, Type: TypeInt}}
}

// Float declares a decimal-like column.
func Float(name string) *Builder {
	return &Builder{col: Column{Name: name, Type: TypeFloat}}
}

// Bool declares a boolean column.
func Bool(name string) *Builder {
	return &Builder{col: Column{Name: name, Type: TypeBool}}
}

// Time declares a date/time-like column.
func Time(name string) *Builder {
	return &Builder{col: Column{Name: name, Type: TypeTime}}
}

// UUID declares a uuid column.
func UUID(name string) *Builder {
	return &Builder{col: Column{Name: name, Type: TypeUUID}}
}

// JSON declares a json column.
func JSON(name string) *Builder {
	return &Builder{col: Column{Name: name, Type: TypeJSON}}
}

// Enum declares an enum column with its allowed values.
func Enum(name string, values ...string) *Builder {
	return &Builder{col: Column{Name: name, Type: TypeEnum, Enums: values}}
}

// Nullable marks the column as nullable.
func (b *Builder) Nullable() *Builder {
	b.col.Nullable = true
	return b
}

// PrimaryKey marks the column as the primary key.
func (b *Builder) PrimaryKey() *Builder {
	b.col.PrimaryKey = true
	return b
}

// Unique marks the column as unique.
func (b *Builder) Unique() *Builder {
	b.col.Unique = true
	return b
}

// Filterable marks the column as eligible for runtime filter expressions.
func (b *Builder) Filterable() *Builder {
	b.col.Filterable = true
	return b
}

// MaxLen sets the maximum length for string-like columns.
func (b *Builder) MaxLen(n int) *Builder {
	b.col.MaxLen = &n
	return b
}

// Range sets the numeric min/max bounds.
func (b *Builder) Range(min, max float64) *Builder {
	b.col.Min = &min
	b.col.Max = &max
	return b
}

// Min sets the numeric lower bound.
func (b *Builder) Min(v float64) *Builder {
	b.col.Min = &v
	return b
}

// Max sets the numeric upper bound.
func (b *Builder) Max(v float64) *Builder {
	b.col.Max = &v
	return b
}

// Column finalizes the declaration.
func (b *Builder) Column() Column { return b.col }
