// Package schema defines the table and column metadata that drives
// generation: the identity of a generation target, its columns with their
// fixed type vocabulary, and a fluent builder for declaring columns
// literally in code.
package schema

// A Type represents a column's data type, drawn from a fixed vocabulary.
type Type uint8

// Column data types.
const (
	TypeInvalid Type = iota
	TypeString
	TypeInt
	TypeFloat
	TypeBool
	TypeTime
	TypeUUID
	TypeJSON
	TypeEnum
	endTypes
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeString:  "string",
	TypeInt:     "int",
	TypeFloat:   "float",
	TypeBool:    "bool",
	TypeTime:    "time",
	TypeUUID:    "uuid",
	TypeJSON:    "json",
	TypeEnum:    "enum",
}

// String returns the type name.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Valid reports whether t is a declared type.
func (t Type) Valid() bool { return t > TypeInvalid && t < endTypes }

// Numeric reports whether t is an integer or decimal type.
func (t Type) Numeric() bool { return t == TypeInt || t == TypeFloat }

// MarshalText implements encoding.TextMarshaler so types serialize as
// their names in the checksum store.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	for i := range typeNames {
		if typeNames[i] == string(b) {
			*t = Type(i)
			return nil
		}
	}
	*t = TypeInvalid
	return nil
}
