package tabula

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for the generator core.
var (
	// ErrInvalidIdentifier is returned when a table, schema or column name
	// fails whitelist, pattern or reserved-word checks.
	ErrInvalidIdentifier = errors.New("tabula: invalid identifier")

	// ErrSchemaDrift is returned when the stored checksum for a table no
	// longer matches its freshly computed checksum and the caller did not
	// request a forced regeneration.
	ErrSchemaDrift = errors.New("tabula: schema drift detected")

	// ErrMalformedFilterValue is returned (in strict compile mode only)
	// when a filter value cannot be coerced into the shape its operator
	// requires. The default compile mode drops such conditions silently.
	ErrMalformedFilterValue = errors.New("tabula: malformed filter value")
)

// InvalidIdentifierError reports an identifier that is not safe to embed
// in SQL text. It carries the offending name and the context in which it
// was used (e.g. "filter column", "sort column", "table").
type InvalidIdentifierError struct {
	Name    string // offending identifier, after trimming
	Context string // where the identifier was used
	Reason  string // why it was rejected
}

// Error returns the error string.
func (e *InvalidIdentifierError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("tabula: invalid identifier %q for %s: %s", e.Name, e.Context, e.Reason)
	}
	return fmt.Sprintf("tabula: invalid identifier %q: %s", e.Name, e.Reason)
}

// Is reports whether the target matches the sentinel for InvalidIdentifierError.
func (e *InvalidIdentifierError) Is(target error) bool {
	return target == ErrInvalidIdentifier
}

// NewInvalidIdentifierError returns a new InvalidIdentifierError.
func NewInvalidIdentifierError(name, context, reason string) *InvalidIdentifierError {
	return &InvalidIdentifierError{Name: name, Context: context, Reason: reason}
}

// IsInvalidIdentifier reports whether the error is an InvalidIdentifierError.
func IsInvalidIdentifier(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidIdentifierError
	return errors.As(err, &e) || errors.Is(err, ErrInvalidIdentifier)
}

// SchemaDriftError reports that table metadata changed since the last
// generation run. It is fatal to the whole generation request and is
// raised before any file is written.
type SchemaDriftError struct {
	Key      string // "schema.table" store key
	Stored   string // checksum recorded by the previous run
	Computed string // checksum of the current metadata
}

// Error returns the error string.
func (e *SchemaDriftError) Error() string {
	return fmt.Sprintf("tabula: schema drift detected for %s (stored %s, computed %s): rerun with force to accept",
		e.Key, ShortChecksum(e.Stored), ShortChecksum(e.Computed))
}

// Is reports whether the target matches the sentinel for SchemaDriftError.
func (e *SchemaDriftError) Is(target error) bool {
	return target == ErrSchemaDrift
}

// NewSchemaDriftError returns a new SchemaDriftError.
func NewSchemaDriftError(key, stored, computed string) *SchemaDriftError {
	return &SchemaDriftError{Key: key, Stored: stored, Computed: computed}
}

// IsSchemaDrift reports whether the error is a SchemaDriftError.
func IsSchemaDrift(err error) bool {
	if err == nil {
		return false
	}
	var e *SchemaDriftError
	return errors.As(err, &e) || errors.Is(err, ErrSchemaDrift)
}

// MalformedFilterValueError reports a filter value that does not fit its
// operator (e.g. a between with a single bound). It surfaces only when the
// compiler runs in strict mode; the lenient default drops the condition.
type MalformedFilterValueError struct {
	Field string // validated column name
	Op    string // operator token
	Value any    // value as received
}

// Error returns the error string.
func (e *MalformedFilterValueError) Error() string {
	return fmt.Sprintf("tabula: malformed value for filter %s_%s: %v", e.Field, e.Op, e.Value)
}

// Is reports whether the target matches the sentinel for MalformedFilterValueError.
func (e *MalformedFilterValueError) Is(target error) bool {
	return target == ErrMalformedFilterValue
}

// NewMalformedFilterValueError returns a new MalformedFilterValueError.
func NewMalformedFilterValueError(field, op string, value any) *MalformedFilterValueError {
	return &MalformedFilterValueError{Field: field, Op: op, Value: value}
}

// IsMalformedFilterValue reports whether the error is a MalformedFilterValueError.
func IsMalformedFilterValue(err error) bool {
	if err == nil {
		return false
	}
	var e *MalformedFilterValueError
	return errors.As(err, &e) || errors.Is(err, ErrMalformedFilterValue)
}

// ShortChecksum truncates a checksum to a 12-character prefix for error
// messages and log output.
func ShortChecksum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}
