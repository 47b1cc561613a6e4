// Package ident validates names that must be embedded directly into SQL
// text (table, schema and column identifiers) and the small set of scalar
// query options (sort direction, pagination bounds, operator tokens) that
// surround them. All functions are pure and safe for concurrent use.
package ident

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tabulagen/tabula"
)

const (
	// MaxLen is the identifier length ceiling shared by the target
	// dialects (postgres truncates at 63 bytes).
	MaxLen = 63

	// MaxLimit is the hard ceiling for page sizes accepted by
	// ValidateLimit.
	MaxLimit = 1000
)

// namePattern matches a bare SQL identifier.
var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reserved holds SQL keywords and operator tokens that are never accepted
// as identifiers, matched case-insensitively against the full name.
var reserved = map[string]struct{}{
	"select": {}, "insert": {}, "update": {}, "delete": {},
	"drop": {}, "create": {}, "alter": {}, "truncate": {},
	"union": {}, "exec": {}, "execute": {},
	"--": {}, "/*": {}, "*/": {}, ";": {},
}

// forbiddenPrefixes are stored-procedure prefixes rejected regardless of
// the rest of the name.
var forbiddenPrefixes = []string{"xp_", "sp_"}

// operators is the fixed whitelist of recognized filter operator tokens.
var operators = map[string]struct{}{
	"eq": {}, "ne": {}, "gt": {}, "gte": {}, "lt": {}, "lte": {},
	"like": {}, "in": {}, "nin": {}, "between": {}, "null": {}, "nnull": {},
}

// Validate checks that name is safe to embed in SQL text and returns the
// trimmed name. If whitelist is non-nil, the trimmed lower-cased name
// must be a member of the whitelist; this path does not fall through to
// pattern checking because whitelist membership is the stronger guarantee,
// and an empty (but non-nil) whitelist therefore rejects every name.
// With a nil whitelist the name must match the identifier pattern, must
// not be a reserved word and must be at most MaxLen characters. context
// is used in error messages only.
func Validate(name string, whitelist []string, context string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", tabula.NewInvalidIdentifierError(name, context, "empty name")
	}
	if whitelist != nil {
		lower := strings.ToLower(trimmed)
		for _, w := range whitelist {
			if lower == strings.ToLower(w) {
				return trimmed, nil
			}
		}
		return "", tabula.NewInvalidIdentifierError(trimmed, context, "not in column whitelist")
	}
	if len(trimmed) > MaxLen {
		return "", tabula.NewInvalidIdentifierError(trimmed, context, "longer than 63 characters")
	}
	if !namePattern.MatchString(trimmed) {
		return "", tabula.NewInvalidIdentifierError(trimmed, context, "must match ^[A-Za-z_][A-Za-z0-9_]*$")
	}
	lower := strings.ToLower(trimmed)
	if _, ok := reserved[lower]; ok {
		return "", tabula.NewInvalidIdentifierError(trimmed, context, "reserved word")
	}
	for _, p := range forbiddenPrefixes {
		if strings.HasPrefix(lower, p) {
			return "", tabula.NewInvalidIdentifierError(trimmed, context, "forbidden prefix "+p)
		}
	}
	return trimmed, nil
}

// ValidateAll validates an ordered list of identifiers (e.g. an ORDER BY
// or GROUP BY column list) and fails on the first invalid entry. The
// reported context carries the offending index.
func ValidateAll(names []string, whitelist []string, context string) ([]string, error) {
	out := make([]string, 0, len(names))
	for i, n := range names {
		v, err := Validate(n, whitelist, context+"["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ValidateSortDirection restricts a sort direction to ASC or DESC
// (case-insensitive) and returns its canonical upper-case form.
func ValidateSortDirection(dir string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(dir)) {
	case "ASC":
		return "ASC", nil
	case "DESC":
		return "DESC", nil
	default:
		return "", tabula.NewInvalidIdentifierError(dir, "sort direction", "must be ASC or DESC")
	}
}

// ValidatePage checks that page is a positive page number.
func ValidatePage(page int) error {
	if page < 1 {
		return tabula.NewInvalidIdentifierError(strconv.Itoa(page), "page", "must be >= 1")
	}
	return nil
}

// ValidateLimit checks that limit is within pagination bounds.
func ValidateLimit(limit int) error {
	if limit < 1 {
		return tabula.NewInvalidIdentifierError(strconv.Itoa(limit), "limit", "must be >= 1")
	}
	if limit > MaxLimit {
		return tabula.NewInvalidIdentifierError(strconv.Itoa(limit), "limit", "must be <= "+strconv.Itoa(MaxLimit))
	}
	return nil
}

// ValidateUUID checks that s is a well-formed UUID and returns its
// canonical form.
func ValidateUUID(s string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", tabula.NewInvalidIdentifierError(s, "uuid", "not a valid UUID")
	}
	return u.String(), nil
}

// IsOperator reports whether tok is one of the 12 recognized filter
// operator tokens.
func IsOperator(tok string) bool {
	_, ok := operators[tok]
	return ok
}

// ValidateOperator checks tok against the operator whitelist and returns
// it unchanged.
func ValidateOperator(tok string) (string, error) {
	if !IsOperator(tok) {
		return "", tabula.NewInvalidIdentifierError(tok, "filter operator", "unknown operator")
	}
	return tok, nil
}

// ParsePositiveInt parses s as a strictly positive integer.
func ParsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, tabula.NewInvalidIdentifierError(s, "integer", "must be a positive integer")
	}
	return n, nil
}
