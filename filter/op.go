package filter

// An Op is a filter comparison operator. The twelve operators mirror the
// recognized "<column>_<operator>" key suffixes.
type Op uint8

// Filter operators.
const (
	OpEQ Op = iota // =
	OpNE           // <>
	OpGT           // >
	OpGTE          // >=
	OpLT           // <
	OpLTE          // <=
	OpLike         // case-insensitive LIKE with %...% wrapping
	OpIn           // IN (...)
	OpNotIn        // NOT IN (...)
	OpBetween      // BETWEEN x AND y
	OpIsNull       // IS NULL
	OpNotNull      // IS NOT NULL
	endOps
)

var opTokens = [...]string{
	OpEQ:      "eq",
	OpNE:      "ne",
	OpGT:      "gt",
	OpGTE:     "gte",
	OpLT:      "lt",
	OpLTE:     "lte",
	OpLike:    "like",
	OpIn:      "in",
	OpNotIn:   "nin",
	OpBetween: "between",
	OpIsNull:  "null",
	OpNotNull: "nnull",
}

// comparison SQL for the six direct comparison operators.
var opSQL = map[Op]string{
	OpEQ:  "=",
	OpNE:  "<>",
	OpGT:  ">",
	OpGTE: ">=",
	OpLT:  "<",
	OpLTE: "<=",
}

// Token returns the key-suffix token for the operator.
func (o Op) Token() string {
	if o < endOps {
		return opTokens[o]
	}
	return ""
}

// String returns the operator token.
func (o Op) String() string { return o.Token() }

// Comparison reports whether the operator is a direct scalar comparison
// (eq, ne, gt, gte, lt, lte).
func (o Op) Comparison() bool {
	_, ok := opSQL[o]
	return ok
}

// List reports whether the operator carries a list payload.
func (o Op) List() bool {
	return o == OpIn || o == OpNotIn || o == OpBetween
}

// Nullary reports whether the operator takes no value.
func (o Op) Nullary() bool {
	return o == OpIsNull || o == OpNotNull
}

// opByToken resolves a key suffix to its operator.
func opByToken(tok string) (Op, bool) {
	for op, t := range opTokens {
		if t == tok {
			return Op(op), true
		}
	}
	return endOps, false
}
