package ir

// Operator is a comparison operator in a WHERE or HAVING condition.
//
// The operator set is closed. Both synthesizers define exactly one mapping
// per operator; adding an operator here without extending both mappings is
// a contract violation caught by the exhaustive enumeration tests.
type Operator string

const (
	OpEq      Operator = "="
	OpGt      Operator = ">"
	OpLt      Operator = "<"
	OpGte     Operator = ">="
	OpLte     Operator = "<="
	OpNe      Operator = "!="
	OpLike    Operator = "LIKE"
	OpIn      Operator = "IN"
	OpBetween Operator = "BETWEEN"
)

// Operators returns the full closed operator set, in declaration order.
func Operators() []Operator {
	return []Operator{OpEq, OpGt, OpLt, OpGte, OpLte, OpNe, OpLike, OpIn, OpBetween}
}

// ComparisonOperators returns the operators valid in HAVING conditions and
// in post-aggregation pipeline matches: the closed set minus LIKE, IN and
// BETWEEN.
func ComparisonOperators() []Operator {
	return []Operator{OpEq, OpGt, OpLt, OpGte, OpLte, OpNe}
}

// Valid reports whether op belongs to the closed operator set.
func (op Operator) Valid() bool {
	switch op {
	case OpEq, OpGt, OpLt, OpGte, OpLte, OpNe, OpLike, OpIn, OpBetween:
		return true
	}
	return false
}

// Comparison reports whether op is valid in a HAVING condition.
func (op Operator) Comparison() bool {
	switch op {
	case OpEq, OpGt, OpLt, OpGte, OpLte, OpNe:
		return true
	}
	return false
}

// AggFunc is an aggregate function name.
type AggFunc string

const (
	AggCount AggFunc = "COUNT"
	AggSum   AggFunc = "SUM"
	AggAvg   AggFunc = "AVG"
	AggMin   AggFunc = "MIN"
	AggMax   AggFunc = "MAX"
)

// AggFuncs returns all aggregate functions, in declaration order.
func AggFuncs() []AggFunc {
	return []AggFunc{AggCount, AggSum, AggAvg, AggMin, AggMax}
}

// Valid reports whether fn is a known aggregate function.
func (fn AggFunc) Valid() bool {
	switch fn {
	case AggCount, AggSum, AggAvg, AggMin, AggMax:
		return true
	}
	return false
}

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)
