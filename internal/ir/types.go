package ir

import (
	"fmt"
	"strings"
)

// Condition is one (field, operator, value) triple from a WHERE or HAVING
// clause. In HAVING conditions Field holds the aggregate expression text
// (e.g. "AVG(price)"), never the alias.
type Condition struct {
	Field string   `json:"field"`
	Op    Operator `json:"op"`
	Value Value    `json:"value"`

	// Raw preserves the captured value text for operators rendered verbatim
	// (IN lists). Empty for ordinary literals.
	Raw string `json:"raw,omitempty"`
}

// Aggregate is one (function, field, alias) entry. Field is "*" for
// COUNT(*).
type Aggregate struct {
	Func  AggFunc `json:"func"`
	Field string  `json:"field"`
	Alias string  `json:"alias"`
}

// Expr renders the aggregate expression text, e.g. "COUNT(*)" or
// "AVG(price)".
func (a Aggregate) Expr() string {
	return fmt.Sprintf("%s(%s)", a.Func, a.Field)
}

// DefaultAlias derives the output name for an aggregate: the lowered
// function name joined to the field with an underscore. COUNT(*) becomes
// "count_total".
func DefaultAlias(fn AggFunc, field string) string {
	if field == "" || field == "*" {
		return strings.ToLower(string(fn)) + "_total"
	}
	return strings.ToLower(string(fn)) + "_" + field
}

// Ordering is an ORDER BY target with its direction.
type Ordering struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Query is the intermediate representation of one request. It is built
// fresh per incoming text, read-only afterward, and consumed exactly once
// by each synthesizer.
//
// From is the only mandatory field; it must exactly match a catalog entry.
// Every other field has a safe default: Select falls back to *, the list
// fields to empty, OrderBy to nil and Limit to zero (meaning absent).
type Query struct {
	Select     []string    `json:"select,omitempty"`
	From       string      `json:"from"`
	Where      []Condition `json:"where,omitempty"`
	GroupBy    []string    `json:"group_by,omitempty"`
	Having     []Condition `json:"having,omitempty"`
	OrderBy    *Ordering   `json:"order_by,omitempty"`
	Limit      int         `json:"limit,omitempty"`
	Aggregates []Aggregate `json:"aggregates,omitempty"`
}

// Validate checks the structural invariants that both synthesizers rely on.
// A missing From is reported by the extractor as an unresolved target; here
// it is a plain error because a Query without From is unusable everywhere.
func (q *Query) Validate() error {
	if q.From == "" {
		return fmt.Errorf("query has no target entity")
	}
	for _, c := range q.Where {
		if !c.Op.Valid() {
			return fmt.Errorf("where condition on %q uses unknown operator %q", c.Field, c.Op)
		}
	}
	for _, c := range q.Having {
		if !c.Op.Comparison() {
			return fmt.Errorf("having condition on %q uses operator %q outside the comparison set", c.Field, c.Op)
		}
	}
	for _, a := range q.Aggregates {
		if !a.Func.Valid() {
			return fmt.Errorf("unknown aggregate function %q", a.Func)
		}
	}
	if q.OrderBy != nil && q.OrderBy.Direction != Ascending && q.OrderBy.Direction != Descending {
		return fmt.Errorf("unknown sort direction %q", q.OrderBy.Direction)
	}
	return nil
}

// Normalize drops values that the invariants declare invalid rather than
// failing the whole query: a non-positive limit is removed.
func (q *Query) Normalize() {
	if q.Limit <= 0 {
		q.Limit = 0
	}
}

// EffectiveSelect resolves the implicit-select invariant: when both
// aggregates and grouping fields are present, the projected columns are the
// grouping fields followed by the aggregate aliases, regardless of the
// literal Select entries.
func (q *Query) EffectiveSelect() []string {
	if len(q.Aggregates) > 0 && len(q.GroupBy) > 0 {
		cols := make([]string, 0, len(q.GroupBy)+len(q.Aggregates))
		cols = append(cols, q.GroupBy...)
		for _, a := range q.Aggregates {
			cols = append(cols, a.Alias)
		}
		return cols
	}
	if len(q.Select) == 0 {
		return []string{"*"}
	}
	return q.Select
}
