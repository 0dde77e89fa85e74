// Package sqlgen renders the query IR into relational query text.
//
// Rendering is deterministic and side-effect-free: the same IR always
// produces the same text. Clause order is fixed - SELECT, FROM, WHERE,
// GROUP BY, HAVING, ORDER BY, LIMIT - and absent clauses are omitted
// entirely, never emitted empty.
package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/querychat/querychat/internal/ir"
)

// Synthesizer renders IR queries to relational text.
type Synthesizer struct{}

// New creates a Synthesizer.
func New() *Synthesizer {
	return &Synthesizer{}
}

// Render produces the relational query text for q. The IR must carry a
// target entity; everything else degrades to clause omission.
func (s *Synthesizer) Render(q *ir.Query) (string, error) {
	if q == nil {
		return "", fmt.Errorf("cannot render nil query")
	}
	if q.From == "" {
		return "", fmt.Errorf("cannot render query without target entity")
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(s.selectList(q), ", "))
	b.WriteString(" FROM ")
	b.WriteString(q.From)

	if len(q.Where) > 0 {
		rendered, err := s.renderConditions(q.Where)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHERE ")
		b.WriteString(rendered)
	}
	if len(q.GroupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(q.GroupBy, ", "))
	}
	if len(q.Having) > 0 {
		rendered, err := s.renderConditions(q.Having)
		if err != nil {
			return "", err
		}
		b.WriteString(" HAVING ")
		b.WriteString(rendered)
	}
	if q.OrderBy != nil {
		fmt.Fprintf(&b, " ORDER BY %s %s", q.OrderBy.Field, q.OrderBy.Direction)
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.Limit))
	}
	return b.String(), nil
}

// selectList builds the projected columns: plain select columns first, then
// aggregate expressions with aliases, in IR order. Under grouping with
// aggregates the plain columns are the grouping fields (the implicit-select
// invariant); with neither, the default is *.
func (s *Synthesizer) selectList(q *ir.Query) []string {
	var cols []string
	if len(q.Aggregates) > 0 && len(q.GroupBy) > 0 {
		cols = append(cols, q.GroupBy...)
	} else {
		cols = append(cols, q.Select...)
	}
	for _, a := range q.Aggregates {
		cols = append(cols, fmt.Sprintf("%s AS %s", a.Expr(), a.Alias))
	}
	if len(cols) == 0 {
		cols = []string{"*"}
	}
	return cols
}

func (s *Synthesizer) renderConditions(conds []ir.Condition) (string, error) {
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		rendered, err := s.renderCondition(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, rendered)
	}
	return strings.Join(parts, " AND "), nil
}

// renderCondition maps one condition to text. The switch enumerates the
// closed operator set; a fallthrough to the error is a contract violation
// introduced upstream, not something to paper over here.
func (s *Synthesizer) renderCondition(c ir.Condition) (string, error) {
	switch c.Op {
	case ir.OpEq, ir.OpGt, ir.OpLt, ir.OpGte, ir.OpLte, ir.OpNe:
		return fmt.Sprintf("%s %s %s", c.Field, c.Op, ir.RenderLiteral(c.Value)), nil
	case ir.OpLike:
		return fmt.Sprintf("%s LIKE %s", c.Field, ir.RenderLiteral(c.Value)), nil
	case ir.OpIn:
		return fmt.Sprintf("%s IN (%s)", c.Field, c.Raw), nil
	case ir.OpBetween:
		// Extraction lowers BETWEEN before the IR reaches a synthesizer;
		// a raw capture is still rendered verbatim if one slips through.
		return fmt.Sprintf("%s BETWEEN %s", c.Field, c.Raw), nil
	default:
		return "", fmt.Errorf("operator %q has no relational mapping", c.Op)
	}
}
