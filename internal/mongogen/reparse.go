package mongogen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/querychat/querychat/internal/ir"
)

// FromRelational derives a pipeline from relational query text alone, for
// callers that no longer hold the IR. The text is parsed back into the IR
// and handed to Build, so this path cannot drift from the IR-driven one.
func (s *Synthesizer) FromRelational(text string) (*Pipeline, error) {
	q, err := ParseRelational(text)
	if err != nil {
		return nil, err
	}
	return s.Build(q)
}

var (
	selectPat  = regexp.MustCompile(`(?i)^\s*SELECT\s+(.*?)\s+FROM\s+(\w+)`)
	wherePat   = regexp.MustCompile(`(?i)\bWHERE\s+(.*?)(?:\s+GROUP BY\b|\s+HAVING\b|\s+ORDER BY\b|\s+LIMIT\b|\s*$)`)
	groupPat   = regexp.MustCompile(`(?i)\bGROUP BY\s+(.*?)(?:\s+HAVING\b|\s+ORDER BY\b|\s+LIMIT\b|\s*$)`)
	havingPat  = regexp.MustCompile(`(?i)\bHAVING\s+(.*?)(?:\s+ORDER BY\b|\s+LIMIT\b|\s*$)`)
	orderPat   = regexp.MustCompile(`(?i)\bORDER BY\s+([\w.]+)(?:\s+(ASC|DESC))?`)
	limitPat   = regexp.MustCompile(`(?i)\bLIMIT\s+(\d+)`)
	aggColPat  = regexp.MustCompile(`(?i)^(COUNT|SUM|AVG|MIN|MAX)\(\s*([\w.*]+)\s*\)(?:\s+AS\s+([\w.]+))?$`)
	betweenPat = regexp.MustCompile(`(?i)^([\w.]+)\s+BETWEEN\s+(\S+)\s+AND\s+(\S+)$`)
	inPat      = regexp.MustCompile(`(?i)^([\w.]+)\s+IN\s*\(([^)]*)\)$`)
	likePat    = regexp.MustCompile(`(?i)^([\w.]+)\s+LIKE\s+(.+)$`)
	havingCond = regexp.MustCompile(`(?i)^(COUNT|SUM|AVG|MIN|MAX)\(\s*([\w.*]+)\s*\)\s*(<=|>=|!=|<>|=|<|>)\s*(\S+)$`)
	andSplit   = regexp.MustCompile(`(?i)\s+AND\s+`)
)

// comparatorsByLength orders the symbolic operators so two-character forms
// are tried before their one-character prefixes.
var comparatorsByLength = []struct {
	symbol string
	op     ir.Operator
}{
	{"<=", ir.OpLte},
	{">=", ir.OpGte},
	{"!=", ir.OpNe},
	{"<>", ir.OpNe},
	{"=", ir.OpEq},
	{"<", ir.OpLt},
	{">", ir.OpGt},
}

// unquoteLiteral reverses the relational literal rendering: the outer
// single quotes come off and doubled embedded quotes fold back to one.
// Unquoted tokens get the usual numeric-first typing.
func unquoteLiteral(raw string) ir.Value {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return ir.String(strings.ReplaceAll(s[1:len(s)-1], "''", "'"))
	}
	return ir.ParseValue(s)
}

// ParseRelational reads relational query text in the fixed clause order
// back into the IR. It understands exactly the dialect the relational
// synthesizer emits.
func ParseRelational(text string) (*ir.Query, error) {
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), ";"))
	q := &ir.Query{}

	sel := selectPat.FindStringSubmatch(text)
	if sel == nil {
		return nil, fmt.Errorf("relational text has no SELECT ... FROM clause: %q", text)
	}
	q.From = sel[2]
	if err := parseSelectList(q, sel[1]); err != nil {
		return nil, err
	}

	if m := wherePat.FindStringSubmatch(text); m != nil {
		conds, err := parseConditions(m[1])
		if err != nil {
			return nil, err
		}
		q.Where = conds
	}
	if m := groupPat.FindStringSubmatch(text); m != nil {
		for _, field := range strings.Split(m[1], ",") {
			if field = strings.TrimSpace(field); field != "" {
				q.GroupBy = append(q.GroupBy, field)
			}
		}
	}
	if m := havingPat.FindStringSubmatch(text); m != nil {
		conds, err := parseHavingConditions(m[1])
		if err != nil {
			return nil, err
		}
		q.Having = conds
	}
	if m := orderPat.FindStringSubmatch(text); m != nil {
		dir := ir.Ascending
		if strings.EqualFold(m[2], string(ir.Descending)) {
			dir = ir.Descending
		}
		q.OrderBy = &ir.Ordering{Field: m[1], Direction: dir}
	}
	if m := limitPat.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("parse limit: %w", err)
		}
		q.Limit = n
	}

	q.Normalize()
	return q, nil
}

// parseSelectList splits the projection into plain columns and aggregate
// expressions. Grouped aggregate queries re-derive the implicit select from
// the grouping fields, so plain columns are only kept as literal Select
// entries when no aggregate accompanies them.
func parseSelectList(q *ir.Query, list string) error {
	for _, col := range strings.Split(list, ",") {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		if col == "*" {
			continue
		}
		if m := aggColPat.FindStringSubmatch(col); m != nil {
			fn := ir.AggFunc(strings.ToUpper(m[1]))
			alias := m[3]
			if alias == "" {
				alias = ir.DefaultAlias(fn, m[2])
			}
			q.Aggregates = append(q.Aggregates, ir.Aggregate{Func: fn, Field: m[2], Alias: alias})
			continue
		}
		q.Select = append(q.Select, col)
	}
	if len(q.Aggregates) > 0 && len(q.Select) > 0 {
		// Under aggregation the plain columns are the grouping fields; the
		// GROUP BY clause is their source of truth downstream.
		q.Select = nil
	}
	return nil
}

func parseConditions(clause string) ([]ir.Condition, error) {
	var conds []ir.Condition

	segments := andSplit.Split(clause, -1)
	for i := 0; i < len(segments); i++ {
		segment := strings.TrimSpace(segments[i])
		if segment == "" {
			continue
		}

		// A BETWEEN literal was split apart by the AND pass; stitch the
		// bound back on and lower it like extraction does.
		if i+1 < len(segments) {
			joined := segment + " AND " + strings.TrimSpace(segments[i+1])
			if m := betweenPat.FindStringSubmatch(joined); m != nil {
				conds = append(conds,
					ir.Condition{Field: m[1], Op: ir.OpGte, Value: unquoteLiteral(m[2])},
					ir.Condition{Field: m[1], Op: ir.OpLte, Value: unquoteLiteral(m[3])},
				)
				i++
				continue
			}
		}

		cond, err := parseCondition(segment)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

func parseCondition(segment string) (ir.Condition, error) {
	if m := inPat.FindStringSubmatch(segment); m != nil {
		raw := strings.TrimSpace(m[2])
		return ir.Condition{Field: m[1], Op: ir.OpIn, Raw: raw, Value: ir.String(raw)}, nil
	}
	if m := likePat.FindStringSubmatch(segment); m != nil {
		return ir.Condition{Field: m[1], Op: ir.OpLike, Value: unquoteLiteral(m[2])}, nil
	}
	for _, c := range comparatorsByLength {
		idx := strings.Index(segment, c.symbol)
		if idx <= 0 {
			continue
		}
		field := strings.TrimSpace(segment[:idx])
		value := strings.TrimSpace(segment[idx+len(c.symbol):])
		if field == "" || value == "" {
			continue
		}
		return ir.Condition{Field: field, Op: c.op, Value: unquoteLiteral(value)}, nil
	}
	return ir.Condition{}, fmt.Errorf("unrecognized condition %q", segment)
}

func parseHavingConditions(clause string) ([]ir.Condition, error) {
	var conds []ir.Condition
	for _, segment := range andSplit.Split(clause, -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		m := havingCond.FindStringSubmatch(segment)
		if m == nil {
			return nil, fmt.Errorf("unrecognized having condition %q", segment)
		}
		op := ir.OpNe
		switch m[3] {
		case "<=":
			op = ir.OpLte
		case ">=":
			op = ir.OpGte
		case "=":
			op = ir.OpEq
		case "<":
			op = ir.OpLt
		case ">":
			op = ir.OpGt
		}
		expr := ir.Aggregate{Func: ir.AggFunc(strings.ToUpper(m[1])), Field: m[2]}.Expr()
		conds = append(conds, ir.Condition{Field: expr, Op: op, Value: unquoteLiteral(m[4])})
	}
	return conds, nil
}
