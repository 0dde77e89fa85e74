package mongogen

import (
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/querychat/querychat/internal/ir"
)

// Pipeline is the document-store form of a query: the target collection and
// its ordered stage sequence.
type Pipeline struct {
	Collection string   `json:"collection"`
	Stages     []bson.D `json:"stages"`
}

// Synthesizer builds aggregation pipelines from the IR.
type Synthesizer struct{}

// New creates a Synthesizer.
func New() *Synthesizer {
	return &Synthesizer{}
}

var aggExprPat = regexp.MustCompile(`^(COUNT|SUM|AVG|MIN|MAX)\(\s*([\w.*]+)\s*\)$`)

// Build renders q into a pipeline. The IR must carry a target entity.
func (s *Synthesizer) Build(q *ir.Query) (*Pipeline, error) {
	if q == nil {
		return nil, fmt.Errorf("cannot build pipeline from nil query")
	}
	if q.From == "" {
		return nil, fmt.Errorf("cannot build pipeline without target entity")
	}

	p := &Pipeline{Collection: q.From}

	if len(q.Where) > 0 {
		match, err := matchDocument(q.Where)
		if err != nil {
			return nil, err
		}
		p.Stages = append(p.Stages, bson.D{{Key: "$match", Value: match}})
	}

	accumulators, err := s.accumulators(q)
	if err != nil {
		return nil, err
	}
	grouped := len(q.GroupBy) > 0 || len(accumulators) > 0
	if grouped {
		group := bson.D{}
		if len(q.GroupBy) > 0 {
			group = append(group, bson.E{Key: "_id", Value: "$" + q.GroupBy[0]})
		} else {
			group = append(group, bson.E{Key: "_id", Value: nil})
		}
		group = append(group, accumulators...)
		p.Stages = append(p.Stages, bson.D{{Key: "$group", Value: group}})

		// Rename the synthetic identifier back to the grouping field and
		// suppress it; aggregate aliases pass through untouched.
		project := bson.D{}
		if len(q.GroupBy) > 0 {
			project = append(project, bson.E{Key: q.GroupBy[0], Value: "$_id"})
		}
		for _, acc := range accumulators {
			project = append(project, bson.E{Key: acc.Key, Value: 1})
		}
		project = append(project, bson.E{Key: "_id", Value: 0})
		p.Stages = append(p.Stages, bson.D{{Key: "$project", Value: project}})
	}

	if len(q.Having) > 0 {
		match, err := havingDocument(q.Having)
		if err != nil {
			return nil, err
		}
		p.Stages = append(p.Stages, bson.D{{Key: "$match", Value: match}})
	}

	if q.OrderBy != nil {
		dir := 1
		if q.OrderBy.Direction == ir.Descending {
			dir = -1
		}
		p.Stages = append(p.Stages, bson.D{{Key: "$sort", Value: bson.D{{Key: q.OrderBy.Field, Value: dir}}}})
	}

	if q.Limit > 0 {
		p.Stages = append(p.Stages, bson.D{{Key: "$limit", Value: int64(q.Limit)}})
	}

	if !grouped {
		if project := selectionDocument(q.EffectiveSelect()); project != nil {
			p.Stages = append(p.Stages, bson.D{{Key: "$project", Value: project}})
		}
	}

	return p, nil
}

// accumulators maps each aggregate to its $group accumulator, keyed by
// alias, plus accumulators for aggregates referenced only by HAVING
// expressions (the having rewrite keeps the projection to the grouping
// field, so the expression text is their one surviving mention).
func (s *Synthesizer) accumulators(q *ir.Query) (bson.D, error) {
	accs := bson.D{}
	seen := map[string]bool{}

	add := func(a ir.Aggregate) error {
		if seen[a.Alias] {
			return nil
		}
		seen[a.Alias] = true
		var acc bson.D
		switch a.Func {
		case ir.AggCount:
			acc = bson.D{{Key: "$sum", Value: 1}}
		case ir.AggSum:
			acc = bson.D{{Key: "$sum", Value: "$" + a.Field}}
		case ir.AggAvg:
			acc = bson.D{{Key: "$avg", Value: "$" + a.Field}}
		case ir.AggMin:
			acc = bson.D{{Key: "$min", Value: "$" + a.Field}}
		case ir.AggMax:
			acc = bson.D{{Key: "$max", Value: "$" + a.Field}}
		default:
			return fmt.Errorf("aggregate function %q has no pipeline mapping", a.Func)
		}
		accs = append(accs, bson.E{Key: a.Alias, Value: acc})
		return nil
	}

	for _, a := range q.Aggregates {
		if err := add(a); err != nil {
			return nil, err
		}
	}
	for _, c := range q.Having {
		a, ok := parseAggExpr(c.Field)
		if !ok {
			return nil, fmt.Errorf("having condition %q does not reference an aggregate expression", c.Field)
		}
		if err := add(a); err != nil {
			return nil, err
		}
	}
	return accs, nil
}

// parseAggExpr reads an aggregate expression like "AVG(price)" back into
// its parts, deriving the standard alias.
func parseAggExpr(expr string) (ir.Aggregate, bool) {
	m := aggExprPat.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		return ir.Aggregate{}, false
	}
	fn := ir.AggFunc(m[1])
	return ir.Aggregate{Func: fn, Field: m[2], Alias: ir.DefaultAlias(fn, m[2])}, true
}

// matchDocument folds WHERE conditions into one filter document. Conditions
// on the same field merge into a single operator document, which is how a
// lowered BETWEEN becomes {field: {$gte: lo, $lte: hi}}.
func matchDocument(conds []ir.Condition) (bson.D, error) {
	type entry struct {
		direct    any
		hasDirect bool
		ops       bson.D
	}
	order := []string{}
	byField := map[string]*entry{}

	for _, c := range conds {
		e, ok := byField[c.Field]
		if !ok {
			e = &entry{}
			byField[c.Field] = e
			order = append(order, c.Field)
		}
		switch c.Op {
		case ir.OpEq:
			e.direct = ir.Native(c.Value)
			e.hasDirect = true
		case ir.OpGt:
			e.ops = append(e.ops, bson.E{Key: "$gt", Value: ir.Native(c.Value)})
		case ir.OpLt:
			e.ops = append(e.ops, bson.E{Key: "$lt", Value: ir.Native(c.Value)})
		case ir.OpGte:
			e.ops = append(e.ops, bson.E{Key: "$gte", Value: ir.Native(c.Value)})
		case ir.OpLte:
			e.ops = append(e.ops, bson.E{Key: "$lte", Value: ir.Native(c.Value)})
		case ir.OpNe:
			e.ops = append(e.ops, bson.E{Key: "$ne", Value: ir.Native(c.Value)})
		case ir.OpLike:
			e.ops = append(e.ops, bson.E{Key: "$regex", Value: fmt.Sprint(ir.Native(c.Value))}, bson.E{Key: "$options", Value: "i"})
		case ir.OpIn:
			e.ops = append(e.ops, bson.E{Key: "$in", Value: parseInList(c.Raw)})
		case ir.OpBetween:
			// Lowering happens during extraction; reaching this point is a
			// bug in the caller, not an input condition to tolerate.
			return nil, fmt.Errorf("BETWEEN reached the pipeline builder unlowered (field %q)", c.Field)
		default:
			return nil, fmt.Errorf("operator %q has no pipeline mapping", c.Op)
		}
	}

	match := bson.D{}
	for _, field := range order {
		e := byField[field]
		switch {
		case e.hasDirect && len(e.ops) == 0:
			match = append(match, bson.E{Key: field, Value: e.direct})
		case e.hasDirect:
			ops := append(bson.D{{Key: "$eq", Value: e.direct}}, e.ops...)
			match = append(match, bson.E{Key: field, Value: ops})
		default:
			match = append(match, bson.E{Key: field, Value: e.ops})
		}
	}
	return match, nil
}

// havingDocument builds the post-aggregation $match over aggregate aliases.
func havingDocument(conds []ir.Condition) (bson.D, error) {
	match := bson.D{}
	for _, c := range conds {
		agg, ok := parseAggExpr(c.Field)
		if !ok {
			return nil, fmt.Errorf("having condition %q does not reference an aggregate expression", c.Field)
		}
		value := ir.Native(c.Value)
		switch c.Op {
		case ir.OpEq:
			match = append(match, bson.E{Key: agg.Alias, Value: value})
		case ir.OpGt:
			match = append(match, bson.E{Key: agg.Alias, Value: bson.D{{Key: "$gt", Value: value}}})
		case ir.OpLt:
			match = append(match, bson.E{Key: agg.Alias, Value: bson.D{{Key: "$lt", Value: value}}})
		case ir.OpGte:
			match = append(match, bson.E{Key: agg.Alias, Value: bson.D{{Key: "$gte", Value: value}}})
		case ir.OpLte:
			match = append(match, bson.E{Key: agg.Alias, Value: bson.D{{Key: "$lte", Value: value}}})
		case ir.OpNe:
			match = append(match, bson.E{Key: agg.Alias, Value: bson.D{{Key: "$ne", Value: value}}})
		default:
			return nil, fmt.Errorf("operator %q is not valid after aggregation", c.Op)
		}
	}
	return match, nil
}

// selectionDocument builds the plain-field $project. The store's internal
// identifier is excluded unless explicitly selected. A bare * projection
// needs no stage at all.
func selectionDocument(cols []string) bson.D {
	if len(cols) == 0 || (len(cols) == 1 && cols[0] == "*") {
		return nil
	}
	project := bson.D{}
	explicitID := false
	for _, col := range cols {
		if col == "_id" {
			explicitID = true
		}
		project = append(project, bson.E{Key: col, Value: 1})
	}
	if !explicitID {
		project = append(project, bson.E{Key: "_id", Value: 0})
	}
	return project
}

// parseInList splits a raw captured IN list into typed member values.
func parseInList(raw string) []any {
	parts := strings.Split(raw, ",")
	values := make([]any, 0, len(parts))
	for _, part := range parts {
		values = append(values, ir.Native(ir.ParseValue(part)))
	}
	return values
}
