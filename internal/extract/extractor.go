package extract

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/querychat/querychat/internal/catalog"
	"github.com/querychat/querychat/internal/ir"
	"github.com/querychat/querychat/internal/lexicon"
)

// Extractor resolves request text against a catalog and produces the query
// IR. It is stateless apart from the immutable lexicon and the cue regexps
// compiled from it, so one Extractor serves any number of requests.
type Extractor struct {
	lex *lexicon.Lexicon

	whereCue   *regexp.Regexp
	clauseCue  *regexp.Regexp
	prepEntity *regexp.Regexp
	havingLead *regexp.Regexp
	ascCue     *regexp.Regexp
	descCue    *regexp.Regexp
	andSplit   *regexp.Regexp

	// cueLead holds the first word of every clause-cue phrase, used to
	// stop a greedy field-list capture before the next clause's cue.
	cueLead map[string]bool
}

var fieldListSep = regexp.MustCompile(`\s*,\s*|\s+(?i:and)\s+`)

// New builds an extractor over the given lexicon.
func New(lex *lexicon.Lexicon) *Extractor {
	cueLead := make(map[string]bool, len(lex.ClauseCues))
	for _, cue := range lex.ClauseCues {
		if word, _, _ := strings.Cut(cue, " "); word != "" {
			cueLead[word] = true
		}
	}
	return &Extractor{
		lex:        lex,
		whereCue:   lexicon.Alternation(lex.WhereCues...),
		clauseCue:  lexicon.Alternation(lex.ClauseCues...),
		prepEntity: regexp.MustCompile(lexicon.Alternation(lex.EntityPrepositions...).String() + `\s+(\w[\w.]*)`),
		havingLead: regexp.MustCompile(`(\w[\w.]*)\s+` + lexicon.Alternation(lex.HavingCue).String()),
		ascCue:     lexicon.Alternation(lex.Ascending...),
		descCue:    lexicon.Alternation(lex.Descending...),
		andSplit:   regexp.MustCompile(`\band\b`),
		cueLead:    cueLead,
	}
}

// Default returns an extractor over the process-wide lexicon.
func Default() *Extractor {
	return New(lexicon.Default())
}

// Extract parses normalized request text into a Query. The returned error
// is an *UnresolvedTargetError when no catalog entity can be recognized;
// every other missing clause degrades to its default.
func (e *Extractor) Extract(text string, cat *catalog.Snapshot) (*ir.Query, error) {
	s := newScanner(text)
	q := &ir.Query{}

	entity, ok := e.resolveEntity(s, cat)
	if !ok {
		return nil, &UnresolvedTargetError{Text: s.original, Known: cat.Names()}
	}
	q.From = entity.Name

	// Aggregation phrases belong to the projection part of a request, so
	// detection stops where the condition region starts ("total" is a SUM
	// variant and must not claim "where total greater than 100").
	whereStart := len(s.lowered)
	if cue := s.findSubmatch(e.whereCue, 0, len(s.lowered)); cue != nil {
		whereStart = cue[0]
	}

	e.extractAggregates(s, q, whereStart)
	e.extractConditions(s, q)
	e.extractGroupBy(s, q)
	e.extractHaving(s, q)
	e.extractOrderBy(s, q)
	e.extractLimit(s, q)

	q.Normalize()
	return q, nil
}

// resolveEntity finds the target entity: a direct substring match of a
// catalog entity name first, then a preposition-anchored candidate ("from
// X", "in X", "of X") validated against the catalog.
func (e *Extractor) resolveEntity(s *scanner, cat *catalog.Snapshot) (catalog.Entity, bool) {
	if cat != nil {
		for _, entity := range cat.Entities {
			if wordIndex(s.lowered, foldASCII(entity.Name)) >= 0 {
				return entity, true
			}
		}
	}

	from := 0
	for {
		m := s.findSubmatch(e.prepEntity, from, len(s.lowered))
		if m == nil {
			return catalog.Entity{}, false
		}
		if entity, ok := cat.Resolve(s.capture(m, 1)); ok {
			return entity, true
		}
		from = m[0] + 1
	}
}

// wordIndex returns the byte offset of target in text with word boundaries
// on both sides, or -1.
func wordIndex(text, target string) int {
	if target == "" {
		return -1
	}
	from := 0
	for {
		i := strings.Index(text[from:], target)
		if i < 0 {
			return -1
		}
		lo := from + i
		hi := lo + len(target)
		if (lo == 0 || !isWordByte(text[lo-1])) && (hi == len(text) || !isWordByte(text[hi])) {
			return lo
		}
		from = lo + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// extractAggregates applies the aggregate phrase rules. A detected
// aggregate replaces the default select list. An operand that names the
// target entity itself ("count orders") means the whole-row aggregate.
func (e *Extractor) extractAggregates(s *scanner, q *ir.Query, hi int) {
	for _, rule := range e.lex.Aggregates {
		from := 0
		for {
			m := s.findSubmatch(rule.Pattern, from, hi)
			if m == nil {
				break
			}
			field := s.capture(m, 1)
			if strings.EqualFold(field, q.From) {
				field = "*"
			}
			q.Aggregates = append(q.Aggregates, ir.Aggregate{
				Func:  rule.Func,
				Field: field,
				Alias: ir.DefaultAlias(rule.Func, field),
			})
			s.consume(m[0], m[1])
			from = m[1]
		}
	}
	if len(q.Aggregates) > 0 {
		q.Select = nil
	}
}

// positioned pairs a condition with its text offset so the final WHERE list
// follows textual order even though BETWEEN is extracted in a pre-pass.
type positioned struct {
	pos  int
	cond ir.Condition
}

// extractConditions reads the WHERE span: the text following the first
// where-cue word, ending at the next clause cue. BETWEEN is matched against
// the whole span before conjunction splitting - "price between 10 and 20"
// is one span, not two fragments - and lowered immediately to a >= / <=
// pair. Remaining sub-spans are split on "and" and tried against the
// operator rules in priority order; a sub-span no rule claims is dropped,
// never fatal.
func (e *Extractor) extractConditions(s *scanner, q *ir.Query) {
	cue := s.findSubmatch(e.whereCue, 0, len(s.lowered))
	if cue == nil {
		return
	}
	lo := cue[1]
	hi := len(s.lowered)
	if stop := s.findSubmatch(e.clauseCue, lo, hi); stop != nil {
		hi = stop[0]
	}

	var conds []positioned

	for {
		m := s.findSubmatch(e.lex.Between.Pattern, lo, hi)
		if m == nil {
			break
		}
		field := s.capture(m, 1)
		conds = append(conds,
			positioned{m[0], ir.Condition{Field: field, Op: ir.OpGte, Value: ir.ParseValue(s.capture(m, 2))}},
			positioned{m[0] + 1, ir.Condition{Field: field, Op: ir.OpLte, Value: ir.ParseValue(s.capture(m, 3))}},
		)
		s.consume(m[0], m[1])
	}

	for _, seg := range e.segments(s, lo, hi) {
		for _, rule := range e.lex.Conditions {
			m := s.findSubmatch(rule.Pattern, seg.lo, seg.hi)
			if m == nil {
				continue
			}
			cond := ir.Condition{Field: s.capture(m, 1), Op: rule.Op}
			raw := s.capture(m, 2)
			if rule.Op == ir.OpIn {
				cond.Raw = raw
				cond.Value = ir.String(raw)
			} else {
				cond.Value = ir.ParseValue(raw)
			}
			conds = append(conds, positioned{m[0], cond})
			s.consume(m[0], m[1])
			break
		}
	}

	sort.SliceStable(conds, func(i, j int) bool { return conds[i].pos < conds[j].pos })
	for _, pc := range conds {
		q.Where = append(q.Where, pc.cond)
	}
}

// segments splits [lo, hi) on conjunction boundaries, skipping "and"
// occurrences inside already-consumed text (a lowered BETWEEN owns its
// "and").
func (e *Extractor) segments(s *scanner, lo, hi int) []span {
	var cuts []int
	from := lo
	for {
		m := s.findSubmatch(e.andSplit, from, hi)
		if m == nil {
			break
		}
		cuts = append(cuts, m[0], m[1])
		from = m[1]
	}

	var segs []span
	start := lo
	for i := 0; i < len(cuts); i += 2 {
		segs = append(segs, span{start, cuts[i]})
		start = cuts[i+1]
	}
	segs = append(segs, span{start, hi})
	return segs
}

// extractGroupBy applies the grouping phrase rules. Multiple fields can be
// listed with commas or "and". The field-list capture is greedy across
// "and", so it can run on into the next clause ("grouped by status and
// sorted by total"); a field opening a clause-cue phrase ends the list, and
// the cue text stays unconsumed for its own rule.
func (e *Extractor) extractGroupBy(s *scanner, q *ir.Query) {
	m := s.findSubmatch(e.lex.GroupBy, 0, len(s.lowered))
	if m == nil {
		return
	}
	captured := s.capture(m, 1)
	end := m[3]
	seps := fieldListSep.FindAllStringIndex(captured, -1)
	for i, field := range fieldListSep.Split(captured, -1) {
		if field == "" {
			continue
		}
		if e.cueLead[foldASCII(field)] {
			if i == 0 {
				end = m[2]
			} else {
				end = m[2] + seps[i-1][0]
			}
			break
		}
		q.GroupBy = append(q.GroupBy, field)
	}
	s.consume(m[0], end)

	if len(q.Aggregates) > 0 && len(q.GroupBy) > 0 {
		q.Select = append([]string(nil), q.GroupBy...)
	}
}

// extractHaving runs only when the post-aggregation cue word is present. It
// captures (group field, aggregate, operator, value) and rewrites them into
// a HAVING condition over the aggregate expression plus the implied
// grouping. The aggregate rule has usually already claimed the same phrase
// in step two; the rewrite removes that entry so the projected columns stay
// the grouping field alone.
func (e *Extractor) extractHaving(s *scanner, q *ir.Query) {
	// The lead word may already sit inside a consumed group-by span
	// ("grouped by make having ..."), so this is a deliberate re-read.
	lead := s.findSubmatchAny(e.havingLead, 0, len(s.lowered))
	if lead == nil {
		return
	}
	groupField := s.capture(lead, 1)
	lo := lead[1]
	hi := len(s.lowered)
	if stop := s.findSubmatch(e.clauseCue, lo, hi); stop != nil {
		hi = stop[0]
	}

	var agg *ir.Aggregate
	aggStart := lo
	for _, rule := range e.lex.Aggregates {
		m := s.findSubmatchAny(rule.Pattern, lo, hi)
		if m == nil {
			continue
		}
		agg = &ir.Aggregate{Func: rule.Func, Field: s.capture(m, 1)}
		// The operand token doubles as the condition's field, so the
		// condition search starts at the operand, not after it.
		aggStart = m[2]
		break
	}
	if agg == nil {
		slog.Debug("dropping having clause without a recognizable aggregate", "text", s.original[lo:hi])
		return
	}

	for _, rule := range e.lex.Conditions {
		m := s.findSubmatchAny(rule.Pattern, aggStart, hi)
		if m == nil {
			continue
		}
		if !rule.Op.Comparison() {
			continue
		}
		q.Having = append(q.Having, ir.Condition{
			Field: agg.Expr(),
			Op:    rule.Op,
			Value: ir.ParseValue(s.capture(m, 2)),
		})
		s.consume(lead[0], m[1])

		// Drop the duplicate entry the aggregate pass claimed from the same
		// phrase; the HAVING expression is its only surviving use.
		expr := agg.Expr()
		kept := q.Aggregates[:0]
		for _, a := range q.Aggregates {
			if a.Expr() != expr {
				kept = append(kept, a)
			}
		}
		q.Aggregates = kept

		if len(q.GroupBy) == 0 {
			q.GroupBy = []string{groupField}
		}
		q.Select = append([]string(nil), q.GroupBy...)
		return
	}
	slog.Debug("dropping having clause without a comparison", "text", s.original[lo:hi])
}

// extractOrderBy applies the ordering phrase rules, then scans the
// remainder for a direction synonym. No direction cue means ascending.
func (e *Extractor) extractOrderBy(s *scanner, q *ir.Query) {
	m := s.findSubmatch(e.lex.OrderBy, 0, len(s.lowered))
	if m == nil {
		return
	}
	field := s.capture(m, 1)
	s.consume(m[0], m[1])

	dir := ir.Ascending
	if d := s.findSubmatch(e.descCue, m[1], len(s.lowered)); d != nil {
		dir = ir.Descending
		s.consume(d[0], d[1])
	} else if a := s.findSubmatch(e.ascCue, m[1], len(s.lowered)); a != nil {
		s.consume(a[0], a[1])
	}
	q.OrderBy = &ir.Ordering{Field: field, Direction: dir}
}

// extractLimit applies the top-N phrase rules. Non-positive captures are
// dropped by Normalize.
func (e *Extractor) extractLimit(s *scanner, q *ir.Query) {
	m := s.findSubmatch(e.lex.Limit, 0, len(s.lowered))
	if m == nil {
		return
	}
	n, err := strconv.Atoi(s.capture(m, 1))
	if err != nil {
		return
	}
	q.Limit = n
	s.consume(m[0], m[1])
}
