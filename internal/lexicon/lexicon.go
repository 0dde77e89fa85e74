package lexicon

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"cuelang.org/go/cue/cuecontext"

	"github.com/querychat/querychat/internal/ir"
)

//go:embed lexicon.cue
var lexiconCUE []byte

// tables is the raw shape decoded from the CUE document.
type tables struct {
	Operators []struct {
		Op       string   `json:"op"`
		Priority int      `json:"priority"`
		Phrases  []string `json:"phrases"`
	} `json:"operators"`
	Aggregates []struct {
		Fn      string   `json:"fn"`
		Phrases []string `json:"phrases"`
	} `json:"aggregates"`
	GroupBy            []string `json:"group_by"`
	OrderBy            []string `json:"order_by"`
	Ascending          []string `json:"ascending"`
	Descending         []string `json:"descending"`
	Limit              []string `json:"limit"`
	WhereCues          []string `json:"where_cues"`
	EntityPrepositions []string `json:"entity_prepositions"`
	HavingCue          string   `json:"having_cue"`
}

// ConditionRule matches one operator's phrase variants against a text span.
// The pattern captures (field, value); the BETWEEN pattern captures
// (field, low, high) and the IN pattern captures (field, raw list).
type ConditionRule struct {
	Op       ir.Operator
	Priority int
	Phrases  []string
	Pattern  *regexp.Regexp
}

// AggregateRule matches one aggregate function's phrase variants. The
// pattern captures the operand field immediately following the phrase,
// optionally preceded by "of".
type AggregateRule struct {
	Func    ir.AggFunc
	Phrases []string
	Pattern *regexp.Regexp
}

// Lexicon is the compiled, immutable rule set shared by all requests.
type Lexicon struct {
	// Between is evaluated before conjunction splitting so "between 10 and
	// 20" is claimed as one span, then lowered to two conditions.
	Between ConditionRule

	// Conditions holds the remaining operator rules sorted by priority.
	Conditions []ConditionRule

	Aggregates []AggregateRule

	GroupBy *regexp.Regexp
	OrderBy *regexp.Regexp
	Limit   *regexp.Regexp

	Ascending  []string
	Descending []string

	WhereCues          []string
	EntityPrepositions []string
	HavingCue          string

	// ClauseCues are phrases that terminate a WHERE span: any group-by,
	// order-by or limit phrase, plus the having cue.
	ClauseCues []string
}

const (
	fieldPat = `(\w[\w.]*)`
	valuePat = `('[^']*'|"[^"]*"|[\w.%-]+)`
)

// phraseAlt builds a regexp alternation from phrase variants. Longer
// phrases come first so "greater than or equal to" wins over "greater
// than" inside a single rule. Word phrases get \b anchors; symbolic ones
// ("=", ">=") must not, since \b is undefined next to punctuation.
func phraseAlt(phrases []string) string {
	sorted := make([]string, len(phrases))
	copy(sorted, phrases)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	parts := make([]string, 0, len(sorted))
	for _, p := range sorted {
		quoted := regexp.QuoteMeta(p)
		if isWordChar(p[0]) {
			quoted = `\b` + quoted
		}
		if isWordChar(p[len(p)-1]) {
			quoted += `\b`
		}
		parts = append(parts, quoted)
	}
	return strings.Join(parts, "|")
}

func isWordChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// Load parses the embedded CUE document, validates it against the schemas
// it declares, and compiles the rule tables.
func Load() (*Lexicon, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(lexiconCUE)
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile lexicon: %w", err)
	}
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("validate lexicon: %w", err)
	}

	var t tables
	if err := v.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode lexicon: %w", err)
	}
	return compile(t)
}

func compile(t tables) (*Lexicon, error) {
	lex := &Lexicon{
		Ascending:          t.Ascending,
		Descending:         t.Descending,
		WhereCues:          t.WhereCues,
		EntityPrepositions: t.EntityPrepositions,
		HavingCue:          t.HavingCue,
	}

	for _, entry := range t.Operators {
		op := ir.Operator(entry.Op)
		if !op.Valid() {
			return nil, fmt.Errorf("lexicon operator entry %q is outside the closed set", entry.Op)
		}
		rule := ConditionRule{Op: op, Priority: entry.Priority, Phrases: entry.Phrases}

		var pat string
		switch op {
		case ir.OpBetween:
			pat = fieldPat + `\s*(?:is\s+)?(?:` + phraseAlt(entry.Phrases) + `)\s*` + valuePat + `\s+and\s+` + valuePat
		case ir.OpIn:
			// IN needs an explicit parenthesized list; a bare "in" is an
			// entity preposition, not a condition.
			pat = fieldPat + `\s*(?:is\s+)?(?:` + phraseAlt(entry.Phrases) + `)\s*\(([^)]+)\)`
		default:
			pat = fieldPat + `\s*(?:is\s+)?(?:` + phraseAlt(entry.Phrases) + `)\s*` + valuePat
		}
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("compile rule for operator %q: %w", op, err)
		}
		rule.Pattern = re

		if op == ir.OpBetween {
			lex.Between = rule
			continue
		}
		lex.Conditions = append(lex.Conditions, rule)
	}
	if lex.Between.Pattern == nil {
		return nil, fmt.Errorf("lexicon defines no BETWEEN rule")
	}
	sort.SliceStable(lex.Conditions, func(i, j int) bool {
		return lex.Conditions[i].Priority < lex.Conditions[j].Priority
	})

	for _, entry := range t.Aggregates {
		fn := ir.AggFunc(entry.Fn)
		if !fn.Valid() {
			return nil, fmt.Errorf("lexicon aggregate entry %q is unknown", entry.Fn)
		}
		re, err := regexp.Compile(`(?:` + phraseAlt(entry.Phrases) + `)\s+(?:of\s+)?` + fieldPat)
		if err != nil {
			return nil, fmt.Errorf("compile rule for aggregate %q: %w", fn, err)
		}
		lex.Aggregates = append(lex.Aggregates, AggregateRule{Func: fn, Phrases: entry.Phrases, Pattern: re})
	}

	var err error
	fieldList := `(\w[\w.]*(?:(?:\s*,\s*|\s+and\s+)\w[\w.]*)*)`
	if lex.GroupBy, err = regexp.Compile(`(?:` + phraseAlt(t.GroupBy) + `)\s+` + fieldList); err != nil {
		return nil, fmt.Errorf("compile group-by rule: %w", err)
	}
	if lex.OrderBy, err = regexp.Compile(`(?:` + phraseAlt(t.OrderBy) + `)\s+` + fieldPat); err != nil {
		return nil, fmt.Errorf("compile order-by rule: %w", err)
	}
	if lex.Limit, err = regexp.Compile(`(?:` + phraseAlt(t.Limit) + `)\s+(\d+)`); err != nil {
		return nil, fmt.Errorf("compile limit rule: %w", err)
	}

	lex.ClauseCues = append(lex.ClauseCues, t.GroupBy...)
	lex.ClauseCues = append(lex.ClauseCues, t.OrderBy...)
	lex.ClauseCues = append(lex.ClauseCues, t.Limit...)
	lex.ClauseCues = append(lex.ClauseCues, t.HavingCue)

	return lex, nil
}

// Alternation compiles a boundary-anchored alternation of phrases, longest
// first, for callers that scan for cue words outside the rule tables.
func Alternation(phrases ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?:` + phraseAlt(phrases) + `)`)
}

var (
	defaultOnce sync.Once
	defaultLex  *Lexicon
	defaultErr  error
)

// Default returns the process-wide lexicon, loading it on first use. The
// embedded document is part of the binary, so a load failure is a build
// defect; Default panics rather than letting extraction run without rules.
func Default() *Lexicon {
	defaultOnce.Do(func() {
		defaultLex, defaultErr = Load()
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("lexicon: %v", defaultErr))
	}
	return defaultLex
}
