package extract

import "regexp"

// span is a half-open byte range over the normalized text.
type span struct {
	lo, hi int
}

// scanner pairs the normalized original-case text with its ASCII-folded
// copy and tracks which byte ranges earlier rules have consumed. Folding is
// length-preserving, so offsets found in lowered index directly into
// original.
type scanner struct {
	original string
	lowered  string
	consumed []span
}

func newScanner(text string) *scanner {
	original := normalize(text)
	return &scanner{original: original, lowered: foldASCII(original)}
}

func (s *scanner) overlaps(lo, hi int) bool {
	for _, c := range s.consumed {
		if lo < c.hi && c.lo < hi {
			return true
		}
	}
	return false
}

func (s *scanner) consume(lo, hi int) {
	s.consumed = append(s.consumed, span{lo, hi})
}

// findSubmatch returns the first match of re inside [lo, hi) whose full
// span does not overlap consumed text. Indices are absolute submatch index
// pairs as returned by FindStringSubmatchIndex.
func (s *scanner) findSubmatch(re *regexp.Regexp, lo, hi int) []int {
	return s.search(re, lo, hi, false)
}

// findSubmatchAny is findSubmatch without the consumed-span check, for
// callers that deliberately re-read a region (the having rewrite reuses the
// operand span the aggregate rule already claimed).
func (s *scanner) findSubmatchAny(re *regexp.Regexp, lo, hi int) []int {
	return s.search(re, lo, hi, true)
}

func (s *scanner) search(re *regexp.Regexp, lo, hi int, ignoreConsumed bool) []int {
	if lo < 0 {
		lo = 0
	}
	if hi > len(s.lowered) {
		hi = len(s.lowered)
	}
	start := lo
	for start < hi {
		m := re.FindStringSubmatchIndex(s.lowered[start:hi])
		if m == nil {
			return nil
		}
		abs := make([]int, len(m))
		for i, v := range m {
			if v < 0 {
				abs[i] = v
				continue
			}
			abs[i] = v + start
		}
		if ignoreConsumed || !s.overlaps(abs[0], abs[1]) {
			return abs
		}
		next := abs[0] + 1
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return nil
}

// capture reads submatch group n back from the original-case text.
func (s *scanner) capture(idx []int, n int) string {
	lo, hi := idx[2*n], idx[2*n+1]
	if lo < 0 || hi < 0 {
		return ""
	}
	return s.original[lo:hi]
}
