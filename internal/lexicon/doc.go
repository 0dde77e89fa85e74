// Package lexicon holds the phrase rule tables that drive extraction.
//
// The tables are authored declaratively in an embedded CUE document
// (lexicon.cue), validated against CUE schemas at load time, and compiled
// once into immutable regexp-backed rules. Precedence is explicit in the
// data - a rule's priority field, not source ordering, decides evaluation
// order - so individual rules can be unit-tested in isolation.
//
// The compiled Lexicon is process-wide, read-only state: Default loads it
// exactly once and every request shares the same instance. Nothing here is
// mutated after load.
package lexicon
