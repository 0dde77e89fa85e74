// Package extract turns free-form request text into the query IR.
//
// Extraction is a fixed-priority pass over normalized text: entity
// resolution, aggregate detection, condition extraction, grouping, having,
// ordering and limit, in that order. Each rule that fires consumes its
// matched span, and later, broader rules never re-claim consumed text.
//
// Keyword matching runs against a case-folded copy of the text, but every
// captured field or entity value is read back from the original-case string
// at the matched offsets - the backing stores can be case-sensitive on
// identifiers, so folding a captured name is a correctness bug, not a
// cosmetic one.
//
// The only hard failure is an unresolved target entity. Every other clause
// has a safe default and degrades by omission.
package extract
