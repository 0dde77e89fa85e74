// Package mongogen renders the query IR into an aggregation pipeline for
// the document store.
//
// There are two entry points: Build consumes the IR directly, and
// FromRelational re-derives a pipeline when the caller holds only
// relational query text. The text path does not grow its own stage logic -
// it parses the text back into the IR and feeds the one builder - so the
// two paths agree by construction instead of by parallel maintenance.
//
// Stage order is fixed: $match, $group, $project, post-aggregation $match,
// $sort, $limit, and a plain-selection $project. A stage is emitted only
// when its source clause is non-empty. Every operator reaching this package
// must belong to the closed set; BETWEEN in particular is lowered to a
// >= / <= pair during extraction and never handled here.
package mongogen
