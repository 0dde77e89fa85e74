// Package executor runs synthesized queries against live backends: query
// text against a SQLite database, stage sequences against a MongoDB
// deployment.
//
// Execution is one-shot. A failed query surfaces as an ExecutionError and
// nothing is retried; the caller decides whether to rephrase or give up.
// Both executors honor context cancellation and return results fully
// materialized, column order preserved.
package executor
