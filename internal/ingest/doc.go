// Package ingest loads local data files into the query backends: CSV files
// into SQLite tables, JSON files into MongoDB collections.
//
// Ingestion is what gives the catalog something to discover - a loaded
// table or collection becomes a resolvable query target on the next
// discovery pass.
package ingest
