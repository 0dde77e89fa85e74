// Package harness runs declarative translation scenarios: YAML files that
// pair request text and a catalog with the expected relational text and
// stage sequence, captured as golden files.
//
// A scenario exercises the full translation path - extraction, relational
// synthesis, pipeline synthesis - and additionally re-parses the relational
// output through the text-driven pipeline entry point, failing if the two
// pipelines disagree.
//
// To regenerate golden files after an intentional behavior change:
//
//	go test ./internal/harness -update
package harness
