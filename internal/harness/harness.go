package harness

import (
	"fmt"
	"reflect"

	"github.com/querychat/querychat/internal/catalog"
	"github.com/querychat/querychat/internal/extract"
	"github.com/querychat/querychat/internal/ir"
	"github.com/querychat/querychat/internal/mongogen"
	"github.com/querychat/querychat/internal/sqlgen"
)

// Result holds one scenario's translation output.
type Result struct {
	// Query is the extracted IR.
	Query *ir.Query

	// SQL is the relational rendering.
	SQL string

	// Pipeline is the document-store rendering.
	Pipeline *mongogen.Pipeline

	// Err is the recoverable translation failure for expect_error
	// scenarios.
	Err error
}

// Run executes a scenario through the full translation path. Scenario
// errors (an unresolvable target in an expect_error scenario) land in
// Result.Err; any other failure is a harness error.
func Run(scenario *Scenario) (*Result, error) {
	cat := catalog.New(scenario.Catalog...)

	q, err := extract.Default().Extract(scenario.Text, cat)
	if err != nil {
		if scenario.ExpectError && extract.IsUnresolvedTarget(err) {
			return &Result{Err: err}, nil
		}
		return nil, fmt.Errorf("extract: %w", err)
	}
	if scenario.ExpectError {
		return nil, fmt.Errorf("scenario expected a translation error, got query for %q", q.From)
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	sql, err := sqlgen.New().Render(q)
	if err != nil {
		return nil, fmt.Errorf("render relational: %w", err)
	}

	pipeline, err := mongogen.New().Build(q)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	// The relational text must round-trip: re-parsing it through the
	// text-driven pipeline entry point has to land on the same stages.
	reparsed, err := mongogen.New().FromRelational(sql)
	if err != nil {
		return nil, fmt.Errorf("re-parse relational text: %w", err)
	}
	if reparsed.Collection != pipeline.Collection || !reflect.DeepEqual(reparsed.Stages, pipeline.Stages) {
		return nil, fmt.Errorf("pipeline from relational text diverges from IR-built pipeline for %q", sql)
	}

	return &Result{Query: q, SQL: sql, Pipeline: pipeline}, nil
}
