package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"go.mongodb.org/mongo-driver/bson"
)

// TranslationSnapshot is the golden-file shape for one scenario: the
// request, both renderings, or the translation error. Stages are rendered
// as relaxed extended JSON so field order in each stage is preserved.
type TranslationSnapshot struct {
	ScenarioName string            `json:"scenario_name"`
	Text         string            `json:"text"`
	SQL          string            `json:"sql,omitempty"`
	Collection   string            `json:"collection,omitempty"`
	Stages       []json.RawMessage `json:"stages,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	snapshot := TranslationSnapshot{
		ScenarioName: scenario.Name,
		Text:         scenario.Text,
	}
	if result.Err != nil {
		snapshot.Error = result.Err.Error()
	} else {
		snapshot.SQL = result.SQL
		snapshot.Collection = result.Pipeline.Collection
		for _, stage := range result.Pipeline.Stages {
			encoded, err := bson.MarshalExtJSON(stage, false, false)
			if err != nil {
				return err
			}
			snapshot.Stages = append(snapshot.Stages, encoded)
		}
	}

	// A plain Marshal would escape the comparison symbols in the SQL text
	// as > and friends; golden files should stay readable.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		return err
	}
	data := buf.Bytes()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
