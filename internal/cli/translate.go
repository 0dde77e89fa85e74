package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/querychat/querychat/internal/catalog"
	"github.com/querychat/querychat/internal/extract"
	"github.com/querychat/querychat/internal/mongogen"
	"github.com/querychat/querychat/internal/sqlgen"
)

// Translation is the dual rendering of one request.
type Translation struct {
	Text       string            `json:"text"`
	SQL        string            `json:"sql"`
	Collection string            `json:"collection"`
	Stages     []json.RawMessage `json:"stages"`
}

// String renders the translation for text output.
func (t *Translation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "SQL:      %s\n", t.SQL)
	fmt.Fprintf(&b, "Pipeline: db.%s.aggregate([", t.Collection)
	for i, stage := range t.Stages {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Write(stage)
	}
	b.WriteString("])")
	return b.String()
}

// translate runs the full translation path for one request.
func translate(text string, cat *catalog.Snapshot) (*Translation, error) {
	q, err := extract.Default().Extract(text, cat)
	if err != nil {
		return nil, err
	}

	sql, err := sqlgen.New().Render(q)
	if err != nil {
		return nil, err
	}
	pipeline, err := mongogen.New().Build(q)
	if err != nil {
		return nil, err
	}

	t := &Translation{Text: text, SQL: sql, Collection: pipeline.Collection, Stages: []json.RawMessage{}}
	for _, stage := range pipeline.Stages {
		encoded, err := bson.MarshalExtJSON(stage, false, false)
		if err != nil {
			return nil, err
		}
		t.Stages = append(t.Stages, encoded)
	}
	return t, nil
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "translate <request text>",
		Short: "Translate a request into SQL and a MongoDB pipeline",
		Long: `Translate a plain-language request into relational query text and the
equivalent MongoDB aggregation pipeline, without touching any backend.

The request resolves against a catalog file listing the known entities:

  entities:
    - name: orders
      fields: [id, status, total]

Example:
  querychat translate --catalog catalog.yaml count orders grouped by status`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}

			cat, err := catalog.LoadFile(catalogPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load catalog", err)
			}

			t, err := translate(strings.Join(args, " "), cat)
			if err != nil {
				_ = out.Error(ErrCodeTranslate, err.Error(), nil)
				return WrapExitError(ExitFailure, "translation failed", err)
			}
			return out.Success(t)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "path to catalog YAML (required)")
	_ = cmd.MarkFlagRequired("catalog")

	return cmd
}
