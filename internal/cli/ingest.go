package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/querychat/querychat/internal/executor"
	"github.com/querychat/querychat/internal/ingest"
)

// NewIngestCommand creates the ingest command with its csv and json
// subcommands.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load data files into a backend",
	}
	cmd.AddCommand(newIngestCSVCommand(rootOpts))
	cmd.AddCommand(newIngestJSONCommand(rootOpts))
	return cmd
}

func newIngestCSVCommand(rootOpts *RootOptions) *cobra.Command {
	var table string

	cmd := &cobra.Command{
		Use:   "csv <file>",
		Short: "Load a CSV file into a SQLite table",
		Long: `Load a CSV file into the relational backend. The first record is the
header; the table is created if missing, with column types inferred from
the data. The table name defaults to the file name without extension.

Example:
  querychat ingest csv ./cars.csv
  querychat ingest csv ./export.csv --table cars`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}

			cfg, err := LoadConfig(rootOpts.Config)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			if table == "" {
				table = baseName(args[0])
			}

			rel, err := executor.OpenRelational(cfg.SQLitePath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer rel.Close()

			n, err := ingest.CSVFile(cmd.Context(), rel.DB(), args[0], table)
			if err != nil {
				_ = out.Error(ErrCodeIngest, err.Error(), nil)
				return WrapExitError(ExitFailure, "ingest failed", err)
			}
			return out.Success(fmt.Sprintf("loaded %d rows into table %q", n, table))
		},
	}

	cmd.Flags().StringVar(&table, "table", "", "target table name (defaults to the file name)")
	return cmd
}

func newIngestJSONCommand(rootOpts *RootOptions) *cobra.Command {
	var collection string

	cmd := &cobra.Command{
		Use:   "json <file>",
		Short: "Load a JSON file into a MongoDB collection",
		Long: `Load a JSON file into the document backend. A top-level object inserts
one document; a top-level array inserts one document per element. The
collection name defaults to the file name without extension.

Example:
  querychat ingest json ./orders.json
  querychat ingest json ./dump.json --collection orders`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}

			cfg, err := LoadConfig(rootOpts.Config)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			if collection == "" {
				collection = baseName(args[0])
			}

			doc, err := executor.ConnectDocument(cmd.Context(), cfg.MongoURI, cfg.MongoDatabase)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to connect to document store", err)
			}
			defer func() { _ = doc.Close(cmd.Context()) }()

			n, err := ingest.JSONFile(cmd.Context(), doc.Client().Database(doc.Database()), args[0], collection)
			if err != nil {
				_ = out.Error(ErrCodeIngest, err.Error(), nil)
				return WrapExitError(ExitFailure, "ingest failed", err)
			}
			return out.Success(fmt.Sprintf("loaded %d documents into collection %q", n, collection))
		},
	}

	cmd.Flags().StringVar(&collection, "collection", "", "target collection name (defaults to the file name)")
	return cmd
}

// baseName strips the directory and extension from a path.
func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
