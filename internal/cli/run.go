package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/querychat/querychat/internal/catalog"
	"github.com/querychat/querychat/internal/executor"
	"github.com/querychat/querychat/internal/extract"
	"github.com/querychat/querychat/internal/format"
	"github.com/querychat/querychat/internal/mongogen"
	"github.com/querychat/querychat/internal/session"
	"github.com/querychat/querychat/internal/sqlgen"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "run <request text>",
		Short: "Translate a request and run it against a backend",
		Long: `Translate a plain-language request and execute it against the chosen
backend. The catalog is discovered from the backend itself, so whatever has
been ingested is queryable by name.

Example:
  querychat run --backend relational show cars where price greater than 20000
  querychat run --backend document count orders grouped by status`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}

			cfg, err := LoadConfig(rootOpts.Config)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			b := session.Backend(backend)
			if !b.Valid() {
				return WrapExitError(ExitCommandError,
					fmt.Sprintf("unknown backend %q: must be %s or %s", backend, session.BackendRelational, session.BackendDocument), nil)
			}

			text := strings.Join(args, " ")
			switch b {
			case session.BackendRelational:
				return runRelational(cmd.Context(), out, cfg, text)
			default:
				return runDocument(cmd.Context(), out, cfg, text)
			}
		},
	}

	cmd.Flags().StringVar(&backend, "backend", string(session.BackendRelational), "backend to run against (relational|document)")

	return cmd
}

func runRelational(ctx context.Context, out *OutputFormatter, cfg Config, text string) error {
	rel, err := executor.OpenRelational(cfg.SQLitePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer rel.Close()

	cat, err := catalog.DiscoverRelational(ctx, rel.DB())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to discover catalog", err)
	}

	sess := session.New(session.UUIDv7Generator{}, session.BackendRelational, *cat)
	slog.Debug("session opened", "token", sess.Token, "backend", sess.Backend)

	return sess.Do(func() error {
		q, err := extract.Default().Extract(text, &sess.Catalog)
		if err != nil {
			_ = out.Error(ErrCodeTranslate, err.Error(), nil)
			return WrapExitError(ExitFailure, "translation failed", err)
		}
		sql, err := sqlgen.New().Render(q)
		if err != nil {
			_ = out.Error(ErrCodeTranslate, err.Error(), nil)
			return WrapExitError(ExitFailure, "translation failed", err)
		}
		slog.Info("running relational query", "session", sess.Token, "sql", sql)

		result, err := rel.Query(ctx, sql)
		if err != nil {
			_ = out.Error(ErrCodeExecute, err.Error(), nil)
			return WrapExitError(ExitFailure, "query failed", err)
		}
		if out.Format == "json" {
			return out.Success(result.Rows)
		}
		return out.Success(format.Table(result))
	})
}

func runDocument(ctx context.Context, out *OutputFormatter, cfg Config, text string) error {
	doc, err := executor.ConnectDocument(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to connect to document store", err)
	}
	defer func() { _ = doc.Close(ctx) }()

	cat, err := catalog.DiscoverDocument(ctx, doc.Client(), doc.Database())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to discover catalog", err)
	}

	sess := session.New(session.UUIDv7Generator{}, session.BackendDocument, *cat)
	slog.Debug("session opened", "token", sess.Token, "backend", sess.Backend)

	return sess.Do(func() error {
		q, err := extract.Default().Extract(text, &sess.Catalog)
		if err != nil {
			_ = out.Error(ErrCodeTranslate, err.Error(), nil)
			return WrapExitError(ExitFailure, "translation failed", err)
		}
		pipeline, err := mongogen.New().Build(q)
		if err != nil {
			_ = out.Error(ErrCodeTranslate, err.Error(), nil)
			return WrapExitError(ExitFailure, "translation failed", err)
		}
		slog.Info("running pipeline", "session", sess.Token, "collection", pipeline.Collection, "stages", len(pipeline.Stages))

		result, err := doc.Aggregate(ctx, pipeline.Collection, pipeline.Stages, cfg.BatchSize)
		if err != nil {
			_ = out.Error(ErrCodeExecute, err.Error(), nil)
			return WrapExitError(ExitFailure, "query failed", err)
		}
		if out.Format == "json" {
			return out.Success(result.Rows)
		}
		return out.Success(strings.Join(format.JSONChunks(result), "\n"))
	})
}
