package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/querychat/querychat/internal/catalog"
	"github.com/querychat/querychat/internal/executor"
	"github.com/querychat/querychat/internal/session"
)

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Discover and print the entities a backend exposes",
		Long: `Connect to the chosen backend, discover its tables or collections with
their fields, and print the resulting catalog.

Example:
  querychat catalog --backend relational
  querychat catalog --backend document --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}

			cfg, err := LoadConfig(rootOpts.Config)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}

			var snapshot *catalog.Snapshot
			switch session.Backend(backend) {
			case session.BackendRelational:
				rel, err := executor.OpenRelational(cfg.SQLitePath)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to open database", err)
				}
				defer rel.Close()
				snapshot, err = catalog.DiscoverRelational(cmd.Context(), rel.DB())
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to discover catalog", err)
				}
			case session.BackendDocument:
				doc, err := executor.ConnectDocument(cmd.Context(), cfg.MongoURI, cfg.MongoDatabase)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to connect to document store", err)
				}
				defer func() { _ = doc.Close(cmd.Context()) }()
				snapshot, err = catalog.DiscoverDocument(cmd.Context(), doc.Client(), doc.Database())
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to discover catalog", err)
				}
			default:
				return WrapExitError(ExitCommandError, fmt.Sprintf("unknown backend %q", backend), nil)
			}

			if out.Format == "json" {
				return out.Success(snapshot)
			}
			if snapshot.Empty() {
				return out.Success("(no entities)")
			}
			var b strings.Builder
			for i, e := range snapshot.Entities {
				if i > 0 {
					b.WriteByte('\n')
				}
				fmt.Fprintf(&b, "%s: %s", e.Name, strings.Join(e.Fields, ", "))
			}
			return out.Success(b.String())
		},
	}

	cmd.Flags().StringVar(&backend, "backend", string(session.BackendRelational), "backend to inspect (relational|document)")

	return cmd
}
