package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/querychat/querychat/internal/catalog"
)

// sampleCatalog is the built-in demo catalog the sample requests resolve
// against.
func sampleCatalog() *catalog.Snapshot {
	return catalog.New(
		catalog.Entity{Name: "Orders", Fields: []string{"OrderID", "CustomerName", "OrderDate", "TotalAmount", "Status"}},
		catalog.Entity{Name: "Customers", Fields: []string{"CustomerID", "CustomerName", "Country"}},
	)
}

// sampleRequests are the built-in demo requests, one per translation
// feature.
var sampleRequests = []string{
	"count Orders grouped by Status",
	"show Orders where TotalAmount greater than 150",
	"find Orders where TotalAmount between 100 and 200",
	"Orders where Status is not 'Cancelled' order by TotalAmount desc limit 3",
	"Customers where Country in ('USA', 'UK')",
}

// NewSamplesCommand creates the samples command.
func NewSamplesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "samples",
		Short: "Translate the built-in sample requests",
		Long: `Translate a set of built-in sample requests against a demo catalog and
print both renderings for each. Useful as a quick smoke check and as a tour
of the supported phrasings.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			cat := sampleCatalog()

			translations := make([]*Translation, 0, len(sampleRequests))
			for _, text := range sampleRequests {
				t, err := translate(text, cat)
				if err != nil {
					_ = out.Error(ErrCodeTranslate, err.Error(), map[string]string{"text": text})
					return WrapExitError(ExitFailure, "sample translation failed", err)
				}
				translations = append(translations, t)
			}

			if out.Format == "json" {
				return out.Success(translations)
			}
			var b strings.Builder
			for i, t := range translations {
				if i > 0 {
					b.WriteString("\n\n")
				}
				fmt.Fprintf(&b, "Request:  %s\n%s", t.Text, t.String())
			}
			return out.Success(b.String())
		},
	}
	return cmd
}
