// Package mappings provides the mappings command.
package mappings

import (
	"github.com/spf13/cobra"

	"github.com/xbfighting/google-sheet-to-github-issues/internal/appcontext"
	"github.com/xbfighting/google-sheet-to-github-issues/internal/cmd/output"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/mapping"
)

// NewCommand creates the mappings command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "mappings",
		GroupID: "management",
		Short:   "Print the effective field mappings",
		Example: `  sheetsync mappings                       # Table
  sheetsync mappings -o yaml > mappings.yaml  # Starting point for MAPPINGS_FILE`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := app.Mappings()
			if err != nil {
				return err
			}
			format := output.DetectFormat(app.OutputFormat())
			return output.Print(cmd.OutOrStdout(), format, output.MappingsTable(m), mapping.File{Mappings: m})
		},
	}
}
