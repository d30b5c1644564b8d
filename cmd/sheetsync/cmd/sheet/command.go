// Package sheet provides the headers command.
package sheet

import (
	"github.com/spf13/cobra"

	"github.com/xbfighting/google-sheet-to-github-issues/internal/appcontext"
	"github.com/xbfighting/google-sheet-to-github-issues/internal/cmd/output"
)

type headersView struct {
	Columns  []string `json:"columns" yaml:"columns"`
	Mappings any      `json:"mappings" yaml:"mappings"`
}

// NewHeadersCommand creates the headers command.
func NewHeadersCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "headers",
		GroupID: "management",
		Short:   "Show the sheet columns and the fields they map to",
		Long: `Headers prints the header row of the configured sheet next to the field
mappings that read each column. Columns without a mapping are ignored by sync.

Set MAPPINGS_FILE to a YAML file (see "sheetsync mappings -o yaml") to
customize the mappings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			headers, err := app.Headers(cmd.Context())
			if err != nil {
				return err
			}
			mappings, err := app.Mappings()
			if err != nil {
				return err
			}
			format := output.DetectFormat(app.OutputFormat())
			return output.Print(cmd.OutOrStdout(), format,
				output.HeadersTable(headers, mappings),
				headersView{Columns: headers, Mappings: mappings})
		},
	}
}
