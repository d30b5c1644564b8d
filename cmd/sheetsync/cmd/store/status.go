// Package store provides the status and reset commands, which inspect and
// clear the row-to-issue identity store.
package store

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xbfighting/google-sheet-to-github-issues/internal/appcontext"
	"github.com/xbfighting/google-sheet-to-github-issues/internal/cmd/emoji"
	"github.com/xbfighting/google-sheet-to-github-issues/internal/cmd/output"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/identity"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/issues"
)

// verifiedRecord is a record plus the state of its issue on GitHub.
type verifiedRecord struct {
	identity.Record `yaml:",inline"`
	Remote          string `json:"remote" yaml:"remote"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(app appcontext.Interface) *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:     "status",
		GroupID: "management",
		Short:   "List the rows linked to GitHub issues",
		Long: `Status lists every row-to-issue link in the identity store.

With --verify, the repository's issues are listed and each link is marked
with its issue's state, or "missing" when the issue no longer exists. The
next sync recreates missing issues unless SKIP_DELETED is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.Store()
			if err != nil {
				return err
			}
			records := s.List()
			format := output.DetectFormat(app.OutputFormat())

			if format.IsTable() && len(records) == 0 {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s No rows are linked yet. Run \"sheetsync sync\" first.\n", emoji.Info)
				return err
			}
			if !verify {
				return output.Print(cmd.OutOrStdout(), format, output.RecordsTable(records, nil), records)
			}

			list, err := app.Issues(cmd.Context())
			if err != nil {
				return err
			}
			remote := make(map[int]issues.RemoteIssue, len(list))
			for _, issue := range list {
				remote[issue.Number] = issue
			}

			verified := make([]verifiedRecord, 0, len(records))
			missing := 0
			for _, r := range records {
				state := output.RemoteState(remote, r.IssueNumber)
				if _, ok := remote[r.IssueNumber]; !ok {
					missing++
				}
				verified = append(verified, verifiedRecord{Record: r, Remote: state})
			}
			if missing > 0 {
				app.Logger().Warn().Int("missing", missing).Msg("Linked issues not found in repository")
			}
			return output.Print(cmd.OutOrStdout(), format, output.RecordsTable(records, remote), verified)
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "check each linked issue still exists on GitHub")

	return cmd
}
