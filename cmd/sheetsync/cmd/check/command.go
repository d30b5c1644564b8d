// Package check provides the test command, which verifies the Google Sheets
// and GitHub configuration without changing anything.
package check

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xbfighting/google-sheet-to-github-issues/internal/appcontext"
	"github.com/xbfighting/google-sheet-to-github-issues/internal/cmd/emoji"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/errors"
)

// NewCommand creates the test command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "test",
		GroupID: "management",
		Short:   "Test connections to Google Sheets and GitHub",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			failed := 0

			fmt.Fprintln(w, "Testing Google Sheets connection...")
			headers, err := app.Headers(cmd.Context())
			if err != nil {
				failed++
				fmt.Fprintf(w, "  %s Google Sheets: %v\n", emoji.Error, err)
				printHint(w, sheetsHint(err))
			} else {
				fmt.Fprintf(w, "  %s Found %d columns: %s\n", emoji.Success, len(headers), strings.Join(headers, ", "))
			}

			fmt.Fprintln(w, "Testing GitHub connection...")
			repo, err := app.CheckRepository(cmd.Context())
			if err != nil {
				failed++
				fmt.Fprintf(w, "  %s GitHub: %v\n", emoji.Error, err)
				printHint(w, githubHint(err))
			} else {
				fmt.Fprintf(w, "  %s Repository %s is reachable\n", emoji.Success, repo.FullName)
			}

			if failed > 0 {
				return fmt.Errorf("%d connection check(s) failed", failed)
			}
			return nil
		},
	}
}

func githubHint(err error) string {
	switch {
	case errors.IsUnauthorized(err):
		return "GITHUB_TOKEN was rejected; check it is valid and not expired"
	case errors.IsNotFound(err):
		return "check GITHUB_OWNER and GITHUB_REPO, and that the token can see the repository"
	case errors.IsRateLimited(err):
		return "the GitHub rate limit is exhausted; wait for it to reset"
	case errors.IsTrackerUnavailable(err):
		return "GitHub is unavailable; try again later"
	}
	return ""
}

func sheetsHint(err error) string {
	switch {
	case errors.IsUnauthorized(err):
		return "check GOOGLE_CREDENTIALS_PATH points at a valid service account key"
	case errors.IsNotFound(err):
		return "check SPREADSHEET_ID and SHEET_NAME, and share the sheet with the service account"
	}
	return ""
}

func printHint(w io.Writer, hint string) {
	if hint != "" {
		fmt.Fprintf(w, "    %s %s\n", emoji.Info, hint)
	}
}
