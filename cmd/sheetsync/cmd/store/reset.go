package store

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xbfighting/google-sheet-to-github-issues/internal/appcontext"
	"github.com/xbfighting/google-sheet-to-github-issues/internal/cmd/emoji"
)

// NewResetCommand creates the reset command.
func NewResetCommand(app appcontext.Interface) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "reset",
		GroupID: "management",
		Short:   "Clear the row-to-issue mappings",
		Long: `Reset removes every row-to-issue link. The next sync treats every row as
new: rows whose title matches an existing issue adopt it, the rest create new
issues. Issues on GitHub are not touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.Store()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if !yes {
				fmt.Fprintf(w, "Remove %d row mapping(s)? [y/N]: ", s.Len())
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				switch strings.ToLower(strings.TrimSpace(answer)) {
				case "y", "yes":
				default:
					fmt.Fprintln(w, "Aborted.")
					return nil
				}
			}

			n := s.Len()
			if err := s.Clear(); err != nil {
				return err
			}
			app.Logger().Info().Int("records", n).Msg("Identity store cleared")
			fmt.Fprintf(w, "%s Issue mappings have been reset. The next sync will treat all rows as new.\n", emoji.Success)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}
