package reconcile

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	sheetsync "github.com/xbfighting/google-sheet-to-github-issues"
	"github.com/xbfighting/google-sheet-to-github-issues/internal/appcontext"
	"github.com/xbfighting/google-sheet-to-github-issues/internal/cmd/emoji"
	"github.com/xbfighting/google-sheet-to-github-issues/internal/cmd/output"
)

func printResult(cmd *cobra.Command, app appcontext.Interface, result *sheetsync.Result) error {
	format := output.DetectFormat(app.OutputFormat())
	w := cmd.OutOrStdout()

	if !format.IsTable() {
		return output.NewFormatter(format).Format(w, result)
	}

	if len(result.Outcomes) > 0 {
		if err := output.Print(w, format, output.ResultTable(result, format == output.FormatWide), result); err != nil {
			return err
		}
	}

	symbol := emoji.Success
	if result.HasErrors() {
		symbol = emoji.Warning
	}
	_, err := fmt.Fprintf(w, "%s %s in %s\n", symbol, result.Summary(), result.Duration.Round(time.Millisecond))
	return err
}
