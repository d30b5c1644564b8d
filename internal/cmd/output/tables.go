package output

import (
	"io"
	"strconv"
	"strings"

	sheetsync "github.com/xbfighting/google-sheet-to-github-issues"
	"github.com/xbfighting/google-sheet-to-github-issues/internal/cmd/emoji"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/constants"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/identity"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/issues"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/mapping"
)

// ResultTable lists row outcomes. Wide adds the changed fields and the
// error text.
func ResultTable(r *sheetsync.Result, wide bool) Data {
	d := Data{Headers: []string{"", "Row", "Issue", "Action", "Reason", "Title"}}
	if wide {
		d.Headers = append(d.Headers, "Changed", "Error")
	}
	for _, o := range r.Outcomes {
		reason := string(o.Reason)
		if o.Action == sheetsync.ActionErrored {
			reason = o.Operation
		}
		row := []string{
			emoji.ForAction(string(o.Action)),
			o.RowID,
			issueRef(o.IssueNumber),
			string(o.Action),
			reason,
			truncate(o.Title, 60),
		}
		if wide {
			row = append(row, strings.Join(o.Changed, ","), o.Error)
		}
		d.Rows = append(d.Rows, row)
	}
	return d
}

// RecordsTable lists identity records. When remote is non-nil a Remote
// column shows each linked issue's state, or "missing" when the issue is
// gone from the repository.
func RecordsTable(records []identity.Record, remote map[int]issues.RemoteIssue) Data {
	d := Data{
		Headers:   []string{"Row", "Issue", "Title", "Created", "Updated"},
		Alignment: []Align{AlignLeft, AlignRight, AlignLeft, AlignLeft, AlignLeft},
	}
	if remote != nil {
		d.Headers = append(d.Headers, "Remote")
		d.Alignment = append(d.Alignment, AlignLeft)
	}
	for _, r := range records {
		row := []string{
			r.RowID,
			issueRef(r.IssueNumber),
			truncate(r.Title, 60),
			r.CreatedAt.Format(constants.TimeFormatHuman),
			r.UpdatedAt.Format(constants.TimeFormatHuman),
		}
		if remote != nil {
			row = append(row, RemoteState(remote, r.IssueNumber))
		}
		d.Rows = append(d.Rows, row)
	}
	return d
}

// RemoteState returns the state of issue number in remote, or "missing".
func RemoteState(remote map[int]issues.RemoteIssue, number int) string {
	issue, ok := remote[number]
	if !ok {
		return "missing"
	}
	return string(issue.State)
}

// MappingsTable lists field mappings.
func MappingsTable(mappings []mapping.FieldMapping) Data {
	d := Data{Headers: []string{"Column", "Field", "Transform"}}
	for _, m := range mappings {
		d.Rows = append(d.Rows, []string{m.Source, string(m.Target), string(m.Kind())})
	}
	return d
}

// HeadersTable lists sheet columns and the fields they feed.
func HeadersTable(headers []string, mappings []mapping.FieldMapping) Data {
	d := Data{Headers: []string{"#", "Column", "Mapped To"}}
	for i, h := range headers {
		var targets []string
		for _, m := range mappings {
			if m.Source == h {
				targets = append(targets, m.String())
			}
		}
		mapped := strings.Join(targets, "; ")
		if mapped == "" {
			mapped = emoji.Skipped
		}
		d.Rows = append(d.Rows, []string{strconv.Itoa(i + 1), h, mapped})
	}
	return d
}

func issueRef(n int) string {
	if n <= 0 {
		return ""
	}
	return "#" + strconv.Itoa(n)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// Print renders table for table formats and raw otherwise.
func Print(w io.Writer, format Format, table Data, raw any) error {
	if format.IsTable() {
		return NewFormatter(FormatTable).Format(w, table)
	}
	return NewFormatter(format).Format(w, raw)
}
