// Package issues defines the row and issue shapes that flow through a
// reconciliation pass, plus the change detector that decides whether a
// remote issue needs to be updated.
package issues

import (
	"slices"
	"strings"

	"github.com/xbfighting/google-sheet-to-github-issues/pkg/constants"
)

// SentinelTitle is assigned to rows without a usable title.
const SentinelTitle = constants.UntitledIssue

// State is the open/closed state of an issue.
type State string

// Issue states.
const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// Row is one data row of the sheet, keyed by header name.
type Row struct {
	// ID is stable across passes: "row-<n>" where n is the 1-based grid row.
	ID string `json:"id" yaml:"id"`
	// Columns holds the header names in sheet order.
	Columns []string `json:"columns,omitempty" yaml:"columns,omitempty"`
	// Fields maps header name to cell text. Missing cells are "".
	Fields map[string]string `json:"fields" yaml:"fields"`
}

// Get returns the cell value for column and whether the column exists.
func (r Row) Get(column string) (string, bool) {
	v, ok := r.Fields[column]
	return v, ok
}

// TargetIssue is the desired state of an issue derived from one row.
type TargetIssue struct {
	Title  string   `json:"title" yaml:"title"`
	Body   *string  `json:"body,omitempty" yaml:"body,omitempty"`
	Labels []string `json:"labels,omitempty" yaml:"labels,omitempty"`
	// Assignees is nil when no mapping targets assignees.
	Assignees []string `json:"assignees,omitempty" yaml:"assignees,omitempty"`
	// State is nil when no mapping targets state.
	State *State `json:"state,omitempty" yaml:"state,omitempty"`
}

// HasTitle reports whether the issue carries a real title.
func (t TargetIssue) HasTitle() bool {
	return strings.TrimSpace(t.Title) != "" && t.Title != SentinelTitle
}

// BodyText returns the body, or "" when absent.
func (t TargetIssue) BodyText() string {
	if t.Body == nil {
		return ""
	}
	return *t.Body
}

// RemoteIssue is an issue as read back from the tracker.
type RemoteIssue struct {
	Number    int      `json:"number" yaml:"number"`
	Title     string   `json:"title" yaml:"title"`
	Body      string   `json:"body" yaml:"body"`
	State     State    `json:"state" yaml:"state"`
	Labels    []string `json:"labels" yaml:"labels"`
	Assignees []string `json:"assignees" yaml:"assignees"`
	URL       string   `json:"html_url,omitempty" yaml:"url,omitempty"`
}

// NeedsUpdate reports whether pushing target would change remote.
// Label and assignee comparison ignores order. Fields the target does not
// manage (nil state, nil assignees) never count as a difference.
func NeedsUpdate(remote RemoteIssue, target TargetIssue) bool {
	return len(Diff(remote, target)) > 0
}

// Diff lists the fields that differ between remote and target.
func Diff(remote RemoteIssue, target TargetIssue) []string {
	var fields []string
	if remote.Title != target.Title {
		fields = append(fields, "title")
	}
	if remote.Body != target.BodyText() {
		fields = append(fields, "body")
	}
	if target.State != nil && remote.State != *target.State {
		fields = append(fields, "state")
	}
	if !sameSet(remote.Labels, target.Labels) {
		fields = append(fields, "labels")
	}
	if target.Assignees != nil && !sameSet(remote.Assignees, target.Assignees) {
		fields = append(fields, "assignees")
	}
	return fields
}

// sameSet compares a and b as sorted sequences.
func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := slices.Clone(a)
	bs := slices.Clone(b)
	slices.Sort(as)
	slices.Sort(bs)
	return slices.Equal(as, bs)
}
