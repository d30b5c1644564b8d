package sheetsync

import (
	"fmt"
	"time"
)

// Action is what a pass did with a row.
type Action string

// Row actions.
const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionSkipped Action = "skipped"
	ActionErrored Action = "errored"
)

// Reason qualifies an Action.
type Reason string

// Reasons.
const (
	ReasonNew             Reason = "new"
	ReasonRecreated       Reason = "recreated"
	ReasonChanged         Reason = "changed"
	ReasonAdopted         Reason = "adopted"
	ReasonUnchanged       Reason = "unchanged"
	ReasonNoTitle         Reason = "no-title"
	ReasonDeletedUpstream Reason = "deleted-upstream"
	ReasonRemoteRespected Reason = "remote-respected"
)

// RowOutcome records the decision taken for one row.
type RowOutcome struct {
	RowID       string   `json:"row_id" yaml:"row_id"`
	Title       string   `json:"title" yaml:"title"`
	Action      Action   `json:"action" yaml:"action"`
	Reason      Reason   `json:"reason,omitempty" yaml:"reason,omitempty"`
	IssueNumber int      `json:"issue_number,omitempty" yaml:"issue_number,omitempty"`
	Changed     []string `json:"changed,omitempty" yaml:"changed,omitempty"`
	Operation   string   `json:"operation,omitempty" yaml:"operation,omitempty"`
	Error       string   `json:"error,omitempty" yaml:"error,omitempty"`
	Err         error    `json:"-" yaml:"-"`
}

// Result aggregates one pass.
type Result struct {
	Created  int           `json:"created" yaml:"created"`
	Updated  int           `json:"updated" yaml:"updated"`
	Skipped  int           `json:"skipped" yaml:"skipped"`
	Errored  int           `json:"errored" yaml:"errored"`
	DryRun   bool          `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Outcomes []RowOutcome  `json:"outcomes" yaml:"outcomes"`
}

func newResult(dryRun bool) *Result {
	return &Result{DryRun: dryRun, Outcomes: []RowOutcome{}}
}

func (r *Result) add(o RowOutcome) {
	switch o.Action {
	case ActionCreated:
		r.Created++
	case ActionUpdated:
		r.Updated++
	case ActionSkipped:
		r.Skipped++
	case ActionErrored:
		r.Errored++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Total is the number of rows processed.
func (r *Result) Total() int {
	return r.Created + r.Updated + r.Skipped + r.Errored
}

// HasErrors reports whether any row failed.
func (r *Result) HasErrors() bool {
	return r.Errored > 0
}

// Summary is a one-line description of the counters.
func (r *Result) Summary() string {
	s := fmt.Sprintf("Created %d, Updated %d, Skipped %d, Errored %d", r.Created, r.Updated, r.Skipped, r.Errored)
	if r.DryRun {
		s += " (dry run)"
	}
	return s
}
