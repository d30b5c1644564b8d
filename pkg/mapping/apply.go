package mapping

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/xbfighting/google-sheet-to-github-issues/internal/utils/ptr"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/issues"
)

// FallbackTitleColumns are probed, in order, when no mapping produced a title.
var FallbackTitleColumns = []string{"Feature / Issue", "Title", "title", "Name", "name"}

var closedStatuses = []string{"done", "fixed", "completed"}

// value is a transformed cell: either a scalar or a list.
type value struct {
	scalar string
	list   []string
	isList bool
}

// Apply builds the target issue for row. Mappings are applied in order;
// absent or empty cells are skipped, scalar targets are overwritten by
// later mappings, and list output aimed at labels accumulates.
func Apply(row issues.Row, mappings []FieldMapping) issues.TargetIssue {
	target := issues.TargetIssue{Title: issues.SentinelTitle, Labels: []string{}}

	for _, m := range mappings {
		raw, ok := row.Get(m.Source)
		if !ok || raw == "" {
			continue
		}
		assign(&target, m.Target, transform(m.Kind(), raw))
	}

	if !target.HasTitle() {
		target.Title = issues.SentinelTitle
		for _, col := range FallbackTitleColumns {
			if v, _ := row.Get(col); v != "" {
				target.Title = v
				break
			}
		}
	}
	return target
}

func transform(kind Kind, raw string) value {
	switch kind {
	case KindLabel:
		return value{list: []string{raw}, isList: true}
	case KindPhase:
		return value{list: []string{"phase-" + raw}, isList: true}
	case KindStatus:
		return value{scalar: string(Status(raw))}
	case KindList:
		return value{list: SplitList(raw), isList: true}
	default:
		return value{scalar: raw}
	}
}

func assign(target *issues.TargetIssue, field Target, v value) {
	switch field {
	case TargetTitle:
		target.Title = v.text()
	case TargetBody:
		target.Body = ptr.String(v.text())
	case TargetLabels:
		if v.isList {
			target.Labels = append(target.Labels, v.list...)
		} else {
			target.Labels = append(target.Labels, v.scalar)
		}
	case TargetAssignees:
		if v.isList {
			target.Assignees = v.list
		} else {
			target.Assignees = SplitList(v.scalar)
		}
	case TargetState:
		state := parseState(v.text())
		target.State = &state
	}
}

func (v value) text() string {
	if v.isList {
		return strings.Join(v.list, ", ")
	}
	return v.scalar
}

// parseState accepts a literal issue state and otherwise interprets raw as
// status text.
func parseState(raw string) issues.State {
	if folded := foldCase(raw); folded == string(issues.StateClosed) {
		return issues.StateClosed
	}
	return Status(raw)
}

// Status maps free-form status text onto an issue state.
func Status(raw string) issues.State {
	folded := foldCase(raw)
	for _, s := range closedStatuses {
		if folded == s {
			return issues.StateClosed
		}
	}
	return issues.StateOpen
}

// SplitList splits a comma-separated cell into trimmed, non-empty items.
func SplitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// foldCase trims and case-folds s. Casers are stateful, so a new one is
// built per call.
func foldCase(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
