// Package testhelper provides in-memory fakes of the row source and issue
// tracker for reconciliation tests.
package testhelper

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/xbfighting/google-sheet-to-github-issues/pkg/issues"
)

// Rows builds rows with ids row-2, row-3, ... from header and cell lines.
func Rows(header []string, lines ...[]string) []issues.Row {
	rows := make([]issues.Row, 0, len(lines))
	for i, line := range lines {
		fields := make(map[string]string, len(header))
		for j, col := range header {
			if j < len(line) {
				fields[col] = line[j]
			} else {
				fields[col] = ""
			}
		}
		rows = append(rows, issues.Row{
			ID:      fmt.Sprintf("row-%d", i+2),
			Columns: slices.Clone(header),
			Fields:  fields,
		})
	}
	return rows
}

// FakeSource serves a fixed set of rows.
type FakeSource struct {
	mu    sync.Mutex
	rows  []issues.Row
	err   error
	calls int

	// Started, when non-nil, receives a value each time FetchRows begins.
	Started chan struct{}
	// Block, when non-nil, makes FetchRows wait until it is closed or the
	// context ends.
	Block chan struct{}
}

// NewFakeSource returns a source serving rows.
func NewFakeSource(rows ...issues.Row) *FakeSource {
	return &FakeSource{rows: rows}
}

// SetRows replaces the served rows.
func (s *FakeSource) SetRows(rows ...issues.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
}

// SetError makes every fetch fail with err.
func (s *FakeSource) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns the number of fetches.
func (s *FakeSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// FetchRows implements the row source.
func (s *FakeSource) FetchRows(ctx context.Context, _, _ string) ([]issues.Row, error) {
	s.mu.Lock()
	s.calls++
	rows, err := slices.Clone(s.rows), s.err
	started, block := s.Started, s.Block
	s.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Call is one recorded tracker call.
type Call struct {
	Method string
	Number int
	Title  string
}

// FakeTracker is an in-memory issue tracker.
type FakeTracker struct {
	mu     sync.Mutex
	issues map[int]*issues.RemoteIssue
	next   int
	calls  []Call

	// Error injection keyed by method name ("create", "update", "get",
	// "search").
	errs map[string]error
}

// NewFakeTracker returns an empty tracker whose first issue is #1.
func NewFakeTracker() *FakeTracker {
	return &FakeTracker{
		issues: make(map[int]*issues.RemoteIssue),
		next:   1,
		errs:   make(map[string]error),
	}
}

// Seed stores an existing issue.
func (f *FakeTracker) Seed(issue issues.RemoteIssue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if issue.State == "" {
		issue.State = issues.StateOpen
	}
	f.issues[issue.Number] = &issue
	if issue.Number >= f.next {
		f.next = issue.Number + 1
	}
}

// Remove deletes an issue as if it had been deleted upstream.
func (f *FakeTracker) Remove(number int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.issues, number)
}

// Fail makes method return err until cleared with a nil err.
func (f *FakeTracker) Fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, method)
		return
	}
	f.errs[method] = err
}

// Issue returns a copy of issue number.
func (f *FakeTracker) Issue(number int) (issues.RemoteIssue, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	is, ok := f.issues[number]
	if !ok {
		return issues.RemoteIssue{}, false
	}
	return *is, true
}

// Len returns the number of issues.
func (f *FakeTracker) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.issues)
}

// Calls returns the recorded calls in order.
func (f *FakeTracker) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Mutations counts create and update calls.
func (f *FakeTracker) Mutations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == "create" || c.Method == "update" {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls.
func (f *FakeTracker) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// CreateIssue implements the tracker.
func (f *FakeTracker) CreateIssue(_ context.Context, target issues.TargetIssue) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: "create", Title: target.Title})
	if err := f.errs["create"]; err != nil {
		return 0, err
	}
	number := f.next
	f.next++
	is := &issues.RemoteIssue{Number: number, State: issues.StateOpen}
	apply(is, target)
	f.issues[number] = is
	return number, nil
}

// UpdateIssue implements the tracker.
func (f *FakeTracker) UpdateIssue(_ context.Context, number int, target issues.TargetIssue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: "update", Number: number, Title: target.Title})
	if err := f.errs["update"]; err != nil {
		return err
	}
	is, ok := f.issues[number]
	if !ok {
		return fmt.Errorf("issue #%d not found", number)
	}
	apply(is, target)
	return nil
}

// GetIssue implements the tracker.
func (f *FakeTracker) GetIssue(_ context.Context, number int) (*issues.RemoteIssue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: "get", Number: number})
	if err := f.errs["get"]; err != nil {
		return nil, err
	}
	is, ok := f.issues[number]
	if !ok {
		return nil, nil
	}
	cp := *is
	cp.Labels = slices.Clone(is.Labels)
	cp.Assignees = slices.Clone(is.Assignees)
	return &cp, nil
}

// FindIssueByTitle implements the tracker. The lowest matching number wins.
func (f *FakeTracker) FindIssueByTitle(_ context.Context, title string) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: "search", Title: title})
	if err := f.errs["search"]; err != nil {
		return 0, false, err
	}
	best := 0
	for n, is := range f.issues {
		if is.Title == title && (best == 0 || n < best) {
			best = n
		}
	}
	return best, best != 0, nil
}

func apply(is *issues.RemoteIssue, target issues.TargetIssue) {
	is.Title = target.Title
	is.Body = target.BodyText()
	is.Labels = slices.Clone(target.Labels)
	if is.Labels == nil {
		is.Labels = []string{}
	}
	if target.Assignees != nil {
		is.Assignees = slices.Clone(target.Assignees)
	}
	if target.State != nil {
		is.State = *target.State
	}
}
