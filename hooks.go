package sheetsync

import (
	"sync"
)

// Hook function types for row outcomes
type (
	// IssueCreatedHook is called after an issue is created for a row
	IssueCreatedHook func(outcome RowOutcome)

	// IssueUpdatedHook is called after a linked issue is updated
	IssueUpdatedHook func(outcome RowOutcome)

	// RowSkippedHook is called when a row needs no remote write
	RowSkippedHook func(outcome RowOutcome)

	// RowFailedHook is called when a row could not be reconciled
	RowFailedHook func(outcome RowOutcome)
)

// Hooks registers callbacks fired once per row, in row order, on the
// goroutine running the pass.
type Hooks interface {
	OnIssueCreated(fn IssueCreatedHook)
	OnIssueUpdated(fn IssueUpdatedHook)
	OnRowSkipped(fn RowSkippedHook)
	OnRowFailed(fn RowFailedHook)
}

type hooks struct {
	mu             sync.RWMutex
	onIssueCreated []IssueCreatedHook
	onIssueUpdated []IssueUpdatedHook
	onRowSkipped   []RowSkippedHook
	onRowFailed    []RowFailedHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnIssueCreated implements Hooks.
func (c *client) OnIssueCreated(fn IssueCreatedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onIssueCreated = append(c.hooks.onIssueCreated, fn)
}

// OnIssueUpdated implements Hooks.
func (c *client) OnIssueUpdated(fn IssueUpdatedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onIssueUpdated = append(c.hooks.onIssueUpdated, fn)
}

// OnRowSkipped implements Hooks.
func (c *client) OnRowSkipped(fn RowSkippedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onRowSkipped = append(c.hooks.onRowSkipped, fn)
}

// OnRowFailed implements Hooks.
func (c *client) OnRowFailed(fn RowFailedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onRowFailed = append(c.hooks.onRowFailed, fn)
}

// trigger dispatches outcome to the hooks registered for its action.
func (h *hooks) trigger(outcome RowOutcome) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	switch outcome.Action {
	case ActionCreated:
		for _, fn := range h.onIssueCreated {
			fn(outcome)
		}
	case ActionUpdated:
		for _, fn := range h.onIssueUpdated {
			fn(outcome)
		}
	case ActionSkipped:
		for _, fn := range h.onRowSkipped {
			fn(outcome)
		}
	case ActionErrored:
		for _, fn := range h.onRowFailed {
			fn(outcome)
		}
	}
}
