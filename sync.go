package sheetsync

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/xbfighting/google-sheet-to-github-issues/pkg/errors"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/identity"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/issues"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/logging"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/mapping"
)

// Reconciler runs reconciliation passes.
type Reconciler interface {
	// ReconcileOnce runs a single pass over every row. Row failures are
	// counted in the result; only a failure to read the rows, cancellation,
	// or an overlapping pass is returned as an error.
	ReconcileOnce(ctx context.Context) (*Result, error)

	// ReconcileContinuously runs a pass immediately and then every interval
	// until ctx is cancelled. The first pass's error is returned; later
	// failures are logged.
	ReconcileContinuously(ctx context.Context, interval time.Duration) error
}

// ReconcileOnce implements Reconciler.
func (c *client) ReconcileOnce(ctx context.Context) (*Result, error) {
	// Step 0: Set context
	if ctx == nil {
		ctx = context.Background()
	}

	// Step 1: Refuse to overlap with a running pass
	if !c.pass.TryAcquire(1) {
		return nil, errors.ErrPassInProgress
	}
	defer c.pass.Release(1)

	start := time.Now()
	o := c.options
	log := logging.FromContextOr(ctx, c.logger)
	ctx = logging.WithLogger(ctx, log)
	log.Info().
		Str("spreadsheet", o.spreadsheetID).
		Str("sheet", o.sheetName).
		Bool("dry_run", o.dryRun).
		Msg("Starting reconciliation pass")

	// Step 2: Read the rows
	rows, err := o.source.FetchRows(ctx, o.spreadsheetID, o.sheetName)
	if err != nil {
		log.Error().Err(err).Msg("Reconciliation pass failed")
		var resErr *errors.ResourceError
		if errors.As(err, &resErr) {
			return nil, err
		}
		return nil, errors.WrapResource("fetch", "rows", o.spreadsheetID, err)
	}
	log.Info().Int("rows", len(rows)).Msg("Fetched rows")

	// Step 3: Reconcile each row in order
	result := newResult(o.dryRun)
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			log.Warn().Err(err).Int("processed", result.Total()).Msg("Reconciliation pass cancelled")
			return result, err
		}
		outcome := c.reconcileRow(ctx, row)
		result.add(outcome)
		c.hooks.trigger(outcome)
	}

	// Step 4: Log the summary
	result.Duration = time.Since(start)
	log.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("errored", result.Errored).
		Dur("duration", result.Duration).
		Msg("Reconciliation pass completed")

	return result, nil
}

// rowRun carries the per-row state through the decision steps.
type rowRun struct {
	c      *client
	row    issues.Row
	target issues.TargetIssue
	log    zerolog.Logger
}

func (c *client) reconcileRow(ctx context.Context, row issues.Row) (out RowOutcome) {
	ctx = logging.WithRow(ctx, row.ID)
	r := &rowRun{
		c:   c,
		row: row,
		log: *logging.FromContext(ctx),
	}

	// A panicking source or tracker fails the row, not the pass.
	defer func() {
		if p := recover(); p != nil {
			out = r.failed("panic", 0, fmt.Errorf("panic: %v", p))
		}
	}()

	r.target = mapping.Apply(row, c.options.mappings)

	if !r.target.HasTitle() {
		r.log.Warn().Msg("Skipping row: no valid title found")
		return r.skipped(ReasonNoTitle, 0)
	}

	rec, mapped := c.options.store.Get(row.ID)
	if !mapped {
		if n, ok := r.seededIssueNumber(); ok {
			if !c.options.dryRun {
				if err := r.link(n); err != nil {
					return r.failed("link", n, err)
				}
			}
			rec, mapped = identity.Record{RowID: row.ID, IssueNumber: n, Title: r.target.Title}, true
		}
	}

	if mapped {
		return r.reconcileMapped(ctx, rec)
	}
	return r.reconcileUnmapped(ctx)
}

func (r *rowRun) reconcileMapped(ctx context.Context, rec identity.Record) RowOutcome {
	o := r.c.options
	ctx = logging.WithIssue(ctx, rec.IssueNumber)
	log := *logging.FromContext(ctx)

	remote, err := o.tracker.GetIssue(ctx, rec.IssueNumber)
	if err != nil {
		return r.failed("lookup", rec.IssueNumber, err)
	}

	if remote == nil {
		if o.skipDeleted {
			log.Warn().Msg("Issue was deleted upstream, skipping recreation")
			return r.skipped(ReasonDeletedUpstream, rec.IssueNumber)
		}
		log.Warn().Msg("Issue not found upstream, creating a new one")
		return r.create(ctx, ReasonRecreated)
	}

	if o.respectRemoteChanges {
		log.Info().Str("title", r.target.Title).Msg("Respecting remote changes")
		return r.skipped(ReasonRemoteRespected, rec.IssueNumber)
	}

	changed := issues.Diff(*remote, r.target)
	if len(changed) == 0 {
		log.Debug().Str("title", r.target.Title).Msg("No changes")
		return r.skipped(ReasonUnchanged, rec.IssueNumber)
	}

	log.Debug().Strs("changed", changed).Msg("Issue differs from row")
	out := r.update(ctx, rec.IssueNumber, ReasonChanged)
	out.Changed = changed
	if out.Action == ActionUpdated && !o.dryRun && rec.Title != r.target.Title {
		if err := r.link(rec.IssueNumber); err != nil {
			log.Warn().Err(err).Msg("Failed to refresh identity record")
		}
	}
	return out
}

func (r *rowRun) reconcileUnmapped(ctx context.Context) RowOutcome {
	number, found, err := r.c.options.tracker.FindIssueByTitle(ctx, r.target.Title)
	if err != nil {
		r.log.Warn().Err(err).Msg("Title search failed, treating as not found")
		found = false
	}
	if !found {
		return r.create(ctx, ReasonNew)
	}

	r.log.Info().Int("issue", number).Str("title", r.target.Title).Msg("Found existing issue by title")
	if !r.c.options.dryRun {
		if err := r.link(number); err != nil {
			return r.failed("link", number, err)
		}
	}
	return r.update(ctx, number, ReasonAdopted)
}

func (r *rowRun) create(ctx context.Context, reason Reason) RowOutcome {
	o := r.c.options
	if o.dryRun {
		r.log.Info().Str("title", r.target.Title).Msg("Would create issue")
		return r.outcome(ActionCreated, reason, 0)
	}

	number, err := o.tracker.CreateIssue(ctx, r.target)
	if err != nil {
		// The issue may exist even though a follow-up step failed. Link it
		// so the next pass updates it instead of creating another one.
		if number > 0 {
			if linkErr := r.link(number); linkErr != nil {
				r.log.Warn().Err(linkErr).Int("issue", number).Msg("Failed to link partially created issue")
			}
		}
		return r.failed("create", number, err)
	}
	if err := r.link(number); err != nil {
		return r.failed("link", number, err)
	}
	r.log.Info().Int("issue", number).Str("title", r.target.Title).Msg("Created issue")
	return r.outcome(ActionCreated, reason, number)
}

func (r *rowRun) update(ctx context.Context, number int, reason Reason) RowOutcome {
	o := r.c.options
	if o.dryRun {
		r.log.Info().Int("issue", number).Str("title", r.target.Title).Msg("Would update issue")
		return r.outcome(ActionUpdated, reason, number)
	}

	if err := o.tracker.UpdateIssue(ctx, number, r.target); err != nil {
		return r.failed("update", number, err)
	}
	r.log.Info().Int("issue", number).Str("title", r.target.Title).Msg("Updated issue")
	return r.outcome(ActionUpdated, reason, number)
}

func (r *rowRun) link(number int) error {
	return r.c.options.store.Set(r.row.ID, number, r.target.Title)
}

// seededIssueNumber reads the optional issue-number column.
func (r *rowRun) seededIssueNumber() (int, bool) {
	col := r.c.options.issueNumberColumn
	if col == "" {
		return 0, false
	}
	raw, _ := r.row.Get(col)
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(raw), "#"))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func (r *rowRun) outcome(action Action, reason Reason, number int) RowOutcome {
	return RowOutcome{
		RowID:       r.row.ID,
		Title:       r.target.Title,
		Action:      action,
		Reason:      reason,
		IssueNumber: number,
	}
}

func (r *rowRun) skipped(reason Reason, number int) RowOutcome {
	return r.outcome(ActionSkipped, reason, number)
}

func (r *rowRun) failed(operation string, number int, err error) RowOutcome {
	rowErr := errors.NewRowError(r.row.ID, operation, err)
	ev := r.log.Error().Err(err).Str("operation", operation)
	if number > 0 {
		ev = ev.Int("issue", number)
	}
	ev.Msg("Error processing row")

	out := r.outcome(ActionErrored, "", number)
	out.Operation = operation
	out.Err = rowErr
	out.Error = err.Error()
	return out
}
