// Package identity persists the mapping between sheet rows and the issues
// created for them. The mapping is what makes repeated reconciliation passes
// converge instead of creating duplicates.
package identity

import (
	"github.com/agentstation/utc"
)

// Record links one row to one issue.
type Record struct {
	RowID       string   `json:"rowId" yaml:"row_id"`
	IssueNumber int      `json:"issueNumber" yaml:"issue_number"`
	Title       string   `json:"title" yaml:"title"`
	CreatedAt   utc.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt   utc.Time `json:"updatedAt" yaml:"updated_at"`
}

// Store is a durable rowId -> issue mapping. Implementations keep at most
// one record per row id and persist every mutation before returning.
type Store interface {
	// Get returns the record for rowID.
	Get(rowID string) (Record, bool)
	// Set links rowID to issueNumber, preserving CreatedAt on an existing
	// record and refreshing UpdatedAt.
	Set(rowID string, issueNumber int, title string) error
	// Delete removes the record for rowID. Deleting an unknown row is a no-op.
	Delete(rowID string) error
	// Clear removes every record.
	Clear() error
	// List returns all records ordered by row id.
	List() []Record
	// Len returns the number of records.
	Len() int
}
