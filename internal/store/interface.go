// Package store provides access to the Work Queue and Agents Ledger
// backing stores. Two backends exist: a local SQLite database and the
// Airtable REST API.
package store

import (
	"context"
	"errors"
	"io"

	"github.com/superchase/centcom/pkg/models"
)

// ErrUnknownField reports that the backing schema rejected a field name
// in a partial update. Callers may retry with a reduced payload.
var ErrUnknownField = errors.New("unknown field")

// ItemStore handles work item persistence.
type ItemStore interface {
	// CreateItem inserts a new work item.
	CreateItem(ctx context.Context, item *models.WorkItem) error
	// GetItem retrieves a work item by id. Returns nil when not found.
	GetItem(ctx context.Context, id string) (*models.WorkItem, error)
	// ListQueued returns all items with status=queued, ordered
	// ascending by creation time.
	ListQueued(ctx context.Context) ([]models.WorkItem, error)
	// UpdateFields applies a partial field update to an item. A field
	// name the schema does not recognize yields an error matching
	// ErrUnknownField.
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	// CountByStatus returns the number of items per status.
	CountByStatus(ctx context.Context) (map[models.Status]int, error)
}

// ExecutionStore handles execution record persistence. Records are
// append-only; there is deliberately no update or delete operation.
type ExecutionStore interface {
	// AppendExecution writes a new execution record.
	AppendExecution(ctx context.Context, rec *models.ExecutionRecord) error
	// ListExecutions returns the records for a work item, newest first.
	// An empty taskRef returns records for all items.
	ListExecutions(ctx context.Context, taskRef string) ([]models.ExecutionRecord, error)
}

// Migrator handles schema migrations for backends that own their schema.
type Migrator interface {
	Migrate() error
}

// Store combines the item and execution stores behind one backend.
type Store interface {
	io.Closer
	ItemStore
	ExecutionStore
}

// Compile-time verification that both backends implement the interfaces.
var (
	_ Store    = (*DB)(nil)
	_ Migrator = (*DB)(nil)
	_ Store    = (*Airtable)(nil)
)
