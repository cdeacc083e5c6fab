package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/superchase/centcom/pkg/models"
)

// updatableColumns are the work_items columns a partial update may touch.
// Any other field name yields ErrUnknownField, matching the behavior of a
// schema-strict backend.
var updatableColumns = map[string]bool{
	"status":         true,
	"system_target":  true,
	"assigned_agent": true,
	"started_at":     true,
	"completed_at":   true,
	"routed_at":      true,
	"cost_actual":    true,
	"last_error":     true,
}

// CreateItem inserts a new work item.
func (db *DB) CreateItem(ctx context.Context, item *models.WorkItem) error {
	_, err := db.exec(`
		INSERT INTO work_items (id, task_id, routing_payload, priority, status, assigned_agent, system_target, created_at, cost_actual, last_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.TaskID, item.RoutingPayload, string(item.EffectivePriority()), string(item.Status),
		item.AssignedAgent, item.SystemTarget, formatTime(item.CreatedAt), item.CostActual, item.LastError)
	if err != nil {
		return fmt.Errorf("create work item: %w", err)
	}
	return nil
}

// GetItem retrieves a work item by id. Returns nil when not found.
func (db *DB) GetItem(ctx context.Context, id string) (*models.WorkItem, error) {
	row := db.queryRow(`
		SELECT id, task_id, routing_payload, priority, status, assigned_agent, system_target,
			created_at, routed_at, started_at, completed_at, cost_actual, last_error
		FROM work_items WHERE id = ?
	`, id)

	item, err := scanItem(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get work item: %w", err)
	}
	return item, nil
}

// ListQueued returns all queued work items ordered ascending by creation time.
func (db *DB) ListQueued(ctx context.Context) ([]models.WorkItem, error) {
	rows, err := db.query(`
		SELECT id, task_id, routing_payload, priority, status, assigned_agent, system_target,
			created_at, routed_at, started_at, completed_at, cost_actual, last_error
		FROM work_items WHERE status = ? ORDER BY created_at
	`, string(models.StatusQueued))
	if err != nil {
		return nil, fmt.Errorf("list queued items: %w", err)
	}
	defer rows.Close()

	var items []models.WorkItem
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan work item: %w", err)
		}
		items = append(items, *item)
	}
	return items, nil
}

// UpdateFields applies a partial update to a work item. Field names not
// present in the schema yield an error matching ErrUnknownField before
// anything is written.
func (db *DB) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	// Deterministic column order keeps the statement stable for tests.
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var sets []string
	var args []any
	for _, name := range names {
		if !updatableColumns[name] {
			return fmt.Errorf("update work item %s: %w: %s", id, ErrUnknownField, name)
		}
		sets = append(sets, name+" = ?")
		args = append(args, fields[name])
	}
	args = append(args, id)

	result, err := db.exec("UPDATE work_items SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update work item %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update work item %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("update work item %s: not found", id)
	}
	return nil
}

// CountByStatus returns the number of work items per status.
func (db *DB) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	rows, err := db.query("SELECT status, COUNT(*) FROM work_items GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count items by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[models.Status(status)] = count
	}
	return counts, nil
}

// scanItem scans one work item row via the given scan function.
func scanItem(scan func(dest ...any) error) (*models.WorkItem, error) {
	var item models.WorkItem
	var createdAt string
	var routingPayload, assignedAgent, systemTarget, lastError sql.NullString
	var routedAt, startedAt, completedAt sql.NullString

	err := scan(&item.ID, &item.TaskID, &routingPayload, &item.Priority, &item.Status,
		&assignedAgent, &systemTarget, &createdAt, &routedAt, &startedAt, &completedAt,
		&item.CostActual, &lastError)
	if err != nil {
		return nil, err
	}

	if routingPayload.Valid {
		item.RoutingPayload = routingPayload.String
	}
	if assignedAgent.Valid {
		item.AssignedAgent = assignedAgent.String
	}
	if systemTarget.Valid {
		item.SystemTarget = systemTarget.String
	}
	if lastError.Valid {
		item.LastError = lastError.String
	}
	item.CreatedAt, _ = parseTime(createdAt)
	item.RoutedAt = parseNullableTime(routedAt)
	item.StartedAt = parseNullableTime(startedAt)
	item.CompletedAt = parseNullableTime(completedAt)
	return &item, nil
}
