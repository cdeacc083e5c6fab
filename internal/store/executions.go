package store

import (
	"context"
	"fmt"

	"github.com/superchase/centcom/pkg/models"
)

// AppendExecution writes a new execution record. The executions table is
// append-only: there is no corresponding update or delete.
func (db *DB) AppendExecution(ctx context.Context, rec *models.ExecutionRecord) error {
	_, err := db.exec(`
		INSERT INTO executions (execution_id, task_ref, agent_used, tokens_consumed, cost_usd, confidence_score, execution_time_seconds, output_summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ExecutionID, rec.TaskRef, rec.AgentUsed, rec.TokensConsumed, rec.CostUSD,
		rec.ConfidenceScore, rec.ExecutionSeconds, rec.OutputSummary, formatTime(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("append execution: %w", err)
	}
	return nil
}

// ListExecutions returns the execution records for a work item, newest
// first. An empty taskRef returns records for all items.
func (db *DB) ListExecutions(ctx context.Context, taskRef string) ([]models.ExecutionRecord, error) {
	query := `
		SELECT execution_id, task_ref, agent_used, tokens_consumed, cost_usd, confidence_score, execution_time_seconds, output_summary, created_at
		FROM executions ORDER BY created_at DESC
	`
	args := []any{}
	if taskRef != "" {
		query = `
			SELECT execution_id, task_ref, agent_used, tokens_consumed, cost_usd, confidence_score, execution_time_seconds, output_summary, created_at
			FROM executions WHERE task_ref = ? ORDER BY created_at DESC
		`
		args = append(args, taskRef)
	}
	rows, err := db.query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	var records []models.ExecutionRecord
	for rows.Next() {
		var rec models.ExecutionRecord
		var createdAt string
		if err := rows.Scan(&rec.ExecutionID, &rec.TaskRef, &rec.AgentUsed, &rec.TokensConsumed,
			&rec.CostUSD, &rec.ConfidenceScore, &rec.ExecutionSeconds, &rec.OutputSummary, &createdAt); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		rec.CreatedAt, _ = parseTime(createdAt)
		records = append(records, rec)
	}
	return records, nil
}
