package models

import "time"

// ExecutionRecord is an immutable audit entry for one processing attempt.
// Records are appended by the ledger and never updated or deleted.
type ExecutionRecord struct {
	// ExecutionID is the unique identifier for this attempt.
	ExecutionID string `json:"execution_id"`
	// TaskRef references the originating work item.
	TaskRef string `json:"task_ref"`
	// AgentUsed is the agent that processed the attempt.
	AgentUsed string `json:"agent_used"`
	// TokensConsumed is the token usage reported for the attempt.
	TokensConsumed int `json:"tokens_consumed"`
	// CostUSD is the estimated cost of the attempt. Zero on failures.
	CostUSD float64 `json:"cost_usd"`
	// ConfidenceScore is the routing or execution confidence.
	ConfidenceScore float64 `json:"confidence_score"`
	// ExecutionSeconds is the wall-clock duration of the attempt.
	ExecutionSeconds int `json:"execution_time_seconds"`
	// OutputSummary is a human-readable summary of the outcome.
	OutputSummary string `json:"output_summary"`
	// CreatedAt is when the record was written.
	CreatedAt time.Time `json:"created_at"`
}

// TaskSpec is the normalized descriptor handed to an executor.
type TaskSpec struct {
	// ID is the task identifier.
	ID string `json:"id"`
	// Goal is what the executor should accomplish.
	Goal string `json:"goal"`
	// Deliverables lists the expected outputs.
	Deliverables []string `json:"deliverables"`
	// Priority is the mapped priority label (critical/high/medium/low).
	Priority string `json:"priority"`
	// Constraints lists restrictions on how the work may be done.
	Constraints []string `json:"constraints,omitempty"`
	// SystemTarget is the system the task is routed to.
	SystemTarget string `json:"system_target"`
	// AssignedAgent is the agent expected to do the work.
	AssignedAgent string `json:"assigned_agent"`
	// Context is free-text background for the executor.
	Context string `json:"context,omitempty"`
	// Deadline is an optional completion deadline.
	Deadline string `json:"deadline,omitempty"`
}

// ExecutionResult is what an executor reports back for a task.
type ExecutionResult struct {
	// Status is the executor's own outcome label.
	Status string `json:"status"`
	// Confidence is the executor's confidence in the outcome.
	Confidence float64 `json:"confidence"`
	// TokensUsed is the number of tokens consumed, if known.
	TokensUsed int `json:"tokens_used"`
	// CostUSD is the executor's own cost estimate, if any.
	CostUSD float64 `json:"cost_usd"`
	// Summary is a human-readable description of what was produced.
	Summary string `json:"summary"`
}
