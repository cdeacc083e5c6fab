// Package models defines the shared domain types for Central Command.
package models

import "time"

// Status represents the lifecycle state of a work item.
type Status string

const (
	// StatusQueued indicates the item is waiting to be picked up.
	StatusQueued Status = "queued"
	// StatusInProgress indicates the item is being processed.
	StatusInProgress Status = "in_progress"
	// StatusDone indicates processing completed successfully.
	StatusDone Status = "done"
	// StatusError indicates processing failed.
	StatusError Status = "error"
)

// Valid returns true if the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusInProgress, StatusDone, StatusError:
		return true
	default:
		return false
	}
}

// Terminal returns true if no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Priority represents the urgency of a work item, P0 being the highest.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
)

// DefaultPriority is assumed when a work item carries no priority.
const DefaultPriority = PriorityP2

// Rank returns the sort rank of the priority. Lower ranks sort first.
// Unknown values rank as the default priority.
func (p Priority) Rank() int {
	switch p {
	case PriorityP0:
		return 0
	case PriorityP1:
		return 1
	case PriorityP2:
		return 2
	case PriorityP3:
		return 3
	default:
		return 2
	}
}

// Label maps the priority to the wording executors expect.
func (p Priority) Label() string {
	switch p {
	case PriorityP0:
		return "critical"
	case PriorityP1:
		return "high"
	case PriorityP2:
		return "medium"
	case PriorityP3:
		return "low"
	default:
		return "medium"
	}
}

// WorkItem represents a unit of work in the shared backlog.
type WorkItem struct {
	// ID is the unique identifier for this item.
	ID string `json:"id"`
	// TaskID is the human-facing task identifier used for routing.
	TaskID string `json:"task_id"`
	// RoutingPayload is opaque text, usually JSON, describing the work.
	// It is not guaranteed to parse.
	RoutingPayload string `json:"routing_payload,omitempty"`
	// Priority orders items within a poll cycle. Defaults to P2.
	Priority Priority `json:"priority,omitempty"`
	// Status is the current lifecycle state.
	Status Status `json:"status"`
	// AssignedAgent is the processing agent, auto-filled when absent.
	AssignedAgent string `json:"assigned_agent,omitempty"`
	// SystemTarget is the system the item is routed to.
	SystemTarget string `json:"system_target,omitempty"`
	// CreatedAt is when the item entered the queue.
	CreatedAt time.Time `json:"created_at"`
	// RoutedAt is when routing was decided.
	RoutedAt *time.Time `json:"routed_at,omitempty"`
	// StartedAt is when processing began.
	StartedAt *time.Time `json:"started_at,omitempty"`
	// CompletedAt is when the item reached a terminal state.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	// CostActual is the estimated processing cost, set at completion.
	CostActual float64 `json:"cost_actual,omitempty"`
	// LastError holds the failure message for items in error state.
	LastError string `json:"last_error,omitempty"`
}

// EffectivePriority returns the item's priority, or the default when unset.
func (w *WorkItem) EffectivePriority() Priority {
	if w.Priority == "" {
		return DefaultPriority
	}
	return w.Priority
}
