// Package status persists work item lifecycle transitions against the
// backing store and enforces the status state machine.
package status

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/superchase/centcom/internal/store"
	"github.com/superchase/centcom/pkg/models"
)

// ErrTerminalState reports an attempted transition out of done or error.
// Terminal states are final; reprocessing requires a new queue submission.
var ErrTerminalState = errors.New("work item is in a terminal state")

// legalTransitions is the status state machine. queued is initial; done
// and error are terminal.
var legalTransitions = map[models.Status][]models.Status{
	models.StatusQueued:     {models.StatusInProgress},
	models.StatusInProgress: {models.StatusDone, models.StatusError},
}

// allowedFields restricts which extra fields a transition may write.
// The backing schema is brittle; anything outside this list would be
// speculative probing.
var allowedFields = map[string]bool{
	"system_target":  true,
	"assigned_agent": true,
	"started_at":     true,
	"completed_at":   true,
	"routed_at":      true,
	"cost_actual":    true,
	"last_error":     true,
}

// Updater persists lifecycle transitions. It is the only component that
// mutates work items in the store.
type Updater struct {
	items store.ItemStore
	now   func() time.Time
}

// NewUpdater creates an Updater backed by the given item store.
func NewUpdater(items store.ItemStore) *Updater {
	return &Updater{items: items, now: time.Now}
}

// Transition moves a work item to newStatus, writing any allow-listed
// extra fields alongside. Entering in_progress stamps started_at and
// routed_at; entering a terminal state stamps completed_at.
//
// If the store rejects the write for an unrecognized field, the write is
// retried exactly once with a status-only payload. A second failure
// propagates to the caller.
//
// On success the in-memory item is updated to match what was persisted.
func (u *Updater) Transition(ctx context.Context, item *models.WorkItem, newStatus models.Status, extra map[string]any) error {
	if !newStatus.Valid() {
		return fmt.Errorf("transition %s: invalid status %q", item.ID, newStatus)
	}
	if item.Status.Terminal() {
		return fmt.Errorf("transition %s from %s to %s: %w", item.ID, item.Status, newStatus, ErrTerminalState)
	}
	if !legal(item.Status, newStatus) {
		return fmt.Errorf("transition %s: illegal transition %s -> %s", item.ID, item.Status, newStatus)
	}

	now := u.now().UTC()
	fields := map[string]any{"status": string(newStatus)}
	for name, value := range extra {
		if !allowedFields[name] {
			log.Printf("[status] skipping field %q: not in update allow-list", name)
			continue
		}
		fields[name] = value
	}

	stamp := now.Format(time.RFC3339)
	switch newStatus {
	case models.StatusInProgress:
		fields["started_at"] = stamp
		fields["routed_at"] = stamp
	case models.StatusDone, models.StatusError:
		fields["completed_at"] = stamp
	}

	persisted := fields
	if err := u.items.UpdateFields(ctx, item.ID, fields); err != nil {
		if !errors.Is(err, store.ErrUnknownField) {
			return fmt.Errorf("transition %s to %s: %w", item.ID, newStatus, err)
		}
		// Schema drift: retry once with a status-only payload.
		log.Printf("[status] field error updating %s, falling back to status-only update", item.ID)
		fallback := map[string]any{"status": string(newStatus)}
		if err := u.items.UpdateFields(ctx, item.ID, fallback); err != nil {
			return fmt.Errorf("transition %s to %s (status-only fallback): %w", item.ID, newStatus, err)
		}
		persisted = fallback
	}

	applyTransition(item, newStatus, persisted, now)
	return nil
}

// legal reports whether from -> to is a permitted transition.
func legal(from, to models.Status) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// applyTransition mirrors the persisted fields onto the in-memory item.
// Only fields that were actually written reach the item; extras dropped
// by the status-only fallback stay unset. The lifecycle timestamps are
// stamped from newStatus either way since the transition itself committed.
func applyTransition(item *models.WorkItem, newStatus models.Status, fields map[string]any, now time.Time) {
	item.Status = newStatus

	switch newStatus {
	case models.StatusInProgress:
		t := now
		item.StartedAt = &t
		item.RoutedAt = &t
	case models.StatusDone, models.StatusError:
		t := now
		item.CompletedAt = &t
	}

	if v, ok := fields["assigned_agent"].(string); ok {
		item.AssignedAgent = v
	}
	if v, ok := fields["system_target"].(string); ok {
		item.SystemTarget = v
	}
	if v, ok := fields["cost_actual"].(float64); ok {
		item.CostActual = v
	}
	if v, ok := fields["last_error"].(string); ok {
		item.LastError = v
	}
}
