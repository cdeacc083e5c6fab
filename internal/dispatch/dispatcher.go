// Package dispatch drives a single work item through its lifecycle:
// classification, status transitions, executor invocation, cost
// accounting, and the execution ledger.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/superchase/centcom/internal/cost"
	"github.com/superchase/centcom/internal/executor"
	"github.com/superchase/centcom/internal/ledger"
	"github.com/superchase/centcom/internal/logging"
	"github.com/superchase/centcom/internal/route"
	"github.com/superchase/centcom/pkg/models"
)

// StatusWriter persists lifecycle transitions for a work item.
type StatusWriter interface {
	Transition(ctx context.Context, item *models.WorkItem, newStatus models.Status, extra map[string]any) error
}

// Recorder appends execution records to the ledger.
type Recorder interface {
	Append(ctx context.Context, taskRef, agentUsed string, attempt ledger.Attempt) (string, error)
}

// Dispatcher routes one work item at a time through its full lifecycle.
type Dispatcher struct {
	status   StatusWriter
	exec     executor.Executor
	ledger   Recorder
	logger   *logging.DebugLogger
	classify func(text string) route.Analysis

	// execTimeout bounds each executor call so a hung agent cannot
	// stall the poll loop forever. Zero means no bound.
	execTimeout time.Duration
}

// New creates a Dispatcher with the given collaborators.
func New(status StatusWriter, exec executor.Executor, rec Recorder, logger *logging.DebugLogger, execTimeout time.Duration) *Dispatcher {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Dispatcher{
		status:      status,
		exec:        exec,
		ledger:      rec,
		logger:      logger,
		classify:    route.Analyze,
		execTimeout: execTimeout,
	}
}

// RouteTask processes one work item to a terminal state. An executor
// failure is handled internally (error status plus a failure record) and
// does not return an error; only a status write failure propagates, in
// which case the item is abandoned for this cycle.
func (d *Dispatcher) RouteTask(ctx context.Context, item *models.WorkItem) error {
	agent := item.AssignedAgent
	target := item.SystemTarget
	routeConfidence := 0.0

	// Auto-assign missing fields; existing assignments are never overwritten.
	if agent == "" || target == "" {
		analysis := d.classify(item.TaskID + " " + item.RoutingPayload)
		if agent == "" {
			agent = analysis.Agent
		}
		if target == "" {
			target = analysis.Target
		}
		routeConfidence = analysis.Confidence
		d.logger.Log("auto-assigned %s -> %s (confidence: %.2f)", item.TaskID, agent, analysis.Confidence)
	}

	d.logger.Log("routing task %s to %s via %s", item.TaskID, target, agent)

	err := d.status.Transition(ctx, item, models.StatusInProgress, map[string]any{
		"system_target":  target,
		"assigned_agent": agent,
	})
	if err != nil {
		return fmt.Errorf("start item %s: %w", item.ID, err)
	}

	payload := parsePayload(item)
	spec := buildSpec(item, payload, agent, target)

	execCtx := ctx
	if d.execTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, d.execTimeout)
		defer cancel()
	}

	start := time.Now()
	result, execErr := d.exec.Execute(execCtx, spec)
	elapsed := int(time.Since(start).Round(time.Second).Seconds())

	if execErr != nil {
		return d.failTask(ctx, item, agent, elapsed, execErr)
	}

	tokens := result.TokensUsed
	if tokens == 0 {
		tokens = cost.EstimateTokens(spec.Goal, agent)
	}
	actual := cost.Estimate(agent, elapsed, tokens)

	err = d.status.Transition(ctx, item, models.StatusDone, map[string]any{
		"cost_actual": actual,
	})
	if err != nil {
		return fmt.Errorf("complete item %s: %w", item.ID, err)
	}

	confidence := result.Confidence
	if confidence == 0 {
		confidence = routeConfidence
	}
	summary := result.Summary
	if summary == "" {
		summary = fmt.Sprintf("task %s completed via %s", item.TaskID, target)
	}

	if _, lerr := d.ledger.Append(ctx, item.ID, agent, ledger.Attempt{
		TokensUsed:     tokens,
		CostUSD:        actual,
		Confidence:     confidence,
		ElapsedSeconds: elapsed,
		Summary:        summary,
	}); lerr != nil {
		// Ledger writes never roll back a committed status transition.
		d.logger.Log("ledger write failed for %s: %v", item.ID, lerr)
	}

	d.logger.Log("task %s completed in %ds (cost: $%.2f)", item.TaskID, elapsed, actual)
	return nil
}

// failTask marks the item failed and records the attempt. There is no
// automatic retry; reprocessing requires a new queue submission.
func (d *Dispatcher) failTask(ctx context.Context, item *models.WorkItem, agent string, elapsed int, execErr error) error {
	d.logger.Log("task %s failed after %ds: %v", item.TaskID, elapsed, execErr)

	err := d.status.Transition(ctx, item, models.StatusError, map[string]any{
		"last_error": execErr.Error(),
	})
	if err != nil {
		return fmt.Errorf("mark item %s failed: %w", item.ID, err)
	}

	if _, lerr := d.ledger.Append(ctx, item.ID, agent, ledger.Attempt{
		ElapsedSeconds: elapsed,
		Summary:        fmt.Sprintf("error after %ds: %s", elapsed, execErr.Error()),
	}); lerr != nil {
		d.logger.Log("ledger write failed for %s: %v", item.ID, lerr)
	}
	return nil
}
