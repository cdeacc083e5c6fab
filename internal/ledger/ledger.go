// Package ledger appends execution records to the Agents Ledger. Records
// are written once per attempt and never mutated afterwards.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/superchase/centcom/internal/store"
	"github.com/superchase/centcom/pkg/models"
)

// defaultConfidence is recorded when an attempt reports no confidence.
const defaultConfidence = 0.8

// defaultSummary is recorded when an attempt reports no summary.
const defaultSummary = "task processed by central command"

// Attempt describes one processing attempt to be recorded.
type Attempt struct {
	// TokensUsed is the number of tokens consumed, zero if unknown.
	TokensUsed int
	// CostUSD is the estimated cost. Zero for failed attempts.
	CostUSD float64
	// Confidence is the routing or execution confidence, zero if unknown.
	Confidence float64
	// ElapsedSeconds is the wall-clock duration of the attempt.
	ElapsedSeconds int
	// Summary is a human-readable outcome description.
	Summary string
}

// Ledger writes execution records to an append-only store.
type Ledger struct {
	store store.ExecutionStore
	now   func() time.Time
}

// New creates a Ledger backed by the given execution store.
func New(s store.ExecutionStore) *Ledger {
	return &Ledger{store: s, now: time.Now}
}

// Append records one execution attempt and returns its execution id.
// Exactly one record is written per attempt, success or failure.
func (l *Ledger) Append(ctx context.Context, taskRef, agentUsed string, attempt Attempt) (string, error) {
	rec := &models.ExecutionRecord{
		ExecutionID:      newExecutionID(l.now()),
		TaskRef:          taskRef,
		AgentUsed:        agentUsed,
		TokensConsumed:   attempt.TokensUsed,
		CostUSD:          attempt.CostUSD,
		ConfidenceScore:  attempt.Confidence,
		ExecutionSeconds: attempt.ElapsedSeconds,
		OutputSummary:    attempt.Summary,
		CreatedAt:        l.now().UTC(),
	}
	if rec.ConfidenceScore == 0 {
		rec.ConfidenceScore = defaultConfidence
	}
	if rec.OutputSummary == "" {
		rec.OutputSummary = defaultSummary
	}

	if err := l.store.AppendExecution(ctx, rec); err != nil {
		return "", fmt.Errorf("append execution record: %w", err)
	}
	return rec.ExecutionID, nil
}

// newExecutionID builds an id unique within practical collision bounds:
// a millisecond timestamp plus a short random suffix.
func newExecutionID(t time.Time) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("exec_%d_%s", t.UnixMilli(), suffix)
}
