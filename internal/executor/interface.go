// Package executor performs the actual agent work for a task descriptor.
package executor

import (
	"context"

	"github.com/superchase/centcom/pkg/models"
)

// Executor is the collaborator that processes a normalized task
// descriptor. This abstraction allows faking execution in tests.
type Executor interface {
	// Execute processes the task and reports the outcome, or fails
	// with an error. Implementations must honor ctx cancellation.
	Execute(ctx context.Context, spec models.TaskSpec) (*models.ExecutionResult, error)
}
