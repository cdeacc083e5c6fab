package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/superchase/centcom/pkg/models"
)

const systemPrompt = `You are a processing agent inside the SuperChase task
pipeline. You receive one task descriptor and produce the requested
deliverables as a single response. Be concrete and complete; there is no
follow-up turn.`

// Execute sends the task to the Anthropic API as a single message call
// and reports real token usage back.
func (c *Client) Execute(ctx context.Context, spec models.TaskSpec) (*models.ExecutionResult, error) {
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(spec))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("execute task %s: %w", spec.ID, err)
	}

	c.tracker.Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	var output string
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			output += variant.Text
		}
	}

	tokens := int(resp.Usage.InputTokens + resp.Usage.OutputTokens)
	return &models.ExecutionResult{
		Status:     "completed",
		Confidence: 0.85,
		TokensUsed: tokens,
		Summary:    summarize(spec, output),
	}, nil
}

// buildPrompt renders the task descriptor for the model.
func buildPrompt(spec models.TaskSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task %s (priority: %s)\n\nGoal: %s\n", spec.ID, spec.Priority, spec.Goal)

	if len(spec.Deliverables) > 0 {
		fmt.Fprintf(&b, "\nDeliverables:\n")
		for _, d := range spec.Deliverables {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}
	if len(spec.Constraints) > 0 {
		fmt.Fprintf(&b, "\nConstraints:\n")
		for _, c := range spec.Constraints {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}
	if spec.Context != "" {
		fmt.Fprintf(&b, "\nContext: %s\n", spec.Context)
	}
	if spec.Deadline != "" {
		fmt.Fprintf(&b, "\nDeadline: %s\n", spec.Deadline)
	}
	return b.String()
}

// summarize produces the ledger-facing one-line summary of the output.
func summarize(spec models.TaskSpec, output string) string {
	line := strings.TrimSpace(output)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	if len(line) > 200 {
		line = line[:200] + "..."
	}
	if line == "" {
		return fmt.Sprintf("%s via %s: completed", spec.AssignedAgent, spec.SystemTarget)
	}
	return line
}

// Verify Client implements Executor at compile time.
var _ Executor = (*Client)(nil)
