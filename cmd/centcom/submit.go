package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/superchase/centcom/internal/config"
	"github.com/superchase/centcom/internal/route"
	"github.com/superchase/centcom/pkg/models"
)

var (
	submitPriority string
	submitAgent    string
	submitTarget   string
	submitPayload  string
)

var submitCmd = &cobra.Command{
	Use:   "submit <goal>",
	Short: "Queue a task for the poller",
	Long: `Add a work item to the queue in the queued state.

The goal becomes the routing payload the classifier and executor see.
Leave --agent unset to let the classifier pick one at routing time, or
pin an agent to bypass classification.

Examples:
  centcom submit "draft the launch email"
  centcom submit --priority P0 "analyze churn data and report findings"
  centcom submit --agent copilot "reconcile the April invoices"
  centcom submit --payload '{"goal":"design the API","deliverables":["architecture_doc"]}'`,
	Args: cobra.ArbitraryArgs,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitPriority, "priority", "P2", "Priority: P0, P1, P2, or P3")
	submitCmd.Flags().StringVar(&submitAgent, "agent", "", "Pin the agent (claude, gpt4, copilot, multi_agent)")
	submitCmd.Flags().StringVar(&submitTarget, "target", "", "Pin the system target")
	submitCmd.Flags().StringVar(&submitPayload, "payload", "", "Raw JSON routing payload (overrides the goal argument)")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	goal := strings.TrimSpace(strings.Join(args, " "))
	if goal == "" && submitPayload == "" {
		return fmt.Errorf("provide a goal argument or --payload")
	}

	priority := models.Priority(strings.ToUpper(submitPriority))
	switch priority {
	case models.PriorityP0, models.PriorityP1, models.PriorityP2, models.PriorityP3:
	default:
		return fmt.Errorf("invalid priority %q: must be P0, P1, P2, or P3", submitPriority)
	}

	if submitAgent != "" {
		switch submitAgent {
		case route.AgentClaude, route.AgentGPT4, route.AgentCopilot, route.AgentMultiAgent:
		default:
			return fmt.Errorf("invalid agent %q: must be claude, gpt4, copilot, or multi_agent", submitAgent)
		}
	}

	payload := submitPayload
	if payload == "" {
		encoded, err := json.Marshal(map[string]string{"goal": goal})
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		payload = string(encoded)
	} else if !json.Valid([]byte(payload)) {
		return fmt.Errorf("--payload is not valid JSON")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	now := time.Now().UTC()
	item := &models.WorkItem{
		ID:             uuid.NewString(),
		TaskID:         fmt.Sprintf("task_%d", now.UnixMilli()),
		RoutingPayload: payload,
		Priority:       priority,
		Status:         models.StatusQueued,
		AssignedAgent:  submitAgent,
		SystemTarget:   submitTarget,
		CreatedAt:      now,
	}

	if err := st.CreateItem(context.Background(), item); err != nil {
		return fmt.Errorf("queue task: %w", err)
	}

	fmt.Printf("%s Queued %s (priority: %s, id: %s)\n",
		color.GreenString("✓"), item.TaskID, priority, item.ID)
	return nil
}
