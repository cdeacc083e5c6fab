package dispatch

import (
	"encoding/json"
	"log"

	"github.com/superchase/centcom/internal/route"
	"github.com/superchase/centcom/pkg/models"
)

// RoutingPayload is the structured form of a work item's routing payload.
// The payload is opaque text from the submitter and is not guaranteed to
// parse; a malformed payload never aborts the task.
type RoutingPayload struct {
	Goal         string   `json:"goal"`
	Description  string   `json:"description"`
	Task         string   `json:"task"`
	Deliverables []string `json:"deliverables"`
	Constraints  []string `json:"constraints"`
	Context      string   `json:"context"`
	Deadline     string   `json:"deadline"`
}

// parsePayload decodes a work item's routing payload, falling back to the
// zero value on malformed input.
func parsePayload(item *models.WorkItem) RoutingPayload {
	var payload RoutingPayload
	if item.RoutingPayload == "" {
		return payload
	}
	if err := json.Unmarshal([]byte(item.RoutingPayload), &payload); err != nil {
		log.Printf("[dispatch] invalid routing payload for %s, proceeding without it: %v", item.TaskID, err)
		return RoutingPayload{}
	}
	return payload
}

// defaultDeliverables maps each agent to its assumed outputs when the
// payload names none.
var defaultDeliverables = map[string][]string{
	route.AgentClaude:     {"architecture_doc", "implementation_plan"},
	route.AgentGPT4:       {"content", "analysis"},
	route.AgentCopilot:    {"code", "documentation"},
	route.AgentMultiAgent: {"comprehensive_report"},
}

// deliverablesFor returns the payload deliverables or the agent defaults.
func deliverablesFor(payload RoutingPayload, agent string) []string {
	if len(payload.Deliverables) > 0 {
		return payload.Deliverables
	}
	if defaults, ok := defaultDeliverables[agent]; ok {
		return defaults
	}
	return []string{"analysis"}
}

// buildSpec assembles the normalized task descriptor for the executor.
func buildSpec(item *models.WorkItem, payload RoutingPayload, agent, target string) models.TaskSpec {
	goal := payload.Goal
	if goal == "" {
		goal = payload.Description
	}
	if goal == "" {
		goal = payload.Task
	}
	if goal == "" {
		goal = item.TaskID
	}

	return models.TaskSpec{
		ID:            item.TaskID,
		Goal:          goal,
		Deliverables:  deliverablesFor(payload, agent),
		Priority:      item.EffectivePriority().Label(),
		Constraints:   payload.Constraints,
		SystemTarget:  target,
		AssignedAgent: agent,
		Context:       payload.Context,
		Deadline:      payload.Deadline,
	}
}
