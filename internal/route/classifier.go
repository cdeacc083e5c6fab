// Package route assigns work items to processing agents based on their
// text content. Routing is a pure function over an immutable keyword
// table plus an ordered list of override triggers.
package route

import "strings"

// Known agents, in tie-break order. When two agents score equally the
// one declared first wins.
const (
	AgentClaude     = "claude"
	AgentGPT4       = "gpt4"
	AgentMultiAgent = "multi_agent"
	AgentCopilot    = "copilot"
)

// DefaultTarget is the system all routed tasks are sent to.
const DefaultTarget = "superchase"

// DefaultConfidence is reported when no category keyword matches.
const DefaultConfidence = 0.6

// overrideConfidence is reported when an override trigger fires.
const overrideConfidence = 0.9

// category is one agent's keyword list.
type category struct {
	agent    string
	keywords []string
}

// categories maps each agent to its trigger terms. Order doubles as the
// tie-break order. The table is fixed at compile time; rules are never
// mutated at runtime.
var categories = []category{
	{AgentClaude, []string{"architect", "design", "technical", "system"}},
	{AgentGPT4, []string{"creative", "content", "marketing", "copy"}},
	{AgentMultiAgent, []string{"analysis", "data", "report", "research"}},
	{AgentCopilot, []string{"invoice", "business", "finance"}},
}

// overrides are evaluated after category scoring and take precedence.
// Any of these terms forces the task to the default agent for direct
// mail/calendar handling.
var overrides = []string{
	"email", "message", "send", "contact",
	"calendar", "meeting", "follow up", "follow-up", "draft",
}

// Analysis is the result of classifying a task's text.
type Analysis struct {
	// Agent is the chosen processing agent.
	Agent string
	// Target is the system the task should be routed to.
	Target string
	// Confidence is in [0,1].
	Confidence float64
	// Reasoning is a short human-readable explanation.
	Reasoning string
}

// Analyze scores the given text against the per-agent keyword categories
// and returns the best match. Matching is case-insensitive substring
// matching; callers typically pass the task id concatenated with the
// routing payload.
func Analyze(text string) Analysis {
	content := strings.ToLower(text)

	best := categories[0].agent
	bestScore := 0
	for _, cat := range categories {
		score := 0
		for _, kw := range cat.keywords {
			if strings.Contains(content, kw) {
				score++
			}
		}
		if score > bestScore {
			best = cat.agent
			bestScore = score
		}
	}

	// Overrides win regardless of category scores.
	for _, trigger := range overrides {
		if strings.Contains(content, trigger) {
			return Analysis{
				Agent:      AgentClaude,
				Target:     DefaultTarget,
				Confidence: overrideConfidence,
				Reasoning:  "mail/calendar task routed to " + AgentClaude + " for direct handling",
			}
		}
	}

	if bestScore == 0 {
		return Analysis{
			Agent:      best,
			Target:     DefaultTarget,
			Confidence: DefaultConfidence,
			Reasoning:  "no category keywords matched, using default agent",
		}
	}

	return Analysis{
		Agent:      best,
		Target:     DefaultTarget,
		Confidence: confidence(bestScore, content),
		Reasoning:  "primary trigger: " + best,
	}
}

// confidence is the match score normalized by the input's word count,
// clamped to [0,1].
func confidence(score int, content string) float64 {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	c := float64(score) / float64(words)
	if c > 1 {
		return 1
	}
	return c
}
