package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/superchase/centcom/internal/cost"
	"github.com/superchase/centcom/internal/route"
)

var routeCmd = &cobra.Command{
	Use:   "route <text>",
	Short: "Dry-run the task classifier",
	Long: `Show how a task description would be routed, without queuing it.

Prints the agent the classifier picks, its confidence, the matched
keywords, and the token and cost estimate for that agent.

Example:
  centcom route "analyze the quarterly sales data"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRoute,
}

func runRoute(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	analysis := route.Analyze(text)

	tokens := cost.EstimateTokens(text, analysis.Agent)
	estimate := cost.Estimate(analysis.Agent, 0, tokens)

	fmt.Printf("agent:      %s\n", analysis.Agent)
	fmt.Printf("target:     %s\n", analysis.Target)
	fmt.Printf("confidence: %.2f\n", analysis.Confidence)
	fmt.Printf("reasoning:  %s\n", analysis.Reasoning)
	fmt.Printf("tokens:     ~%d\n", tokens)
	fmt.Printf("cost:       ~$%.2f\n", estimate)
	return nil
}
