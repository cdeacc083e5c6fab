package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/superchase/centcom/internal/config"
	"github.com/superchase/centcom/pkg/models"
)

var statusExecLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show queue and ledger state",
	Long: `Display the current state of the work queue.

Shows:
  - Item counts per status
  - The queued backlog in processing order
  - Recent execution records with their cost`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusExecLimit, "executions", 5, "Number of recent executions to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()

	counts, err := st.CountByStatus(ctx)
	if err != nil {
		return fmt.Errorf("count items: %w", err)
	}

	fmt.Printf("Work Queue (%s)\n", cfg.Store.Backend)
	for _, s := range []models.Status{models.StatusQueued, models.StatusInProgress, models.StatusDone, models.StatusError} {
		fmt.Printf("  %-12s %d\n", string(s)+":", counts[s])
	}

	queued, err := st.ListQueued(ctx)
	if err != nil {
		return fmt.Errorf("list queued: %w", err)
	}
	if len(queued) > 0 {
		fmt.Println()
		fmt.Println("Backlog:")
		for _, item := range queued {
			agent := item.AssignedAgent
			if agent == "" {
				agent = "(auto)"
			}
			fmt.Printf("  %s  %s  %s  queued %s ago\n",
				item.TaskID, item.EffectivePriority(), agent, formatDuration(time.Since(item.CreatedAt)))
		}
	}

	execs, err := st.ListExecutions(ctx, "")
	if err != nil {
		return fmt.Errorf("list executions: %w", err)
	}
	if len(execs) > 0 {
		fmt.Println()
		fmt.Println("Recent Executions:")
		if statusExecLimit > 0 && len(execs) > statusExecLimit {
			execs = execs[:statusExecLimit]
		}
		var total float64
		for _, rec := range execs {
			fmt.Printf("  %s  %-11s  $%.2f  %dt  %ds  %s\n",
				rec.ExecutionID, rec.AgentUsed, rec.CostUSD, rec.TokensConsumed,
				rec.ExecutionSeconds, rec.OutputSummary)
			total += rec.CostUSD
		}
		fmt.Printf("  %s $%.2f across %d shown\n", color.CyanString("total:"), total, len(execs))
	}

	return nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m > 0 {
			return fmt.Sprintf("%dh%dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	}
	days := int(d.Hours()) / 24
	return fmt.Sprintf("%dd", days)
}
