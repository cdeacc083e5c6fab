package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/superchase/centcom/internal/config"
	"github.com/superchase/centcom/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "centcom",
	Short: "Central Command work queue poller",
	Long: `Centcom polls a shared work queue, routes each queued item to the
best-fit AI agent, tracks its status through the lifecycle, and records
every execution with its cost in the agents ledger.

Core capabilities:
- Polls the work queue and processes items in priority order
- Classifies tasks by keyword to pick an agent (claude, gpt4, copilot, multi_agent)
- Enforces legal status transitions with timestamps (queued -> in_progress -> done/error)
- Estimates execution cost from agent base rates, tokens, and runtime
- Appends an immutable execution record per attempt

Run 'centcom run' to start the poll loop, or 'centcom submit' to queue a task.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// openStore opens the configured queue backend.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendAirtable:
		return store.NewAirtable(store.AirtableConfig{
			Token:   cfg.Airtable.Token,
			BaseID:  cfg.Airtable.BaseID,
			BaseURL: cfg.Airtable.BaseURL,
		})
	case config.BackendSQLite:
		path := cfg.Store.Path
		if path == "" {
			path = store.DefaultDBPath()
		}
		db, err := store.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
