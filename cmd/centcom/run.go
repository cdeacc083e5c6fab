package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/superchase/centcom/internal/config"
	"github.com/superchase/centcom/internal/dispatch"
	"github.com/superchase/centcom/internal/executor"
	"github.com/superchase/centcom/internal/ledger"
	"github.com/superchase/centcom/internal/logging"
	"github.com/superchase/centcom/internal/poller"
	"github.com/superchase/centcom/internal/status"
)

var (
	runPollInterval time.Duration
	runItemDelay    time.Duration
	runDebugLog     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the work queue poll loop",
	Long: `Start the poll loop against the configured queue backend.

Each cycle fetches all queued items, sorts them by priority, and routes
them one at a time: classify, mark in_progress, execute via the assigned
agent, then mark done (with actual cost) or error (with the failure
message). Every attempt lands in the agents ledger.

The loop runs until interrupted. An interrupt finishes the in-flight
item before shutting down.`,
	RunE: runPoller,
}

func init() {
	runCmd.Flags().DurationVar(&runPollInterval, "poll-interval", 0, "Override the poll interval (e.g. 10s)")
	runCmd.Flags().DurationVar(&runItemDelay, "item-delay", 0, "Override the delay between items in a batch")
	runCmd.Flags().StringVar(&runDebugLog, "debug-log", "", "Write debug logs to this file")
}

func runPoller(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if runPollInterval > 0 {
		cfg.Poller.PollInterval = runPollInterval
	}
	if runItemDelay > 0 {
		cfg.Poller.ItemDelay = runItemDelay
	}

	debugPath := cfg.Logging.DebugFile
	if runDebugLog != "" {
		debugPath = runDebugLog
	}
	logger, err := logging.NewDebugLogger(debugPath)
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}
	defer logger.Close()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	apiKey, err := config.GetAPIKey(cfg)
	if !cfg.Anthropic.UseAWSBedrock {
		if err != nil {
			return fmt.Errorf("executor credentials: %w", err)
		}
		// Catch malformed keys at startup, not on the first queued item.
		if err := config.ValidateAPIKey(apiKey); err != nil {
			return fmt.Errorf("executor credentials: %w", err)
		}
	}
	client, err := executor.NewClient(executor.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        apiKey,
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return fmt.Errorf("create executor: %w", err)
	}

	updater := status.NewUpdater(st)
	dispatcher := dispatch.New(updater, client, ledger.New(st), logger, cfg.Timeouts.Executor)
	p := poller.New(st, dispatcher, logger, poller.Config{
		PollInterval: cfg.Poller.PollInterval,
		ItemDelay:    cfg.Poller.ItemDelay,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nReceived interrupt, finishing current item...")
		p.Stop()
		<-sigCh
		fmt.Println("Forcing shutdown...")
		cancel()
	}()

	fmt.Printf("%s centcom poller started (backend: %s, interval: %s)\n",
		color.GreenString("✓"), cfg.Store.Backend, cfg.Poller.PollInterval)

	if err := p.Start(ctx); err != nil && err != context.Canceled {
		return fmt.Errorf("poll loop: %w", err)
	}

	snap := p.Status()
	fmt.Printf("Poller stopped after processing %d item(s).\n", snap.Processed)
	if calls := client.Tracker().Calls(); calls > 0 {
		in, out := client.Tracker().Total()
		fmt.Printf("API usage: %d call(s) to %s, %d input / %d output tokens.\n",
			calls, client.Model(), in, out)
	}
	return nil
}
