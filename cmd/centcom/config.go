package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/superchase/centcom/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify centcom configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/centcom/config.yaml
Project-specific overrides can be placed in .centcom.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("store.backend: %s\n", cfg.Store.Backend)
	fmt.Printf("store.path: %s\n", cfg.Store.Path)
	fmt.Printf("airtable.token: %s\n", config.MaskAPIKey(cfg.Airtable.Token))
	fmt.Printf("airtable.base_id: %s\n", cfg.Airtable.BaseID)
	fmt.Printf("anthropic.api_key: %s (source: %s)\n",
		config.MaskAPIKey(cfg.Anthropic.APIKey), config.GetAPIKeySource(cfg))
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.use_aws_bedrock: %t\n", cfg.Anthropic.UseAWSBedrock)
	fmt.Printf("poller.poll_interval: %s\n", cfg.Poller.PollInterval)
	fmt.Printf("poller.item_delay: %s\n", cfg.Poller.ItemDelay)
	fmt.Printf("timeouts.executor: %s\n", cfg.Timeouts.Executor)
	fmt.Printf("logging.debug_file: %s\n", cfg.Logging.DebugFile)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "store.backend":
		return cfg.Store.Backend, nil
	case "store.path":
		return cfg.Store.Path, nil
	case "airtable.token":
		return config.MaskAPIKey(cfg.Airtable.Token), nil
	case "airtable.base_id":
		return cfg.Airtable.BaseID, nil
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return cfg.Anthropic.Model, nil
	case "anthropic.use_aws_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseAWSBedrock), nil
	case "poller.poll_interval":
		return cfg.Poller.PollInterval.String(), nil
	case "poller.item_delay":
		return cfg.Poller.ItemDelay.String(), nil
	case "timeouts.executor":
		return cfg.Timeouts.Executor.String(), nil
	case "logging.debug_file":
		return cfg.Logging.DebugFile, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "store.backend":
		if value != config.BackendSQLite && value != config.BackendAirtable {
			return fmt.Errorf("invalid backend %q: must be %s or %s", value, config.BackendSQLite, config.BackendAirtable)
		}
		cfg.Store.Backend = value
	case "store.path":
		cfg.Store.Path = value
	case "airtable.token":
		cfg.Airtable.Token = value
	case "airtable.base_id":
		cfg.Airtable.BaseID = value
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.use_aws_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for anthropic.use_aws_bedrock: %w", err)
		}
		cfg.Anthropic.UseAWSBedrock = b
	case "poller.poll_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for poller.poll_interval: %w", err)
		}
		cfg.Poller.PollInterval = d
	case "poller.item_delay":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for poller.item_delay: %w", err)
		}
		cfg.Poller.ItemDelay = d
	case "timeouts.executor":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for timeouts.executor: %w", err)
		}
		cfg.Timeouts.Executor = d
	case "logging.debug_file":
		cfg.Logging.DebugFile = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
