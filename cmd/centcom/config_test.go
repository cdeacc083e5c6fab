package main

import (
	"strings"
	"testing"
	"time"

	"github.com/superchase/centcom/internal/config"
)

func TestGetConfigValue_MasksSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.Anthropic.APIKey = "sk-ant-REDACTED"
	cfg.Airtable.Token = "patABCDEFGHIJKLMNOPQRSTUV"

	got, err := getConfigValue(cfg, "anthropic.api_key")
	if err != nil {
		t.Fatalf("getConfigValue failed: %v", err)
	}
	if got != "sk-ant-...wxyz" {
		t.Errorf("masked api key = %q, want prefix+suffix form", got)
	}
	if strings.Contains(got, "ghijkl") {
		t.Errorf("masked api key %q leaks key material", got)
	}

	got, err = getConfigValue(cfg, "airtable.token")
	if err != nil {
		t.Fatalf("getConfigValue failed: %v", err)
	}
	if strings.Contains(got, "BCDEFGHIJKLMNOPQR") {
		t.Errorf("masked token %q leaks token material", got)
	}

	cfg.Anthropic.APIKey = ""
	got, err = getConfigValue(cfg, "anthropic.api_key")
	if err != nil {
		t.Fatalf("getConfigValue failed: %v", err)
	}
	if got != "(not set)" {
		t.Errorf("unset api key displays as %q, want (not set)", got)
	}
}

func TestSetConfigValue(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(*config.Config) bool
	}{
		{"backend sqlite", "store.backend", "sqlite", false, func(c *config.Config) bool { return c.Store.Backend == "sqlite" }},
		{"backend invalid", "store.backend", "postgres", true, nil},
		{"poll interval", "poller.poll_interval", "45s", false, func(c *config.Config) bool { return c.Poller.PollInterval == 45*time.Second }},
		{"poll interval invalid", "poller.poll_interval", "soon", true, nil},
		{"executor timeout", "timeouts.executor", "2m", false, func(c *config.Config) bool { return c.Timeouts.Executor == 2*time.Minute }},
		{"bedrock toggle", "anthropic.use_aws_bedrock", "true", false, func(c *config.Config) bool { return c.Anthropic.UseAWSBedrock }},
		{"bedrock invalid", "anthropic.use_aws_bedrock", "maybe", true, nil},
		{"unknown key", "executor.workers", "3", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			err := setConfigValue(cfg, tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("setConfigValue(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("setConfigValue(%q, %q) did not apply", tt.key, tt.value)
			}
		})
	}
}
