package executor

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(ClientConfig{APIKey: "sk-ant-test"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if client.Model() != anthropic.ModelClaudeSonnet4_20250514 {
		t.Errorf("Model() = %q, want default sonnet", client.Model())
	}
	if client.Tracker() == nil {
		t.Fatal("Tracker() returned nil")
	}
	if client.Tracker().Calls() != 0 {
		t.Errorf("fresh tracker Calls() = %d, want 0", client.Tracker().Calls())
	}
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Fatal("expected error when no API key is available")
	}
}

func TestNewClient_BedrockModelTranslation(t *testing.T) {
	client, err := NewClient(ClientConfig{
		Model:         anthropic.ModelClaudeSonnet4_20250514,
		UseAWSBedrock: true,
		AWSRegion:     "us-west-2",
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	want := anthropic.Model("us.anthropic.claude-sonnet-4-20250514-v1:0")
	if client.Model() != want {
		t.Errorf("Model() = %q, want bedrock inference profile %q", client.Model(), want)
	}
}

func TestTranslateModelForBedrock_Unknown(t *testing.T) {
	custom := anthropic.Model("my-provisioned-model")
	if got := translateModelForBedrock(custom); got != custom {
		t.Errorf("translateModelForBedrock(%q) = %q, want unchanged", custom, got)
	}
}
