package route

import (
	"math"
	"testing"
)

func TestAnalyze_Categories(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"architecture terms", "design the system architecture for billing", AgentClaude},
		{"creative terms", "write marketing copy for the launch", AgentGPT4},
		{"analysis terms", "research and produce a data analysis report", AgentMultiAgent},
		{"business terms", "reconcile the invoice against finance records", AgentCopilot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.text)
			if got.Agent != tt.want {
				t.Errorf("Analyze(%q).Agent = %q, want %q", tt.text, got.Agent, tt.want)
			}
			if got.Target != DefaultTarget {
				t.Errorf("Target = %q, want %q", got.Target, DefaultTarget)
			}
		})
	}
}

func TestAnalyze_OverrideBeatsScore(t *testing.T) {
	// Heavy analysis keywords, but "follow up" must force the default agent.
	text := "research data analysis report, then follow up with the team"
	got := Analyze(text)
	if got.Agent != AgentClaude {
		t.Errorf("Agent = %q, want %q (override)", got.Agent, AgentClaude)
	}
	if got.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", got.Confidence)
	}
}

func TestAnalyze_OverrideTriggers(t *testing.T) {
	for _, trigger := range []string{"email", "calendar", "meeting", "send", "contact", "follow-up", "draft"} {
		got := Analyze("please handle: " + trigger)
		if got.Agent != AgentClaude {
			t.Errorf("Analyze(%q).Agent = %q, want %q", trigger, got.Agent, AgentClaude)
		}
		if got.Confidence != 0.9 {
			t.Errorf("Analyze(%q).Confidence = %v, want 0.9", trigger, got.Confidence)
		}
	}
}

func TestAnalyze_NoMatchUsesDefault(t *testing.T) {
	got := Analyze("completely unrelated gibberish xyzzy")
	if got.Agent != AgentClaude {
		t.Errorf("Agent = %q, want first-declared agent on no match", got.Agent)
	}
	if got.Confidence != DefaultConfidence {
		t.Errorf("Confidence = %v, want %v", got.Confidence, DefaultConfidence)
	}
}

func TestAnalyze_TieBreakDeclarationOrder(t *testing.T) {
	// One claude keyword and one copilot keyword: claude is declared first.
	got := Analyze("technical invoice review")
	if got.Agent != AgentClaude {
		t.Errorf("Agent = %q, want %q on tie", got.Agent, AgentClaude)
	}
}

func TestAnalyze_ConfidenceNormalized(t *testing.T) {
	// Two matching keywords over four words.
	got := Analyze("design the billing system")
	want := 2.0 / 4.0
	if math.Abs(got.Confidence-want) > 1e-9 {
		t.Errorf("Confidence = %v, want %v", got.Confidence, want)
	}
}

func TestAnalyze_ConfidenceClamped(t *testing.T) {
	// More keyword hits than words is impossible via Fields, but substring
	// matches can exceed the word count on compound words.
	got := Analyze("design+system+architect")
	if got.Confidence > 1 {
		t.Errorf("Confidence = %v, want <= 1", got.Confidence)
	}
}

func TestAnalyze_CaseInsensitive(t *testing.T) {
	got := Analyze("DESIGN THE SYSTEM")
	if got.Agent != AgentClaude {
		t.Errorf("Agent = %q, want %q", got.Agent, AgentClaude)
	}
}
