package models

import "testing"

func TestStatusValid(t *testing.T) {
	valid := []Status{StatusQueued, StatusInProgress, StatusDone, StatusError}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("Valid() = false for %q, want true", s)
		}
	}
	invalid := []Status{"", "pending", "DONE", "cancelled"}
	for _, s := range invalid {
		if s.Valid() {
			t.Errorf("Valid() = true for %q, want false", s)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusQueued, false},
		{StatusInProgress, false},
		{StatusDone, true},
		{StatusError, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestPriorityRank(t *testing.T) {
	tests := []struct {
		priority Priority
		want     int
	}{
		{PriorityP0, 0},
		{PriorityP1, 1},
		{PriorityP2, 2},
		{PriorityP3, 3},
		{Priority(""), 2},
		{Priority("P9"), 2},
	}
	for _, tt := range tests {
		if got := tt.priority.Rank(); got != tt.want {
			t.Errorf("%q.Rank() = %d, want %d", tt.priority, got, tt.want)
		}
	}
}

func TestPriorityLabel(t *testing.T) {
	tests := []struct {
		priority Priority
		want     string
	}{
		{PriorityP0, "critical"},
		{PriorityP1, "high"},
		{PriorityP2, "medium"},
		{PriorityP3, "low"},
		{Priority(""), "medium"},
	}
	for _, tt := range tests {
		if got := tt.priority.Label(); got != tt.want {
			t.Errorf("%q.Label() = %q, want %q", tt.priority, got, tt.want)
		}
	}
}

func TestEffectivePriority(t *testing.T) {
	item := &WorkItem{}
	if got := item.EffectivePriority(); got != PriorityP2 {
		t.Errorf("EffectivePriority() = %q, want P2 for unset priority", got)
	}

	item.Priority = PriorityP0
	if got := item.EffectivePriority(); got != PriorityP0 {
		t.Errorf("EffectivePriority() = %q, want P0", got)
	}
}
