package domain

import "testing"

func TestStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
	}{
		{StatusActive, false},
		{StatusAwaitingHuman, false},
		{StatusConverted, true},
		{StatusLost, true},
		{StatusAbandoned, true},
	}

	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("IsTerminal(%s) = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestStatusCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"active to awaiting_human", StatusActive, StatusAwaitingHuman, true},
		{"active to converted", StatusActive, StatusConverted, true},
		{"active to lost", StatusActive, StatusLost, true},
		{"active to abandoned", StatusActive, StatusAbandoned, true},
		{"awaiting_human back to active", StatusAwaitingHuman, StatusActive, true},
		{"awaiting_human to converted", StatusAwaitingHuman, StatusConverted, true},
		{"converted is a sink", StatusConverted, StatusActive, false},
		{"lost is a sink", StatusLost, StatusActive, false},
		{"abandoned is a sink", StatusAbandoned, StatusAwaitingHuman, false},
		{"active does not re-enter active", StatusActive, StatusActive, false},
		{"unknown target rejected", StatusActive, Status("paused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.allowed {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestStatusAcceptsHandoff(t *testing.T) {
	tests := []struct {
		status  Status
		accepts bool
	}{
		{StatusActive, true},
		{StatusAwaitingHuman, true},
		{StatusConverted, false},
		{StatusLost, false},
		{StatusAbandoned, false},
	}

	for _, tt := range tests {
		if got := tt.status.AcceptsHandoff(); got != tt.accepts {
			t.Errorf("AcceptsHandoff(%s) = %v, want %v", tt.status, got, tt.accepts)
		}
	}
}

func TestIsKnownFunnelStage(t *testing.T) {
	for _, stage := range []string{"awareness", "interest", "consideration", "negotiation", "closed_won", "closed_lost"} {
		if !IsKnownFunnelStage(stage) {
			t.Errorf("IsKnownFunnelStage(%q) = false, want true", stage)
		}
	}
	if IsKnownFunnelStage("retention") {
		t.Error("IsKnownFunnelStage(retention) = true, want false")
	}
}

func TestIsKnownRole(t *testing.T) {
	for _, role := range []string{"user", "assistant", "system"} {
		if !IsKnownRole(role) {
			t.Errorf("IsKnownRole(%q) = false, want true", role)
		}
	}
	if IsKnownRole("tool") {
		t.Error("IsKnownRole(tool) = true, want false")
	}
}
