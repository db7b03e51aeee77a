package rewrite

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("Checkout is slow", "Takes 10 seconds on mobile.")

	if !strings.Contains(got, "Ticket Title: Checkout is slow") {
		t.Error("summary not embedded")
	}
	if !strings.Contains(got, "Takes 10 seconds on mobile.") {
		t.Error("description not embedded")
	}
	// The model is held to the exact three-section output contract.
	for _, marker := range []string{"USER STORY:", "ACCEPTANCE CRITERIA:", "TECHNICAL CONTEXT:"} {
		if !strings.Contains(got, marker) {
			t.Errorf("prompt missing %q", marker)
		}
	}
}

func TestBuildPrompt_Defaults(t *testing.T) {
	got := BuildPrompt("", "")
	if !strings.Contains(got, "Ticket Title: No Title") {
		t.Error("missing summary default")
	}
	if !strings.Contains(got, "No Description") {
		t.Error("missing description default")
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	a := BuildPrompt("Add dark mode", "Users asked for it.")
	b := BuildPrompt("Add dark mode", "Users asked for it.")
	if a != b {
		t.Error("prompt should be deterministic")
	}
}
