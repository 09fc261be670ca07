// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package mcts

import (
	"math"
	"testing"
)

func issueList(n int) []string {
	issues := make([]string, n)
	for i := range issues {
		issues[i] = string(rune('a'+i)) + " issue"
	}
	return issues
}

func TestAvailableActionsCapsFixes(t *testing.T) {
	state := SearchState{Issues: issueList(8)}
	actions := state.AvailableActions()

	fixes := 0
	for _, a := range actions {
		if a.Kind == ActionFix {
			fixes++
		}
	}
	if fixes != MaxFixActions {
		t.Errorf("fix actions = %d, want %d", fixes, MaxFixActions)
	}
	if actions[len(actions)-1].Kind != ActionValidate {
		t.Error("validate action must always be offered last")
	}
}

func TestAvailableActionsEnhanceGate(t *testing.T) {
	tests := []struct {
		issues      int
		wantEnhance int
	}{
		{0, 2},
		{1, 2},
		{2, 2},
		{3, 0},
	}
	for _, tt := range tests {
		state := SearchState{Issues: issueList(tt.issues)}
		got := 0
		for _, a := range state.AvailableActions() {
			if a.Kind == ActionEnhance {
				got++
			}
		}
		if got != tt.wantEnhance {
			t.Errorf("issues=%d: enhance actions = %d, want %d", tt.issues, got, tt.wantEnhance)
		}
	}
}

func TestApplyFixMovesIssue(t *testing.T) {
	state := SearchState{Issues: []string{"first", "second"}}
	next := state.Apply(Action{Kind: ActionFix, Target: "first"})

	if len(next.Issues) != 1 || next.Issues[0] != "second" {
		t.Errorf("Issues = %v, want [second]", next.Issues)
	}
	if len(next.FixedIssues) != 1 || next.FixedIssues[0] != "first" {
		t.Errorf("FixedIssues = %v, want [first]", next.FixedIssues)
	}
	if next.Depth != 1 {
		t.Errorf("Depth = %d, want 1", next.Depth)
	}

	// The receiver must be untouched.
	if len(state.Issues) != 2 || len(state.FixedIssues) != 0 || state.Depth != 0 {
		t.Errorf("Apply mutated the receiver: %+v", state)
	}
}

func TestApplyConfidenceFormula(t *testing.T) {
	state := SearchState{Issues: []string{"first", "second"}}
	next := state.Apply(Action{Kind: ActionFix, Target: "first"})

	// fixed=1, outstanding=1, depth=1: 1/3 - 0.05
	want := 1.0/3.0 - 0.05
	if math.Abs(next.Confidence-want) > 1e-9 {
		t.Errorf("Confidence = %v, want %v", next.Confidence, want)
	}
}

func TestApplyValidateRequiresCleanState(t *testing.T) {
	dirty := SearchState{Issues: []string{"first"}}
	if dirty.Apply(Action{Kind: ActionValidate}).IsValid {
		t.Error("validate accepted a state with outstanding issues")
	}

	clean := SearchState{FixedIssues: []string{"first", "second", "third"}}
	next := clean.Apply(Action{Kind: ActionValidate})
	// fixed=3, outstanding=0, depth=1: 3/4 - 0.05 = 0.70
	if !next.IsValid {
		t.Errorf("validate rejected a clean state with confidence %v", next.Confidence)
	}

	// Deep paths decay below the confidence threshold.
	deep := SearchState{FixedIssues: []string{"first", "second", "third"}, Depth: 4}
	if deep.Apply(Action{Kind: ActionValidate}).IsValid {
		t.Error("validate accepted a state whose confidence decayed below the threshold")
	}
}

func TestRewardIsUnclamped(t *testing.T) {
	state := SearchState{Depth: MaxSearchDepth, Confidence: -0.4}
	if reward := state.Reward(); reward >= 0 {
		t.Errorf("Reward = %v, want negative", reward)
	}

	valid := SearchState{IsValid: true, Confidence: 0.95}
	if reward := valid.Reward(); reward <= 1 {
		t.Errorf("Reward = %v, want above 1 from the validity bonus", reward)
	}
}

func TestRewardValidityBonus(t *testing.T) {
	base := SearchState{Confidence: 0.5, Depth: 2}
	valid := base
	valid.IsValid = true

	diff := valid.Reward() - base.Reward()
	if math.Abs(diff-0.2) > 1e-9 {
		t.Errorf("validity bonus = %v, want 0.2", diff)
	}
}

func TestIsTerminal(t *testing.T) {
	if (SearchState{Issues: issueList(2)}).IsTerminal() {
		t.Error("state with outstanding issues must not be terminal")
	}
	if !(SearchState{}).IsTerminal() {
		t.Error("state with no outstanding issues must be terminal")
	}
	if !(SearchState{Issues: issueList(1), IsValid: true}).IsTerminal() {
		t.Error("valid state must be terminal")
	}
	if !(SearchState{Issues: issueList(1), Depth: MaxSearchDepth}).IsTerminal() {
		t.Error("max-depth state must be terminal")
	}
}
