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

import "fmt"

// Search tuning constants.
const (
	// MaxFixActions caps how many fix actions a state offers so wide
	// issue lists do not blow up the branching factor.
	MaxFixActions = 5

	// EnhanceIssueLimit is the largest outstanding issue count at
	// which an enhance action is still offered.
	EnhanceIssueLimit = 2

	// MaxSearchDepth bounds how far a repair path may grow.
	MaxSearchDepth = 10

	// ValidityConfidenceThreshold is the minimum confidence for a
	// validate action to mark the state valid.
	ValidityConfidenceThreshold = 0.7

	confidenceDepthPenalty = 0.05
	rewardDepthPenalty     = 0.02
	validityBonus          = 0.2
)

// ActionKind discriminates the repair actions a state can take.
type ActionKind string

const (
	ActionFix      ActionKind = "fix"
	ActionEnhance  ActionKind = "enhance"
	ActionValidate ActionKind = "validate"
)

// Action is one candidate repair step.
type Action struct {
	// Kind is the action discriminator.
	Kind ActionKind

	// Target is the issue text a fix action addresses. Empty for
	// enhance and validate actions.
	Target string

	// Description is a human-readable summary for logs and traces.
	Description string
}

// SearchState is a snapshot of a document part-way through repair.
// States are values: Apply returns a new state and never mutates the
// receiver, so tree nodes can share history safely.
type SearchState struct {
	// Document is the current document text.
	Document string

	// Issues are the outstanding validation issues.
	Issues []string

	// FixedIssues are the issues resolved on the path to this state.
	FixedIssues []string

	// Depth counts repair steps taken from the initial state.
	Depth int

	// IsValid records whether a validate action accepted this state.
	IsValid bool

	// Confidence is the heuristic repair-progress estimate. It can go
	// negative at depth; rewards are deliberately unclamped.
	Confidence float64
}

// AvailableActions enumerates the candidate steps from this state: one
// fix per outstanding issue up to MaxFixActions, an enhance action when
// the issue list is nearly clear, and always a validate action.
func (s SearchState) AvailableActions() []Action {
	actions := make([]Action, 0, MaxFixActions+3)

	for i, issue := range s.Issues {
		if i >= MaxFixActions {
			break
		}
		actions = append(actions, Action{
			Kind:        ActionFix,
			Target:      issue,
			Description: fmt.Sprintf("fix: %s", issue),
		})
	}

	if len(s.Issues) <= EnhanceIssueLimit {
		actions = append(actions,
			Action{
				Kind:        ActionEnhance,
				Description: "enhance descriptions and summaries",
			},
			Action{
				Kind:        ActionEnhance,
				Description: "enhance examples and response coverage",
			},
		)
	}

	actions = append(actions, Action{
		Kind:        ActionValidate,
		Description: "validate the current document",
	})

	return actions
}

// Apply produces the successor state for an action.
//
// Inputs:
//   - action: The step to take. A fix whose Target is not outstanding
//     still advances depth but resolves nothing.
//
// Outputs:
//   - SearchState: A fresh state with copied slices.
func (s SearchState) Apply(action Action) SearchState {
	next := SearchState{
		Document:    s.Document,
		Issues:      append([]string(nil), s.Issues...),
		FixedIssues: append([]string(nil), s.FixedIssues...),
		Depth:       s.Depth + 1,
		IsValid:     s.IsValid,
	}

	switch action.Kind {
	case ActionFix:
		for i, issue := range next.Issues {
			if issue == action.Target {
				next.Issues = append(next.Issues[:i], next.Issues[i+1:]...)
				next.FixedIssues = append(next.FixedIssues, issue)
				break
			}
		}
	case ActionValidate:
		next.IsValid = len(next.Issues) == 0 &&
			next.progressConfidence() >= ValidityConfidenceThreshold
	case ActionEnhance:
		// Document-quality step: no issue bookkeeping changes.
	}

	next.Confidence = next.progressConfidence()
	return next
}

// progressConfidence estimates repair progress: the share of issues
// already fixed, discounted for every step spent getting here.
func (s SearchState) progressConfidence() float64 {
	fixed := float64(len(s.FixedIssues))
	outstanding := float64(len(s.Issues))
	return fixed/(fixed+outstanding+1) - confidenceDepthPenalty*float64(s.Depth)
}

// Reward scores this state for backpropagation. Deeper paths pay a
// small penalty and validated states earn a bonus. The result is not
// clamped to [0, 1].
func (s SearchState) Reward() float64 {
	reward := s.Confidence - rewardDepthPenalty*float64(s.Depth)
	if s.IsValid {
		reward += validityBonus
	}
	return reward
}

// IsTerminal reports whether the search should stop expanding below
// this state: every outstanding issue is gone, the state validated,
// or the depth budget is spent.
func (s SearchState) IsTerminal() bool {
	return len(s.Issues) == 0 || s.IsValid || s.Depth >= MaxSearchDepth
}
