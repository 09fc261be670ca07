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

// SearchNode is one node of the repair search tree.
//
// Thread Safety: NOT safe for concurrent use. A search tree has a
// single owning goroutine for its whole lifetime, so the fields are
// plain values with no locking.
type SearchNode struct {
	// State is the document snapshot this node represents.
	State SearchState

	// Action is the step that led here. Nil on the root.
	Action *Action

	// Parent is nil on the root.
	Parent *SearchNode

	// Children are the expanded successors, in action order.
	Children []*SearchNode

	// Depth is the distance from the root (root is 0).
	Depth int

	// Visits counts how many iterations passed through this node.
	Visits int

	// TotalReward accumulates backpropagated rewards.
	TotalReward float64
}

// NewSearchNode creates a root node for an initial state.
func NewSearchNode(state SearchState) *SearchNode {
	return &SearchNode{State: state}
}

// AvgReward is the mean backpropagated reward, 0 before any visit.
func (n *SearchNode) AvgReward() float64 {
	if n.Visits == 0 {
		return 0
	}
	return n.TotalReward / float64(n.Visits)
}

// IsLeaf reports whether the node has no expanded children.
func (n *SearchNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// expand creates one placeholder child per available action. Each
// child starts from a copy of the parent state; the action is recorded
// but only applied when the repair loop executes the chosen path.
func (n *SearchNode) expand() {
	if !n.IsLeaf() || n.State.IsTerminal() {
		return
	}
	actions := n.State.AvailableActions()
	n.Children = make([]*SearchNode, 0, len(actions))
	for _, action := range actions {
		action := action
		child := &SearchNode{
			State: SearchState{
				Document:    n.State.Document,
				Issues:      append([]string(nil), n.State.Issues...),
				FixedIssues: append([]string(nil), n.State.FixedIssues...),
				Depth:       n.State.Depth,
				IsValid:     n.State.IsValid,
				Confidence:  n.State.Confidence,
			},
			Action: &action,
			Parent: n,
			Depth:  n.Depth + 1,
		}
		n.Children = append(n.Children, child)
	}
}

// backpropagate adds a reward to this node and every ancestor.
func (n *SearchNode) backpropagate(reward float64) {
	for node := n; node != nil; node = node.Parent {
		node.Visits++
		node.TotalReward += reward
	}
}
