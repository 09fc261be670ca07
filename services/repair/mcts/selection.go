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

import "math"

// DefaultExplorationConstant is the standard UCB1 C parameter.
var DefaultExplorationConstant = math.Sqrt(2)

// UCB1Score scores a child for selection:
//
//	UCB1(node) = avgReward + C * sqrt(ln(parentVisits) / nodeVisits)
//
// Unvisited nodes score +Inf so every child is tried at least once.
func UCB1Score(node *SearchNode, parentVisits float64, c float64) float64 {
	if node.Visits == 0 {
		return math.Inf(1)
	}
	if parentVisits < 1 {
		parentVisits = 1 // Avoid log(0)
	}
	return node.AvgReward() + c*math.Sqrt(math.Log(parentVisits)/float64(node.Visits))
}

// selectChild picks the child with the best UCB1 score, preferring the
// first unvisited child outright.
func selectChild(parent *SearchNode, c float64) *SearchNode {
	if parent.IsLeaf() {
		return nil
	}

	parentVisits := float64(parent.Visits)
	var best *SearchNode
	bestScore := math.Inf(-1)

	for _, child := range parent.Children {
		if child.Visits == 0 {
			return child
		}
		score := UCB1Score(child, parentVisits, c)
		if score > bestScore {
			bestScore = score
			best = child
		}
	}
	return best
}

// descend traverses from root to a leaf using UCB1 and returns the
// leaf reached.
func descend(root *SearchNode, c float64) *SearchNode {
	node := root
	for !node.IsLeaf() {
		next := selectChild(node, c)
		if next == nil {
			break
		}
		node = next
	}
	return node
}
