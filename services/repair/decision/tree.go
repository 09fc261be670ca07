// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package decision holds the static repair knowledge base: an immutable
// tree mapping issue patterns to canned fixes with confidence weights.
//
// The tree is built once by BuildTree and never mutated afterwards,
// which makes it safe for unsynchronized concurrent reads from any
// number of repair loops.
package decision

import "strings"

// Node is one entry in the decision tree. Category nodes carry a
// fallback solution for their whole category; leaf nodes carry a
// specific issue pattern.
type Node struct {
	// Category names the branch (security, structural, schema,
	// operations). Set on branch nodes only; empty on leaves.
	Category string

	// IssuePattern is a lowercase substring that identifies the issue.
	// Empty on category nodes.
	IssuePattern string

	// Solution is the canned fix text.
	Solution string

	// Confidence is the fixed weight of this solution.
	Confidence float64

	// Children are more specific nodes under this one.
	Children []*Node
}

// Tree is the immutable decision tree plus the category keyword sets
// used for bucketing.
//
// Thread Safety: Tree is read-only after BuildTree and safe for
// concurrent use without synchronization.
type Tree struct {
	root     *Node
	keywords map[string][]string
	order    []string
}

// Categories returns the category names in fixed bucketing order.
func (t *Tree) Categories() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// FindSolution resolves an issue string to a canned fix.
//
// The issue is normalized (lowercased, trimmed), then the tree is
// descended: a node matches when its own pattern is a substring of the
// issue; a category match searches children first and falls back to
// the category node's own solution; otherwise all children are tried.
// FindSolution is a pure function of the issue string.
//
// Outputs:
//   - string: the solution text ("" when not found).
//   - float64: the solution confidence (0 when not found).
//   - bool: whether a solution was found.
func (t *Tree) FindSolution(issue string) (string, float64, bool) {
	normalized := strings.ToLower(strings.TrimSpace(issue))
	if normalized == "" {
		return "", 0, false
	}
	return t.search(t.root, normalized)
}

func (t *Tree) search(node *Node, issue string) (string, float64, bool) {
	if node.IssuePattern != "" && strings.Contains(issue, node.IssuePattern) {
		return node.Solution, node.Confidence, true
	}

	if node.Category != "" && t.matchesCategory(node.Category, issue) {
		for _, child := range node.Children {
			if sol, conf, ok := t.search(child, issue); ok {
				return sol, conf, ok
			}
		}
		if node.Solution != "" {
			return node.Solution, node.Confidence, true
		}
	}

	for _, child := range node.Children {
		if sol, conf, ok := t.search(child, issue); ok {
			return sol, conf, ok
		}
	}
	return "", 0, false
}

// matchesCategory reports whether the issue contains any keyword of
// the named category. The issue must already be normalized.
func (t *Tree) matchesCategory(category, issue string) bool {
	for _, kw := range t.keywords[category] {
		if strings.Contains(issue, kw) {
			return true
		}
	}
	return false
}

// Categorize buckets a normalized-or-raw issue into the first matching
// category, or "general" when no keyword set matches.
func (t *Tree) Categorize(issue string) string {
	normalized := strings.ToLower(strings.TrimSpace(issue))
	for _, category := range t.order {
		if t.matchesCategory(category, normalized) {
			return category
		}
	}
	return "general"
}
