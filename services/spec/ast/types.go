// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ast turns indented key:value contract documents into a node tree.
//
// The parser is a lenient line-oriented approximation of YAML, not a YAML
// parser: lines without a colon and blank lines are skipped silently, and
// parsing never fails for malformed content. The tree it produces is the
// input to the constraint solver.
package ast

import "fmt"

// NodeKind classifies a document node by its role in the contract.
type NodeKind string

const (
	KindVersion    NodeKind = "version"
	KindInfo       NodeKind = "info"
	KindPaths      NodeKind = "paths"
	KindComponents NodeKind = "components"
	KindServers    NodeKind = "servers"
	KindOperation  NodeKind = "operation"
	KindSchema     NodeKind = "schema"
	KindProperty   NodeKind = "property"
)

// String returns the string representation of the kind.
func (k NodeKind) String() string {
	return string(k)
}

// DocumentNode is one parsed key:value entry.
//
// Children are owned exclusively by their parent; the tree has no cycles
// and no cross-links. Path always equals the key sequence of the
// enclosing block nodes, root first.
type DocumentNode struct {
	Kind     NodeKind        `json:"kind"`
	Key      string          `json:"key"`
	Value    string          `json:"value,omitempty"`
	Path     []string        `json:"path,omitempty"`
	Line     int             `json:"line"`
	Children []*DocumentNode `json:"children,omitempty"`
}

// IsBlock reports whether this node opens a nested block (no inline value).
func (n *DocumentNode) IsBlock() bool {
	return n.Value == ""
}

// String returns a human-readable representation of the node.
func (n *DocumentNode) String() string {
	return fmt.Sprintf("DocumentNode{kind=%s, key=%q, line=%d, children=%d}",
		n.Kind, n.Key, n.Line, len(n.Children))
}

// DocumentTree is the parsed form of one contract document.
type DocumentTree struct {
	// Roots holds the top-level nodes in document order.
	Roots []*DocumentNode `json:"roots"`

	// LineCount is the number of lines in the source text, including
	// lines the parser skipped.
	LineCount int `json:"line_count"`
}

// Walk visits every node depth-first in document order. Traversal stops
// early when fn returns false.
func (t *DocumentTree) Walk(fn func(n *DocumentNode) bool) {
	var visit func(nodes []*DocumentNode) bool
	visit = func(nodes []*DocumentNode) bool {
		for _, n := range nodes {
			if !fn(n) {
				return false
			}
			if !visit(n.Children) {
				return false
			}
		}
		return true
	}
	visit(t.Roots)
}

// NodesOfKind collects every node with the given kind in document order.
func (t *DocumentTree) NodesOfKind(kind NodeKind) []*DocumentNode {
	var out []*DocumentNode
	t.Walk(func(n *DocumentNode) bool {
		if n.Kind == kind {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Find returns the first node whose key matches under the given parent
// key sequence, or nil. An empty prefix matches any location.
func (t *DocumentTree) Find(key string, prefix ...string) *DocumentNode {
	var found *DocumentNode
	t.Walk(func(n *DocumentNode) bool {
		if n.Key != key {
			return true
		}
		if !hasPrefix(n.Path, prefix) {
			return true
		}
		found = n
		return false
	})
	return found
}

func hasPrefix(path, prefix []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i, p := range prefix {
		if path[i] != p {
			return false
		}
	}
	return true
}
