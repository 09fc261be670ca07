// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"strings"
)

// IndentUnit is the fixed indentation width of the document format.
const IndentUnit = 2

// httpMethods are the method keys that become operation nodes under paths.
var httpMethods = map[string]bool{
	"get":     true,
	"post":    true,
	"put":     true,
	"delete":  true,
	"patch":   true,
	"head":    true,
	"options": true,
	"trace":   true,
}

// frame is one open block on the parser's path stack.
type frame struct {
	node   *DocumentNode
	indent int
}

// Parse converts indented key:value text into a DocumentTree.
//
// Parsing is lenient by contract: blank lines, lines without a colon,
// and tab-indented lines are skipped rather than rejected. Malformed
// input degrades by omitting nodes; Parse never fails.
//
// Outputs:
//   - *DocumentTree: never nil; empty input yields a tree with no roots.
func Parse(text string) *DocumentTree {
	lines := strings.Split(text, "\n")
	tree := &DocumentTree{LineCount: len(lines)}

	var stack []frame

	for i, raw := range lines {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		// The format is space-indented; tab indentation is malformed.
		if strings.HasPrefix(raw, "\t") {
			continue
		}

		indent := indentLevel(raw)
		line := strings.TrimSpace(raw)

		colon := strings.Index(line, ":")
		if colon < 0 {
			continue
		}

		key := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])
		if key == "" {
			continue
		}

		// Pop blocks until the stack is consistent with this indentation.
		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}

		path := make([]string, len(stack))
		for j, f := range stack {
			path[j] = f.node.Key
		}

		node := &DocumentNode{
			Kind: inferKind(key, path),
			Key:  key,
			Value: value,
			Path: path,
			Line: i + 1,
		}

		if len(stack) == 0 {
			tree.Roots = append(tree.Roots, node)
		} else {
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, node)
		}

		// An empty value opens a new block; deeper lines nest under it.
		if value == "" {
			stack = append(stack, frame{node: node, indent: indent})
		}
	}

	return tree
}

// indentLevel computes the nesting level from leading spaces.
// Odd indentation rounds down rather than failing.
func indentLevel(line string) int {
	spaces := 0
	for _, r := range line {
		if r != ' ' {
			break
		}
		spaces++
	}
	return spaces / IndentUnit
}

// inferKind classifies a key given the enclosing block path. Where the
// key alone is ambiguous the decision falls to whether "paths" or
// "schemas" appears in the path.
func inferKind(key string, path []string) NodeKind {
	switch strings.ToLower(key) {
	case "openapi", "swagger":
		return KindVersion
	case "info":
		return KindInfo
	case "paths":
		return KindPaths
	case "components":
		return KindComponents
	case "servers":
		return KindServers
	}

	if contains(path, "schemas") {
		// Direct children of the schemas block are named schemas;
		// anything deeper is a property of one.
		if path[len(path)-1] == "schemas" {
			return KindSchema
		}
		return KindProperty
	}

	if contains(path, "paths") {
		if httpMethods[strings.ToLower(key)] {
			return KindOperation
		}
		if strings.HasPrefix(key, "/") {
			return KindPaths
		}
	}

	return KindProperty
}

func contains(path []string, key string) bool {
	for _, p := range path {
		if p == key {
			return true
		}
	}
	return false
}
