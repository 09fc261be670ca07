// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package constraints

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AleutianAI/SpecMend/services/spec/ast"
)

// versionPattern is the accepted contract version format.
const versionPattern = `^3\.\d+(\.\d+)?$`

// requiredSections are the top-level blocks every contract must have.
var requiredSections = []string{"info", "paths"}

// Extract walks the tree once and derives the constraint set:
// one version constraint, one per required top-level section, one
// operationId constraint per operation node, and type/example
// constraints per schema node.
func Extract(tree *ast.DocumentTree) []Constraint {
	var cs []Constraint

	cs = append(cs, versionConstraint(tree))
	cs = append(cs, sectionConstraints(tree)...)

	tree.Walk(func(n *ast.DocumentNode) bool {
		switch n.Kind {
		case ast.KindOperation:
			cs = append(cs, operationConstraint(n))
		case ast.KindSchema:
			cs = append(cs, schemaConstraints(n)...)
		}
		return true
	})

	return cs
}

func versionConstraint(tree *ast.DocumentTree) Constraint {
	c := Constraint{
		Kind:          KindFormat,
		Path:          []string{"openapi"},
		Requirement:   "document must declare an openapi 3.x version",
		ExpectedValue: versionPattern,
		Context:       "document",
	}
	if n := tree.Find("openapi"); n != nil && n.Value != "" {
		v := n.Value
		c.ActualValue = &v
	}
	return c
}

func sectionConstraints(tree *ast.DocumentTree) []Constraint {
	cs := make([]Constraint, 0, len(requiredSections))
	for _, section := range requiredSections {
		c := Constraint{
			Kind:        KindRequired,
			Path:        []string{section},
			Requirement: fmt.Sprintf("document must contain a top-level %s section", section),
			Context:     "document",
		}
		if n := tree.Find(section); n != nil {
			present := n.Key
			c.ActualValue = &present
		}
		cs = append(cs, c)
	}
	return cs
}

func operationConstraint(op *ast.DocumentNode) Constraint {
	c := Constraint{
		Kind:        KindRequired,
		Path:        append(append([]string{}, op.Path...), op.Key),
		Requirement: fmt.Sprintf("operation %s %s must declare an operationId", strings.ToUpper(op.Key), lastPathSegment(op.Path)),
		Context:     op.Key,
	}
	for _, child := range op.Children {
		if child.Key == "operationId" && child.Value != "" {
			v := child.Value
			c.ActualValue = &v
			break
		}
	}
	return c
}

func schemaConstraints(schema *ast.DocumentNode) []Constraint {
	base := append(append([]string{}, schema.Path...), schema.Key)

	typeC := Constraint{
		Kind:          KindFormat,
		Path:          base,
		Requirement:   fmt.Sprintf("schema %s must declare a type", schema.Key),
		ExpectedValue: "*",
		Context:       schema.Key,
	}
	exampleC := Constraint{
		Kind:        KindRequired,
		Path:        base,
		Requirement: fmt.Sprintf("schema %s should carry an example", schema.Key),
		Context:     schema.Key,
	}

	for _, child := range schema.Children {
		switch child.Key {
		case "type":
			if child.Value != "" {
				v := child.Value
				typeC.ActualValue = &v
			}
		case "example", "examples":
			v := child.Value
			if v == "" {
				v = child.Key
			}
			exampleC.ActualValue = &v
		}
	}

	return []Constraint{typeC, exampleC}
}

func lastPathSegment(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}

// Solve evaluates a constraint set by kind and reports the satisfied
// constraints, the violations, and the satisfaction rate. An empty set
// is satisfied with rate 1.0.
func Solve(cs []Constraint) SolveResult {
	result := SolveResult{SatisfactionRate: 1.0, IsSatisfied: true}
	if len(cs) == 0 {
		return result
	}

	for _, c := range cs {
		if satisfied(c) {
			result.Satisfied = append(result.Satisfied, c)
			continue
		}
		result.Violations = append(result.Violations, Violation{
			Constraint: c,
			Message:    violationMessage(c),
			Severity:   severityFor(c),
		})
	}

	result.IsSatisfied = len(result.Violations) == 0
	result.SatisfactionRate = float64(len(result.Satisfied)) / float64(len(cs))
	return result
}

// satisfied dispatches on the constraint kind.
func satisfied(c Constraint) bool {
	switch c.Kind {
	case KindRequired:
		return c.ActualValue != nil
	case KindFormat:
		if c.ActualValue == nil {
			return false
		}
		if c.ExpectedValue == "*" {
			return *c.ActualValue != ""
		}
		matched, err := regexp.MatchString(c.ExpectedValue, *c.ActualValue)
		return err == nil && matched
	case KindReference:
		return c.ActualValue != nil && strings.HasPrefix(*c.ActualValue, "#/")
	case KindDependency:
		// Reserved for future dependency rules.
		return true
	default:
		return false
	}
}

func violationMessage(c Constraint) string {
	if c.ActualValue == nil {
		return fmt.Sprintf("%s (missing)", c.Requirement)
	}
	return fmt.Sprintf("%s (got %q)", c.Requirement, *c.ActualValue)
}

// severityFor ranks violations: absent document sections are critical,
// absent values are major, malformed values are minor.
func severityFor(c Constraint) Severity {
	if c.Context == "document" {
		return SeverityCritical
	}
	if c.ActualValue == nil {
		return SeverityMajor
	}
	return SeverityMinor
}
