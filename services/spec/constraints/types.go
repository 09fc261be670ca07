// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package constraints derives declarative rules from a parsed contract
// tree and evaluates them.
//
// Constraints and violations are ordinary data, not errors: the caller
// decides what to do with an unsatisfied set. Dispatch is a switch over
// a small fixed set of constraint kinds; the set is not extensible.
package constraints

import "fmt"

// Kind identifies how a constraint is evaluated.
type Kind string

const (
	// KindRequired succeeds iff an actual value is present.
	KindRequired Kind = "required"
	// KindFormat succeeds by wildcard ("*" means non-empty) or by
	// regex match of the actual value against the expected value.
	KindFormat Kind = "format"
	// KindReference succeeds iff the value is a local reference ("#/...").
	KindReference Kind = "reference"
	// KindDependency is reserved for future rules and always succeeds.
	KindDependency Kind = "dependency"
)

// Severity ranks a violation.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// Constraint is one declarative rule derived from the document tree.
type Constraint struct {
	Kind Kind `json:"kind"`

	// Path locates the node the constraint was derived from, root first.
	Path []string `json:"path,omitempty"`

	// Requirement is the human-readable statement of the rule.
	Requirement string `json:"requirement"`

	// ExpectedValue is the wildcard or pattern for format constraints.
	ExpectedValue string `json:"expected_value,omitempty"`

	// ActualValue is the observed value; nil means absent.
	ActualValue *string `json:"actual_value,omitempty"`

	// Context names the document region the constraint came from
	// (e.g. "document", an operation key, or a schema name).
	Context string `json:"context,omitempty"`
}

// String returns a short human-readable form of the constraint.
func (c Constraint) String() string {
	return fmt.Sprintf("Constraint{%s: %s}", c.Kind, c.Requirement)
}

// Violation pairs an unsatisfied constraint with a message and severity.
type Violation struct {
	Constraint Constraint `json:"constraint"`
	Message    string     `json:"message"`
	Severity   Severity   `json:"severity"`
}

// SolveResult is the outcome of evaluating a constraint set.
type SolveResult struct {
	IsSatisfied bool         `json:"is_satisfied"`
	Satisfied   []Constraint `json:"satisfied,omitempty"`
	Violations  []Violation  `json:"violations,omitempty"`

	// SatisfactionRate is satisfied / total, or 1.0 for an empty set.
	SatisfactionRate float64 `json:"satisfaction_rate"`
}
