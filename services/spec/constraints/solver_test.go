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
	"strings"
	"testing"

	"github.com/AleutianAI/SpecMend/services/spec/ast"
)

func strptr(s string) *string { return &s }

func TestSolveEmptySet(t *testing.T) {
	result := Solve(nil)
	if !result.IsSatisfied {
		t.Error("empty set must be satisfied")
	}
	if result.SatisfactionRate != 1.0 {
		t.Errorf("rate = %v, want 1.0", result.SatisfactionRate)
	}
}

func TestSolveByKind(t *testing.T) {
	tests := []struct {
		name string
		c    Constraint
		want bool
	}{
		{"required present", Constraint{Kind: KindRequired, ActualValue: strptr("x")}, true},
		{"required absent", Constraint{Kind: KindRequired}, false},
		{"format wildcard non-empty", Constraint{Kind: KindFormat, ExpectedValue: "*", ActualValue: strptr("object")}, true},
		{"format wildcard empty", Constraint{Kind: KindFormat, ExpectedValue: "*", ActualValue: strptr("")}, false},
		{"format regex match", Constraint{Kind: KindFormat, ExpectedValue: `^3\.\d+(\.\d+)?$`, ActualValue: strptr("3.0.0")}, true},
		{"format regex mismatch", Constraint{Kind: KindFormat, ExpectedValue: `^3\.\d+(\.\d+)?$`, ActualValue: strptr("2.0")}, false},
		{"format nil actual", Constraint{Kind: KindFormat, ExpectedValue: "*"}, false},
		{"reference local", Constraint{Kind: KindReference, ActualValue: strptr("#/components/schemas/Widget")}, true},
		{"reference external", Constraint{Kind: KindReference, ActualValue: strptr("http://example.com#x")}, false},
		{"dependency stub", Constraint{Kind: KindDependency}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Solve([]Constraint{tc.c})
			if (len(result.Violations) == 0) != tc.want {
				t.Errorf("satisfied = %v, want %v", len(result.Violations) == 0, tc.want)
			}
		})
	}
}

func TestSolveSatisfactionRate(t *testing.T) {
	cs := []Constraint{
		{Kind: KindRequired, ActualValue: strptr("a")},
		{Kind: KindRequired, ActualValue: strptr("b")},
		{Kind: KindRequired},
		{Kind: KindRequired},
	}
	result := Solve(cs)
	if result.IsSatisfied {
		t.Error("set with violations must not be satisfied")
	}
	if result.SatisfactionRate != 0.5 {
		t.Errorf("rate = %v, want 0.5", result.SatisfactionRate)
	}
	if len(result.Satisfied) != 2 || len(result.Violations) != 2 {
		t.Errorf("satisfied/violations = %d/%d, want 2/2", len(result.Satisfied), len(result.Violations))
	}
}

func TestExtract(t *testing.T) {
	tree := ast.Parse(`openapi: 3.0.0
info:
  title: Widget API
paths:
  /widgets:
    get:
      operationId: listWidgets
    post:
      summary: no id here
components:
  schemas:
    Widget:
      type: object
      example: {}
    Gadget:
      description: typeless
`)

	cs := Extract(tree)
	result := Solve(cs)

	// 1 version + 2 sections + 2 operations + 2 schemas x 2.
	if len(cs) != 9 {
		t.Fatalf("expected 9 constraints, got %d: %v", len(cs), cs)
	}

	t.Run("version satisfied", func(t *testing.T) {
		if cs[0].Kind != KindFormat || cs[0].ActualValue == nil {
			t.Errorf("version constraint malformed: %+v", cs[0])
		}
		if violated(result, "openapi 3.x") {
			t.Error("3.0.0 should satisfy the version format")
		}
	})

	t.Run("operation without id violates", func(t *testing.T) {
		if !violated(result, "POST") {
			t.Errorf("post without operationId should violate, got %+v", result.Violations)
		}
		if violated(result, "GET") {
			t.Error("get with operationId should not violate")
		}
	})

	t.Run("schema constraints", func(t *testing.T) {
		if violated(result, "schema Widget must declare a type") {
			t.Error("Widget has a type")
		}
		if !violated(result, "schema Gadget must declare a type") {
			t.Error("Gadget is typeless and should violate")
		}
		if !violated(result, "schema Gadget should carry an example") {
			t.Error("Gadget has no example and should violate")
		}
	})

	t.Run("document violations are critical", func(t *testing.T) {
		badTree := ast.Parse("servers:\n  - url: x\n")
		badResult := Solve(Extract(badTree))
		found := false
		for _, v := range badResult.Violations {
			if v.Constraint.Context == "document" && v.Severity == SeverityCritical {
				found = true
			}
		}
		if !found {
			t.Error("missing document sections should be critical")
		}
	})
}

func violated(result SolveResult, substr string) bool {
	for _, v := range result.Violations {
		if strings.Contains(v.Message, substr) {
			return true
		}
	}
	return false
}
