// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package structure

import (
	"strings"
	"testing"
)

// cleanDoc passes every default check.
const cleanDoc = `openapi: 3.0.0
info:
  title: Widget API
  description: CRUD for widgets
paths:
  /widgets:
    get:
      operationId: listWidgets
      responses:
        '200':
          description: OK
          content:
            application/json:
              example: []
        '400':
          description: Bad request
          content:
            application/json:
              example: {}
`

func hasIssueContaining(t *testing.T, issues []string, substrings ...string) bool {
	t.Helper()
	for _, issue := range issues {
		all := true
		for _, s := range substrings {
			if !strings.Contains(issue, s) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func TestValidateCleanDocument(t *testing.T) {
	issues := NewValidator().Validate(cleanDoc)
	if len(issues) != 0 {
		t.Errorf("clean document should have no issues, got: %v", issues)
	}
}

func TestDuplicatePathBlocks(t *testing.T) {
	doc := strings.Replace(cleanDoc, "paths:\n", "paths:\n  /widgets:\n    post:\n      operationId: addWidget\n", 1)
	issues := NewValidator().Validate(doc)

	if !hasIssueContaining(t, issues, "/widgets", "2") {
		t.Errorf("expected a duplicate-path issue mentioning /widgets and the count 2, got: %v", issues)
	}
	if !hasIssueContaining(t, issues, "merge duplicate paths") {
		t.Errorf("expected merge guidance, got: %v", issues)
	}
}

func TestGetWithRequestBody(t *testing.T) {
	doc := strings.Replace(cleanDoc, "    get:\n", "    get:\n      requestBody:\n        required: true\n", 1)
	issues := NewValidator().Validate(doc)
	if !hasIssueContaining(t, issues, "GET", "requestBody") {
		t.Errorf("expected GET/requestBody issue, got: %v", issues)
	}
}

func TestSecuritySchemeNesting(t *testing.T) {
	t.Run("top-level securitySchemes", func(t *testing.T) {
		issues := NewValidator().Validate(cleanDoc + "securitySchemes:\n  bearerAuth:\n    type: http\n")
		if !hasIssueContaining(t, issues, "securitySchemes", "components") {
			t.Errorf("expected nesting issue, got: %v", issues)
		}
	})

	t.Run("every occurrence is flagged", func(t *testing.T) {
		doc := cleanDoc +
			"securitySchemes:\n  bearerAuth:\n    type: http\n" +
			"servers:\n  - url: http://localhost\n" +
			"securitySchemes:\n  apiKeyAuth:\n    type: apiKey\n"
		issues := NewValidator().Validate(doc)
		var nesting int
		for _, issue := range issues {
			if strings.Contains(issue, "securitySchemes") {
				nesting++
			}
		}
		if nesting != 2 {
			t.Errorf("expected 2 nesting issues, got %d: %v", nesting, issues)
		}
	})

	t.Run("properly nested", func(t *testing.T) {
		doc := cleanDoc + "components:\n  securitySchemes:\n    bearerAuth:\n      type: http\n"
		issues := NewValidator().Validate(doc)
		if hasIssueContaining(t, issues, "securitySchemes") {
			t.Errorf("nested securitySchemes should not be flagged, got: %v", issues)
		}
	})
}

func TestRequiredSections(t *testing.T) {
	issues := NewValidator().Validate("servers:\n  - url: http://localhost\n")
	for _, want := range []string{"openapi", "info", "paths"} {
		if !hasIssueContaining(t, issues, want) {
			t.Errorf("expected missing-section issue for %q, got: %v", want, issues)
		}
	}
}

func TestInfoTitleDescription(t *testing.T) {
	doc := "openapi: 3.0.0\ninfo:\n  version: 1.0.0\npaths:\n"
	issues := NewValidator().Validate(doc)
	if !hasIssueContaining(t, issues, "title", "info") {
		t.Errorf("expected missing title issue, got: %v", issues)
	}
	if !hasIssueContaining(t, issues, "description", "info") {
		t.Errorf("expected missing description issue, got: %v", issues)
	}
}

func TestSchemaAntiPatterns(t *testing.T) {
	t.Run("possibleValues", func(t *testing.T) {
		issues := NewValidator().Validate(cleanDoc + "components:\n  schemas:\n    Widget:\n      possibleValues: [a, b]\n")
		if !hasIssueContaining(t, issues, "possibleValues", "enum") {
			t.Errorf("expected enum guidance, got: %v", issues)
		}
	})

	t.Run("array-shaped properties", func(t *testing.T) {
		issues := NewValidator().Validate(cleanDoc + "components:\n  schemas:\n    Widget:\n      properties:\n        - name\n")
		if !hasIssueContaining(t, issues, "properties", "array") {
			t.Errorf("expected array-properties issue, got: %v", issues)
		}
	})
}

func TestResponseShape(t *testing.T) {
	t.Run("unquoted numeric status", func(t *testing.T) {
		doc := strings.ReplaceAll(cleanDoc, "'200':", "200:")
		issues := NewValidator().Validate(doc)
		if !hasIssueContaining(t, issues, "200", "quoted") {
			t.Errorf("expected quoting issue, got: %v", issues)
		}
	})

	t.Run("missing 200", func(t *testing.T) {
		doc := strings.Replace(cleanDoc, "'200'", "'204'", 1)
		issues := NewValidator().Validate(doc)
		if !hasIssueContaining(t, issues, "200") {
			t.Errorf("expected missing-200 issue, got: %v", issues)
		}
	})

	t.Run("missing error response", func(t *testing.T) {
		doc := cleanDoc[:strings.Index(cleanDoc, "        '400':")]
		issues := NewValidator().Validate(doc)
		if !hasIssueContaining(t, issues, "400") {
			t.Errorf("expected missing-400 issue, got: %v", issues)
		}
	})

	t.Run("missing description", func(t *testing.T) {
		doc := strings.Replace(cleanDoc, "          description: OK\n", "", 1)
		issues := NewValidator().Validate(doc)
		if !hasIssueContaining(t, issues, "200", "description") {
			t.Errorf("expected missing-description issue, got: %v", issues)
		}
	})

	t.Run("missing json content", func(t *testing.T) {
		doc := strings.ReplaceAll(cleanDoc, "application/json:", "text/plain:")
		issues := NewValidator().Validate(doc)
		if !hasIssueContaining(t, issues, "application/json") {
			t.Errorf("expected content-type issue, got: %v", issues)
		}
	})
}

func TestCoverage(t *testing.T) {
	doc := strings.Replace(cleanDoc, "      operationId: listWidgets\n", "", 1)
	issues := NewValidator().Validate(doc)
	if !hasIssueContaining(t, issues, "operationId") {
		t.Errorf("expected operationId coverage issue, got: %v", issues)
	}

	doc = strings.ReplaceAll(cleanDoc, "example", "payload")
	issues = NewValidator().Validate(doc)
	if !hasIssueContaining(t, issues, "example") {
		t.Errorf("expected example coverage issue, got: %v", issues)
	}
}

func TestChecksAreOrderInsensitive(t *testing.T) {
	doc := "servers:\npossibleValues: [x]\n"
	a := NewValidator().Validate(doc)
	b := NewValidator().Validate(doc)
	if len(a) != len(b) {
		t.Errorf("repeated validation differs: %v vs %v", a, b)
	}
}
