// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AleutianAI/SpecMend/services/repair"
	"github.com/AleutianAI/SpecMend/services/repair/decision"
)

const cleanSpec = `openapi: 3.0.0
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

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing spec fixture: %v", err)
	}
	return path
}

func TestFormatIssueReportValid(t *testing.T) {
	report := formatIssueReport("api.yaml", nil, decision.Analysis{})
	if report != "api.yaml: valid\n" {
		t.Fatalf("unexpected report: %q", report)
	}
}

func TestFormatIssueReportWithIssues(t *testing.T) {
	issues := repair.CollectIssues(strings.Replace(cleanSpec,
		"  title: Widget API\n", "", 1))
	if len(issues) == 0 {
		t.Fatal("expected issues for a spec missing its title")
	}
	analysis := decision.BuildTree().AnalyzeIssues(issues)

	report := formatIssueReport("api.yaml", issues, analysis)
	if !strings.Contains(report, "api.yaml:") {
		t.Errorf("report missing path: %q", report)
	}
	for _, issue := range issues {
		if !strings.Contains(report, issue) {
			t.Errorf("report missing issue %q", issue)
		}
	}
	if !strings.Contains(report, "categories:") {
		t.Errorf("report missing category summary: %q", report)
	}
	if !strings.Contains(report, "recommended fixes:") {
		t.Errorf("report missing recommendations: %q", report)
	}
}

func TestReadSpecFileMissing(t *testing.T) {
	if _, err := readSpecFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestReadSpecFileRoundTrip(t *testing.T) {
	path := writeSpec(t, cleanSpec)
	text, err := readSpecFile(path)
	if err != nil {
		t.Fatalf("readSpecFile: %v", err)
	}
	if text != cleanSpec {
		t.Error("spec content changed on read")
	}
}

func TestBuildLLMClientUnknownProvider(t *testing.T) {
	if _, err := buildLLMClient("carrier-pigeon"); err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
}

func TestValidateCommandCleanSpec(t *testing.T) {
	path := writeSpec(t, cleanSpec)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"validate", path})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("validate on a clean spec: %v", err)
	}
	if !strings.Contains(out.String(), "valid") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestValidateCommandBrokenSpec(t *testing.T) {
	path := writeSpec(t, strings.Replace(cleanSpec,
		"  title: Widget API\n", "", 1))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"validate", path})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected a non-nil error for a broken spec")
	}
	if !strings.Contains(out.String(), "issue") {
		t.Errorf("unexpected output: %q", out.String())
	}
}
