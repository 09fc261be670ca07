// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/SpecMend/services/repair"
	"github.com/AleutianAI/SpecMend/services/repair/decision"
)

// validateReport is the JSON shape emitted with --json.
type validateReport struct {
	Path     string            `json:"path"`
	Valid    bool              `json:"valid"`
	Issues   []string          `json:"issues"`
	Analysis decision.Analysis `json:"analysis"`
}

// runValidate validates a document locally and exits non-zero when
// issues remain.
func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	text, err := readSpecFile(path)
	if err != nil {
		return err
	}

	issues := repair.CollectIssues(text)
	analysis := decision.BuildTree().AnalyzeIssues(issues)

	if jsonOutput {
		report := validateReport{
			Path:     path,
			Valid:    len(issues) == 0,
			Issues:   issues,
			Analysis: analysis,
		}
		encoded, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	} else {
		fmt.Fprint(cmd.OutOrStdout(), formatIssueReport(path, issues, analysis))
	}

	if len(issues) > 0 {
		return fmt.Errorf("%s: %d validation issue(s)", path, len(issues))
	}
	return nil
}
