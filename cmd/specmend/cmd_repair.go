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
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// runRepair runs the full repair loop against a document on disk.
func runRepair(cmd *cobra.Command, args []string) error {
	path := args[0]
	text, err := readSpecFile(path)
	if err != nil {
		return err
	}

	loop, err := buildLoop()
	if err != nil {
		return err
	}

	result, err := loop.Run(cmd.Context(), text)
	if err != nil {
		return fmt.Errorf("repair run for %s: %w", path, err)
	}

	slog.Info("Repair run finished",
		"run_id", result.RunID,
		"valid", result.Valid,
		"iterations", result.Iterations,
		"escalated", result.Escalated)

	if jsonOutput {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	} else if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(result.Document), 0o644); err != nil {
			return fmt.Errorf("writing repaired document: %w", err)
		}
		slog.Info("Repaired document written", "path", outputPath)
	} else {
		fmt.Fprint(cmd.OutOrStdout(), result.Document)
	}

	if !result.Valid {
		return fmt.Errorf("%s: %d issue(s) remain after %d iteration(s)",
			path, len(result.Issues), result.Iterations)
	}
	return nil
}
