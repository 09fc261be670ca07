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
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/AleutianAI/SpecMend/services/llm"
	"github.com/AleutianAI/SpecMend/services/repair"
	"github.com/AleutianAI/SpecMend/services/repair/decision"
)

// MaxSpecFileSize caps input documents at 4 MiB.
const MaxSpecFileSize = 4 << 20

// readSpecFile reads a specification document with a size cap.
func readSpecFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("reading spec file: %w", err)
	}
	if info.Size() > MaxSpecFileSize {
		return "", fmt.Errorf("spec file %s exceeds %d bytes", path, MaxSpecFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading spec file: %w", err)
	}
	return string(data), nil
}

// buildLLMClient selects the model backend named in the config.
func buildLLMClient(provider string) (llm.LLMClient, error) {
	switch provider {
	case "ollama":
		return llm.NewOllamaClient()
	case "openai":
		return llm.NewOpenAIClient()
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}

// buildLoop wires the configured backend into a repair loop.
func buildLoop() (*repair.Loop, error) {
	client, err := buildLLMClient(cfg.LLM.Provider)
	if err != nil {
		return nil, err
	}

	oracle := repair.NewRepairOracle(client,
		repair.WithRateLimit(cfg.LLM.RateLimit))
	return repair.NewLoop(oracle,
		repair.WithMaxIterations(cfg.Repair.MaxIterations)), nil
}

// formatIssueReport renders a human-readable validation summary.
func formatIssueReport(path string, issues []string, analysis decision.Analysis) string {
	var b strings.Builder

	if len(issues) == 0 {
		fmt.Fprintf(&b, "%s: valid\n", path)
		return b.String()
	}

	fmt.Fprintf(&b, "%s: %d issue(s)\n", path, len(issues))
	for _, issue := range issues {
		fmt.Fprintf(&b, "  - %s\n", issue)
	}

	categories := make([]string, 0, len(analysis.Categories))
	for category := range analysis.Categories {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	b.WriteString("categories:")
	for _, category := range categories {
		fmt.Fprintf(&b, " %s=%d", category, analysis.Categories[category])
	}
	b.WriteString("\n")

	if len(analysis.Recommendations) > 0 {
		b.WriteString("recommended fixes:\n")
		for _, rec := range analysis.Recommendations {
			fmt.Fprintf(&b, "  * %s\n", rec)
		}
	}
	return b.String()
}
