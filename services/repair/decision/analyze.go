// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package decision

const (
	recommendationConfidenceFloor = 0.8
	maxRecommendations            = 5
)

// Analysis summarizes a batch of validation issues against the tree.
type Analysis struct {
	// ResolutionRate is the fraction of issues the tree could resolve
	// to a canned fix, in [0, 1]. 1.0 for an empty batch.
	ResolutionRate float64 `json:"resolution_rate"`

	// Categories counts issues per category bucket, including the
	// "general" bucket for issues no keyword set claims.
	Categories map[string]int `json:"categories"`

	// Confidence is the mean confidence over resolved issues, 0 when
	// nothing resolved.
	Confidence float64 `json:"confidence"`

	// Recommendations lists deduplicated high-confidence fixes, or
	// generic guidance when the tree offers none.
	Recommendations []string `json:"recommendations"`
}

// AnalyzeIssues resolves each issue against the tree and aggregates
// the results.
//
// Inputs:
//   - issues: raw issue strings, typically from structural validation
//     or constraint solving.
//
// Outputs:
//   - Analysis: resolution rate, category buckets, mean confidence and
//     up to 5 recommended fixes.
func (t *Tree) AnalyzeIssues(issues []string) Analysis {
	analysis := Analysis{
		ResolutionRate: 1.0,
		Categories:     make(map[string]int),
	}
	if len(issues) == 0 {
		return analysis
	}

	var (
		resolved      int
		confidenceSum float64
		seen          = make(map[string]bool)
		strong        []string
	)
	for _, issue := range issues {
		analysis.Categories[t.Categorize(issue)]++

		solution, confidence, ok := t.FindSolution(issue)
		if !ok {
			continue
		}
		resolved++
		confidenceSum += confidence
		if confidence > recommendationConfidenceFloor && !seen[solution] {
			seen[solution] = true
			strong = append(strong, solution)
		}
	}

	analysis.ResolutionRate = float64(resolved) / float64(len(issues))
	if resolved > 0 {
		analysis.Confidence = confidenceSum / float64(resolved)
	}

	if len(strong) > maxRecommendations {
		strong = strong[:maxRecommendations]
	}
	if len(strong) == 0 {
		strong = []string{
			"Validate the document against the OpenAPI 3.0 specification",
			"Review path, schema and response definitions for completeness",
			"Regenerate the problem sections with the documented layout",
		}
	}
	analysis.Recommendations = strong

	return analysis
}
