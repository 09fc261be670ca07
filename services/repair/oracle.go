// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package repair

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/AleutianAI/SpecMend/services/llm"
	"github.com/AleutianAI/SpecMend/services/repair/mcts"
)

// Mender produces a repaired document candidate for a set of issues.
type Mender interface {
	// Mend returns a corrected document. hint carries decision-tree
	// guidance and may be empty.
	Mend(ctx context.Context, document string, issues []string, hint string) (string, error)
}

// OracleMender is what the repair loop needs from its model backend:
// reward evaluation for search nodes plus direct document repair.
type OracleMender interface {
	mcts.Oracle
	Mender
}

// RepairOracle adapts an LLM client into the search oracle and the
// mender. Calls are rate limited and strictly sequential; the zero
// burst case is guarded by the limiter's burst of one.
type RepairOracle struct {
	client  llm.LLMClient
	limiter *rate.Limiter
	params  llm.GenerationParams
	logger  *slog.Logger
}

// OracleOption configures a RepairOracle.
type OracleOption func(*RepairOracle)

// WithRateLimit bounds oracle calls per second.
func WithRateLimit(callsPerSecond float64) OracleOption {
	return func(o *RepairOracle) {
		if callsPerSecond > 0 {
			o.limiter = rate.NewLimiter(rate.Limit(callsPerSecond), 1)
		}
	}
}

// WithOracleLogger sets the logger.
func WithOracleLogger(logger *slog.Logger) OracleOption {
	return func(o *RepairOracle) {
		o.logger = logger
	}
}

// WithGenerationParams overrides the sampling parameters sent to the
// backend.
func WithGenerationParams(params llm.GenerationParams) OracleOption {
	return func(o *RepairOracle) {
		o.params = params
	}
}

// NewRepairOracle wraps an LLM client.
func NewRepairOracle(client llm.LLMClient, opts ...OracleOption) *RepairOracle {
	lowTemp := float32(0.1)
	o := &RepairOracle{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(2), 1),
		params:  llm.GenerationParams{Temperature: &lowTemp},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Evaluate implements mcts.Oracle. The node's pending action is applied
// to a scratch state, the model judges the resulting document, and the
// parsed verdict becomes the reward. When the model volunteers a
// repaired document it is written back onto the node.
func (o *RepairOracle) Evaluate(ctx context.Context, node *mcts.SearchNode) (float64, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("oracle rate limit: %w", err)
	}

	state := node.State
	if node.Action != nil {
		state = state.Apply(*node.Action)
	}

	reply, err := o.client.Generate(ctx, validationPrompt(state), o.params)
	if err != nil {
		return 0, fmt.Errorf("oracle generate: %w", err)
	}

	parsed := llm.ParseValidationResponse(reply)
	if candidate := extractDocument(reply); candidate != "" {
		node.State.Document = candidate
	}

	state.IsValid = parsed.IsValid
	state.Confidence = parsed.Confidence
	return state.Reward(), nil
}

// Mend implements Mender.
func (o *RepairOracle) Mend(ctx context.Context, document string, issues []string, hint string) (string, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("mend rate limit: %w", err)
	}

	reply, err := o.client.Generate(ctx, mendPrompt(document, issues, hint), o.params)
	if err != nil {
		return "", fmt.Errorf("mend generate: %w", err)
	}

	candidate := extractDocument(reply)
	if candidate == "" {
		candidate = strings.TrimSpace(reply)
	}
	if candidate == "" {
		return "", fmt.Errorf("mend returned an empty document")
	}
	o.logger.Debug("mend produced a candidate",
		slog.Int("issues", len(issues)),
		slog.Int("candidate_bytes", len(candidate)))
	return candidate, nil
}

func validationPrompt(state mcts.SearchState) string {
	var b strings.Builder
	b.WriteString("Review the OpenAPI document below.\n")
	b.WriteString("Reply with VALID: YES or VALID: NO, CONFIDENCE: <0..1>, and an ISSUES: list.\n")
	if len(state.Issues) > 0 {
		b.WriteString("Known outstanding issues:\n")
		for _, issue := range state.Issues {
			b.WriteString("- " + issue + "\n")
		}
	}
	b.WriteString("\nDocument:\n")
	b.WriteString(state.Document)
	return b.String()
}

func mendPrompt(document string, issues []string, hint string) string {
	var b strings.Builder
	b.WriteString("Fix the OpenAPI document below and return only the corrected document ")
	b.WriteString("inside a fenced code block.\n")
	b.WriteString("Issues to fix:\n")
	for _, issue := range issues {
		b.WriteString("- " + issue + "\n")
	}
	if hint != "" {
		b.WriteString("Guidance: " + hint + "\n")
	}
	b.WriteString("\nDocument:\n")
	b.WriteString(document)
	return b.String()
}

// extractDocument pulls the first fenced code block out of a reply.
// Returns "" when the reply has no fence.
func extractDocument(reply string) string {
	start := strings.Index(reply, "```")
	if start < 0 {
		return ""
	}
	rest := reply[start+3:]
	// Drop an optional language tag on the fence line.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		first := strings.TrimSpace(rest[:nl])
		if first != "" && !strings.Contains(first, ":") {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}
