// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package repair drives the generate → validate → diagnose → fix loop
// over an API contract document. Validation issues are ordinary data;
// only oracle failures abort a run.
package repair

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/SpecMend/services/repair/decision"
	"github.com/AleutianAI/SpecMend/services/repair/mcts"
	"github.com/AleutianAI/SpecMend/services/spec/ast"
	"github.com/AleutianAI/SpecMend/services/spec/constraints"
	"github.com/AleutianAI/SpecMend/services/spec/structure"
)

// Phase names the repair loop states.
type Phase string

const (
	PhaseGenerating Phase = "generating"
	PhaseValidating Phase = "validating"
	PhaseDiagnosing Phase = "diagnosing"
	PhaseFixing     Phase = "fixing"
	PhaseDone       Phase = "done"
)

// Loop tuning constants.
const (
	// DefaultMaxIterations bounds validate cycles per run.
	DefaultMaxIterations = 5

	// persistentAfter is the consecutive-appearance count at which an
	// issue counts as persistent.
	persistentAfter = 2

	// escalateAfter is the consecutive-appearance count beyond which
	// the loop forces an all-issues correction pass.
	escalateAfter = 2

	// guidedFixThreshold is the decision-tree confidence strictly
	// above which a single guided fix is applied instead of a search.
	guidedFixThreshold = 0.8

	// searchIterations is the MCTS budget per fixing phase.
	searchIterations = 30
)

// Result reports the outcome of one repair run.
type Result struct {
	// RunID identifies the run in logs and traces.
	RunID string `json:"run_id"`

	// Valid reports whether the final document passed validation.
	Valid bool `json:"valid"`

	// Document is the final document text.
	Document string `json:"document"`

	// Iterations is the number of validate cycles executed.
	Iterations int `json:"iterations"`

	// Issues are the issues still outstanding at the end.
	Issues []string `json:"issues"`

	// Persistent lists issues that survived consecutive iterations.
	Persistent []string `json:"persistent"`

	// Escalated reports whether a forced all-issues pass ran.
	Escalated bool `json:"escalated"`

	// Analysis is the decision-tree reading of the final issue list.
	Analysis decision.Analysis `json:"analysis"`
}

// Loop is the repair composition root.
//
// Thread Safety: A Loop is safe for concurrent Run calls; all per-run
// state lives on the stack. The decision tree is shared read-only.
type Loop struct {
	validator *structure.Validator
	tree      *decision.Tree
	engine    *mcts.Engine
	backend   OracleMender

	maxIterations int
	logger        *slog.Logger
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithMaxIterations overrides the validate-cycle budget.
func WithMaxIterations(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.maxIterations = n
		}
	}
}

// WithEngine injects a configured search engine.
func WithEngine(engine *mcts.Engine) LoopOption {
	return func(l *Loop) {
		l.engine = engine
	}
}

// WithLoopLogger sets the logger.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// NewLoop creates a repair loop around a model backend.
func NewLoop(backend OracleMender, opts ...LoopOption) *Loop {
	l := &Loop{
		validator:     structure.NewValidator(),
		tree:          decision.BuildTree(),
		engine:        mcts.NewEngine(),
		backend:       backend,
		maxIterations: DefaultMaxIterations,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CollectIssues merges structural validation and constraint solving
// into one issue list for a document.
func (l *Loop) CollectIssues(text string) []string {
	return collectIssues(l.validator, text)
}

// CollectIssues validates a document without a model backend. It is
// the read-only half of the loop, usable on its own.
func CollectIssues(text string) []string {
	return collectIssues(structure.NewValidator(), text)
}

func collectIssues(validator *structure.Validator, text string) []string {
	issues := validator.Validate(text)

	tree := ast.Parse(text)
	result := constraints.Solve(constraints.Extract(tree))
	for _, v := range result.Violations {
		issues = append(issues, v.Message)
	}
	return issues
}

// Run repairs a document until it validates or the iteration budget is
// spent. Oracle failures abort the run; every other problem is data in
// the Result.
func (l *Loop) Run(ctx context.Context, specText string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "Loop.Run")
	defer span.End()

	result := &Result{
		RunID:    uuid.NewString(),
		Document: specText,
	}
	span.SetAttributes(attribute.String("repair.run_id", result.RunID))

	logger := l.logger.With(slog.String("run_id", result.RunID))
	logger.Info("repair run starting", slog.Int("document_bytes", len(specText)))

	// Consecutive-appearance counts for issues not yet fixed.
	streak := make(map[string]int)
	var prev map[string]bool

	phase := PhaseGenerating
	step := func(p Phase) {
		phase = p
		logger.Debug("phase transition", slog.String("phase", string(p)))
	}
	step(PhaseGenerating)

	for result.Iterations < l.maxIterations {
		step(PhaseValidating)
		result.Iterations++

		issues := l.CollectIssues(result.Document)
		if len(issues) == 0 {
			step(PhaseDone)
			result.Valid = true
			break
		}

		current := make(map[string]bool, len(issues))
		for _, issue := range issues {
			current[issue] = true
			if prev != nil && prev[issue] {
				streak[issue]++
			} else {
				streak[issue] = 1
			}
		}
		// Issues that disappeared are fixed; forget their streaks.
		for issue := range streak {
			if !current[issue] {
				delete(streak, issue)
			}
		}
		prev = current

		escalate := false
		for _, count := range streak {
			if count > escalateAfter {
				escalate = true
			}
		}

		step(PhaseDiagnosing)
		analysis := l.tree.AnalyzeIssues(issues)
		logger.Debug("diagnosis",
			slog.Int("iteration", result.Iterations),
			slog.Int("issues", len(issues)),
			slog.Float64("resolution_rate", analysis.ResolutionRate),
			slog.Bool("escalate", escalate))

		step(PhaseFixing)
		candidate, err := l.fix(ctx, result.Document, issues, analysis, escalate, logger)
		if err != nil {
			runsTotal.WithLabelValues("error").Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return result, fmt.Errorf("iteration %d (%s): %w", result.Iterations, phase, err)
		}
		if escalate {
			result.Escalated = true
			escalationsTotal.Inc()
		}
		result.Document = candidate
	}

	if !result.Valid {
		result.Issues = l.CollectIssues(result.Document)
	}
	result.Persistent = persistentIssues(streak)
	result.Analysis = l.tree.AnalyzeIssues(result.Issues)

	iterationsPerRun.Observe(float64(result.Iterations))
	if result.Valid {
		runsTotal.WithLabelValues("valid").Inc()
	} else {
		runsTotal.WithLabelValues("invalid").Inc()
	}

	logger.Info("repair run finished",
		slog.Bool("valid", result.Valid),
		slog.Int("iterations", result.Iterations),
		slog.Int("remaining_issues", len(result.Issues)),
		slog.Bool("escalated", result.Escalated))

	return result, nil
}

// fix produces the next document candidate for one iteration.
//
// Strategy: a forced all-issues pass when escalating; a single guided
// fix when the decision tree is confident about the worst issue; an
// MCTS search otherwise, falling back to a guided fix if the search
// cannot produce a candidate.
func (l *Loop) fix(ctx context.Context, document string, issues []string,
	analysis decision.Analysis, escalate bool, logger *slog.Logger) (string, error) {

	if escalate {
		fixPathTotal.WithLabelValues("escalated").Inc()
		hint := joinRecommendations(analysis)
		return l.backend.Mend(ctx, document, issues, hint)
	}

	top := issues[0]
	solution, confidence, found := l.tree.FindSolution(top)
	if found && confidence > guidedFixThreshold {
		fixPathTotal.WithLabelValues("guided").Inc()
		return l.backend.Mend(ctx, document, []string{top}, solution)
	}

	fixPathTotal.WithLabelValues("search").Inc()
	candidate, err := l.searchFix(ctx, document, issues)
	if err != nil {
		logger.Warn("search fix failed, falling back to guided fix",
			slog.String("error", err.Error()))
		return l.backend.Mend(ctx, document, issues, solution)
	}
	return candidate, nil
}

// searchFix runs an MCTS search and adopts the best path's document.
func (l *Loop) searchFix(ctx context.Context, document string, issues []string) (string, error) {
	initial := mcts.SearchState{
		Document: document,
		Issues:   append([]string(nil), issues...),
	}

	root, err := l.engine.Search(ctx, initial, searchIterations, l.backend)
	if err != nil {
		return "", fmt.Errorf("search: %w", err)
	}

	path, err := l.engine.BestPath(root)
	if err != nil {
		return "", fmt.Errorf("best path: %w", err)
	}

	// The oracle rewrites documents on the nodes it visits; adopt the
	// deepest rewrite along the best path.
	candidate := document
	for _, node := range path {
		if node.State.Document != "" && node.State.Document != document {
			candidate = node.State.Document
		}
	}
	if candidate == document {
		return "", fmt.Errorf("search produced no document candidate")
	}
	return candidate, nil
}

func persistentIssues(streak map[string]int) []string {
	var out []string
	for issue, count := range streak {
		if count >= persistentAfter {
			out = append(out, issue)
		}
	}
	sort.Strings(out)
	return out
}

func joinRecommendations(analysis decision.Analysis) string {
	hint := ""
	for i, rec := range analysis.Recommendations {
		if i > 0 {
			hint += "; "
		}
		hint += rec
	}
	return hint
}
