// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package mcts

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultEarlyTermination stops a search once an iteration reward
// reaches this value.
const DefaultEarlyTermination = 0.9

// Oracle evaluates a candidate node. Implementations typically ask an
// LLM how close the document is to valid; tests use deterministic
// stand-ins. The oracle may rewrite node.State.Document with a repaired
// candidate as a side effect.
type Oracle interface {
	// Evaluate returns a reward for the node. An error aborts the
	// whole search.
	Evaluate(ctx context.Context, node *SearchNode) (float64, error)
}

// Engine runs the repair search loop:
//
//  1. SELECT: Traverse the tree using UCB1 to find a leaf
//  2. EXPAND: Create placeholder children for the leaf's actions
//  3. SIMULATE: Score the chosen node via the oracle
//  4. BACKPROPAGATE: Update rewards up to the root
//
// Thread Safety: An Engine is reusable across searches, but each
// search tree belongs to the goroutine that called Search.
type Engine struct {
	exploration      float64
	earlyTermination float64
	logger           *slog.Logger
}

// Option configures the engine.
type Option func(*Engine)

// WithExplorationConstant sets the UCB1 C parameter.
func WithExplorationConstant(c float64) Option {
	return func(e *Engine) {
		if c > 0 {
			e.exploration = c
		}
	}
}

// WithEarlyTermination sets the reward threshold that ends a search
// before the iteration budget is spent.
func WithEarlyTermination(threshold float64) Option {
	return func(e *Engine) {
		if threshold > 0 {
			e.earlyTermination = threshold
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a search engine with sqrt(2) exploration and the
// default early-termination threshold.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		exploration:      DefaultExplorationConstant,
		earlyTermination: DefaultEarlyTermination,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search explores repair paths from an initial state.
//
// Every iteration backpropagates exactly one reward through the root,
// so root.Visits equals the number of iterations actually run. An
// oracle error aborts the search and is returned wrapped; the partial
// tree is still returned for inspection. A search that ends with an
// unexpanded root (for example a zero iteration budget) returns
// ErrNoValidPath.
//
// Inputs:
//   - ctx: Cancels the search between iterations.
//   - initial: The starting document state.
//   - maxIterations: Iteration budget.
//   - oracle: Scores candidate nodes.
//
// Outputs:
//   - *SearchNode: The root of the explored tree.
//   - error: Non-nil on context cancellation, oracle failure or an
//     empty result tree.
func (e *Engine) Search(ctx context.Context, initial SearchState, maxIterations int, oracle Oracle) (*SearchNode, error) {
	ctx, span := tracer.Start(ctx, "Engine.Search")
	defer span.End()
	span.SetAttributes(
		attribute.Int("mcts.max_iterations", maxIterations),
		attribute.Int("mcts.initial_issues", len(initial.Issues)),
	)

	start := time.Now()
	root := NewSearchNode(initial)

	iteration := 0
	for ; iteration < maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return root, err
		}

		leaf := descend(root, e.exploration)

		if leaf.IsLeaf() && !leaf.State.IsTerminal() {
			leaf.expand()
			nodesExpandedTotal.Add(float64(len(leaf.Children)))
			if !leaf.IsLeaf() {
				leaf = selectChild(leaf, e.exploration)
			}
		}

		reward, err := oracle.Evaluate(ctx, leaf)
		if err != nil {
			oracleCallsTotal.WithLabelValues("error").Inc()
			iterationsTotal.WithLabelValues("oracle_error").Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return root, fmt.Errorf("oracle evaluation at depth %d: %w", leaf.Depth, err)
		}
		oracleCallsTotal.WithLabelValues("ok").Inc()

		leaf.backpropagate(reward)
		iterationsTotal.WithLabelValues("completed").Inc()

		if reward >= e.earlyTermination {
			iterationsTotal.WithLabelValues("early_termination").Inc()
			e.logger.Debug("early termination",
				slog.Int("iteration", iteration),
				slog.Float64("reward", reward))
			iteration++
			break
		}
	}

	searchDuration.Observe(time.Since(start).Seconds())
	bestReward.Observe(bestChildReward(root))

	e.logger.Info("search complete",
		slog.Int("iterations", iteration),
		slog.Int("root_visits", root.Visits),
		slog.Float64("best_reward", bestChildReward(root)))

	if root.IsLeaf() {
		return root, ErrNoValidPath
	}
	return root, nil
}

// BestPath extracts the path of highest average reward, following the
// best visited child at every level.
//
// Outputs:
//   - []*SearchNode: Root-first path, always starting with the root.
//   - error: ErrTreeNotInitialized for a nil root, ErrNoValidPath when
//     the root was never expanded.
func (e *Engine) BestPath(root *SearchNode) ([]*SearchNode, error) {
	if root == nil {
		return nil, ErrTreeNotInitialized
	}
	if root.IsLeaf() {
		return nil, ErrNoValidPath
	}

	path := []*SearchNode{root}
	node := root
	for !node.IsLeaf() {
		best := bestVisitedChild(node)
		if best == nil {
			break
		}
		path = append(path, best)
		node = best
	}
	return path, nil
}

func bestVisitedChild(node *SearchNode) *SearchNode {
	var best *SearchNode
	bestAvg := math.Inf(-1)
	for _, child := range node.Children {
		if child.Visits == 0 {
			continue
		}
		if avg := child.AvgReward(); avg > bestAvg {
			bestAvg = avg
			best = child
		}
	}
	return best
}

func bestChildReward(root *SearchNode) float64 {
	if best := bestVisitedChild(root); best != nil {
		return best.AvgReward()
	}
	return 0
}
