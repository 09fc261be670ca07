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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("specmend.mcts")

var (
	// iterationsTotal counts completed search iterations by outcome.
	//
	// Labels:
	//   - outcome: "completed", "early_termination", "oracle_error"
	iterationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specmend",
			Subsystem: "mcts",
			Name:      "iterations_total",
			Help:      "Completed MCTS iterations by outcome",
		},
		[]string{"outcome"},
	)

	// nodesExpandedTotal counts placeholder children created.
	nodesExpandedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "specmend",
			Subsystem: "mcts",
			Name:      "nodes_expanded_total",
			Help:      "Total search nodes created by expansion",
		},
	)

	// oracleCallsTotal counts oracle evaluations by status.
	oracleCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specmend",
			Subsystem: "mcts",
			Name:      "oracle_calls_total",
			Help:      "Oracle evaluations by status",
		},
		[]string{"status"},
	)

	// bestReward observes the best average reward per search.
	bestReward = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "specmend",
			Subsystem: "mcts",
			Name:      "best_reward",
			Help:      "Best average reward at the end of a search",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 12),
		},
	)

	// searchDuration observes wall time per search.
	searchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "specmend",
			Subsystem: "mcts",
			Name:      "search_duration_seconds",
			Help:      "Wall time of a full MCTS search",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
