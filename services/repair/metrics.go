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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("specmend.repair")

var (
	// runsTotal counts repair runs by outcome.
	//
	// Labels:
	//   - outcome: "valid", "invalid", "error"
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specmend",
			Subsystem: "repair",
			Name:      "runs_total",
			Help:      "Repair runs by outcome",
		},
		[]string{"outcome"},
	)

	// iterationsPerRun observes validate cycles per run.
	iterationsPerRun = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "specmend",
			Subsystem: "repair",
			Name:      "iterations_per_run",
			Help:      "Validation iterations spent per repair run",
			Buckets:   prometheus.LinearBuckets(1, 1, 6),
		},
	)

	// escalationsTotal counts forced all-issues correction passes.
	escalationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "specmend",
			Subsystem: "repair",
			Name:      "escalations_total",
			Help:      "Forced all-issues correction passes",
		},
	)

	// fixPathTotal counts which fixing strategy each iteration took.
	//
	// Labels:
	//   - strategy: "guided", "search", "escalated"
	fixPathTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specmend",
			Subsystem: "repair",
			Name:      "fix_path_total",
			Help:      "Fixing strategy chosen per iteration",
		},
		[]string{"strategy"},
	)
)
