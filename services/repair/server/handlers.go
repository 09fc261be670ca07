// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package server exposes the repair loop over HTTP.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/SpecMend/services/repair"
	"github.com/AleutianAI/SpecMend/services/repair/decision"
)

// ServiceVersion is the SpecMend service version.
const ServiceVersion = "0.1.0"

// Handlers contains the HTTP handlers for the repair service.
type Handlers struct {
	loop *repair.Loop
	tree *decision.Tree
}

// NewHandlers creates handlers around the given repair loop.
func NewHandlers(loop *repair.Loop) *Handlers {
	return &Handlers{
		loop: loop,
		tree: decision.BuildTree(),
	}
}

// HealthCheck handles GET /health.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": ServiceVersion,
	})
}

// HandleValidate handles POST /v1/spec/validate.
//
// Description:
//
//	Runs structural validation and constraint solving over the
//	submitted specification without invoking any model. Issues are
//	bucketed and annotated with suggested fixes.
//
// Request Body:
//
//	ValidateRequest
//
// Response:
//
//	200 OK: ValidateResponse
//	400 Bad Request: Validation error
func (h *Handlers) HandleValidate(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleValidate")

	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	issues := h.loop.CollectIssues(req.Spec)
	logger.Info("Validated specification", "issues", len(issues))

	c.JSON(http.StatusOK, ValidateResponse{
		RequestID: requestID,
		Valid:     len(issues) == 0,
		Issues:    issues,
		Analysis:  h.tree.AnalyzeIssues(issues),
	})
}

// HandleRepair handles POST /v1/spec/repair.
//
// Description:
//
//	Runs the full iterative repair loop over the submitted
//	specification, calling the configured model backend for fixes
//	until the document validates or the iteration budget runs out.
//
// Request Body:
//
//	RepairRequest
//
// Response:
//
//	200 OK: RepairResponse
//	400 Bad Request: Validation error
//	502 Bad Gateway: Model backend failure
func (h *Handlers) HandleRepair(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleRepair")

	var req RepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	result, err := h.loop.Run(c.Request.Context(), req.Spec)
	if err != nil {
		logger.Error("Repair run failed", "error", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "Repair run failed",
			Code:    "REPAIR_FAILED",
			Details: err.Error(),
		})
		return
	}

	logger.Info("Repair run finished",
		"run_id", result.RunID,
		"valid", result.Valid,
		"iterations", result.Iterations)

	c.JSON(http.StatusOK, RepairResponse{
		RequestID: requestID,
		Result:    *result,
	})
}

// getOrCreateRequestID gets or creates a request ID.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
