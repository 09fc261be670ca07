// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package server

import (
	"github.com/AleutianAI/SpecMend/services/repair"
	"github.com/AleutianAI/SpecMend/services/repair/decision"
)

// ValidateRequest is the request body for POST /v1/spec/validate.
type ValidateRequest struct {
	// Spec is the raw specification text to validate.
	Spec string `json:"spec" binding:"required"`
}

// ValidateResponse reports the outcome of a validation pass.
type ValidateResponse struct {
	// RequestID echoes the X-Request-ID for this call.
	RequestID string `json:"request_id"`

	// Valid is true when no issues were found.
	Valid bool `json:"valid"`

	// Issues lists every structural and constraint issue found.
	Issues []string `json:"issues"`

	// Analysis buckets the issues and suggests fixes.
	Analysis decision.Analysis `json:"analysis"`
}

// RepairRequest is the request body for POST /v1/spec/repair.
type RepairRequest struct {
	// Spec is the raw specification text to repair.
	Spec string `json:"spec" binding:"required"`
}

// RepairResponse wraps a repair run result.
type RepairResponse struct {
	// RequestID echoes the X-Request-ID for this call.
	RequestID string `json:"request_id"`

	// Result is the full repair run outcome.
	Result repair.Result `json:"result"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code (optional).
	Code string `json:"code,omitempty"`

	// Details provides additional error context (optional).
	Details string `json:"details,omitempty"`
}
