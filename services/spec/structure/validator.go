// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package structure scans raw contract text for known structural defects.
//
// The validator works on the raw text rather than the parsed tree so it
// can flag defects the lenient parser silently drops. Every check is
// stateless and order-insensitive; Validate returns the union of all
// check results and leaves deduplication to the caller.
package structure

import (
	"fmt"
	"regexp"
	"strings"
)

// Pre-compiled patterns shared by the checks.
var (
	// pathBlockRe matches a path block line like "/widgets:".
	pathBlockRe = regexp.MustCompile(`^(/[^:\s]*):\s*$`)
	// numericStatusRe matches an unquoted numeric status-code key.
	numericStatusRe = regexp.MustCompile(`^(\d{3}):\s*$`)
	// quotedStatusRe matches a quoted status-code key like "'200':".
	quotedStatusRe = regexp.MustCompile(`^['"](\d{3})['"]:\s*$`)
)

// Validator runs independent structural checks over raw contract text.
//
// The zero value is not usable; construct with NewValidator.
// Thread Safety: Validator is stateless after construction and safe
// for concurrent use.
type Validator struct {
	checks []func(lines []string) []string
}

// NewValidator creates a validator with the full default check set.
func NewValidator() *Validator {
	v := &Validator{}
	v.checks = []func(lines []string) []string{
		v.checkDuplicatePaths,
		v.checkMethodSemantics,
		v.checkSecuritySchemeNesting,
		v.checkRequiredSections,
		v.checkSchemaAntiPatterns,
		v.checkResponseShape,
		v.checkCoverage,
	}
	return v
}

// Validate returns every structural issue found in the text. An empty
// slice means no check fired. Issues are plain data, never errors.
func (v *Validator) Validate(text string) []string {
	lines := strings.Split(text, "\n")

	var issues []string
	for _, check := range v.checks {
		issues = append(issues, check(lines)...)
	}
	return issues
}

// checkDuplicatePaths counts literal path-block lines and flags repeats.
func (v *Validator) checkDuplicatePaths(lines []string) []string {
	counts := make(map[string]int)
	order := []string{}

	for _, line := range lines {
		m := pathBlockRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		if counts[m[1]] == 0 {
			order = append(order, m[1])
		}
		counts[m[1]]++
	}

	var issues []string
	for _, path := range order {
		if counts[path] > 1 {
			issues = append(issues, fmt.Sprintf(
				"Duplicate path block '%s' appears %d times - merge duplicate paths into one block",
				path, counts[path]))
		}
	}
	return issues
}

// checkMethodSemantics flags a GET block immediately followed by a
// requestBody key. GET requests carry no body.
func (v *Validator) checkMethodSemantics(lines []string) []string {
	var issues []string

	for i, line := range lines {
		if !strings.EqualFold(strings.TrimSpace(line), "get:") {
			continue
		}
		next := nextNonBlank(lines, i+1)
		if next == "" {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(next), "requestBody") {
			issues = append(issues,
				"Invalid method semantics: GET operation defines a requestBody - remove the request body or change the method")
		}
	}
	return issues
}

// checkSecuritySchemeNesting verifies securitySchemes lives under components.
func (v *Validator) checkSecuritySchemeNesting(lines []string) []string {
	var issues []string

	for _, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "securitySchemes:") {
			continue
		}
		if leadingSpaces(line) == 0 {
			issues = append(issues,
				"Security structure: securitySchemes must be nested under components, not top-level")
		} else if !hasTopLevelKey(lines, "components:") {
			issues = append(issues,
				"Security structure: securitySchemes present but no components block to hold it")
		}
	}
	return issues
}

// checkRequiredSections verifies the required top-level keys and the
// title/description entries inside info.
func (v *Validator) checkRequiredSections(lines []string) []string {
	var issues []string

	required := []string{"openapi:", "info:", "paths:"}
	for _, key := range required {
		if !hasTopLevelKey(lines, key) {
			issues = append(issues, fmt.Sprintf(
				"Missing required top-level section '%s'", strings.TrimSuffix(key, ":")))
		}
	}

	if hasTopLevelKey(lines, "info:") {
		block := blockLines(lines, "info:")
		if !blockHasKey(block, "title:") {
			issues = append(issues, "Missing title inside info section")
		}
		if !blockHasKey(block, "description:") {
			issues = append(issues, "Missing description inside info section")
		}
	}
	return issues
}

// checkSchemaAntiPatterns flags known schema mistakes.
func (v *Validator) checkSchemaAntiPatterns(lines []string) []string {
	var issues []string

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "possibleValues:") {
			issues = append(issues,
				"Schema anti-pattern: 'possibleValues' is not valid - use 'enum' instead")
		}

		if trimmed == "properties:" {
			next := nextNonBlank(lines, i+1)
			if strings.HasPrefix(strings.TrimSpace(next), "- ") {
				issues = append(issues,
					"Schema anti-pattern: 'properties' must be a mapping of property names, not an array")
			}
		}
	}
	return issues
}

// checkResponseShape validates response blocks: quoted status codes,
// required 200/400 entries, descriptions, and JSON content types.
func (v *Validator) checkResponseShape(lines []string) []string {
	var issues []string

	hasResponses := false
	has200 := false
	has4xx := false
	hasJSONContent := false

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "responses:" {
			hasResponses = true
		}

		if strings.HasPrefix(trimmed, "application/json") {
			hasJSONContent = true
		}

		var code string
		if m := numericStatusRe.FindStringSubmatch(trimmed); m != nil {
			code = m[1]
			issues = append(issues, fmt.Sprintf(
				"Response key %s should be quoted ('%s':) - numeric keys are invalid", code, code))
		} else if m := quotedStatusRe.FindStringSubmatch(trimmed); m != nil {
			code = m[1]
		}

		if code != "" {
			if code == "200" {
				has200 = true
			}
			if strings.HasPrefix(code, "4") {
				has4xx = true
			}
			if !statusBlockHasDescription(lines, i) {
				issues = append(issues, fmt.Sprintf(
					"Response %s is missing a description", code))
			}
		}
	}

	if hasResponses {
		if !has200 {
			issues = append(issues, "Responses are missing a success (200) entry")
		}
		if !has4xx {
			issues = append(issues, "Responses are missing an error (400) entry")
		}
		if !hasJSONContent {
			issues = append(issues, "Responses are missing an application/json content type")
		}
	}
	return issues
}

// checkCoverage verifies document-wide coverage of operation identifiers
// and examples.
func (v *Validator) checkCoverage(lines []string) []string {
	var issues []string

	hasOperationID := false
	hasExample := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "operationId:") {
			hasOperationID = true
		}
		if strings.HasPrefix(trimmed, "example:") || strings.HasPrefix(trimmed, "examples:") {
			hasExample = true
		}
	}

	if !hasOperationID {
		issues = append(issues, "No operationId found - every operation needs a unique identifier")
	}
	if !hasExample {
		issues = append(issues, "No example or examples entries found - add at least one example")
	}
	return issues
}

// nextNonBlank returns the first non-blank line at or after index start,
// or "" when none exists.
func nextNonBlank(lines []string, start int) string {
	for i := start; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}

// leadingSpaces counts the leading space characters of a line.
func leadingSpaces(line string) int {
	n := 0
	for _, r := range line {
		if r != ' ' {
			break
		}
		n++
	}
	return n
}

// hasTopLevelKey reports whether any unindented line starts with key.
func hasTopLevelKey(lines []string, key string) bool {
	for _, line := range lines {
		if leadingSpaces(line) == 0 && strings.HasPrefix(line, key) {
			return true
		}
	}
	return false
}

// blockLines returns the indented lines following the first occurrence
// of the given top-level key, up to the next unindented line.
func blockLines(lines []string, key string) []string {
	var block []string
	inBlock := false
	for _, line := range lines {
		if leadingSpaces(line) == 0 {
			if inBlock {
				break
			}
			if strings.HasPrefix(line, key) {
				inBlock = true
			}
			continue
		}
		if inBlock && strings.TrimSpace(line) != "" {
			block = append(block, line)
		}
	}
	return block
}

func blockHasKey(block []string, key string) bool {
	for _, line := range block {
		if strings.HasPrefix(strings.TrimSpace(line), key) {
			return true
		}
	}
	return false
}

// statusBlockHasDescription reports whether the block under the
// status-code line at index i contains a description entry.
func statusBlockHasDescription(lines []string, i int) bool {
	indent := leadingSpaces(lines[i])
	for j := i + 1; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == "" {
			continue
		}
		if leadingSpaces(lines[j]) <= indent {
			return false
		}
		if strings.HasPrefix(strings.TrimSpace(lines[j]), "description:") {
			return true
		}
	}
	return false
}
