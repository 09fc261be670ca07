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

// Category names.
const (
	CategorySecurity   = "security"
	CategoryStructural = "structural"
	CategorySchema     = "schema"
	CategoryOperations = "operations"
)

// BuildTree constructs the static decision tree. The returned tree is
// immutable; build it once and share it.
//
// Security precedes structural in the branch order because security
// issues often mention document structure, while structural issues
// never mention security.
func BuildTree() *Tree {
	root := &Node{
		Children: []*Node{
			securityBranch(),
			structuralBranch(),
			schemaBranch(),
			operationsBranch(),
		},
	}

	return &Tree{
		root:  root,
		order: []string{CategorySecurity, CategoryStructural, CategorySchema, CategoryOperations},
		keywords: map[string][]string{
			CategorySecurity:   {"security", "auth", "scheme", "bearer", "api key", "apikey", "token"},
			CategoryStructural: {"structur", "duplicate", "section", "version", "nesting", "merge", "layout", "indent"},
			CategorySchema:     {"schema", "enum", "propert", "array", "items", "reference", "$ref", "example"},
			CategoryOperations: {"operation", "method", "response", "request", "status", "endpoint"},
		},
	}
}

func securityBranch() *Node {
	return &Node{
		Category:   CategorySecurity,
		Solution:   "Define the security schemes under components.securitySchemes and reference them from operations",
		Confidence: 0.6,
		Children: []*Node{
			{
				IssuePattern: "securityschemes",
				Solution:     "Nest securitySchemes under the components block",
				Confidence:   0.9,
			},
			{
				IssuePattern: "undefined security",
				Solution:     "Define the referenced security scheme under components.securitySchemes",
				Confidence:   0.85,
			},
			{
				IssuePattern: "bearer",
				Solution:     "Define bearerAuth with 'type: http' and 'scheme: bearer' under securitySchemes",
				Confidence:   0.85,
			},
			{
				IssuePattern: "api key",
				Solution:     "Define the API key scheme with 'type: apiKey', 'in: header' and a header name",
				Confidence:   0.85,
			},
		},
	}
}

func structuralBranch() *Node {
	return &Node{
		Category:   CategoryStructural,
		Solution:   "Restructure the document to the standard OpenAPI 3.0 layout: openapi, info, servers, paths, components",
		Confidence: 0.6,
		Children: []*Node{
			{
				IssuePattern: "version",
				Solution:     "Add an 'openapi: 3.0.0' version declaration at the top of the document",
				Confidence:   0.95,
			},
			{
				IssuePattern: "duplicate path",
				Solution:     "Merge the duplicate path blocks into a single path entry holding all methods",
				Confidence:   0.9,
			},
			{
				IssuePattern: "invalid method",
				Solution:     "Remove the requestBody from the GET operation or change the method to POST",
				Confidence:   0.85,
			},
			{
				IssuePattern: "required top-level",
				Solution:     "Add the missing top-level section to the document",
				Confidence:   0.9,
			},
			{
				IssuePattern: "contain a top-level",
				Solution:     "Add the missing top-level section to the document",
				Confidence:   0.9,
			},
			{
				IssuePattern: "inside info",
				Solution:     "Add title and description entries to the info block",
				Confidence:   0.9,
			},
		},
	}
}

func schemaBranch() *Node {
	return &Node{
		Category:   CategorySchema,
		Solution:   "Review the schema definitions under components.schemas for missing fields",
		Confidence: 0.6,
		Children: []*Node{
			{
				IssuePattern: "declare a type",
				Solution:     "Add a type (object, array, string, number, boolean) to the schema",
				Confidence:   0.9,
			},
			{
				IssuePattern: "required array",
				Solution:     "List the mandatory properties in a 'required' array on the schema",
				Confidence:   0.8,
			},
			{
				IssuePattern: "reference",
				Solution:     "Use a local '#/components/schemas/...' reference",
				Confidence:   0.85,
			},
			{
				IssuePattern: "possiblevalues",
				Solution:     "Replace 'possibleValues' with an 'enum' list",
				Confidence:   0.9,
			},
			{
				IssuePattern: "mapping of property",
				Solution:     "Rewrite properties as a mapping of property names to schemas, not a list",
				Confidence:   0.85,
			},
			{
				IssuePattern: "items",
				Solution:     "Declare an 'items' schema for the array type",
				Confidence:   0.85,
			},
			{
				IssuePattern: "example",
				Solution:     "Add an example field illustrating a valid payload",
				Confidence:   0.8,
			},
		},
	}
}

func operationsBranch() *Node {
	return &Node{
		Category:   CategoryOperations,
		Solution:   "Review the operation definitions: identifier, request body and response coverage",
		Confidence: 0.6,
		Children: []*Node{
			{
				IssuePattern: "operationid",
				Solution:     "Add a unique operationId to every operation (e.g. listWidgets)",
				Confidence:   0.9,
			},
			{
				IssuePattern: "quoted",
				Solution:     "Quote numeric response keys (e.g. '200':)",
				Confidence:   0.9,
			},
			{
				IssuePattern: "missing a description",
				Solution:     "Add a description to every response entry",
				Confidence:   0.85,
			},
			{
				IssuePattern: "200",
				Solution:     "Add a '200' success response with a description and application/json content",
				Confidence:   0.85,
			},
			{
				IssuePattern: "400",
				Solution:     "Add a '400' error response describing client failures",
				Confidence:   0.85,
			},
			{
				IssuePattern: "application/json",
				Solution:     "Declare content with an application/json media type on the response",
				Confidence:   0.85,
			},
			{
				IssuePattern: "request body",
				Solution:     "Add a requestBody with application/json content to the operation",
				Confidence:   0.8,
			},
		},
	}
}
