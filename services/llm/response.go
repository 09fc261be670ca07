package llm

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ValidationResult is the structured reading of a model's free-text
// verdict about a document.
type ValidationResult struct {
	IsValid    bool     `json:"is_valid"`
	Confidence float64  `json:"confidence"`
	Issues     []string `json:"issues"`
}

const defaultConfidence = 0.7

var (
	numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
	orderedItem   = regexp.MustCompile(`^\d+[.)]\s*`)

	positiveVerdicts = []string{"YES", "TRUE", "PASSED", "SUCCESS", "VALID"}
	negativeVerdicts = []string{"NO", "FALSE", "FAILED", "INVALID"}

	issueOpeners   = []string{"ISSUES", "PROBLEMS", "ERRORS", "FAILURES", "WARNINGS", "VIOLATIONS"}
	sectionClosers = []string{"VALID", "CONFIDENCE", "RECOMMENDATION", "SUGGESTION", "NOTE"}

	issueExclusions = []string{"none", "n/a", "not applicable", "no issues", "all good"}
)

// ParseValidationResponse extracts a verdict, a confidence score and an
// issue list from an LLM's free-form reply. Models rarely follow the
// requested format exactly, so everything here is tolerant: markers are
// matched case-insensitively, bullets and numbering are stripped, and
// filler lines ("none", "n/a") are discarded.
//
// When no verdict marker is present the reply is considered valid only
// if no issues were collected. A missing confidence defaults to 0.7.
func ParseValidationResponse(text string) ValidationResult {
	result := ValidationResult{Issues: []string{}}

	var (
		verdictSeen    bool
		confidenceSeen bool
		inIssues       bool
	)

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)

		switch {
		case strings.Contains(upper, "INVALID"):
			result.IsValid = false
			verdictSeen = true
			inIssues = false

		case strings.Contains(upper, "VALID"):
			result.IsValid = readVerdict(upper)
			verdictSeen = true
			inIssues = false

		case strings.Contains(upper, "CONFIDENCE"):
			// Only the first confidence marker counts.
			if !confidenceSeen {
				if v, ok := readConfidence(line); ok {
					result.Confidence = v
					confidenceSeen = true
				}
			}
			inIssues = false

		case opensIssueSection(upper):
			inIssues = true
			// A header may carry the first issue inline after the colon.
			if _, rest, found := strings.Cut(line, ":"); found {
				if issue, ok := cleanIssueLine(rest); ok {
					result.Issues = append(result.Issues, issue)
				}
			}

		case closesIssueSection(upper):
			inIssues = false

		case inIssues:
			if issue, ok := cleanIssueLine(line); ok {
				result.Issues = append(result.Issues, issue)
			}
		}
	}

	if !verdictSeen {
		result.IsValid = len(result.Issues) == 0
	}
	if !confidenceSeen {
		result.Confidence = defaultConfidence
	}
	return result
}

// readVerdict decides a verdict line containing a VALID marker,
// reading the keywords after the marker's colon. Negative keywords win
// because INVALID contains VALID.
func readVerdict(upper string) bool {
	marker := upper[strings.Index(upper, "VALID"):]
	verdict, rest, found := strings.Cut(marker, ":")
	if !found {
		rest = verdict
	}
	for _, kw := range negativeVerdicts {
		if containsWord(rest, kw) {
			return false
		}
	}
	for _, kw := range positiveVerdicts {
		if containsWord(rest, kw) {
			return true
		}
	}
	return false
}

// containsWord matches kw as a whole token so that NO does not match
// inside NOT or UNKNOWN.
func containsWord(s, kw string) bool {
	for _, field := range strings.FieldsFunc(s, func(r rune) bool {
		return !('A' <= r && r <= 'Z') && !('0' <= r && r <= '9')
	}) {
		if field == kw {
			return true
		}
	}
	return false
}

// readConfidence pulls the first numeric token off a CONFIDENCE line.
// Percentages and other values above 1 are scaled down to [0, 1].
func readConfidence(line string) (float64, bool) {
	token := numberPattern.FindString(line)
	if token == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	if v > 1 {
		v /= 100
	}
	return v, true
}

func opensIssueSection(upper string) bool {
	for _, marker := range issueOpeners {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

func closesIssueSection(upper string) bool {
	for _, marker := range sectionClosers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// cleanIssueLine strips list decoration and rejects filler. An issue
// must be at least 5 runes after cleanup to mean anything.
func cleanIssueLine(line string) (string, bool) {
	cleaned := strings.TrimSpace(line)
	for {
		trimmed := strings.TrimSpace(strings.TrimLeft(cleaned, "-•*→>+"))
		trimmed = strings.TrimSpace(orderedItem.ReplaceAllString(trimmed, ""))
		if trimmed == cleaned {
			break
		}
		cleaned = trimmed
	}

	if utf8.RuneCountInString(cleaned) < 5 {
		return "", false
	}
	lowered := strings.ToLower(cleaned)
	for _, excl := range issueExclusions {
		if strings.HasPrefix(lowered, excl) {
			return "", false
		}
	}
	return cleaned, true
}
