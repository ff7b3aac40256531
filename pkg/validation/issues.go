// Package validation reports problems with flows and answers as lists of
// issues rather than errors. Runtime validation (ValidateStep) finds required
// visible fields without answers and blocks navigation; authoring validation
// (LintFlow) finds structural mistakes in the flow itself and never blocks
// compilation.
package validation

import "strings"

// Code classifies an issue.
type Code string

const (
	CodeMissingAnswer      Code = "missing_answer"
	CodeMissingTitle       Code = "missing_title"
	CodeMissingOptions     Code = "missing_options"
	CodeFileSizeLimit      Code = "file_size_limit"
	CodeMissingStepName    Code = "missing_step_name"
	CodeDuplicateStepName  Code = "duplicate_step_name"
	CodeDuplicateFieldID   Code = "duplicate_field_id"
	CodeReservedFieldID    Code = "reserved_field_id"
	CodeRuleDriverMissing  Code = "rule_driver_missing"
	CodeRuleTargetUnknown  Code = "rule_target_unknown"
	CodeDanglingDependency Code = "dangling_dependency"
	CodeSchemaMismatch     Code = "schema_mismatch"
)

// Issue is a single validation finding with optional location metadata.
type Issue struct {
	Code    Code   `json:"code"`
	Step    string `json:"step,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result groups issues for callers that want a single payload.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// NewResult wraps issues in a Result.
func NewResult(issues []Issue) Result {
	return Result{Valid: len(issues) == 0, Issues: issues}
}

// Messages returns the human readable messages of issues, trimmed and
// de-duplicated while preserving order.
func Messages(issues []Issue) []string {
	if len(issues) == 0 {
		return nil
	}
	out := make([]string, 0, len(issues))
	seen := make(map[string]struct{}, len(issues))
	for _, issue := range issues {
		msg := strings.TrimSpace(issue.Message)
		if msg == "" {
			continue
		}
		if _, ok := seen[msg]; ok {
			continue
		}
		seen[msg] = struct{}{}
		out = append(out, msg)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ByField groups issues by field id. Issues without a field are keyed by "".
func ByField(issues []Issue) map[string][]Issue {
	if len(issues) == 0 {
		return nil
	}
	out := make(map[string][]Issue)
	for _, issue := range issues {
		out[issue.Field] = append(out[issue.Field], issue)
	}
	return out
}
