package validation

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
)

// DefaultMaxFileSizeMB is the sanity ceiling for file size limits.
const DefaultMaxFileSizeMB float64 = 100

// ReservedFieldPrefix starts the form-level keys of a presentation schema;
// field ids may not use it.
const ReservedFieldPrefix = "ui:"

// LintOption configures LintFlow.
type LintOption func(*lintConfig)

type lintConfig struct {
	maxFileSizeMB float64
}

// WithMaxFileSize overrides the file size ceiling in megabytes.
func WithMaxFileSize(mb float64) LintOption {
	return func(cfg *lintConfig) {
		if mb > 0 {
			cfg.maxFileSizeMB = mb
		}
	}
}

// LintFlow reports authoring mistakes across the flow: missing titles,
// choice fields without options, oversized file limits, missing or duplicate
// step names, duplicate field ids, navigation rules pointing at missing
// fields or unknown steps, and dependencies on fields that do not exist.
func LintFlow(flow model.Flow, options ...LintOption) []Issue {
	cfg := lintConfig{maxFileSizeMB: DefaultMaxFileSizeMB}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	var issues []Issue
	names := make(map[string]int, len(flow.Steps))
	for idx, step := range flow.Steps {
		name := strings.TrimSpace(step.Name)
		if name == "" {
			issues = append(issues, Issue{
				Code:    CodeMissingStepName,
				Step:    step.Name,
				Message: fmt.Sprintf("Step %d is missing a name", idx+1),
			})
		} else if first, ok := names[name]; ok {
			issues = append(issues, Issue{
				Code:    CodeDuplicateStepName,
				Step:    step.Name,
				Message: fmt.Sprintf("Step %d reuses the name %q of step %d", idx+1, name, first+1),
			})
		} else {
			names[name] = idx
		}
		issues = append(issues, LintStep(step, cfg.maxFileSizeMB)...)
	}

	for _, step := range flow.Steps {
		issues = append(issues, lintTargets(step, flow.Steps)...)
	}
	return issues
}

// LintStep reports field level authoring mistakes for a single step.
func LintStep(step model.Step, maxFileSizeMB float64) []Issue {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = DefaultMaxFileSizeMB
	}
	var issues []Issue
	ids := make(map[string]struct{}, len(step.Fields))
	for idx, field := range step.Fields {
		label := fieldLabel(field)
		if _, dup := ids[field.ID]; dup {
			issues = append(issues, Issue{
				Code:    CodeDuplicateFieldID,
				Step:    step.Name,
				Field:   field.ID,
				Message: fmt.Sprintf("Field id %q is used more than once", field.ID),
			})
		}
		ids[field.ID] = struct{}{}

		if strings.HasPrefix(field.ID, ReservedFieldPrefix) {
			issues = append(issues, Issue{
				Code:    CodeReservedFieldID,
				Step:    step.Name,
				Field:   field.ID,
				Message: fmt.Sprintf("Field id %q uses the reserved prefix %q", field.ID, ReservedFieldPrefix),
			})
		}

		if strings.TrimSpace(field.Title) == "" {
			issues = append(issues, Issue{
				Code:    CodeMissingTitle,
				Step:    step.Name,
				Field:   field.ID,
				Message: fmt.Sprintf("Field %d is missing a title", idx+1),
			})
		}
		if field.Kind.HasOptions() && !hasOptions(field.Options) {
			issues = append(issues, Issue{
				Code:    CodeMissingOptions,
				Step:    step.Name,
				Field:   field.ID,
				Message: fmt.Sprintf("%s needs at least one option", label),
			})
		}
		if field.Kind == model.KindFile && (field.MaxFileSize < 0 || field.MaxFileSize > maxFileSizeMB) {
			issues = append(issues, Issue{
				Code:    CodeFileSizeLimit,
				Step:    step.Name,
				Field:   field.ID,
				Message: fmt.Sprintf("%s allows %gMB; the limit must be between 0 and %gMB", label, field.MaxFileSize, maxFileSizeMB),
			})
		}
		if field.DependsOn != "" {
			if _, ok := step.Field(field.DependsOn); !ok || field.DependsOn == field.ID {
				issues = append(issues, Issue{
					Code:    CodeDanglingDependency,
					Step:    step.Name,
					Field:   field.ID,
					Message: fmt.Sprintf("%s depends on missing field %q", label, field.DependsOn),
				})
			}
		}
	}
	return issues
}

func lintTargets(step model.Step, steps []model.Step) []Issue {
	rule := step.NavigationRule
	if rule == nil {
		return nil
	}
	var issues []Issue
	if _, ok := step.Field(rule.FieldID); !ok {
		issues = append(issues, Issue{
			Code:    CodeRuleDriverMissing,
			Step:    step.Name,
			Field:   rule.FieldID,
			Message: fmt.Sprintf("Navigation rule of %q reads missing field %q", step.Name, rule.FieldID),
		})
	}

	// An empty target continues in sequence, like an unset default.
	targets := make([]string, 0, len(rule.Conditions)+1)
	for _, condition := range rule.Conditions {
		targets = append(targets, condition.NextStepName)
	}
	if rule.DefaultStepName != "" {
		targets = append(targets, rule.DefaultStepName)
	}
	for _, target := range targets {
		if target == "" || navigation.IsSentinel(target) || model.StepIndexByName(steps, target) >= 0 {
			continue
		}
		issues = append(issues, Issue{
			Code:    CodeRuleTargetUnknown,
			Step:    step.Name,
			Field:   rule.FieldID,
			Message: fmt.Sprintf("Navigation rule of %q targets unknown step %q", step.Name, target),
		})
	}
	return issues
}

func hasOptions(options []string) bool {
	for _, option := range options {
		if strings.TrimSpace(option) != "" {
			return true
		}
	}
	return false
}
