package validation

import (
	"fmt"

	"github.com/goliatone/go-formflow/pkg/formdata"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// ValidateStep returns one missing-answer issue for every required,
// answerable, currently visible field whose answer is unset, nil, an empty
// string or an empty sequence. Hidden fields are exempt.
func ValidateStep(step model.Step, answers model.Answers) []Issue {
	return ValidateStepWith(step, answers, visibility.Default)
}

// ValidateStepWith is ValidateStep with a custom visibility evaluator.
func ValidateStepWith(step model.Step, answers model.Answers, evaluator visibility.Evaluator) []Issue {
	if evaluator == nil {
		evaluator = visibility.Default
	}
	var issues []Issue
	for _, field := range step.Fields {
		if !field.Required || !field.Kind.Answerable() {
			continue
		}
		if !evaluator.Visible(field, step.Fields, answers) {
			continue
		}
		if !formdata.IsEmpty(answers[field.ID]) {
			continue
		}
		issues = append(issues, Issue{
			Code:    CodeMissingAnswer,
			Step:    step.Name,
			Field:   field.ID,
			Message: fmt.Sprintf("%s is required", fieldLabel(field)),
		})
	}
	return issues
}

func fieldLabel(field model.Field) string {
	if field.Title != "" {
		return field.Title
	}
	return field.ID
}
