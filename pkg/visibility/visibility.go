// Package visibility decides which fields of a step are shown for a given set
// of live answers. A field with DependsOn is shown only when the driver
// field's answer satisfies ShowWhen; a driver that does not exist in the step
// hides the field.
package visibility

import (
	"github.com/goliatone/go-formflow/pkg/formdata"
	"github.com/goliatone/go-formflow/pkg/model"
)

// Evaluator determines whether a field should be visible given the fields of
// its step and the current answers.
type Evaluator interface {
	Visible(field model.Field, fields []model.Field, answers model.Answers) bool
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field model.Field, fields []model.Field, answers model.Answers) bool

// Visible delegates to the underlying function.
func (fn EvaluatorFunc) Visible(field model.Field, fields []model.Field, answers model.Answers) bool {
	return fn(field, fields, answers)
}

// Default is the dependsOn/showWhen evaluator.
var Default Evaluator = EvaluatorFunc(IsVisible)

// IsVisible applies the dependency rules:
//   - no DependsOn: visible
//   - driver missing from fields: hidden
//   - driver answer unset or empty: hidden
//   - checkbox driver: visible when the answer sequence contains ShowWhen
//   - any other driver: visible when the answer equals ShowWhen
func IsVisible(field model.Field, fields []model.Field, answers model.Answers) bool {
	if field.DependsOn == "" {
		return true
	}

	driver, ok := findField(fields, field.DependsOn)
	if !ok {
		return false
	}

	answer, ok := answers[driver.ID]
	if !ok || formdata.IsEmpty(answer) {
		return false
	}

	if driver.Kind == model.KindCheckbox {
		return formdata.Contains(answer, field.ShowWhen)
	}
	value, ok := formdata.Project(answer).(string)
	return ok && value == field.ShowWhen
}

// VisibleFields returns the fields of step that are visible for answers, in
// step order. A nil evaluator uses Default.
func VisibleFields(step model.Step, answers model.Answers, evaluator Evaluator) []model.Field {
	if evaluator == nil {
		evaluator = Default
	}
	out := make([]model.Field, 0, len(step.Fields))
	for _, field := range step.Fields {
		if evaluator.Visible(field, step.Fields, answers) {
			out = append(out, field)
		}
	}
	return out
}

// HiddenIDs returns the ids of fields hidden for answers, in step order.
func HiddenIDs(step model.Step, answers model.Answers, evaluator Evaluator) []string {
	if evaluator == nil {
		evaluator = Default
	}
	var out []string
	for _, field := range step.Fields {
		if !evaluator.Visible(field, step.Fields, answers) {
			out = append(out, field.ID)
		}
	}
	return out
}

func findField(fields []model.Field, id string) (model.Field, bool) {
	for _, field := range fields {
		if field.ID == id {
			return field, true
		}
	}
	return model.Field{}, false
}
