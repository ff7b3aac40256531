package flow

import (
	"strconv"

	"github.com/goliatone/go-formflow/pkg/model"
)

// AddStep appends a new empty step. An empty name yields "Step N".
func (e *Editor) AddStep(f model.Flow, name string) (model.Flow, model.Step) {
	out := e.clone(f)
	if name == "" {
		name = uniqueStepName(out.Steps, DefaultStepName+" "+strconv.Itoa(len(out.Steps)+1))
	}
	step := e.step(name)
	out.Steps = append(out.Steps, step)
	e.touch(&out)
	return out, step
}

// UpdateStep applies fn to a copy of the step and normalises its fields.
func (e *Editor) UpdateStep(f model.Flow, stepID string, fn func(*model.Step)) (model.Flow, error) {
	out := e.clone(f)
	idx, err := stepIndex(out, stepID)
	if err != nil {
		return f, err
	}
	if fn != nil {
		fn(&out.Steps[idx])
	}
	out.Steps[idx].ID = stepID
	out.Steps[idx].Normalize()
	e.touch(&out)
	return out, nil
}

// RemoveStep deletes a step. The last remaining step cannot be removed.
// Navigation rules naming the removed step are left untouched; they resolve
// to the target-not-found outcome.
func (e *Editor) RemoveStep(f model.Flow, stepID string) (model.Flow, error) {
	idx, err := stepIndex(f, stepID)
	if err != nil {
		return f, err
	}
	if len(f.Steps) <= 1 {
		return f, ErrLastStep
	}
	out := e.clone(f)
	out.Steps = append(out.Steps[:idx], out.Steps[idx+1:]...)
	e.touch(&out)
	return out, nil
}

// MoveStep moves a step to position to.
func (e *Editor) MoveStep(f model.Flow, stepID string, to int) (model.Flow, error) {
	idx, err := stepIndex(f, stepID)
	if err != nil {
		return f, err
	}
	out := e.clone(f)
	steps, err := move(out.Steps, idx, to)
	if err != nil {
		return f, err
	}
	out.Steps = steps
	e.touch(&out)
	return out, nil
}

// DuplicateStep inserts a copy of a step right after it. The copy gets a new
// id and a unique name; field ids are kept because they only need to be
// unique within their step.
func (e *Editor) DuplicateStep(f model.Flow, stepID string) (model.Flow, model.Step, error) {
	idx, err := stepIndex(f, stepID)
	if err != nil {
		return f, model.Step{}, err
	}
	out := e.clone(f)
	dup, _ := deepcopyStep(out.Steps[idx])
	dup.ID = e.newID()
	dup.Name = uniqueStepName(out.Steps, out.Steps[idx].Name+" (copy)")

	steps := make([]model.Step, 0, len(out.Steps)+1)
	steps = append(steps, out.Steps[:idx+1]...)
	steps = append(steps, dup)
	steps = append(steps, out.Steps[idx+1:]...)
	out.Steps = steps
	e.touch(&out)
	return out, dup, nil
}

// SetNavigationRule replaces the navigation rule of a step.
func (e *Editor) SetNavigationRule(f model.Flow, stepID string, rule model.NavigationRule) (model.Flow, error) {
	return e.UpdateStep(f, stepID, func(step *model.Step) {
		copied := rule
		copied.Conditions = append([]model.Condition(nil), rule.Conditions...)
		step.NavigationRule = &copied
	})
}

// ClearNavigationRule removes the navigation rule of a step.
func (e *Editor) ClearNavigationRule(f model.Flow, stepID string) (model.Flow, error) {
	return e.UpdateStep(f, stepID, func(step *model.Step) {
		step.NavigationRule = nil
	})
}
