package flow

import (
	"fmt"
	"strconv"

	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-formflow/pkg/model"
)

// AddField appends field to a step. A missing id is generated from the kind.
func (e *Editor) AddField(f model.Flow, stepID string, field model.Field) (model.Flow, model.Field, error) {
	if !field.Kind.Valid() {
		return f, model.Field{}, fmt.Errorf("flow: %w: %q", ErrInvalidKind, field.Kind)
	}
	out := e.clone(f)
	idx, err := stepIndex(out, stepID)
	if err != nil {
		return f, model.Field{}, err
	}
	step := &out.Steps[idx]
	if field.ID == "" {
		field.ID = e.fieldID(*step, string(field.Kind))
	}
	if step.FieldIndex(field.ID) >= 0 {
		return f, model.Field{}, fmt.Errorf("flow: %w: %s", ErrDuplicateField, field.ID)
	}
	field, _ = deepcopyField(field)
	field.Normalize()
	step.Fields = append(step.Fields, field)
	e.touch(&out)
	return out, field, nil
}

// UpdateField applies fn to a copy of a field and normalises it. Renaming a
// field rewrites dependsOn references and the navigation rule driver of its
// step.
func (e *Editor) UpdateField(f model.Flow, stepID, fieldID string, fn func(*model.Field)) (model.Flow, error) {
	out := e.clone(f)
	idx, err := stepIndex(out, stepID)
	if err != nil {
		return f, err
	}
	step := &out.Steps[idx]
	fieldIdx, err := fieldIndex(*step, fieldID)
	if err != nil {
		return f, err
	}

	field := step.Fields[fieldIdx]
	if fn != nil {
		fn(&field)
	}
	if !field.Kind.Valid() {
		return f, fmt.Errorf("flow: %w: %q", ErrInvalidKind, field.Kind)
	}
	if field.ID == "" {
		field.ID = fieldID
	}
	if field.ID != fieldID {
		if step.FieldIndex(field.ID) >= 0 {
			return f, fmt.Errorf("flow: %w: %s", ErrDuplicateField, field.ID)
		}
		renameReferences(step, fieldID, field.ID)
	}
	field.Normalize()
	step.Fields[fieldIdx] = field
	e.touch(&out)
	return out, nil
}

func renameReferences(step *model.Step, from, to string) {
	for idx := range step.Fields {
		if step.Fields[idx].DependsOn == from {
			step.Fields[idx].DependsOn = to
		}
	}
	if step.NavigationRule != nil && step.NavigationRule.FieldID == from {
		step.NavigationRule.FieldID = to
	}
}

// RemoveField deletes a field. Fields depending on it and a navigation rule
// driven by it are kept: dependants become hidden and the rule is treated as
// absent.
func (e *Editor) RemoveField(f model.Flow, stepID, fieldID string) (model.Flow, error) {
	out := e.clone(f)
	idx, err := stepIndex(out, stepID)
	if err != nil {
		return f, err
	}
	step := &out.Steps[idx]
	fieldIdx, err := fieldIndex(*step, fieldID)
	if err != nil {
		return f, err
	}
	step.Fields = append(step.Fields[:fieldIdx], step.Fields[fieldIdx+1:]...)
	e.touch(&out)
	return out, nil
}

// MoveField moves a field to position to within its step.
func (e *Editor) MoveField(f model.Flow, stepID, fieldID string, to int) (model.Flow, error) {
	out := e.clone(f)
	idx, err := stepIndex(out, stepID)
	if err != nil {
		return f, err
	}
	fieldIdx, err := fieldIndex(out.Steps[idx], fieldID)
	if err != nil {
		return f, err
	}
	fields, err := move(out.Steps[idx].Fields, fieldIdx, to)
	if err != nil {
		return f, err
	}
	out.Steps[idx].Fields = fields
	e.touch(&out)
	return out, nil
}

// DuplicateField inserts a copy of a field right after it with a new id.
func (e *Editor) DuplicateField(f model.Flow, stepID, fieldID string) (model.Flow, model.Field, error) {
	out := e.clone(f)
	idx, err := stepIndex(out, stepID)
	if err != nil {
		return f, model.Field{}, err
	}
	step := &out.Steps[idx]
	fieldIdx, err := fieldIndex(*step, fieldID)
	if err != nil {
		return f, model.Field{}, err
	}

	dup, _ := deepcopyField(step.Fields[fieldIdx])
	dup.ID = uniqueFieldID(*step, fieldID+"_copy")
	if dup.Title != "" {
		dup.Title += " (copy)"
	}

	fields := make([]model.Field, 0, len(step.Fields)+1)
	fields = append(fields, step.Fields[:fieldIdx+1]...)
	fields = append(fields, dup)
	fields = append(fields, step.Fields[fieldIdx+1:]...)
	step.Fields = fields
	e.touch(&out)
	return out, dup, nil
}

// ChangeFieldKind switches a field to kind, clearing attributes the new kind
// does not support and reshaping its default value.
func (e *Editor) ChangeFieldKind(f model.Flow, stepID, fieldID string, kind model.Kind) (model.Flow, error) {
	if !kind.Valid() {
		return f, fmt.Errorf("flow: %w: %q", ErrInvalidKind, kind)
	}
	return e.UpdateField(f, stepID, fieldID, func(field *model.Field) {
		*field = field.WithKind(kind)
	})
}

func uniqueFieldID(step model.Step, base string) string {
	if step.FieldIndex(base) < 0 {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + strconv.Itoa(n)
		if step.FieldIndex(candidate) < 0 {
			return candidate
		}
	}
}

func deepcopyField(field model.Field) (model.Field, bool) {
	copied, ok := deepcopy.Copy(field).(model.Field)
	if !ok {
		return field, false
	}
	return copied, true
}

func deepcopyStep(step model.Step) (model.Step, bool) {
	copied, ok := deepcopy.Copy(step).(model.Step)
	if !ok {
		return step, false
	}
	return copied, true
}
