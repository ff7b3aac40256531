package model

import (
	"sort"
	"time"
)

// Kind enumerates the field variants a step can hold.
type Kind string

const (
	KindTitle    Kind = "title"
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindSelect   Kind = "select"
	KindRadio    Kind = "radio"
	KindCheckbox Kind = "checkbox"
	KindFile     Kind = "file"
	KindReadonly Kind = "readonly"
)

// Kinds lists every supported kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindTitle, KindText, KindTextarea, KindSelect, KindRadio, KindCheckbox, KindFile, KindReadonly}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindTitle, KindText, KindTextarea, KindSelect, KindRadio, KindCheckbox, KindFile, KindReadonly:
		return true
	default:
		return false
	}
}

// HasOptions reports whether the kind requires an option list.
func (k Kind) HasOptions() bool {
	return k == KindSelect || k == KindRadio || k == KindCheckbox
}

// Answerable reports whether fields of this kind produce an answer. Title
// fields are purely decorative.
func (k Kind) Answerable() bool {
	return k != KindTitle
}

// Sentinels understood by navigation targets.
const (
	TargetContinue = "continue"
	TargetEnd      = "end"
	TargetSkip     = "skip"
)

// DefaultSummaryCheckExpression is used when a step does not set one.
const DefaultSummaryCheckExpression = "true"

// FileDescriptor describes an uploaded file answer.
type FileDescriptor struct {
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Size    int64  `json:"size,omitempty" yaml:"size,omitempty"`
	DataURL string `json:"dataUrl,omitempty" yaml:"dataUrl,omitempty"`
}

// Answers maps field ids to live answer values.
type Answers map[string]any

// Clone returns a shallow copy of the record. Slice values are copied so the
// clone can be edited without touching the original.
func (a Answers) Clone() Answers {
	if a == nil {
		return nil
	}
	out := make(Answers, len(a))
	for key, value := range a {
		switch typed := value.(type) {
		case []string:
			out[key] = append([]string(nil), typed...)
		case []any:
			out[key] = append([]any(nil), typed...)
		case []FileDescriptor:
			out[key] = append([]FileDescriptor(nil), typed...)
		default:
			out[key] = value
		}
	}
	return out
}

// Condition is a single branch of a navigation rule.
type Condition struct {
	Value        string `json:"value" yaml:"value"`
	NextStepName string `json:"nextStepName" yaml:"nextStepName"`
}

// NavigationRule selects the next step from the answer of a driver field.
// Conditions are tested in order; the first match wins.
type NavigationRule struct {
	FieldID         string      `json:"fieldId" yaml:"fieldId"`
	Conditions      []Condition `json:"conditions" yaml:"conditions"`
	DefaultStepName string      `json:"defaultStepName,omitempty" yaml:"defaultStepName,omitempty"`
}

// Fallback returns the default target, or the continuation marker when unset.
func (r NavigationRule) Fallback() string {
	if r.DefaultStepName == "" {
		return TargetContinue
	}
	return r.DefaultStepName
}

// Step is one page of a flow.
type Step struct {
	ID                     string          `json:"id" yaml:"id"`
	Name                   string          `json:"name" yaml:"name"`
	Description            string          `json:"description,omitempty" yaml:"description,omitempty"`
	Fields                 []Field         `json:"fields" yaml:"fields"`
	ActionName             string          `json:"actionName,omitempty" yaml:"actionName,omitempty"`
	SummaryCheckExpression string          `json:"summaryCheckExpression,omitempty" yaml:"summaryCheckExpression,omitempty"`
	NavigationRule         *NavigationRule `json:"navigationRule,omitempty" yaml:"navigationRule,omitempty"`
}

// Field returns the field with the given id.
func (s Step) Field(id string) (Field, bool) {
	if id == "" {
		return Field{}, false
	}
	for _, field := range s.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return Field{}, false
}

// FieldIndex returns the position of the field with the given id, or -1.
func (s Step) FieldIndex(id string) int {
	for idx, field := range s.Fields {
		if field.ID == id {
			return idx
		}
	}
	return -1
}

// FieldIDs returns the ids of answerable fields in step order.
func (s Step) FieldIDs() []string {
	ids := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		if !field.Kind.Answerable() {
			continue
		}
		ids = append(ids, field.ID)
	}
	return ids
}

// SummaryCheck returns the summary check expression or its default.
func (s Step) SummaryCheck() string {
	if s.SummaryCheckExpression == "" {
		return DefaultSummaryCheckExpression
	}
	return s.SummaryCheckExpression
}

// Normalize clears kind-illegal attributes on every field of the step.
func (s *Step) Normalize() {
	for idx := range s.Fields {
		s.Fields[idx].Normalize()
	}
}

// Flow is an ordered sequence of steps plus metadata.
type Flow struct {
	ID          string    `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []Step    `json:"steps" yaml:"steps"`
	CreatedAt   time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// StepIndex returns the index of the step with the given name, or -1.
func (f Flow) StepIndex(name string) int {
	return StepIndexByName(f.Steps, name)
}

// StepIndexByName returns the index of the step with the given name, or -1.
func StepIndexByName(steps []Step, name string) int {
	if name == "" {
		return -1
	}
	for idx, step := range steps {
		if step.Name == name {
			return idx
		}
	}
	return -1
}

// FieldCount returns the total number of fields across all steps.
func (f Flow) FieldCount() int {
	total := 0
	for _, step := range f.Steps {
		total += len(step.Fields)
	}
	return total
}

// Kinds returns the distinct kinds used across the flow, sorted.
func (f Flow) Kinds() []Kind {
	seen := make(map[Kind]struct{})
	for _, step := range f.Steps {
		for _, field := range step.Fields {
			seen[field.Kind] = struct{}{}
		}
	}
	out := make([]Kind, 0, len(seen))
	for kind := range seen {
		out = append(out, kind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Normalize clears kind-illegal attributes across the flow.
func (f *Flow) Normalize() {
	for idx := range f.Steps {
		f.Steps[idx].Normalize()
	}
}
