package interp

import (
	"errors"
	"testing"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
)

func interpreters(t *testing.T) []Interpreter {
	t.Helper()
	celInterp, err := NewCEL()
	if err != nil {
		t.Fatalf("NewCEL: %v", err)
	}
	return []Interpreter{celInterp, NewExpr()}
}

type agreementCase struct {
	name    string
	rule    *model.NavigationRule
	answers model.Answers
}

func agreementFields() []model.Field {
	return []model.Field{
		model.NewField(model.KindRadio, "color", "Color", model.WithOptions("Red", "Blue", "Gr'een")),
		model.NewField(model.KindSelect, "size", "Size", model.WithOptions("S", "M")),
		model.NewField(model.KindCheckbox, "tags", "Tags", model.WithOptions("a", "b", "c")),
		model.NewField(model.KindText, "code", "Code"),
		model.NewField(model.KindFile, "doc", "Document", model.WithFileConstraints(5, false, ".pdf")),
	}
}

func agreementCases() []agreementCase {
	colorRule := &model.NavigationRule{
		FieldID: "color",
		Conditions: []model.Condition{
			{Value: "Red", NextStepName: "Page 2"},
			{Value: "Gr'een", NextStepName: "Page 3"},
		},
		DefaultStepName: "end",
	}
	tagRule := &model.NavigationRule{
		FieldID: "tags",
		Conditions: []model.Condition{
			{Value: "b", NextStepName: "X"},
			{Value: "c", NextStepName: "skip"},
		},
	}
	codeRule := &model.NavigationRule{
		FieldID:    "code",
		Conditions: []model.Condition{{Value: `a\b`, NextStepName: "Page 2"}},
	}
	docRule := &model.NavigationRule{
		FieldID:         "doc",
		Conditions:      []model.Condition{{Value: "cv.pdf", NextStepName: "X"}},
		DefaultStepName: "end",
	}
	return []agreementCase{
		{name: "file by name", rule: docRule, answers: model.Answers{"doc": &model.FileDescriptor{Name: "cv.pdf", Type: "application/pdf"}}},
		{name: "file other name", rule: docRule, answers: model.Answers{"doc": &model.FileDescriptor{Name: "letter.pdf"}}},
		{name: "text formatted scalar", rule: codeRule, answers: model.Answers{"code": true}},
		{name: "radio first", rule: colorRule, answers: model.Answers{"color": "Red"}},
		{name: "radio quoted", rule: colorRule, answers: model.Answers{"color": "Gr'een"}},
		{name: "radio fallback", rule: colorRule, answers: model.Answers{"color": "Blue"}},
		{name: "checkbox no match", rule: tagRule, answers: model.Answers{"tags": []string{"a"}}},
		{name: "checkbox first", rule: tagRule, answers: model.Answers{"tags": []string{"c", "b"}}},
		{name: "checkbox decoded", rule: tagRule, answers: model.Answers{"tags": []any{"c"}}},
		{name: "text backslash", rule: codeRule, answers: model.Answers{"code": `a\b`}},
		{name: "no rule", rule: nil, answers: model.Answers{"color": "Red"}},
		{name: "dangling rule", rule: &model.NavigationRule{FieldID: "gone", Conditions: colorRule.Conditions}, answers: model.Answers{"color": "Red"}},
	}
}

func TestInterpretersAgreeWithNativeDecision(t *testing.T) {
	t.Parallel()

	fields := agreementFields()
	for _, interpreter := range interpreters(t) {
		for _, tc := range agreementCases() {
			decision := navigation.Plan(tc.rule, fields)
			want := decision.Target(tc.answers)

			got, err := interpreter.Eval(decision.Expression(), tc.answers)
			if err != nil {
				t.Fatalf("%s/%s: eval %q: %v", interpreter.Name(), tc.name, decision.Expression(), err)
			}
			if got != want {
				t.Fatalf("%s/%s: interpreter chose %q, native chose %q (expr %s)", interpreter.Name(), tc.name, got, want, decision.Expression())
			}
		}
	}
}

func TestInterpretersCacheCompiledPrograms(t *testing.T) {
	t.Parallel()

	celInterp, err := NewCEL()
	if err != nil {
		t.Fatalf("NewCEL: %v", err)
	}
	exprInterp := NewExpr()
	expression := `answers['color'] == 'Red' ? 'A' : 'B'`
	for i := 0; i < 3; i++ {
		if _, err := celInterp.Eval(expression, model.Answers{"color": "Red"}); err != nil {
			t.Fatalf("cel eval: %v", err)
		}
		if _, err := exprInterp.Eval(expression, model.Answers{"color": "Red"}); err != nil {
			t.Fatalf("expr eval: %v", err)
		}
	}
	if celInterp.CacheSize() != 1 || exprInterp.CacheSize() != 1 {
		t.Fatalf("expected one cached program each, got cel=%d expr=%d", celInterp.CacheSize(), exprInterp.CacheSize())
	}
}

func TestInterpretersRejectInvalidExpressions(t *testing.T) {
	t.Parallel()

	for _, interpreter := range interpreters(t) {
		if _, err := interpreter.Eval(`answers['color'] ==`, model.Answers{}); err == nil {
			t.Fatalf("%s: expected compile error", interpreter.Name())
		}
	}
}

func TestByName(t *testing.T) {
	t.Parallel()

	for _, name := range Names() {
		got, err := ByName(name)
		if err != nil {
			t.Fatalf("ByName(%q): %v", name, err)
		}
		if got.Name() != name {
			t.Fatalf("ByName(%q) returned %q", name, got.Name())
		}
	}
	if _, err := ByName("lua"); !errors.Is(err, ErrUnknownInterpreter) {
		t.Fatalf("expected ErrUnknownInterpreter, got %v", err)
	}
}
