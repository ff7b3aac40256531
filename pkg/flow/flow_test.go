package flow_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/flow"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
)

func newEditor() *flow.Editor {
	counter := 0
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return flow.NewEditor(
		flow.WithIDGenerator(func() string {
			counter++
			return fmt.Sprintf("id-%04d-aaaa", counter)
		}),
		flow.WithClock(func() time.Time {
			tick = tick.Add(time.Minute)
			return tick
		}),
	)
}

func TestNewFlowHasOneStep(t *testing.T) {
	t.Parallel()

	f := newEditor().New("Survey")
	if len(f.Steps) != 1 || f.Steps[0].Name != "Step 1" || f.Steps[0].ID == "" {
		t.Fatalf("unexpected flow: %+v", f)
	}
	if f.CreatedAt.IsZero() || !f.CreatedAt.Equal(f.UpdatedAt) {
		t.Fatalf("unexpected timestamps: %v %v", f.CreatedAt, f.UpdatedAt)
	}

	def := flow.New("Default")
	if def.ID == "" || len(def.Steps) != 1 {
		t.Fatalf("unexpected default flow: %+v", def)
	}
}

func TestEditsDoNotMutateInput(t *testing.T) {
	t.Parallel()

	e := newEditor()
	base := e.New("Survey")
	stepID := base.Steps[0].ID

	withField, _, err := e.AddField(base, stepID, model.NewField(model.KindCheckbox, "tags", "Tags", model.WithOptions("a", "b"), model.WithDefault([]string{"a"})))
	if err != nil {
		t.Fatalf("add field: %v", err)
	}
	snapshot := e.AssignIDs(withField)

	edited, err := e.UpdateField(withField, stepID, "tags", func(field *model.Field) {
		field.Options[0] = "z"
		field.DefaultValue.([]string)[0] = "z"
	})
	if err != nil {
		t.Fatalf("update field: %v", err)
	}

	if len(base.Steps[0].Fields) != 0 {
		t.Fatal("base flow was mutated")
	}
	if diff := cmp.Diff(snapshot.Steps, withField.Steps); diff != "" {
		t.Fatalf("input flow mutated (-want +got):\n%s", diff)
	}
	if edited.Steps[0].Fields[0].Options[0] != "z" {
		t.Fatal("edit was not applied to the result")
	}
	if !edited.UpdatedAt.After(withField.UpdatedAt) {
		t.Fatal("expected UpdatedAt to advance")
	}
}

func TestStepOperations(t *testing.T) {
	t.Parallel()

	e := newEditor()
	f := e.New("Survey")
	first := f.Steps[0].ID

	f, second := e.AddStep(f, "")
	if second.Name != "Step 2" {
		t.Fatalf("unexpected generated name %q", second.Name)
	}
	f, third := e.AddStep(f, "Review")

	f, err := e.MoveStep(f, third.ID, 0)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if diff := cmp.Diff([]string{"Review", "Step 1", "Step 2"}, stepNames(f)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	f, dup, err := e.DuplicateStep(f, first)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if dup.ID == first || dup.Name != "Step 1 (copy)" {
		t.Fatalf("unexpected duplicate: %+v", dup)
	}
	if diff := cmp.Diff([]string{"Review", "Step 1", "Step 1 (copy)", "Step 2"}, stepNames(f)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	f, err = e.UpdateStep(f, second.ID, func(step *model.Step) {
		step.Name = "Details"
		step.ID = "ignored"
	})
	if err != nil {
		t.Fatalf("update step: %v", err)
	}
	if idx := f.StepIndex("Details"); idx < 0 || f.Steps[idx].ID != second.ID {
		t.Fatal("step id must survive updates")
	}

	for _, id := range []string{third.ID, dup.ID, second.ID} {
		f, err = e.RemoveStep(f, id)
		if err != nil {
			t.Fatalf("remove %s: %v", id, err)
		}
	}
	if _, err := e.RemoveStep(f, first); !errors.Is(err, flow.ErrLastStep) {
		t.Fatalf("expected ErrLastStep, got %v", err)
	}
	if _, err := e.RemoveStep(f, "missing"); !errors.Is(err, flow.ErrStepNotFound) {
		t.Fatalf("expected ErrStepNotFound, got %v", err)
	}
	if _, err := e.MoveStep(f, first, 3); !errors.Is(err, flow.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestFieldOperations(t *testing.T) {
	t.Parallel()

	e := newEditor()
	f := e.New("Survey")
	stepID := f.Steps[0].ID

	f, color, err := e.AddField(f, stepID, model.NewField(model.KindRadio, "color", "Color", model.WithOptions("Red", "Blue")))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	f, generated, err := e.AddField(f, stepID, model.Field{Kind: model.KindText, Title: "Notes"})
	if err != nil {
		t.Fatalf("add generated: %v", err)
	}
	if generated.ID != "text_id0003aa" {
		t.Fatalf("unexpected generated id %q", generated.ID)
	}
	if _, _, err := e.AddField(f, stepID, model.NewField(model.KindText, "color", "Dup")); !errors.Is(err, flow.ErrDuplicateField) {
		t.Fatalf("expected ErrDuplicateField, got %v", err)
	}
	if _, _, err := e.AddField(f, stepID, model.Field{ID: "x", Kind: "slider"}); !errors.Is(err, flow.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}

	f, dup, err := e.DuplicateField(f, stepID, color.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if dup.ID != "color_copy" || dup.Title != "Color (copy)" {
		t.Fatalf("unexpected duplicate: %+v", dup)
	}
	if diff := cmp.Diff([]string{"color", "color_copy", generated.ID}, f.Steps[0].FieldIDs()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	f, err = e.MoveField(f, stepID, generated.ID, 0)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if diff := cmp.Diff([]string{generated.ID, "color", "color_copy"}, f.Steps[0].FieldIDs()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	f, err = e.RemoveField(f, stepID, "color_copy")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := e.RemoveField(f, stepID, "color_copy"); !errors.Is(err, flow.ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
}

func TestRenameFieldRewritesReferences(t *testing.T) {
	t.Parallel()

	e := newEditor()
	f := e.New("Survey")
	stepID := f.Steps[0].ID

	f, _, _ = e.AddField(f, stepID, model.NewField(model.KindRadio, "color", "Color", model.WithOptions("Red")))
	f, _, _ = e.AddField(f, stepID, model.NewField(model.KindText, "shade", "Shade", model.ShownWhen("color", "Red")))
	f, err := e.SetNavigationRule(f, stepID, model.NavigationRule{FieldID: "color", Conditions: []model.Condition{{Value: "Red", NextStepName: "end"}}})
	if err != nil {
		t.Fatalf("set rule: %v", err)
	}

	f, err = e.UpdateField(f, stepID, "color", func(field *model.Field) { field.ID = "hue" })
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	step := f.Steps[0]
	if shade, _ := step.Field("shade"); shade.DependsOn != "hue" {
		t.Fatalf("dependsOn not rewritten: %+v", shade)
	}
	if step.NavigationRule.FieldID != "hue" {
		t.Fatalf("rule driver not rewritten: %+v", step.NavigationRule)
	}

	if _, err := e.UpdateField(f, stepID, "shade", func(field *model.Field) { field.ID = "hue" }); !errors.Is(err, flow.ErrDuplicateField) {
		t.Fatalf("expected ErrDuplicateField, got %v", err)
	}
}

func TestChangeFieldKindClearsAttributes(t *testing.T) {
	t.Parallel()

	e := newEditor()
	f := e.New("Survey")
	stepID := f.Steps[0].ID
	f, _, _ = e.AddField(f, stepID, model.NewField(model.KindCheckbox, "tags", "Tags", model.WithOptions("a"), model.WithDefault([]string{"a"})))

	f, err := e.ChangeFieldKind(f, stepID, "tags", model.KindFile)
	if err != nil {
		t.Fatalf("change kind: %v", err)
	}
	field, _ := f.Steps[0].Field("tags")
	if field.Kind != model.KindFile || field.Options != nil || field.DefaultValue != nil {
		t.Fatalf("kind change did not clear attributes: %+v", field)
	}

	if _, err := e.ChangeFieldKind(f, stepID, "tags", "slider"); !errors.Is(err, flow.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestRemovingDriverDeactivatesRule(t *testing.T) {
	t.Parallel()

	e := newEditor()
	f := e.New("Survey")
	stepID := f.Steps[0].ID
	f, _, _ = e.AddField(f, stepID, model.NewField(model.KindRadio, "color", "Color", model.WithOptions("Red")))
	f, _ = e.SetNavigationRule(f, stepID, model.NavigationRule{FieldID: "color", Conditions: []model.Condition{{Value: "Red", NextStepName: "end"}}})

	f, err := e.RemoveField(f, stepID, "color")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	step := f.Steps[0]
	if step.NavigationRule == nil {
		t.Fatal("rule should stay in place")
	}
	if got := navigation.BuildExpression(step.NavigationRule, step.Fields); got != "'continue'" {
		t.Fatalf("expected inactive expression, got %q", got)
	}

	f, err = e.ClearNavigationRule(f, stepID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if f.Steps[0].NavigationRule != nil {
		t.Fatal("expected rule to be cleared")
	}
}

func TestAssignIDs(t *testing.T) {
	t.Parallel()

	e := newEditor()
	f := e.AssignIDs(model.Flow{Steps: []model.Step{{Name: "A", Fields: []model.Field{{Kind: model.KindText}}}}})
	if f.ID == "" || f.Steps[0].ID == "" || f.Steps[0].Fields[0].ID == "" {
		t.Fatalf("expected ids to be assigned: %+v", f)
	}

	decorated := model.Flow{ID: "keep", Steps: []model.Step{{Name: "A"}}}
	if err := e.IDDecorator().Decorate(&decorated); err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if decorated.ID != "keep" || decorated.Steps[0].ID == "" {
		t.Fatalf("unexpected decorated flow: %+v", decorated)
	}
}

func stepNames(f model.Flow) []string {
	names := make([]string, 0, len(f.Steps))
	for _, step := range f.Steps {
		names = append(names, step.Name)
	}
	return names
}
