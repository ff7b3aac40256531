package runtime_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/navigation/interp"
	"github.com/goliatone/go-formflow/pkg/runtime"
)

func branchingFlow() model.Flow {
	return model.Flow{
		Name: "Branching",
		Steps: []model.Step{
			{
				Name: "Page 1",
				Fields: []model.Field{
					model.NewField(model.KindTitle, "intro", "Intro"),
					model.NewField(model.KindText, "name", "Name", model.Required(), model.WithDefault("#client.name")),
					model.NewField(model.KindRadio, "color", "Color", model.Required(), model.WithOptions("Red", "Blue", "Green")),
					model.NewField(model.KindText, "shade", "Shade", model.Required(), model.ShownWhen("color", "Red")),
				},
				NavigationRule: &model.NavigationRule{
					FieldID: "color",
					Conditions: []model.Condition{
						{Value: "Red", NextStepName: "Page 2"},
						{Value: "Blue", NextStepName: "Page 3"},
						{Value: "Green", NextStepName: "Gone"},
					},
					DefaultStepName: "end",
				},
			},
			{Name: "Page 2", Fields: []model.Field{model.NewField(model.KindReadonly, "ref", "Ref", model.WithDefault("R-1"))}},
			{Name: "Page 3"},
		},
	}
}

func TestSessionResolvesTemplates(t *testing.T) {
	t.Parallel()

	s, err := runtime.New(branchingFlow(), runtime.WithContext(map[string]any{
		"client": map[string]any{"name": "Ada"},
	}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := s.Answers()["name"]; got != "Ada" {
		t.Fatalf("expected template to resolve, got %v", got)
	}
}

func TestSessionBlocksUntilValid(t *testing.T) {
	t.Parallel()

	s, err := runtime.New(branchingFlow())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.Answer("name", ""); err != nil {
		t.Fatalf("answer: %v", err)
	}

	_, err = s.Submit()
	var verr *runtime.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{"name", "color"}
	got := make([]string, 0, len(verr.Issues))
	for _, issue := range verr.Issues {
		got = append(got, issue.Field)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("issue fields mismatch (-want +got):\n%s", diff)
	}
	if s.Index() != 0 {
		t.Fatal("session must not move on validation failure")
	}

	// Selecting Red reveals the required shade field.
	_ = s.Answer("name", "Ada")
	_ = s.Answer("color", "Red")
	if _, err := s.Submit(); !errors.As(err, &verr) || verr.Issues[0].Field != "shade" {
		t.Fatalf("expected shade to be required once visible, got %v", err)
	}
}

func TestSessionBranches(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"native", interp.NameCEL, interp.NameExpr} {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var opts []runtime.Option
			if name != "native" {
				interpreter, err := interp.ByName(name)
				if err != nil {
					t.Fatalf("interpreter: %v", err)
				}
				opts = append(opts, runtime.WithInterpreter(interpreter))
			}

			s, err := runtime.New(branchingFlow(), opts...)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			_ = s.Answer("name", "Ada")
			_ = s.Answer("color", "Blue")

			outcome, err := s.Submit()
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
			if outcome.Kind != navigation.OutcomeJump || s.Index() != 2 {
				t.Fatalf("expected jump to Page 3, got %v at %d", outcome, s.Index())
			}

			outcome, err = s.Submit()
			if err != nil {
				t.Fatalf("submit last: %v", err)
			}
			if outcome.Kind != navigation.OutcomeComplete || !s.Finished() {
				t.Fatalf("expected completion, got %v", outcome)
			}
			if _, err := s.Submit(); !errors.Is(err, runtime.ErrFinished) {
				t.Fatalf("expected ErrFinished, got %v", err)
			}

			if err := s.Back(); err != nil {
				t.Fatalf("back: %v", err)
			}
			if s.Index() != 0 || s.Finished() {
				t.Fatalf("expected to be back on the first step, got %d", s.Index())
			}
		})
	}
}

func TestSessionTargetNotFound(t *testing.T) {
	t.Parallel()

	s, _ := runtime.New(branchingFlow())
	_ = s.Answer("name", "Ada")
	_ = s.Answer("color", "Green")

	outcome, err := s.Submit()
	if !errors.Is(err, runtime.ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound, got %v", err)
	}
	if outcome.Kind != navigation.OutcomeTargetNotFound || outcome.Target != "Gone" {
		t.Fatalf("unexpected outcome %v", outcome)
	}
	if s.Index() != 0 || s.Finished() {
		t.Fatal("session must stay on the current step")
	}
}

func TestSessionAnswerGuards(t *testing.T) {
	t.Parallel()

	s, _ := runtime.New(branchingFlow())
	if err := s.Answer("missing", "x"); !errors.Is(err, runtime.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := s.Answer("intro", "x"); !errors.Is(err, runtime.ErrUnknownField) {
		t.Fatalf("expected title to be unanswerable, got %v", err)
	}
	if err := s.Back(); !errors.Is(err, runtime.ErrNoHistory) {
		t.Fatalf("expected ErrNoHistory, got %v", err)
	}

	_ = s.Answer("name", "Ada")
	_ = s.Answer("color", "Red")
	_ = s.Answer("shade", "Crimson")
	if _, err := s.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := s.Answer("ref", "x"); !errors.Is(err, runtime.ErrReadOnlyField) {
		t.Fatalf("expected ErrReadOnlyField, got %v", err)
	}
}

func TestSessionVisibleAndCollected(t *testing.T) {
	t.Parallel()

	s, _ := runtime.New(branchingFlow())
	_ = s.Answer("name", "Ada")
	_ = s.Answer("color", "Blue")
	_ = s.Answer("shade", "stale")

	ids := make([]string, 0)
	for _, field := range s.Visible() {
		ids = append(ids, field.ID)
	}
	if diff := cmp.Diff([]string{"intro", "name", "color"}, ids); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	want := []runtime.StepAnswers{
		{Step: "Page 1", Answers: model.Answers{"name": "Ada", "color": "Blue"}},
		{Step: "Page 3", Answers: model.Answers{}},
	}
	if diff := cmp.Diff(want, s.Collected()); diff != "" {
		t.Fatalf("collected mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionEmptyFlow(t *testing.T) {
	t.Parallel()

	if _, err := runtime.New(model.Flow{}); !errors.Is(err, runtime.ErrEmptyFlow) {
		t.Fatalf("expected ErrEmptyFlow, got %v", err)
	}
}
