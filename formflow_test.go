package formflow_test

import (
	"context"
	"testing"

	formflow "github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/flowio"
	"github.com/goliatone/go-formflow/pkg/model"
)

func TestLoadCompileAndRunSampleFlow(t *testing.T) {
	t.Parallel()

	stamp := model.DecoratorFunc(func(f *model.Flow) error {
		f.Description = "stamped"
		return nil
	})

	f, err := formflow.Load(context.Background(), flowio.SourceFromFile("examples/flows/onboarding.yaml"), stamp)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Name != "Onboarding" || f.Description != "stamped" || len(f.Steps) != 4 {
		t.Fatalf("unexpected flow: %+v", f)
	}

	results := formflow.Compile(f)
	want := "answers['color'] == 'Red' ? 'Reds' : (answers['color'] == 'Blue' ? 'Blues' : 'continue')"
	if got := results[0].Action.NextFlowDeterminationExpression; got != want {
		t.Fatalf("expression = %q, want %q", got, want)
	}

	session, err := formflow.NewSession(f)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if err := session.Answer("fullName", "Ada"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := session.Answer("color", "Blue"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := session.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if session.Current().Name != "Blues" {
		t.Fatalf("current step = %q, want Blues", session.Current().Name)
	}
}

func TestExportCountsFields(t *testing.T) {
	t.Parallel()

	f, err := formflow.Load(context.Background(), flowio.SourceFromFile("examples/flows/onboarding.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	doc := formflow.Export(f)
	if doc.Metadata.TotalSteps != 4 || doc.Metadata.TotalFields != 8 {
		t.Fatalf("unexpected metadata: %+v", doc.Metadata)
	}
}

func TestLoadRequiresSource(t *testing.T) {
	t.Parallel()

	if _, err := formflow.Load(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil source")
	}
}
