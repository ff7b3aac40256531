package orchestrator_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	internalLoader "github.com/goliatone/go-formflow/internal/flowio/loader"
	"github.com/goliatone/go-formflow/pkg/compiler"
	"github.com/goliatone/go-formflow/pkg/export"
	"github.com/goliatone/go-formflow/pkg/flow"
	"github.com/goliatone/go-formflow/pkg/flowio"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/orchestrator"
	"github.com/goliatone/go-formflow/pkg/validation"
)

const sampleFlow = `
name: Sample
steps:
  - name: First
    actionName: saveFirst
    fields:
      - id: color
        type: radio
        title: Colour
        required: true
        options: [Red, Blue]
      - id: shade
        type: text
        title: Shade
        dependsOn: color
        showWhen: Red
    navigationRule:
      fieldId: color
      conditions:
        - value: Blue
          nextStepName: Second
  - name: Second
    fields:
      - type: text
        title: Notes
`

func sampleDocument(t *testing.T) *flowio.Document {
	t.Helper()

	doc, err := flowio.NewDocument(flowio.SourceFromFile("sample.yaml"), []byte(sampleFlow))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return &doc
}

func TestOrchestrator_FlowAssignsIDsAndDecorates(t *testing.T) {
	t.Parallel()

	decorator := model.DecoratorFunc(func(f *model.Flow) error {
		f.Description = "decorated"
		return nil
	})

	orch := orchestrator.New(orchestrator.WithDecorators(decorator))
	f, err := orch.Flow(context.Background(), orchestrator.Request{Document: sampleDocument(t)})
	if err != nil {
		t.Fatalf("flow: %v", err)
	}
	if f.Description != "decorated" {
		t.Fatalf("decorator not applied: %q", f.Description)
	}
	if f.ID == "" || f.Steps[0].ID == "" || f.Steps[1].Fields[0].ID == "" {
		t.Fatalf("expected identifiers to be assigned: %+v", f)
	}
}

func TestOrchestrator_LoadsFromSource(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{"flows/sample.yaml": {Data: []byte(sampleFlow)}}
	loader := internalLoader.New(flowio.NewLoaderOptions(flowio.WithFileSystem(files)))
	orch := orchestrator.New(orchestrator.WithLoader(loader))

	results, err := orch.Compile(context.Background(), orchestrator.Request{
		Source: flowio.SourceFromFS("flows/sample.yaml"),
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(results) != 2 || results[0].Step != "First" || results[1].Step != "Second" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if got := results[0].Result.Action.ActionName; got != "saveFirst" {
		t.Fatalf("action name = %q", got)
	}
}

func TestOrchestrator_CompileSingleStep(t *testing.T) {
	t.Parallel()

	orch := orchestrator.New(orchestrator.WithCompilerOptions(compiler.WithSubmitText("Next")))
	results, err := orch.Compile(context.Background(), orchestrator.Request{
		Document: sampleDocument(t),
		Step:     "Second",
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(results) != 1 || results[0].Step != "Second" {
		t.Fatalf("unexpected results: %+v", results)
	}
	submit := results[0].Result.PresentationSchema[compiler.KeySubmitButton].(map[string]any)
	if submit[compiler.KeySubmitText] != "Next" {
		t.Fatalf("submit text = %v", submit[compiler.KeySubmitText])
	}

	_, err = orch.Compile(context.Background(), orchestrator.Request{Document: sampleDocument(t), Step: "Missing"})
	if !errors.Is(err, orchestrator.ErrStepNotFound) {
		t.Fatalf("expected ErrStepNotFound, got %v", err)
	}
}

func TestOrchestrator_CompileLeavesCallerFlowUntouched(t *testing.T) {
	t.Parallel()

	input := model.Flow{Name: "Inline", Steps: []model.Step{{
		Name: "Only",
		Fields: []model.Field{{
			ID:           "notes",
			Kind:         model.KindText,
			Title:        "Notes",
			Options:      []string{"x"},
			DefaultValue: 42.0,
		}},
	}}}
	before := flow.Clone(input)

	results, err := orchestrator.New().Compile(context.Background(), orchestrator.Request{Flow: &input})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one compiled step, got %d", len(results))
	}
	if diff := cmp.Diff(before, input); diff != "" {
		t.Fatalf("caller flow mutated (-before +after):\n%s", diff)
	}
	if input.Steps[0].ID != "" {
		t.Fatalf("caller step received id %q", input.Steps[0].ID)
	}
}

func TestOrchestrator_StrictModeRejectsLintIssues(t *testing.T) {
	t.Parallel()

	broken := model.Flow{Name: "Broken", Steps: []model.Step{{
		Name:   "Only",
		Fields: []model.Field{{ID: "pick", Kind: model.KindSelect, Title: "Pick"}},
	}}}

	orch := orchestrator.New(orchestrator.WithStrict(true))
	_, err := orch.Flow(context.Background(), orchestrator.Request{Flow: &broken})
	var lintErr *orchestrator.LintError
	if !errors.As(err, &lintErr) {
		t.Fatalf("expected LintError, got %v", err)
	}
	if len(lintErr.Issues) == 0 || lintErr.Issues[0].Code != validation.CodeMissingOptions {
		t.Fatalf("unexpected issues: %+v", lintErr.Issues)
	}

	issues, err := orch.Lint(context.Background(), orchestrator.Request{Flow: &broken})
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(issues) != len(lintErr.Issues) {
		t.Fatalf("lint issues = %d, want %d", len(issues), len(lintErr.Issues))
	}
}

func TestOrchestrator_ExportAndOpenAPI(t *testing.T) {
	t.Parallel()

	orch := orchestrator.New()
	doc, err := orch.Export(context.Background(), orchestrator.Request{Document: sampleDocument(t)}, export.WithVersion("2.0"))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if doc.Version != "2.0" || doc.Metadata.TotalSteps != 2 || doc.Metadata.TotalFields != 3 {
		t.Fatalf("unexpected export: %+v", doc.Metadata)
	}

	apiDoc, err := orch.OpenAPI(context.Background(), orchestrator.Request{Document: sampleDocument(t)})
	if err != nil {
		t.Fatalf("openapi: %v", err)
	}
	if apiDoc.Paths.Len() != 2 {
		t.Fatalf("paths = %d, want 2", apiDoc.Paths.Len())
	}
}

func TestOrchestrator_RequiresInput(t *testing.T) {
	t.Parallel()

	orch := orchestrator.New()
	if _, err := orch.Flow(context.Background(), orchestrator.Request{}); err == nil {
		t.Fatal("expected error for empty request")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := orch.Flow(ctx, orchestrator.Request{Document: sampleDocument(t)}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
