package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/getkin/kin-openapi/openapi3"

	internalLoader "github.com/goliatone/go-formflow/internal/flowio/loader"
	flowlog "github.com/goliatone/go-formflow/internal/log"
	"github.com/goliatone/go-formflow/pkg/compiler"
	"github.com/goliatone/go-formflow/pkg/export"
	"github.com/goliatone/go-formflow/pkg/flow"
	"github.com/goliatone/go-formflow/pkg/flowio"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// ErrStepNotFound is returned when a request names a step the flow lacks.
var ErrStepNotFound = errors.New("orchestrator: step not found")

// LintError is returned in strict mode when the flow has authoring issues.
type LintError struct {
	Issues []validation.Issue
}

func (e *LintError) Error() string {
	return fmt.Sprintf("orchestrator: flow has %d lint issue(s)", len(e.Issues))
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom flow loader.
func WithLoader(loader flowio.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithEditor replaces the editor used to stamp missing identifiers.
func WithEditor(editor *flow.Editor) Option {
	return func(o *Orchestrator) {
		o.editor = editor
	}
}

// WithTransformer registers a Transformer that can mutate flows after
// identifiers are assigned but before decorators run.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithDecorators registers decorators applied to every resolved flow.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		if len(decorators) == 0 {
			return
		}
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithCompilerOptions forwards options to the step compiler, the exporter and
// the OpenAPI generator.
func WithCompilerOptions(opts ...compiler.Option) Option {
	return func(o *Orchestrator) {
		o.compilerOptions = append(o.compilerOptions, opts...)
	}
}

// WithLintOptions forwards options to validation.LintFlow.
func WithLintOptions(opts ...validation.LintOption) Option {
	return func(o *Orchestrator) {
		o.lintOptions = append(o.lintOptions, opts...)
	}
}

// WithStrict rejects flows that carry lint issues with a *LintError.
func WithStrict(strict bool) Option {
	return func(o *Orchestrator) {
		o.strict = strict
	}
}

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates the pipeline from a flow document to compiled step
// schemas, exports and OpenAPI descriptions.
type Orchestrator struct {
	loader          flowio.Loader
	editor          *flow.Editor
	transformer     Transformer
	decorators      []model.Decorator
	compilerOptions []compiler.Option
	lintOptions     []validation.LintOption
	strict          bool
	logger          *slog.Logger
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.loader == nil {
		o.loader = internalLoader.New(flowio.NewLoaderOptions())
	}
	if o.editor == nil {
		o.editor = flow.Default
	}
	if o.logger == nil {
		o.logger = flowlog.Discard()
	}
	o.logger = flowlog.WithComponent(o.logger, "orchestrator")
	return o
}

// Request describes where a flow comes from and, optionally, which step to
// operate on.
type Request struct {
	// Source identifies where the flow document lives. Optional when Document
	// or Flow is supplied.
	Source flowio.Source

	// Document bypasses the loader with an already fetched payload.
	Document *flowio.Document

	// Flow bypasses loading and decoding entirely.
	Flow *model.Flow

	// Step restricts Compile to the step with this name or id.
	Step string
}

// StepResult pairs a compiled step with its name.
type StepResult struct {
	Step   string
	Result compiler.Result
}

// Flow resolves the request into a decorated flow.
func (o *Orchestrator) Flow(ctx context.Context, req Request) (model.Flow, error) {
	f, err := o.prepare(ctx, req)
	if err != nil {
		return model.Flow{}, err
	}
	if o.strict {
		if issues := validation.LintFlow(f, o.lintOptions...); len(issues) > 0 {
			return model.Flow{}, &LintError{Issues: issues}
		}
	}
	return f, nil
}

func (o *Orchestrator) prepare(ctx context.Context, req Request) (model.Flow, error) {
	if ctx == nil {
		return model.Flow{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return model.Flow{}, err
	}

	f, err := o.resolveFlow(ctx, req)
	if err != nil {
		return model.Flow{}, err
	}

	f = o.editor.AssignIDs(f)
	if err := o.applyTransformer(ctx, &f); err != nil {
		return model.Flow{}, err
	}
	if err := o.applyDecorators(&f); err != nil {
		return model.Flow{}, err
	}
	f.Normalize()

	o.logger.Debug("flow resolved",
		slog.String(flowlog.FlowKey, f.Name),
		slog.Int("steps", len(f.Steps)),
		slog.Int("fields", f.FieldCount()),
	)
	return f, nil
}

// Compile resolves the flow and compiles every step, or only req.Step when
// set.
func (o *Orchestrator) Compile(ctx context.Context, req Request) ([]StepResult, error) {
	f, err := o.Flow(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.Step != "" {
		idx := findStep(f, req.Step)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrStepNotFound, req.Step)
		}
		step := f.Steps[idx]
		return []StepResult{{Step: step.Name, Result: compiler.Compile(step, o.compilerOptions...)}}, nil
	}

	results := compiler.CompileFlow(f, o.compilerOptions...)
	out := make([]StepResult, len(results))
	for idx, result := range results {
		out[idx] = StepResult{Step: f.Steps[idx].Name, Result: result}
	}
	return out, nil
}

// Lint resolves the flow and returns its authoring issues. Strict mode is
// ignored so the issues are always reported rather than returned as an error.
func (o *Orchestrator) Lint(ctx context.Context, req Request) ([]validation.Issue, error) {
	f, err := o.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	return validation.LintFlow(f, o.lintOptions...), nil
}

// Export resolves the flow and builds its export document.
func (o *Orchestrator) Export(ctx context.Context, req Request, opts ...export.Option) (export.Document, error) {
	f, err := o.Flow(ctx, req)
	if err != nil {
		return export.Document{}, err
	}
	options := append([]export.Option{export.WithCompilerOptions(o.compilerOptions...)}, opts...)
	return export.Export(f, options...), nil
}

// OpenAPI resolves the flow and describes it as an OpenAPI document.
func (o *Orchestrator) OpenAPI(ctx context.Context, req Request, opts ...openapi.Option) (*openapi3.T, error) {
	f, err := o.Flow(ctx, req)
	if err != nil {
		return nil, err
	}
	options := append([]openapi.Option{openapi.WithCompilerOptions(o.compilerOptions...)}, opts...)
	doc, err := openapi.Document(ctx, f, options...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: openapi: %w", err)
	}
	return doc, nil
}

func (o *Orchestrator) resolveFlow(ctx context.Context, req Request) (model.Flow, error) {
	if req.Flow != nil {
		return flow.Clone(*req.Flow), nil
	}

	var doc flowio.Document
	switch {
	case req.Document != nil:
		doc = *req.Document
	case req.Source != nil:
		loaded, err := o.loader.Load(ctx, req.Source)
		if err != nil {
			return model.Flow{}, fmt.Errorf("orchestrator: load document: %w", err)
		}
		doc = loaded
	default:
		return model.Flow{}, errors.New("orchestrator: source, document or flow is required")
	}

	f, err := doc.Flow()
	if err != nil {
		return model.Flow{}, fmt.Errorf("orchestrator: decode %s: %w", doc.Location(), err)
	}
	return f, nil
}

func (o *Orchestrator) applyDecorators(f *model.Flow) error {
	for _, decorator := range o.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(f); err != nil {
			return fmt.Errorf("orchestrator: decorate flow: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, f *model.Flow) error {
	if o.transformer == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, f); err != nil {
		return fmt.Errorf("orchestrator: transform flow: %w", err)
	}
	return nil
}

func findStep(f model.Flow, ref string) int {
	if idx := f.StepIndex(ref); idx >= 0 {
		return idx
	}
	for idx, step := range f.Steps {
		if step.ID == ref {
			return idx
		}
	}
	return -1
}
