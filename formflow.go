// Package formflow compiles multi-step form flows into JSON Schema style step
// schemas and portable navigation expressions, and drives them at runtime.
//
// The root package offers the shortest path for callers:
//
//	f, err := formflow.Load(ctx, flowio.SourceFromFile("onboarding.yaml"))
//	results := formflow.Compile(f)
//
// Finer grained control lives in pkg/orchestrator, pkg/compiler,
// pkg/navigation and pkg/runtime.
package formflow

import (
	"context"
	"errors"

	"github.com/goliatone/go-formflow/pkg/compiler"
	"github.com/goliatone/go-formflow/pkg/export"
	"github.com/goliatone/go-formflow/pkg/flowio"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/orchestrator"
	"github.com/goliatone/go-formflow/pkg/runtime"
)

// Flow aliases model.Flow for callers that only import the root package.
type Flow = model.Flow

// Result aliases compiler.Result.
type Result = compiler.Result

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Load fetches and decodes the flow at src, stamps missing identifiers and
// applies decorators in order.
func Load(ctx context.Context, src flowio.Source, decorators ...model.Decorator) (Flow, error) {
	if src == nil {
		return Flow{}, errors.New("formflow: source is required")
	}
	orch := orchestrator.New(orchestrator.WithDecorators(decorators...))
	return orch.Flow(ctx, orchestrator.Request{Source: src})
}

// Compile compiles every step of f with the given options.
func Compile(f Flow, options ...compiler.Option) []Result {
	return compiler.CompileFlow(f, options...)
}

// Export builds the export document for f.
func Export(f Flow, options ...export.Option) export.Document {
	return export.Export(f, options...)
}

// NewSession starts a runtime session over f.
func NewSession(f Flow, options ...runtime.Option) (*runtime.Session, error) {
	return runtime.New(f, options...)
}
