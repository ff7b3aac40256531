package openapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/compiler"
	"github.com/goliatone/go-formflow/pkg/model"
)

// Version is the OpenAPI version emitted by Document.
const Version = "3.0.3"

// Option customises Document.
type Option func(*documentOptions)

type documentOptions struct {
	version  string
	compiler []compiler.Option
}

// WithAPIVersion sets info.version. Defaults to "1.0".
func WithAPIVersion(version string) Option {
	return func(o *documentOptions) {
		if version != "" {
			o.version = version
		}
	}
}

// WithCompilerOptions forwards options to the step compiler.
func WithCompilerOptions(opts ...compiler.Option) Option {
	return func(o *documentOptions) {
		o.compiler = append(o.compiler, opts...)
	}
}

// Document describes flow as an OpenAPI document. Each step becomes a POST
// operation under /steps/{id} whose request body is the step data schema.
// The document is validated before it is returned.
func Document(ctx context.Context, flow model.Flow, opts ...Option) (*openapi3.T, error) {
	cfg := documentOptions{version: "1.0"}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	title := flow.Name
	if title == "" {
		title = "Flow"
	}

	doc := &openapi3.T{
		OpenAPI: Version,
		Info: &openapi3.Info{
			Title:       title,
			Description: flow.Description,
			Version:     cfg.version,
		},
		Paths: openapi3.NewPaths(),
	}

	usedIDs := make(map[string]struct{}, len(flow.Steps))
	for idx, step := range flow.Steps {
		result := compiler.Compile(step, cfg.compiler...)
		schema, err := SchemaFor(result)
		if err != nil {
			return nil, fmt.Errorf("openapi: step %q: %w", step.Name, err)
		}

		segment := step.ID
		if segment == "" {
			segment = strconv.Itoa(idx + 1)
		}

		op := openapi3.NewOperation()
		op.OperationID = operationID(step, idx, usedIDs)
		op.Summary = step.Name
		op.Description = result.DataSchema.Description
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(schema),
		}
		op.Responses = openapi3.NewResponses()
		op.Responses.Set("200", &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Navigation outcome").
				WithJSONSchema(outcomeSchema()),
		})
		op.Extensions = map[string]any{
			"x-summary-check":   result.Action.SummaryCheckExpression,
			"x-next-expression": result.Action.NextFlowDeterminationExpression,
		}

		doc.Paths.Set("/steps/"+url.PathEscape(segment), &openapi3.PathItem{Post: op})
	}

	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate document: %w", err)
	}
	return doc, nil
}

func operationID(step model.Step, idx int, used map[string]struct{}) string {
	id := step.ActionName
	if id == "" {
		id = step.ID
	}
	if id == "" {
		id = "step" + strconv.Itoa(idx+1)
	}
	if _, taken := used[id]; taken {
		id = id + "_" + strconv.Itoa(idx+1)
	}
	used[id] = struct{}{}
	return id
}

func outcomeSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("kind", openapi3.NewStringSchema()).
		WithProperty("target", openapi3.NewStringSchema()).
		WithProperty("index", openapi3.NewIntegerSchema())
}
