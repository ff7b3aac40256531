package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/compiler"
	"github.com/goliatone/go-formflow/pkg/formdata"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// SchemaFor converts the data schema of a compiled step into an
// openapi3.Schema.
func SchemaFor(result compiler.Result) (*openapi3.Schema, error) {
	payload, err := json.Marshal(result.DataSchema)
	if err != nil {
		return nil, fmt.Errorf("openapi: encode data schema: %w", err)
	}
	schema := openapi3.NewSchema()
	if err := json.Unmarshal(payload, schema); err != nil {
		return nil, fmt.Errorf("openapi: decode data schema: %w", err)
	}
	return schema, nil
}

// CheckAnswers validates answers against the data schema of result. Empty
// answers are left out so the schema's required list reports them; callers
// should pass visible answers only. A nil slice means the record conforms.
func CheckAnswers(ctx context.Context, result compiler.Result, answers model.Answers) ([]validation.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	schema, err := SchemaFor(result)
	if err != nil {
		return nil, err
	}
	value, err := projectAnswers(answers)
	if err != nil {
		return nil, err
	}

	verr := schema.VisitJSON(value, openapi3.MultiErrors())
	if verr == nil {
		return nil, nil
	}
	return issuesFrom(result.DataSchema.Title, verr), nil
}

// projectAnswers turns a live answer record into plain JSON values. File
// descriptors are represented by their data URL.
func projectAnswers(answers model.Answers) (map[string]any, error) {
	projected := make(map[string]any, len(answers))
	for key, value := range answers {
		if formdata.IsEmpty(value) {
			continue
		}
		switch typed := value.(type) {
		case *model.FileDescriptor:
			projected[key] = typed.DataURL
		case model.FileDescriptor:
			projected[key] = typed.DataURL
		case []model.FileDescriptor:
			urls := make([]string, 0, len(typed))
			for _, desc := range typed {
				urls = append(urls, desc.DataURL)
			}
			projected[key] = urls
		default:
			projected[key] = value
		}
	}

	payload, err := json.Marshal(projected)
	if err != nil {
		return nil, fmt.Errorf("openapi: encode answers: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("openapi: decode answers: %w", err)
	}
	return out, nil
}

func issuesFrom(step string, err error) []validation.Issue {
	errs := flatten(err)
	issues := make([]validation.Issue, 0, len(errs))
	for _, item := range errs {
		issue := validation.Issue{Code: validation.CodeSchemaMismatch, Step: step, Message: item.Error()}
		var schemaErr *openapi3.SchemaError
		if errors.As(item, &schemaErr) {
			if pointer := schemaErr.JSONPointer(); len(pointer) > 0 {
				issue.Field = pointer[0]
			}
			issue.Message = strings.TrimSpace(schemaErr.Reason)
			if issue.Field != "" {
				issue.Message = issue.Field + ": " + issue.Message
			}
		}
		issues = append(issues, issue)
	}
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Field < issues[j].Field })
	return issues
}

func flatten(err error) []error {
	multi, ok := err.(openapi3.MultiError)
	if !ok {
		return []error{err}
	}
	var out []error
	for _, item := range multi {
		out = append(out, flatten(item)...)
	}
	return out
}
