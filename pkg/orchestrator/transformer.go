package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/flow"
	"github.com/goliatone/go-formflow/pkg/model"
)

// Transformer mutates a flow before decorators run. Implementations can
// rename fields, retitle steps, or perform arbitrary rewrites.
type Transformer interface {
	Transform(ctx context.Context, f *model.Flow) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, f *model.Flow) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, f *model.Flow) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, f)
}

// PresetTransformer applies declarative overrides loaded from a YAML or JSON
// document. Steps are addressed by name and fields by id:
//
//	name: Onboarding
//	steps:
//	  Profile:
//	    description: Tell us about yourself
//	    fields:
//	      color:
//	        title: Favourite colour
//	        rename: favouriteColor
//	        required: true
type PresetTransformer struct {
	document presetDocument
	editor   *flow.Editor
}

type presetDocument struct {
	Name        string               `yaml:"name"`
	Description string               `yaml:"description"`
	Steps       map[string]stepPatch `yaml:"steps"`
}

type stepPatch struct {
	Name                   string                `yaml:"name"`
	Description            string                `yaml:"description"`
	ActionName             string                `yaml:"actionName"`
	SummaryCheckExpression string                `yaml:"summaryCheckExpression"`
	Fields                 map[string]fieldPatch `yaml:"fields"`
}

type fieldPatch struct {
	Title        string   `yaml:"title"`
	Rename       string   `yaml:"rename"`
	Required     *bool    `yaml:"required"`
	ReadOnly     *bool    `yaml:"readOnly"`
	Options      []string `yaml:"options"`
	DefaultValue any      `yaml:"defaultValue"`
	ShowWhen     *string  `yaml:"showWhen"`
}

// NewPresetTransformer constructs a transformer from raw YAML or JSON bytes.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document, editor: flow.Default}, nil
}

// NewPresetTransformerFromFS loads a preset document from the provided
// filesystem path.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the declarative patches onto the supplied flow. Field
// renames go through flow.Editor so dependsOn references and navigation
// drivers follow the new id.
func (t *PresetTransformer) Transform(ctx context.Context, f *model.Flow) error {
	if f == nil {
		return errors.New("preset transformer: flow is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if t.document.Name != "" {
		f.Name = t.document.Name
	}
	if t.document.Description != "" {
		f.Description = t.document.Description
	}

	names := make([]string, 0, len(t.document.Steps))
	for name := range t.document.Steps {
		names = append(names, name)
	}
	sort.Strings(names)

	ids := make(map[string]string, len(names))
	for _, name := range names {
		idx := f.StepIndex(name)
		if idx < 0 {
			return fmt.Errorf("preset transformer: step %q not found", name)
		}
		ids[name] = f.Steps[idx].ID
	}

	out := *f
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, err := t.applyStep(out, ids[name], t.document.Steps[name])
		if err != nil {
			return fmt.Errorf("preset transformer: step %q: %w", name, err)
		}
		out = next
	}
	*f = out
	return nil
}

func (t *PresetTransformer) applyStep(f model.Flow, stepID string, patch stepPatch) (model.Flow, error) {
	fieldIDs := make([]string, 0, len(patch.Fields))
	for id := range patch.Fields {
		fieldIDs = append(fieldIDs, id)
	}
	sort.Strings(fieldIDs)

	var err error
	for _, id := range fieldIDs {
		fp := patch.Fields[id]
		f, err = t.editor.UpdateField(f, stepID, id, func(field *model.Field) {
			applyFieldPatch(field, fp)
		})
		if err != nil {
			return f, err
		}
	}

	return t.editor.UpdateStep(f, stepID, func(step *model.Step) {
		if patch.Name != "" {
			step.Name = patch.Name
		}
		if patch.Description != "" {
			step.Description = patch.Description
		}
		if patch.ActionName != "" {
			step.ActionName = patch.ActionName
		}
		if patch.SummaryCheckExpression != "" {
			step.SummaryCheckExpression = patch.SummaryCheckExpression
		}
	})
}

func applyFieldPatch(field *model.Field, patch fieldPatch) {
	if patch.Title != "" {
		field.Title = patch.Title
	}
	if patch.Rename != "" {
		field.ID = patch.Rename
	}
	if patch.Required != nil {
		field.Required = *patch.Required
	}
	if patch.ReadOnly != nil {
		field.ReadOnly = *patch.ReadOnly
	}
	if len(patch.Options) > 0 {
		field.Options = append([]string(nil), patch.Options...)
	}
	if patch.DefaultValue != nil {
		field.DefaultValue = field.Coerce(patch.DefaultValue)
	}
	if patch.ShowWhen != nil {
		field.ShowWhen = *patch.ShowWhen
	}
}
