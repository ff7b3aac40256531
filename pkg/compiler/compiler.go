// Package compiler converts a step's field definitions into the artifacts
// consumed by form runtimes: a JSON-schema style data schema, a presentation
// schema with widget directives and field order, an initial answer record,
// and an action descriptor carrying the navigation expression.
//
// Compilation is pure. Title fields are decorative and do not appear in any
// output; a step with no fields compiles to empty schemas.
package compiler

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formflow/pkg/formdata"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/sanitize"
)

// Option customises compilation.
type Option func(*config)

type config struct {
	textareaRows int
	submitText   string
	describe     func(string) string
}

// WithTextareaRows overrides the row count of textarea widgets.
func WithTextareaRows(rows int) Option {
	return func(cfg *config) {
		if rows > 0 {
			cfg.textareaRows = rows
		}
	}
}

// WithSubmitText overrides the submit button label.
func WithSubmitText(text string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			cfg.submitText = trimmed
		}
	}
}

// WithDescriptionSanitizer replaces the sanitizer applied to step
// descriptions. Pass nil to embed descriptions verbatim.
func WithDescriptionSanitizer(fn func(string) string) Option {
	return func(cfg *config) {
		cfg.describe = fn
	}
}

func newConfig(options []Option) config {
	cfg := config{
		textareaRows: DefaultTextRows,
		submitText:   DefaultSubmit,
		describe:     sanitize.Description,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Compile converts step into its data schema, presentation schema, initial
// answer record and action descriptor.
func Compile(step model.Step, options ...Option) Result {
	cfg := newConfig(options)

	description := step.Description
	if cfg.describe != nil {
		description = cfg.describe(description)
	}

	data := Schema{
		Type:        "object",
		Title:       step.Name,
		Description: description,
		Required:    []string{},
		Properties:  make(map[string]Property, len(step.Fields)),
	}
	ui := UISchema{}
	order := make([]string, 0, len(step.Fields))

	for _, field := range step.Fields {
		if !field.Kind.Answerable() {
			continue
		}
		data.Properties[field.ID] = property(field)
		if field.Required {
			data.Required = append(data.Required, field.ID)
		}
		ui[field.ID] = widget(field, cfg)
		order = append(order, field.ID)
	}

	ui[KeyOrder] = order
	ui[KeySubmitButton] = map[string]any{KeySubmitText: cfg.submitText}

	return Result{
		DataSchema:         data,
		PresentationSchema: ui,
		FormData:           formdata.Synthesize(step.Fields),
		Action: ActionDescriptor{
			ActionName:                      step.ActionName,
			SummaryCheckExpression:          step.SummaryCheck(),
			NextFlowDeterminationExpression: navigation.BuildExpression(step.NavigationRule, step.Fields),
		},
	}
}

// CompileFlow compiles every step of flow in order.
func CompileFlow(flow model.Flow, options ...Option) []Result {
	out := make([]Result, 0, len(flow.Steps))
	for _, step := range flow.Steps {
		out = append(out, Compile(step, options...))
	}
	return out
}

func property(field model.Field) Property {
	prop := Property{
		Type:     "string",
		Title:    field.Title,
		ReadOnly: field.IsReadOnly(),
	}

	switch field.Kind {
	case model.KindCheckbox:
		prop.Type = "array"
		prop.Items = &Property{Type: "string", Enum: copyOptions(field.Options)}
		prop.UniqueItems = true
	case model.KindRadio, model.KindSelect:
		prop.Enum = copyOptions(field.Options)
	case model.KindFile:
		prop.Format = FormatDataURL
		prop.Description = sizeLimit(field.MaxFileSize)
		if field.Multiple {
			prop = Property{
				Type:        "array",
				Title:       prop.Title,
				Description: prop.Description,
				ReadOnly:    prop.ReadOnly,
				Items:       &Property{Type: "string", Format: FormatDataURL},
			}
		}
	}

	if def, ok := literalDefault(field); ok {
		prop.Default = def
	}
	return prop
}

func widget(field model.Field, cfg config) map[string]any {
	entry := map[string]any{}
	switch field.Kind {
	case model.KindRadio:
		entry[KeyWidget] = WidgetRadio
	case model.KindCheckbox:
		entry[KeyWidget] = WidgetCheckboxes
	case model.KindSelect:
		entry[KeyWidget] = WidgetSelect
		entry[KeyPlaceholder] = ""
	case model.KindTextarea:
		entry[KeyWidget] = WidgetTextarea
		entry[KeyOptions] = map[string]any{"rows": cfg.textareaRows}
	case model.KindFile:
		entry[KeyWidget] = WidgetFile
		entry[KeyOptions] = map[string]any{
			"accept":   strings.Join(field.AcceptedFileTypes, ","),
			"multiple": field.Multiple,
		}
	default:
		entry[KeyWidget] = WidgetText
	}
	if field.IsReadOnly() {
		entry[KeyReadonly] = true
	}
	return entry
}

func sizeLimit(mb float64) string {
	if mb <= 0 {
		return ""
	}
	return fmt.Sprintf("Maximum file size: %g MB", mb)
}

func literalDefault(field model.Field) (any, bool) {
	if !field.HasDefault() || model.IsTemplate(field.DefaultValue) {
		return nil, false
	}
	switch field.Kind {
	case model.KindFile:
		return nil, false
	case model.KindCheckbox:
		values, ok := formdata.AsStrings(field.DefaultValue)
		if !ok {
			return nil, false
		}
		return append([]string{}, values...), true
	default:
		value, ok := formdata.AsString(field.DefaultValue)
		if !ok || value == "" {
			return nil, false
		}
		return value, true
	}
}

func copyOptions(options []string) []string {
	if len(options) == 0 {
		return nil
	}
	return append([]string(nil), options...)
}
