package compiler

import "github.com/goliatone/go-formflow/pkg/model"

// Presentation schema keys.
const (
	KeyWidget        = "ui:widget"
	KeyOptions       = "ui:options"
	KeyOrder         = "ui:order"
	KeyReadonly      = "ui:readonly"
	KeyPlaceholder   = "ui:placeholder"
	KeySubmitButton  = "ui:submitButtonOptions"
	KeySubmitText    = "submitText"
	FormatDataURL    = "data-url"
	DefaultSubmit    = "Continue"
	DefaultTextRows  = 4
	WidgetText       = "text"
	WidgetTextarea   = "textarea"
	WidgetRadio      = "radio"
	WidgetCheckboxes = "checkboxes"
	WidgetSelect     = "select"
	WidgetFile       = "file"
)

// Property is the data schema of a single field.
type Property struct {
	Type        string    `json:"type"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Format      string    `json:"format,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
	Items       *Property `json:"items,omitempty"`
	UniqueItems bool      `json:"uniqueItems,omitempty"`
	ReadOnly    bool      `json:"readOnly,omitempty"`
	Default     any       `json:"default,omitempty"`
}

// Schema is the object data schema of a step.
type Schema struct {
	Type        string              `json:"type"`
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Required    []string            `json:"required"`
	Properties  map[string]Property `json:"properties"`
}

// UISchema is the presentation schema of a step. Field entries are keyed by
// field id; form level directives use the ui: prefix.
type UISchema map[string]any

// Order returns the field order recorded under ui:order.
func (u UISchema) Order() []string {
	switch typed := u[KeyOrder].(type) {
	case []string:
		return append([]string(nil), typed...)
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// ActionDescriptor labels the submit action of a step and carries the
// portable navigation expression.
type ActionDescriptor struct {
	ActionName                      string `json:"actionName"`
	SummaryCheckExpression          string `json:"summaryCheckExpression"`
	NextFlowDeterminationExpression string `json:"nextFlowDeterminationExpression"`
}

// Result is the compiled form of a step.
type Result struct {
	DataSchema         Schema           `json:"dataSchema"`
	PresentationSchema UISchema         `json:"presentationSchema"`
	FormData           model.Answers    `json:"formData"`
	Action             ActionDescriptor `json:"actionDescriptor"`
}
