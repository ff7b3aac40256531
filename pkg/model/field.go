package model

import "strings"

// TemplateSigil marks a default value as a reference into external context.
const TemplateSigil = "#"

// Field is one answerable (or decorative) unit on a step.
type Field struct {
	ID                string   `json:"id" yaml:"id"`
	Kind              Kind     `json:"type" yaml:"type"`
	Title             string   `json:"title" yaml:"title"`
	Required          bool     `json:"required,omitempty" yaml:"required,omitempty"`
	ReadOnly          bool     `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	Options           []string `json:"options,omitempty" yaml:"options,omitempty"`
	DefaultValue      any      `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	DependsOn         string   `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
	ShowWhen          string   `json:"showWhen,omitempty" yaml:"showWhen,omitempty"`
	AcceptedFileTypes []string `json:"acceptedFileTypes,omitempty" yaml:"acceptedFileTypes,omitempty"`
	MaxFileSize       float64  `json:"maxFileSize,omitempty" yaml:"maxFileSize,omitempty"`
	Multiple          bool     `json:"multiple,omitempty" yaml:"multiple,omitempty"`
}

// FieldOption configures a field during construction.
type FieldOption func(*Field)

// Required marks the field as required.
func Required() FieldOption {
	return func(f *Field) {
		f.Required = true
	}
}

// ReadOnly marks the field as read-only.
func ReadOnly() FieldOption {
	return func(f *Field) {
		f.ReadOnly = true
	}
}

// WithOptions sets the option list for choice kinds.
func WithOptions(options ...string) FieldOption {
	return func(f *Field) {
		f.Options = append([]string(nil), options...)
	}
}

// WithDefault sets the default value. Values that do not fit the field kind
// are dropped when the field is normalised.
func WithDefault(value any) FieldOption {
	return func(f *Field) {
		f.DefaultValue = value
	}
}

// ShownWhen makes the field visible only when driver's answer matches value.
func ShownWhen(driver, value string) FieldOption {
	return func(f *Field) {
		f.DependsOn = driver
		f.ShowWhen = value
	}
}

// WithFileConstraints configures the file attributes.
func WithFileConstraints(maxSizeMB float64, multiple bool, accepted ...string) FieldOption {
	return func(f *Field) {
		f.MaxFileSize = maxSizeMB
		f.Multiple = multiple
		f.AcceptedFileTypes = append([]string(nil), accepted...)
	}
}

// NewField builds a field of the given kind and normalises it so that only the
// attributes legal for that kind survive.
func NewField(kind Kind, id, title string, options ...FieldOption) Field {
	field := Field{ID: id, Kind: kind, Title: title}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&field)
	}
	field.Normalize()
	return field
}

// WithKind returns a copy of the field switched to kind. Attributes that the
// new kind does not use are cleared and a default value of the wrong shape is
// dropped.
func (f Field) WithKind(kind Kind) Field {
	out := f
	out.Options = append([]string(nil), f.Options...)
	out.AcceptedFileTypes = append([]string(nil), f.AcceptedFileTypes...)
	out.Kind = kind
	out.Normalize()
	return out
}

// Normalize clears attributes that are illegal for the field kind and coerces
// decoded default values into the kind's shape.
func (f *Field) Normalize() {
	if !f.Kind.HasOptions() {
		f.Options = nil
	}
	if f.Kind != KindFile {
		f.AcceptedFileTypes = nil
		f.MaxFileSize = 0
		f.Multiple = false
	}
	switch f.Kind {
	case KindTitle, KindReadonly:
		f.Required = false
	}
	if f.DependsOn == "" {
		f.ShowWhen = ""
	}
	f.DefaultValue = coerceDefault(f.Kind, f.Multiple, f.DefaultValue)
}

// IsReadOnly reports whether the field renders as read-only.
func (f Field) IsReadOnly() bool {
	return f.ReadOnly || f.Kind == KindReadonly
}

// HasDefault reports whether an explicit default value is set.
func (f Field) HasDefault() bool {
	return f.DefaultValue != nil
}

// EmptyValue returns the kind-appropriate empty answer: an empty sequence for
// checkbox and multi-file fields, nil for single file fields, and an empty
// string otherwise.
func (f Field) EmptyValue() any {
	switch f.Kind {
	case KindCheckbox:
		return []string{}
	case KindFile:
		if f.Multiple {
			return []FileDescriptor{}
		}
		return nil
	default:
		return ""
	}
}

// Coerce reshapes a decoded answer into the kind's answer shape. Values that
// cannot be reshaped yield nil.
func (f Field) Coerce(value any) any {
	return coerceDefault(f.Kind, f.Multiple, value)
}

// IsTemplate reports whether value is a string carrying the template sigil.
func IsTemplate(value any) bool {
	str, ok := value.(string)
	return ok && strings.HasPrefix(str, TemplateSigil)
}

func coerceDefault(kind Kind, multiple bool, value any) any {
	if value == nil || kind == KindTitle {
		return nil
	}
	if IsTemplate(value) {
		return value
	}
	switch kind {
	case KindCheckbox:
		switch typed := value.(type) {
		case []string:
			return append([]string{}, typed...)
		case []any:
			out := make([]string, 0, len(typed))
			for _, item := range typed {
				str, ok := item.(string)
				if !ok {
					return nil
				}
				out = append(out, str)
			}
			return out
		default:
			return nil
		}
	case KindFile:
		switch typed := value.(type) {
		case FileDescriptor:
			if multiple {
				return []FileDescriptor{typed}
			}
			return &typed
		case *FileDescriptor:
			if typed == nil {
				return nil
			}
			if multiple {
				return []FileDescriptor{*typed}
			}
			return typed
		case []FileDescriptor:
			if !multiple {
				return nil
			}
			return append([]FileDescriptor{}, typed...)
		case map[string]any:
			desc, ok := descriptorFromMap(typed)
			if !ok {
				return nil
			}
			return coerceDefault(kind, multiple, desc)
		case []any:
			if !multiple {
				return nil
			}
			out := make([]FileDescriptor, 0, len(typed))
			for _, item := range typed {
				raw, ok := item.(map[string]any)
				if !ok {
					return nil
				}
				desc, ok := descriptorFromMap(raw)
				if !ok {
					return nil
				}
				out = append(out, desc)
			}
			return out
		default:
			return nil
		}
	default:
		str, ok := value.(string)
		if !ok {
			return nil
		}
		return str
	}
}

// descriptorFromMap reads a file descriptor decoded as a generic map.
func descriptorFromMap(raw map[string]any) (FileDescriptor, bool) {
	name, ok := raw["name"].(string)
	if !ok || name == "" {
		return FileDescriptor{}, false
	}
	desc := FileDescriptor{Name: name}
	desc.Type, _ = raw["type"].(string)
	desc.DataURL, _ = raw["dataUrl"].(string)
	switch size := raw["size"].(type) {
	case float64:
		desc.Size = int64(size)
	case int:
		desc.Size = int64(size)
	case int64:
		desc.Size = size
	}
	return desc, true
}
