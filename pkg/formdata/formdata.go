// Package formdata synthesizes initial answer records and provides the shared
// helpers used to read live answers regardless of whether they were built in
// Go or decoded from JSON.
package formdata

import (
	"fmt"
	"slices"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Synthesize returns the initial answer record for fields. Every non-title
// field yields its explicit default when set, otherwise the kind-appropriate
// empty value. Template defaults are returned untouched; see
// templateref.ResolveAnswers.
func Synthesize(fields []model.Field) model.Answers {
	out := make(model.Answers, len(fields))
	for _, field := range fields {
		if !field.Kind.Answerable() {
			continue
		}
		if field.HasDefault() {
			out[field.ID] = cloneValue(field.DefaultValue)
			continue
		}
		out[field.ID] = field.EmptyValue()
	}
	return out
}

// IsEmpty reports whether an answer counts as missing: nil, an empty string,
// or an empty sequence.
func IsEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	case []string:
		return len(typed) == 0
	case []any:
		return len(typed) == 0
	case []model.FileDescriptor:
		return len(typed) == 0
	case *model.FileDescriptor:
		return typed == nil
	default:
		return false
	}
}

// AsString reads a scalar answer. Non-string scalars are formatted; sequences
// and nil yield ok=false.
func AsString(value any) (string, bool) {
	switch typed := value.(type) {
	case nil:
		return "", false
	case string:
		return typed, true
	case []string, []any, []model.FileDescriptor, map[string]any:
		return "", false
	case fmt.Stringer:
		return typed.String(), true
	case bool, int, int32, int64, float32, float64:
		return fmt.Sprint(typed), true
	default:
		return "", false
	}
}

// AsStrings reads a sequence answer. A []any is accepted when every element is
// a string; anything else yields ok=false.
func AsStrings(value any) ([]string, bool) {
	switch typed := value.(type) {
	case []string:
		return typed, true
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	default:
		return nil, false
	}
}

// Contains reports whether a sequence answer includes want.
func Contains(value any, want string) bool {
	items, ok := Project(value).([]string)
	if !ok {
		return false
	}
	return slices.Contains(items, want)
}

// Project maps an answer onto the plain value navigation rules compare
// against. Scalars become strings and string sequences become []string. File
// descriptors are read by name. A sequence that is not all strings projects to
// an empty []string, and any other value projects to nil.
func Project(value any) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case *model.FileDescriptor:
		if typed == nil {
			return nil
		}
		return typed.Name
	case model.FileDescriptor:
		return typed.Name
	case []model.FileDescriptor:
		names := make([]string, 0, len(typed))
		for _, file := range typed {
			names = append(names, file.Name)
		}
		return names
	case []string, []any:
		items, ok := AsStrings(typed)
		if !ok {
			return []string{}
		}
		return append([]string{}, items...)
	}
	if str, ok := AsString(value); ok {
		return str
	}
	return nil
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case []string:
		return append([]string{}, typed...)
	case []model.FileDescriptor:
		return append([]model.FileDescriptor{}, typed...)
	case *model.FileDescriptor:
		if typed == nil {
			return nil
		}
		clone := *typed
		return &clone
	default:
		return value
	}
}

// Normalize returns a copy of answers with every value belonging to one of
// fields reshaped into its kind's answer shape, e.g. a JSON decoded []any
// becomes []string for checkbox fields and a decoded object becomes a
// *model.FileDescriptor for file fields. Keys without a field are copied
// untouched.
func Normalize(fields []model.Field, answers model.Answers) model.Answers {
	out := make(model.Answers, len(answers))
	for key, value := range answers {
		out[key] = value
	}
	for _, field := range fields {
		value, ok := out[field.ID]
		if !ok || !field.Kind.Answerable() {
			continue
		}
		out[field.ID] = field.Coerce(value)
	}
	return out
}
