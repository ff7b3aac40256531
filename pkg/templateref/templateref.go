// Package templateref resolves template references: string values that start
// with the "#" sigil followed by a dotted path into an externally supplied
// context tree (for example "#workOrder.client.name").
//
// Resolution never fails. When the path cannot be walked, or it ends on a
// nil or empty value, the original template string is returned so callers can
// tell an unresolved value apart by checking the sigil.
package templateref

import (
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Sigil prefixes template references.
const Sigil = model.TemplateSigil

// IsTemplate reports whether value is a template reference.
func IsTemplate(value any) bool {
	return model.IsTemplate(value)
}

// Path returns the dotted path segments of a template reference.
func Path(value any) ([]string, bool) {
	str, ok := value.(string)
	if !ok || !strings.HasPrefix(str, Sigil) {
		return nil, false
	}
	rest := strings.TrimPrefix(str, Sigil)
	if rest == "" {
		return nil, false
	}
	return strings.Split(rest, "."), true
}

// Resolve returns the context value the template reference points to. Non
// template values are returned unchanged.
func Resolve(value any, ctx map[string]any) any {
	segments, ok := Path(value)
	if !ok {
		return value
	}

	var current any = ctx
	for _, segment := range segments {
		next, ok := index(current, segment)
		if !ok {
			return value
		}
		current = next
	}

	if isBlank(current) {
		return value
	}
	return current
}

// ResolveAnswers returns a copy of record with every template value resolved
// against ctx.
func ResolveAnswers(record model.Answers, ctx map[string]any) model.Answers {
	if record == nil {
		return nil
	}
	out := record.Clone()
	for key, value := range out {
		if IsTemplate(value) {
			out[key] = Resolve(value, ctx)
		}
	}
	return out
}

func index(current any, key string) (any, bool) {
	switch typed := current.(type) {
	case map[string]any:
		next, ok := typed[key]
		return next, ok
	case model.Answers:
		next, ok := typed[key]
		return next, ok
	case map[string]string:
		next, ok := typed[key]
		return next, ok
	default:
		return nil, false
	}
}

func isBlank(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	default:
		return false
	}
}
