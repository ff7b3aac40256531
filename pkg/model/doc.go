// Package model defines the declarative flow model shared by the compiler, the
// navigation engine, and the runtime evaluator. A Flow is an ordered list of
// Steps; each Step holds ordered Fields plus an optional NavigationRule that
// decides which step follows it.
//
// Field attributes are kind-scoped: options only exist on choice kinds
// (select, radio, checkbox) and the file attributes only exist on file fields.
// Use NewField and Field.WithKind to build fields so that the default value
// shape always matches the kind; Field.Normalize applies the same rules to
// fields decoded from JSON or YAML documents.
//
// Answers map field ids to live values. The value shape is determined by the
// field kind: checkbox answers are []string, file answers are *FileDescriptor
// (or []FileDescriptor when Multiple is set), everything else is a string.
package model
