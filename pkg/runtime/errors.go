package runtime

import (
	"errors"
	"strings"

	"github.com/goliatone/go-formflow/pkg/validation"
)

var (
	ErrEmptyFlow      = errors.New("runtime: flow has no steps")
	ErrFinished       = errors.New("runtime: flow already finished")
	ErrNoHistory      = errors.New("runtime: no previous step")
	ErrUnknownField   = errors.New("runtime: unknown field")
	ErrReadOnlyField  = errors.New("runtime: field is read-only")
	ErrTargetNotFound = errors.New("runtime: navigation target not found")
)

// ValidationError reports missing answers that block navigation.
type ValidationError struct {
	Step   string
	Issues []validation.Issue
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return "runtime: step " + e.Step + " is incomplete: " + strings.Join(validation.Messages(e.Issues), "; ")
}
