// Package interp evaluates navigation expressions produced by
// navigation.BuildExpression with real expression engines. The expression
// syntax is the shared subset of CEL and expr-lang, so either interpreter can
// run it; the result is the selected target name.
package interp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formflow/pkg/formdata"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
)

// Interpreter names.
const (
	NameCEL  = "cel"
	NameExpr = "expr"
)

// ErrUnknownInterpreter is returned by ByName for unsupported names.
var ErrUnknownInterpreter = errors.New("interp: unknown interpreter")

// Interpreter evaluates a navigation expression against an answer record and
// returns the selected target name.
type Interpreter interface {
	Name() string
	Eval(expression string, answers model.Answers) (string, error)
}

// ByName returns the interpreter registered under name.
func ByName(name string) (Interpreter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameCEL, "":
		return NewCEL()
	case NameExpr:
		return NewExpr(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownInterpreter, name)
	}
}

// Names lists the supported interpreter names.
func Names() []string {
	return []string{NameCEL, NameExpr}
}

// activation projects answers onto the plain shapes navigation decisions
// compare, so engines see exactly what the native decision sees.
func activation(answers model.Answers) map[string]any {
	values := make(map[string]any, len(answers))
	for key, value := range answers {
		values[key] = formdata.Project(value)
	}
	return map[string]any{navigation.AnswersVariable: values}
}
