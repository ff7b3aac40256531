package interp

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
)

// ExprInterpreter evaluates expressions with expr-lang/expr and caches
// compiled programs by expression text.
type ExprInterpreter struct {
	cache map[string]*vm.Program
	mu    sync.RWMutex
}

// NewExpr creates an expr-lang interpreter.
func NewExpr() *ExprInterpreter {
	return &ExprInterpreter{cache: make(map[string]*vm.Program)}
}

// Name implements Interpreter.
func (e *ExprInterpreter) Name() string { return NameExpr }

// Eval implements Interpreter.
func (e *ExprInterpreter) Eval(expression string, answers model.Answers) (string, error) {
	program, err := e.compile(expression)
	if err != nil {
		return "", err
	}
	out, err := expr.Run(program, activation(answers))
	if err != nil {
		return "", fmt.Errorf("interp: expr eval: %w", err)
	}
	target, ok := out.(string)
	if !ok {
		return "", fmt.Errorf("interp: expr expression returned %T, want string", out)
	}
	return target, nil
}

func (e *ExprInterpreter) compile(expression string) (*vm.Program, error) {
	e.mu.RLock()
	if prog, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return prog, nil
	}
	e.mu.RUnlock()

	env := map[string]any{
		navigation.AnswersVariable: map[string]any{},
	}
	prog, err := expr.Compile(expression,
		expr.Env(env),
		expr.AsKind(reflect.String),
	)
	if err != nil {
		return nil, fmt.Errorf("interp: expr compile: %w", err)
	}

	e.mu.Lock()
	e.cache[expression] = prog
	e.mu.Unlock()
	return prog, nil
}

// CacheSize returns the number of cached programs.
func (e *ExprInterpreter) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}
