package interp

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
)

// costLimit bounds evaluation of user supplied expressions.
const costLimit = 100000

// CELInterpreter evaluates expressions with google/cel-go and caches compiled
// programs by expression text.
type CELInterpreter struct {
	env      *cel.Env
	programs map[string]cel.Program
	mu       sync.RWMutex
}

// NewCEL creates a CEL interpreter with the answers variable declared as a
// map of dynamic values.
func NewCEL() (*CELInterpreter, error) {
	env, err := cel.NewEnv(
		cel.Variable(navigation.AnswersVariable, cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("interp: create CEL environment: %w", err)
	}
	return &CELInterpreter{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Name implements Interpreter.
func (c *CELInterpreter) Name() string { return NameCEL }

// Eval implements Interpreter.
func (c *CELInterpreter) Eval(expression string, answers model.Answers) (string, error) {
	prog, err := c.compile(expression)
	if err != nil {
		return "", err
	}
	out, _, err := prog.Eval(activation(answers))
	if err != nil {
		return "", fmt.Errorf("interp: cel eval: %w", err)
	}
	target, ok := out.Value().(string)
	if !ok {
		return "", fmt.Errorf("interp: cel expression returned %T, want string", out.Value())
	}
	return target, nil
}

func (c *CELInterpreter) compile(expression string) (cel.Program, error) {
	c.mu.RLock()
	prog, ok := c.programs[expression]
	c.mu.RUnlock()
	if ok {
		return prog, nil
	}

	ast, issues := c.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("interp: cel compile: %w", issues.Err())
	}
	prog, err := c.env.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, fmt.Errorf("interp: cel program: %w", err)
	}

	c.mu.Lock()
	c.programs[expression] = prog
	c.mu.Unlock()
	return prog, nil
}

// CacheSize returns the number of cached programs.
func (c *CELInterpreter) CacheSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}
