// Package expression provides sandboxed expression evaluation for condition
// and data-transform nodes. Expressions are compiled with expr-lang/expr and
// run against an environment exposing only the execution payload under the
// "data" key; there is no access to the host process.
package expression

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Evaluator compiles and caches payload expressions.
type Evaluator struct {
	cache map[string]*vm.Program
	mu    sync.RWMutex
}

// NewEvaluator creates an Evaluator with an initialized program cache.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		cache: make(map[string]*vm.Program),
	}
}

// Eval runs the expression against the payload and returns its result.
func (e *Evaluator) Eval(expression string, payload map[string]any) (any, error) {
	program, err := e.compile(expression)
	if err != nil {
		return nil, fmt.Errorf("failed to compile expression %q: %w", expression, err)
	}

	result, err := expr.Run(program, map[string]any{"data": payload})
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate expression %q: %w", expression, err)
	}

	return result, nil
}

// Bool runs the expression and coerces the result to a boolean. Booleans are
// returned as-is; numbers are truthy when non-zero; nil is false. Any other
// result type is an error.
func (e *Evaluator) Bool(expression string, payload map[string]any) (bool, error) {
	result, err := e.Eval(expression, payload)
	if err != nil {
		return false, err
	}

	switch v := result.(type) {
	case bool:
		return v, nil
	case nil:
		return false, nil
	case int:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("expression %q did not evaluate to a boolean, got %T", expression, result)
	}
}

func (e *Evaluator) compile(expression string) (*vm.Program, error) {
	e.mu.RLock()
	program, ok := e.cache[expression]
	e.mu.RUnlock()

	if ok {
		return program, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if program, ok = e.cache[expression]; ok {
		return program, nil
	}

	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}

	e.cache[expression] = program

	return program, nil
}
