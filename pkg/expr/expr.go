package expr

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// ErrNotBoolean is returned when an expression does not evaluate to a bool.
var ErrNotBoolean = errors.New("expression must return a boolean")

// Protect CEL environment creation and compilation from concurrent access.
var celMutex sync.Mutex

var defaultEnv = sync.OnceValues(func() (*Environment, error) {
	return NewEnvironment()
})

// Environment provides a thread-safe wrapper around a [*cel.Env].
type Environment struct {
	env *cel.Env
}

// NewEnvironment creates a new [Environment].
func NewEnvironment(opts ...cel.EnvOption) (*Environment, error) {
	env, err := createEnvironment(opts...)
	if err != nil {
		return nil, err
	}

	return &Environment{env: env}, nil
}

func createEnvironment(opts ...cel.EnvOption) (*cel.Env, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	opts = append(opts, cel.Lib(&lib{}))

	celEnv, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	return celEnv, nil
}

// Compile compiles a CEL expression and returns a program.
//
//nolint:ireturn // Following CEL's function signature.
func (e *Environment) Compile(expression string) (cel.Program, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile expression: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("%w, got %s", ErrNotBoolean, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}

	return program, nil
}

// Matcher evaluates a compiled boolean expression against a track.
type Matcher struct {
	program    cel.Program
	expression string
}

// NewMatcher compiles expression in the shared [Environment].
func NewMatcher(expression string) (*Matcher, error) {
	env, err := defaultEnv()
	if err != nil {
		return nil, err
	}

	return env.NewMatcher(expression)
}

// NewMatcher compiles expression into a [Matcher].
func (e *Environment) NewMatcher(expression string) (*Matcher, error) {
	program, err := e.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("match %q: %w", expression, err)
	}

	return &Matcher{program: program, expression: expression}, nil
}

// Match reports whether the expression holds for the given track.
func (m *Matcher) Match(name, kind string) (bool, error) {
	result, _, err := m.program.Eval(map[string]any{
		"name": name,
		"kind": kind,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", m.expression, err)
	}

	b, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("evaluate %q: %w", m.expression, ErrNotBoolean)
	}

	return b, nil
}

func (m *Matcher) String() string {
	return m.expression
}
