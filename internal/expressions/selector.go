// Package expressions evaluates user-supplied filter expressions against
// extracted actionables.
package expressions

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rendis/wfgraph/pkg/schema"
)

// Env is the environment a selector expression sees for one actionable.
type Env struct {
	Client         string   `expr:"client"`
	ActionableType string   `expr:"actionableType"`
	Statuses       []string `expr:"statuses"`
	Transitions    int      `expr:"transitions"`
}

// EnvFor builds the expression environment of a.
func EnvFor(a *schema.Actionable) Env {
	env := Env{Client: a.Client, ActionableType: a.Type}
	for _, s := range a.Statuses {
		env.Statuses = append(env.Statuses, s.Name)
		env.Transitions += len(s.Transitions())
	}
	return env
}

// Selector decides which actionables are rendered. The compiled program is
// immutable, so a Selector is safe for concurrent use.
type Selector struct {
	expression string
	program    *vm.Program
}

// NewSelector compiles expression, which must evaluate to a bool. An empty
// expression selects everything.
func NewSelector(expression string) (*Selector, error) {
	s := &Selector{expression: expression}
	if expression == "" {
		return s, nil
	}

	prg, err := expr.Compile(expression, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeFilter,
			"compile filter %q", expression).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}
	s.program = prg
	return s, nil
}

// Expression returns the source the selector was compiled from.
func (s *Selector) Expression() string {
	return s.expression
}

// Match reports whether a passes the filter.
func (s *Selector) Match(a *schema.Actionable) (bool, error) {
	if s.program == nil {
		return true, nil
	}

	out, err := expr.Run(s.program, EnvFor(a))
	if err != nil {
		return false, schema.NewErrorf(schema.ErrCodeFilter,
			"evaluate filter %q", s.expression).
			WithCause(err).
			WithActionable(a.Type)
	}
	ok, _ := out.(bool)
	return ok, nil
}
