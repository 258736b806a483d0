package cel

import (
	"context"
	"fmt"
	"math"

	"github.com/google/cel-go/cel"
)

// Input is the activation a severity predicate sees: the triggering rule's
// field, operator and comparand. Number is NaN when the comparand is not numeric.
type Input struct {
	Field    string
	Operator string
	Value    any
	Number   float64
}

type Evaluator struct {
	env *cel.Env
}

func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("field", cel.StringType),
		cel.Variable("operator", cel.StringType),
		cel.Variable("value", cel.DynType),
		cel.Variable("number", cel.DoubleType),
		cel.Variable("numeric", cel.BoolType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Evaluator{env: env}, nil
}

func (e *Evaluator) ValidateExpression(expression string) error {
	_, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("CEL expression validation failed: %w", issues.Err())
	}
	return nil
}

func (e *Evaluator) ValidatePredicate(expression string) error {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("CEL expression validation failed: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return fmt.Errorf("predicate must return bool, got %v", ast.OutputType())
	}

	return nil
}

// Predicate is a compiled boolean expression, safe for concurrent use.
type Predicate struct {
	expression string
	program    cel.Program
}

func (p *Predicate) Expression() string {
	return p.expression
}

func (e *Evaluator) CompilePredicate(expression string) (*Predicate, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile CEL expression: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("predicate must return bool, got %v", ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return &Predicate{expression: expression, program: program}, nil
}

func (p *Predicate) Eval(ctx context.Context, in Input) (bool, error) {
	value := in.Value
	if value == nil {
		value = ""
	}

	vars := map[string]interface{}{
		"field":    in.Field,
		"operator": in.Operator,
		"value":    value,
		"number":   in.Number,
		"numeric":  !math.IsNaN(in.Number),
	}

	result, _, err := p.program.ContextEval(ctx, vars)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate CEL expression: %w", err)
	}

	boolVal, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return bool, got %T", result.Value())
	}

	return boolVal, nil
}
