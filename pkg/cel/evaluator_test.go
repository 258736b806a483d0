package cel

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvaluator(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)
	assert.NotNil(t, eval)
}

func TestValidateExpression(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name      string
		expr      string
		wantError bool
	}{
		{
			name:      "valid comparison",
			expr:      `field == "lucro"`,
			wantError: false,
		},
		{
			name:      "valid numeric comparison",
			expr:      `number > 100.0`,
			wantError: false,
		},
		{
			name:      "invalid expression",
			expr:      `invalid syntax here!!!`,
			wantError: true,
		},
		{
			name:      "undefined variable",
			expr:      `payload.status == "test"`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eval.ValidateExpression(tt.expr)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePredicate(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	assert.NoError(t, eval.ValidatePredicate(`operator == "maior que"`))
	assert.Error(t, eval.ValidatePredicate(`number`))
	assert.Error(t, eval.ValidatePredicate(`field +`))
}

func TestPredicateEval(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		example string
		in      Input
		want    bool
	}{
		{
			name:    "returned status",
			example: "returned_or_canceled",
			in:      Input{Field: "envioStatus", Operator: "igual a", Value: "Devolvido", Number: math.NaN()},
			want:    true,
		},
		{
			name:    "delivered status",
			example: "returned_or_canceled",
			in:      Input{Field: "envioStatus", Operator: "igual a", Value: "Entregue", Number: math.NaN()},
			want:    false,
		},
		{
			name:    "profit above",
			example: "profit_above",
			in:      Input{Field: "lucro", Operator: "maior que", Value: 100.0, Number: 100},
			want:    true,
		},
		{
			name:    "loss below zero",
			example: "loss_below_zero",
			in:      Input{Field: "lucro", Operator: "menor que", Value: -5.0, Number: -5},
			want:    true,
		},
		{
			name:    "loss with text comparand",
			example: "loss_below_zero",
			in:      Input{Field: "lucro", Operator: "menor que", Value: "abc", Number: math.NaN()},
			want:    false,
		},
		{
			name:    "big ticket",
			example: "big_ticket",
			in:      Input{Field: "valorVenda", Operator: "maior que", Value: 2500.0, Number: 2500},
			want:    true,
		},
		{
			name:    "nil value",
			example: "city_watch",
			in:      Input{Field: "cidade", Operator: "contém", Number: math.NaN()},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := eval.CompilePredicate(SeverityExpressionExamples[tt.example])
			require.NoError(t, err)

			got, err := pred.Eval(context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompilePredicate_RejectsNonBool(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	_, err = eval.CompilePredicate(`field`)
	assert.Error(t, err)
}

func TestExamplesCompile(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	for name, expr := range SeverityExpressionExamples {
		t.Run(name, func(t *testing.T) {
			pred, err := eval.CompilePredicate(expr)
			require.NoError(t, err)
			assert.Equal(t, expr, pred.Expression())
		})
	}
}
