package alerting

import (
	"context"
	"fmt"
	"math"

	"salesdash/internal/logger"
	"salesdash/internal/sales"
	"salesdash/pkg/cel"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

func (s Severity) Valid() bool {
	return s == SeveritySuccess || s == SeverityWarning || s == SeverityError
}

// DefaultSeverity applies when no rule in the chain matches.
const DefaultSeverity = SeverityWarning

type SeverityRule struct {
	Name     string
	Severity Severity
	Match    func(Rule) bool
}

// SeverityChain is evaluated in order and the first match wins.
type SeverityChain []SeverityRule

func (c SeverityChain) Classify(r Rule) Severity {
	for _, sr := range c {
		if sr.Match(r) {
			return sr.Severity
		}
	}
	return DefaultSeverity
}

func DefaultSeverityChain() SeverityChain {
	return SeverityChain{
		{
			Name:     "returned_or_canceled",
			Severity: SeverityError,
			Match: func(r Rule) bool {
				if r.Field != sales.FieldShippingStatus {
					return false
				}
				return sales.ShippingStatus(r.Value.String()).IsCritical()
			},
		},
		{
			Name:     "profit_above",
			Severity: SeveritySuccess,
			Match: func(r Rule) bool {
				return r.Field == sales.FieldProfit && r.Operator == OpGreater
			},
		},
		{
			Name:     "loss_below_zero",
			Severity: SeverityError,
			Match: func(r Rule) bool {
				if r.Field != sales.FieldProfit || r.Operator != OpLess {
					return false
				}
				n, ok := r.Value.ToNumber()
				return ok && n < 0
			},
		},
		{
			Name:     "slow_delivery",
			Severity: SeverityWarning,
			Match: func(r Rule) bool {
				return r.Field == sales.FieldDeliveryDays && r.Operator == OpGreater
			},
		},
	}
}

// SeverityExpression is a configured CEL predicate and the severity it assigns.
type SeverityExpression struct {
	Name       string
	Expression string
	Severity   Severity
}

// CompileSeverityChain builds a chain from CEL predicates, keeping their order.
// A predicate that fails at evaluation time is logged and treated as no match.
func CompileSeverityChain(evaluator *cel.Evaluator, exprs []SeverityExpression, log logger.Logger) (SeverityChain, error) {
	if log == nil {
		log = logger.NopLogger()
	}

	chain := make(SeverityChain, 0, len(exprs))
	for i, expr := range exprs {
		if !expr.Severity.Valid() {
			return nil, fmt.Errorf("severity rule %d: invalid severity %q", i, expr.Severity)
		}

		pred, err := evaluator.CompilePredicate(expr.Expression)
		if err != nil {
			return nil, fmt.Errorf("severity rule %d (%s): %w", i, expr.Name, err)
		}

		name := expr.Name
		chain = append(chain, SeverityRule{
			Name:     name,
			Severity: expr.Severity,
			Match: func(r Rule) bool {
				ok, err := pred.Eval(context.Background(), celInput(r))
				if err != nil {
					log.Warnw("Severity predicate failed",
						"rule", name,
						"alert_rule_id", r.ID,
						"error", err,
					)
					return false
				}
				return ok
			},
		})
	}
	return chain, nil
}

func celInput(r Rule) cel.Input {
	in := cel.Input{
		Field:    string(r.Field),
		Operator: string(r.Operator),
		Number:   math.NaN(),
	}

	switch r.Value.Kind() {
	case sales.KindNumber:
		in.Value = r.Value.Float()
	case sales.KindBool:
		in.Value = r.Value.Boolean()
	case sales.KindText:
		in.Value = r.Value.Str()
	}

	if n, ok := r.Value.ToNumber(); ok {
		in.Number = n
	}
	return in
}
