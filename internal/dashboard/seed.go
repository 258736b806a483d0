package dashboard

import (
	"fmt"

	"salesdash/internal/alerting"
	"salesdash/internal/config"
	"salesdash/internal/sales"
)

// SeedDrafts turns configured rules into drafts. An empty list yields the
// built-in default rules.
func SeedDrafts(seeds []config.SeedRule) ([]alerting.RuleDraft, error) {
	if len(seeds) == 0 {
		return alerting.DefaultRules(), nil
	}

	drafts := make([]alerting.RuleDraft, 0, len(seeds))
	for i, s := range seeds {
		value, ok := sales.FromAny(s.Value)
		if !ok {
			return nil, fmt.Errorf("alerts.rules[%d]: unsupported value %v", i, s.Value)
		}
		drafts = append(drafts, alerting.RuleDraft{
			Name:              s.Name,
			Active:            s.Active,
			EmailNotification: s.EmailNotification,
			Field:             sales.FieldKey(s.Field),
			Operator:          alerting.Operator(s.Operator),
			Value:             value,
		})
	}
	return drafts, nil
}

func SeverityExpressions(entries []config.SeverityRuleEntry) []alerting.SeverityExpression {
	out := make([]alerting.SeverityExpression, len(entries))
	for i, e := range entries {
		out[i] = alerting.SeverityExpression{
			Name:       e.Name,
			Expression: e.Expression,
			Severity:   alerting.Severity(e.Severity),
		}
	}
	return out
}
