package alerting

import (
	"fmt"
	"time"

	"salesdash/internal/sales"
	"salesdash/pkg/money"
)

type Alert struct {
	ID          string    `json:"id"`
	RuleID      string    `json:"ruleId"`
	SaleID      string    `json:"saleId"`
	Message     string    `json:"message"`
	Severity    Severity  `json:"severity"`
	Timestamp   time.Time `json:"timestamp"`
	IsRead      bool      `json:"isRead"`
	IsDismissed bool      `json:"isDismissed"`
}

// AlertID is the identity of the alert a (sale, rule) pair produces.
func AlertID(saleID, ruleID string) string {
	return saleID + "-" + ruleID
}

type Materializer struct {
	registry *Registry
	severity SeverityChain
	now      func() time.Time
}

type MaterializerOption func(*Materializer)

func WithSeverityChain(chain SeverityChain) MaterializerOption {
	return func(m *Materializer) {
		m.severity = chain
	}
}

func WithClock(now func() time.Time) MaterializerOption {
	return func(m *Materializer) {
		m.now = now
	}
}

func NewMaterializer(registry *Registry, opts ...MaterializerOption) *Materializer {
	m := &Materializer{
		registry: registry,
		severity: DefaultSeverityChain(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Materialize evaluates every active rule against every record and returns the
// triggered alerts whose identity is not dismissed, record-major then rule-major.
// All alerts of one pass share the same timestamp.
func (m *Materializer) Materialize(records []sales.SaleRecord, rules []Rule, dismissed, read IDSet) []Alert {
	now := m.now().UTC()

	active := make([]Rule, 0, len(rules))
	severities := make([]Severity, 0, len(rules))
	for _, r := range rules {
		if !r.Active {
			continue
		}
		active = append(active, r)
		severities = append(severities, m.severity.Classify(r))
	}

	var alerts []Alert
	for _, rec := range records {
		for i, rule := range active {
			id := AlertID(rec.ID, rule.ID)
			if dismissed.Has(id) {
				continue
			}

			value := rec.Get(rule.Field)
			if !Evaluate(value, rule.Operator, rule.Value) {
				continue
			}

			alerts = append(alerts, Alert{
				ID:        id,
				RuleID:    rule.ID,
				SaleID:    rec.ID,
				Message:   m.message(rec, rule, value),
				Severity:  severities[i],
				Timestamp: now,
				IsRead:    read.Has(id),
			})
		}
	}
	return alerts
}

func (m *Materializer) message(rec sales.SaleRecord, rule Rule, value sales.Value) string {
	label := string(rule.Field)
	formatted := value.String()

	if def, ok := m.registry.Get(rule.Field); ok {
		label = def.Label
		if def.Type == FieldTypeCurrency {
			n, _ := value.ToNumber()
			formatted = money.FormatBRL(n)
		}
	}

	return fmt.Sprintf("%s: %s (%s %s) - %s", label, formatted, rule.Operator, rule.Value.String(), rec.CustomerName)
}

func UnreadCount(alerts []Alert) int {
	n := 0
	for _, a := range alerts {
		if !a.IsRead {
			n++
		}
	}
	return n
}

func AlertIDs(alerts []Alert) []string {
	ids := make([]string, len(alerts))
	for i, a := range alerts {
		ids[i] = a.ID
	}
	return ids
}
