package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"salesdash/internal/alerting"
	"salesdash/internal/constants"
	"salesdash/internal/logger"
	"salesdash/pkg/models"
	"salesdash/pkg/tracing"
)

// Notifier turns alerts of email-enabled rules and rule mutations into
// broker events. Each alert id is announced at most once per process.
type Notifier struct {
	producer   Producer
	alertTopic string
	ruleTopic  string
	logger     logger.Logger
	newID      func() string
	now        func() time.Time

	mu       sync.Mutex
	notified alerting.IDSet
	pending  alerting.IDSet
}

type NotifierOption func(*Notifier)

func WithEventIDGenerator(fn func() string) NotifierOption {
	return func(n *Notifier) {
		n.newID = fn
	}
}

func WithNotifierClock(now func() time.Time) NotifierOption {
	return func(n *Notifier) {
		n.now = now
	}
}

func NewNotifier(producer Producer, alertTopic, ruleTopic string, log logger.Logger, opts ...NotifierOption) *Notifier {
	if producer == nil {
		producer = NopProducer{}
	}
	if alertTopic == "" {
		alertTopic = constants.DefaultAlertTopic
	}
	if ruleTopic == "" {
		ruleTopic = constants.DefaultRuleChangesTopic
	}
	n := &Notifier{
		producer:   producer,
		alertTopic: alertTopic,
		ruleTopic:  ruleTopic,
		logger:     log,
		newID:      uuid.NewString,
		now:        func() time.Time { return time.Now().UTC() },
		notified:   alerting.NewIDSet(),
		pending:    alerting.NewIDSet(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NotifyAlerts publishes alert_triggered for every alert whose rule has
// email notification on and which was not announced before. It returns the
// number of events published. Failed alerts stay eligible for the next call.
func (n *Notifier) NotifyAlerts(ctx context.Context, alerts []alerting.Alert, rules []alerting.Rule) int {
	byID := make(map[string]alerting.Rule, len(rules))
	for _, r := range rules {
		byID[r.ID] = r
	}

	claimed := n.claim(alerts, byID)
	published := 0
	for _, a := range claimed {
		rule := byID[a.RuleID]
		err := n.publish(ctx, n.alertTopic, models.EventTypeAlertTriggered, a.RuleID, models.AlertTriggeredEvent{
			AlertID:     a.ID,
			RuleID:      a.RuleID,
			RuleName:    rule.Name,
			SaleID:      a.SaleID,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TriggeredAt: a.Timestamp,
		})
		n.settle(a.ID, err == nil)
		if err != nil {
			n.logger.WarnwCtx(ctx, "Failed to publish alert notification", "alert_id", a.ID, "error", err)
			continue
		}
		published++
	}
	return published
}

func (n *Notifier) claim(alerts []alerting.Alert, rules map[string]alerting.Rule) []alerting.Alert {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []alerting.Alert
	for _, a := range alerts {
		if !rules[a.RuleID].EmailNotification {
			continue
		}
		if n.notified.Has(a.ID) || n.pending.Has(a.ID) {
			continue
		}
		n.pending.Add(a.ID)
		out = append(out, a)
	}
	return out
}

func (n *Notifier) settle(id string, ok bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending.Remove(id)
	if ok {
		n.notified.Add(id)
	}
}

// wasNotified reports whether an alert_triggered event went out for id.
func (n *Notifier) wasNotified(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.notified.Has(id)
}

// RuleChanged publishes alert_rule_updated. A nil rule body is sent for deletions.
func (n *Notifier) RuleChanged(ctx context.Context, action string, rule alerting.Rule) error {
	event := models.RuleChangeEvent{
		RuleID:    rule.ID,
		Action:    action,
		Timestamp: n.now(),
	}
	if action != models.ActionDelete {
		body, err := models.ToPayload(rule)
		if err != nil {
			return err
		}
		event.Rule = body
	}
	return n.publish(ctx, n.ruleTopic, models.EventTypeAlertRuleUpdated, rule.ID, event)
}

func (n *Notifier) publish(ctx context.Context, topic, eventType, ruleID string, event any) error {
	env, err := models.NewMessageEnvelopeBuilder().
		WithID(n.newID()).
		WithSource(constants.ServiceName).
		WithEventType(eventType).
		WithTimestamp(n.now()).
		WithEvent(event).
		WithTraceID(tracing.TraceID(ctx)).
		WithAttribute("rule_id", ruleID).
		Build()
	if err != nil {
		return err
	}
	return n.producer.Publish(ctx, topic, env)
}

func (n *Notifier) Close() error {
	return n.producer.Close()
}
