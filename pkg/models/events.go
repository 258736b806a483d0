package models

import "time"

const (
	EventTypeAlertTriggered   = "alert_triggered"
	EventTypeAlertRuleUpdated = "alert_rule_updated"
)

const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionToggle  = "toggle"
	ActionReorder = "reorder"
)

// AlertTriggeredEvent asks the mail sender to notify about one alert.
type AlertTriggeredEvent struct {
	AlertID     string    `json:"alert_id"`
	RuleID      string    `json:"rule_id"`
	RuleName    string    `json:"rule_name"`
	SaleID      string    `json:"sale_id"`
	Severity    string    `json:"severity"`
	Message     string    `json:"message"`
	TriggeredAt time.Time `json:"triggered_at"`
}

type RuleChangeEvent struct {
	RuleID    string         `json:"rule_id"`
	Action    string         `json:"action"`
	Timestamp time.Time      `json:"timestamp"`
	Rule      map[string]any `json:"rule,omitempty"`
}
