package dashboard

import (
	"context"

	"salesdash/internal/alerting"
	"salesdash/internal/sales"
	"salesdash/internal/summary"
	"salesdash/internal/tableview"
)

type Service interface {
	Fields(ctx context.Context) []FieldInfo

	ListRules(ctx context.Context) []alerting.Rule
	GetRule(ctx context.Context, id string) (alerting.Rule, error)
	CreateRule(ctx context.Context, draft alerting.RuleDraft) (alerting.Rule, error)
	UpdateRule(ctx context.Context, id string, patch alerting.RulePatch) (alerting.Rule, error)
	SetRuleActive(ctx context.Context, id string, active bool) (alerting.Rule, error)
	DeleteRule(ctx context.Context, id string) error
	MoveRule(ctx context.Context, id string, dir alerting.Direction) error

	StartEdit(ctx context.Context, id string) (EditState, error)
	CancelEdit(ctx context.Context)
	EditState(ctx context.Context) EditState
	SaveRule(ctx context.Context, draft alerting.RuleDraft) (alerting.Rule, error)

	Alerts(ctx context.Context) AlertsView
	History(ctx context.Context) []alerting.Alert
	DismissAlert(ctx context.Context, id string) error
	DismissSelected(ctx context.Context) int
	MarkAllRead(ctx context.Context) int
	ToggleAlertSelection(ctx context.Context, id string) []string
	ToggleGroupSelection(ctx context.Context, ruleID string) []string

	Table(ctx context.Context) TableView
	UpdateView(ctx context.Context, req ViewRequest) TableView
	ToggleSort(ctx context.Context, key sales.FieldKey) (TableView, error)
	MoveColumn(ctx context.Context, from, to int) ([]tableview.Column, error)

	GetRecord(ctx context.Context, id string) (sales.SaleRecord, error)
	UpdateNote(ctx context.Context, id, note string) (sales.SaleRecord, error)
	ToggleHidden(ctx context.Context, id string) (sales.SaleRecord, error)
	ToggleHighlight(ctx context.Context, id string) (sales.SaleRecord, error)
	ToggleMark(ctx context.Context, id string) (sales.SaleRecord, error)

	ToggleRowSelection(ctx context.Context, id string) []string
	SelectAllRows(ctx context.Context, ids []string) []string
	HideSelected(ctx context.Context) int
	MarkSelected(ctx context.Context) int

	Overview(ctx context.Context) Overview
	Summary(ctx context.Context) summary.Result
	Reload(ctx context.Context) (ReloadResponse, error)
}

// AlertNotifier receives every materialization pass and every rule mutation.
type AlertNotifier interface {
	NotifyAlerts(ctx context.Context, alerts []alerting.Alert, rules []alerting.Rule) int
	RuleChanged(ctx context.Context, action string, rule alerting.Rule) error
}

type Summarizer interface {
	Summary(ctx context.Context, records []sales.SaleRecord) summary.Result
}
