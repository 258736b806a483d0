package dashboard

import (
	"salesdash/internal/alerting"
	"salesdash/internal/analytics"
	"salesdash/internal/sales"
	"salesdash/internal/tableview"
)

type FieldInfo struct {
	alerting.FieldDefinition
	Operators []alerting.Operator `json:"operators"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

type MoveRuleRequest struct {
	Direction alerting.Direction `json:"direction" binding:"required"`
}

type EditState struct {
	EditingRuleID string         `json:"editingRuleId,omitempty"`
	Rule          *alerting.Rule `json:"rule,omitempty"`
}

// AlertsView is one recomputation of the alert panel.
type AlertsView struct {
	Alerts      []alerting.Alert      `json:"alerts"`
	Groups      []alerting.AlertGroup `json:"groups"`
	UnreadCount int                   `json:"unreadCount"`
	Selected    []string              `json:"selected"`
}

type DismissResponse struct {
	Dismissed int `json:"dismissed"`
}

type SelectionResponse struct {
	Selected []string `json:"selected"`
}

type IDsRequest struct {
	IDs []string `json:"ids"`
}

type CountResponse struct {
	Count int `json:"count"`
}

type ViewRequest struct {
	Filters *tableview.Filters `json:"filters,omitempty"`
	Search  *string            `json:"search,omitempty"`
}

type SortRequest struct {
	Key sales.FieldKey `json:"key" binding:"required"`
}

type MoveColumnRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// TableView is the sales table as the client renders it.
type TableView struct {
	Columns  []tableview.Column  `json:"columns"`
	Rows     []sales.SaleRecord  `json:"rows"`
	Total    int                 `json:"total"`
	Filters  tableview.Filters   `json:"filters"`
	Search   string              `json:"search"`
	Sort     tableview.SortState `json:"sort"`
	Selected []string            `json:"selected"`
}

type NoteRequest struct {
	Notes string `json:"notes"`
}

type Overview struct {
	KPI    analytics.KPI    `json:"kpi"`
	Charts analytics.Charts `json:"charts"`
}

type ReloadResponse struct {
	Source  string `json:"source"`
	Records int    `json:"records"`
}
