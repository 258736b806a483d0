package dashboard

import (
	"context"
	"sync"
	"time"

	"salesdash/internal/alerting"
	"salesdash/internal/analytics"
	"salesdash/internal/logger"
	"salesdash/internal/sales"
	"salesdash/internal/summary"
	"salesdash/internal/tableview"
	pkgerrors "salesdash/pkg/errors"
	"salesdash/pkg/metrics"
	"salesdash/pkg/models"
)

// service is one dashboard session. Every user action runs under mu so the
// next recomputation always sees it in full. Broker publishes and the
// summary call happen after the lock is released.
type service struct {
	mu           sync.Mutex
	store        *sales.Store
	rules        *alerting.RuleStore
	tracker      *alerting.Tracker
	materializer *alerting.Materializer
	alertSel     *alerting.Selection
	rowSel       alerting.IDSet
	view         tableview.View
	editing      string

	repo       sales.Repository
	summarizer Summarizer
	notifier   AlertNotifier
	logger     logger.Logger
	now        func() time.Time
}

type ServiceOption func(*service)

// WithRepository enables Reload against repo.
func WithRepository(repo sales.Repository) ServiceOption {
	return func(s *service) {
		s.repo = repo
	}
}

func WithSummarizer(summarizer Summarizer) ServiceOption {
	return func(s *service) {
		s.summarizer = summarizer
	}
}

func WithNotifier(notifier AlertNotifier) ServiceOption {
	return func(s *service) {
		s.notifier = notifier
	}
}

func WithMaterializer(m *alerting.Materializer) ServiceOption {
	return func(s *service) {
		s.materializer = m
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		s.now = now
	}
}

func NewService(records []sales.SaleRecord, rules *alerting.RuleStore, log logger.Logger, opts ...ServiceOption) Service {
	s := &service{
		store:    sales.NewStore(records),
		rules:    rules,
		tracker:  alerting.NewTracker(),
		alertSel: alerting.NewSelection(),
		rowSel:   alerting.NewIDSet(),
		view:     tableview.NewView(),
		logger:   log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.materializer == nil {
		s.materializer = alerting.NewMaterializer(rules.Registry(), alerting.WithClock(s.now))
	}

	metrics.SetActiveRules(rules.ActiveCount())
	return s
}

// SeedRules adds drafts to store in order. The first invalid draft aborts seeding.
func SeedRules(store *alerting.RuleStore, drafts []alerting.RuleDraft) error {
	for _, d := range drafts {
		if _, err := store.Create(d); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Fields(ctx context.Context) []FieldInfo {
	defs := s.rules.Registry().List()
	out := make([]FieldInfo, len(defs))
	for i, d := range defs {
		out[i] = FieldInfo{FieldDefinition: d, Operators: alerting.OperatorsFor(d.Type)}
	}
	return out
}

func (s *service) ListRules(ctx context.Context) []alerting.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules.List()
}

func (s *service) GetRule(ctx context.Context, id string) (alerting.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules.Get(id)
}

func (s *service) CreateRule(ctx context.Context, draft alerting.RuleDraft) (alerting.Rule, error) {
	s.mu.Lock()
	rule, err := s.rules.Create(draft)
	s.mu.Unlock()
	return s.afterMutation(ctx, models.ActionCreate, rule, err)
}

func (s *service) UpdateRule(ctx context.Context, id string, patch alerting.RulePatch) (alerting.Rule, error) {
	s.mu.Lock()
	rule, err := s.rules.Update(id, patch)
	s.mu.Unlock()
	return s.afterMutation(ctx, models.ActionUpdate, rule, err)
}

func (s *service) SetRuleActive(ctx context.Context, id string, active bool) (alerting.Rule, error) {
	s.mu.Lock()
	rule, err := s.rules.SetActive(id, active)
	s.mu.Unlock()
	return s.afterMutation(ctx, models.ActionToggle, rule, err)
}

// DeleteRule removes the rule and leaves edit mode if it was the rule under edit.
func (s *service) DeleteRule(ctx context.Context, id string) error {
	s.mu.Lock()
	err := s.rules.Remove(id)
	if err == nil && s.editing == id {
		s.editing = ""
	}
	s.mu.Unlock()
	_, err = s.afterMutation(ctx, models.ActionDelete, alerting.Rule{ID: id}, err)
	return err
}

func (s *service) MoveRule(ctx context.Context, id string, dir alerting.Direction) error {
	s.mu.Lock()
	err := s.rules.Reorder(id, dir)
	var rule alerting.Rule
	if err == nil {
		rule, err = s.rules.Get(id)
	}
	s.mu.Unlock()
	_, err = s.afterMutation(ctx, models.ActionReorder, rule, err)
	return err
}

func (s *service) afterMutation(ctx context.Context, action string, rule alerting.Rule, err error) (alerting.Rule, error) {
	if err != nil {
		metrics.IncRuleMutation(action, "error")
		return alerting.Rule{}, err
	}
	metrics.IncRuleMutation(action, "success")
	metrics.SetActiveRules(s.activeRules())
	s.logger.InfowCtx(ctx, "Alert rule changed", "action", action, "rule_id", rule.ID)

	if s.notifier != nil {
		if err := s.notifier.RuleChanged(ctx, action, rule); err != nil {
			s.logger.WarnwCtx(ctx, "Failed to publish rule change", "action", action, "rule_id", rule.ID, "error", err)
		}
	}
	return rule, nil
}

func (s *service) activeRules() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules.ActiveCount()
}

// StartEdit puts the session in edit mode for rule id.
func (s *service) StartEdit(ctx context.Context, id string) (EditState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rule, err := s.rules.Get(id)
	if err != nil {
		return EditState{}, err
	}
	s.editing = id
	return EditState{EditingRuleID: id, Rule: &rule}, nil
}

func (s *service) CancelEdit(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = ""
}

func (s *service) EditState(ctx context.Context) EditState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == "" {
		return EditState{}
	}
	rule, err := s.rules.Get(s.editing)
	if err != nil {
		return EditState{}
	}
	return EditState{EditingRuleID: s.editing, Rule: &rule}
}

// SaveRule updates the rule under edit, or creates a new one when not
// editing. Edit mode ends only when the save succeeds.
func (s *service) SaveRule(ctx context.Context, draft alerting.RuleDraft) (alerting.Rule, error) {
	s.mu.Lock()
	editing := s.editing
	var (
		rule   alerting.Rule
		err    error
		action string
	)
	if editing != "" {
		action = models.ActionUpdate
		rule, err = s.rules.Update(editing, patchFromDraft(draft))
	} else {
		action = models.ActionCreate
		rule, err = s.rules.Create(draft)
	}
	if err == nil {
		s.editing = ""
	}
	s.mu.Unlock()
	return s.afterMutation(ctx, action, rule, err)
}

func patchFromDraft(d alerting.RuleDraft) alerting.RulePatch {
	name := d.Name
	email := d.EmailNotification
	field := d.Field
	op := d.Operator
	value := d.Value
	return alerting.RulePatch{
		Name:              &name,
		Active:            d.Active,
		EmailNotification: &email,
		Field:             &field,
		Operator:          &op,
		Value:             &value,
	}
}

// currentAlerts materializes over the filtered records. Callers hold mu.
func (s *service) currentAlerts() []alerting.Alert {
	start := time.Now()
	visible := s.view.Visible(s.store.Snapshot())
	alerts := s.materializer.Materialize(visible, s.rules.List(), s.tracker.DismissedIDs(), s.tracker.ReadIDs())
	metrics.ObserveMaterializeDuration(time.Since(start))
	return alerts
}

func (s *service) Alerts(ctx context.Context) AlertsView {
	s.mu.Lock()
	alerts := s.currentAlerts()
	rules := s.rules.List()
	view := AlertsView{
		Alerts:      alerts,
		Groups:      alerting.GroupByRule(alerts, rules),
		UnreadCount: alerting.UnreadCount(alerts),
		Selected:    s.alertSel.IDs(),
	}
	s.mu.Unlock()

	metrics.SetCurrentAlerts(len(alerts), view.UnreadCount)
	for _, a := range alerts {
		metrics.IncAlertMaterialized(string(a.Severity))
	}
	if s.notifier != nil {
		pkgerrors.Guard(func() { s.notifier.NotifyAlerts(ctx, alerts, rules) }, func(err error) {
			s.logger.ErrorwCtx(ctx, "Alert notification panicked", "error", err)
		})
	}
	if view.Alerts == nil {
		view.Alerts = []alerting.Alert{}
	}
	return view
}

func (s *service) History(ctx context.Context) []alerting.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.History()
}

// DismissAlert dismisses one current alert. Ids that are not currently
// materialized are reported as not found.
func (s *service) DismissAlert(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.currentAlerts() {
		if a.ID != id {
			continue
		}
		if s.tracker.Dismiss(a, s.now()) {
			metrics.AddAlertsDismissed(1)
		}
		s.alertSel.Remove(id)
		return nil
	}
	return pkgerrors.ErrNotFound.WithMessage("alert not found").WithDetail("alert_id", id)
}

// DismissSelected dismisses every selected current alert under one timestamp
// and clears the selection.
func (s *service) DismissSelected(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alertSel.Len() == 0 {
		return 0
	}

	var picked []alerting.Alert
	for _, a := range s.currentAlerts() {
		if s.alertSel.Has(a.ID) {
			picked = append(picked, a)
		}
	}
	if len(picked) == 0 {
		return 0
	}

	n := s.tracker.DismissMany(picked, s.now())
	s.alertSel.Clear()
	metrics.AddAlertsDismissed(n)
	s.logger.InfowCtx(ctx, "Alerts dismissed", "count", n)
	return n
}

func (s *service) MarkAllRead(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := alerting.AlertIDs(s.currentAlerts())
	s.tracker.MarkAllRead(ids)
	metrics.SetCurrentAlerts(len(ids), 0)
	return len(ids)
}

func (s *service) ToggleAlertSelection(ctx context.Context, id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alertSel.Toggle(id)
	return s.alertSel.IDs()
}

// ToggleGroupSelection applies select-all-or-none to the current alerts of ruleID.
func (s *service) ToggleGroupSelection(ctx context.Context, ruleID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, a := range s.currentAlerts() {
		if a.RuleID == ruleID {
			ids = append(ids, a.ID)
		}
	}
	s.alertSel.ToggleGroup(ids)
	return s.alertSel.IDs()
}

func (s *service) Table(ctx context.Context) TableView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tableLocked()
}

func (s *service) tableLocked() TableView {
	rows := s.view.Rows(s.store.Snapshot())
	cols := make([]tableview.Column, len(s.view.Columns))
	copy(cols, s.view.Columns)
	return TableView{
		Columns:  cols,
		Rows:     rows,
		Total:    s.store.Len(),
		Filters:  s.view.Filters,
		Search:   s.view.Search,
		Sort:     s.view.Sort,
		Selected: s.rowSel.Sorted(),
	}
}

func (s *service) UpdateView(ctx context.Context, req ViewRequest) TableView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Filters != nil {
		s.view.Filters = *req.Filters
	}
	if req.Search != nil {
		s.view.Search = *req.Search
	}
	return s.tableLocked()
}

func (s *service) ToggleSort(ctx context.Context, key sales.FieldKey) (TableView, error) {
	if !key.Valid() {
		return TableView{}, pkgerrors.ErrValidation.WithMessage("unknown sort column").WithDetail("key", string(key))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Sort = tableview.ToggleSort(s.view.Sort, key)
	return s.tableLocked(), nil
}

func (s *service) MoveColumn(ctx context.Context, from, to int) ([]tableview.Column, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cols, err := tableview.MoveColumn(s.view.Columns, from, to)
	if err != nil {
		return nil, err
	}
	s.view.Columns = cols
	out := make([]tableview.Column, len(cols))
	copy(out, cols)
	return out, nil
}

func (s *service) GetRecord(ctx context.Context, id string) (sales.SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(id)
}

func (s *service) UpdateNote(ctx context.Context, id, note string) (sales.SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.UpdateNote(id, note)
}

func (s *service) ToggleHidden(ctx context.Context, id string) (sales.SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ToggleHidden(id)
}

func (s *service) ToggleHighlight(ctx context.Context, id string) (sales.SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ToggleHighlight(id)
}

func (s *service) ToggleMark(ctx context.Context, id string) (sales.SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ToggleMark(id)
}

func (s *service) ToggleRowSelection(ctx context.Context, id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rowSel.Has(id) {
		s.rowSel.Remove(id)
	} else {
		s.rowSel.Add(id)
	}
	return s.rowSel.Sorted()
}

// SelectAllRows clears the selection when it already equals ids and selects
// exactly ids otherwise. Empty ids means the rows currently shown.
func (s *service) SelectAllRows(ctx context.Context, ids []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) == 0 {
		for _, r := range s.view.Rows(s.store.Snapshot()) {
			ids = append(ids, r.ID)
		}
	}

	target := alerting.NewIDSet(ids...)
	same := len(target) == len(s.rowSel)
	for id := range target {
		if !s.rowSel.Has(id) {
			same = false
			break
		}
	}

	if same {
		s.rowSel = alerting.NewIDSet()
	} else {
		s.rowSel = target
	}
	return s.rowSel.Sorted()
}

func (s *service) HideSelected(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.store.SetHidden(s.rowSel.Sorted())
	s.rowSel = alerting.NewIDSet()
	return n
}

func (s *service) MarkSelected(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.store.SetMarked(s.rowSel.Sorted())
	s.rowSel = alerting.NewIDSet()
	return n
}

func (s *service) visibleSnapshot() []sales.SaleRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Visible(s.store.Snapshot())
}

func (s *service) Overview(ctx context.Context) Overview {
	visible := s.visibleSnapshot()
	return Overview{
		KPI:    analytics.ComputeKPI(visible),
		Charts: analytics.ComputeCharts(visible),
	}
}

// Summary summarizes the filtered records. It never fails; failures come
// back as user-facing text.
func (s *service) Summary(ctx context.Context) summary.Result {
	if s.summarizer == nil {
		return summary.Result{Text: summary.MessageMissingKey, Status: summary.StatusMissingKey}
	}
	return s.summarizer.Summary(ctx, s.visibleSnapshot())
}

// Reload replaces the records with a fresh load. Row selection is dropped;
// alert read and dismissed state is kept.
func (s *service) Reload(ctx context.Context) (ReloadResponse, error) {
	if s.repo == nil {
		return ReloadResponse{}, pkgerrors.ErrServiceUnavailable.WithMessage("no data source configured")
	}

	records, err := s.repo.Load(ctx)
	if err != nil {
		return ReloadResponse{}, err
	}

	s.mu.Lock()
	s.store.Replace(records)
	s.rowSel = alerting.NewIDSet()
	n := s.store.Len()
	s.mu.Unlock()

	metrics.SetSalesRecordsLoaded(s.repo.Name(), n)
	s.logger.InfowCtx(ctx, "Sales records reloaded", "source", s.repo.Name(), "records", n)
	return ReloadResponse{Source: s.repo.Name(), Records: n}, nil
}
