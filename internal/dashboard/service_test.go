package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"salesdash/internal/alerting"
	"salesdash/internal/logger"
	"salesdash/internal/sales"
	"salesdash/internal/summary"
	"salesdash/internal/tableview"
	pkgerrors "salesdash/pkg/errors"
	"salesdash/pkg/models"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testRecords() []sales.SaleRecord {
	return []sales.SaleRecord{
		{ID: "S1", CustomerName: "Joana", City: "Recife, PE", ShippingStatus: sales.StatusDelivered, SaleDate: "2024-02-01", Profit: 150, SaleValue: 500},
		{ID: "S2", CustomerName: "Pedro", City: "Natal, RN", ShippingStatus: sales.StatusReturned, SaleDate: "2024-02-02", Profit: 50, SaleValue: 200},
		{ID: "S3", CustomerName: "Maria", City: "Recife, PE", ShippingStatus: sales.StatusShipped, SaleDate: "2024-02-03", Profit: 300, SaleValue: 900},
	}
}

type recordingNotifier struct {
	mu      sync.Mutex
	passes  int
	actions []string
	ruleErr error
}

func (n *recordingNotifier) NotifyAlerts(ctx context.Context, alerts []alerting.Alert, rules []alerting.Rule) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.passes++
	return 0
}

func (n *recordingNotifier) RuleChanged(ctx context.Context, action string, rule alerting.Rule) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.actions = append(n.actions, action+":"+rule.ID)
	return n.ruleErr
}

type fakeSummarizer struct {
	got []sales.SaleRecord
}

func (f *fakeSummarizer) Summary(ctx context.Context, records []sales.SaleRecord) summary.Result {
	f.got = records
	return summary.Result{Text: "ok", Status: summary.StatusOK}
}

type fakeRepository struct {
	records []sales.SaleRecord
	err     error
}

func (r *fakeRepository) Name() string { return "fake" }

func (r *fakeRepository) Load(ctx context.Context) ([]sales.SaleRecord, error) {
	return r.records, r.err
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("r%d", n)
	}
}

// newTestService seeds the two default rules as r1 (profit > 100) and
// r2 (status Devolvido, with email).
func newTestService(t *testing.T, opts ...ServiceOption) Service {
	t.Helper()
	rules := alerting.NewRuleStore(alerting.DefaultRegistry(), alerting.WithIDGenerator(sequentialIDs()))
	require.NoError(t, SeedRules(rules, alerting.DefaultRules()))

	opts = append([]ServiceOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(testRecords(), rules, logger.NopLogger(), opts...)
}

func TestAlerts_Materialized(t *testing.T) {
	svc := newTestService(t)

	view := svc.Alerts(context.Background())
	assert.ElementsMatch(t, []string{"S1-r1", "S3-r1", "S2-r2"}, alerting.AlertIDs(view.Alerts))
	assert.Equal(t, 3, view.UnreadCount)
	require.Len(t, view.Groups, 2)
	assert.Equal(t, "r1", view.Groups[0].RuleID)
	assert.Equal(t, 2, view.Groups[0].Count)
	assert.Empty(t, view.Selected)
}

type panickingNotifier struct{ recordingNotifier }

func (n *panickingNotifier) NotifyAlerts(ctx context.Context, alerts []alerting.Alert, rules []alerting.Rule) int {
	panic("broker gone")
}

func TestAlerts_NotifierPanicIsContained(t *testing.T) {
	svc := newTestService(t, WithNotifier(&panickingNotifier{}))

	var view AlertsView
	require.NotPanics(t, func() { view = svc.Alerts(context.Background()) })
	assert.Len(t, view.Alerts, 3)

	// the session lock must have been released before notifying
	assert.Len(t, svc.Alerts(context.Background()).Alerts, 3)
}

func TestRuleMutation_PublishFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	rules := alerting.NewRuleStore(alerting.DefaultRegistry(), alerting.WithIDGenerator(sequentialIDs()))
	require.NoError(t, SeedRules(rules, alerting.DefaultRules()))
	notifier := &recordingNotifier{ruleErr: errors.New("broker down")}
	svc := NewService(testRecords(), rules, logger.FromZap(zap.New(core), "test"), WithNotifier(notifier))

	rule, err := svc.CreateRule(context.Background(), alerting.RuleDraft{
		Field: sales.FieldCity, Operator: alerting.OpContains, Value: sales.Text("Natal"),
	})
	require.NoError(t, err)

	entries := logs.FilterMessage("Failed to publish rule change").All()
	require.Len(t, entries, 1)
	assert.Equal(t, rule.ID, entries[0].ContextMap()["rule_id"])
	assert.Equal(t, "broker down", entries[0].ContextMap()["error"])
}

func TestAlerts_FollowFiltersNotSearch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	search := "Pedro"
	table := svc.UpdateView(ctx, ViewRequest{Search: &search})
	require.Len(t, table.Rows, 1)
	assert.Len(t, svc.Alerts(ctx).Alerts, 3)

	empty := ""
	svc.UpdateView(ctx, ViewRequest{Search: &empty, Filters: &tableview.Filters{SearchCity: "recife"}})
	assert.ElementsMatch(t, []string{"S1-r1", "S3-r1"}, alerting.AlertIDs(svc.Alerts(ctx).Alerts))
}

func TestAlerts_HiddenRecordDropsAlert(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.ToggleHidden(ctx, "S2")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"S1-r1", "S3-r1"}, alerting.AlertIDs(svc.Alerts(ctx).Alerts))
}

func TestDismissAlert(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	svc.ToggleAlertSelection(ctx, "S1-r1")
	require.NoError(t, svc.DismissAlert(ctx, "S1-r1"))

	view := svc.Alerts(ctx)
	assert.NotContains(t, alerting.AlertIDs(view.Alerts), "S1-r1")
	assert.Empty(t, view.Selected)

	history := svc.History(ctx)
	require.Len(t, history, 1)
	assert.Equal(t, "S1-r1", history[0].ID)
	assert.True(t, history[0].IsDismissed)
	assert.Equal(t, fixedNow, history[0].Timestamp)

	err := svc.DismissAlert(ctx, "S1-r1")
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Len(t, svc.History(ctx), 1)
}

func TestDismissSelected(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	assert.Zero(t, svc.DismissSelected(ctx))

	svc.ToggleGroupSelection(ctx, "r1")
	svc.ToggleAlertSelection(ctx, "ghost")
	assert.Equal(t, 2, svc.DismissSelected(ctx))

	view := svc.Alerts(ctx)
	assert.Equal(t, []string{"S2-r2"}, alerting.AlertIDs(view.Alerts))
	assert.Empty(t, view.Selected)

	history := svc.History(ctx)
	require.Len(t, history, 2)
	assert.Equal(t, history[0].Timestamp, history[1].Timestamp)
}

func TestToggleGroupSelection(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	assert.Equal(t, []string{"S1-r1", "S3-r1"}, svc.ToggleGroupSelection(ctx, "r1"))
	assert.Empty(t, svc.ToggleGroupSelection(ctx, "r1"))

	svc.ToggleAlertSelection(ctx, "S1-r1")
	assert.Equal(t, []string{"S1-r1", "S3-r1"}, svc.ToggleGroupSelection(ctx, "r1"))
}

func TestMarkAllRead(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	assert.Equal(t, 3, svc.MarkAllRead(ctx))
	view := svc.Alerts(ctx)
	assert.Zero(t, view.UnreadCount)
	for _, a := range view.Alerts {
		assert.True(t, a.IsRead)
	}
}

func TestRuleMutations_Notify(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := newTestService(t, WithNotifier(notifier))

	_, err := svc.SetRuleActive(ctx, "r1", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"S2-r2"}, alerting.AlertIDs(svc.Alerts(ctx).Alerts))

	value := sales.Number(200)
	_, err = svc.UpdateRule(ctx, "r1", alerting.RulePatch{Value: &value})
	require.NoError(t, err)
	require.NoError(t, svc.MoveRule(ctx, "r2", alerting.DirectionUp))
	require.NoError(t, svc.DeleteRule(ctx, "r1"))

	_, err = svc.GetRule(ctx, "r1")
	assert.True(t, pkgerrors.IsNotFound(err))

	err = svc.DeleteRule(ctx, "r1")
	assert.True(t, pkgerrors.IsNotFound(err))

	assert.Equal(t, []string{
		models.ActionToggle + ":r1",
		models.ActionUpdate + ":r1",
		models.ActionReorder + ":r2",
		models.ActionDelete + ":r1",
	}, notifier.actions)
	assert.Equal(t, 1, notifier.passes)
}

func TestCreateRule_Validation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateRule(context.Background(), alerting.RuleDraft{Field: sales.FieldProfit, Operator: alerting.OpGreater, Value: sales.Text("abc")})
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Len(t, svc.ListRules(context.Background()), 2)
}

func TestEditFlow(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	state, err := svc.StartEdit(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", state.EditingRuleID)
	assert.Equal(t, "r1", svc.EditState(ctx).EditingRuleID)

	_, err = svc.SaveRule(ctx, alerting.RuleDraft{Field: sales.FieldProfit, Operator: alerting.OpGreater, Value: sales.Text("x")})
	require.Error(t, err)
	assert.Equal(t, "r1", svc.EditState(ctx).EditingRuleID)

	rule, err := svc.SaveRule(ctx, alerting.RuleDraft{Name: "Lucro > 200", Field: sales.FieldProfit, Operator: alerting.OpGreater, Value: sales.Number(200)})
	require.NoError(t, err)
	assert.Equal(t, "r1", rule.ID)
	assert.True(t, rule.Active)
	assert.Empty(t, svc.EditState(ctx).EditingRuleID)
	assert.ElementsMatch(t, []string{"S3-r1", "S2-r2"}, alerting.AlertIDs(svc.Alerts(ctx).Alerts))

	created, err := svc.SaveRule(ctx, alerting.RuleDraft{Field: sales.FieldCity, Operator: alerting.OpContains, Value: sales.Text("Natal")})
	require.NoError(t, err)
	assert.Equal(t, "r3", created.ID)
	assert.Len(t, svc.ListRules(ctx), 3)
}

func TestEditFlow_DeleteClearsEdit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.StartEdit(ctx, "r2")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteRule(ctx, "r2"))
	assert.Equal(t, EditState{}, svc.EditState(ctx))

	_, err = svc.StartEdit(ctx, "missing")
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = svc.StartEdit(ctx, "r1")
	require.NoError(t, err)
	svc.CancelEdit(ctx)
	assert.Empty(t, svc.EditState(ctx).EditingRuleID)
}

func TestSelectAllRows(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	assert.Equal(t, []string{"S1", "S2", "S3"}, svc.SelectAllRows(ctx, nil))
	assert.Empty(t, svc.SelectAllRows(ctx, nil))

	svc.ToggleRowSelection(ctx, "S1")
	assert.Equal(t, []string{"S2", "S3"}, svc.SelectAllRows(ctx, []string{"S2", "S3"}))
	assert.Empty(t, svc.SelectAllRows(ctx, []string{"S3", "S2"}))
}

func TestHideAndMarkSelected(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	svc.ToggleRowSelection(ctx, "S1")
	svc.ToggleRowSelection(ctx, "S2")
	assert.Equal(t, 2, svc.MarkSelected(ctx))
	assert.Empty(t, svc.Table(ctx).Selected)

	rec, err := svc.GetRecord(ctx, "S1")
	require.NoError(t, err)
	assert.True(t, rec.Marked)

	svc.ToggleRowSelection(ctx, "S1")
	assert.Equal(t, 1, svc.HideSelected(ctx))

	table := svc.Table(ctx)
	assert.Len(t, table.Rows, 2)
	assert.Equal(t, 3, table.Total)
	assert.Empty(t, table.Selected)
}

func TestRecordEdits(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	rec, err := svc.UpdateNote(ctx, "S2", "ligar para cliente")
	require.NoError(t, err)
	assert.Equal(t, "ligar para cliente", rec.Notes)

	rec, err = svc.ToggleHighlight(ctx, "S2")
	require.NoError(t, err)
	assert.True(t, rec.Highlighted)

	rec, err = svc.ToggleMark(ctx, "S2")
	require.NoError(t, err)
	assert.True(t, rec.Marked)

	_, err = svc.ToggleHidden(ctx, "nope")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestToggleSortAndColumns(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	table, err := svc.ToggleSort(ctx, sales.FieldProfit)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "S2", table.Rows[0].ID)

	table, err = svc.ToggleSort(ctx, sales.FieldProfit)
	require.NoError(t, err)
	assert.Equal(t, "S3", table.Rows[0].ID)

	_, err = svc.ToggleSort(ctx, sales.FieldKey("bogus"))
	assert.True(t, pkgerrors.IsValidation(err))

	cols, err := svc.MoveColumn(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, sales.FieldCity, cols[2].Key)
	assert.Equal(t, sales.FieldCity, svc.Table(ctx).Columns[2].Key)

	_, err = svc.MoveColumn(ctx, 0, 99)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestOverviewAndSummary(t *testing.T) {
	ctx := context.Background()
	summarizer := &fakeSummarizer{}
	svc := newTestService(t, WithSummarizer(summarizer))

	svc.UpdateView(ctx, ViewRequest{Filters: &tableview.Filters{SearchCity: "Recife"}})

	overview := svc.Overview(ctx)
	assert.Equal(t, 2, overview.KPI.TotalOrders)

	res := svc.Summary(ctx)
	assert.Equal(t, summary.StatusOK, res.Status)
	assert.Len(t, summarizer.got, 2)
}

func TestSummary_NoSummarizer(t *testing.T) {
	res := newTestService(t).Summary(context.Background())
	assert.Equal(t, summary.StatusMissingKey, res.Status)
	assert.Equal(t, summary.MessageMissingKey, res.Text)
}

func TestReload(t *testing.T) {
	ctx := context.Background()

	_, err := newTestService(t).Reload(ctx)
	assert.ErrorIs(t, err, pkgerrors.ErrServiceUnavailable)

	repo := &fakeRepository{records: []sales.SaleRecord{{ID: "N1", Profit: 500}}}
	svc := newTestService(t, WithRepository(repo))
	svc.ToggleRowSelection(ctx, "S1")

	res, err := svc.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReloadResponse{Source: "fake", Records: 1}, res)
	assert.Empty(t, svc.Table(ctx).Selected)
	assert.Equal(t, []string{"N1-r1"}, alerting.AlertIDs(svc.Alerts(ctx).Alerts))

	repo.err = pkgerrors.ErrUpstream
	_, err = svc.Reload(ctx)
	assert.Error(t, err)
	assert.Equal(t, 1, svc.Table(ctx).Total)
}

func TestFields(t *testing.T) {
	fields := newTestService(t).Fields(context.Background())
	require.NotEmpty(t, fields)
	for _, f := range fields {
		assert.Equal(t, alerting.OperatorsFor(f.Type), f.Operators, f.Key)
	}
}

func TestConcurrentActions(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				svc.Alerts(ctx)
			case 1:
				svc.ToggleAlertSelection(ctx, "S1-r1")
			case 2:
				_, _ = svc.SetRuleActive(ctx, "r2", i%8 == 2)
			default:
				svc.Table(ctx)
			}
		}(i)
	}
	wg.Wait()
	assert.Len(t, svc.ListRules(ctx), 2)
}
