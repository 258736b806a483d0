package alerting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/sales"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestMaterializer() *Materializer {
	return NewMaterializer(DefaultRegistry(), WithClock(func() time.Time { return fixedNow }))
}

func profitRule(t *testing.T, store *RuleStore) Rule {
	t.Helper()
	rule, err := store.Create(RuleDraft{Field: sales.FieldProfit, Operator: OpGreater, Value: sales.Number(100)})
	require.NoError(t, err)
	return rule
}

func TestMaterialize_ProfitScenario(t *testing.T) {
	store := newTestStore(t)
	rule := profitRule(t, store)
	records := []sales.SaleRecord{{ID: "S1", CustomerName: "Joana", Profit: 150}}

	alerts := newTestMaterializer().Materialize(records, store.List(), nil, nil)
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, "S1-"+rule.ID, a.ID)
	assert.Equal(t, rule.ID, a.RuleID)
	assert.Equal(t, "S1", a.SaleID)
	assert.Equal(t, SeveritySuccess, a.Severity)
	assert.Equal(t, "Lucro (R$): R$\u00a0150,00 (maior que 100) - Joana", a.Message)
	assert.Equal(t, fixedNow, a.Timestamp)
	assert.False(t, a.IsRead)
	assert.False(t, a.IsDismissed)
}

func TestMaterialize_ReturnedScenario(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create(RuleDraft{Field: sales.FieldShippingStatus, Operator: OpEquals, Value: sales.Text("Devolvido")})
	require.NoError(t, err)
	records := []sales.SaleRecord{{ID: "S2", CustomerName: "Pedro", ShippingStatus: sales.StatusReturned}}

	alerts := newTestMaterializer().Materialize(records, store.List(), nil, nil)
	require.Len(t, alerts, 1)
	assert.Equal(t, SeverityError, alerts[0].Severity)
	assert.Equal(t, "Status de Envio: Devolvido (igual a Devolvido) - Pedro", alerts[0].Message)
}

func TestMaterialize_GreaterThanProperty(t *testing.T) {
	store := newTestStore(t)
	rule := profitRule(t, store)

	records := sales.SampleRecords()
	reversed := make([]sales.SaleRecord, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	m := newTestMaterializer()
	for _, recs := range [][]sales.SaleRecord{records, reversed} {
		got := NewIDSet(AlertIDs(m.Materialize(recs, store.List(), nil, nil))...)
		for _, r := range recs {
			assert.Equal(t, r.Profit > 100, got.Has(AlertID(r.ID, rule.ID)), r.ID)
		}
	}
}

func TestMaterialize_OrderAndFilters(t *testing.T) {
	store := newTestStore(t, DefaultRules()...)
	_, err := store.Create(RuleDraft{Field: sales.FieldCity, Operator: OpContains, Value: sales.Text("a")})
	require.NoError(t, err)
	_, err = store.SetActive("r3", false)
	require.NoError(t, err)

	records := sales.SampleRecords()
	m := newTestMaterializer()

	alerts := m.Materialize(records, store.List(), nil, nil)
	assert.Equal(t, []string{"AMZ-1002-r1", "AMZ-1005-r2"}, AlertIDs(alerts))

	alerts = m.Materialize(records, store.List(), NewIDSet("AMZ-1002-r1"), NewIDSet("AMZ-1005-r2"))
	require.Len(t, alerts, 1)
	assert.Equal(t, "AMZ-1005-r2", alerts[0].ID)
	assert.True(t, alerts[0].IsRead)
	assert.Equal(t, 0, UnreadCount(alerts))
}

func TestMaterialize_RecordMajorOrder(t *testing.T) {
	store := newTestStore(t,
		RuleDraft{Field: sales.FieldQuantity, Operator: OpGreater, Value: sales.Number(0)},
		RuleDraft{Field: sales.FieldSaleValue, Operator: OpGreater, Value: sales.Number(0)},
	)
	records := []sales.SaleRecord{
		{ID: "A", Quantity: 1, SaleValue: 1},
		{ID: "B", Quantity: 1, SaleValue: 1},
	}

	alerts := newTestMaterializer().Materialize(records, store.List(), nil, nil)
	assert.Equal(t, []string{"A-r1", "A-r2", "B-r1", "B-r2"}, AlertIDs(alerts))
}

func TestMaterialize_Idempotent(t *testing.T) {
	store := newTestStore(t, DefaultRules()...)
	records := sales.SampleRecords()

	calls := 0
	m := NewMaterializer(DefaultRegistry(), WithClock(func() time.Time {
		calls++
		return fixedNow.Add(time.Duration(calls) * time.Minute)
	}))

	first := m.Materialize(records, store.List(), nil, nil)
	second := m.Materialize(records, store.List(), nil, nil)
	require.Len(t, second, len(first))
	for i := range first {
		assert.NotEqual(t, first[i].Timestamp, second[i].Timestamp)
		first[i].Timestamp = time.Time{}
		second[i].Timestamp = time.Time{}
	}
	assert.Equal(t, first, second)
}

func TestMaterialize_NullFieldNeverTriggers(t *testing.T) {
	store := newTestStore(t, RuleDraft{Field: sales.FieldDeliveryDays, Operator: OpLess, Value: sales.Number(100)})

	alerts := newTestMaterializer().Materialize(sales.SampleRecords(), store.List(), nil, nil)
	assert.Equal(t, []string{"AMZ-1001-r1"}, AlertIDs(alerts))
	assert.Equal(t, "Dias de Entrega: 3 (menor que 100) - Carlos Silva", alerts[0].Message)
}

func TestMaterialize_NegativeCurrency(t *testing.T) {
	store := newTestStore(t, RuleDraft{Field: sales.FieldProfit, Operator: OpLess, Value: sales.Number(0)})

	alerts := newTestMaterializer().Materialize(sales.SampleRecords(), store.List(), nil, nil)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Lucro (R$): -R$\u00a025,00 (menor que 0) - Roberto Santos", alerts[0].Message)
	assert.Equal(t, SeverityWarning, alerts[0].Severity)
}
