package alerting

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/sales"
	pkgerrors "salesdash/pkg/errors"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("r%d", n)
	}
}

func newTestStore(t *testing.T, drafts ...RuleDraft) *RuleStore {
	t.Helper()
	store := NewRuleStore(DefaultRegistry(), WithIDGenerator(sequentialIDs()))
	for _, d := range drafts {
		_, err := store.Create(d)
		require.NoError(t, err)
	}
	return store
}

func ids(rules []Rule) []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.ID
	}
	return out
}

func TestRuleStore_Create(t *testing.T) {
	store := newTestStore(t)

	rule, err := store.Create(RuleDraft{
		Field:    sales.FieldProfit,
		Operator: OpGreater,
		Value:    sales.Text("100"),
	})
	require.NoError(t, err)

	assert.Equal(t, "r1", rule.ID)
	assert.True(t, rule.Active)
	assert.Equal(t, sales.Number(100), rule.Value)
	assert.Equal(t, "Lucro (R$) maior que 100", rule.Name)
	assert.Equal(t, []Rule{rule}, store.List())
}

func TestRuleStore_CreateKeepsGivenName(t *testing.T) {
	store := newTestStore(t)
	inactive := false

	rule, err := store.Create(RuleDraft{
		Name:              "Recife",
		Active:            &inactive,
		EmailNotification: true,
		Field:             sales.FieldCity,
		Operator:          OpContains,
		Value:             sales.Text("Recife"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Recife", rule.Name)
	assert.False(t, rule.Active)
	assert.True(t, rule.EmailNotification)
}

func TestRuleStore_CreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		draft RuleDraft
		msg   string
	}{
		{
			name:  "empty value",
			draft: RuleDraft{Field: sales.FieldProfit, Operator: OpGreater, Value: sales.Text("")},
			msg:   "value required",
		},
		{
			name:  "null value",
			draft: RuleDraft{Field: sales.FieldProfit, Operator: OpGreater},
			msg:   "value required",
		},
		{
			name:  "unknown field",
			draft: RuleDraft{Field: sales.FieldNotes, Operator: OpContains, Value: sales.Text("x")},
			msg:   "unknown field",
		},
		{
			name:  "operator not valid for type",
			draft: RuleDraft{Field: sales.FieldShippingStatus, Operator: OpContains, Value: sales.Text("Devolvido")},
			msg:   "not valid for enumerated",
		},
		{
			name:  "non numeric comparand",
			draft: RuleDraft{Field: sales.FieldQuantity, Operator: OpGreater, Value: sales.Text("muitos")},
			msg:   "is not a number",
		},
		{
			name:  "NaN comparand",
			draft: RuleDraft{Field: sales.FieldProfit, Operator: OpLess, Value: sales.Text("NaN")},
			msg:   "is not a number",
		},
		{
			name:  "infinite comparand",
			draft: RuleDraft{Field: sales.FieldProfit, Operator: OpLess, Value: sales.Text("Infinity")},
			msg:   "is not a number",
		},
		{
			name:  "infinite number comparand",
			draft: RuleDraft{Field: sales.FieldSaleValue, Operator: OpGreater, Value: sales.Number(math.Inf(-1))},
			msg:   "is not a number",
		},
		{
			name:  "unknown option",
			draft: RuleDraft{Field: sales.FieldShippingStatus, Operator: OpEquals, Value: sales.Text("Perdido")},
			msg:   "is not one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			_, err := store.Create(tt.draft)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.msg)
			assert.Empty(t, store.List())
		})
	}
}

func TestRuleStore_Update(t *testing.T) {
	store := newTestStore(t, DefaultRules()...)

	value := sales.Text("250")
	updated, err := store.Update("r1", RulePatch{Value: &value})
	require.NoError(t, err)
	assert.Equal(t, "r1", updated.ID)
	assert.Equal(t, sales.Number(250), updated.Value)
	assert.Equal(t, "Lucro Alto (> R$ 100)", updated.Name)
	assert.Equal(t, []string{"r1", "r2"}, ids(store.List()))

	empty := ""
	updated, err = store.Update("r1", RulePatch{Name: &empty})
	require.NoError(t, err)
	assert.Equal(t, "Lucro (R$) maior que 250", updated.Name)

	bad := sales.Text("")
	_, err = store.Update("r1", RulePatch{Value: &bad})
	assert.True(t, pkgerrors.IsValidation(err))

	got, err := store.Get("r1")
	require.NoError(t, err)
	assert.Equal(t, sales.Number(250), got.Value)

	_, err = store.Update("missing", RulePatch{})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestRuleStore_Remove(t *testing.T) {
	store := newTestStore(t, DefaultRules()...)

	require.NoError(t, store.Remove("r1"))
	assert.Equal(t, []string{"r2"}, ids(store.List()))

	assert.True(t, pkgerrors.IsNotFound(store.Remove("r1")))
}

func TestRuleStore_Reorder(t *testing.T) {
	drafts := append(DefaultRules(), RuleDraft{Field: sales.FieldCity, Operator: OpContains, Value: sales.Text("SP")})

	tests := []struct {
		name string
		id   string
		dir  Direction
		want []string
	}{
		{"first up is no-op", "r1", DirectionUp, []string{"r1", "r2", "r3"}},
		{"last down is no-op", "r3", DirectionDown, []string{"r1", "r2", "r3"}},
		{"middle up", "r2", DirectionUp, []string{"r2", "r1", "r3"}},
		{"middle down", "r2", DirectionDown, []string{"r1", "r3", "r2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, drafts...)
			require.NoError(t, store.Reorder(tt.id, tt.dir))
			assert.Equal(t, tt.want, ids(store.List()))
		})
	}

	store := newTestStore(t, drafts...)
	assert.True(t, pkgerrors.IsNotFound(store.Reorder("nope", DirectionUp)))
	assert.True(t, pkgerrors.IsValidation(store.Reorder("r1", Direction("sideways"))))
}

func TestRuleStore_SetActive(t *testing.T) {
	store := newTestStore(t, DefaultRules()...)
	assert.Equal(t, 2, store.ActiveCount())

	rule, err := store.SetActive("r2", false)
	require.NoError(t, err)
	assert.False(t, rule.Active)
	assert.Equal(t, 1, store.ActiveCount())
}

func TestRuleStore_ListIsCopy(t *testing.T) {
	store := newTestStore(t, DefaultRules()...)
	list := store.List()
	list[0].Name = "changed"

	got, err := store.Get("r1")
	require.NoError(t, err)
	assert.Equal(t, "Lucro Alto (> R$ 100)", got.Name)
}
