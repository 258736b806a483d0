package alerting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/sales"
)

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	fields := reg.List()
	require.Len(t, fields, 8)

	keys := make([]sales.FieldKey, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
		assert.True(t, f.Key.Valid(), f.Key)
	}
	assert.Equal(t, []sales.FieldKey{
		sales.FieldProfit, sales.FieldSaleValue, sales.FieldDeliveryDays, sales.FieldShippingStatus,
		sales.FieldCity, sales.FieldProduct, sales.FieldProductID, sales.FieldQuantity,
	}, keys)

	status, ok := reg.Get(sales.FieldShippingStatus)
	require.True(t, ok)
	assert.Equal(t, FieldTypeEnumerated, status.Type)
	assert.Len(t, status.Options, 7)
	assert.Equal(t, "Urgente", status.Options[0])

	_, ok = reg.Get(sales.FieldNotes)
	assert.False(t, ok)
}

func TestRegistryListIsCopy(t *testing.T) {
	reg := DefaultRegistry()
	fields := reg.List()
	fields[3].Options[0] = "changed"
	fields[0].Label = "changed"

	again := reg.List()
	assert.Equal(t, "Urgente", again[3].Options[0])
	assert.Equal(t, "Lucro (R$)", again[0].Label)
}

func TestOperatorsFor(t *testing.T) {
	tests := []struct {
		typ  FieldType
		want []Operator
	}{
		{FieldTypeNumber, []Operator{OpGreater, OpLess, OpEquals, OpNotEquals}},
		{FieldTypeCurrency, []Operator{OpGreater, OpLess, OpEquals, OpNotEquals}},
		{FieldTypeText, []Operator{OpContains, OpEquals, OpNotEquals}},
		{FieldTypeEnumerated, []Operator{OpEquals, OpNotEquals}},
		{FieldType("date"), []Operator{OpEquals}},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.Equal(t, tt.want, OperatorsFor(tt.typ))
		})
	}
}

func TestFieldDefinitionAllows(t *testing.T) {
	def := FieldDefinition{Type: FieldTypeEnumerated}
	assert.True(t, def.Allows(OpEquals))
	assert.False(t, def.Allows(OpContains))
	assert.False(t, def.Allows(OpGreater))
}
