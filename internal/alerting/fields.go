package alerting

import (
	"salesdash/internal/sales"
)

type FieldType string

const (
	FieldTypeNumber     FieldType = "number"
	FieldTypeCurrency   FieldType = "currency"
	FieldTypeText       FieldType = "text"
	FieldTypeEnumerated FieldType = "enumerated"
)

// Numeric reports whether comparands for this type are stored as numbers.
func (t FieldType) Numeric() bool {
	return t == FieldTypeNumber || t == FieldTypeCurrency
}

type FieldDefinition struct {
	Key     sales.FieldKey `json:"key"`
	Label   string         `json:"label"`
	Type    FieldType      `json:"type"`
	Options []string       `json:"options,omitempty"`
}

// Allows reports whether op is valid for the definition's type.
func (d FieldDefinition) Allows(op Operator) bool {
	for _, candidate := range OperatorsFor(d.Type) {
		if candidate == op {
			return true
		}
	}
	return false
}

func (d FieldDefinition) HasOption(value string) bool {
	for _, opt := range d.Options {
		if opt == value {
			return true
		}
	}
	return false
}

// Registry is the fixed catalog of alert-able fields.
type Registry struct {
	fields []FieldDefinition
	index  map[sales.FieldKey]int
}

func NewRegistry(defs ...FieldDefinition) *Registry {
	r := &Registry{
		fields: make([]FieldDefinition, 0, len(defs)),
		index:  make(map[sales.FieldKey]int, len(defs)),
	}
	for _, d := range defs {
		if _, dup := r.index[d.Key]; dup {
			continue
		}
		r.index[d.Key] = len(r.fields)
		r.fields = append(r.fields, d)
	}
	return r
}

func DefaultRegistry() *Registry {
	statuses := sales.ShippingStatuses()
	options := make([]string, len(statuses))
	for i, s := range statuses {
		options[i] = string(s)
	}

	return NewRegistry(
		FieldDefinition{Key: sales.FieldProfit, Label: "Lucro (R$)", Type: FieldTypeCurrency},
		FieldDefinition{Key: sales.FieldSaleValue, Label: "Valor Venda (R$)", Type: FieldTypeCurrency},
		FieldDefinition{Key: sales.FieldDeliveryDays, Label: "Dias de Entrega", Type: FieldTypeNumber},
		FieldDefinition{Key: sales.FieldShippingStatus, Label: "Status de Envio", Type: FieldTypeEnumerated, Options: options},
		FieldDefinition{Key: sales.FieldCity, Label: "Cidade", Type: FieldTypeText},
		FieldDefinition{Key: sales.FieldProduct, Label: "Nome do Produto", Type: FieldTypeText},
		FieldDefinition{Key: sales.FieldProductID, Label: "ID Produto (ASIN)", Type: FieldTypeText},
		FieldDefinition{Key: sales.FieldQuantity, Label: "Quantidade", Type: FieldTypeNumber},
	)
}

func (r *Registry) List() []FieldDefinition {
	out := make([]FieldDefinition, len(r.fields))
	for i, d := range r.fields {
		out[i] = d
		out[i].Options = append([]string(nil), d.Options...)
	}
	return out
}

func (r *Registry) Get(key sales.FieldKey) (FieldDefinition, bool) {
	i, ok := r.index[key]
	if !ok {
		return FieldDefinition{}, false
	}
	return r.fields[i], true
}
