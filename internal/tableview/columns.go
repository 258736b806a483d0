package tableview

import (
	"fmt"

	"salesdash/internal/sales"
	pkgerrors "salesdash/pkg/errors"
)

type Column struct {
	Key     sales.FieldKey `json:"key"`
	Label   string         `json:"label"`
	Numeric bool           `json:"numeric,omitempty"`
}

// DefaultColumns is the movable column set in its initial order. The customer
// name column is pinned and not part of it.
func DefaultColumns() []Column {
	return []Column{
		{Key: sales.FieldCity, Label: "Cidade"},
		{Key: sales.FieldShippingStatus, Label: "Envio"},
		{Key: sales.FieldCustomerReceived, Label: "Recebido (Cli)"},
		{Key: sales.FieldSaleDate, Label: "Data Venda"},
		{Key: sales.FieldShipDate, Label: "Data Envio"},
		{Key: sales.FieldReceiptDate, Label: "Data Receb."},
		{Key: sales.FieldDeliveryDays, Label: "Dias", Numeric: true},
		{Key: sales.FieldDeliveryPoint, Label: "Ponto Entrega"},
		{Key: sales.FieldTrackingCode, Label: "Rastreio"},
		{Key: sales.FieldSaleValue, Label: "Valor Venda", Numeric: true},
		{Key: sales.FieldFreightReceived, Label: "Frete Rec.", Numeric: true},
		{Key: sales.FieldSaleWithFreight, Label: "V + F", Numeric: true},
		{Key: sales.FieldPurchaseCost, Label: "Vlr Compra", Numeric: true},
		{Key: sales.FieldFreightPaid, Label: "Frete Pago", Numeric: true},
		{Key: sales.FieldMarketplaceFee, Label: "Comissão", Numeric: true},
		{Key: sales.FieldTotalCosts, Label: "Custos Tot.", Numeric: true},
		{Key: sales.FieldProfit, Label: "Lucro", Numeric: true},
		{Key: sales.FieldQuantity, Label: "Qtd", Numeric: true},
		{Key: sales.FieldProductID, Label: "ID Produto"},
		{Key: sales.FieldProduct, Label: "Produto"},
		{Key: sales.FieldNotes, Label: "Observações"},
	}
}

// MoveColumn drops the column at from into position to, shifting the ones in
// between. The input slice is not modified.
func MoveColumn(cols []Column, from, to int) ([]Column, error) {
	if from < 0 || from >= len(cols) || to < 0 || to >= len(cols) {
		return nil, pkgerrors.ErrValidation.
			WithMessage(fmt.Sprintf("column position out of range: from=%d to=%d (have %d)", from, to, len(cols)))
	}

	out := make([]Column, 0, len(cols))
	moved := cols[from]
	for i, c := range cols {
		if i != from {
			out = append(out, c)
		}
	}

	out = append(out, Column{})
	copy(out[to+1:], out[to:])
	out[to] = moved
	return out, nil
}
