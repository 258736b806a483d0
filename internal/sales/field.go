package sales

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldKey names a record attribute using its wire name.
type FieldKey string

const (
	FieldID               FieldKey = "id"
	FieldCustomerName     FieldKey = "nome"
	FieldCity             FieldKey = "cidade"
	FieldShippingStatus   FieldKey = "envioStatus"
	FieldCustomerReceived FieldKey = "recebimentoClienteStatus"
	FieldSaleDate         FieldKey = "dataVenda"
	FieldShipDate         FieldKey = "dataEnvio"
	FieldReceiptDate      FieldKey = "dataRecebimento"
	FieldDeliveryDays     FieldKey = "recebimentoDias"
	FieldDeliveryPoint    FieldKey = "pontoEntrega"
	FieldTrackingCode     FieldKey = "codigoRastreio"
	FieldSaleValue        FieldKey = "valorVenda"
	FieldFreightReceived  FieldKey = "freteRecebido"
	FieldSaleWithFreight  FieldKey = "valorVendaMaisFrete"
	FieldPurchaseCost     FieldKey = "valorCompra"
	FieldFreightPaid      FieldKey = "fretePago"
	FieldMarketplaceFee   FieldKey = "comissaoAmazon"
	FieldTotalCosts       FieldKey = "totalCustos"
	FieldProfit           FieldKey = "lucro"
	FieldQuantity         FieldKey = "quantidade"
	FieldProductID        FieldKey = "idProduto"
	FieldProduct          FieldKey = "produto"
	FieldNotes            FieldKey = "observacoes"
)

// DataFields lists every data attribute of a record in declaration order.
// View flags (hidden, highlighted, marked) are not data.
func DataFields() []FieldKey {
	return []FieldKey{
		FieldID, FieldCustomerName, FieldCity, FieldShippingStatus, FieldCustomerReceived,
		FieldSaleDate, FieldShipDate, FieldReceiptDate, FieldDeliveryDays, FieldDeliveryPoint,
		FieldTrackingCode, FieldSaleValue, FieldFreightReceived, FieldSaleWithFreight,
		FieldPurchaseCost, FieldFreightPaid, FieldMarketplaceFee, FieldTotalCosts, FieldProfit,
		FieldQuantity, FieldProductID, FieldProduct, FieldNotes,
	}
}

func (k FieldKey) Valid() bool {
	_, ok := Field(SaleRecord{}, k)
	return ok
}

// Kind tags the dynamic type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindText
	KindBool
)

// Value is one field read off a record.
type Value struct {
	kind Kind
	num  float64
	text string
	flag bool
}

func Null() Value            { return Value{kind: KindNull} }
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func Text(s string) Value    { return Value{kind: KindText, text: s} }
func Bool(b bool) Value      { return Value{kind: KindBool, flag: b} }

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) Float() float64 { return v.num }
func (v Value) Str() string    { return v.text }
func (v Value) Boolean() bool  { return v.flag }

func optionalText(s *string) Value {
	if s == nil {
		return Null()
	}
	return Text(*s)
}

func optionalNumber(f *float64) Value {
	if f == nil {
		return Null()
	}
	return Number(*f)
}

// String renders the value the way the dashboard prints raw cells:
// integers without a decimal point, booleans as true/false, null as "".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return FormatNumber(v.num)
	case KindText:
		return v.text
	case KindBool:
		return strconv.FormatBool(v.flag)
	default:
		return ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if !IsFinite(v.num) {
			return nil, fmt.Errorf("number %v has no JSON form", v.num)
		}
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.text)
	case KindBool:
		return json.Marshal(v.flag)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Null()
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, ok := FromAny(raw)
	if !ok {
		return fmt.Errorf("unsupported value %s", string(data))
	}
	*v = parsed
	return nil
}

// FromAny converts a decoded scalar (JSON, YAML or config) into a Value.
func FromAny(raw any) (Value, bool) {
	switch x := raw.(type) {
	case nil:
		return Null(), true
	case Value:
		return x, true
	case string:
		return Text(x), true
	case bool:
		return Bool(x), true
	case float64:
		return Number(x), true
	case float32:
		return Number(float64(x)), true
	case int:
		return Number(float64(x)), true
	case int64:
		return Number(float64(x)), true
	case int32:
		return Number(float64(x)), true
	case uint64:
		return Number(float64(x)), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Null(), false
		}
		return Number(f), true
	default:
		return Null(), false
	}
}

// FormatNumber prints f in the shortest form that round-trips. Negative zero
// prints as "0" and magnitudes from 1e21 up use exponent form ("1e+21"),
// matching how the spreadsheet export renders numbers.
func FormatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	if math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// IsFinite reports whether f is neither NaN nor an infinity.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ToNumber coerces a value the loose way spreadsheet formulas do: blank text
// is zero, booleans are 1/0, anything unparsable is not a number.
func (v Value) ToNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindBool:
		if v.flag {
			return 1, true
		}
		return 0, true
	case KindText:
		return ParseLooseNumber(v.text)
	default:
		return 0, false
	}
}

// ParseLooseNumber parses trimmed text as a float; blank text is zero.
// NaN and infinities are not numbers.
func ParseLooseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !IsFinite(f) {
		return 0, false
	}
	return f, true
}

// Field reads key off r. The switch is the complete set of readable
// attributes; ok is false for unknown keys.
func Field(r SaleRecord, key FieldKey) (Value, bool) {
	switch key {
	case FieldID:
		return Text(r.ID), true
	case FieldCustomerName:
		return Text(r.CustomerName), true
	case FieldCity:
		return Text(r.City), true
	case FieldShippingStatus:
		return Text(string(r.ShippingStatus)), true
	case FieldCustomerReceived:
		return Bool(r.CustomerReceived), true
	case FieldSaleDate:
		return Text(r.SaleDate), true
	case FieldShipDate:
		return optionalText(r.ShipDate), true
	case FieldReceiptDate:
		return optionalText(r.ReceiptDate), true
	case FieldDeliveryDays:
		return optionalNumber(r.DeliveryDays), true
	case FieldDeliveryPoint:
		return Text(r.DeliveryPoint), true
	case FieldTrackingCode:
		return Text(r.TrackingCode), true
	case FieldSaleValue:
		return Number(r.SaleValue), true
	case FieldFreightReceived:
		return Number(r.FreightReceived), true
	case FieldSaleWithFreight:
		return Number(r.SaleWithFreight), true
	case FieldPurchaseCost:
		return Number(r.PurchaseCost), true
	case FieldFreightPaid:
		return Number(r.FreightPaid), true
	case FieldMarketplaceFee:
		return Number(r.MarketplaceFee), true
	case FieldTotalCosts:
		return Number(r.TotalCosts), true
	case FieldProfit:
		return Number(r.Profit), true
	case FieldQuantity:
		return Number(float64(r.Quantity)), true
	case FieldProductID:
		return Text(r.ProductID), true
	case FieldProduct:
		return Text(r.Product), true
	case FieldNotes:
		return Text(r.Notes), true
	default:
		return Null(), false
	}
}

// Get is Field with unknown keys read as null.
func (r SaleRecord) Get(key FieldKey) Value {
	v, _ := Field(r, key)
	return v
}
