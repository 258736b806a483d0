package sales

// ShippingStatus is the fulfilment state of a sale.
type ShippingStatus string

const (
	StatusUrgent     ShippingStatus = "Urgente"
	StatusProcessing ShippingStatus = "Em Processamento"
	StatusPending    ShippingStatus = "Pendente"
	StatusShipped    ShippingStatus = "Enviado"
	StatusDelivered  ShippingStatus = "Entregue"
	StatusReturned   ShippingStatus = "Devolvido"
	StatusCanceled   ShippingStatus = "Cancelado"
)

// ShippingStatuses lists every status in display order.
func ShippingStatuses() []ShippingStatus {
	return []ShippingStatus{
		StatusUrgent,
		StatusProcessing,
		StatusPending,
		StatusShipped,
		StatusDelivered,
		StatusReturned,
		StatusCanceled,
	}
}

func (s ShippingStatus) Valid() bool {
	for _, st := range ShippingStatuses() {
		if st == s {
			return true
		}
	}
	return false
}

// IsCritical reports statuses that end a sale without delivery.
func (s ShippingStatus) IsCritical() bool {
	return s == StatusReturned || s == StatusCanceled
}

// SaleRecord is one marketplace order. Wire names follow the spreadsheet the
// sellers export, so the JSON/YAML keys stay in Portuguese.
type SaleRecord struct {
	ID               string         `json:"id" yaml:"id" bson:"_id"`
	CustomerName     string         `json:"nome" yaml:"nome" bson:"nome"`
	City             string         `json:"cidade" yaml:"cidade" bson:"cidade"`
	ShippingStatus   ShippingStatus `json:"envioStatus" yaml:"envioStatus" bson:"envioStatus"`
	CustomerReceived bool           `json:"recebimentoClienteStatus" yaml:"recebimentoClienteStatus" bson:"recebimentoClienteStatus"`
	SaleDate         string         `json:"dataVenda" yaml:"dataVenda" bson:"dataVenda"`
	ShipDate         *string        `json:"dataEnvio" yaml:"dataEnvio" bson:"dataEnvio"`
	ReceiptDate      *string        `json:"dataRecebimento" yaml:"dataRecebimento" bson:"dataRecebimento"`
	DeliveryDays     *float64       `json:"recebimentoDias" yaml:"recebimentoDias" bson:"recebimentoDias"`
	DeliveryPoint    string         `json:"pontoEntrega" yaml:"pontoEntrega" bson:"pontoEntrega"`
	TrackingCode     string         `json:"codigoRastreio" yaml:"codigoRastreio" bson:"codigoRastreio"`
	SaleValue        float64        `json:"valorVenda" yaml:"valorVenda" bson:"valorVenda"`
	FreightReceived  float64        `json:"freteRecebido" yaml:"freteRecebido" bson:"freteRecebido"`
	SaleWithFreight  float64        `json:"valorVendaMaisFrete" yaml:"valorVendaMaisFrete" bson:"valorVendaMaisFrete"`
	PurchaseCost     float64        `json:"valorCompra" yaml:"valorCompra" bson:"valorCompra"`
	FreightPaid      float64        `json:"fretePago" yaml:"fretePago" bson:"fretePago"`
	MarketplaceFee   float64        `json:"comissaoAmazon" yaml:"comissaoAmazon" bson:"comissaoAmazon"`
	TotalCosts       float64        `json:"totalCustos" yaml:"totalCustos" bson:"totalCustos"`
	Profit           float64        `json:"lucro" yaml:"lucro" bson:"lucro"`
	Quantity         int            `json:"quantidade" yaml:"quantidade" bson:"quantidade"`
	ProductID        string         `json:"idProduto" yaml:"idProduto" bson:"idProduto"`
	Product          string         `json:"produto" yaml:"produto" bson:"produto"`
	Notes            string         `json:"observacoes" yaml:"observacoes" bson:"observacoes"`

	Hidden      bool `json:"hidden" yaml:"hidden" bson:"hidden"`
	Highlighted bool `json:"isHighlighted" yaml:"isHighlighted" bson:"isHighlighted"`
	Marked      bool `json:"isMarked" yaml:"isMarked" bson:"isMarked"`
}

// Clone returns a deep copy; pointer fields are not shared.
func (r SaleRecord) Clone() SaleRecord {
	c := r
	if r.ShipDate != nil {
		v := *r.ShipDate
		c.ShipDate = &v
	}
	if r.ReceiptDate != nil {
		v := *r.ReceiptDate
		c.ReceiptDate = &v
	}
	if r.DeliveryDays != nil {
		v := *r.DeliveryDays
		c.DeliveryDays = &v
	}
	return c
}

func CloneAll(records []SaleRecord) []SaleRecord {
	out := make([]SaleRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
