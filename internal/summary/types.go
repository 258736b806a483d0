package summary

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"salesdash/internal/sales"
)

// Item is the reduced view of a sale sent to the model.
type Item struct {
	Product    string  `json:"produto"`
	City       string  `json:"cidade"`
	Status     string  `json:"status"`
	SaleValue  float64 `json:"valorVenda"`
	Profit     float64 `json:"lucro"`
	MarginText string  `json:"margem"`
}

// Simplify reduces records to Items. Margin is profit over sale value with
// two decimals; a zero sale value yields "0.00%".
func Simplify(records []sales.SaleRecord) []Item {
	items := make([]Item, len(records))
	for i, r := range records {
		margin := decimal.Zero
		if r.SaleValue != 0 {
			margin = decimal.NewFromFloat(r.Profit).
				Div(decimal.NewFromFloat(r.SaleValue)).
				Mul(decimal.NewFromInt(100))
		}
		items[i] = Item{
			Product:    r.Product,
			City:       r.City,
			Status:     string(r.ShippingStatus),
			SaleValue:  r.SaleValue,
			Profit:     r.Profit,
			MarginText: fmt.Sprintf("%s%%", margin.StringFixed(2)),
		}
	}
	return items
}

// Summarizer produces a narrative for a set of items. Implementations return
// pkg/errors auth, network or upstream errors.
type Summarizer interface {
	Summarize(ctx context.Context, items []Item) (string, error)
}

const (
	MessageMissingKey = "API Key is missing. Please configure your API_KEY."
	MessageEmpty      = "Não foi possível gerar a análise."
	MessageFailure    = "Ocorreu um erro ao conectar com a inteligência artificial. Verifique sua chave de API."
)

type Status string

const (
	StatusOK         Status = "ok"
	StatusEmpty      Status = "empty"
	StatusMissingKey Status = "missing_key"
	StatusFailed     Status = "failed"
)

// Result is what the dashboard shows. Text is always user-facing.
type Result struct {
	Text   string `json:"text"`
	Status Status `json:"status"`
	Cached bool   `json:"cached"`
}
