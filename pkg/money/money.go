package money

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// CurrencySymbol is followed by a no-break space, as pt-BR locale output does.
const CurrencySymbol = "R$\u00a0"

// FormatBRL renders v as Brazilian reais: "R$ 1.234,50", "-R$ 25,00".
func FormatBRL(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + CurrencySymbol + humanize.FormatFloat("#.###,##", d.InexactFloat64())
}

// Sum adds amounts without accumulating binary rounding error.
func Sum(values ...float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total
}

// Percent returns part/whole*100 rounded to places, or zero when whole is not positive.
func Percent(part, whole decimal.Decimal, places int32) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(places)
}

// Float converts d back for JSON output.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
