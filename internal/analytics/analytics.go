package analytics

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"salesdash/internal/sales"
	"salesdash/pkg/money"
)

const productLabelMax = 20

type KPI struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalProfit   float64 `json:"totalProfit"`
	TotalOrders   int     `json:"totalOrders"`
	AverageMargin float64 `json:"averageMargin"`
}

// ComputeKPI sums revenue (sale plus freight) and profit over records. The
// margin is profit over revenue in percent, zero when revenue is not positive.
func ComputeKPI(records []sales.SaleRecord) KPI {
	revenues := make([]float64, len(records))
	profits := make([]float64, len(records))
	for i, r := range records {
		revenues[i] = r.SaleWithFreight
		profits[i] = r.Profit
	}
	revenue, profit := money.Sum(revenues...), money.Sum(profits...)

	return KPI{
		TotalRevenue:  money.Float(revenue),
		TotalProfit:   money.Float(profit),
		TotalOrders:   len(records),
		AverageMargin: money.Float(money.Percent(profit, revenue, 2)),
	}
}

type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Charts struct {
	ProfitByDay    []Point `json:"profitByDay"`
	SalesByProduct []Point `json:"salesByProduct"`
	SalesByCity    []Point `json:"salesByCity"`
}

func ComputeCharts(records []sales.SaleRecord) Charts {
	return Charts{
		ProfitByDay:    ProfitByDay(records),
		SalesByProduct: SalesByProduct(records),
		SalesByCity:    SalesByCity(records),
	}
}

// ProfitByDay sums profit per sale day labelled dd/mm, ordered by month then
// day regardless of year.
func ProfitByDay(records []sales.SaleRecord) []Point {
	acc := newAccumulator()
	for _, r := range records {
		acc.add(dayLabel(r.SaleDate), r.Profit)
	}

	points := acc.points()
	sort.SliceStable(points, func(i, j int) bool {
		return dayOrder(points[i].Label) < dayOrder(points[j].Label)
	})
	return points
}

// SalesByProduct sums revenue per product name, highest first. Long names
// are cut to 20 characters plus an ellipsis.
func SalesByProduct(records []sales.SaleRecord) []Point {
	acc := newAccumulator()
	for _, r := range records {
		acc.add(productLabel(r.Product), r.SaleWithFreight)
	}
	return descending(acc.points())
}

// SalesByCity sums revenue per city, dropping the state suffix.
func SalesByCity(records []sales.SaleRecord) []Point {
	acc := newAccumulator()
	for _, r := range records {
		city, _, _ := strings.Cut(r.City, ",")
		acc.add(city, r.SaleWithFreight)
	}
	return descending(acc.points())
}

func productLabel(name string) string {
	if utf8.RuneCountInString(name) <= productLabelMax {
		return name
	}
	runes := []rune(name)
	return string(runes[:productLabelMax]) + "..."
}

// dayLabel turns an ISO yyyy-mm-dd date into dd/mm. Anything else is kept.
func dayLabel(iso string) string {
	if len(iso) < 10 || iso[4] != '-' || iso[7] != '-' {
		return iso
	}
	return iso[8:10] + "/" + iso[5:7]
}

func dayOrder(label string) string {
	day, month, ok := strings.Cut(label, "/")
	if !ok {
		return label
	}
	return month + day
}

func descending(points []Point) []Point {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Value > points[j].Value
	})
	return points
}

type accumulator struct {
	order []string
	sums  map[string]decimal.Decimal
}

func newAccumulator() *accumulator {
	return &accumulator{sums: make(map[string]decimal.Decimal)}
}

func (a *accumulator) add(label string, v float64) {
	sum, ok := a.sums[label]
	if !ok {
		a.order = append(a.order, label)
	}
	a.sums[label] = sum.Add(decimal.NewFromFloat(v))
}

func (a *accumulator) points() []Point {
	out := make([]Point, len(a.order))
	for i, label := range a.order {
		out[i] = Point{Label: label, Value: money.Float(a.sums[label])}
	}
	return out
}
