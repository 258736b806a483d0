package tableview

import (
	"strings"

	"salesdash/internal/sales"
)

// Filters are the dashboard's side-panel filters. Empty strings disable a
// filter; dates are ISO yyyy-mm-dd and compared as strings, inclusive.
type Filters struct {
	SearchName      string `json:"searchName" form:"searchName"`
	SearchCity      string `json:"searchCity" form:"searchCity"`
	SearchProductID string `json:"searchProductId" form:"searchProductId"`
	Status          string `json:"status" form:"status"`
	DateStart       string `json:"dateStart" form:"dateStart"`
	DateEnd         string `json:"dateEnd" form:"dateEnd"`
	ShowHidden      bool   `json:"showHidden" form:"showHidden"`
}

func (f Filters) Match(rec sales.SaleRecord) bool {
	if !f.ShowHidden && rec.Hidden {
		return false
	}
	if !containsFold(rec.CustomerName, f.SearchName) {
		return false
	}
	if !containsFold(rec.City, f.SearchCity) {
		return false
	}
	if !containsFold(rec.ProductID, f.SearchProductID) {
		return false
	}
	if f.Status != "" && string(rec.ShippingStatus) != f.Status {
		return false
	}
	if f.DateStart != "" && rec.SaleDate < f.DateStart {
		return false
	}
	if f.DateEnd != "" && rec.SaleDate > f.DateEnd {
		return false
	}
	return true
}

func (f Filters) Apply(records []sales.SaleRecord) []sales.SaleRecord {
	out := make([]sales.SaleRecord, 0, len(records))
	for _, rec := range records {
		if f.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func containsFold(s, sub string) bool {
	if sub == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
