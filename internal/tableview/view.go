package tableview

import "salesdash/internal/sales"

// View is the table's derivation state. Rows applies filters, then the
// free-text search, then the sort.
type View struct {
	Filters Filters   `json:"filters"`
	Search  string    `json:"search"`
	Sort    SortState `json:"sort"`
	Columns []Column  `json:"columns"`
}

func NewView() View {
	return View{
		Sort:    SortState{Direction: Ascending},
		Columns: DefaultColumns(),
	}
}

func (v View) Visible(records []sales.SaleRecord) []sales.SaleRecord {
	return v.Filters.Apply(records)
}

func (v View) Rows(records []sales.SaleRecord) []sales.SaleRecord {
	return Sort(Search(v.Visible(records), v.Search), v.Sort)
}
