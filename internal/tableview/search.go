package tableview

import (
	"strings"

	"salesdash/internal/sales"
)

// Search keeps records where any data field's string form contains term,
// ignoring case. Null fields never match. An empty term keeps everything.
func Search(records []sales.SaleRecord, term string) []sales.SaleRecord {
	if term == "" {
		return append([]sales.SaleRecord(nil), records...)
	}

	needle := strings.ToLower(term)
	fields := sales.DataFields()

	out := make([]sales.SaleRecord, 0, len(records))
	for _, rec := range records {
		for _, key := range fields {
			v := rec.Get(key)
			if v.IsNull() {
				continue
			}
			if strings.Contains(strings.ToLower(v.String()), needle) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}
