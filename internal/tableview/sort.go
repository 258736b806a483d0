package tableview

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"salesdash/internal/sales"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortState is the current sort column. An empty Key means unsorted.
type SortState struct {
	Key       sales.FieldKey `json:"key,omitempty"`
	Direction Direction      `json:"direction"`
}

// ToggleSort flips the direction when key is already the sort column and
// starts ascending otherwise.
func ToggleSort(current SortState, key sales.FieldKey) SortState {
	if current.Key == key && current.Direction == Ascending {
		return SortState{Key: key, Direction: Descending}
	}
	return SortState{Key: key, Direction: Ascending}
}

var collationTag = language.BrazilianPortuguese

// Sort orders records by state.Key with a stable ascending comparison (nulls
// last, text by pt-BR collation) and reverses the result for descending.
func Sort(records []sales.SaleRecord, state SortState) []sales.SaleRecord {
	out := append([]sales.SaleRecord(nil), records...)
	if state.Key == "" {
		return out
	}

	col := collate.New(collationTag)
	keys := make([]sales.Value, len(out))
	for i, rec := range out {
		keys[i] = rec.Get(state.Key)
	}

	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return compare(col, keys[idx[i]], keys[idx[j]]) < 0
	})

	sorted := make([]sales.SaleRecord, len(out))
	for i, k := range idx {
		sorted[i] = out[k]
	}

	if state.Direction == Descending {
		for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		}
	}
	return sorted
}

func compare(col *collate.Collator, a, b sales.Value) int {
	if a == b {
		return 0
	}
	if a.IsNull() {
		return 1
	}
	if b.IsNull() {
		return -1
	}

	switch {
	case a.Kind() == sales.KindText && b.Kind() == sales.KindText:
		return col.CompareString(a.Str(), b.Str())
	case a.Kind() == sales.KindNumber && b.Kind() == sales.KindNumber:
		return compareFloat(a.Float(), b.Float())
	case a.Kind() == sales.KindBool && b.Kind() == sales.KindBool:
		if !a.Boolean() && b.Boolean() {
			return -1
		}
		if a.Boolean() && !b.Boolean() {
			return 1
		}
		return 0
	default:
		return col.CompareString(a.String(), b.String())
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
