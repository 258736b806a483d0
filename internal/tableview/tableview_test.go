package tableview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/sales"
	pkgerrors "salesdash/pkg/errors"
)

func recordIDs(recs []sales.SaleRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func days(f float64) *float64 { return &f }

func TestSearch(t *testing.T) {
	records := sales.SampleRecords()

	tests := []struct {
		name string
		term string
		want []string
	}{
		{"empty keeps all", "", []string{"AMZ-1001", "AMZ-1002", "AMZ-1003", "AMZ-1004", "AMZ-1005"}},
		{"case insensitive name", "carlos", []string{"AMZ-1001"}},
		{"city", "curitiba", []string{"AMZ-1003"}},
		{"number string form", "142.5", []string{"AMZ-1002"}},
		{"status", "devolvido", []string{"AMZ-1005"}},
		{"bool string form", "true", []string{"AMZ-1001"}},
		{"no match", "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recordIDs(Search(records, tt.term)))
		})
	}
}

func TestSearch_IgnoresViewFlags(t *testing.T) {
	records := sales.SampleRecords()
	for i := range records {
		records[i].Hidden = false
	}
	// "false" appears only in the customer-received flag of four records
	assert.Len(t, Search(records, "false"), 4)
}

func TestSort_Numbers(t *testing.T) {
	records := sales.SampleRecords()

	asc := Sort(records, SortState{Key: sales.FieldProfit, Direction: Ascending})
	assert.Equal(t, []string{"AMZ-1005", "AMZ-1003", "AMZ-1001", "AMZ-1004", "AMZ-1002"}, recordIDs(asc))

	desc := Sort(records, SortState{Key: sales.FieldProfit, Direction: Descending})
	assert.Equal(t, []string{"AMZ-1002", "AMZ-1004", "AMZ-1001", "AMZ-1003", "AMZ-1005"}, recordIDs(desc))

	assert.Equal(t, "AMZ-1001", records[0].ID)
}

func TestSort_NullsLastThenFirstWhenReversed(t *testing.T) {
	records := []sales.SaleRecord{
		{ID: "a"},
		{ID: "b", DeliveryDays: days(5)},
		{ID: "c"},
		{ID: "d", DeliveryDays: days(2)},
	}

	asc := Sort(records, SortState{Key: sales.FieldDeliveryDays, Direction: Ascending})
	assert.Equal(t, []string{"d", "b", "a", "c"}, recordIDs(asc))

	desc := Sort(records, SortState{Key: sales.FieldDeliveryDays, Direction: Descending})
	assert.Equal(t, []string{"c", "a", "b", "d"}, recordIDs(desc))
}

func TestSort_LocaleAwareText(t *testing.T) {
	records := []sales.SaleRecord{
		{ID: "1", CustomerName: "Bruno"},
		{ID: "2", CustomerName: "ana"},
		{ID: "3", CustomerName: "Ágata"},
	}

	got := Sort(records, SortState{Key: sales.FieldCustomerName, Direction: Ascending})
	assert.Equal(t, []string{"3", "2", "1"}, recordIDs(got))
}

func TestSort_StableAndBooleans(t *testing.T) {
	records := []sales.SaleRecord{
		{ID: "1", CustomerReceived: true},
		{ID: "2"},
		{ID: "3", CustomerReceived: true},
		{ID: "4"},
	}

	got := Sort(records, SortState{Key: sales.FieldCustomerReceived, Direction: Ascending})
	assert.Equal(t, []string{"2", "4", "1", "3"}, recordIDs(got))

	unsorted := Sort(records, SortState{})
	assert.Equal(t, []string{"1", "2", "3", "4"}, recordIDs(unsorted))
}

func TestToggleSort(t *testing.T) {
	s := ToggleSort(SortState{}, sales.FieldProfit)
	assert.Equal(t, SortState{Key: sales.FieldProfit, Direction: Ascending}, s)

	s = ToggleSort(s, sales.FieldProfit)
	assert.Equal(t, Descending, s.Direction)

	s = ToggleSort(s, sales.FieldProfit)
	assert.Equal(t, Ascending, s.Direction)

	s = ToggleSort(SortState{Key: sales.FieldProfit, Direction: Descending}, sales.FieldCity)
	assert.Equal(t, SortState{Key: sales.FieldCity, Direction: Ascending}, s)
}

func TestDefaultColumns(t *testing.T) {
	cols := DefaultColumns()
	require.Len(t, cols, 21)
	assert.Equal(t, sales.FieldCity, cols[0].Key)
	assert.Equal(t, sales.FieldNotes, cols[20].Key)
	for _, c := range cols {
		assert.True(t, c.Key.Valid(), c.Key)
	}
}

func TestMoveColumn(t *testing.T) {
	cols := []Column{{Key: "a"}, {Key: "b"}, {Key: "c"}, {Key: "d"}}
	keys := func(cs []Column) []sales.FieldKey {
		out := make([]sales.FieldKey, len(cs))
		for i, c := range cs {
			out[i] = c.Key
		}
		return out
	}

	tests := []struct {
		name     string
		from, to int
		want     []sales.FieldKey
	}{
		{"forward", 0, 2, []sales.FieldKey{"b", "c", "a", "d"}},
		{"backward", 3, 1, []sales.FieldKey{"a", "d", "b", "c"}},
		{"to end", 1, 3, []sales.FieldKey{"a", "c", "d", "b"}},
		{"same place", 2, 2, []sales.FieldKey{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MoveColumn(cols, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, keys(got))
			assert.Equal(t, []sales.FieldKey{"a", "b", "c", "d"}, keys(cols))
		})
	}

	_, err := MoveColumn(cols, 0, 4)
	assert.True(t, pkgerrors.IsValidation(err))
	_, err = MoveColumn(cols, -1, 0)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestFilters(t *testing.T) {
	records := sales.SampleRecords()
	records[2].Hidden = true

	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{"hidden excluded by default", Filters{}, []string{"AMZ-1001", "AMZ-1002", "AMZ-1004", "AMZ-1005"}},
		{"show hidden", Filters{ShowHidden: true}, []string{"AMZ-1001", "AMZ-1002", "AMZ-1003", "AMZ-1004", "AMZ-1005"}},
		{"name", Filters{SearchName: "ANA"}, []string{"AMZ-1002"}},
		{"name skips hidden match", Filters{SearchName: "li"}, []string{"AMZ-1004"}},
		{"city", Filters{SearchCity: ", rs"}, []string{"AMZ-1005"}},
		{"product id", Filters{SearchProductID: "b08"}, []string{"AMZ-1001"}},
		{"status exact", Filters{Status: "Pendente"}, []string{"AMZ-1004"}},
		{"date range inclusive", Filters{DateStart: "2023-10-01", DateEnd: "2023-10-05"}, []string{"AMZ-1001", "AMZ-1002"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recordIDs(tt.filters.Apply(records)))
		})
	}
}

func TestViewRows(t *testing.T) {
	v := NewView()
	v.Filters.DateStart = "2023-10-01"
	v.Search = "a"
	v.Sort = SortState{Key: sales.FieldSaleValue, Direction: Descending}

	rows := v.Rows(sales.SampleRecords())
	assert.Equal(t, []string{"AMZ-1002", "AMZ-1001", "AMZ-1004", "AMZ-1003"}, recordIDs(rows))
	assert.Len(t, v.Columns, 21)
}
