package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_UnmarshalPreservesKeyOrder(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"SO Number":"SO-1","Store Name":"North","Open Qty":12,"Region":null,"Urgent":true}`), &r)
	require.NoError(t, err)

	assert.Equal(t, []string{"SO Number", "Store Name", "Open Qty", "Region", "Urgent"}, r.Keys())
	assert.Equal(t, 5, r.Len())

	v, ok := r.Get("Open Qty")
	require.True(t, ok)
	assert.Equal(t, float64(12), v)

	v, ok = r.Get("Region")
	require.True(t, ok)
	assert.Nil(t, v)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRecord_ZeroValue(t *testing.T) {
	var r Record
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Keys())
	assert.Empty(t, r.Fields())

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(b))

	r.Set("a", "b")
	assert.Equal(t, []string{"a"}, r.Keys())
}

func TestRecord_SetKeepsPosition(t *testing.T) {
	r := NewRecord("a", 1, "b", 2, "c", 3)
	r.Set("a", 10)

	assert.Equal(t, []string{"a", "b", "c"}, r.Keys())
	fields := r.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, Field{Key: "a", Value: 10}, fields[0])
}

func TestDetailPage_Decode(t *testing.T) {
	body := `{"data":[{"id":1,"Store":"A"},{"id":2,"Store":"B"}],"total_rows":250,"page":1,"page_size":100,"total_pages":3,"returned_rows":2,"status":"Pending"}`

	var p DetailPage
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	assert.Len(t, p.Rows, 2)
	assert.Equal(t, 250, p.TotalRowCount)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, "Pending", p.Status)
	assert.Equal(t, []string{"id", "Store"}, p.Rows[1].Keys())
	assert.False(t, p.Empty())
}

func TestFilter_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b Filter
		want bool
	}{
		{"identical", Filter{"Pending", "north"}, Filter{"Pending", "north"}, true},
		{"case differs", Filter{"Pending", "north"}, Filter{"Pending", "North"}, false},
		{"whitespace differs", Filter{"Pending", "north"}, Filter{"Pending", "north "}, false},
		{"status differs", Filter{"Pending", ""}, Filter{"Picked", ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestSummaryRow_Record(t *testing.T) {
	row := SummaryRow{StoreStatus: GrandTotalStatus, OpenQtyPcs: 12000}
	assert.True(t, row.IsGrandTotal())

	rec := row.Record()
	assert.Equal(t, []string{"Store Status", "Open Qty Pcs", "Allocated Qty Pcs", "Picked Qty Pcs", "Unallocated Qty Pcs"}, rec.Keys())
}
