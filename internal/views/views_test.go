package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/ageview/pkg/core"
)

func sampleSummary() []core.SummaryRow {
	return []core.SummaryRow{
		{StoreStatus: "Pending", OpenQtyPcs: 700, AllocatedQtyPcs: 100, PickedQtyPcs: 50, UnallocatedQtyPcs: 550},
		{StoreStatus: "Grand Total", OpenQtyPcs: 12000, AllocatedQtyPcs: 3000, PickedQtyPcs: 900, UnallocatedQtyPcs: 8100},
		{StoreStatus: "In Transit", OpenQtyPcs: 6000, UnallocatedQtyPcs: 1500},
		{StoreStatus: "Allocated", OpenQtyPcs: 2000},
		{StoreStatus: "Picked", OpenQtyPcs: 1200},
		{StoreStatus: "Packed", OpenQtyPcs: 800},
		{StoreStatus: "Hold", OpenQtyPcs: 700},
		{StoreStatus: "Backorder", OpenQtyPcs: 400},
		{StoreStatus: "Cancelled", OpenQtyPcs: 200},
	}
}

func TestSummary_KPIsFromGrandTotal(t *testing.T) {
	s := NewSummary(sampleSummary())

	kpis := s.KPIs()
	require.Len(t, kpis, 4)
	assert.Equal(t, KPI{Label: LabelTotalOpen, Value: 12000}, kpis[0])
	assert.Equal(t, KPI{Label: LabelAllocated, Value: 3000}, kpis[1])
	assert.Equal(t, KPI{Label: LabelPicked, Value: 900}, kpis[2])
	assert.Equal(t, KPI{Label: LabelUnallocated, Value: 8100}, kpis[3])
}

func TestSummary_NoGrandTotal(t *testing.T) {
	s := NewSummary(sampleSummary()[:1])
	assert.Nil(t, s.KPIs())
	_, ok := s.GrandTotal()
	assert.False(t, ok)
}

func TestSummary_KeepsBackendOrder(t *testing.T) {
	rows := sampleSummary()
	s := NewSummary(rows)
	assert.Equal(t, rows, s.Rows())
	assert.Equal(t, []string{"Pending", "In Transit", "Allocated", "Picked", "Packed", "Hold", "Backorder", "Cancelled"}, s.Statuses())
}

func TestSummary_Drilldown(t *testing.T) {
	s := NewSummary(sampleSummary())

	tests := []struct {
		name   string
		index  int
		want   string
		wantOK bool
	}{
		{name: "status row", index: 0, want: "Pending", wantOK: true},
		{name: "grand total", index: 1},
		{name: "negative", index: -1},
		{name: "past end", index: 99},
		{name: "later row", index: 2, want: "In Transit", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Drilldown(tt.index)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.True(t, s.Has("Hold"))
	assert.False(t, s.Has("Grand Total"))
}

func TestDistribution_TopSevenExcludesGrandTotal(t *testing.T) {
	slices := Distribution(sampleSummary(), DefaultTopN)
	require.Len(t, slices, 7)

	var statuses []string
	var sum int64
	for _, s := range slices {
		statuses = append(statuses, s.Status)
		sum += s.Value
	}
	assert.NotContains(t, statuses, "Grand Total")
	assert.Equal(t, []string{"In Transit", "Allocated", "Picked", "Packed", "Pending", "Hold", "Backorder"}, statuses)

	var shares float64
	for _, s := range slices {
		shares += s.Share
		assert.InDelta(t, float64(s.Value)/float64(sum), s.Share, 1e-9)
	}
	assert.InDelta(t, 1.0, shares, 1e-9)
}

func TestDistribution_FewRowsAndZeroSum(t *testing.T) {
	rows := []core.SummaryRow{
		{StoreStatus: "A"},
		{StoreStatus: "Grand Total", OpenQtyPcs: 10},
		{StoreStatus: "B"},
	}
	got := Distribution(rows, 0)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Status)
	assert.Zero(t, got[0].Share)
}

func TestNewDrawer(t *testing.T) {
	r := core.NewRecord(
		"id", float64(7),
		"SO Number", "SO-1",
		"Store", "",
		"Qty", float64(12000),
		"Region", nil,
		"Note", "fragile",
		"Rate", 1.5,
	)

	d := NewDrawer(r)
	require.Len(t, d.Headline, 3)
	require.Len(t, d.Attributes, 3)

	assert.Equal(t, "SO Number", d.Headline[0].Key)
	assert.Equal(t, "SO-1", d.Headline[0].Value)
	assert.Equal(t, HeadlinePlaceholder, d.Headline[1].Value)
	assert.True(t, d.Headline[1].Blank)
	assert.Equal(t, "12000", d.Headline[2].Value)

	assert.Equal(t, "Region", d.Attributes[0].Key)
	assert.Equal(t, AttributePlaceholder, d.Attributes[0].Value)
	assert.Equal(t, "fragile", d.Attributes[1].Value)
	assert.Equal(t, "1.5", d.Attributes[2].Value)

	for _, f := range d.Fields() {
		assert.NotEqual(t, "id", f.Key)
	}
}

func TestNewDrawer_ShortRecord(t *testing.T) {
	d := NewDrawer(core.NewRecord("id", "x", "A", true))
	require.Len(t, d.Headline, 1)
	assert.Equal(t, "true", d.Headline[0].Value)
	assert.Empty(t, d.Attributes)
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, SeverityHigh, OpenQtySeverity(10001))
	assert.Equal(t, SeverityMedium, OpenQtySeverity(10000))
	assert.Equal(t, SeverityNone, OpenQtySeverity(5000))
	assert.Equal(t, SeverityHigh, UnallocatedSeverity(1001))
	assert.Equal(t, SeverityNone, UnallocatedSeverity(1000))

	assert.Equal(t, SeverityHigh, CellSeverity(float64(101)))
	assert.Equal(t, SeverityMedium, CellSeverity(float64(51)))
	assert.Equal(t, SeverityNone, CellSeverity(float64(50)))
	assert.Equal(t, SeverityNone, CellSeverity("500"))

	open, unalloc := RowSeverity(core.SummaryRow{StoreStatus: core.GrandTotalStatus, OpenQtyPcs: 99999, UnallocatedQtyPcs: 99999})
	assert.Equal(t, SeverityNone, open)
	assert.Equal(t, SeverityNone, unalloc)
}

func TestStatusLine(t *testing.T) {
	tests := []struct {
		name         string
		loaded       int
		total        int
		initializing bool
		want         string
	}{
		{name: "initializing", initializing: true, want: InitializingText},
		{name: "empty", want: NoDataText},
		{name: "partial", loaded: 100, total: 2500, want: "Showing up to 100 of 2,500 rows • Scroll down to load more"},
		{name: "complete", loaded: 250, total: 250, want: "Showing up to 250 of 250 rows"},
		{name: "overshoot", loaded: 300, total: 250, want: "Showing up to 250 of 250 rows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusLine(tt.loaded, tt.total, tt.initializing))
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "12,000", FormatQty(12000))
	assert.Equal(t, "340,123", FormatCount(340123))
	assert.Equal(t, "33.3%", FormatPercent(1.0/3.0))
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "42", FormatValue(float64(42)))
	assert.Equal(t, "-3.25", FormatValue(-3.25))
	assert.Equal(t, "false", FormatValue(false))
}
