package views

import "github.com/leapstack-labs/ageview/pkg/core"

// KPI is one headline card taken from the Grand Total row.
type KPI struct {
	Label string
	Value int64
}

// KPI labels in display order.
const (
	LabelTotalOpen   = "Total Open Qty"
	LabelAllocated   = "Allocated Qty"
	LabelPicked      = "Picked Qty"
	LabelUnallocated = "Unallocated Qty"
)

// Summary is the per-status aggregate table in backend order.
type Summary struct {
	rows []core.SummaryRow
}

// NewSummary wraps rows without reordering them.
func NewSummary(rows []core.SummaryRow) Summary {
	return Summary{rows: rows}
}

// Rows returns the rows in backend order, Grand Total included.
func (s Summary) Rows() []core.SummaryRow { return s.rows }

// Len returns the number of rows.
func (s Summary) Len() int { return len(s.rows) }

// GrandTotal returns the sentinel totals row.
func (s Summary) GrandTotal() (core.SummaryRow, bool) {
	for _, r := range s.rows {
		if r.IsGrandTotal() {
			return r, true
		}
	}
	return core.SummaryRow{}, false
}

// KPIs returns the four headline cards, or nil when the backend sent no
// Grand Total row.
func (s Summary) KPIs() []KPI {
	total, ok := s.GrandTotal()
	if !ok {
		return nil
	}
	return []KPI{
		{Label: LabelTotalOpen, Value: total.OpenQtyPcs},
		{Label: LabelAllocated, Value: total.AllocatedQtyPcs},
		{Label: LabelPicked, Value: total.PickedQtyPcs},
		{Label: LabelUnallocated, Value: total.UnallocatedQtyPcs},
	}
}

// Drilldown returns the status selected by clicking row index. The Grand
// Total row and out-of-range indexes select nothing.
func (s Summary) Drilldown(index int) (string, bool) {
	if index < 0 || index >= len(s.rows) {
		return "", false
	}
	row := s.rows[index]
	if row.IsGrandTotal() {
		return "", false
	}
	return row.StoreStatus, true
}

// Statuses lists the drillable statuses in backend order.
func (s Summary) Statuses() []string {
	out := make([]string, 0, len(s.rows))
	for _, r := range s.rows {
		if !r.IsGrandTotal() {
			out = append(out, r.StoreStatus)
		}
	}
	return out
}

// Has reports whether status is one of the drillable statuses.
func (s Summary) Has(status string) bool {
	for _, r := range s.rows {
		if !r.IsGrandTotal() && r.StoreStatus == status {
			return true
		}
	}
	return false
}

// RowSeverity returns the open and unallocated bands for row. The Grand
// Total row is never banded.
func RowSeverity(row core.SummaryRow) (open, unallocated Severity) {
	if row.IsGrandTotal() {
		return SeverityNone, SeverityNone
	}
	return OpenQtySeverity(row.OpenQtyPcs), UnallocatedSeverity(row.UnallocatedQtyPcs)
}
