package core

// GrandTotalStatus is the sentinel status of the aggregate row.
const GrandTotalStatus = "Grand Total"

// SummaryRow is one row of the per-status aggregate table.
type SummaryRow struct {
	StoreStatus       string `json:"Store Status" yaml:"Store Status"`
	OpenQtyPcs        int64  `json:"Open Qty Pcs" yaml:"Open Qty Pcs"`
	AllocatedQtyPcs   int64  `json:"Allocated Qty Pcs" yaml:"Allocated Qty Pcs"`
	PickedQtyPcs      int64  `json:"Picked Qty Pcs" yaml:"Picked Qty Pcs"`
	UnallocatedQtyPcs int64  `json:"Unallocated Qty Pcs" yaml:"Unallocated Qty Pcs"`
}

// IsGrandTotal reports whether this is the aggregate row.
func (r SummaryRow) IsGrandTotal() bool {
	return r.StoreStatus == GrandTotalStatus
}

// Record converts the row to an ordered record, for rendering and export.
func (r SummaryRow) Record() Record {
	return NewRecord(
		"Store Status", r.StoreStatus,
		"Open Qty Pcs", r.OpenQtyPcs,
		"Allocated Qty Pcs", r.AllocatedQtyPcs,
		"Picked Qty Pcs", r.PickedQtyPcs,
		"Unallocated Qty Pcs", r.UnallocatedQtyPcs,
	)
}
