package views

import (
	"cmp"
	"slices"

	"github.com/leapstack-labs/ageview/pkg/core"
)

// DefaultTopN is the number of statuses shown in the distribution chart.
const DefaultTopN = 7

// Slice is one ranked status in the distribution chart.
type Slice struct {
	Status string
	Value  int64
	// Share is Value relative to the sum of the displayed slices.
	Share float64
}

// Distribution ranks statuses by open quantity, largest first, and keeps the
// top n. The Grand Total row never takes part. Ties keep backend order.
func Distribution(rows []core.SummaryRow, n int) []Slice {
	if n <= 0 {
		n = DefaultTopN
	}

	ranked := make([]core.SummaryRow, 0, len(rows))
	for _, r := range rows {
		if !r.IsGrandTotal() {
			ranked = append(ranked, r)
		}
	}
	slices.SortStableFunc(ranked, func(a, b core.SummaryRow) int {
		return cmp.Compare(b.OpenQtyPcs, a.OpenQtyPcs)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	var sum int64
	for _, r := range ranked {
		sum += r.OpenQtyPcs
	}

	out := make([]Slice, len(ranked))
	for i, r := range ranked {
		out[i] = Slice{Status: r.StoreStatus, Value: r.OpenQtyPcs}
		if sum != 0 {
			out[i].Share = float64(r.OpenQtyPcs) / float64(sum)
		}
	}
	return out
}
