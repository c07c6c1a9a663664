package core

// DefaultPageSize is the number of rows requested per detail page.
const DefaultPageSize = 100

// Page is one server round-trip's worth of rows for a filter.
type Page struct {
	Index         int      // 1-based
	Size          int      // requested page size
	Rows          []Record // rows in backend order
	TotalRowCount int      // total reported with this page
}

// DetailPage is the decoded body of a details request.
type DetailPage struct {
	Rows          []Record `json:"data"`
	TotalRowCount int      `json:"total_rows"`
	Page          int      `json:"page"`
	PageSize      int      `json:"page_size"`
	TotalPages    int      `json:"total_pages"`
	ReturnedRows  int      `json:"returned_rows"`
	Status        string   `json:"status"`
}

// Empty reports a well-formed response with no rows. This is not an error.
func (p DetailPage) Empty() bool {
	return len(p.Rows) == 0
}
