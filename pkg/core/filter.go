package core

import "fmt"

// Filter identifies the server-side query a dataset window is bound to.
// Two filters are equal only when both fields match byte for byte:
// no trimming and no case folding.
type Filter struct {
	Status string `json:"status"`
	Search string `json:"search"`
}

// Equal reports whether f and other select the same server-side query.
func (f Filter) Equal(other Filter) bool {
	return f.Status == other.Status && f.Search == other.Search
}

// IsZero reports whether no status has been chosen yet.
func (f Filter) IsZero() bool {
	return f.Status == "" && f.Search == ""
}

func (f Filter) String() string {
	if f.Search == "" {
		return fmt.Sprintf("status=%q", f.Status)
	}
	return fmt.Sprintf("status=%q search=%q", f.Status, f.Search)
}
