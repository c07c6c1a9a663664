// Package views holds the pure projections the front-ends render: the summary
// table with its KPI cards, the distribution ranking, the record drawer and
// the details status line. Nothing here fetches data.
package views
